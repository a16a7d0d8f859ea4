// Package logger provides structured logging for cache-sweep, configurable
// between a colorized human-readable console handler and an optional
// mirrored log file. It exposes a small package-level API so every
// subsystem can log without threading a logger instance through call
// chains that don't otherwise need one.
package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// global is the process-wide logger installed by Setup. Subsystems that
// log before Setup runs (e.g. flag-parsing failures) fall back to a bare
// stderr handler so log calls never panic on a nil logger.
var global = slog.New(tint.NewHandler(os.Stderr, nil))

var fileHandle io.Closer

// Setup installs the process-wide logger.
//
// verbose enables debug-level output. logFile, if non-empty, mirrors every
// log record to the given path (opened in append mode) in addition to the
// colorized stderr stream.
func Setup(verbose bool, logFile string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return &FileError{Path: logFile, Err: err}
		}
		fileHandle = f
		w = io.MultiWriter(os.Stderr, f)
	}

	global = slog.New(tint.NewHandler(w, &tint.Options{Level: level}))
	return nil
}

// Close releases the mirrored log file, if one was opened. Safe to call
// even when Setup was never called or opened no file.
func Close() error {
	if fileHandle == nil {
		return nil
	}
	err := fileHandle.Close()
	fileHandle = nil
	return err
}

// Debug logs a debug-level message.
func Debug(msg string, args ...any) { global.Debug(msg, args...) }

// Info logs an informational message.
func Info(msg string, args ...any) { global.Info(msg, args...) }

// Warn logs a warning.
func Warn(msg string, args ...any) { global.Warn(msg, args...) }

// Error logs an error.
func Error(msg string, args ...any) { global.Error(msg, args...) }

// EntryWarning logs a recoverable per-entry problem encountered during a
// scan (permission denied, vanished path, stat failure).
func EntryWarning(path string, err error) {
	global.Warn("skipped entry", "path", path, "reason", err)
}

// FileError reports that the mirrored log file could not be opened.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return "cannot open log file " + e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error { return e.Err }
