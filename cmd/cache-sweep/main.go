// Command cache-sweep locates dependency and build-cache directories
// (node_modules, .venv, target, and friends) under a root directory and
// offers an interactive TUI, or a non-interactive JSON/NDJSON report, for
// reviewing and deleting them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cache-sweep/cachesweep/internal/batch"
	"github.com/cache-sweep/cachesweep/internal/deleter"
	"github.com/cache-sweep/cachesweep/internal/display"
	"github.com/cache-sweep/cachesweep/internal/errs"
	"github.com/cache-sweep/cachesweep/internal/eventloop"
	"github.com/cache-sweep/cachesweep/internal/logger"
	"github.com/cache-sweep/cachesweep/internal/model"
	"github.com/cache-sweep/cachesweep/internal/profile"
	"github.com/cache-sweep/cachesweep/internal/sensitivity"
	"github.com/cache-sweep/cachesweep/internal/sink"
	"github.com/cache-sweep/cachesweep/internal/sizecalc"
	"github.com/cache-sweep/cachesweep/internal/target"
	"github.com/cache-sweep/cachesweep/internal/termguard"
	"github.com/cache-sweep/cachesweep/internal/tui"
	"github.com/cache-sweep/cachesweep/internal/walker"
)

// Exit codes. 0 is returned even when recoverable per-entry errors were
// collected during the scan; only configuration, scan-root, and
// terminal-setup failures are fatal.
const (
	ExitOK = iota
	ExitConfigError
	ExitScanError
	ExitTerminalError
)

// Config holds the parsed command-line configuration.
type Config struct {
	Directory     string
	Full          bool
	Profiles      []string
	Targets       []string
	Exclude       []string
	Sort          string
	JSON          bool
	JSONStream    bool
	DryRun        bool
	ShowProtected bool
	FollowLinks   bool
	RespectIgnore bool
	Verbose       bool
	LogFile       string
	Workers       int
	BatchSize     int
}

func main() {
	cfg := &Config{}
	root := newRootCommand(cfg)
	if err := root.Execute(); err != nil {
		os.Exit(ExitConfigError)
	}
}

func newRootCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cache-sweep",
		Short:         "Find and remove dependency and build-cache directories",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			os.Exit(run(cfg))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.Directory, "directory", "d", "", "scan root (default: current directory)")
	flags.BoolVarP(&cfg.Full, "full", "f", false, "scan root = home directory")
	flags.StringSliceVarP(&cfg.Profiles, "profiles", "p", nil, "restrict targets to the union of these profiles (\"all\" = every profile)")
	flags.StringSliceVarP(&cfg.Targets, "targets", "t", nil, "override profiles with a literal list of target basenames")
	flags.StringSliceVarP(&cfg.Exclude, "exclude", "E", nil, "basename blacklist")
	flags.StringVarP(&cfg.Sort, "sort", "s", "size", "initial sort key: size, path, or age")
	flags.BoolVar(&cfg.JSON, "json", false, "emit aggregated JSON, no TUI")
	flags.BoolVar(&cfg.JSONStream, "json-stream", false, "emit NDJSON, no TUI")
	flags.BoolVar(&cfg.DryRun, "dry-run", false, "report deletions as successful without touching the filesystem")
	flags.BoolVarP(&cfg.ShowProtected, "show-protected", "X", false, "include sensitive entries in output and allow deleting them")
	flags.BoolVar(&cfg.FollowLinks, "follow-links", false, "follow symbolic links while scanning (off by default)")
	flags.BoolVar(&cfg.RespectIgnore, "respect-ignore", false, "accepted but has no effect: ignore files are never read")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "enable debug-level logging")
	flags.StringVar(&cfg.LogFile, "log-file", "", "mirror logs to this file in addition to stderr")
	flags.IntVar(&cfg.Workers, "workers", 0, "size-computation concurrency (0 = auto)")
	flags.IntVar(&cfg.BatchSize, "batch-size", 0, "walker batch size before an eager flush (0 = default)")

	return cmd
}

func run(cfg *Config) int {
	if err := logger.Setup(cfg.Verbose, cfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "cache-sweep: %v\n", err)
		return ExitConfigError
	}
	defer logger.Close()

	if err := validate(cfg); err != nil {
		logger.Error("invalid configuration", "error", err)
		return ExitConfigError
	}

	root, err := resolveRoot(cfg)
	if err != nil {
		logger.Error("cannot resolve scan root", "error", err)
		return ExitConfigError
	}

	patterns, err := resolveTargets(cfg)
	if err != nil {
		logger.Error("invalid target configuration", "error", err)
		return ExitConfigError
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received interrupt, shutting down")
		cancel()
	}()

	matcher := target.New(patterns, cfg.Exclude)
	classifier := sensitivity.New(nil)

	w := walker.New(walker.Options{
		Root:        root,
		Matcher:     matcher,
		Classifier:  classifier,
		FollowLinks: cfg.FollowLinks,
	})

	resultCh, err := w.Run(ctx)
	if err != nil {
		logger.Error("cannot scan root", "error", err)
		return ExitScanError
	}

	if cfg.JSON || cfg.JSONStream {
		return runHeadless(ctx, cfg, w, resultCh)
	}
	return runInteractive(ctx, cfg, w, resultCh)
}

func validate(cfg *Config) error {
	if cfg.JSON && cfg.JSONStream {
		return &errs.ConfigError{Msg: "--json and --json-stream are mutually exclusive"}
	}
	switch cfg.Sort {
	case "size", "path", "age":
	default:
		return &errs.ConfigError{Msg: fmt.Sprintf("unknown sort key %q", cfg.Sort)}
	}
	return nil
}

func resolveRoot(cfg *Config) (string, error) {
	if cfg.Full {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return home, nil
	}
	if cfg.Directory != "" {
		return filepath.Abs(cfg.Directory)
	}
	return os.Getwd()
}

// resolveTargets applies -t/--targets when given, since a literal target
// list fully overrides the profile-derived set rather than unioning with
// it; otherwise it resolves -p/--profiles (default: "all").
func resolveTargets(cfg *Config) ([]target.Pattern, error) {
	if len(cfg.Targets) > 0 {
		patterns := make([]target.Pattern, 0, len(cfg.Targets))
		for _, name := range cfg.Targets {
			patterns = append(patterns, target.Pattern{Name: name, Profile: "custom"})
		}
		return patterns, nil
	}
	profiles := cfg.Profiles
	if len(profiles) == 0 {
		profiles = []string{"all"}
	}
	return profile.Resolve(profiles)
}

func sortKey(s string) display.SortKey {
	switch s {
	case "path":
		return display.SortPathAsc
	case "age":
		return display.SortAgeOldestFirst
	default:
		return display.SortSizeDesc
	}
}

// runHeadless drives the non-interactive JSON/NDJSON pipeline: walker
// results and size completions are drained by a single select loop so
// NDJSON output is written in true completion order with no buffering.
func runHeadless(ctx context.Context, cfg *Config, w *walker.Walker, resultCh <-chan model.Result) int {
	sizer := sizecalc.New(sizecalc.Options{Permits: cfg.Workers})

	var ndjson *sink.NDJSONSink
	if cfg.JSONStream {
		ndjson = sink.NewNDJSONSink(os.Stdout)
	}

	results := make(map[int]model.Result)
	var entries []sink.Entry

	nextIdx := 0
	pending := 0
	walkerOpen := true
	completions := sizer.Completions()

	for walkerOpen || pending > 0 {
		select {
		case r, ok := <-resultCh:
			if !ok {
				walkerOpen = false
				continue
			}
			if r.Sensitive && !cfg.ShowProtected {
				continue
			}
			idx := nextIdx
			nextIdx++
			results[idx] = r
			pending++
			sizer.Submit(ctx, idx, r.Path)

		case comp, ok := <-completions:
			if !ok {
				completions = nil
				continue
			}
			pending--
			e := sink.EntryFromResult(results[comp.StableIndex], comp.State)
			if cfg.JSONStream {
				ndjson.Write(e)
			} else {
				entries = append(entries, e)
			}
		}
	}

	for _, ee := range w.Errors().Entries() {
		logger.EntryWarning(ee.Path, ee.Err)
	}

	if cfg.JSON {
		if err := sink.WriteAggregated(os.Stdout, entries); err != nil {
			logger.Error("failed to write aggregated output", "error", err)
			return ExitScanError
		}
	}
	return ExitOK
}

// runInteractive wires the walker through the batcher, the event loop,
// and the display model into a TUI rendered via the scoped terminal
// guard.
func runInteractive(ctx context.Context, cfg *Config, w *walker.Walker, resultCh <-chan model.Result) int {
	guard, err := termguard.Acquire(os.Stdout)
	if err != nil {
		logger.Error("cannot initialize terminal", "error", err)
		return ExitTerminalError
	}
	defer guard.Release()

	b := batch.New(resultCh, batch.Options{Size: cfg.BatchSize})
	batches := b.Run()

	sizer := sizecalc.New(sizecalc.Options{Permits: cfg.Workers})
	disp := display.New(sortKey(cfg.Sort))
	del := deleter.New(cfg.DryRun, cfg.ShowProtected)

	input := make(chan eventloop.InputEvent, 16)
	go readInput(ctx, input)

	loop := eventloop.New(eventloop.Deps{
		Input:   input,
		Batches: batches,
		Sizes:   sizer.Completions(),
		Display: disp,
		Sizer:   sizer,
		Deleter: del,
		Render: func(p tui.Progress) {
			width, height, err := guard.Size()
			if err != nil {
				width, height = 80, 24
			}
			marks := make(map[int]struct{})
			for _, idx := range disp.Marks() {
				marks[idx] = struct{}{}
			}
			frame := tui.Frame(disp, width, height, marks, p)
			fmt.Fprint(os.Stdout, "\x1b[H\x1b[2J"+frame)
		},
		TickInterval: 16 * time.Millisecond,
	})

	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("event loop exited with error", "error", err)
		return ExitScanError
	}

	for _, ee := range w.Errors().Entries() {
		logger.EntryWarning(ee.Path, ee.Err)
	}
	return ExitOK
}

// readInput translates raw terminal bytes into recognized key actions
// and feeds them to the event loop until ctx is cancelled or stdin
// closes.
func readInput(ctx context.Context, out chan<- eventloop.InputEvent) {
	buf := make([]byte, 8)
	for {
		select {
		case <-ctx.Done():
			close(out)
			return
		default:
		}
		n, err := os.Stdin.Read(buf)
		if err != nil {
			close(out)
			return
		}
		for i := 0; i < n; i++ {
			if ev, ok := translateKey(buf[i]); ok {
				select {
				case out <- ev:
				case <-ctx.Done():
					close(out)
					return
				}
			}
		}
	}
}

func translateKey(b byte) (eventloop.InputEvent, bool) {
	switch b {
	case 'q', 3: // 'q' or Ctrl-C
		return eventloop.InputEvent{Key: eventloop.KeyQuit}, true
	case 'j':
		return eventloop.InputEvent{Key: eventloop.KeyDown}, true
	case 'k':
		return eventloop.InputEvent{Key: eventloop.KeyUp}, true
	case 'd':
		return eventloop.InputEvent{Key: eventloop.KeyDelete}, true
	case 'D':
		return eventloop.InputEvent{Key: eventloop.KeyDeleteMarked}, true
	case ' ':
		return eventloop.InputEvent{Key: eventloop.KeyMark}, true
	case 'S':
		return eventloop.InputEvent{Key: eventloop.KeySortSize}, true
	case 'P':
		return eventloop.InputEvent{Key: eventloop.KeySortPath}, true
	case 'A':
		return eventloop.InputEvent{Key: eventloop.KeySortAge}, true
	case 'X':
		return eventloop.InputEvent{Key: eventloop.KeyToggleProtected}, true
	default:
		return eventloop.InputEvent{}, false
	}
}
