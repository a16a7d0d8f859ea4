// Package sensitivity classifies absolute paths as protected when they lie
// under a system or user-config root. The classifier is a pure function of
// the path; it never touches the filesystem and never prompts — UI layers
// decide what to do with the flag (hide by default, refuse deletion).
package sensitivity

import (
	"runtime"
	"strings"

	"github.com/adrg/xdg"
)

// DefaultRoots returns the platform's sensitive root list. This is
// ordinary configuration, not a fixed rule: callers may override it
// entirely via Classifier.Roots.
func DefaultRoots() []string {
	roots := []string{
		xdg.ConfigHome,
		xdg.DataHome,
		xdg.CacheHome,
	}
	if runtime.GOOS == "windows" {
		roots = append(roots,
			`C:\Windows`,
			`C:\Program Files`,
			`C:\Program Files (x86)`,
			`C:\ProgramData`,
		)
	} else {
		roots = append(roots,
			"/bin", "/sbin", "/usr", "/lib", "/lib64",
			"/etc", "/boot", "/sys", "/proc", "/dev",
		)
	}
	return roots
}

// Classifier marks absolute paths as sensitive based on a configured root
// list.
type Classifier struct {
	Roots []string
}

// New builds a Classifier over the given roots, using DefaultRoots() when
// roots is nil.
func New(roots []string) *Classifier {
	if roots == nil {
		roots = DefaultRoots()
	}
	return &Classifier{Roots: roots}
}

// IsSensitive reports whether any ancestor segment of path matches a
// configured sensitive root.
func (c *Classifier) IsSensitive(path string) bool {
	for _, root := range c.Roots {
		if root == "" {
			continue
		}
		if isUnderRoot(path, root) {
			return true
		}
	}
	return false
}

func isUnderRoot(path, root string) bool {
	path = cleanSep(path)
	root = cleanSep(root)
	if root == "" {
		return false
	}
	if runtime.GOOS == "windows" {
		path, root = strings.ToLower(path), strings.ToLower(root)
	}
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+"/")
}

func cleanSep(p string) string {
	return strings.TrimRight(strings.ReplaceAll(p, `\`, "/"), "/")
}
