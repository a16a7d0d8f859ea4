// Package profile holds the built-in named bundles of targets (one per
// ecosystem) that back the CLI's -p/--profiles flag.
package profile

import "github.com/cache-sweep/cachesweep/internal/target"

// All is the set of built-in profiles, keyed by name.
var All = map[string][]string{
	"node":    {"node_modules", ".next", ".nuxt", ".parcel-cache", "bower_components"},
	"python":  {".venv", "venv", "__pycache__", "*.egg-info", ".mypy_cache", ".pytest_cache", ".tox"},
	"rust":    {"target"},
	"go":      {"vendor"},
	"java":    {"target", ".gradle", "build"},
	"dotnet":  {"bin", "obj"},
	// Bundler vendors gems under a project's "vendor/bundle" directory;
	// the matcher only ever sees a basename, so the pattern is "bundle",
	// not the full relative path.
	"ruby":    {".bundle", "bundle"},
	"generic": {".cache", "dist", "out", "cmake-build-*"},
}

// Names returns the built-in profile names in a fixed order.
func Names() []string {
	return []string{"node", "python", "rust", "go", "java", "dotnet", "ruby", "generic"}
}

// Resolve expands a list of profile names (or the literal "all") into the
// union of their target patterns, tagged with each pattern's owning
// profile. Unknown profile names produce an error.
func Resolve(names []string) ([]target.Pattern, error) {
	if len(names) == 1 && names[0] == "all" {
		names = Names()
	}

	var patterns []target.Pattern
	for _, name := range names {
		bundle, ok := All[name]
		if !ok {
			return nil, &UnknownProfileError{Name: name}
		}
		for _, p := range bundle {
			patterns = append(patterns, target.Pattern{Name: p, Profile: name})
		}
	}
	return patterns, nil
}

// UnknownProfileError reports a -p/--profiles value that names no
// built-in bundle.
type UnknownProfileError struct {
	Name string
}

func (e *UnknownProfileError) Error() string {
	return "unknown profile: " + e.Name
}
