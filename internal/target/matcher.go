// Package target classifies directory basenames against an active set of
// cache/dependency-directory patterns. Matching is O(1) expected: literal
// names are looked up in a hash map; the (small) set of "*" suffix globs
// is scanned linearly.
package target

import "strings"

// Pattern is one configured target: a literal basename or a glob with a
// "*" (e.g. "cmake-build-*", "*.egg-info"), tagged with the ecosystem
// profile it belongs to.
type Pattern struct {
	Name    string // literal name, or glob containing "*"
	Profile string // owning profile, e.g. "node"
}

// Matcher classifies directory basenames against an active pattern set
// and an exclusion set.
type Matcher struct {
	literals map[string]Pattern
	globs    []Pattern
	excluded map[string]struct{}
}

// New builds a Matcher from the given patterns and basename exclusions.
// Patterns containing a "*" are treated as globs (e.g. "cmake-build-*",
// "*.egg-info"); everything else is an exact literal.
func New(patterns []Pattern, exclude []string) *Matcher {
	m := &Matcher{
		literals: make(map[string]Pattern, len(patterns)),
		excluded: make(map[string]struct{}, len(exclude)),
	}
	for _, p := range patterns {
		if isGlob(p.Name) {
			m.globs = append(m.globs, p)
			continue
		}
		m.literals[p.Name] = p
	}
	for _, e := range exclude {
		m.excluded[e] = struct{}{}
	}
	return m
}

// Excluded reports whether basename is in the exclusion blacklist.
func (m *Matcher) Excluded(basename string) bool {
	_, ok := m.excluded[basename]
	return ok
}

// Match classifies basename, returning the matched pattern name, its
// profile tag, and true if it matched any active pattern.
func (m *Matcher) Match(basename string) (patternName, profile string, ok bool) {
	if p, found := m.literals[basename]; found {
		return p.Name, p.Profile, true
	}
	for _, p := range m.globs {
		if globMatch(p.Name, basename) {
			return p.Name, p.Profile, true
		}
	}
	return "", "", false
}

func isGlob(pattern string) bool {
	return strings.Contains(pattern, "*")
}

// globMatch implements the single supported glob shape: one "*" anywhere
// in the pattern, matching any run of characters, possibly empty (e.g.
// "cmake-build-*", "*.egg-info"). Only the first "*" is a wildcard; any
// later "*" is matched literally as part of the suffix.
func globMatch(pattern, name string) bool {
	star := strings.IndexByte(pattern, '*')
	if star < 0 {
		return pattern == name
	}
	prefix, suffix := pattern[:star], pattern[star+1:]
	if len(name) < len(prefix)+len(suffix) {
		return false
	}
	return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix)
}
