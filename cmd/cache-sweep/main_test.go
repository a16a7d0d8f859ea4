package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cache-sweep/cachesweep/internal/display"
	"github.com/cache-sweep/cachesweep/internal/eventloop"
)

func TestValidateRejectsJSONAndJSONStreamTogether(t *testing.T) {
	cfg := &Config{JSON: true, JSONStream: true, Sort: "size"}
	if err := validate(cfg); err == nil {
		t.Fatalf("expected an error when --json and --json-stream are both set")
	}
}

func TestValidateRejectsUnknownSortKey(t *testing.T) {
	cfg := &Config{Sort: "alphabetical"}
	if err := validate(cfg); err == nil {
		t.Fatalf("expected an error for an unrecognized sort key")
	}
}

func TestValidateAcceptsDefaultConfig(t *testing.T) {
	cfg := &Config{Sort: "size"}
	if err := validate(cfg); err != nil {
		t.Fatalf("unexpected error for a default config: %v", err)
	}
}

func TestResolveRootDefaultsToWorkingDirectory(t *testing.T) {
	cfg := &Config{}
	root, err := resolveRoot(cfg)
	if err != nil {
		t.Fatalf("resolveRoot: %v", err)
	}
	wd, _ := os.Getwd()
	if root != wd {
		t.Errorf("expected %q, got %q", wd, root)
	}
}

func TestResolveRootPrefersExplicitDirectory(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Directory: dir}
	root, err := resolveRoot(cfg)
	if err != nil {
		t.Fatalf("resolveRoot: %v", err)
	}
	want, _ := filepath.Abs(dir)
	if root != want {
		t.Errorf("expected %q, got %q", want, root)
	}
}

func TestResolveRootFullUsesHomeDirectory(t *testing.T) {
	cfg := &Config{Full: true}
	root, err := resolveRoot(cfg)
	if err != nil {
		t.Fatalf("resolveRoot: %v", err)
	}
	home, _ := os.UserHomeDir()
	if root != home {
		t.Errorf("expected home directory %q, got %q", home, root)
	}
}

func TestResolveTargetsOverridesProfilesWhenBothGiven(t *testing.T) {
	cfg := &Config{Profiles: []string{"node"}, Targets: []string{"my-cache-dir"}}
	patterns, err := resolveTargets(cfg)
	if err != nil {
		t.Fatalf("resolveTargets: %v", err)
	}
	if len(patterns) != 1 || patterns[0].Name != "my-cache-dir" {
		t.Fatalf("expected -t to fully override -p, got %+v", patterns)
	}
}

func TestResolveTargetsDefaultsToAllProfiles(t *testing.T) {
	cfg := &Config{}
	patterns, err := resolveTargets(cfg)
	if err != nil {
		t.Fatalf("resolveTargets: %v", err)
	}
	if len(patterns) == 0 {
		t.Fatalf("expected the default profile set to resolve to a non-empty pattern list")
	}
}

func TestResolveTargetsRejectsUnknownProfile(t *testing.T) {
	cfg := &Config{Profiles: []string{"does-not-exist"}}
	if _, err := resolveTargets(cfg); err == nil {
		t.Fatalf("expected an error for an unknown profile name")
	}
}

func TestSortKeyMapsFlagValues(t *testing.T) {
	cases := map[string]display.SortKey{
		"path":  display.SortPathAsc,
		"age":   display.SortAgeOldestFirst,
		"size":  display.SortSizeDesc,
		"bogus": display.SortSizeDesc,
		"":      display.SortSizeDesc,
	}
	for in, want := range cases {
		if got := sortKey(in); got != want {
			t.Errorf("sortKey(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTranslateKeyRecognizesBoundActions(t *testing.T) {
	cases := map[byte]eventloop.Key{
		'q': eventloop.KeyQuit,
		3:   eventloop.KeyQuit,
		'j': eventloop.KeyDown,
		'k': eventloop.KeyUp,
		'd': eventloop.KeyDelete,
		'D': eventloop.KeyDeleteMarked,
		' ': eventloop.KeyMark,
		'S': eventloop.KeySortSize,
		'P': eventloop.KeySortPath,
		'A': eventloop.KeySortAge,
		'X': eventloop.KeyToggleProtected,
	}
	for b, want := range cases {
		ev, ok := translateKey(b)
		if !ok {
			t.Errorf("translateKey(%q) reported not ok, want %v", b, want)
			continue
		}
		if ev.Key != want {
			t.Errorf("translateKey(%q) = %v, want %v", b, ev.Key, want)
		}
	}
}

func TestTranslateKeyIgnoresUnboundBytes(t *testing.T) {
	if _, ok := translateKey('z'); ok {
		t.Errorf("expected an unbound key to report not ok")
	}
}
