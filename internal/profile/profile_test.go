package profile

import "testing"

func TestResolveSingleProfile(t *testing.T) {
	patterns, err := Resolve([]string{"node"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patterns) != len(All["node"]) {
		t.Fatalf("expected %d patterns, got %d", len(All["node"]), len(patterns))
	}
	for _, p := range patterns {
		if p.Profile != "node" {
			t.Errorf("expected profile tag 'node', got %q", p.Profile)
		}
	}
}

func TestResolveAll(t *testing.T) {
	patterns, err := Resolve([]string{"all"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	total := 0
	for _, bundle := range All {
		total += len(bundle)
	}
	if len(patterns) != total {
		t.Fatalf("expected %d patterns from 'all', got %d", total, len(patterns))
	}
}

func TestResolveUnknown(t *testing.T) {
	if _, err := Resolve([]string{"bogus"}); err == nil {
		t.Fatalf("expected error for unknown profile")
	}
}

func TestResolveUnion(t *testing.T) {
	patterns, err := Resolve([]string{"node", "python"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patterns) != len(All["node"])+len(All["python"]) {
		t.Fatalf("expected union of node+python patterns, got %d", len(patterns))
	}
}
