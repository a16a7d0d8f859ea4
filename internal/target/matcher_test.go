package target

import "testing"

func TestMatchLiteral(t *testing.T) {
	m := New([]Pattern{{Name: "node_modules", Profile: "node"}}, nil)

	name, profile, ok := m.Match("node_modules")
	if !ok || name != "node_modules" || profile != "node" {
		t.Fatalf("expected literal match, got %q %q %v", name, profile, ok)
	}

	if _, _, ok := m.Match("node_modules_backup"); ok {
		t.Fatalf("literal matcher should not match on substring")
	}
}

func TestMatchSuffixGlob(t *testing.T) {
	m := New([]Pattern{
		{Name: "cmake-build-*", Profile: "cpp"},
		{Name: "*.egg-info", Profile: "python"},
	}, nil)

	cases := []struct {
		name string
		want bool
	}{
		{"cmake-build-debug", true},
		{"cmake-build-", true},
		{"cmake-buildx", false},
		{"foo.egg-info", true},
		{"egg-info", false},
	}
	for _, c := range cases {
		_, _, ok := m.Match(c.name)
		if ok != c.want {
			t.Errorf("Match(%q) = %v, want %v", c.name, ok, c.want)
		}
	}
}

func TestExcluded(t *testing.T) {
	m := New(nil, []string{"a"})
	if !m.Excluded("a") {
		t.Fatalf("expected 'a' to be excluded")
	}
	if m.Excluded("b") {
		t.Fatalf("did not expect 'b' to be excluded")
	}
}

func TestMatchNoPatterns(t *testing.T) {
	m := New(nil, nil)
	if _, _, ok := m.Match("node_modules"); ok {
		t.Fatalf("empty matcher should match nothing")
	}
}
