package models

import (
	"errors"
	"testing"
)

func TestParseObjectPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		owner    ActorID
		file     string
		root     bool
		segments int
	}{
		{"owner only", "u1", "u1", "u1", true, 1},
		{"single file", "u1/a.txt", "u1", "a.txt", false, 2},
		{"nested", "u1/docs/2024/report.pdf", "u1", "report.pdf", false, 4},
		{"dotted name", "u1/.hidden", "u1", ".hidden", false, 2},
		{"dots inside segment", "u1/a..b", "u1", "a..b", false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseObjectPath(tt.path)
			if err != nil {
				t.Fatalf("ParseObjectPath(%q): %v", tt.path, err)
			}
			if p.Owner() != tt.owner {
				t.Errorf("Owner() = %q, want %q", p.Owner(), tt.owner)
			}
			if p.Name() != tt.file {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.file)
			}
			if p.IsNamespaceRoot() != tt.root {
				t.Errorf("IsNamespaceRoot() = %v, want %v", p.IsNamespaceRoot(), tt.root)
			}
			if len(p.Segments()) != tt.segments {
				t.Errorf("len(Segments()) = %d, want %d", len(p.Segments()), tt.segments)
			}
			if p.String() != tt.path {
				t.Errorf("String() = %q, want %q", p.String(), tt.path)
			}
		})
	}
}

// Every segment is checked, not just the owner, so two spellings can never
// name the same object.
func TestParseObjectPath_Rejects(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"leading slash", "/u1/a.txt"},
		{"empty owner", "/a.txt"},
		{"trailing slash", "u1/dir/"},
		{"owner with trailing slash", "u1/"},
		{"double slash", "u1//a.txt"},
		{"empty middle segment", "u1/a//b"},
		{"dot owner", "./a.txt"},
		{"dot middle segment", "u1/./a.txt"},
		{"dotdot owner", "../u2/a.txt"},
		{"dotdot middle segment", "u1/../u2/a.txt"},
		{"dotdot last segment", "u1/.."},
		{"backslash", `u1\a.txt`},
		{"nul byte", "u1/a\x00.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseObjectPath(tt.path)
			if !errors.Is(err, ErrMalformedPath) {
				t.Errorf("ParseObjectPath(%q) error = %v, want ErrMalformedPath", tt.path, err)
			}
		})
	}
}

func TestObjectPath_ZeroValue(t *testing.T) {
	var p ObjectPath
	if p.Owner() != "" || p.Name() != "" || p.IsNamespaceRoot() {
		t.Errorf("zero ObjectPath should be empty, got owner=%q name=%q", p.Owner(), p.Name())
	}
}

func TestObjectPath_SegmentsIsCopy(t *testing.T) {
	p, err := ParseObjectPath("u1/a.txt")
	if err != nil {
		t.Fatal(err)
	}
	segs := p.Segments()
	segs[0] = "u2"
	if p.Owner() != "u1" {
		t.Errorf("Owner() changed to %q after mutating Segments()", p.Owner())
	}
}
