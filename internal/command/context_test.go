package command

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestResolve(t *testing.T) {
	ctx, root := newTestContext(t)
	home := t.TempDir()
	ctx.HomeDir = func() (string, error) { return home, nil }

	tests := []struct {
		input string
		want  string
	}{
		{"", root},
		{".", root},
		{"a/b", filepath.Join(root, "a", "b")},
		{"a/../b/./c", filepath.Join(root, "b", "c")},
		{"..", filepath.Dir(root)},
		{"/etc//x/..", "/etc"},
		{"~", home},
		{"~/docs", filepath.Join(home, "docs")},
		{"~user", filepath.Join(root, "~user")},
	}
	for _, tt := range tests {
		got, err := ctx.Resolve(tt.input)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResolveIsNotConfined(t *testing.T) {
	ctx, root := newTestContext(t)
	got, err := ctx.Resolve("../../..")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := filepath.Clean(filepath.Join(root, "../../..")); got != want {
		t.Fatalf("Resolve escaped path = %q, want %q", got, want)
	}
}

func TestResolveHomeError(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.HomeDir = func() (string, error) { return "", errors.New("no home") }
	if _, err := ctx.Resolve("~/x"); err == nil {
		t.Fatal("expected error when home directory is unknown")
	}
}
