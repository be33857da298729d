package command

import (
	"strings"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default(&fakeStats{}, 0)
	want := []string{"cat", "cd", "cpu", "echo", "ls", "mem", "mkdir", "ps", "pwd", "rm", "touch"}
	got := reg.Names()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Names() = %v, want %v", got, want)
	}

	for _, spec := range reg.Specs() {
		cmd, ok := reg.Lookup(spec.Name())
		if !ok || cmd.Spec().Kind != spec.Kind {
			t.Fatalf("%s: kind mismatch", spec.Name())
		}
		if spec.ExternalRedirect != (spec.Kind == KindCat) {
			t.Fatalf("%s: only cat is redirected by the caller", spec.Name())
		}
	}

	if _, ok := reg.Lookup("foo"); ok {
		t.Fatal("unexpected command foo")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	cmds := FilesystemCommands()
	NewRegistry(append(cmds, cmds[0])...)
}

func TestKindString(t *testing.T) {
	if KindCPU.String() != "cpu" {
		t.Fatalf("KindCPU = %q", KindCPU.String())
	}
	if got := Kind(99).String(); got != "kind(99)" {
		t.Fatalf("unknown kind = %q", got)
	}
}
