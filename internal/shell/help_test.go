package shell

import (
	"strings"
	"testing"
	"time"

	"cmdterm/internal/command"
)

const wantHelp = "Built-in commands:\n" +
	"  pwd, ls [path], cd <dir>, mkdir <dir>..., rm <path>...,\n" +
	"  cat <file>..., echo <text> [> file | >> file], touch <file>...\n" +
	"Monitoring:\n" +
	"  cpu, mem, ps\n" +
	"Utilities:\n" +
	"  nl \"natural language instruction\"\n" +
	"  help\n"

func TestHelpFromRegistry(t *testing.T) {
	reg := command.Default(stubStats{}, time.Millisecond)
	if got := Help(reg); got != wantHelp {
		t.Fatalf("Help() =\n%s\nwant\n%s", got, wantHelp)
	}
	if got := NewExecutor(reg).RunOnce("help"); got != wantHelp {
		t.Fatalf("help built-in = %q", got)
	}
}

func TestHelpExtraBuiltins(t *testing.T) {
	reg := command.Default(stubStats{}, time.Millisecond)
	got := Help(reg, BuiltinHelp, "exit")
	if !strings.HasSuffix(got, "  help, exit\n") {
		t.Fatalf("Help with exit = %q", got)
	}
}

func TestHelpOmitsEmptyGroups(t *testing.T) {
	reg := command.NewRegistry(command.FilesystemCommands()...)
	got := Help(reg)
	if strings.Contains(got, "Monitoring:") {
		t.Fatalf("filesystem-only registry listed monitoring: %q", got)
	}
	if !strings.HasPrefix(got, "Built-in commands:\n  pwd, ") {
		t.Fatalf("Help() = %q", got)
	}
}
