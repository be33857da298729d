package shell

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cmdterm/internal/command"
	"cmdterm/internal/sysstat"
	"cmdterm/internal/syntax"
)

type stubStats struct{}

func (stubStats) CPUPercent(time.Duration) (float64, error) { return 5, nil }
func (stubStats) Memory() (sysstat.Memory, error)           { return sysstat.Memory{}, nil }
func (stubStats) Processes() ([]sysstat.Process, error)     { return nil, nil }

func newTestExecutor(t *testing.T, opts ...Option) (*Executor, string) {
	t.Helper()
	testChdir(t, t.TempDir())
	root, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	return NewExecutor(command.Default(stubStats{}, time.Millisecond), opts...), root
}

func TestMkdirThenLs(t *testing.T) {
	ex, _ := newTestExecutor(t)
	for _, d := range []string{"alpha", "with space"} {
		if out := ex.RunOnce("mkdir " + syntax.Quote(d)); out != "" {
			t.Fatalf("mkdir %s = %q", d, out)
		}
		out := ex.RunOnce("ls")
		if !strings.Contains(out, d+"/\n") {
			t.Fatalf("ls after mkdir %s = %q", d, out)
		}
	}
}

func TestPwdMatchesWorkingDirectory(t *testing.T) {
	ex, root := newTestExecutor(t)
	if got := strings.TrimSpace(ex.RunOnce("pwd")); got != root {
		t.Fatalf("pwd = %q, want %q", got, root)
	}
}

func TestCdIntoNonDirectory(t *testing.T) {
	ex, root := newTestExecutor(t)
	ex.RunOnce("touch plain")

	_, err := ex.Exec("cd plain")
	if command.CodeOf(err) != command.CodeNotDir {
		t.Fatalf("expected NOTDIR, got %v", err)
	}
	out := ex.RunOnce("cd nowhere")
	if want := "not a directory: " + filepath.Join(root, "nowhere") + "\n"; out != want {
		t.Fatalf("cd nowhere = %q, want %q", out, want)
	}
	if cwd, _ := os.Getwd(); cwd != root {
		t.Fatalf("cwd changed to %s", cwd)
	}

	ex.RunOnce("mkdir sub")
	if out := ex.RunOnce("cd sub"); out != "" {
		t.Fatalf("cd sub = %q", out)
	}
	if got := strings.TrimSpace(ex.RunOnce("pwd")); got != filepath.Join(root, "sub") {
		t.Fatalf("pwd after cd = %q", got)
	}
}

func TestEchoRedirectThenCat(t *testing.T) {
	ex, _ := newTestExecutor(t)
	if out := ex.RunOnce(`echo "hello" > f.txt`); out != "" {
		t.Fatalf("redirected echo printed %q", out)
	}
	if out := ex.RunOnce("cat f.txt"); out != "hello\n" {
		t.Fatalf("cat = %q", out)
	}
	ex.RunOnce(`echo "world" >> f.txt`)
	if out := ex.RunOnce("cat f.txt"); out != "hello\nworld\n" {
		t.Fatalf("cat after append = %q", out)
	}
}

func TestCatRedirectedByExecutor(t *testing.T) {
	ex, root := newTestExecutor(t)
	ex.RunOnce("echo one > a")
	ex.RunOnce("echo two > b")
	if out := ex.RunOnce("cat a b > joined"); out != "" {
		t.Fatalf("redirected cat printed %q", out)
	}
	data, err := os.ReadFile(filepath.Join(root, "joined"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "one\n\ntwo\n" {
		t.Fatalf("joined = %q", data)
	}
	if out := ex.RunOnce("cat a >"); out != "missing redirection target\n" {
		t.Fatalf("cat with missing target = %q", out)
	}
	if out := ex.RunOnce("cat missing > x"); !strings.HasPrefix(out, "not a file: ") {
		t.Fatalf("cat missing = %q", out)
	}
	if _, err := os.Stat(filepath.Join(root, "x")); !os.IsNotExist(err) {
		t.Fatal("failed cat should not create the redirection target")
	}
}

func TestRmMissingAndTree(t *testing.T) {
	ex, root := newTestExecutor(t)
	if _, err := ex.Exec("rm ghost"); command.CodeOf(err) != command.CodeNoEnt {
		t.Fatalf("expected NOENT, got %v", err)
	}
	ex.RunOnce("mkdir top/mid/low")
	ex.RunOnce("touch top/mid/low/file")
	if out := ex.RunOnce("rm top"); out != "" {
		t.Fatalf("rm top = %q", out)
	}
	if _, err := os.Stat(filepath.Join(root, "top")); !os.IsNotExist(err) {
		t.Fatal("tree still exists")
	}
}

func TestMkdirTwice(t *testing.T) {
	ex, _ := newTestExecutor(t)
	for i := 0; i < 2; i++ {
		if out := ex.RunOnce("mkdir d"); out != "" {
			t.Fatalf("mkdir run %d = %q", i, out)
		}
	}
}

func TestRenderedMessages(t *testing.T) {
	ex, _ := newTestExecutor(t)
	tests := []struct {
		line string
		want string
	}{
		{"foo", "error: unknown command: foo\n"},
		{"foo bar > x", "error: unknown command: foo\n"},
		{`echo "open`, "error: parse error\n"},
		{"", ""},
		{"   ", ""},
		{"> out.txt", "error: missing command\n"},
		{"nl", "error: usage: nl \"instruction\"\n"},
		{`nl 'say "open'`, "error: could not map instruction\n"},
		{"nl nl pwd", "error: could not map instruction\n"},
		{"pwd extra", "pwd takes no arguments\n"},
		{"cd", "usage: cd <dir>\n"},
		{"mkdir", "usage: mkdir <dir>...\n"},
		{"rm", "usage: rm <path>...\n"},
		{"cat", "usage: cat <file>...\n"},
		{"touch", "usage: touch <file>...\n"},
		{"echo hi >", "missing redirection target\n"},
		{"cpu now", "cpu takes no arguments\n"},
		{"cpu", "CPU: 5.0%\n"},
		{"help", ex.Help()},
	}
	for _, tt := range tests {
		if got := ex.RunOnce(tt.line); got != tt.want {
			t.Fatalf("RunOnce(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestExecCodes(t *testing.T) {
	ex, _ := newTestExecutor(t)
	tests := []struct {
		line string
		code command.Code
	}{
		{"foo", command.CodeUnknown},
		{"nl", command.CodeBadArgs},
		{`nl '"unterminated'`, command.CodeNLMap},
		{"ls nowhere", command.CodeNoEnt},
		{"echo x >", command.CodeBadRedir},
	}
	for _, tt := range tests {
		_, err := ex.Exec(tt.line)
		if got := command.CodeOf(err); got != tt.code {
			t.Fatalf("Exec(%q) code = %q, want %q (%v)", tt.line, got, tt.code, err)
		}
	}
	if _, err := ex.Exec(`echo "x`); !syntax.IsParseError(err) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestNL(t *testing.T) {
	ex, root := newTestExecutor(t)

	out := ex.RunOnce(`nl "create folder testdir"`)
	if out != "# nl -> mkdir testdir\n" {
		t.Fatalf("nl create folder = %q", out)
	}
	if info, err := os.Stat(filepath.Join(root, "testdir")); err != nil || !info.IsDir() {
		t.Fatalf("testdir not created: %v", err)
	}

	out = ex.RunOnce("nl where am i")
	if out != "# nl -> pwd\n"+root+"\n" {
		t.Fatalf("nl where am i = %q", out)
	}

	out = ex.RunOnce("nl write to file notes.txt")
	if out != "# nl -> echo content > notes.txt\n" {
		t.Fatalf("nl write = %q", out)
	}
	if out := ex.RunOnce("cat notes.txt"); out != "content\n" {
		t.Fatalf("notes.txt = %q", out)
	}

	out = ex.RunOnce("nl frobnicate")
	if out != "# nl -> frobnicate\nerror: unknown command: frobnicate\n" {
		t.Fatalf("pass-through = %q", out)
	}
}

type panicCommand struct{}

func (panicCommand) Spec() command.Spec {
	return command.Spec{Kind: command.KindEcho}
}

func (panicCommand) Run(*command.Context, []string, *syntax.Redirect) (string, error) {
	panic("kaboom")
}

type failingCommand struct{}

func (failingCommand) Spec() command.Spec {
	return command.Spec{Kind: command.KindPwd}
}

func (failingCommand) Run(*command.Context, []string, *syntax.Redirect) (string, error) {
	return "", errors.New("disk on fire")
}

func TestUnexpectedFailuresBecomeText(t *testing.T) {
	ex := NewExecutor(command.NewRegistry(panicCommand{}, failingCommand{}))
	if out := ex.RunOnce("echo hi"); out != "unexpected error: kaboom\n" {
		t.Fatalf("panic rendered as %q", out)
	}
	if out := ex.RunOnce("pwd"); out != "unexpected error: disk on fire\n" {
		t.Fatalf("error rendered as %q", out)
	}
}

type fixedMapper string

func (m fixedMapper) Map(string) (string, bool) { return string(m), true }

func TestNLRefusesRecursiveMapping(t *testing.T) {
	ex, _ := newTestExecutor(t, WithMapper(fixedMapper("nl pwd")))
	if out := ex.RunOnce("nl anything"); out != "error: could not map instruction\n" {
		t.Fatalf("recursive mapping = %q", out)
	}
}
