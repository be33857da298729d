// Package repl is the interactive terminal front end. It owns the help and
// exit built-ins, line editing and completion; everything else goes to the
// shared shell.Executor.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/c-bata/go-prompt"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
	"golang.org/x/term"

	"cmdterm/internal/history"
	"cmdterm/internal/logging"
	"cmdterm/internal/shell"
	"cmdterm/internal/syntax"
)

// DefaultPrompt is the prompt prefix shown before the working directory.
const DefaultPrompt = "[cmd]"

const banner = "cmdterm: type 'help' for commands, 'exit' to quit."

// History is the persistence the session needs. *history.Store satisfies it.
type History interface {
	Add(ctx context.Context, e history.Entry) error
	Lines(ctx context.Context, limit int) ([]string, error)
}

// Options configures a Session.
type Options struct {
	Prompt       string
	History      History
	HistoryLimit int
	Out          io.Writer
	Logger       *zap.Logger
}

// Session runs one interactive loop over an Executor.
type Session struct {
	exec        *shell.Executor
	prompt      string
	history     History
	limit       int
	out         io.Writer
	logger      *zap.Logger
	render      *glamour.TermRenderer
	interactive bool
	help        string
}

// promptExit unwinds go-prompt's Run loop, which has no stop method.
type promptExit struct{}

// New builds a Session. Rendering and line editing are only enabled when
// stdin and stdout are terminals.
func New(exec *shell.Executor, opts Options) *Session {
	s := &Session{
		exec:    exec,
		prompt:  opts.Prompt,
		history: opts.History,
		limit:   opts.HistoryLimit,
		out:     opts.Out,
		logger:  opts.Logger,
	}
	// The REPL help also lists exit, which only this front end handles.
	s.help = shell.Help(exec.Registry(), shell.BuiltinHelp, "exit")
	if strings.TrimSpace(s.prompt) == "" {
		s.prompt = DefaultPrompt
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if opts.Out == nil && term.IsTerminal(int(os.Stdout.Fd())) {
		if r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(0),
		); err == nil {
			s.render = r
		}
		s.interactive = term.IsTerminal(int(os.Stdin.Fd()))
	}
	return s
}

// Prefix returns the prompt for the current working directory.
func (s *Session) Prefix() string {
	cwd, err := s.exec.Context().Dir()
	if err != nil {
		cwd = "?"
	}
	return fmt.Sprintf("%s %s $ ", s.prompt, cwd)
}

// Run reads lines until exit, end of input or ctx cancellation.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(s.out, banner)
	if s.interactive {
		return s.runPrompt(ctx, cancel)
	}
	return s.runNonInteractive(ctx, os.Stdin)
}

func (s *Session) runPrompt(ctx context.Context, cancel context.CancelFunc) (err error) {
	var restore func()
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		if state, terr := term.GetState(fd); terr == nil {
			restore = func() { _ = term.Restore(fd, state) }
		}
	}
	if restore != nil {
		defer restore()
	}

	var exitRequested atomic.Bool
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(promptExit); ok {
				err = nil
				return
			}
			panic(r)
		}
	}()

	executor := func(in string) {
		if exitRequested.Load() || ctx.Err() != nil {
			return
		}
		if exit := s.HandleLine(ctx, in); exit {
			exitRequested.Store(true)
			cancel()
			panic(promptExit{})
		}
	}

	p := prompt.New(
		executor,
		s.completer(),
		prompt.OptionHistory(s.loadHistory(ctx)),
		prompt.OptionTitle("cmdterm"),
		prompt.OptionLivePrefix(func() (string, bool) {
			return s.Prefix(), true
		}),
		prompt.OptionAddKeyBind(
			prompt.KeyBind{
				Key: prompt.ControlD,
				Fn: func(buf *prompt.Buffer) {
					if buf.Text() == "" {
						fmt.Fprintln(s.out, "bye")
						exitRequested.Store(true)
						cancel()
						panic(promptExit{})
					}
				},
			},
		),
		prompt.OptionSetExitCheckerOnInput(func(string, bool) bool {
			if exitRequested.Load() {
				return true
			}
			select {
			case <-ctx.Done():
				return true
			default:
				return false
			}
		}),
	)

	p.Run()
	return nil
}

func (s *Session) runNonInteractive(ctx context.Context, in io.Reader) error {
	reader := bufio.NewReader(in)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Fprint(s.out, s.Prefix())
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read input: %w", err)
		}
		if line != "" {
			if exit := s.HandleLine(ctx, strings.TrimRight(line, "\r\n")); exit {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
	}
}

// HandleLine runs one line and reports whether the session should stop.
func (s *Session) HandleLine(ctx context.Context, input string) bool {
	line := strings.TrimSpace(input)
	if line == "" {
		return false
	}
	s.record(ctx, line)

	if tokens, err := syntax.Tokenize(line); err == nil && len(tokens) > 0 {
		switch tokens[0] {
		case "exit", "quit":
			fmt.Fprintln(s.out, "bye")
			return true
		case shell.BuiltinHelp:
			s.printHelp()
			return false
		}
	}

	logging.DevLog("repl dispatching %d chars", len(line))
	fmt.Fprint(s.out, s.exec.RunOnce(line))
	return false
}

func (s *Session) printHelp() {
	if s.render != nil {
		if rendered, err := s.render.Render("```\n" + s.help + "```\n"); err == nil {
			fmt.Fprint(s.out, rendered)
			return
		}
	}
	fmt.Fprint(s.out, s.help)
}

func (s *Session) record(ctx context.Context, line string) {
	if s.history == nil {
		return
	}
	cwd, _ := s.exec.Context().Dir()
	if err := s.history.Add(ctx, history.Entry{
		Source: history.SourceREPL,
		Line:   line,
		Cwd:    cwd,
	}); err != nil {
		s.logger.Warn("record history", zap.Error(err))
	}
}

func (s *Session) loadHistory(ctx context.Context) []string {
	if s.history == nil {
		return nil
	}
	lines, err := s.history.Lines(ctx, s.limit)
	if err != nil {
		s.logger.Warn("load history", zap.Error(err))
		return nil
	}
	return lines
}
