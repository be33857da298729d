// Package shell runs command lines: tokenize, split redirection, handle the
// help and nl built-ins, dispatch to the registry and render every outcome
// as text.
package shell

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"cmdterm/internal/command"
	"cmdterm/internal/nlmap"
	"cmdterm/internal/syntax"
)

// Built-in command names intercepted before registry dispatch.
const (
	BuiltinHelp = "help"
	BuiltinNL   = "nl"
)

// Mapper rewrites a free-text instruction into a command line.
type Mapper interface {
	Map(text string) (string, bool)
}

// Executor is the single entry point shared by every front end.
type Executor struct {
	registry *command.Registry
	ctx      *command.Context
	mapper   Mapper
	logger   *zap.Logger
	help     string
}

// Option customises an Executor.
type Option func(*Executor)

// WithMapper replaces the default natural-language mapper.
func WithMapper(m Mapper) Option {
	return func(e *Executor) { e.mapper = m }
}

// WithLogger attaches a logger; without one the executor is silent.
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExecutor returns an Executor dispatching to registry.
func NewExecutor(registry *command.Registry, opts ...Option) *Executor {
	e := &Executor{
		registry: registry,
		ctx:      command.NewContext(),
		mapper:   nlmap.New(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.help = Help(registry)
	return e
}

// Registry exposes the command registry, for completion and listings.
func (e *Executor) Registry() *command.Registry { return e.registry }

// Help returns the text printed by the help built-in.
func (e *Executor) Help() string { return e.help }

// Context exposes the execution context.
func (e *Executor) Context() *command.Context { return e.ctx }

// RunOnce executes line and returns the text to display. It never returns
// an error and never panics: every failure becomes a message line.
func (e *Executor) RunOnce(line string) string {
	return e.run(line, 0)
}

// Exec runs line without rendering the result, so callers can inspect the
// error. Panics are not recovered here.
func (e *Executor) Exec(line string) (string, error) {
	_, out, err := e.execute(line, 0)
	return out, err
}

// errMissingCommand is returned for lines that hold only a redirection.
var errMissingCommand = errors.New("missing command")

func (e *Executor) run(line string, depth int) (out string) {
	start := time.Now()
	name := ""
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("command panicked", zap.String("command", name), zap.Any("panic", r))
			out = fmt.Sprintf("unexpected error: %v\n", r)
		}
	}()

	name, result, err := e.execute(line, depth)
	out = render(result, err)
	e.logger.Debug("command executed",
		zap.String("command", name),
		zap.Int("depth", depth),
		zap.String("outcome", outcome(err)),
		zap.Duration("took", time.Since(start)),
	)
	return out
}

// execute runs one line and reports the command name it dispatched on.
func (e *Executor) execute(line string, depth int) (string, string, error) {
	tokens, err := syntax.Tokenize(line)
	if err != nil {
		return "", "", err
	}
	if len(tokens) == 0 {
		return "", "", nil
	}
	cmdTokens, redir := syntax.SplitRedirection(tokens)
	if len(cmdTokens) == 0 {
		return "", "", errMissingCommand
	}
	name, args := cmdTokens[0], cmdTokens[1:]

	switch name {
	case BuiltinHelp:
		return name, e.help, nil
	case BuiltinNL:
		out, err := e.runNL(args, depth)
		return name, out, err
	}

	cmd, ok := e.registry.Lookup(name)
	if !ok {
		return name, "", builtinErrorf(command.CodeUnknown, "unknown command: %s", name)
	}
	if cmd.Spec().ExternalRedirect {
		out, err := cmd.Run(e.ctx, args, nil)
		if err != nil {
			return name, "", err
		}
		out, err = command.WriteOutput(e.ctx, out, redir)
		return name, out, err
	}
	out, err := cmd.Run(e.ctx, args, redir)
	return name, out, err
}

// runNL maps the instruction and re-enters the pipeline once. A mapped
// line that is itself an nl invocation is refused so recursion stays one
// level deep.
func (e *Executor) runNL(args []string, depth int) (string, error) {
	if len(args) == 0 {
		return "", builtinErrorf(command.CodeBadArgs, `usage: nl "instruction"`)
	}
	mapped, ok := e.mapper.Map(strings.Join(args, " "))
	if !ok || invokesNL(mapped) {
		return "", builtinErrorf(command.CodeNLMap, "could not map instruction")
	}
	return fmt.Sprintf("# nl -> %s\n", mapped) + e.run(mapped, depth+1), nil
}

func invokesNL(line string) bool {
	tokens, err := syntax.Tokenize(line)
	if err != nil || len(tokens) == 0 {
		return false
	}
	return tokens[0] == BuiltinNL
}

// builtinError is raised by the executor itself rather than a handler. It
// renders with the "error: " prefix that handler errors do not carry.
type builtinError struct {
	err *command.Error
}

func builtinErrorf(code command.Code, format string, args ...any) error {
	return &builtinError{err: command.Errorf(code, format, args...)}
}

func (e *builtinError) Error() string { return e.err.Message }

func (e *builtinError) Unwrap() error { return e.err }

// render is the one place results become display text.
func render(out string, err error) string {
	if err == nil {
		return out
	}
	var (
		be *builtinError
		ce *command.Error
	)
	switch {
	case syntax.IsParseError(err):
		return "error: parse error\n"
	case errors.Is(err, errMissingCommand):
		return "error: missing command\n"
	case errors.As(err, &be):
		return "error: " + be.Error() + "\n"
	case errors.As(err, &ce):
		return ce.Message + "\n"
	default:
		return fmt.Sprintf("unexpected error: %v\n", err)
	}
}

func outcome(err error) string {
	var ce *command.Error
	switch {
	case err == nil:
		return "ok"
	case syntax.IsParseError(err):
		return "parse_error"
	case errors.As(err, &ce):
		return "command_error"
	default:
		return "unexpected"
	}
}
