package command

import (
	"fmt"
	"sort"
	"time"

	"cmdterm/internal/syntax"
	"cmdterm/internal/sysstat"
)

// Kind enumerates every command the interpreter knows.
type Kind int

const (
	KindPwd Kind = iota + 1
	KindLs
	KindCd
	KindMkdir
	KindRm
	KindCat
	KindEcho
	KindTouch
	KindCPU
	KindMem
	KindPs
)

var kindNames = map[Kind]string{
	KindPwd:   "pwd",
	KindLs:    "ls",
	KindCd:    "cd",
	KindMkdir: "mkdir",
	KindRm:    "rm",
	KindCat:   "cat",
	KindEcho:  "echo",
	KindTouch: "touch",
	KindCPU:   "cpu",
	KindMem:   "mem",
	KindPs:    "ps",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Group is the handler family a command belongs to.
type Group string

const (
	GroupFilesystem Group = "filesystem"
	GroupMonitor    Group = "monitor"
)

// Spec describes a command.
type Spec struct {
	Kind    Kind
	Group   Group
	Usage   string
	Summary string
	// ExternalRedirect is set for commands whose output the caller must
	// redirect after the handler returns (cat).
	ExternalRedirect bool
}

// Name is the word that invokes the command.
func (s Spec) Name() string { return s.Kind.String() }

// Command validates its arguments, performs its effect and returns output
// text, or fails with an *Error.
type Command interface {
	Spec() Spec
	Run(ctx *Context, args []string, redir *syntax.Redirect) (string, error)
}

type handlerFunc func(ctx *Context, args []string, redir *syntax.Redirect) (string, error)

type funcCommand struct {
	spec Spec
	run  handlerFunc
}

func (f funcCommand) Spec() Spec { return f.spec }

func (f funcCommand) Run(ctx *Context, args []string, redir *syntax.Redirect) (string, error) {
	return f.run(ctx, args, redir)
}

// Registry maps command names to commands. It is read-only once built.
type Registry struct {
	commands map[string]Command
	specs    []Spec
}

// NewRegistry indexes cmds by name. Two commands with the same name are a
// programming error and panic.
func NewRegistry(cmds ...Command) *Registry {
	bucket := make(map[string]Command, len(cmds))
	specs := make([]Spec, 0, len(cmds))
	for _, cmd := range cmds {
		spec := cmd.Spec()
		name := spec.Name()
		if _, dup := bucket[name]; dup {
			panic(fmt.Sprintf("command %s registered twice", name))
		}
		bucket[name] = cmd
		specs = append(specs, spec)
	}
	return &Registry{commands: bucket, specs: specs}
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Specs returns the registered specs in registration order.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default builds the registry with both handler groups.
func Default(src sysstat.Source, cpuSample time.Duration) *Registry {
	cmds := append(FilesystemCommands(), MonitorCommands(src, cpuSample)...)
	return NewRegistry(cmds...)
}
