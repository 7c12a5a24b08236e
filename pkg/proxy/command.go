package proxy

import (
	"context"
	"strings"
)

// Context carries the invocation details handed to a registered
// command. The command system itself is an external collaborator the
// core only notifies via CommandExecuteEvent; this registry exists so
// a proxy-embedding caller has somewhere to plug one in.
type Context struct {
	Source Player
	Args   []string
}

// CommandFunc is a single command implementation.
type CommandFunc func(ctx context.Context, invocation *Context) error

// commandRegistry is a minimal command lookup table. Parsing command
// lines, tab completion, and permission-gated subcommands all belong to
// the external command system; this only routes "/name ..." to a
// registered handler.
type commandRegistry struct {
	commands map[string]CommandFunc
}

func newCommandRegistry() *commandRegistry {
	return &commandRegistry{commands: map[string]CommandFunc{}}
}

// Register installs fn under name, overwriting any previous handler.
func (r *commandRegistry) Register(name string, fn CommandFunc) {
	r.commands[name] = fn
}

// Has reports whether name has a registered handler.
func (r *commandRegistry) Has(name string) bool {
	_, ok := r.commands[name]
	return ok
}

// Invoke runs the handler registered for cmd, if any.
func (r *commandRegistry) Invoke(ctx context.Context, invocation *Context, cmd string) (bool, error) {
	fn, ok := r.commands[cmd]
	if !ok {
		return false, nil
	}
	return true, fn(ctx, invocation)
}

// extract splits a command line into its command name and arguments.
func extract(commandline string) (cmd string, args []string, rest string) {
	fields := strings.Fields(commandline)
	if len(fields) == 0 {
		return "", nil, ""
	}
	return fields[0], fields[1:], commandline
}
