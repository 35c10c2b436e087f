// Package commands maps named commands onto registry operations and
// serializes results back to the caller. The CLI dispatches through
// it; the registry itself stays free of presentation concerns.
package commands

import (
	"context"
	"fmt"

	"github.com/rmarques/kprof/internal/logging"
	"github.com/rmarques/kprof/internal/registry"
	"github.com/rmarques/kprof/internal/store"
)

// ExecuteFunc runs a command against a registry and returns
// caller-facing output
type ExecuteFunc func(ctx context.Context, reg *registry.Registry, args []string) (string, error)

// Command represents a dispatchable registry operation
type Command struct {
	Name        string      // Short command name (e.g., "use", "list")
	Description string      // Human-readable description
	ArgPattern  string      // Display pattern for help (e.g., "<name>")
	MinArgs     int         // Minimum positional arguments required
	MaxArgs     int         // Maximum positional arguments (-1 = unbounded)
	Mutates     bool        // Whether state is persisted after success
	Execute     ExecuteFunc // Execution function
}

// All returns the full command set in display order.
func All() []Command {
	return []Command{
		{
			Name:        "list",
			Description: "List registered profiles",
			Execute:     listCommand,
		},
		{
			Name:        "current",
			Description: "Show the current selection",
			Execute:     currentCommand,
		},
		{
			Name:        "get",
			Description: "Show one profile as YAML",
			ArgPattern:  "<name>",
			MinArgs:     1,
			MaxArgs:     1,
			Execute:     getCommand,
		},
		{
			Name:        "use",
			Description: "Select a profile",
			ArgPattern:  "<name>",
			MinArgs:     1,
			MaxArgs:     1,
			Mutates:     true,
			Execute:     useCommand,
		},
		{
			Name:        "unset",
			Description: "Clear the current selection",
			Mutates:     true,
			Execute:     unsetCommand,
		},
		{
			Name:        "add",
			Description: "Register a profile from a kubeconfig file",
			ArgPattern:  "<name> <kubeconfig> [context]",
			MinArgs:     2,
			MaxArgs:     3,
			Mutates:     true,
			Execute:     addCommand,
		},
		{
			Name:        "import",
			Description: "Register every context of a kubeconfig file",
			ArgPattern:  "<kubeconfig>",
			MinArgs:     1,
			MaxArgs:     1,
			Mutates:     true,
			Execute:     importCommand,
		},
		{
			Name:        "remove",
			Description: "Remove a profile",
			ArgPattern:  "<name>",
			MinArgs:     1,
			MaxArgs:     1,
			Mutates:     true,
			Execute:     removeCommand,
		},
		{
			Name:        "default",
			Description: "Register the ambient environment as \"default\"",
			Mutates:     true,
			Execute:     defaultCommand,
		},
		{
			Name:        "ping",
			Description: "Probe the API server of a profile",
			ArgPattern:  "[name]",
			MaxArgs:     1,
			Execute:     pingCommand,
		},
	}
}

// Dispatcher routes command invocations to a registry, persisting
// state to the blob store after successful mutations.
type Dispatcher struct {
	registry *registry.Registry
	store    store.Store
	commands []Command
}

// NewDispatcher creates a dispatcher over the given registry and blob
// store. A nil store disables persistence.
func NewDispatcher(reg *registry.Registry, st store.Store) *Dispatcher {
	return &Dispatcher{registry: reg, store: st, commands: All()}
}

// Dispatch executes the named command. After a successful mutating
// command the registry is persisted to the blob store.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args []string) (string, error) {
	cmd, ok := d.lookup(name)
	if !ok {
		return "", fmt.Errorf("unknown command %q", name)
	}
	if len(args) < cmd.MinArgs {
		return "", fmt.Errorf("%s: expected at least %d argument(s): %s %s", cmd.Name, cmd.MinArgs, cmd.Name, cmd.ArgPattern)
	}
	if cmd.MaxArgs >= 0 && len(args) > cmd.MaxArgs {
		return "", fmt.Errorf("%s: too many arguments: %s %s", cmd.Name, cmd.Name, cmd.ArgPattern)
	}

	tc := logging.Start("command " + cmd.Name)
	out, err := cmd.Execute(ctx, d.registry, args)
	logging.End(tc)
	if err != nil {
		logging.Error("command failed", "command", cmd.Name, "error", err)
		return "", err
	}

	if cmd.Mutates && d.store != nil {
		if err := d.registry.Save(ctx, d.store); err != nil {
			return "", err
		}
		logging.Debug("state persisted", "command", cmd.Name)
	}
	return out, nil
}

func (d *Dispatcher) lookup(name string) (Command, bool) {
	for _, cmd := range d.commands {
		if cmd.Name == name {
			return cmd, true
		}
	}
	return Command{}, false
}
