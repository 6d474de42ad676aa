// Package extension is the surface plugin authors build against: an
// Extension declares slash commands and command groups, which the registry
// then exposes to registration and dispatch.
package extension

import (
	"goldybot/internal/command"
	"goldybot/internal/platter"
)

// SlashConfig declares one slash command. Params is the ordered parameter
// list; Options optionally refines a subset of them. Wait makes the runtime
// acknowledge the interaction with a deferred response before the handler
// runs, for handlers that outlive the platform's response window.
type SlashConfig struct {
	Name        string
	Description string
	Params      []string
	Options     map[string]command.Option
	Wait        bool
}

// Extension is a plugin module under construction. It satisfies
// registry.Extension once its commands are declared.
type Extension struct {
	name     string
	commands []*command.Command
}

// New starts an empty extension.
func New(name string) *Extension {
	return &Extension{name: name}
}

// Name returns the extension's name.
func (e *Extension) Name() string { return e.name }

// Commands returns the declared top-level commands in declaration order.
func (e *Extension) Commands() []*command.Command { return e.commands }

// Slash declares a top-level leaf command.
func (e *Extension) Slash(cfg SlashConfig, h command.Handler) (*command.Command, error) {
	cmd, err := newLeaf(cfg, h)
	if err != nil {
		return nil, err
	}
	e.commands = append(e.commands, cmd)
	return cmd, nil
}

// Group declares a top-level command group. Its handler, set via Master,
// gates every sub-command invocation.
func (e *Extension) Group(name, description string) (*Group, error) {
	cmd, err := command.NewGroup(name, description, nil)
	if err != nil {
		return nil, err
	}
	e.commands = append(e.commands, cmd)
	return &Group{cmd: cmd}, nil
}

// Group wraps a group command with the sub-command declaration methods.
type Group struct {
	cmd *command.Command
}

// Command returns the underlying group command.
func (g *Group) Command() *command.Command { return g.cmd }

// Master installs the gate handler run before any sub-command descent.
func (g *Group) Master(h command.Handler) {
	g.cmd.SetMaster(h)
}

// Subcommand declares a leaf sub-command under this group.
func (g *Group) Subcommand(cfg SlashConfig, h command.Handler) (*command.Command, error) {
	cmd, err := newLeaf(cfg, h)
	if err != nil {
		return nil, err
	}
	if err := g.cmd.AddSubcommand(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// SubGroup declares a sub-command-group under this top-level group. Only
// leaf sub-commands may be declared beneath it; the command model rejects a
// third nesting level.
func (g *Group) SubGroup(name, description string) (*Group, error) {
	cmd, err := command.NewGroup(name, description, nil)
	if err != nil {
		return nil, err
	}
	if err := g.cmd.AddSubcommandGroup(cmd); err != nil {
		return nil, err
	}
	return &Group{cmd: cmd}, nil
}

func newLeaf(cfg SlashConfig, h command.Handler) (*command.Command, error) {
	if cfg.Wait {
		inner := h
		h = func(p *platter.Platter, args command.Args) error {
			if err := p.Wait(); err != nil {
				return err
			}
			return inner(p, args)
		}
	}
	return command.New(cfg.Name, cfg.Description, h, cfg.Params, cfg.Options)
}
