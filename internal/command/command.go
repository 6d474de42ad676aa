package command

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Type distinguishes a leaf slash command from a parent that only exists to
// hold sub-commands.
type Type int

const (
	TypeSlash Type = iota
	TypeGroup
)

const defaultDescription = "This command has no description. Sorry about that."

// Command is a single invocable unit: its option schema, its handler and its
// child sub-commands. A leaf command's options mirror its declared parameter
// list 1:1; a group command carries no own argument options and its handler,
// if any, acts as a master gate run before descending into children.
type Command struct {
	name        string
	description string
	typ         Type
	handler     Handler

	options    []*discordgo.ApplicationCommandOption
	completers map[string]*Autocomplete

	children   map[string]*Command
	childOrder []string
	depth      int
}

// New builds a leaf command. params is the declared parameter list in order;
// specs optionally supplies metadata for a subset of them (see BuildOptions).
func New(name, description string, handler Handler, params []string, specs map[string]Option) (*Command, error) {
	if err := validateName(name, name); err != nil {
		return nil, err
	}
	if description == "" {
		description = defaultDescription
	}
	opts, completers, err := BuildOptions(name, params, specs)
	if err != nil {
		return nil, err
	}
	return &Command{
		name:        name,
		description: description,
		typ:         TypeSlash,
		handler:     handler,
		options:     opts,
		completers:  completers,
	}, nil
}

// NewGroup builds a parent command that holds sub-commands. master, if not
// nil, runs before any child handler and can veto the invocation by
// returning an error.
func NewGroup(name, description string, master Handler) (*Command, error) {
	if err := validateName(name, name); err != nil {
		return nil, err
	}
	if description == "" {
		description = defaultDescription
	}
	return &Command{
		name:        name,
		description: description,
		typ:         TypeGroup,
		handler:     master,
		children:    make(map[string]*Command),
	}, nil
}

func (c *Command) Name() string        { return c.name }
func (c *Command) Description() string { return c.description }
func (c *Command) Type() Type          { return c.typ }
func (c *Command) Handler() Handler    { return c.handler }

// Options returns the command's current wire option list: the declared
// argument options for a leaf, nested sub-command entries for a group.
func (c *Command) Options() []*discordgo.ApplicationCommandOption {
	return c.wireOptions()
}

// SetMaster installs the group's master gate handler.
func (c *Command) SetMaster(h Handler) { c.handler = h }

// Child returns the sub-command or sub-command-group with the given name.
func (c *Command) Child(name string) (*Command, bool) {
	child, ok := c.children[name]
	return child, ok
}

// Completer returns the autocomplete spec declared for the named option.
func (c *Command) Completer(option string) (*Autocomplete, bool) {
	a, ok := c.completers[option]
	return a, ok
}

// AddSubcommand attaches child as a sub-command. The parent must be a group;
// duplicate sibling names fail at registration time, not at dispatch time.
func (c *Command) AddSubcommand(child *Command) error {
	if c.typ != TypeGroup {
		return fmt.Errorf("command %q is not a group, cannot hold sub-command %q", c.name, child.name)
	}
	if child.typ != TypeSlash {
		return fmt.Errorf("sub-command %q of %q must be a leaf command", child.name, c.name)
	}
	return c.attach(child)
}

// AddSubcommandGroup attaches group as a sub-command-group. Exactly two
// levels of nesting are supported: the receiver must itself be top-level,
// and group may only hold leaf sub-commands. A third level is rejected here
// rather than failing later against the platform.
func (c *Command) AddSubcommandGroup(group *Command) error {
	if c.typ != TypeGroup {
		return fmt.Errorf("command %q is not a group, cannot hold sub-command-group %q", c.name, group.name)
	}
	if group.typ != TypeGroup {
		return fmt.Errorf("sub-command-group %q of %q must be a group command", group.name, c.name)
	}
	if c.depth > 0 {
		return fmt.Errorf("sub-command-group %q exceeds the two-level nesting limit under %q", group.name, c.name)
	}
	for _, name := range group.childOrder {
		if group.children[name].typ == TypeGroup {
			return fmt.Errorf("sub-command-group %q already nests group %q, would exceed the two-level limit", group.name, name)
		}
	}
	return c.attach(group)
}

func (c *Command) attach(child *Command) error {
	if _, exists := c.children[child.name]; exists {
		return fmt.Errorf("duplicate sub-command name %q under %q", child.name, c.name)
	}
	child.depth = c.depth + 1
	for _, name := range child.childOrder {
		child.children[name].depth = child.depth + 1
	}
	c.children[child.name] = child
	c.childOrder = append(c.childOrder, child.name)
	return nil
}

// SlashDefinition assembles the wire schema for registration, nesting child
// sub-commands and sub-command-groups in attach order. Mutations made by
// AddSubcommand are visible on the next call.
func (c *Command) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        c.name,
		Description: c.description,
		Options:     c.wireOptions(),
	}
}

func (c *Command) wireOptions() []*discordgo.ApplicationCommandOption {
	if c.typ == TypeSlash {
		return c.options
	}
	var opts []*discordgo.ApplicationCommandOption
	for _, name := range c.childOrder {
		child := c.children[name]
		entry := &discordgo.ApplicationCommandOption{
			Name:        child.name,
			Description: child.description,
			Options:     child.wireOptions(),
		}
		if child.typ == TypeGroup {
			entry.Type = discordgo.ApplicationCommandOptionSubCommandGroup
		} else {
			entry.Type = discordgo.ApplicationCommandOptionSubCommand
		}
		opts = append(opts, entry)
	}
	return opts
}
