package discord

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"goldybot/internal/command"
	"goldybot/internal/platter"
	"goldybot/internal/registry"
	"goldybot/internal/storage"
)

// maxSuggestions caps autocomplete responses one below the platform's
// 25-choice limit.
const maxSuggestions = 24

const genericErrorMessage = "😔 Something went wrong while running that command. The error has been reported."

// Dispatcher resolves inbound interactions to the declared command handlers.
type Dispatcher struct {
	registry *registry.Registry
	store    *storage.Storage

	// response seams, swappable in tests
	notify         func(p *platter.Platter, content string) error
	respondChoices func(s *discordgo.Session, i *discordgo.InteractionCreate, choices []*discordgo.ApplicationCommandOptionChoice) error
}

// NewDispatcher wires a dispatcher over a registry and the guild store.
func NewDispatcher(reg *registry.Registry, store *storage.Storage) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		store:    store,
		notify: func(p *platter.Platter, content string) error {
			return p.SendEphemeral(content)
		},
		respondChoices: func(s *discordgo.Session, i *discordgo.InteractionCreate, choices []*discordgo.ApplicationCommandOptionChoice) error {
			return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionApplicationCommandAutocompleteResult,
				Data: &discordgo.InteractionResponseData{Choices: choices},
			})
		},
	}
}

// Dispatch routes one interaction. The bool reports whether the interaction
// was recognized; unrecognized interactions are expected (components handled
// elsewhere, commands from other processes) and are not an error. A non-nil
// error is an unknown handler failure, already rendered to the user and
// logged, surfaced for the caller's supervision to act on.
func (d *Dispatcher) Dispatch(s *discordgo.Session, i *discordgo.InteractionCreate) (bool, error) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return d.dispatchCommand(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		return d.dispatchAutocomplete(s, i)
	default:
		return false, nil
	}
}

func (d *Dispatcher) dispatchCommand(s *discordgo.Session, i *discordgo.InteractionCreate) (bool, error) {
	data := i.ApplicationCommandData()
	entry, ok := d.registry.Lookup(data.Name)
	if !ok {
		return false, nil
	}

	p := platter.New(s, i, d.store)

	cmd, opts, gates, ok := descend(entry.Command, data.Options)
	if !ok {
		log.Printf("[WARN] Malformed nested options on command %q, aborting descent", data.Name)
		// Still respond, or the user stares at a platform timeout.
		if sendErr := d.notify(p, genericErrorMessage); sendErr != nil {
			log.Printf("[ERR] Failed to deliver error notice for %q: %v", data.Name, sendErr)
		}
		return true, nil
	}

	args := extractArgs(cmd, opts)

	err := runGated(cmd, gates, p, args)

	var fe *command.FrontEndError
	if errors.As(err, &fe) {
		log.Printf("[INFO] Command %q rejected for %s: %s", data.Name, username(p), fe.Message)
		if sendErr := d.notify(p, fe.Message); sendErr != nil {
			log.Printf("[ERR] Failed to deliver front-end error for %q: %v", data.Name, sendErr)
		}
		return true, nil
	}
	if err != nil {
		if sendErr := d.notify(p, genericErrorMessage); sendErr != nil {
			log.Printf("[ERR] Failed to deliver error notice for %q: %v", data.Name, sendErr)
		}
		log.Printf("[ERR] Command %q raised an unknown error for user %s: %v", data.Name, username(p), err)
		return true, err
	}
	return true, nil
}

// descend walks nested sub-command-group/sub-command markers down to the
// terminal command, collecting master gate handlers along the way. It
// returns false when a nesting marker names no registered child.
func descend(cmd *command.Command, opts []*discordgo.ApplicationCommandInteractionDataOption) (*command.Command, []*discordgo.ApplicationCommandInteractionDataOption, []command.Handler, bool) {
	var gates []command.Handler
	for {
		nested := findNested(opts)
		if nested == nil {
			return cmd, opts, gates, true
		}
		if h := cmd.Handler(); h != nil {
			gates = append(gates, h)
		}
		child, ok := cmd.Child(nested.Name)
		if !ok {
			return cmd, opts, gates, false
		}
		cmd = child
		opts = nested.Options
	}
}

func findNested(opts []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	for _, o := range opts {
		if o.Type == discordgo.ApplicationCommandOptionSubCommand ||
			o.Type == discordgo.ApplicationCommandOptionSubCommandGroup {
			return o
		}
	}
	return nil
}

// extractArgs builds the argument mapping for the terminal command: declared
// option names matched against the event's entries by name. Options absent
// from the event stay absent from the mapping.
func extractArgs(cmd *command.Command, opts []*discordgo.ApplicationCommandInteractionDataOption) command.Args {
	args := make(command.Args)
	for _, declared := range cmd.Options() {
		if declared.Type == discordgo.ApplicationCommandOptionSubCommand ||
			declared.Type == discordgo.ApplicationCommandOptionSubCommandGroup {
			continue
		}
		for _, supplied := range opts {
			if supplied.Name == declared.Name {
				args[declared.Name] = supplied.Value
				break
			}
		}
	}
	return args
}

// runGated runs each master gate in descent order, then the terminal
// handler. Any gate error vetoes the invocation.
func runGated(cmd *command.Command, gates []command.Handler, p *platter.Platter, args command.Args) error {
	for _, gate := range gates {
		if err := gate(p, command.Args{}); err != nil {
			return err
		}
	}
	h := cmd.Handler()
	if h == nil {
		return command.NewFrontEndError("That command cannot be invoked directly.")
	}
	return h(p, args)
}

func (d *Dispatcher) dispatchAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) (bool, error) {
	data := i.ApplicationCommandData()
	entry, ok := d.registry.Lookup(data.Name)
	if !ok {
		return false, nil
	}

	cmd, opts, _, ok := descend(entry.Command, data.Options)
	if !ok {
		log.Printf("[WARN] Malformed nested options on autocomplete for %q, aborting descent", data.Name)
		return true, nil
	}

	focused := focusedOption(opts)
	if focused == nil {
		log.Printf("[WARN] Autocomplete event for %q carries no focused option", data.Name)
		return true, nil
	}
	typed := fmt.Sprint(focused.Value)

	// Sibling values resolved so far, minus the option still being typed.
	siblings := extractArgs(cmd, opts)
	delete(siblings, focused.Name)

	choices, err := d.suggest(s, i, cmd, focused.Name, typed, siblings)
	if err != nil {
		// Suggestion failures are cosmetic; log them and leave the box empty.
		log.Printf("[ERR] Autocomplete for %q option %q failed: %v", data.Name, focused.Name, err)
		choices = nil
	}
	if len(choices) > maxSuggestions {
		choices = choices[:maxSuggestions]
	}

	if err := d.respondChoices(s, i, choices); err != nil {
		log.Printf("[ERR] Failed to send autocomplete response for %q: %v", data.Name, err)
	}
	return true, nil
}

func focusedOption(opts []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	for _, o := range opts {
		if o.Focused {
			return o
		}
	}
	return nil
}

func (d *Dispatcher) suggest(s *discordgo.Session, i *discordgo.InteractionCreate, cmd *command.Command, option, typed string, args command.Args) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	spec, ok := cmd.Completer(option)
	if !ok {
		return nil, nil
	}
	if spec.Callback != nil {
		return spec.Callback(platter.New(s, i, d.store), typed, args)
	}

	lowered := strings.ToLower(typed)
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, rec := range spec.Recommendations {
		if lowered != "" && !strings.Contains(strings.ToLower(rec), lowered) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: rec, Value: rec})
	}
	return choices, nil
}

func username(p *platter.Platter) string {
	if p.Author != nil {
		return p.Author.Username
	}
	return "unknown"
}
