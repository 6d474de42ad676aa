package discord

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"goldybot/internal/registry"
)

// Transport is the narrow slice of the REST client that command
// registration needs. An empty guildID addresses the global command set.
type Transport interface {
	ApplicationCommands(guildID string) ([]*discordgo.ApplicationCommand, error)
	BulkOverwrite(guildID string, commands []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, error)
}

// testGuildMarker replaces every description in the test-guild copy so a
// guild-scoped test registration can never be mistaken for the global one.
const testGuildMarker = "🧪 Test-guild copy of this command."

// Reconciler compares the locally declared command set against the remote
// registration and performs a bulk replace-publish when they differ. It runs
// once at startup, before dispatch begins; it is not re-entrant.
type Reconciler struct {
	transport   Transport
	registry    *registry.Registry
	testGuildID string

	// hash of the last successfully synced payload; a repeat Sync with an
	// unchanged local set returns without touching the network.
	previousHash string
}

// NewReconciler wires a reconciler over a transport and a registry.
// testGuildID, when non-empty, gets a marked guild-scoped copy of every
// publish.
func NewReconciler(t Transport, reg *registry.Registry, testGuildID string) *Reconciler {
	return &Reconciler{transport: t, registry: reg, testGuildID: testGuildID}
}

// Sync brings the remote command registration in line with the local set.
// An empty local set publishes nothing: it almost always means extensions
// failed to load, and silently wiping the remote set would be destructive.
func (r *Reconciler) Sync() error {
	var local []*discordgo.ApplicationCommand
	for _, entry := range r.registry.Entries() {
		local = append(local, entry.Command.SlashDefinition())
	}

	if len(local) == 0 {
		log.Println("[WARN] No local commands declared, skipping command sync")
		return nil
	}

	hash := hashPayload(local)
	if hash == r.previousHash {
		log.Println("[INFO] Command payload unchanged since last sync, nothing to do")
		return nil
	}

	remote, err := r.transport.ApplicationCommands("")
	if err != nil {
		return fmt.Errorf("failed to fetch registered commands: %w", err)
	}

	if commandSetsEqual(local, remote) {
		log.Printf("[INFO] All %d commands already registered, skipping publish", len(local))
		r.previousHash = hash
		return nil
	}

	// The platform's bulk endpoint is all-or-nothing: any difference means
	// republishing the entire local set.
	published, err := r.transport.BulkOverwrite("", local)
	if err != nil {
		return fmt.Errorf("bulk command publish failed: %w", err)
	}
	log.Printf("[DONE] Published %d command(s)", len(published))

	if r.testGuildID != "" {
		marked := markTestPayload(local)
		if _, err := r.transport.BulkOverwrite(r.testGuildID, marked); err != nil {
			return fmt.Errorf("test-guild command publish failed: %w", err)
		}
		log.Printf("[DONE] Published %d command(s) to test guild %s", len(marked), r.testGuildID)
	}

	r.previousHash = hash
	return nil
}

// commandSetsEqual reports whether every local command has an identical
// remote counterpart and the remote set carries no unknown names.
func commandSetsEqual(local, remote []*discordgo.ApplicationCommand) bool {
	localNames := make(map[string]struct{}, len(local))
	for _, lc := range local {
		localNames[lc.Name] = struct{}{}
	}
	for _, rc := range remote {
		if _, ok := localNames[rc.Name]; !ok {
			return false
		}
	}

	for _, lc := range local {
		var match *discordgo.ApplicationCommand
		for _, rc := range remote {
			if rc.Name == lc.Name && normalizeType(rc.Type) == normalizeType(lc.Type) {
				match = rc
				break
			}
		}
		if match == nil {
			return false
		}
		if lc.Description != match.Description {
			return false
		}
		if !optionsEqual(lc.Options, match.Options) {
			return false
		}
	}
	return true
}

func normalizeType(t discordgo.ApplicationCommandType) discordgo.ApplicationCommandType {
	if t == 0 {
		return discordgo.ChatApplicationCommand
	}
	return t
}

// optionsEqual compares option lists verbatim in declaration order. A nil
// list and an empty list are the same thing; the platform serializes absent
// options both ways.
func optionsEqual(a, b []*discordgo.ApplicationCommandOption) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.Type != y.Type || x.Name != y.Name || x.Description != y.Description ||
			x.Required != y.Required || x.Autocomplete != y.Autocomplete {
			return false
		}
		if !choicesEqual(x.Choices, y.Choices) {
			return false
		}
		if !optionsEqual(x.Options, y.Options) {
			return false
		}
	}
	return true
}

func choicesEqual(a, b []*discordgo.ApplicationCommandOptionChoice) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			return false
		}
		// Remote integer values decode as float64; compare serialized forms.
		av, _ := json.Marshal(a[i].Value)
		bv, _ := json.Marshal(b[i].Value)
		if !bytes.Equal(av, bv) {
			return false
		}
	}
	return true
}

// markTestPayload deep-copies the payload with every command and first-level
// sub-command description replaced by the test marker.
func markTestPayload(local []*discordgo.ApplicationCommand) []*discordgo.ApplicationCommand {
	marked := make([]*discordgo.ApplicationCommand, len(local))
	for i, c := range local {
		clone := *c
		clone.Description = testGuildMarker
		clone.Options = make([]*discordgo.ApplicationCommandOption, len(c.Options))
		for j, o := range c.Options {
			opt := *o
			if opt.Type == discordgo.ApplicationCommandOptionSubCommand ||
				opt.Type == discordgo.ApplicationCommandOptionSubCommandGroup {
				opt.Description = testGuildMarker
			}
			clone.Options[j] = &opt
		}
		marked[i] = &clone
	}
	return marked
}

// hashPayload returns a deterministic SHA-1 over the payload's stable fields,
// preserving declaration order.
func hashPayload(cmds []*discordgo.ApplicationCommand) string {
	normalized := make([]map[string]any, len(cmds))
	for i, c := range cmds {
		entry := map[string]any{
			"name":        c.Name,
			"description": c.Description,
			"type":        normalizeType(c.Type),
		}
		if len(c.Options) > 0 {
			entry["options"] = normalizeHashOptions(c.Options)
		}
		normalized[i] = entry
	}
	data, _ := json.Marshal(normalized)
	sum := sha1.Sum(data)
	return fmt.Sprintf("%x", sum)
}

func normalizeHashOptions(opts []*discordgo.ApplicationCommandOption) []map[string]any {
	out := make([]map[string]any, len(opts))
	for i, o := range opts {
		entry := map[string]any{
			"name":         o.Name,
			"description":  o.Description,
			"type":         o.Type,
			"required":     o.Required,
			"autocomplete": o.Autocomplete,
		}
		if len(o.Choices) > 0 {
			choices := make([]map[string]any, len(o.Choices))
			for j, ch := range o.Choices {
				choices[j] = map[string]any{"name": ch.Name, "value": ch.Value}
			}
			entry["choices"] = choices
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeHashOptions(o.Options)
		}
		out[i] = entry
	}
	return out
}
