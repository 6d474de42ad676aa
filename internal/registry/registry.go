// Package registry maps loaded extensions to the commands they declared.
// One Registry is built at startup and handed to the reconciler and the
// dispatcher; there is no process-wide instance, so tests can run several
// registries side by side.
package registry

import (
	"fmt"

	"goldybot/internal/command"
)

// Extension is a loaded plugin module contributing commands. Loading
// mechanics live elsewhere; the registry only needs the declared set.
type Extension interface {
	Name() string
	Commands() []*command.Command
}

// Entry pairs a top-level command with its owning extension.
type Entry struct {
	Extension Extension
	Command   *command.Command
}

// Registry holds the (extension, command) pairs. It is written once during
// load, before dispatch begins, and read-only afterwards, so it carries no
// lock.
type Registry struct {
	entries []Entry
	byName  map[string]Entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]Entry)}
}

// Add registers an extension's commands. A top-level name collision with an
// already-registered extension fails fast at load time.
func (r *Registry) Add(ext Extension) error {
	for _, c := range ext.Commands() {
		if prev, exists := r.byName[c.Name()]; exists {
			return fmt.Errorf("command %q from extension %q already registered by %q",
				c.Name(), ext.Name(), prev.Extension.Name())
		}
		entry := Entry{Extension: ext, Command: c}
		r.entries = append(r.entries, entry)
		r.byName[c.Name()] = entry
	}
	return nil
}

// Entries returns all (extension, command) pairs in registration order.
func (r *Registry) Entries() []Entry {
	return r.entries
}

// Lookup finds the top-level command with the given name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.byName[name]
	return e, ok
}
