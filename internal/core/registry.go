package core

import (
	"sort"
	"strings"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{commands: map[string]Command{}}
}

// RegisterCommand registers a command under its name and every alias.
func (r *Registry) RegisterCommand(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[strings.ToLower(cmd.Name())] = cmd
	for _, a := range cmd.Aliases() {
		r.commands[strings.ToLower(a)] = cmd
	}
}

// GetCommand returns the command with the given name or alias
func (r *Registry) GetCommand(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[strings.ToLower(name)]
	return cmd, ok
}

// AllCommands returns all registered commands, sorted by name
func (r *Registry) AllCommands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]bool{}
	list := make([]Command, 0)
	for _, cmd := range r.commands {
		if seen[cmd.Name()] {
			continue
		}
		list = append(list, cmd)
		seen[cmd.Name()] = true
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}
