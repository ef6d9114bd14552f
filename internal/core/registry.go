package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]FormDefinition)
	registryMu sync.RWMutex
)

// ErrDuplicateForm is returned when a form key is registered twice.
var ErrDuplicateForm = errors.New("form already registered")

func errInvalidForm(msg string) error {
	return fmt.Errorf("invalid form: %s", msg)
}

// TryRegister compiles the form's header and adds it to the registry.
func TryRegister(def FormDefinition) error {
	if err := def.compile(); err != nil {
		return fmt.Errorf("register form %q: %w", def.Info.Key, err)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateForm, def.Info.Key)
	}
	registry[def.Info.Key] = def
	return nil
}

// Register adds a form definition to the registry.
// Panics on a malformed header or a duplicate key; use it from init.
func Register(def FormDefinition) {
	if err := TryRegister(def); err != nil {
		panic(err.Error())
	}
}

// Get returns a form definition by key.
// Returns false if not found.
func Get(key string) (FormDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns all registered form definitions sorted by label, then key.
func All() []FormDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]FormDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Info.Label != result[j].Info.Label {
			return result[i].Info.Label < result[j].Info.Label
		}
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// FormCount returns the number of registered forms.
func FormCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered forms.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]FormDefinition)
}
