package style

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Profile registry
var (
	profilesMu sync.RWMutex
	profiles   = make(map[Name]Options)
)

// ErrUnknownStyle is returned by Lookup for an unregistered name.
var ErrUnknownStyle = errors.New("unknown style")

// Get returns a profile by name.
func Get(name string) (Options, bool) {
	profilesMu.RLock()
	defer profilesMu.RUnlock()
	o, ok := profiles[Name(strings.ToLower(name))]
	return o, ok
}

// Lookup is Get with an error naming the available profiles. The empty
// name selects the default profile.
func Lookup(name string) (Options, error) {
	if name == "" {
		name = string(Default)
	}
	if o, ok := Get(name); ok {
		return o, nil
	}
	return Options{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownStyle, name, strings.Join(List(), ", "))
}

// Register adds a profile to the registry, replacing one with the same
// name.
func Register(o Options) {
	profilesMu.Lock()
	defer profilesMu.Unlock()
	profiles[o.Style] = o
}

// List returns all registered profile names (sorted).
func List() []string {
	profilesMu.RLock()
	defer profilesMu.RUnlock()
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

// All returns every registered profile sorted by name.
func All() []Options {
	names := List()
	out := make([]Options, 0, len(names))
	for _, n := range names {
		o, _ := Get(n)
		out = append(out, o)
	}
	return out
}
