// Package typeuse classifies annotation uses as type-use or declaration
// annotations.
//
// Only a fixed set of well-known nullness annotations is ever treated as
// type-use, and only when the compilation unit imports one of their
// registered fully-qualified names. A same-named annotation from any other
// package stays a declaration annotation.
package typeuse

import (
	"sort"
	"strings"
)

// registry maps simple names to the fully-qualified names recognised as
// type-use annotations.
var registry = map[string][]string{
	"NonNull": {
		"org.jspecify.annotations.NonNull",
		"org.checkerframework.checker.nullness.qual.NonNull",
	},
	"Nullable": {
		"org.jspecify.annotations.Nullable",
		"org.checkerframework.checker.nullness.qual.Nullable",
	},
}

// Registered returns the registered fully-qualified names, sorted.
func Registered() []string {
	var out []string
	for _, fqns := range registry {
		out = append(out, fqns...)
	}
	sort.Strings(out)
	return out
}

// IsRegistered reports whether fqn is a known type-use annotation.
func IsRegistered(fqn string) bool {
	for _, known := range registry[SimpleName(fqn)] {
		if known == fqn {
			return true
		}
	}
	return false
}

// SimpleName returns the last dot-separated segment of a qualified name.
func SimpleName(fqn string) string {
	return fqn[strings.LastIndexByte(fqn, '.')+1:]
}

// Classifier holds the type-use simple names imported by one compilation
// unit. The zero value classifies everything as declaration-use.
type Classifier struct {
	names map[string]bool
}

// New returns a classifier with no imports recorded.
func New() *Classifier {
	return &Classifier{names: make(map[string]bool)}
}

// Import records a single-type import. On-demand and static imports never
// match the registry.
func (c *Classifier) Import(fqn string) {
	if !IsRegistered(fqn) {
		return
	}
	if c.names == nil {
		c.names = make(map[string]bool)
	}
	c.names[SimpleName(fqn)] = true
}

// IsTypeUse reports whether an annotation written as name is type-use.
// Qualified names are always declaration-use.
func (c *Classifier) IsTypeUse(name string) bool {
	if strings.Contains(name, ".") {
		return false
	}
	return c.names[name]
}

// Names returns the recorded simple names, sorted.
func (c *Classifier) Names() []string {
	out := make([]string, 0, len(c.names))
	for n := range c.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
