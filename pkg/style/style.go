// Package style defines the named formatting profiles.
package style

import (
	"fmt"
	"strings"
)

// Name identifies a profile.
type Name string

// Built-in profile names.
const (
	Google       Name = "google"
	AOSP         Name = "aosp"
	CustomGoogle Name = "custom-google"
)

// Default is the profile used when none is configured.
const Default = CustomGoogle

// DefaultMaxWidth is the line width of every built-in profile.
const DefaultMaxWidth = 100

// Options is the immutable options bundle read once per formatting run.
type Options struct {
	Style            Name   `json:"style" yaml:"style"`
	IndentMultiplier int    `json:"indent_multiplier" yaml:"indent_multiplier"`
	FormatJavadoc    bool   `json:"format_javadoc" yaml:"format_javadoc"`
	ReorderModifiers bool   `json:"reorder_modifiers" yaml:"reorder_modifiers"`
	MaxWidth         int    `json:"max_width" yaml:"max_width"`
	Description      string `json:"description" yaml:"description"`
}

// Indent returns n indent units in columns.
func (o Options) Indent(n int) int { return n * o.IndentMultiplier }

// Validate reports options that cannot be rendered.
func (o Options) Validate() error {
	if o.IndentMultiplier <= 0 {
		return fmt.Errorf("style %q: indent multiplier must be positive, got %d", o.Style, o.IndentMultiplier)
	}
	if o.MaxWidth <= 0 {
		return fmt.Errorf("style %q: max width must be positive, got %d", o.Style, o.MaxWidth)
	}
	return nil
}

// Builder constructs Options fluently.
type Builder struct {
	o Options
}

// NewProfile starts a profile with javadoc formatting and modifier
// reordering enabled.
func NewProfile(name Name) *Builder {
	return &Builder{o: Options{
		Style:            Name(strings.ToLower(string(name))),
		IndentMultiplier: 1,
		FormatJavadoc:    true,
		ReorderModifiers: true,
		MaxWidth:         DefaultMaxWidth,
	}}
}

// IndentMultiplier sets the multiplier applied to every indent unit.
func (b *Builder) IndentMultiplier(n int) *Builder {
	b.o.IndentMultiplier = n
	return b
}

// FormatJavadoc toggles doc comment reflow.
func (b *Builder) FormatJavadoc(on bool) *Builder {
	b.o.FormatJavadoc = on
	return b
}

// ReorderModifiers toggles modifier reordering.
func (b *Builder) ReorderModifiers(on bool) *Builder {
	b.o.ReorderModifiers = on
	return b
}

// MaxWidth sets the line width.
func (b *Builder) MaxWidth(n int) *Builder {
	b.o.MaxWidth = n
	return b
}

// Describe sets the one-line description shown by `leapfmt profiles`.
func (b *Builder) Describe(s string) *Builder {
	b.o.Description = s
	return b
}

// Build returns the options.
func (b *Builder) Build() Options { return b.o }
