// Package funbox decides whether a result's modifiers allow it to count as a
// personal best.
package funbox

import (
	"sort"
	"strings"

	"github.com/verte-zerg/typebest/internal/model"
)

// Delimiter separates modifier names in a result's funbox field.
const Delimiter = "#"

// Funbox describes one test modifier.
type Funbox struct {
	Name     string `json:"name"`
	CanGetPb bool   `json:"canGetPb"`
}

// Registry maps modifier names to their PB eligibility.
type Registry struct {
	byName map[string]Funbox
}

var defaultFunboxes = []Funbox{
	{Name: "nausea", CanGetPb: true},
	{Name: "round_round_baby", CanGetPb: true},
	{Name: "simon_says", CanGetPb: true},
	{Name: "mirror", CanGetPb: true},
	{Name: "upside_down", CanGetPb: true},
	{Name: "tap_mode", CanGetPb: false},
	{Name: "read_ahead_easy", CanGetPb: true},
	{Name: "read_ahead", CanGetPb: true},
	{Name: "read_ahead_hard", CanGetPb: true},
	{Name: "memory", CanGetPb: true},
	{Name: "nospace", CanGetPb: false},
	{Name: "poetry", CanGetPb: false},
	{Name: "wikipedia", CanGetPb: false},
	{Name: "weakspot", CanGetPb: false},
	{Name: "pseudolang", CanGetPb: false},
	{Name: "IPv4", CanGetPb: false},
	{Name: "IPv6", CanGetPb: false},
	{Name: "binary", CanGetPb: false},
	{Name: "hexadecimal", CanGetPb: false},
	{Name: "gibberish", CanGetPb: false},
	{Name: "ascii", CanGetPb: false},
	{Name: "specials", CanGetPb: false},
	{Name: "plus_one", CanGetPb: true},
	{Name: "plus_two", CanGetPb: true},
	{Name: "58008", CanGetPb: false},
	{Name: "arrows", CanGetPb: false},
	{Name: "rAnDoMcAsE", CanGetPb: false},
	{Name: "capitals", CanGetPb: false},
	{Name: "layoutfluid", CanGetPb: true},
	{Name: "earthquake", CanGetPb: true},
	{Name: "space_balls", CanGetPb: true},
	{Name: "choo_choo", CanGetPb: true},
	{Name: "backwards", CanGetPb: true},
	{Name: "instant_messaging", CanGetPb: false},
	{Name: "crt", CanGetPb: true},
	{Name: "no_quit", CanGetPb: true},
}

// Default returns the built-in registry.
func Default() *Registry {
	return New(defaultFunboxes)
}

// New builds a registry from entries. Later entries win on duplicate names.
func New(entries []Funbox) *Registry {
	r := &Registry{byName: make(map[string]Funbox, len(entries))}
	for _, fb := range entries {
		r.byName[fb.Name] = fb
	}
	return r
}

// WithOverrides returns a copy of r with the given eligibility flags applied.
// Names missing from r are registered.
func (r *Registry) WithOverrides(overrides map[string]bool) *Registry {
	out := &Registry{byName: make(map[string]Funbox, len(r.byName)+len(overrides))}
	for name, fb := range r.byName {
		out.byName[name] = fb
	}
	for name, canGetPb := range overrides {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out.byName[name] = Funbox{Name: name, CanGetPb: canGetPb}
	}
	return out
}

// Lookup returns the registered modifier with the given name.
func (r *Registry) Lookup(name string) (Funbox, bool) {
	fb, ok := r.byName[name]
	return fb, ok
}

// List returns all registered modifiers sorted by name.
func (r *Registry) List() []Funbox {
	out := make([]Funbox, 0, len(r.byName))
	for _, fb := range r.byName {
		out = append(out, fb)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// CanGetPb reports whether a funbox field permits a personal best. A single
// disqualifying modifier rejects the whole combination; unknown names are
// ignored.
func (r *Registry) CanGetPb(funbox string) bool {
	if funbox == "" || funbox == "none" {
		return true
	}
	for _, name := range strings.Split(funbox, Delimiter) {
		fb, ok := r.byName[name]
		if ok && !fb.CanGetPb {
			return false
		}
	}
	return true
}

// CanGetPb checks a result against the built-in registry.
func CanGetPb(result model.Result) bool {
	return builtin.CanGetPb(result.Funbox)
}

var builtin = Default()
