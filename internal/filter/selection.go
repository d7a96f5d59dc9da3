package filter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDimension is returned for selections naming a dimension that is
// not in the catalog, or using a dimension with the wrong kind.
var ErrUnknownDimension = errors.New("unknown dimension")

// Mode tags a Selection.
type Mode string

const (
	// ModeAll accepts every eligible value.
	ModeAll Mode = "all"
	// ModeSubset accepts only the listed values that are also eligible.
	ModeSubset Mode = "subset"
)

// Selection is the explicit stage of a smart search: either everything the
// search term made eligible, or a sub-selection of it. The zero value is
// ModeAll.
type Selection struct {
	Mode   Mode     `yaml:"mode,omitempty" json:"mode,omitempty"`
	Values []string `yaml:"values,omitempty" json:"values,omitempty"`
}

// All selects every eligible value.
func All() Selection { return Selection{Mode: ModeAll} }

// Subset selects the given values. With no values it behaves like All.
func Subset(values ...string) Selection {
	return Selection{Mode: ModeSubset, Values: values}
}

// resolve applies the selection to the eligible values.
func (s Selection) resolve(eligible []string) []string {
	if s.Mode != ModeSubset || len(s.Values) == 0 {
		return eligible
	}
	want := make(map[string]bool, len(s.Values))
	for _, v := range s.Values {
		want[v] = true
	}
	var out []string
	for _, v := range eligible {
		if want[v] {
			out = append(out, v)
		}
	}
	return out
}

// SmartSearch narrows a group dimension's options by Term, then applies
// Selection to the narrowed options.
type SmartSearch struct {
	Term      string    `yaml:"term" json:"term"`
	Selection Selection `yaml:"selection,omitempty" json:"selection,omitempty"`
}

func (s SmartSearch) engaged() bool { return strings.TrimSpace(s.Term) != "" }

// Selections is one query's filter state. Every map is keyed by dimension
// name. Empty entries impose no constraint.
type Selections struct {
	Categorical map[string][]string    `yaml:"categorical,omitempty" json:"categorical,omitempty"`
	Search      map[string]SmartSearch `yaml:"search,omitempty" json:"search,omitempty"`
	Text        map[string]string      `yaml:"text,omitempty" json:"text,omitempty"`
}

// Select adds accepted values for a categorical dimension.
func (s *Selections) Select(name string, values ...string) *Selections {
	if s.Categorical == nil {
		s.Categorical = make(map[string][]string)
	}
	s.Categorical[name] = append(s.Categorical[name], values...)
	return s
}

// SearchFor sets the smart search for a group dimension.
func (s *Selections) SearchFor(name, term string, sel Selection) *Selections {
	if s.Search == nil {
		s.Search = make(map[string]SmartSearch)
	}
	s.Search[name] = SmartSearch{Term: term, Selection: sel}
	return s
}

// Contains sets the substring pattern for a text dimension. The pattern is
// matched as given, surrounding spaces included; only "" is unconstrained.
func (s *Selections) Contains(name, pattern string) *Selections {
	if s.Text == nil {
		s.Text = make(map[string]string)
	}
	s.Text[name] = pattern
	return s
}

// SearchTerm returns the trimmed smart search term for a dimension.
func (s Selections) SearchTerm(name string) string {
	return strings.TrimSpace(s.Search[name].Term)
}

// Validate checks every key against the catalog.
func (s Selections) Validate() error {
	for name := range s.Categorical {
		d, ok := Lookup(name)
		if !ok || d.Kind != Categorical {
			return fmt.Errorf("%w: %q is not a categorical dimension", ErrUnknownDimension, name)
		}
	}
	for name := range s.Search {
		d, ok := Lookup(name)
		if !ok || !d.Group {
			return fmt.Errorf("%w: %q does not support search", ErrUnknownDimension, name)
		}
	}
	for name := range s.Text {
		d, ok := Lookup(name)
		if !ok || d.Kind != Text {
			return fmt.Errorf("%w: %q is not a text dimension", ErrUnknownDimension, name)
		}
	}
	return nil
}

// IsActive reports whether the named dimension constrains the result.
func (s Selections) IsActive(name string) bool {
	if len(s.Categorical[name]) > 0 {
		return true
	}
	if s.Search[name].engaged() {
		return true
	}
	return s.Text[name] != ""
}

// Active returns the names of constraining dimensions in catalog order.
func (s Selections) Active() []string {
	var out []string
	for _, d := range catalog {
		if s.IsActive(d.Name) {
			out = append(out, d.Name)
		}
	}
	return out
}

// IsEmpty reports whether no dimension constrains the result.
func (s Selections) IsEmpty() bool { return len(s.Active()) == 0 }

// Period returns only the temporal part of the selection, which defines
// the focus-mode baseline.
func (s Selections) Period() Selections {
	var out Selections
	for _, d := range catalog {
		if !d.Temporal {
			continue
		}
		if vals := s.Categorical[d.Name]; len(vals) > 0 {
			out.Select(d.Name, vals...)
		}
	}
	return out
}

// FocusEngaged reports whether a group dimension is selected or searched.
func (s Selections) FocusEngaged() bool {
	for _, d := range catalog {
		if d.Group && (len(s.Categorical[d.Name]) > 0 || s.Search[d.Name].engaged()) {
			return true
		}
	}
	return false
}

// String describes the active constraints in catalog order, for logs and
// report headers.
func (s Selections) String() string {
	var parts []string
	for _, d := range catalog {
		if vals := s.Categorical[d.Name]; len(vals) > 0 {
			parts = append(parts, d.Name+"="+strings.Join(vals, ","))
		}
		if ss := s.Search[d.Name]; ss.engaged() {
			part := d.Name + "~" + strings.TrimSpace(ss.Term)
			if ss.Selection.Mode == ModeSubset && len(ss.Selection.Values) > 0 {
				part += "[" + strings.Join(ss.Selection.Values, ",") + "]"
			}
			parts = append(parts, part)
		}
		if pattern := s.Text[d.Name]; pattern != "" {
			parts = append(parts, d.Name+"*="+pattern)
		}
	}
	if len(parts) == 0 {
		return "all incidents"
	}
	return strings.Join(parts, " ")
}
