package cli

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/filter"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/storage"
)

// categorical maps each dimension name to its flag values.
func (f *FilterFlags) categorical() map[string][]string {
	return map[string][]string{
		"year":             f.Year,
		"month":            f.Month,
		"day":              f.Day,
		"hour":             f.Hour,
		"con_year":         f.ConYear,
		"con_month":        f.ConMonth,
		"manufacturer":     f.Manufacturer,
		"model":            f.Model,
		"colour":           f.Colour,
		"vehicle_year":     f.VehicleYear,
		"package":          f.Package,
		"hardware":         f.Hardware,
		"incident_type":    f.IncidentType,
		"user_type":        f.UserType,
		"terminal":         f.Terminal,
		"tag":              f.Tag,
		"warranty":         f.Warranty,
		"device_exclusion": f.DeviceExclusion,
		"bike_exclusion":   f.BikeExclusion,
		"fraud":            f.Fraud,
		"exclude":          f.Exclude,
		"rep":              f.Rep,
	}
}

type searchFlag struct {
	term string
	pick []string
}

func (f *FilterFlags) searches() map[string]searchFlag {
	return map[string]searchFlag{
		"manufacturer": {f.ManufacturerSearch, f.ManufacturerPick},
		"model":        {f.ModelSearch, f.ModelPick},
		"package":      {f.PackageSearch, f.PackagePick},
	}
}

func (f *FilterFlags) texts() map[string]string {
	return map[string]string{
		"client":       f.Client,
		"user":         f.User,
		"registration": f.Registration,
	}
}

// IsEmpty reports whether no filter flag was given.
func (f *FilterFlags) IsEmpty() bool {
	if f.FilterFile != "" || f.Saved != "" {
		return false
	}
	for _, vals := range f.categorical() {
		if len(vals) > 0 {
			return false
		}
	}
	for _, s := range f.searches() {
		if s.term != "" || len(s.pick) > 0 {
			return false
		}
	}
	for _, t := range f.texts() {
		if t != "" {
			return false
		}
	}
	return true
}

// Selections builds the filter state. A saved filter is the base, a filter
// file is layered on it, and individual flags are applied last: categorical
// values add to the base, search and text flags replace it.
func (f *FilterFlags) Selections(ctx context.Context, store storage.Store) (filter.Selections, error) {
	var sel filter.Selections

	if f.Saved != "" {
		saved, err := store.GetFilter(ctx, f.Saved)
		if err != nil {
			return sel, err
		}
		merge(&sel, saved.Selections)
	}

	if f.FilterFile != "" {
		data, err := os.ReadFile(f.FilterFile)
		if err != nil {
			return sel, fmt.Errorf("reading filter file: %w", err)
		}
		var fromFile filter.Selections
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return sel, fmt.Errorf("parsing filter file: %w", err)
		}
		merge(&sel, fromFile)
	}

	for name, vals := range f.categorical() {
		if len(vals) > 0 {
			sel.Select(name, vals...)
		}
	}
	for name, s := range f.searches() {
		if s.term == "" {
			if len(s.pick) > 0 {
				return sel, fmt.Errorf("--%s-pick requires --%s-search", name, name)
			}
			continue
		}
		mode := filter.All()
		if len(s.pick) > 0 {
			mode = filter.Subset(s.pick...)
		}
		sel.SearchFor(name, s.term, mode)
	}
	for name, pattern := range f.texts() {
		if pattern != "" {
			sel.Contains(name, pattern)
		}
	}

	if err := sel.Validate(); err != nil {
		return sel, err
	}
	return sel, nil
}

func merge(dst *filter.Selections, src filter.Selections) {
	for name, vals := range src.Categorical {
		dst.Select(name, vals...)
	}
	for name, s := range src.Search {
		dst.SearchFor(name, s.Term, s.Selection)
	}
	for name, pattern := range src.Text {
		dst.Contains(name, pattern)
	}
}
