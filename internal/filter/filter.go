package filter

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/incident"
)

// predicate is one active dimension constraint over a single column.
type predicate struct {
	column string
	match  func(value string, ok bool) bool
}

// Apply returns the records of view that satisfy every active selection.
// Dimensions are AND-combined; values within a categorical selection are
// OR-combined. An empty selection returns view itself.
func Apply(view incident.View, sel Selections) (incident.View, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	preds, err := buildPredicates(view, sel)
	if err != nil {
		return nil, err
	}
	if len(preds) == 0 {
		return view, nil
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for _, p := range preds {
			if !p.match(view.Value(i, p.column)) {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}

	return incident.NewSubView(view, indices), nil
}

// buildPredicates walks the catalog once and turns each active dimension
// into a predicate according to its kind.
func buildPredicates(view incident.View, sel Selections) ([]predicate, error) {
	var preds []predicate
	for _, d := range catalog {
		if !sel.IsActive(d.Name) {
			continue
		}
		if !view.HasColumn(d.Column) {
			return nil, &incident.MissingColumnError{Column: d.Column}
		}

		switch d.Kind {
		case Categorical:
			if vals := sel.Categorical[d.Name]; len(vals) > 0 {
				preds = append(preds, predicate{column: d.Column, match: memberOf(vals)})
			}
			if search := sel.Search[d.Name]; search.engaged() {
				eligible, err := Eligible(view, d, search.Term)
				if err != nil {
					return nil, err
				}
				preds = append(preds, predicate{column: d.Column, match: memberOf(search.Selection.resolve(eligible))})
			}
		case Text:
			preds = append(preds, predicate{column: d.Column, match: containing(sel.Text[d.Name])})
		}
	}
	return preds, nil
}

// memberOf matches non-null values in the accepted set. An empty set
// matches nothing; callers only build it for engaged dimensions.
func memberOf(accepted []string) func(string, bool) bool {
	set := make(map[string]bool, len(accepted))
	for _, v := range accepted {
		set[v] = true
	}
	return func(value string, ok bool) bool {
		return ok && set[value]
	}
}

func containing(pattern string) func(string, bool) bool {
	needle := fold(pattern)
	return func(value string, ok bool) bool {
		return ok && strings.Contains(fold(value), needle)
	}
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// Eligible returns the values of a dimension left selectable by a search
// term.
func Eligible(view incident.View, d Dimension, term string) ([]string, error) {
	options, err := DistinctSortedValues(view, d.Column)
	if err != nil {
		return nil, err
	}
	return Narrow(options, term), nil
}

// Narrow keeps the options containing term, case-insensitively, in their
// original order. An empty term keeps everything.
func Narrow(options []string, term string) []string {
	needle := fold(strings.TrimSpace(term))
	if needle == "" {
		return options
	}
	var out []string
	for _, o := range options {
		if strings.Contains(fold(o), needle) {
			out = append(out, o)
		}
	}
	return out
}

// DistinctSortedValues lists the non-null values of a column once each.
// Columns whose values are all numeric sort numerically; anything else
// sorts lexicographically.
func DistinctSortedValues(view incident.View, column string) ([]string, error) {
	if !view.HasColumn(column) {
		return nil, &incident.MissingColumnError{Column: column}
	}

	seen := make(map[string]bool)
	values := []string{}
	for i := 0; i < view.Len(); i++ {
		v, ok := view.Value(i, column)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}

	if nums, ok := parseAll(values); ok {
		slices.SortStableFunc(values, func(a, b string) int {
			if c := cmp.Compare(nums[a], nums[b]); c != 0 {
				return c
			}
			return strings.Compare(a, b)
		})
		return values, nil
	}

	slices.Sort(values)
	return values, nil
}

func parseAll(values []string) (map[string]float64, bool) {
	nums := make(map[string]float64, len(values))
	for _, v := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, false
		}
		nums[v] = f
	}
	return nums, true
}
