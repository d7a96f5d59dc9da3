package aggregate

import (
	"github.com/vaneschanro-gif/recovery-dashboard/internal/filter"
	"github.com/vaneschanro-gif/recovery-dashboard/internal/incident"
)

// DefaultFocusLabel names a focus group driven only by direct selections.
const DefaultFocusLabel = "Selected group"

// Result is the recovery rate over one view.
type Result struct {
	Total     int     `json:"total"`
	Recovered int     `json:"recovered"`
	Rate      float64 `json:"rate"`
}

// Focus compares a group's recovery rate with its period baseline.
type Focus struct {
	Result
	PeriodTotal int     `json:"period_total"`
	GroupPct    float64 `json:"group_pct"`    // group share of the period, in percent
	OverallRate float64 `json:"overall_rate"` // recovery rate of the whole period
	Delta       float64 `json:"delta"`        // Rate - OverallRate
	Label       string  `json:"label"`
}

// Aggregate counts incidents and recoveries. Rate is 0 for an empty view.
func Aggregate(view incident.View) Result {
	total, recovered := count(view)
	return Result{
		Total:     total,
		Recovered: recovered,
		Rate:      ratio(recovered, total),
	}
}

// FocusAggregate aggregates subset and sets it against baseline, the
// dataset restricted only by the active temporal filters.
func FocusAggregate(subset, baseline incident.View) Focus {
	group := Aggregate(subset)
	periodTotal, periodRecovered := count(baseline)
	overall := ratio(periodRecovered, periodTotal)

	return Focus{
		Result:      group,
		PeriodTotal: periodTotal,
		GroupPct:    ratio(group.Total, periodTotal) * 100,
		OverallRate: overall,
		Delta:       group.Rate - overall,
		Label:       DefaultFocusLabel,
	}
}

// FocusLabel names the focus group after the search driving it. Only one
// term is used: model, then manufacturer, then package.
func FocusLabel(sel filter.Selections) string {
	for _, name := range []string{"model", "manufacturer", "package"} {
		if term := sel.SearchTerm(name); term != "" {
			return term
		}
	}
	return DefaultFocusLabel
}

func count(view incident.View) (total, recovered int) {
	total = view.Len()
	for i := 0; i < total; i++ {
		recovered += view.Recovered(i)
	}
	return total, recovered
}

func ratio(num, denom int) float64 {
	if denom <= 0 {
		return 0
	}
	return float64(num) / float64(denom)
}
