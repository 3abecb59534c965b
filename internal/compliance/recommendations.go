package compliance

import (
	"fmt"
	"math"
	"sort"

	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
	"github.com/isaiahriv1234/Freight-Project/pkg/money"
)

const (
	lowShareThreshold = 2.0
	largeGapThreshold = 10.0
)

type Recommendation struct {
	Priority       enums.AlertPriority `json:"priority"`
	Scope          string              `json:"scope"`
	Action         string              `json:"action"`
	TargetIncrease string              `json:"target_increase"`
	SpendShift     float64             `json:"spend_shift"`
	Steps          []string            `json:"steps"`
	TimelineDays   int                 `json:"timeline_days"`
}

// Recommendations proposes actions for every missed target, followed by
// engagement advice for categories that have suppliers but a share under 2%.
func (a *Analysis) Recommendations() []Recommendation {
	var out []Recommendation
	for _, st := range a.CheckCompliance() {
		if st.Compliant {
			continue
		}
		out = append(out, a.gapRecommendation(st))
	}

	perf := a.PerformanceSummary()
	for _, row := range perf.Categories {
		if !row.Category.IsDiverse() || row.SupplierCount == 0 || row.SpendPct >= lowShareThreshold {
			continue
		}
		cat := row.Category
		out = append(out, Recommendation{
			Priority:       enums.AlertPriorityMedium,
			Scope:          string(cat),
			Action:         fmt.Sprintf("Increase order volume with existing %s suppliers", cat),
			TargetIncrease: fmt.Sprintf("Expand %s supplier relationships", cat),
			Steps: []string{
				fmt.Sprintf("Review %s supplier capabilities", cat),
				fmt.Sprintf("Consolidate orders with top-performing %s suppliers", cat),
				fmt.Sprintf("Negotiate volume discounts with %s vendors", cat),
			},
			TimelineDays: 30,
		})
	}
	return out
}

func (a *Analysis) gapRecommendation(st Status) Recommendation {
	shift := a.spendShift(st.exactGap)
	subject := scopeSubject(st.Scope)
	rec := Recommendation{
		Scope:          st.Scope,
		SpendShift:     shift,
		TargetIncrease: fmt.Sprintf("%s additional %s spend needed", money.Format(shift), subject),
	}
	switch {
	case st.Scope == ScopeOverall && st.exactGap > largeGapThreshold:
		rec.Priority = enums.AlertPriorityCritical
		rec.Action = "Comprehensive diversity program expansion"
		rec.Steps = []string{
			"Audit all suppliers for diversity certifications",
			"Implement diversity requirements in RFPs",
			"Establish diversity supplier development program",
		}
		rec.TimelineDays = 90
	case st.exactGap > largeGapThreshold:
		rec.Priority = enums.AlertPriorityCritical
		rec.Action = fmt.Sprintf("Build a %s supplier program", subject)
		rec.Steps = []string{
			fmt.Sprintf("Search the %s directory for new suppliers", subject),
			fmt.Sprintf("Add %s participation goals to upcoming solicitations", subject),
			fmt.Sprintf("Hold outreach sessions with certified %s firms", subject),
		}
		rec.TimelineDays = 90
	default:
		rec.Priority = enums.AlertPriorityHigh
		rec.Action = fmt.Sprintf("Increase %s supplier engagement", subject)
		rec.Steps = []string{
			fmt.Sprintf("Contact existing %s suppliers for additional services", subject),
			fmt.Sprintf("Search %s directory for new suppliers", subject),
			fmt.Sprintf("Negotiate expanded contracts with current %s vendors", subject),
		}
		rec.TimelineDays = 60
	}
	return rec
}

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "Increasing"
	TrendDecreasing TrendDirection = "Decreasing"
	TrendFlat       TrendDirection = "Flat"
)

// MonthShare is one category's share of a calendar month's spend.
type MonthShare struct {
	Month    string  `json:"month"`
	Spend    float64 `json:"spend"`
	SharePct float64 `json:"share_pct"`
}

type CategoryTrend struct {
	Category  enums.DiversityCategory `json:"category"`
	Months    []MonthShare            `json:"months"`
	Direction TrendDirection          `json:"direction"`
	ChangePct float64                 `json:"change_pct"`
	Current   float64                 `json:"current_pct"`
}

// MonthlyTrends compares each category's share of monthly spend between the
// first and last month on record. Categories with no spend are omitted and a
// single month of data yields a flat trend.
func (a *Analysis) MonthlyTrends() []CategoryTrend {
	monthTotals := make(map[string]float64)
	spend := make(map[enums.DiversityCategory]map[string]float64)
	for _, o := range a.orders {
		month := o.Date.UTC().Format("2006-01")
		monthTotals[month] += o.TotalAmount
		if spend[o.DiversityCategory] == nil {
			spend[o.DiversityCategory] = make(map[string]float64)
		}
		spend[o.DiversityCategory][month] += o.TotalAmount
	}
	months := make([]string, 0, len(monthTotals))
	for m := range monthTotals {
		months = append(months, m)
	}
	sort.Strings(months)

	var out []CategoryTrend
	for _, cat := range enums.DiversityCategories() {
		bucket, ok := spend[cat]
		if !ok {
			continue
		}
		trend := CategoryTrend{Category: cat, Direction: TrendFlat}
		for _, m := range months {
			trend.Months = append(trend.Months, MonthShare{
				Month:    m,
				Spend:    money.Round2(bucket[m]),
				SharePct: money.Percent(bucket[m], monthTotals[m]),
			})
		}
		first := trend.Months[0].SharePct
		last := trend.Months[len(trend.Months)-1].SharePct
		trend.Current = last
		trend.ChangePct = money.Round2(last - first)
		switch {
		case last > first:
			trend.Direction = TrendIncreasing
		case last < first:
			trend.Direction = TrendDecreasing
		}
		out = append(out, trend)
	}
	return out
}

// Forecast projects time to compliance assuming one percentage point of
// improvement per quarter.
type Forecast struct {
	Scope                      string  `json:"scope"`
	Compliant                  bool    `json:"compliant"`
	QuartersToCompliance       int     `json:"quarters_to_compliance"`
	RequiredMonthlyImprovement float64 `json:"required_monthly_improvement"`
}

func (a *Analysis) Forecast() []Forecast {
	statuses := a.CheckCompliance()
	out := make([]Forecast, 0, len(statuses))
	for _, st := range statuses {
		f := Forecast{Scope: st.Scope, Compliant: st.Compliant}
		if st.exactGap > 0 {
			quarters := int(math.Max(1, math.Ceil(st.exactGap)))
			f.QuartersToCompliance = quarters
			f.RequiredMonthlyImprovement = money.Round2(st.exactGap / float64(quarters*3))
		}
		out = append(out, f)
	}
	return out
}

type ExecutiveSummary struct {
	DiverseSpend       float64 `json:"diverse_spend"`
	DiversityPct       float64 `json:"diversity_pct"`
	CompliantChecks    int     `json:"compliant_checks"`
	TotalChecks        int     `json:"total_checks"`
	CriticalAlerts     int     `json:"critical_alerts"`
	ReclassifiedOrders int     `json:"reclassified_orders"`
	UnclassifiedSpend  float64 `json:"unclassified_spend"`
}

func (a *Analysis) ExecutiveSummary() ExecutiveSummary {
	perf := a.PerformanceSummary()
	statuses := a.CheckCompliance()
	sum := ExecutiveSummary{
		DiverseSpend:       perf.DiverseSpend,
		DiversityPct:       perf.OverallDiversityPct,
		TotalChecks:        len(statuses),
		ReclassifiedOrders: len(a.identifications),
		UnclassifiedSpend:  perf.Category(enums.DiversityUnknown).Spend,
	}
	for _, st := range statuses {
		if st.Compliant {
			sum.CompliantChecks++
		}
	}
	for _, alert := range a.Alerts() {
		if alert.Level == enums.AlertPriorityCritical {
			sum.CriticalAlerts++
		}
	}
	return sum
}
