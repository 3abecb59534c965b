package compliance

import (
	"fmt"
	"sort"

	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
	"github.com/isaiahriv1234/Freight-Project/pkg/money"
)

const (
	// ScopeOverall names the aggregate diversity check.
	ScopeOverall = "overall_diversity"

	alertGapThreshold    = 1.0
	criticalGapThreshold = 10.0
)

// CategoryTarget is a spend share goal for one category, in percent.
type CategoryTarget struct {
	Category enums.DiversityCategory `json:"category"`
	Percent  float64                 `json:"percent"`
}

type Targets struct {
	Overall    float64          `json:"overall"`
	Categories []CategoryTarget `json:"categories"`
}

// DefaultTargets returns the 25% overall, 3% DVBE, 5% WOB and 10% MBE goals.
func DefaultTargets() Targets {
	return Targets{
		Overall: 25,
		Categories: []CategoryTarget{
			{Category: enums.DiversityDVBE, Percent: 3},
			{Category: enums.DiversityWOB, Percent: 5},
			{Category: enums.DiversityMBE, Percent: 10},
		},
	}
}

type Config struct {
	Targets                     Targets
	Rules                       []KeywordRule
	SmallOrderThreshold         float64
	InfrequentSupplierMaxOrders int
}

// Tracker classifies suppliers and measures spend against targets.
type Tracker struct {
	cfg        Config
	classifier *Classifier
}

func NewTracker(cfg Config) (*Tracker, error) {
	if cfg.Targets.Overall < 0 || cfg.Targets.Overall > 100 {
		return nil, fmt.Errorf("overall target must be between 0 and 100")
	}
	for _, t := range cfg.Targets.Categories {
		if !t.Category.IsDiverse() {
			return nil, fmt.Errorf("target category %q is not a diverse category", t.Category)
		}
		if t.Percent < 0 || t.Percent > 100 {
			return nil, fmt.Errorf("target for %s must be between 0 and 100", t.Category)
		}
	}
	if cfg.Rules == nil {
		cfg.Rules = DefaultKeywordRules()
	}
	return &Tracker{
		cfg:        cfg,
		classifier: NewClassifier(cfg.Rules, cfg.SmallOrderThreshold, cfg.InfrequentSupplierMaxOrders),
	}, nil
}

func (t *Tracker) Targets() Targets { return t.cfg.Targets }

// Analysis is the classified view of one ledger snapshot. All methods are
// pure reads over it.
type Analysis struct {
	targets         Targets
	orders          []ledger.Order
	classes         []Classification
	identifications []Identification
	totalSpend      float64
}

// Analyze classifies every order once.
func (t *Tracker) Analyze(orders []ledger.Order) *Analysis {
	classified, classes, log := t.classifier.ClassifyAll(orders)
	total := 0.0
	for _, o := range classified {
		total += o.TotalAmount
	}
	return &Analysis{
		targets:         t.cfg.Targets,
		orders:          classified,
		classes:         classes,
		identifications: log,
		totalSpend:      total,
	}
}

func (a *Analysis) TotalSpend() float64 { return a.totalSpend }

// Orders returns the classified orders.
func (a *Analysis) Orders() []ledger.Order {
	out := make([]ledger.Order, len(a.orders))
	copy(out, a.orders)
	return out
}

func (a *Analysis) Identifications() []Identification {
	out := make([]Identification, len(a.identifications))
	copy(out, a.identifications)
	return out
}

type CategoryPerformance struct {
	Category      enums.DiversityCategory `json:"category"`
	Label         string                  `json:"label"`
	Spend         float64                 `json:"spend"`
	SpendPct      float64                 `json:"spend_pct"`
	OrderCount    int                     `json:"order_count"`
	SupplierCount int                     `json:"supplier_count"`
}

type Performance struct {
	TotalSpend          float64               `json:"total_spend"`
	DiverseSpend        float64               `json:"diverse_spend"`
	OverallDiversityPct float64               `json:"overall_diversity_pct"`
	Categories          []CategoryPerformance `json:"categories"`
}

// Category returns the row for one category.
func (p Performance) Category(cat enums.DiversityCategory) CategoryPerformance {
	for _, row := range p.Categories {
		if row.Category == cat {
			return row
		}
	}
	return CategoryPerformance{Category: cat, Label: cat.Label()}
}

// PerformanceSummary reports spend per category. Every order lands in exactly
// one row, so the row spends sum to TotalSpend.
func (a *Analysis) PerformanceSummary() Performance {
	type acc struct {
		spend     float64
		orders    int
		suppliers map[string]struct{}
	}
	byCat := make(map[enums.DiversityCategory]*acc)
	for _, o := range a.orders {
		cur := byCat[o.DiversityCategory]
		if cur == nil {
			cur = &acc{suppliers: make(map[string]struct{})}
			byCat[o.DiversityCategory] = cur
		}
		cur.spend += o.TotalAmount
		cur.orders++
		cur.suppliers[o.SupplierName] = struct{}{}
	}

	perf := Performance{TotalSpend: money.Round2(a.totalSpend)}
	diverse := 0.0
	for _, cat := range enums.DiversityCategories() {
		row := CategoryPerformance{Category: cat, Label: cat.Label()}
		if cur := byCat[cat]; cur != nil {
			row.Spend = money.Round2(cur.spend)
			row.SpendPct = money.Percent(cur.spend, a.totalSpend)
			row.OrderCount = cur.orders
			row.SupplierCount = len(cur.suppliers)
			if cat.IsDiverse() {
				diverse += cur.spend
			}
		}
		perf.Categories = append(perf.Categories, row)
	}
	perf.DiverseSpend = money.Round2(diverse)
	perf.OverallDiversityPct = money.Percent(diverse, a.totalSpend)
	return perf
}

// shares returns unrounded spend percentages: the diverse total and one per
// category.
func (a *Analysis) shares() (float64, map[enums.DiversityCategory]float64) {
	spend := make(map[enums.DiversityCategory]float64)
	diverse := 0.0
	for _, o := range a.orders {
		spend[o.DiversityCategory] += o.TotalAmount
		if o.DiversityCategory.IsDiverse() {
			diverse += o.TotalAmount
		}
	}
	byCat := make(map[enums.DiversityCategory]float64, len(spend))
	for cat, v := range spend {
		byCat[cat] = money.Share(v, a.totalSpend)
	}
	return money.Share(diverse, a.totalSpend), byCat
}

type Status struct {
	Scope      string                  `json:"scope"`
	Category   enums.DiversityCategory `json:"category,omitempty"`
	CurrentPct float64                 `json:"current_pct"`
	TargetPct  float64                 `json:"target_pct"`
	Gap        float64                 `json:"gap"`
	Compliant  bool                    `json:"compliant"`

	// exactGap is the unrounded gap that Compliant and alerting are decided on.
	exactGap float64
}

// CheckCompliance compares the overall share and each targeted category
// against its goal. The overall check always comes first.
func (a *Analysis) CheckCompliance() []Status {
	overall, byCat := a.shares()
	out := make([]Status, 0, len(a.targets.Categories)+1)
	out = append(out, newStatus(ScopeOverall, "", overall, a.targets.Overall))
	for _, target := range a.targets.Categories {
		out = append(out, newStatus(string(target.Category), target.Category, byCat[target.Category], target.Percent))
	}
	return out
}

func newStatus(scope string, cat enums.DiversityCategory, current, target float64) Status {
	gap := money.Diff(target, current)
	return Status{
		Scope:      scope,
		Category:   cat,
		CurrentPct: money.Round2(current),
		TargetPct:  target,
		Gap:        money.Round2(gap),
		Compliant:  gap <= 0,
		exactGap:   gap,
	}
}

type Alert struct {
	Level          enums.AlertPriority `json:"level"`
	Scope          string              `json:"scope"`
	Message        string              `json:"message"`
	CurrentPct     float64             `json:"current_pct"`
	TargetPct      float64             `json:"target_pct"`
	Gap            float64             `json:"gap"`
	SpendShift     float64             `json:"spend_shift"`
	ActionRequired string              `json:"action_required"`
}

// Alerts returns one alert per check that misses its target by more than one
// percentage point.
func (a *Analysis) Alerts() []Alert {
	var out []Alert
	for _, st := range a.CheckCompliance() {
		if st.Compliant || st.exactGap <= alertGapThreshold {
			continue
		}
		level := enums.AlertPriorityWarning
		if st.exactGap > criticalGapThreshold {
			level = enums.AlertPriorityCritical
		}
		shift := a.spendShift(st.exactGap)
		out = append(out, Alert{
			Level:          level,
			Scope:          st.Scope,
			Message:        fmt.Sprintf("%s spend is %.1f%% below target", scopeLabel(st.Scope), st.Gap),
			CurrentPct:     st.CurrentPct,
			TargetPct:      st.TargetPct,
			Gap:            st.Gap,
			SpendShift:     shift,
			ActionRequired: fmt.Sprintf("Shift %s of spend to %s suppliers", money.Format(shift), scopeSubject(st.Scope)),
		})
	}
	return out
}

func (a *Analysis) spendShift(gap float64) float64 {
	return money.Round2(gap / 100 * a.totalSpend)
}

func scopeLabel(scope string) string {
	if scope == ScopeOverall {
		return "Overall diversity"
	}
	return scope
}

func scopeSubject(scope string) string {
	if scope == ScopeOverall {
		return "diverse"
	}
	return scope
}

// SupplierEntry is one row of the supplier directory.
type SupplierEntry struct {
	Supplier          string                  `json:"supplier"`
	Category          enums.DiversityCategory `json:"category"`
	TotalSpend        float64                 `json:"total_spend"`
	OrderCount        int                     `json:"order_count"`
	AverageOrderValue float64                 `json:"average_order_value"`
	PrimaryCarrier    string                  `json:"primary_carrier"`
	AverageLeadTime   *float64                `json:"average_lead_time,omitempty"`
	Rating            string                  `json:"rating"`
}

const (
	RatingGood             = "Good"
	RatingNeedsImprovement = "Needs Improvement"
	RatingUnrated          = "Unrated"

	goodLeadTimeDays = 10
	unknownCarrier   = "Unknown"
)

// SupplierDirectory lists every supplier in name order with its category
// taken from its first order.
func (a *Analysis) SupplierDirectory() []SupplierEntry {
	type acc struct {
		entry    SupplierEntry
		carriers map[string]int
		leadSum  float64
		leadN    int
	}
	bySupplier := make(map[string]*acc)
	for _, o := range a.orders {
		cur := bySupplier[o.SupplierName]
		if cur == nil {
			cur = &acc{
				entry:    SupplierEntry{Supplier: o.SupplierName, Category: o.DiversityCategory},
				carriers: make(map[string]int),
			}
			bySupplier[o.SupplierName] = cur
		}
		cur.entry.TotalSpend += o.TotalAmount
		cur.entry.OrderCount++
		if o.HasCarrier() {
			cur.carriers[o.Carrier]++
		}
		if o.LeadTimeDays != nil {
			cur.leadSum += float64(*o.LeadTimeDays)
			cur.leadN++
		}
	}

	out := make([]SupplierEntry, 0, len(bySupplier))
	for _, cur := range bySupplier {
		e := cur.entry
		e.TotalSpend = money.Round2(e.TotalSpend)
		e.AverageOrderValue = money.Round2(cur.entry.TotalSpend / float64(e.OrderCount))
		e.PrimaryCarrier = modeCarrier(cur.carriers)
		e.Rating = RatingUnrated
		if cur.leadN > 0 {
			avg := money.Round2(cur.leadSum / float64(cur.leadN))
			e.AverageLeadTime = &avg
			e.Rating = RatingNeedsImprovement
			if avg <= goodLeadTimeDays {
				e.Rating = RatingGood
			}
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Supplier < out[j].Supplier })
	return out
}

func modeCarrier(counts map[string]int) string {
	best, bestN := unknownCarrier, 0
	for carrier, n := range counts {
		if n > bestN || (n == bestN && carrier < best) {
			best, bestN = carrier, n
		}
	}
	return best
}
