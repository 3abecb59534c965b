package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
)

var base = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

func co(id, supplier string, amount float64, cat enums.DiversityCategory) ledger.Order {
	return ledger.Order{ID: id, Date: base, SupplierName: supplier, TotalAmount: amount, DiversityCategory: cat}
}

func newTestTracker(t *testing.T, targets Targets) *Tracker {
	t.Helper()
	tr, err := NewTracker(Config{Targets: targets, SmallOrderThreshold: 500, InfrequentSupplierMaxOrders: 3})
	require.NoError(t, err)
	return tr
}

func statusFor(statuses []Status, scope string) (Status, bool) {
	for _, st := range statuses {
		if st.Scope == scope {
			return st, true
		}
	}
	return Status{}, false
}

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultKeywordRules(), 500, 3)

	cases := []struct {
		name     string
		order    ledger.Order
		count    int
		kind     ClassificationKind
		category enums.DiversityCategory
		method   enums.IdentificationMethod
	}{
		{"existing category kept", co("1", "Veteran Supply", 900, enums.DiversityMBE), 1, KindCertain, enums.DiversityMBE, enums.IdentificationExisting},
		{"non diverse kept", co("2", "Women Works", 900, enums.DiversityNonDiverse), 1, KindCertain, enums.DiversityNonDiverse, enums.IdentificationExisting},
		{"veteran keyword", co("3", "Veteran Supply Co", 900, enums.DiversityUnknown), 9, KindInferred, enums.DiversityDVBE, enums.IdentificationKeywordMatch},
		{"case insensitive", co("4", "ACME WOMEN OWNED", 900, enums.DiversityUnknown), 9, KindInferred, enums.DiversityWOB, enums.IdentificationKeywordMatch},
		{"earlier rule wins", co("5", "Small Women Owned Shop", 900, enums.DiversityUnknown), 9, KindInferred, enums.DiversityWOB, enums.IdentificationKeywordMatch},
		{"osb keyword", co("6", "Acme OSB Works", 900, enums.DiversityUnknown), 9, KindInferred, enums.DiversityOSB, enums.IdentificationKeywordMatch},
		{"small infrequent inferred", co("7", "Acme Tools", 200, enums.DiversityUnknown), 2, KindInferred, enums.DiversityOSB, enums.IdentificationInference},
		{"frequent supplier stays unknown", co("8", "Acme Tools", 200, enums.DiversityUnknown), 4, KindUnknown, enums.DiversityUnknown, enums.IdentificationNone},
		{"large order stays unknown", co("9", "Acme Tools", 500, enums.DiversityUnknown), 1, KindUnknown, enums.DiversityUnknown, enums.IdentificationNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(tc.order, tc.count)
			assert.Equal(t, tc.kind, got.Kind)
			assert.Equal(t, tc.category, got.Category)
			assert.Equal(t, tc.method, got.Method)
		})
	}
}

func TestClassify_Confidence(t *testing.T) {
	c := NewClassifier(DefaultKeywordRules(), 500, 3)

	assert.Equal(t, enums.ConfidenceHigh, c.Classify(co("1", "Hispanic Builders", 900, enums.DiversityUnknown), 5).Confidence)
	assert.Equal(t, enums.ConfidenceMedium, c.Classify(co("2", "Acme", 100, enums.DiversityUnknown), 1).Confidence)
	assert.Empty(t, c.Classify(co("3", "Acme", 100, enums.DiversityDVBE), 1).Confidence)
}

func TestAnalyze_LogsReclassifiedOrders(t *testing.T) {
	tr := newTestTracker(t, DefaultTargets())
	a := tr.Analyze([]ledger.Order{
		co("1", "Veteran Supply", 1000, enums.DiversityUnknown),
		co("2", "Acme", 1000, enums.DiversityNonDiverse),
		co("3", "Acme Tools", 1000, enums.DiversityUnknown),
	})

	ids := a.Identifications()
	require.Len(t, ids, 1)
	assert.Equal(t, "1", ids[0].OrderID)
	assert.Equal(t, enums.DiversityUnknown, ids[0].OldCategory)
	assert.Equal(t, enums.DiversityDVBE, ids[0].NewCategory)

	orders := a.Orders()
	assert.Equal(t, enums.DiversityDVBE, orders[0].DiversityCategory)
	assert.Equal(t, enums.DiversityUnknown, orders[2].DiversityCategory)
}

func TestPerformanceSummary_PartitionsSpend(t *testing.T) {
	tr := newTestTracker(t, DefaultTargets())
	orders := []ledger.Order{
		co("1", "A", 1234.56, enums.DiversityDVBE),
		co("2", "B", 99.99, enums.DiversityWOB),
		co("3", "C", 5000, enums.DiversityNonDiverse),
		co("4", "D", 2500.25, enums.DiversityUnknown),
		co("5", "E", 10, ""),
		co("6", "Veteran Tools", 700, enums.DiversityUnknown),
		co("7", "F", 310.10, enums.DiversitySDB),
	}
	perf := tr.Analyze(orders).PerformanceSummary()

	total := 0.0
	orderCount := 0
	for _, row := range perf.Categories {
		total += row.Spend
		orderCount += row.OrderCount
	}
	assert.InDelta(t, perf.TotalSpend, total, 0.001)
	assert.Equal(t, len(orders), orderCount)
	assert.Len(t, perf.Categories, len(enums.DiversityCategories()))
	assert.Equal(t, 1934.56, perf.Category(enums.DiversityDVBE).Spend)
	assert.Equal(t, 2, perf.Category(enums.DiversityDVBE).SupplierCount)
}

func TestPerformanceSummary_OverallCountsDiverseOnly(t *testing.T) {
	tr := newTestTracker(t, DefaultTargets())
	perf := tr.Analyze([]ledger.Order{
		co("1", "A", 3000, enums.DiversityDVBE),
		co("2", "B", 5000, enums.DiversityWOB),
		co("3", "C", 10000, enums.DiversityMBE),
		co("4", "D", 2000, enums.DiversityUnknown),
		co("5", "E", 80000, enums.DiversityNonDiverse),
	}).PerformanceSummary()

	assert.Equal(t, 100000.0, perf.TotalSpend)
	assert.Equal(t, 18000.0, perf.DiverseSpend)
	assert.Equal(t, 18.0, perf.OverallDiversityPct)
}

func TestPerformanceSummary_Idempotent(t *testing.T) {
	tr := newTestTracker(t, DefaultTargets())
	a := tr.Analyze([]ledger.Order{
		co("1", "Women Works", 333.33, enums.DiversityUnknown),
		co("2", "B", 666.67, enums.DiversityNonDiverse),
		co("3", "C", 120, enums.DiversityUnknown),
	})

	assert.Equal(t, a.PerformanceSummary(), a.PerformanceSummary())
	assert.Equal(t, a.CheckCompliance(), a.CheckCompliance())
}

func TestCheckCompliance_DVBEAtTargetOverallShort(t *testing.T) {
	tr := newTestTracker(t, DefaultTargets())
	a := tr.Analyze([]ledger.Order{
		co("1", "A", 3000, enums.DiversityDVBE),
		co("2", "B", 5000, enums.DiversityWOB),
		co("3", "C", 10000, enums.DiversityMBE),
		co("4", "D", 82000, enums.DiversityNonDiverse),
	})

	statuses := a.CheckCompliance()
	require.Len(t, statuses, 4)
	assert.Equal(t, ScopeOverall, statuses[0].Scope)

	dvbe, ok := statusFor(statuses, "DVBE")
	require.True(t, ok)
	assert.True(t, dvbe.Compliant)
	assert.Equal(t, 3.0, dvbe.CurrentPct)

	overall, _ := statusFor(statuses, ScopeOverall)
	assert.False(t, overall.Compliant)
	assert.Equal(t, 7.0, overall.Gap)

	alerts := a.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, ScopeOverall, alerts[0].Scope)
	assert.Equal(t, enums.AlertPriorityWarning, alerts[0].Level)
	assert.Equal(t, 7000.0, alerts[0].SpendShift)
	assert.Contains(t, alerts[0].ActionRequired, "$7,000.00")
}

func TestAlerts_GapThresholds(t *testing.T) {
	cases := []struct {
		name    string
		diverse float64
		level   enums.AlertPriority
		alert   bool
	}{
		{"five point gap warns", 20000, enums.AlertPriorityWarning, true},
		{"half point gap is quiet", 24500, "", false},
		{"exactly one point is quiet", 24000, "", false},
		{"gap just over one point warns", 23996, enums.AlertPriorityWarning, true},
		{"eleven point gap is critical", 14000, enums.AlertPriorityCritical, true},
		{"at target", 25000, "", false},
	}

	tr := newTestTracker(t, Targets{Overall: 25})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := tr.Analyze([]ledger.Order{
				co("1", "A", tc.diverse, enums.DiversityDVBE),
				co("2", "B", 100000-tc.diverse, enums.DiversityNonDiverse),
			})
			alerts := a.Alerts()
			if !tc.alert {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, tc.level, alerts[0].Level)
		})
	}
}

func TestRecommendations(t *testing.T) {
	tr := newTestTracker(t, DefaultTargets())
	a := tr.Analyze([]ledger.Order{
		co("1", "A", 1000, enums.DiversityDVBE),
		co("2", "B", 6000, enums.DiversityWOB),
		co("3", "C", 11000, enums.DiversityMBE),
		co("4", "D", 82000, enums.DiversityNonDiverse),
	})

	recs := a.Recommendations()
	require.Len(t, recs, 3)

	// Overall is 7 points short, a small gap.
	assert.Equal(t, ScopeOverall, recs[0].Scope)
	assert.Equal(t, enums.AlertPriorityHigh, recs[0].Priority)
	assert.Equal(t, "Increase diverse supplier engagement", recs[0].Action)
	assert.Equal(t, 60, recs[0].TimelineDays)

	assert.Equal(t, "DVBE", recs[1].Scope)
	assert.Equal(t, enums.AlertPriorityHigh, recs[1].Priority)
	assert.Equal(t, 60, recs[1].TimelineDays)
	assert.Equal(t, 2000.0, recs[1].SpendShift)

	// DVBE has a supplier but only 1% of spend.
	assert.Equal(t, "DVBE", recs[2].Scope)
	assert.Equal(t, enums.AlertPriorityMedium, recs[2].Priority)
	assert.Equal(t, "Increase order volume with existing DVBE suppliers", recs[2].Action)
	assert.Equal(t, 30, recs[2].TimelineDays)
}

func TestRecommendations_LargeCategoryGap(t *testing.T) {
	tr := newTestTracker(t, Targets{Categories: []CategoryTarget{{Category: enums.DiversityMBE, Percent: 15}}})
	a := tr.Analyze([]ledger.Order{co("1", "A", 100, enums.DiversityNonDiverse)})

	recs := a.Recommendations()
	require.Len(t, recs, 1)
	assert.Equal(t, enums.AlertPriorityCritical, recs[0].Priority)
	assert.Equal(t, "Build a MBE supplier program", recs[0].Action)
}

func TestRecommendations_OverallScalesWithGap(t *testing.T) {
	tr := newTestTracker(t, Targets{Overall: 25})

	large := tr.Analyze([]ledger.Order{
		co("1", "A", 10000, enums.DiversityDVBE),
		co("2", "B", 90000, enums.DiversityNonDiverse),
	}).Recommendations()
	require.Len(t, large, 1)
	assert.Equal(t, enums.AlertPriorityCritical, large[0].Priority)
	assert.Equal(t, "Comprehensive diversity program expansion", large[0].Action)
	assert.Equal(t, 90, large[0].TimelineDays)
	assert.Equal(t, 15000.0, large[0].SpendShift)

	small := tr.Analyze([]ledger.Order{
		co("1", "A", 22000, enums.DiversityDVBE),
		co("2", "B", 78000, enums.DiversityNonDiverse),
	}).Recommendations()
	require.Len(t, small, 1)
	assert.Equal(t, enums.AlertPriorityHigh, small[0].Priority)
	assert.Equal(t, "Increase diverse supplier engagement", small[0].Action)
	assert.Equal(t, 60, small[0].TimelineDays)
	assert.Equal(t, 3000.0, small[0].SpendShift)
}

func TestCheckCompliance_DecidesOnUnroundedShare(t *testing.T) {
	tr := newTestTracker(t, Targets{Overall: 25})
	a := tr.Analyze([]ledger.Order{
		co("1", "A", 23996, enums.DiversityDVBE),
		co("2", "B", 76004, enums.DiversityNonDiverse),
	})

	overall, ok := statusFor(a.CheckCompliance(), ScopeOverall)
	require.True(t, ok)
	assert.Equal(t, 24.0, overall.CurrentPct)
	assert.Equal(t, 1.0, overall.Gap)
	assert.False(t, overall.Compliant)

	alerts := a.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, 1004.0, alerts[0].SpendShift)

	// 24.999% rounds to the target but is still short of it.
	near := tr.Analyze([]ledger.Order{
		co("1", "A", 24999, enums.DiversityDVBE),
		co("2", "B", 75001, enums.DiversityNonDiverse),
	})
	st, _ := statusFor(near.CheckCompliance(), ScopeOverall)
	assert.Equal(t, 25.0, st.CurrentPct)
	assert.False(t, st.Compliant)
	assert.Empty(t, near.Alerts())
}

func TestMonthlyTrends(t *testing.T) {
	tr := newTestTracker(t, DefaultTargets())
	feb := base.AddDate(0, 1, 0)
	orders := []ledger.Order{
		co("1", "A", 100, enums.DiversityDVBE),
		co("2", "B", 900, enums.DiversityNonDiverse),
		{ID: "3", Date: feb, SupplierName: "A", TotalAmount: 200, DiversityCategory: enums.DiversityDVBE},
		{ID: "4", Date: feb, SupplierName: "B", TotalAmount: 800, DiversityCategory: enums.DiversityNonDiverse},
	}

	trends := tr.Analyze(orders).MonthlyTrends()
	require.Len(t, trends, 2)

	assert.Equal(t, enums.DiversityDVBE, trends[0].Category)
	assert.Equal(t, TrendIncreasing, trends[0].Direction)
	assert.Equal(t, 10.0, trends[0].ChangePct)
	assert.Equal(t, 20.0, trends[0].Current)
	require.Len(t, trends[0].Months, 2)
	assert.Equal(t, "2024-01", trends[0].Months[0].Month)

	assert.Equal(t, enums.DiversityNonDiverse, trends[1].Category)
	assert.Equal(t, TrendDecreasing, trends[1].Direction)
}

func TestSupplierDirectory(t *testing.T) {
	tr := newTestTracker(t, DefaultTargets())
	lead := func(d int) *int { return &d }
	orders := []ledger.Order{
		{ID: "1", Date: base, SupplierName: "Beta", TotalAmount: 100, Carrier: "UPS", LeadTimeDays: lead(5), DiversityCategory: enums.DiversityWOB},
		{ID: "2", Date: base, SupplierName: "Beta", TotalAmount: 300, Carrier: "FedEx", LeadTimeDays: lead(9), DiversityCategory: enums.DiversityWOB},
		{ID: "3", Date: base, SupplierName: "Beta", TotalAmount: 200, Carrier: "UPS", DiversityCategory: enums.DiversityWOB},
		{ID: "4", Date: base, SupplierName: "Alpha", TotalAmount: 50, Carrier: "N/A", LeadTimeDays: lead(14), DiversityCategory: enums.DiversityNonDiverse},
		{ID: "5", Date: base, SupplierName: "Gamma", TotalAmount: 10, DiversityCategory: enums.DiversityNonDiverse},
	}

	dir := tr.Analyze(orders).SupplierDirectory()
	require.Len(t, dir, 3)

	assert.Equal(t, "Alpha", dir[0].Supplier)
	assert.Equal(t, "Unknown", dir[0].PrimaryCarrier)
	assert.Equal(t, RatingNeedsImprovement, dir[0].Rating)

	beta := dir[1]
	assert.Equal(t, "UPS", beta.PrimaryCarrier)
	assert.Equal(t, 600.0, beta.TotalSpend)
	assert.Equal(t, 200.0, beta.AverageOrderValue)
	require.NotNil(t, beta.AverageLeadTime)
	assert.Equal(t, 7.0, *beta.AverageLeadTime)
	assert.Equal(t, RatingGood, beta.Rating)

	assert.Equal(t, RatingUnrated, dir[2].Rating)
}

func TestForecastAndExecutiveSummary(t *testing.T) {
	tr := newTestTracker(t, DefaultTargets())
	a := tr.Analyze([]ledger.Order{
		co("1", "A", 3000, enums.DiversityDVBE),
		co("2", "B", 5000, enums.DiversityWOB),
		co("3", "C", 10000, enums.DiversityMBE),
		co("4", "D", 82000, enums.DiversityNonDiverse),
	})

	fc := a.Forecast()
	require.Len(t, fc, 4)
	assert.Equal(t, 7, fc[0].QuartersToCompliance)
	assert.InDelta(t, 0.33, fc[0].RequiredMonthlyImprovement, 0.001)
	assert.Zero(t, fc[1].QuartersToCompliance)

	sum := a.ExecutiveSummary()
	assert.Equal(t, 3, sum.CompliantChecks)
	assert.Equal(t, 4, sum.TotalChecks)
	assert.Equal(t, 0, sum.CriticalAlerts)
	assert.Equal(t, 18.0, sum.DiversityPct)
}

func TestNewTracker_RejectsBadTargets(t *testing.T) {
	_, err := NewTracker(Config{Targets: Targets{Overall: 120}})
	require.Error(t, err)

	_, err = NewTracker(Config{Targets: Targets{Categories: []CategoryTarget{{Category: enums.DiversityUnknown, Percent: 5}}}})
	require.Error(t, err)
}
