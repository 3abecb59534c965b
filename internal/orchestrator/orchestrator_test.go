package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaiahriv1234/Freight-Project/internal/compliance"
	"github.com/isaiahriv1234/Freight-Project/internal/consolidation"
	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/internal/ratequote"
	"github.com/isaiahriv1234/Freight-Project/internal/scoring"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
	pkgerrors "github.com/isaiahriv1234/Freight-Project/pkg/errors"
	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
)

var (
	day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	asOf = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

type staticQuotes []ratequote.Quote

func (s staticQuotes) Quotes(context.Context, ratequote.Request) []ratequote.Quote { return s }

func newTestEngine(t *testing.T, quotes QuoteSource) *Engine {
	t.Helper()
	scorer, err := scoring.NewEngine(scoring.Config{MinShippingCost: 5, DefaultGroundCost: 25, DefaultGroundDays: 5})
	require.NoError(t, err)
	batcher, err := consolidation.NewBatcher(consolidation.DefaultConfig(), logger.Nop())
	require.NoError(t, err)
	tracker, err := compliance.NewTracker(compliance.Config{
		Targets:                     compliance.DefaultTargets(),
		SmallOrderThreshold:         500,
		InfrequentSupplierMaxOrders: 3,
	})
	require.NoError(t, err)

	e, err := NewEngine(Config{
		WindowDays:             7,
		AlertSavingsThreshold:  50,
		HighPrioritySavings:    500,
		MaxConsolidationAlerts: 5,
		OverchargeMultiplier:   1.5,
		OverchargeLookbackDays: 30,
		AutoConsolidateSavings: 200,
		OriginZip:              "95814",
	}, Deps{
		Scoring:    scorer,
		Batcher:    batcher,
		Compliance: tracker,
		Quotes:     quotes,
		Logger:     logger.Nop(),
		Now:        func() time.Time { return asOf },
	})
	require.NoError(t, err)
	return e
}

func order(id, supplier string, day int, carrier string, value, shipping float64) ledger.Order {
	return ledger.Order{
		ID:                id,
		Date:              day0.AddDate(0, 0, day),
		SupplierName:      supplier,
		TotalAmount:       value,
		ShippingCost:      shipping,
		Carrier:           carrier,
		DiversityCategory: enums.DiversityNonDiverse,
	}
}

func snapshotOf(orders ...ledger.Order) *ledger.Snapshot {
	return ledger.NewSnapshot(orders, 7, 1, asOf)
}

func selectionHistory() *ledger.Snapshot {
	return snapshotOf(
		order("u1", "Beta", 0, "UPS", 1000, 30),
		order("u2", "Gamma", 10, "UPS", 1000, 50),
		order("g1", "Delta", 20, "Ground", 500, 15),
	)
}

func alertHistory() *ledger.Snapshot {
	return snapshotOf(
		order("u1", "Beta", 0, "UPS", 1000, 20),
		order("u2", "Gamma", 20, "UPS", 1000, 20),
		order("u3", "Delta", 40, "UPS", 1000, 20),
		order("u4", "Epsilon", 60, "UPS", 1000, 20),
		order("a1", "Acme", 78, "UPS", 1000, 300),
		order("a2", "Acme", 80, "UPS", 1000, 300),
	)
}

func TestAutoSelectCarrier_PrefersRealtimeQuotes(t *testing.T) {
	e := newTestEngine(t, staticQuotes{
		{Carrier: "UPS", ServiceName: "Ground", Cost: 20, Currency: "USD", TransitDays: 4},
		{Carrier: "FedEx", ServiceName: "Home", Cost: 35, Currency: "USD", TransitDays: 3},
	})
	run := e.NewRun(selectionHistory(), asOf)

	sel := run.AutoSelectCarrier(context.Background(), OrderDetails{OrderValue: 1000, WeightCategory: enums.WeightMedium, Urgency: enums.UrgencyStandard})

	assert.Equal(t, SourceRealtime, sel.Source)
	assert.Equal(t, enums.ConfidenceHigh, sel.Confidence)
	assert.Equal(t, "UPS", sel.Carrier)
	assert.Equal(t, 20.0, sel.Cost)
	// Historical predictions are UPS 65 and Ground 25.
	assert.Equal(t, 45.0, sel.HistoricalMean)
	assert.Equal(t, 25.0, sel.Savings)
	assert.Len(t, sel.RealtimeQuotes, 2)
}

func TestAutoSelectCarrier_SavingsNeverNegative(t *testing.T) {
	e := newTestEngine(t, staticQuotes{{Carrier: "FedEx", Cost: 400}})
	sel := e.NewRun(selectionHistory(), asOf).AutoSelectCarrier(context.Background(), OrderDetails{OrderValue: 1000})

	assert.Equal(t, SourceRealtime, sel.Source)
	assert.Zero(t, sel.Savings)
}

func TestAutoSelectCarrier_FallsBackToHistory(t *testing.T) {
	e := newTestEngine(t, staticQuotes{})
	sel := e.NewRun(selectionHistory(), asOf).AutoSelectCarrier(context.Background(), OrderDetails{OrderValue: 1000})

	assert.Equal(t, SourceHistorical, sel.Source)
	assert.Equal(t, enums.ConfidenceMedium, sel.Confidence)
	assert.Equal(t, "Ground", sel.Carrier)
	assert.Equal(t, 25.0, sel.Cost)
	assert.Zero(t, sel.Savings)
}

func TestAutoSelectCarrier_DefaultsToGround(t *testing.T) {
	e := newTestEngine(t, nil)
	run := e.NewRun(snapshotOf(), asOf)
	sel := run.AutoSelectCarrier(context.Background(), OrderDetails{OrderValue: 1000})

	assert.Equal(t, SourceDefault, sel.Source)
	assert.Equal(t, enums.ConfidenceLow, sel.Confidence)
	assert.Equal(t, "Ground", sel.Carrier)
	assert.Equal(t, 25.0, sel.Cost)
	assert.Equal(t, 5.0, sel.TransitDays)

	events := run.Log().Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventCarrierSelected, events[0].Kind)
	assert.Equal(t, SourceDefault, events[0].Data["source"])
}

func TestGenerateAlerts_MergesAndOrders(t *testing.T) {
	run := newTestEngine(t, nil).NewRun(alertHistory(), asOf)

	alerts := run.GenerateAlerts()
	require.Len(t, alerts, 8)

	assert.Equal(t, enums.AlertTypeCarrierOptimization, alerts[0].Type)
	assert.Equal(t, enums.AlertPriorityMedium, alerts[0].Priority)
	assert.InDelta(t, 323.34, alerts[0].PotentialSavings, 0.02)
	assert.Equal(t, asOf.Add(7*24*time.Hour), alerts[0].Deadline)

	assert.Equal(t, enums.AlertTypeConsolidation, alerts[1].Type)
	assert.Equal(t, enums.AlertPriorityMedium, alerts[1].Priority)
	assert.Equal(t, 180.0, alerts[1].PotentialSavings)
	assert.Equal(t, []string{"a1", "a2"}, alerts[1].OrderIDs)
	assert.Equal(t, asOf.Add(3*24*time.Hour), alerts[1].Deadline)

	for _, a := range alerts[2:4] {
		assert.Equal(t, enums.AlertTypeOverchargeDetected, a.Type)
		assert.Equal(t, enums.AlertPriorityHigh, a.Priority)
		assert.Equal(t, 161.67, a.PotentialSavings)
		assert.Equal(t, asOf.Add(24*time.Hour), a.Deadline)
	}

	assert.Equal(t, enums.AlertTypeComplianceGap, alerts[4].Type)
	assert.Equal(t, enums.AlertPriorityCritical, alerts[4].Priority)
	assert.Equal(t, compliance.ScopeOverall, alerts[4].Scope)
	for _, a := range alerts[5:] {
		assert.Equal(t, enums.AlertPriorityWarning, a.Priority)
		assert.Zero(t, a.PotentialSavings)
	}

	assert.Equal(t, 8, run.Log().Len())
}

func TestGenerateAlerts_OverchargeOnlyInsideLookback(t *testing.T) {
	orders := alertHistory().Orders()
	orders = append(orders, order("late", "Zeta", 120, "UPS", 1000, 20))
	run := newTestEngine(t, nil).NewRun(snapshotOf(orders...), asOf)

	for _, a := range run.GenerateAlerts() {
		assert.NotEqual(t, enums.AlertTypeOverchargeDetected, a.Type, "a1 and a2 fall outside the lookback window")
	}
}

func TestGenerateAlerts_SortTieBreaksOnPriorityWeight(t *testing.T) {
	alerts := []Alert{
		{Priority: enums.AlertPriorityLow, PotentialSavings: 10},
		{Priority: enums.AlertPriorityHigh, PotentialSavings: 10},
		{Priority: enums.AlertPriorityMedium, PotentialSavings: 10},
	}
	sortAlerts(alerts)
	assert.Equal(t, enums.AlertPriorityHigh, alerts[0].Priority)
	assert.Equal(t, enums.AlertPriorityMedium, alerts[1].Priority)
	assert.Equal(t, enums.AlertPriorityLow, alerts[2].Priority)
}

func TestReport_FailsFastOnEmptyLedger(t *testing.T) {
	run := newTestEngine(t, nil).NewRun(snapshotOf(), asOf)

	report, err := run.Report(context.Background())
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientData))
	assert.Zero(t, run.Log().Len())
}

func TestReport_Complete(t *testing.T) {
	run := newTestEngine(t, nil).NewRun(alertHistory(), asOf)

	report, err := run.Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, run.ID(), report.RunID)
	assert.Equal(t, 6, report.OrderCount)
	assert.Equal(t, 6000.0, report.TotalSpend)
	assert.Len(t, report.Carriers.Scenarios, 4)
	assert.Contains(t, report.Carriers.Stats, "UPS")
	assert.Len(t, report.Consolidation.Opportunities, 1)
	require.Len(t, consolidation.Flatten(report.Consolidation.Batches), 1)
	assert.Len(t, report.Compliance.Status, 4)
	assert.Len(t, report.Alerts, 8)

	// One batch plus eight alerts.
	require.Len(t, report.Decisions, 9)
	assert.Equal(t, EventBatchEmitted, report.Decisions[0].Kind)
	assert.Equal(t, "Acme", report.Decisions[0].Subject)
	for i, ev := range report.Decisions {
		assert.Equal(t, i+1, ev.Seq)
	}
}

func TestReport_CancelledContextReturnsNothing(t *testing.T) {
	run := newTestEngine(t, nil).NewRun(alertHistory(), asOf)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := run.Report(ctx)
	require.Error(t, err)
	assert.Nil(t, report)
}

func TestRunsHaveIndependentLogs(t *testing.T) {
	e := newTestEngine(t, nil)
	first := e.NewRun(selectionHistory(), asOf)
	second := e.NewRun(selectionHistory(), asOf)

	first.AutoSelectCarrier(context.Background(), OrderDetails{OrderValue: 100})
	assert.Equal(t, 1, first.Log().Len())
	assert.Zero(t, second.Log().Len())
	assert.NotEqual(t, first.ID(), second.ID())
}

func TestDecisionLog_ConcurrentAppend(t *testing.T) {
	log := newDecisionLog(func() time.Time { return asOf })
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Append(EventAlertRaised, "x", "y", nil)
		}()
	}
	wg.Wait()

	events := log.Events()
	require.Len(t, events, 50)
	for i, ev := range events {
		assert.Equal(t, i+1, ev.Seq)
	}

	events[0].Subject = "mutated"
	assert.Equal(t, "x", log.Events()[0].Subject)
}

func TestShippingRules(t *testing.T) {
	rules := newTestEngine(t, nil).NewRun(alertHistory(), asOf).ShippingRules()

	assert.Equal(t, 50.0, rules.CostThresholds.OverchargePct)
	assert.Equal(t, 200.0, rules.Consolidation.AutoConsolidateSavings)
	assert.Equal(t, 0.30, rules.Consolidation.Discount)
	require.NotEmpty(t, rules.CarrierPreferences)
}

func TestNewEngine_RequiresCollaborators(t *testing.T) {
	_, err := NewEngine(Config{WindowDays: 7, OverchargeMultiplier: 1.5, OverchargeLookbackDays: 30}, Deps{Logger: logger.Nop()})
	require.Error(t, err)

	_, err = NewEngine(Config{WindowDays: 7, OverchargeMultiplier: 1, OverchargeLookbackDays: 30}, Deps{})
	require.Error(t, err)
}
