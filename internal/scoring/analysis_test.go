package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
)

func TestSavingsAnalysis(t *testing.T) {
	orders := []ledger.Order{
		shipment("1", "Ground", 500, 15, nil),
		shipment("2", "Ground", 500, 45, nil),
		shipment("3", "", 500, 0, nil),
	}
	model := newTestEngine(t).Build(orders)

	got := model.SavingsAnalysis(orders)
	assert.Equal(t, 60.0, got.CurrentTotalShipping)
	assert.Equal(t, 10.0, got.PotentialSavings)
	assert.Equal(t, 16.67, got.SavingsPct)
	assert.Equal(t, 2, got.OrdersAnalyzed)
	assert.Equal(t, 1, got.OrdersOverOptimal)
	assert.Equal(t, map[string]float64{"Ground": 60}, got.CarrierBreakdown)
}

func TestPerformanceSummaryReliabilityLabels(t *testing.T) {
	var orders []ledger.Order
	add := func(carrier string, n int) {
		for i := 0; i < n; i++ {
			orders = append(orders, shipment(fmt.Sprintf("%s-%d", carrier, i), carrier, 100, 10, lt(2)))
		}
	}
	add("FedEx", 21)
	add("Ground", 10)
	add("UPS", 11)

	summary := newTestEngine(t).Build(orders).PerformanceSummary()
	require.Len(t, summary, 3)
	labels := map[string]string{}
	for _, s := range summary {
		labels[s.Carrier] = s.Reliability
	}
	assert.Equal(t, map[string]string{"FedEx": "High", "Ground": "Low", "UPS": "Medium"}, labels)
	assert.Equal(t, "FedEx", summary[0].Carrier)
	assert.Equal(t, 2.0, summary[0].AvgLeadTime)
}

func TestValueBandPreferences(t *testing.T) {
	bands := ValueBandPreferences([]ledger.Order{
		shipment("1", "UPS", 300, 20, nil),
		shipment("2", "Ground", 400, 10, nil),
		shipment("3", "FedEx", 600, 50, nil),
		shipment("4", "Freight", 15000, 300, nil),
	})
	require.Len(t, bands, 4)
	assert.Equal(t, "Ground", bands[0].PreferredCarrier)
	assert.Equal(t, 10.0, bands[0].AvgShipping)
	assert.Equal(t, 2, bands[0].Orders)
	assert.Equal(t, "FedEx", bands[1].PreferredCarrier)
	assert.Empty(t, bands[2].PreferredCarrier)
	assert.Equal(t, "Freight", bands[3].PreferredCarrier)
}
