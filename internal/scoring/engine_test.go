package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(Config{MinShippingCost: 5, DefaultGroundCost: 25, DefaultGroundDays: 5})
	require.NoError(t, err)
	return e
}

func lt(days int) *int { return &days }

func shipment(id, carrier string, value, shipping float64, leadTime *int) ledger.Order {
	return ledger.Order{
		ID:           id,
		Date:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		SupplierName: "Acme",
		TotalAmount:  value,
		ShippingCost: shipping,
		Carrier:      carrier,
		LeadTimeDays: leadTime,
	}
}

func historicalOrders() []ledger.Order {
	return []ledger.Order{
		shipment("u1", "UPS", 1000, 30, lt(3)),
		shipment("u2", "UPS", 2000, 50, lt(5)),
		shipment("f1", "FedEx", 1000, 60, lt(1)),
		shipment("r1", "Freight", 20000, 400, nil),
		shipment("r2", "Freight", 10000, 200, lt(10)),
		shipment("g1", "Ground", 500, 15, lt(7)),
		shipment("n1", "N/A", 800, 0, nil),
		shipment("x1", "", 800, 12, nil),
	}
}

func TestNewEngine_ValidatesConfig(t *testing.T) {
	_, err := NewEngine(Config{MinShippingCost: 0, DefaultGroundCost: 25, DefaultGroundDays: 5})
	assert.Error(t, err)
	_, err = NewEngine(Config{MinShippingCost: 5, DefaultGroundCost: 1, DefaultGroundDays: 5})
	assert.Error(t, err)
	_, err = NewEngine(Config{MinShippingCost: 5, DefaultGroundCost: 25})
	assert.Error(t, err)
}

func TestComputeCarrierStats(t *testing.T) {
	stats := ComputeCarrierStats(historicalOrders())

	require.Len(t, stats, 4)
	assert.NotContains(t, stats, "N/A")

	ups := stats["UPS"]
	assert.Equal(t, 2, ups.SampleCount)
	assert.Equal(t, 40.0, ups.MeanCost)
	assert.Equal(t, 14.14, ups.StdCost)
	assert.Equal(t, 4.0, ups.MeanLeadTime)
	assert.Equal(t, 2.67, ups.CostEfficiencyPct)

	fedex := stats["FedEx"]
	assert.Equal(t, 0.0, fedex.StdCost, "single sample has no deviation")
	assert.Equal(t, 6.0, fedex.CostEfficiencyPct)

	freight := stats["Freight"]
	assert.Equal(t, 10.0, freight.MeanLeadTime, "lead time averages non-null values only")
	assert.Equal(t, 1, freight.LeadTimeSamples)
	assert.Equal(t, 2.0, freight.CostEfficiencyPct)
}

func TestRecommendCarriers_HeavyHighValueFavoursFreight(t *testing.T) {
	model := newTestEngine(t).Build(historicalOrders())

	recs := model.RecommendCarriers(RecommendationRequest{
		OrderValue:     12000,
		WeightCategory: enums.WeightHeavy,
		Urgency:        enums.UrgencyStandard,
	})
	require.Len(t, recs, 4)
	assert.Equal(t, "Freight", recs[0].Carrier)
	assert.Equal(t, 100, recs[0].Score)
	assert.Equal(t, 900.0, recs[0].PredictedCost)
	assert.Equal(t, "Best for heavy/bulk items", recs[0].Reasoning)
	assert.Equal(t, enums.ConfidenceMedium, recs[0].Confidence)

	assert.Equal(t, "Ground", recs[1].Carrier)
	assert.Equal(t, 85, recs[1].Score)
}

func TestRecommendCarriers_TieBreaksOnCostThenName(t *testing.T) {
	model := newTestEngine(t).Build(historicalOrders())

	recs := model.RecommendCarriers(RecommendationRequest{
		OrderValue:     500,
		WeightCategory: enums.WeightLight,
		Urgency:        enums.UrgencyOvernight,
	})
	got := make([]string, len(recs))
	for i, r := range recs {
		got[i] = r.Carrier
	}
	assert.Equal(t, []string{"FedEx", "Ground", "UPS", "Freight"}, got)
	assert.Equal(t, 95, recs[0].Score)
	assert.Equal(t, recs[1].Score, recs[2].Score)
	assert.Less(t, recs[1].PredictedCost, recs[2].PredictedCost)

	tied := newTestEngine(t).Build([]ledger.Order{
		shipment("1", "Zeta Logistics", 1000, 20, nil),
		shipment("2", "Alpha Courier", 1000, 20, nil),
	})
	recs = tied.RecommendCarriers(RecommendationRequest{OrderValue: 1000})
	require.Len(t, recs, 2)
	assert.Equal(t, "Alpha Courier", recs[0].Carrier)
	assert.False(t, recs[0].Profiled)
	assert.Equal(t, "Unprofiled carrier; ranked on history only", recs[0].Reasoning)
}

func TestRecommendCarriers_ScoresAndCostsStayInBounds(t *testing.T) {
	orders := append(historicalOrders(),
		shipment("e1", "Electronic", 0, 0, lt(0)),
		shipment("o1", "Local Courier", 100, 1, nil),
	)
	model := newTestEngine(t).Build(orders)

	weights := []enums.WeightCategory{enums.WeightLight, enums.WeightMedium, enums.WeightHeavy}
	urgencies := []enums.Urgency{enums.UrgencyStandard, enums.UrgencyExpedited, enums.UrgencyOvernight}
	values := []float64{0, 1, 999, 1000, 5000, 10000, 10001, 250000}

	for _, w := range weights {
		for _, u := range urgencies {
			for _, v := range values {
				for _, r := range model.RecommendCarriers(RecommendationRequest{OrderValue: v, WeightCategory: w, Urgency: u}) {
					if r.Score < 0 || r.Score > 100 {
						t.Fatalf("score %d out of range for %s", r.Score, r.Carrier)
					}
					if r.PredictedCost < 5 {
						t.Fatalf("predicted cost %v below floor for %s", r.PredictedCost, r.Carrier)
					}
					if r.ReliabilityScore < 0 || r.ReliabilityScore > 100 {
						t.Fatalf("reliability %v out of range", r.ReliabilityScore)
					}
				}
			}
		}
	}
}

func TestRecommendCarriers_FallbackWithoutHistory(t *testing.T) {
	model := newTestEngine(t).Build([]ledger.Order{shipment("1", "", 100, 10, nil)})

	recs := model.RecommendCarriers(RecommendationRequest{OrderValue: 100})
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Fallback)
	assert.Equal(t, "Ground", recs[0].Carrier)
	assert.Equal(t, 25.0, recs[0].PredictedCost)
	assert.Equal(t, enums.ConfidenceLow, recs[0].Confidence)
}

func TestReasoning(t *testing.T) {
	cases := []struct {
		carrier string
		req     RecommendationRequest
		want    string
	}{
		{"Ground", RecommendationRequest{Urgency: enums.UrgencyStandard, WeightCategory: enums.WeightMedium}, "Most cost-effective for standard delivery; Lowest cost option"},
		{"FedEx", RecommendationRequest{Urgency: enums.UrgencyOvernight, WeightCategory: enums.WeightMedium}, "Fastest delivery option; Fastest delivery"},
		{"UPS", RecommendationRequest{Urgency: enums.UrgencyExpedited, WeightCategory: enums.WeightMedium}, "Good balance of cost and speed"},
		{"Electronic", RecommendationRequest{Urgency: enums.UrgencyStandard, WeightCategory: enums.WeightMedium}, "Standard option"},
	}
	for _, tc := range cases {
		if got := reasoning(LookupProfile(tc.carrier), tc.req); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.carrier, got, tc.want)
		}
	}
}

func TestLookupProfile(t *testing.T) {
	p := LookupProfile(" fedex ")
	assert.Equal(t, "FedEx", p.Name)
	assert.Equal(t, KindParcel, p.Kind)

	unknown := LookupProfile("DHL")
	assert.Equal(t, KindUnprofiled, unknown.Kind)
	assert.False(t, unknown.Profiled())
	assert.Equal(t, "DHL", unknown.Name)
}

func TestPredictFor(t *testing.T) {
	model := newTestEngine(t).Build(historicalOrders())

	cost, ok := model.PredictFor("UPS", 2000)
	require.True(t, ok)
	assert.Equal(t, 90.0, cost)

	_, ok = model.PredictFor("DHL", 2000)
	assert.False(t, ok)
}
