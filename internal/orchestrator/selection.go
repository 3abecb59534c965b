package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/isaiahriv1234/Freight-Project/internal/ratequote"
	"github.com/isaiahriv1234/Freight-Project/internal/scoring"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
	"github.com/isaiahriv1234/Freight-Project/pkg/money"
)

type SelectionSource string

const (
	SourceRealtime   SelectionSource = "realtime"
	SourceHistorical SelectionSource = "historical"
	SourceDefault    SelectionSource = "default"
)

// OrderDetails describes the shipment to pick a carrier for.
type OrderDetails struct {
	OrderValue     float64              `json:"order_value" validate:"gte=0"`
	WeightCategory enums.WeightCategory `json:"weight_category"`
	Urgency        enums.Urgency        `json:"urgency"`
	WeightLbs      float64              `json:"weight_lbs" validate:"gte=0"`
	Dimensions     ratequote.Dimensions `json:"dimensions"`
	OriginZip      string               `json:"origin_zip"`
	DestCity       string               `json:"dest_city"`
	DestState      string               `json:"dest_state"`
	DestZip        string               `json:"dest_zip"`
}

// Selection is the outcome of automatic carrier selection.
type Selection struct {
	Carrier         string                   `json:"carrier"`
	ServiceName     string                   `json:"service_name,omitempty"`
	Cost            float64                  `json:"cost"`
	Currency        string                   `json:"currency"`
	TransitDays     float64                  `json:"transit_days"`
	Source          SelectionSource          `json:"source"`
	Confidence      enums.Confidence         `json:"confidence"`
	HistoricalMean  float64                  `json:"historical_mean_cost"`
	Savings         float64                  `json:"savings"`
	Reasoning       string                   `json:"reasoning"`
	RealtimeQuotes  []ratequote.Quote        `json:"realtime_quotes,omitempty"`
	Recommendations []scoring.Recommendation `json:"recommendations,omitempty"`
}

func (d OrderDetails) recommendationRequest() scoring.RecommendationRequest {
	return scoring.RecommendationRequest{
		OrderValue:     d.OrderValue,
		WeightCategory: d.WeightCategory,
		Urgency:        d.Urgency,
	}
}

func (d OrderDetails) quoteRequest(defaultOrigin string) ratequote.Request {
	origin := strings.TrimSpace(d.OriginZip)
	if origin == "" {
		origin = defaultOrigin
	}
	return ratequote.Request{
		OriginZip:     origin,
		DestCity:      d.DestCity,
		DestState:     d.DestState,
		DestZip:       d.DestZip,
		WeightLbs:     d.WeightLbs,
		Dimensions:    d.Dimensions,
		DeclaredValue: d.OrderValue,
	}
}

// AutoSelectCarrier prefers the cheapest real-time quote, then the top
// historical recommendation, then the ground default.
func (r *Run) AutoSelectCarrier(ctx context.Context, details OrderDetails) Selection {
	recs := r.model.RecommendCarriers(details.recommendationRequest())
	historicalMean := meanPredicted(recs)

	var quotes []ratequote.Quote
	if r.engine.quotes != nil {
		quotes = r.engine.quotes.Quotes(ctx, details.quoteRequest(r.engine.cfg.OriginZip))
	}

	var sel Selection
	switch {
	case len(quotes) > 0:
		best := quotes[0]
		savings := historicalMean - best.Cost
		if savings < 0 {
			savings = 0
		}
		sel = Selection{
			Carrier:        best.Carrier,
			ServiceName:    best.ServiceName,
			Cost:           money.Round2(best.Cost),
			Currency:       best.Currency,
			TransitDays:    float64(best.TransitDays),
			Source:         SourceRealtime,
			Confidence:     enums.ConfidenceHigh,
			HistoricalMean: historicalMean,
			Savings:        money.Round2(savings),
			Reasoning:      fmt.Sprintf("Lowest of %d real-time quotes", len(quotes)),
			RealtimeQuotes: quotes,
		}
	case len(recs) > 0 && !recs[0].Fallback:
		top := recs[0]
		sel = Selection{
			Carrier:        top.Carrier,
			Cost:           top.PredictedCost,
			TransitDays:    top.AvgLeadTime,
			Source:         SourceHistorical,
			Confidence:     enums.ConfidenceMedium,
			HistoricalMean: historicalMean,
			Reasoning:      top.Reasoning,
		}
	default:
		fb := r.engine.scoring.Fallback()
		sel = Selection{
			Carrier:        fb.Carrier,
			Cost:           fb.PredictedCost,
			TransitDays:    fb.AvgLeadTime,
			Source:         SourceDefault,
			Confidence:     enums.ConfidenceLow,
			HistoricalMean: historicalMean,
			Reasoning:      fb.Reasoning,
		}
	}
	if sel.Currency == "" {
		sel.Currency = "USD"
	}
	sel.Recommendations = recs

	r.log.Append(EventCarrierSelected, sel.Carrier, sel.Reasoning, map[string]any{
		"source":      sel.Source,
		"confidence":  sel.Confidence,
		"cost":        sel.Cost,
		"order_value": details.OrderValue,
	})
	return sel
}

func meanPredicted(recs []scoring.Recommendation) float64 {
	if len(recs) == 0 {
		return 0
	}
	sum := 0.0
	for _, rec := range recs {
		sum += rec.PredictedCost
	}
	return money.Round2(sum / float64(len(recs)))
}
