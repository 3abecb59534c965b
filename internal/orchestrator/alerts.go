package orchestrator

import (
	"fmt"
	"sort"
	"time"

	"github.com/isaiahriv1234/Freight-Project/internal/compliance"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
	"github.com/isaiahriv1234/Freight-Project/pkg/money"
)

const (
	consolidationDeadline = 3 * 24 * time.Hour
	carrierDeadline       = 7 * 24 * time.Hour
	overchargeDeadline    = 24 * time.Hour
	complianceDeadline    = 30 * 24 * time.Hour
)

type Alert struct {
	Type             enums.AlertType     `json:"type"`
	Priority         enums.AlertPriority `json:"priority"`
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	PotentialSavings float64             `json:"potential_savings"`
	ActionRequired   string              `json:"action_required"`
	Deadline         time.Time           `json:"deadline"`
	Supplier         string              `json:"supplier,omitempty"`
	Carrier          string              `json:"carrier,omitempty"`
	OrderIDs         []string            `json:"order_ids,omitempty"`
	Scope            string              `json:"scope,omitempty"`
}

// GenerateAlerts collects consolidation, carrier, overcharge and compliance
// alerts, then orders them by savings and priority weight.
func (r *Run) GenerateAlerts() []Alert {
	var alerts []Alert
	alerts = append(alerts, r.consolidationAlerts()...)
	alerts = append(alerts, r.carrierAlerts()...)
	alerts = append(alerts, r.overchargeAlerts()...)
	alerts = append(alerts, r.complianceAlerts()...)

	sortAlerts(alerts)

	for _, a := range alerts {
		subject := a.Supplier
		if subject == "" {
			subject = a.Carrier
		}
		if subject == "" {
			subject = a.Scope
		}
		r.log.Append(EventAlertRaised, subject, a.Title, map[string]any{
			"type":              a.Type,
			"priority":          a.Priority,
			"potential_savings": a.PotentialSavings,
		})
		r.engine.metrics.IncAlert(string(a.Type), string(a.Priority))
	}
	return alerts
}

func sortAlerts(alerts []Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].PotentialSavings != alerts[j].PotentialSavings {
			return alerts[i].PotentialSavings > alerts[j].PotentialSavings
		}
		return alerts[i].Priority.Weight() > alerts[j].Priority.Weight()
	})
}

func (r *Run) consolidationAlerts() []Alert {
	cfg := r.engine.cfg
	opps, _ := r.Opportunities(cfg.WindowDays)

	var out []Alert
	for _, opp := range opps {
		if len(out) >= cfg.MaxConsolidationAlerts {
			break
		}
		if opp.PotentialSavings <= cfg.AlertSavingsThreshold {
			continue
		}
		priority := enums.AlertPriorityMedium
		if opp.PotentialSavings > cfg.HighPrioritySavings {
			priority = enums.AlertPriorityHigh
		}
		out = append(out, Alert{
			Type:             enums.AlertTypeConsolidation,
			Priority:         priority,
			Title:            fmt.Sprintf("Consolidate %d orders from %s", opp.OrderCount, opp.Supplier),
			Description:      fmt.Sprintf("%d orders between %s and %s can ship together", opp.OrderCount, opp.WindowStart.Format(time.DateOnly), opp.WindowEnd.Format(time.DateOnly)),
			PotentialSavings: opp.PotentialSavings,
			ActionRequired:   fmt.Sprintf("Combine upcoming %s orders into one shipment", opp.Supplier),
			Deadline:         r.asOf.Add(consolidationDeadline),
			Supplier:         opp.Supplier,
			OrderIDs:         opp.OrderIDs,
		})
	}
	return out
}

func (r *Run) carrierAlerts() []Alert {
	cfg := r.engine.cfg
	analysis := r.model.SavingsAnalysis(r.snapshot.Orders())
	if analysis.PotentialSavings <= cfg.AlertSavingsThreshold {
		return nil
	}
	return []Alert{{
		Type:             enums.AlertTypeCarrierOptimization,
		Priority:         enums.AlertPriorityMedium,
		Title:            "Carrier optimization opportunity",
		Description:      fmt.Sprintf("%d of %d shipments cost more than the best-ranked carrier", analysis.OrdersOverOptimal, analysis.OrdersAnalyzed),
		PotentialSavings: analysis.PotentialSavings,
		ActionRequired:   fmt.Sprintf("Route shipments to recommended carriers to save %s (%.1f%%)", money.Format(analysis.PotentialSavings), analysis.SavingsPct),
		Deadline:         r.asOf.Add(carrierDeadline),
	}}
}

// overchargeAlerts flags recent shipments whose cost exceeds the multiplier
// times the predicted cost on the same carrier. Recency is measured from the
// newest order in the ledger.
func (r *Run) overchargeAlerts() []Alert {
	cfg := r.engine.cfg
	cutoff := r.snapshot.Latest().AddDate(0, 0, -cfg.OverchargeLookbackDays)

	var out []Alert
	for _, o := range r.snapshot.Orders() {
		if o.Date.Before(cutoff) || o.ShippingCost <= 0 || !o.HasCarrier() {
			continue
		}
		predicted, ok := r.model.PredictFor(o.Carrier, o.TotalAmount)
		if !ok || o.ShippingCost <= predicted*cfg.OverchargeMultiplier {
			continue
		}
		excess := money.Round2(o.ShippingCost - predicted)
		out = append(out, Alert{
			Type:             enums.AlertTypeOverchargeDetected,
			Priority:         enums.AlertPriorityHigh,
			Title:            fmt.Sprintf("Possible overcharge on order %s", o.ID),
			Description:      fmt.Sprintf("%s charged %s against a predicted %s", o.Carrier, money.Format(o.ShippingCost), money.Format(predicted)),
			PotentialSavings: excess,
			ActionRequired:   fmt.Sprintf("Dispute the %s invoice for order %s", o.Carrier, o.ID),
			Deadline:         r.asOf.Add(overchargeDeadline),
			Supplier:         o.SupplierName,
			Carrier:          o.Carrier,
			OrderIDs:         []string{o.ID},
		})
	}
	return out
}

func (r *Run) complianceAlerts() []Alert {
	gaps := r.tracking.Alerts()
	out := make([]Alert, 0, len(gaps))
	for _, g := range gaps {
		out = append(out, Alert{
			Type:           enums.AlertTypeComplianceGap,
			Priority:       g.Level,
			Title:          g.Message,
			Description:    fmt.Sprintf("Current %.1f%% against a %.1f%% target", g.CurrentPct, g.TargetPct),
			ActionRequired: g.ActionRequired,
			Deadline:       r.asOf.Add(complianceDeadline),
			Scope:          g.Scope,
		})
	}
	return out
}

// ComplianceGaps exposes the tracker's gap alerts for callers that only need
// the compliance view.
func (r *Run) ComplianceGaps() []compliance.Alert {
	return r.tracking.Alerts()
}
