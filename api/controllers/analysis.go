package controllers

import (
	"net/http"

	"github.com/isaiahriv1234/Freight-Project/api/responses"
	"github.com/isaiahriv1234/Freight-Project/api/validators"
	"github.com/isaiahriv1234/Freight-Project/internal/orchestrator"
	"github.com/isaiahriv1234/Freight-Project/internal/scoring"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
	pkgerrors "github.com/isaiahriv1234/Freight-Project/pkg/errors"
	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
)

// analysisRunner opens a run over the current ledger snapshot. Each request
// gets its own run so decision logs never mix.
type analysisRunner interface {
	Start() *orchestrator.Run
}

const maxWindowDays = 90

func startRun(w http.ResponseWriter, r *http.Request, runner analysisRunner, logg *logger.Logger) (*orchestrator.Run, bool) {
	if runner == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analysis engine unavailable"))
		return nil, false
	}
	return runner.Start(), true
}

func CarrierStats(runner analysisRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := startRun(w, r, runner, logg)
		if !ok {
			return
		}
		model := run.Model()
		responses.WriteSuccess(w, map[string]any{
			"stats":       model.Stats(),
			"performance": model.PerformanceSummary(),
			"savings":     model.SavingsAnalysis(run.Snapshot().Orders()),
		})
	}
}

// CarrierRecommendations ranks carriers for the order described by the
// order_value, weight and urgency query parameters.
func CarrierRecommendations(runner analysisRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value, err := validators.ParseQueryFloat(r, "order_value", 0, 0, 1e9)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		weight, err := enums.ParseWeightCategory(r.URL.Query().Get("weight"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid weight"))
			return
		}
		urgency, err := enums.ParseUrgency(r.URL.Query().Get("urgency"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid urgency"))
			return
		}

		run, ok := startRun(w, r, runner, logg)
		if !ok {
			return
		}
		req := scoring.RecommendationRequest{OrderValue: value, WeightCategory: weight, Urgency: urgency}
		responses.WriteSuccess(w, map[string]any{
			"request":         req,
			"recommendations": run.RecommendCarriers(req),
		})
	}
}

type selectResponse struct {
	Selection orchestrator.Selection `json:"selection"`
	Decisions []orchestrator.Event   `json:"decisions"`
}

func CarrierSelect(runner analysisRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var details orchestrator.OrderDetails
		if err := validators.DecodeJSONBody(r, &details); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		weight, err := enums.ParseWeightCategory(string(details.WeightCategory))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid weight_category"))
			return
		}
		urgency, err := enums.ParseUrgency(string(details.Urgency))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid urgency"))
			return
		}
		details.WeightCategory = weight
		details.Urgency = urgency

		run, ok := startRun(w, r, runner, logg)
		if !ok {
			return
		}
		sel := run.AutoSelectCarrier(r.Context(), details)
		responses.WriteSuccess(w, selectResponse{Selection: sel, Decisions: run.Log().Events()})
	}
}

func ShippingRules(runner analysisRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := startRun(w, r, runner, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, run.ShippingRules())
	}
}

// ConsolidationOpportunities scans the ledger with window_days, falling back
// to the configured window.
func ConsolidationOpportunities(runner analysisRunner, defaultWindow int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := validators.ParseQueryInt(r, "window_days", defaultWindow, 1, maxWindowDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		run, ok := startRun(w, r, runner, logg)
		if !ok {
			return
		}
		opps, summary := run.Opportunities(window)
		responses.WriteSuccess(w, map[string]any{
			"window_days":   window,
			"opportunities": opps,
			"summary":       summary,
		})
	}
}

func ConsolidationBatches(runner analysisRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := startRun(w, r, runner, logg)
		if !ok {
			return
		}
		results, err := run.Batches(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"suppliers": results,
			"decisions": run.Log().Events(),
		})
	}
}

func ComplianceSummary(runner analysisRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := startRun(w, r, runner, logg)
		if !ok {
			return
		}
		tracking := run.Compliance()
		responses.WriteSuccess(w, map[string]any{
			"performance": tracking.PerformanceSummary(),
			"summary":     tracking.ExecutiveSummary(),
		})
	}
}

func ComplianceStatus(runner analysisRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := startRun(w, r, runner, logg)
		if !ok {
			return
		}
		tracking := run.Compliance()
		responses.WriteSuccess(w, map[string]any{
			"status": tracking.CheckCompliance(),
			"alerts": tracking.Alerts(),
		})
	}
}

func ComplianceRecommendations(runner analysisRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := startRun(w, r, runner, logg)
		if !ok {
			return
		}
		tracking := run.Compliance()
		responses.WriteSuccess(w, map[string]any{
			"recommendations": tracking.Recommendations(),
			"forecast":        tracking.Forecast(),
		})
	}
}

func ComplianceTrends(runner analysisRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := startRun(w, r, runner, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, run.Compliance().MonthlyTrends())
	}
}

func ComplianceSuppliers(runner analysisRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := startRun(w, r, runner, logg)
		if !ok {
			return
		}
		tracking := run.Compliance()
		responses.WriteSuccess(w, map[string]any{
			"suppliers":       tracking.SupplierDirectory(),
			"identifications": tracking.Identifications(),
		})
	}
}

type alertsResponse struct {
	RunID     string               `json:"run_id"`
	Alerts    []orchestrator.Alert `json:"alerts"`
	Decisions []orchestrator.Event `json:"decisions"`
}

func Alerts(runner analysisRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := startRun(w, r, runner, logg)
		if !ok {
			return
		}
		alerts := run.GenerateAlerts()
		responses.WriteSuccess(w, alertsResponse{RunID: run.ID(), Alerts: alerts, Decisions: run.Log().Events()})
	}
}

// Report runs the full analysis pass. An empty ledger yields 422.
func Report(runner analysisRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := startRun(w, r, runner, logg)
		if !ok {
			return
		}
		report, err := run.Report(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
