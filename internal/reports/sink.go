package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/bigquery"
	"go.uber.org/multierr"

	"github.com/isaiahriv1234/Freight-Project/internal/orchestrator"
	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
)

const (
	attrRunID         = "run_id"
	attrLedgerVersion = "ledger_version"
	attrSchema        = "schema"
	reportSchema      = "freight.analysis_report.v1"
)

// Sink receives a complete analysis report.
type Sink interface {
	Name() string
	Publish(ctx context.Context, report *orchestrator.Report) error
}

// ReportPublisher is the Pub/Sub surface used by PubSubSink.
type ReportPublisher interface {
	PublishReport(ctx context.Context, data []byte, attrs map[string]string) (string, error)
}

// RowInserter is the BigQuery surface used by BigQuerySink.
type RowInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
	AlertsTable() string
	RunsTable() string
}

// PubSubSink publishes the full report as one JSON message.
type PubSubSink struct {
	publisher ReportPublisher
}

func NewPubSubSink(publisher ReportPublisher) (*PubSubSink, error) {
	if publisher == nil {
		return nil, fmt.Errorf("report publisher required")
	}
	return &PubSubSink{publisher: publisher}, nil
}

func (s *PubSubSink) Name() string { return "pubsub" }

func (s *PubSubSink) Publish(ctx context.Context, report *orchestrator.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = s.publisher.PublishReport(ctx, data, map[string]string{
		attrRunID:         report.RunID,
		attrLedgerVersion: strconv.FormatUint(report.LedgerVersion, 10),
		attrSchema:        reportSchema,
	})
	if err != nil {
		return fmt.Errorf("publish report %s: %w", report.RunID, err)
	}
	return nil
}

// AlertRow is one alert as stored in the BigQuery alerts table.
type AlertRow struct {
	RunID            string
	Position         int
	GeneratedAt      time.Time
	Type             string
	Priority         string
	Title            string
	PotentialSavings float64
	ActionRequired   string
	Deadline         time.Time
	Supplier         string
	Carrier          string
	Scope            string
	OrderIDs         []string
}

// Save implements bigquery.ValueSaver. The insert id makes retried inserts
// of the same run idempotent.
func (r AlertRow) Save() (map[string]bigquery.Value, string, error) {
	ids := make([]bigquery.Value, 0, len(r.OrderIDs))
	for _, id := range r.OrderIDs {
		ids = append(ids, id)
	}
	return map[string]bigquery.Value{
		"run_id":            r.RunID,
		"position":          r.Position,
		"generated_at":      r.GeneratedAt,
		"type":              r.Type,
		"priority":          r.Priority,
		"title":             r.Title,
		"potential_savings": r.PotentialSavings,
		"action_required":   r.ActionRequired,
		"deadline":          r.Deadline,
		"supplier":          r.Supplier,
		"carrier":           r.Carrier,
		"scope":             r.Scope,
		"order_ids":         ids,
	}, fmt.Sprintf("%s-%d", r.RunID, r.Position), nil
}

// AlertRows flattens the report's prioritized alerts.
func AlertRows(report *orchestrator.Report) []AlertRow {
	rows := make([]AlertRow, 0, len(report.Alerts))
	for i, a := range report.Alerts {
		rows = append(rows, AlertRow{
			RunID:            report.RunID,
			Position:         i + 1,
			GeneratedAt:      report.GeneratedAt,
			Type:             string(a.Type),
			Priority:         string(a.Priority),
			Title:            a.Title,
			PotentialSavings: a.PotentialSavings,
			ActionRequired:   a.ActionRequired,
			Deadline:         a.Deadline,
			Supplier:         a.Supplier,
			Carrier:          a.Carrier,
			Scope:            a.Scope,
			OrderIDs:         a.OrderIDs,
		})
	}
	return rows
}

// RunRow is the headline figures of one run, one row per report.
type RunRow struct {
	RunID                string
	GeneratedAt          time.Time
	AsOf                 time.Time
	LedgerVersion        uint64
	OrderCount           int
	TotalSpend           float64
	AlertCount           int
	OverallDiversityPct  float64
	CarrierSavings       float64
	ConsolidationSavings float64
}

func (r RunRow) Save() (map[string]bigquery.Value, string, error) {
	return map[string]bigquery.Value{
		"run_id":                r.RunID,
		"generated_at":          r.GeneratedAt,
		"as_of":                 r.AsOf,
		"ledger_version":        int64(r.LedgerVersion),
		"order_count":           r.OrderCount,
		"total_spend":           r.TotalSpend,
		"alert_count":           r.AlertCount,
		"overall_diversity_pct": r.OverallDiversityPct,
		"carrier_savings":       r.CarrierSavings,
		"consolidation_savings": r.ConsolidationSavings,
	}, r.RunID, nil
}

func NewRunRow(report *orchestrator.Report) RunRow {
	return RunRow{
		RunID:                report.RunID,
		GeneratedAt:          report.GeneratedAt,
		AsOf:                 report.AsOf,
		LedgerVersion:        report.LedgerVersion,
		OrderCount:           report.OrderCount,
		TotalSpend:           report.TotalSpend,
		AlertCount:           len(report.Alerts),
		OverallDiversityPct:  report.Compliance.Performance.OverallDiversityPct,
		CarrierSavings:       report.Carriers.Savings.PotentialSavings,
		ConsolidationSavings: report.Consolidation.Summary.TotalPotentialSavings,
	}
}

// BigQuerySink streams a run summary row and the alert rows of a report.
// Alert rows go first so a run row implies its alerts landed.
type BigQuerySink struct {
	inserter RowInserter
}

func NewBigQuerySink(inserter RowInserter) (*BigQuerySink, error) {
	if inserter == nil {
		return nil, fmt.Errorf("row inserter required")
	}
	if inserter.AlertsTable() == "" {
		return nil, fmt.Errorf("alerts table required")
	}
	if inserter.RunsTable() == "" {
		return nil, fmt.Errorf("runs table required")
	}
	return &BigQuerySink{inserter: inserter}, nil
}

func (s *BigQuerySink) Name() string { return "bigquery" }

func (s *BigQuerySink) Publish(ctx context.Context, report *orchestrator.Report) error {
	if rows := AlertRows(report); len(rows) > 0 {
		values := make([]any, 0, len(rows))
		for _, r := range rows {
			values = append(values, r)
		}
		if err := s.inserter.InsertRows(ctx, s.inserter.AlertsTable(), values); err != nil {
			return fmt.Errorf("alert rows: %w", err)
		}
	}
	if err := s.inserter.InsertRows(ctx, s.inserter.RunsTable(), []any{NewRunRow(report)}); err != nil {
		return fmt.Errorf("run row: %w", err)
	}
	return nil
}

// Publisher fans a finished report out to every sink. Sinks run in order and
// all are attempted even when one fails.
type Publisher struct {
	sinks []Sink
	logg  *logger.Logger
}

func NewPublisher(logg *logger.Logger, sinks ...Sink) (*Publisher, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Publisher{sinks: sinks, logg: logg}, nil
}

func (p *Publisher) Enabled() bool { return len(p.sinks) > 0 }

// Publish refuses a nil report so a failed analysis pass can never publish a
// partial result.
func (p *Publisher) Publish(ctx context.Context, report *orchestrator.Report) error {
	if report == nil {
		return fmt.Errorf("report required")
	}
	ctx = p.logg.WithRunID(ctx, report.RunID)

	var errs error
	for _, sink := range p.sinks {
		sinkCtx := p.logg.WithField(ctx, "sink", sink.Name())
		if err := sink.Publish(ctx, report); err != nil {
			p.logg.Error(sinkCtx, "report publish failed", err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			continue
		}
		p.logg.Info(sinkCtx, "report published")
	}
	return errs
}
