package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/internal/orchestrator"
	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
)

const analysisJobName = "shipping-analysis"

type ledgerRefresher interface {
	Refresh(ctx context.Context) (*ledger.Snapshot, error)
}

type reportPublisher interface {
	Publish(ctx context.Context, report *orchestrator.Report) error
}

// AnalysisJobParams configure the scheduled analysis pass.
type AnalysisJobParams struct {
	Ledger    ledgerRefresher
	Engine    *orchestrator.Engine
	Publisher reportPublisher
	Logger    *logger.Logger
	Now       func() time.Time
}

// AnalysisJob reloads the ledger, runs a full analysis and publishes the
// report. Nothing is published unless the whole pass succeeded.
type AnalysisJob struct {
	ledger    ledgerRefresher
	engine    *orchestrator.Engine
	publisher reportPublisher
	logg      *logger.Logger
	now       func() time.Time
}

func NewAnalysisJob(params AnalysisJobParams) (*AnalysisJob, error) {
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if params.Engine == nil {
		return nil, fmt.Errorf("orchestrator engine required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &AnalysisJob{
		ledger:    params.Ledger,
		engine:    params.Engine,
		publisher: params.Publisher,
		logg:      params.Logger,
		now:       now,
	}, nil
}

func (j *AnalysisJob) Name() string { return analysisJobName }

func (j *AnalysisJob) Run(ctx context.Context) error {
	snap, err := j.ledger.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh ledger: %w", err)
	}

	run := j.engine.NewRun(snap, j.now())
	ctx = j.logg.WithRunID(ctx, run.ID())
	report, err := run.Report(ctx)
	if err != nil {
		return fmt.Errorf("analysis run %s: %w", run.ID(), err)
	}

	if j.publisher == nil {
		j.logg.Warn(ctx, "report publishing disabled; report discarded")
		return nil
	}
	if err := j.publisher.Publish(ctx, report); err != nil {
		return fmt.Errorf("publish report %s: %w", report.RunID, err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"alerts":         len(report.Alerts),
		"ledger_version": report.LedgerVersion,
	}), "analysis report published")
	return nil
}
