package orchestrator

import (
	"context"
	"fmt"

	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/internal/scoring"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
)

// SnapshotSource exposes the currently published ledger snapshot.
type SnapshotSource interface {
	Snapshot() *ledger.Snapshot
}

// Runner opens runs over whatever snapshot is current when Start is called.
// Each run keeps the snapshot it started with.
type Runner struct {
	engine *Engine
	source SnapshotSource
}

func NewRunner(engine *Engine, source SnapshotSource) (*Runner, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine required")
	}
	if source == nil {
		return nil, fmt.Errorf("snapshot source required")
	}
	return &Runner{engine: engine, source: source}, nil
}

func (r *Runner) Engine() *Engine { return r.engine }

// Start begins a run anchored at the engine clock.
func (r *Runner) Start() *Run {
	return r.engine.NewRun(r.source.Snapshot(), r.engine.now())
}

// Advise returns the top-ranked carrier and its predicted cost for a
// medium-weight order of the given value.
func (r *Runner) Advise(_ context.Context, orderValue float64, urgency enums.Urgency) (string, float64) {
	recs := r.Start().RecommendCarriers(scoring.RecommendationRequest{
		OrderValue:     orderValue,
		WeightCategory: enums.WeightMedium,
		Urgency:        urgency,
	})
	if len(recs) == 0 {
		fb := r.engine.scoring.Fallback()
		return fb.Carrier, fb.PredictedCost
	}
	return recs[0].Carrier, recs[0].PredictedCost
}
