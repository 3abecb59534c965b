package ledger

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
)

// Store holds the current ledger snapshot. Swaps are atomic so readers
// always see a complete snapshot.
type Store struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
}

// NewStore returns a store holding an empty snapshot.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(NewSnapshot(nil, 0, 0, time.Now().UTC()))
	return s
}

// Snapshot returns the current snapshot. It is never nil.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Replace validates raw rows, builds a new snapshot and publishes it.
func (s *Store) Replace(ctx context.Context, logg *logger.Logger, raws []RawOrder, windowDays int) (*Snapshot, []DataQualityIssue) {
	orders, issues := Build(ctx, logg, raws)
	snap := NewSnapshot(orders, windowDays, s.version.Add(1), time.Now().UTC())
	s.current.Store(snap)
	return snap, issues
}

// Build normalizes raw rows. Invalid rows and repeated ids are excluded and
// logged as data-quality issues; they never abort the build.
func Build(ctx context.Context, logg *logger.Logger, raws []RawOrder) ([]Order, []DataQualityIssue) {
	orders := make([]Order, 0, len(raws))
	var issues []DataQualityIssue
	seen := make(map[string]struct{}, len(raws))

	for i, raw := range raws {
		order, err := Normalize(raw)
		if err == nil {
			if _, dup := seen[order.ID]; dup {
				issues = append(issues, DataQualityIssue{Index: i, OrderID: order.ID, Reasons: []string{"duplicate order id"}})
				continue
			}
			seen[order.ID] = struct{}{}
			orders = append(orders, order)
			continue
		}
		issues = append(issues, issueFor(i, raw, err))
	}

	if logg != nil {
		for _, issue := range issues {
			entryCtx := logg.WithFields(ctx, map[string]any{
				"order_id": issue.OrderID,
				"index":    issue.Index,
				"reasons":  issue.Reasons,
			})
			logg.Warn(entryCtx, "order excluded: data quality issue")
		}
	}
	return orders, issues
}
