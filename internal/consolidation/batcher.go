package consolidation

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
)

// Batcher runs batching passes. Passes over the same supplier are
// serialized; different suppliers run in parallel.
type Batcher struct {
	cfg  Config
	logg *logger.Logger

	mu    sync.Mutex
	locks map[string]*supplierLock
}

// supplierLock is dropped from the map once no pass holds or waits on it.
type supplierLock struct {
	sync.Mutex
	refs int
}

func NewBatcher(cfg Config, logg *logger.Logger) (*Batcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	return &Batcher{cfg: cfg, logg: logg, locks: make(map[string]*supplierLock)}, nil
}

func (b *Batcher) Config() Config { return b.cfg }

// lockSupplier blocks until the supplier's lock is held and returns its
// release func.
func (b *Batcher) lockSupplier(supplier string) func() {
	b.mu.Lock()
	lock := b.locks[supplier]
	if lock == nil {
		lock = &supplierLock{}
		b.locks[supplier] = lock
	}
	lock.refs++
	b.mu.Unlock()

	lock.Lock()
	return func() {
		lock.Unlock()
		b.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(b.locks, supplier)
		}
		b.mu.Unlock()
	}
}

// BatchSupplier runs one pass over a supplier's orders while holding that
// supplier's lock.
func (b *Batcher) BatchSupplier(ctx context.Context, supplier string, orders []ledger.Order) BatchResult {
	defer b.lockSupplier(supplier)()

	res := BuildBatches(supplier, orders, b.cfg)
	if len(res.Discarded) > 0 {
		logCtx := b.logg.WithFields(b.logg.WithSupplier(ctx, supplier), map[string]any{
			"batches":   len(res.Batches),
			"discarded": len(res.Discarded),
		})
		b.logg.Debug(logCtx, "batch candidates discarded")
	}
	return res
}

// Schedule batches every supplier in the snapshot. Results follow supplier
// name order regardless of completion order.
func (b *Batcher) Schedule(ctx context.Context, snap *ledger.Snapshot) ([]BatchResult, error) {
	suppliers := snap.Suppliers()
	results := make([]BatchResult, len(suppliers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Parallelism)
	for i, supplier := range suppliers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = b.BatchSupplier(gctx, supplier, snap.OrdersForSupplier(supplier))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Opportunities runs the overlapping-window scan with the configured
// window, discount and threshold.
func (b *Batcher) Opportunities(orders []ledger.Order, windowDays int) []Opportunity {
	if windowDays <= 0 {
		windowDays = b.cfg.WindowDays
	}
	return FindOpportunities(orders, windowDays, b.cfg.Discount, b.cfg.MinSavings)
}

// Flatten collects the emitted batches of every result, in order.
func Flatten(results []BatchResult) []Batch {
	var out []Batch
	for _, r := range results {
		out = append(out, r.Batches...)
	}
	return out
}
