package consolidation

import (
	"fmt"
	"math"
	"time"

	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/pkg/money"
)

// Batch is a group of one supplier's orders recommended to ship together.
// Batches are result records and are never persisted.
type Batch struct {
	Supplier                          string    `json:"supplier"`
	OrderIDs                          []string  `json:"order_ids"`
	OrderCount                        int       `json:"order_count"`
	TotalValue                        float64   `json:"total_value"`
	RecordedShipping                  float64   `json:"recorded_shipping"`
	WindowStart                       time.Time `json:"window_start"`
	WindowEnd                         time.Time `json:"window_end"`
	EstimatedIndividualShippingCost   float64   `json:"estimated_individual_shipping_cost"`
	EstimatedConsolidatedShippingCost float64   `json:"estimated_consolidated_shipping_cost"`
	EstimatedAdminSavings             float64   `json:"estimated_admin_savings"`
	EstimatedSavings                  float64   `json:"estimated_savings"`
}

// Discarded is a candidate batch that failed the size or value threshold.
// Its orders stay unconsolidated for this pass.
type Discarded struct {
	Supplier   string   `json:"supplier"`
	OrderIDs   []string `json:"order_ids"`
	TotalValue float64  `json:"total_value"`
	Reason     string   `json:"reason"`
}

// BatchResult is the outcome of one sequential pass over a supplier.
type BatchResult struct {
	Supplier  string      `json:"supplier"`
	Batches   []Batch     `json:"batches"`
	Discarded []Discarded `json:"discarded"`
}

type pending struct {
	orders []ledger.Order
	start  time.Time
	value  float64
}

func (p *pending) reset() {
	p.orders = nil
	p.value = 0
}

// BuildBatches walks one supplier's orders in date order and groups them
// into batches. An order joins the open batch when it is at most
// MaxWaitDays after the batch start and the batch has room; otherwise the
// open batch is finalized and a new one starts. Every order lands in at most
// one batch.
func BuildBatches(supplier string, orders []ledger.Order, cfg Config) BatchResult {
	sorted := make([]ledger.Order, len(orders))
	copy(sorted, orders)
	sortByDate(sorted)

	result := BatchResult{Supplier: supplier, Batches: []Batch{}, Discarded: []Discarded{}}
	cur := &pending{}

	for _, o := range sorted {
		if len(cur.orders) == 0 {
			cur.orders = append(cur.orders, o)
			cur.start = o.Date
			cur.value = o.TotalAmount
			continue
		}
		if daysBetween(cur.start, o.Date) <= cfg.MaxWaitDays && len(cur.orders) < cfg.MaxBatchSize {
			cur.orders = append(cur.orders, o)
			cur.value += o.TotalAmount
			continue
		}
		finalize(&result, cur, cfg)
		cur.orders = append(cur.orders, o)
		cur.start = o.Date
		cur.value = o.TotalAmount
	}
	// The batch still open after the last order must be finalized too.
	finalize(&result, cur, cfg)
	return result
}

func finalize(result *BatchResult, cur *pending, cfg Config) {
	defer cur.reset()
	if len(cur.orders) == 0 {
		return
	}

	ids := make([]string, len(cur.orders))
	for i, o := range cur.orders {
		ids[i] = o.ID
	}

	var reason string
	switch {
	case len(cur.orders) < cfg.MinOrders:
		reason = fmt.Sprintf("%d order(s) below minimum of %d", len(cur.orders), cfg.MinOrders)
	case cur.value < cfg.MinBatchValue:
		reason = fmt.Sprintf("value %s below minimum of %s", money.Format(cur.value), money.Format(cfg.MinBatchValue))
	}
	if reason != "" {
		result.Discarded = append(result.Discarded, Discarded{
			Supplier:   result.Supplier,
			OrderIDs:   ids,
			TotalValue: money.Round2(cur.value),
			Reason:     reason,
		})
		return
	}

	result.Batches = append(result.Batches, estimate(result.Supplier, cur.orders, ids, cur.value, cfg))
}

func estimate(supplier string, orders []ledger.Order, ids []string, value float64, cfg Config) Batch {
	n := float64(len(orders))
	shipping := 0.0
	for _, o := range orders {
		shipping += o.ShippingCost
	}

	basis := value / n
	if cfg.Basis == BasisShippingCost {
		basis = shipping
	}
	individual := basis * cfg.IndividualRate * n
	consolidated := value * cfg.ConsolidatedRate
	admin := cfg.AdminSavings * (n - 1)

	return Batch{
		Supplier:                          supplier,
		OrderIDs:                          ids,
		OrderCount:                        len(orders),
		TotalValue:                        money.Round2(value),
		RecordedShipping:                  money.Round2(shipping),
		WindowStart:                       orders[0].Date,
		WindowEnd:                         orders[len(orders)-1].Date,
		EstimatedIndividualShippingCost:   money.Round2(individual),
		EstimatedConsolidatedShippingCost: money.Round2(consolidated),
		EstimatedAdminSavings:             money.Round2(admin),
		EstimatedSavings:                  money.Round2(individual - consolidated + admin),
	}
}

// daysBetween counts whole days from a to b, flooring partial days.
func daysBetween(a, b time.Time) int {
	return int(math.Floor(b.Sub(a).Hours() / 24))
}
