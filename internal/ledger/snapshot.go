package ledger

import (
	"sort"
	"time"

	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
)

// CarrierTotals aggregates historical orders shipped with one carrier.
type CarrierTotals struct {
	Carrier         string  `json:"carrier"`
	OrderCount      int     `json:"order_count"`
	TotalShipping   float64 `json:"total_shipping"`
	TotalOrderValue float64 `json:"total_order_value"`
}

// SupplierTotals aggregates historical orders placed with one supplier.
type SupplierTotals struct {
	Supplier      string    `json:"supplier"`
	OrderCount    int       `json:"order_count"`
	TotalSpend    float64   `json:"total_spend"`
	TotalShipping float64   `json:"total_shipping"`
	FirstOrder    time.Time `json:"first_order"`
	LastOrder     time.Time `json:"last_order"`
}

// CategoryTotals aggregates spend by the diversity category recorded on the
// order itself, before any classification.
type CategoryTotals struct {
	Category   enums.DiversityCategory `json:"category"`
	OrderCount int                     `json:"order_count"`
	Spend      float64                 `json:"spend"`
}

// Snapshot is an immutable view of the ledger. Readers share it freely;
// updates build a new Snapshot and swap it in through Store.
type Snapshot struct {
	orders     []Order
	bySupplier map[string][]Order
	carriers   map[string]CarrierTotals
	suppliers  map[string]SupplierTotals
	categories map[enums.DiversityCategory]CategoryTotals
	totalSpend float64
	latest     time.Time
	version    uint64
	builtAt    time.Time
}

// NewSnapshot indexes orders. Orders missing a consolidation level get one
// derived from same-supplier neighbours within windowDays.
func NewSnapshot(orders []Order, windowDays int, version uint64, builtAt time.Time) *Snapshot {
	sorted := make([]Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})

	s := &Snapshot{
		bySupplier: make(map[string][]Order),
		carriers:   make(map[string]CarrierTotals),
		suppliers:  make(map[string]SupplierTotals),
		categories: make(map[enums.DiversityCategory]CategoryTotals),
		version:    version,
		builtAt:    builtAt,
	}

	for _, o := range sorted {
		s.bySupplier[o.SupplierName] = append(s.bySupplier[o.SupplierName], o)
	}
	for supplier, group := range s.bySupplier {
		s.bySupplier[supplier] = deriveLevels(group, windowDays)
	}

	levels := make(map[string]enums.ConsolidationLevel, len(sorted))
	for _, group := range s.bySupplier {
		for _, o := range group {
			levels[o.ID] = o.ConsolidationLevel
		}
	}
	s.orders = sorted
	for i := range s.orders {
		s.orders[i].ConsolidationLevel = levels[s.orders[i].ID]
		s.accumulate(s.orders[i])
	}
	return s
}

func (s *Snapshot) accumulate(o Order) {
	s.totalSpend += o.TotalAmount
	if o.Date.After(s.latest) {
		s.latest = o.Date
	}

	if o.HasCarrier() {
		ct := s.carriers[o.Carrier]
		ct.Carrier = o.Carrier
		ct.OrderCount++
		ct.TotalShipping += o.ShippingCost
		ct.TotalOrderValue += o.TotalAmount
		s.carriers[o.Carrier] = ct
	}

	st := s.suppliers[o.SupplierName]
	if st.OrderCount == 0 {
		st.FirstOrder = o.Date
	}
	st.Supplier = o.SupplierName
	st.OrderCount++
	st.TotalSpend += o.TotalAmount
	st.TotalShipping += o.ShippingCost
	st.LastOrder = o.Date
	s.suppliers[o.SupplierName] = st

	cat := s.categories[o.DiversityCategory]
	cat.Category = o.DiversityCategory
	cat.OrderCount++
	cat.Spend += o.TotalAmount
	s.categories[o.DiversityCategory] = cat
}

// deriveLevels fills in missing consolidation levels for one supplier's
// date-sorted orders.
func deriveLevels(group []Order, windowDays int) []Order {
	window := time.Duration(windowDays) * 24 * time.Hour
	out := make([]Order, len(group))
	copy(out, group)
	for i := range out {
		if out[i].ConsolidationLevel.IsValid() {
			continue
		}
		neighbours := 0
		for j := range group {
			if i == j {
				continue
			}
			diff := group[j].Date.Sub(group[i].Date)
			if diff < 0 {
				diff = -diff
			}
			if diff <= window {
				neighbours++
			}
		}
		out[i].ConsolidationLevel = levelFor(neighbours)
	}
	return out
}

func levelFor(neighbours int) enums.ConsolidationLevel {
	switch {
	case neighbours >= 4:
		return enums.ConsolidationLevelVeryHigh
	case neighbours >= 2:
		return enums.ConsolidationLevelHigh
	case neighbours == 1:
		return enums.ConsolidationLevelMedium
	default:
		return enums.ConsolidationLevelLow
	}
}

// Orders returns every order sorted by date then id. The slice is a copy.
func (s *Snapshot) Orders() []Order {
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out
}

func (s *Snapshot) Len() int { return len(s.orders) }

func (s *Snapshot) IsEmpty() bool { return len(s.orders) == 0 }

func (s *Snapshot) TotalSpend() float64 { return s.totalSpend }

func (s *Snapshot) Version() uint64 { return s.version }

func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Latest is the most recent order date, the reference point for lookback
// windows over historical data.
func (s *Snapshot) Latest() time.Time { return s.latest }

// Suppliers returns supplier names in lexical order.
func (s *Snapshot) Suppliers() []string {
	out := make([]string, 0, len(s.bySupplier))
	for name := range s.bySupplier {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// OrdersForSupplier returns a date-sorted copy of one supplier's orders.
func (s *Snapshot) OrdersForSupplier(supplier string) []Order {
	group := s.bySupplier[supplier]
	out := make([]Order, len(group))
	copy(out, group)
	return out
}

// Carriers returns the names of carriers with at least one order, sorted.
func (s *Snapshot) Carriers() []string {
	out := make([]string, 0, len(s.carriers))
	for name := range s.carriers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *Snapshot) CarrierTotals(carrier string) (CarrierTotals, bool) {
	ct, ok := s.carriers[carrier]
	return ct, ok
}

func (s *Snapshot) SupplierTotals(supplier string) (SupplierTotals, bool) {
	st, ok := s.suppliers[supplier]
	return st, ok
}

// CategoryTotals returns recorded-category totals in enum order.
func (s *Snapshot) CategoryTotals() []CategoryTotals {
	out := make([]CategoryTotals, 0, len(s.categories))
	for _, cat := range enums.DiversityCategories() {
		if ct, ok := s.categories[cat]; ok {
			out = append(out, ct)
		}
	}
	return out
}
