package consolidation

import (
	"sort"
	"time"

	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
	"github.com/isaiahriv1234/Freight-Project/pkg/money"
)

// Opportunity is a group of same-supplier orders falling inside one window
// that starts at an anchor order. Windows overlap, so one order may appear
// in several opportunities.
type Opportunity struct {
	Supplier             string    `json:"supplier"`
	AnchorOrderID        string    `json:"anchor_order_id"`
	OrderIDs             []string  `json:"order_ids"`
	OrderCount           int       `json:"order_count"`
	WindowStart          time.Time `json:"window_start"`
	WindowEnd            time.Time `json:"window_end"`
	TotalValue           float64   `json:"total_value"`
	CurrentShipping      float64   `json:"current_shipping"`
	ConsolidatedShipping float64   `json:"consolidated_shipping"`
	PotentialSavings     float64   `json:"potential_savings"`
	SavingsPct           float64   `json:"savings_pct"`
}

// FindOpportunities scans every supplier's date-sorted orders. For each
// anchor order it collects orders dated within [anchor, anchor+windowDays]
// and emits the group when the discounted shipping saves more than
// minSavings. Results are ordered by savings, largest first.
func FindOpportunities(orders []ledger.Order, windowDays int, discount, minSavings float64) []Opportunity {
	bySupplier := groupBySupplier(orders)
	window := time.Duration(windowDays) * 24 * time.Hour

	var out []Opportunity
	for _, supplier := range sortedSuppliers(bySupplier) {
		group := bySupplier[supplier]
		for i, anchor := range group {
			end := anchor.Date.Add(window)
			var members []ledger.Order
			for _, o := range group[i:] {
				if o.Date.After(end) {
					break
				}
				members = append(members, o)
			}
			// Orders sharing the anchor's date but sorted earlier are in range too.
			for j := i - 1; j >= 0 && group[j].Date.Equal(anchor.Date); j-- {
				members = append([]ledger.Order{group[j]}, members...)
			}
			if len(members) < 2 {
				continue
			}

			opp := buildOpportunity(supplier, anchor.ID, members, discount)
			if opp.PotentialSavings > minSavings {
				out = append(out, opp)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PotentialSavings != out[j].PotentialSavings {
			return out[i].PotentialSavings > out[j].PotentialSavings
		}
		if out[i].Supplier != out[j].Supplier {
			return out[i].Supplier < out[j].Supplier
		}
		return out[i].AnchorOrderID < out[j].AnchorOrderID
	})
	return out
}

func buildOpportunity(supplier, anchorID string, members []ledger.Order, discount float64) Opportunity {
	opp := Opportunity{
		Supplier:      supplier,
		AnchorOrderID: anchorID,
		OrderCount:    len(members),
		WindowStart:   members[0].Date,
		WindowEnd:     members[len(members)-1].Date,
	}
	shipping := 0.0
	value := 0.0
	for _, o := range members {
		opp.OrderIDs = append(opp.OrderIDs, o.ID)
		shipping += o.ShippingCost
		value += o.TotalAmount
	}
	consolidated := shipping * (1 - discount)
	savings := shipping - consolidated

	opp.TotalValue = money.Round2(value)
	opp.CurrentShipping = money.Round2(shipping)
	opp.ConsolidatedShipping = money.Round2(consolidated)
	opp.PotentialSavings = money.Round2(savings)
	opp.SavingsPct = money.Percent(savings, shipping)
	return opp
}

// Summary rolls up an opportunity scan.
type Summary struct {
	TotalOpportunities    int                              `json:"total_opportunities"`
	TotalPotentialSavings float64                          `json:"total_potential_savings"`
	TotalAffectedShipping float64                          `json:"total_affected_shipping"`
	AverageSavings        float64                          `json:"average_savings_per_opportunity"`
	LevelCounts           map[enums.ConsolidationLevel]int `json:"consolidation_levels"`
	Top                   []Opportunity                    `json:"top_opportunities"`
}

const summaryTopN = 5

// Summarize totals the opportunities and counts orders per consolidation level.
func Summarize(orders []ledger.Order, opportunities []Opportunity) Summary {
	s := Summary{
		TotalOpportunities: len(opportunities),
		LevelCounts:        make(map[enums.ConsolidationLevel]int),
	}
	savings := 0.0
	shipping := 0.0
	for _, opp := range opportunities {
		savings += opp.PotentialSavings
		shipping += opp.CurrentShipping
	}
	s.TotalPotentialSavings = money.Round2(savings)
	s.TotalAffectedShipping = money.Round2(shipping)
	if len(opportunities) > 0 {
		s.AverageSavings = money.Round2(savings / float64(len(opportunities)))
	}
	for _, o := range orders {
		if o.ConsolidationLevel.IsValid() {
			s.LevelCounts[o.ConsolidationLevel]++
		}
	}
	top := opportunities
	if len(top) > summaryTopN {
		top = top[:summaryTopN]
	}
	s.Top = append([]Opportunity{}, top...)
	return s
}

func groupBySupplier(orders []ledger.Order) map[string][]ledger.Order {
	out := make(map[string][]ledger.Order)
	for _, o := range orders {
		out[o.SupplierName] = append(out[o.SupplierName], o)
	}
	for supplier, group := range out {
		sortByDate(group)
		out[supplier] = group
	}
	return out
}

func sortByDate(orders []ledger.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].Date.Equal(orders[j].Date) {
			return orders[i].Date.Before(orders[j].Date)
		}
		return orders[i].ID < orders[j].ID
	})
}

func sortedSuppliers(groups map[string][]ledger.Order) []string {
	out := make([]string, 0, len(groups))
	for name := range groups {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
