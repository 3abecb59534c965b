package consolidation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
)

func TestFindOpportunities(t *testing.T) {
	orders := []ledger.Order{
		po("a1", "A", 0, 1000, 100),
		po("a2", "A", 3, 1000, 100),
		po("a3", "A", 10, 1000, 100),
		po("a4", "A", 20, 1000, 50),
		po("b1", "B", 0, 500, 80),
		po("b2", "B", 1, 500, 80),
		po("c2", "C", 0, 800, 150),
		po("c1", "C", 0, 800, 150),
	}

	opps := FindOpportunities(orders, 7, 0.30, 50)
	require.Len(t, opps, 4)

	assert.Equal(t, "C", opps[0].Supplier)
	assert.Equal(t, "c1", opps[0].AnchorOrderID)
	assert.Equal(t, []string{"c1", "c2"}, opps[0].OrderIDs)
	assert.Equal(t, 90.0, opps[0].PotentialSavings)
	assert.Equal(t, 210.0, opps[0].ConsolidatedShipping)
	assert.Equal(t, 30.0, opps[0].SavingsPct)

	// Same-date orders are in each other's window.
	assert.Equal(t, "c2", opps[1].AnchorOrderID)
	assert.Equal(t, []string{"c1", "c2"}, opps[1].OrderIDs)

	// Windows overlap and are not deduplicated.
	assert.Equal(t, []string{"a1", "a2"}, opps[2].OrderIDs)
	assert.Equal(t, []string{"a2", "a3"}, opps[3].OrderIDs)
	assert.Equal(t, 60.0, opps[3].PotentialSavings)
	assert.Equal(t, 2000.0, opps[3].TotalValue)
}

func TestFindOpportunities_SavingsMustExceedThreshold(t *testing.T) {
	orders := []ledger.Order{po("1", "A", 0, 100, 50), po("2", "A", 1, 100, 50)}

	assert.Empty(t, FindOpportunities(orders, 7, 0.5, 50))
	assert.Len(t, FindOpportunities(orders, 7, 0.5, 49.99), 1)
}

func TestFindOpportunities_WindowBoundaryIsInclusive(t *testing.T) {
	orders := []ledger.Order{po("1", "A", 0, 100, 100), po("2", "A", 7, 100, 100), po("3", "A", 15, 100, 100)}

	opps := FindOpportunities(orders, 7, 0.3, 50)
	require.Len(t, opps, 1)
	assert.Equal(t, []string{"1", "2"}, opps[0].OrderIDs)
}

func TestSummarize(t *testing.T) {
	orders := []ledger.Order{
		po("a1", "A", 0, 1000, 100),
		po("a2", "A", 3, 1000, 100),
		po("a3", "A", 10, 1000, 100),
	}
	orders[0].ConsolidationLevel = enums.ConsolidationLevelHigh
	orders[1].ConsolidationLevel = enums.ConsolidationLevelHigh
	orders[2].ConsolidationLevel = enums.ConsolidationLevelLow

	opps := FindOpportunities(orders, 7, 0.3, 50)
	s := Summarize(orders, opps)

	assert.Equal(t, 2, s.TotalOpportunities)
	assert.Equal(t, 120.0, s.TotalPotentialSavings)
	assert.Equal(t, 400.0, s.TotalAffectedShipping)
	assert.Equal(t, 60.0, s.AverageSavings)
	assert.Equal(t, map[enums.ConsolidationLevel]int{
		enums.ConsolidationLevelHigh: 2,
		enums.ConsolidationLevelLow:  1,
	}, s.LevelCounts)
	assert.Len(t, s.Top, 2)

	empty := Summarize(nil, nil)
	assert.Zero(t, empty.AverageSavings)
	assert.NotNil(t, empty.Top)
}
