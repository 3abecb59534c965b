package consolidation

import "fmt"

// SavingsBasis selects the amount the per-order individual shipping rate is
// applied to when estimating batch savings.
type SavingsBasis string

const (
	// BasisOrderValue applies the rate to the average order value.
	BasisOrderValue SavingsBasis = "order_value"
	// BasisShippingCost applies the rate to the recorded shipping total.
	BasisShippingCost SavingsBasis = "shipping_cost"
)

// Config holds the window and savings heuristics for both passes.
type Config struct {
	WindowDays int
	Discount   float64
	MinSavings float64

	MaxWaitDays      int
	MinOrders        int
	MinBatchValue    float64
	MaxBatchSize     int
	IndividualRate   float64
	ConsolidatedRate float64
	AdminSavings     float64
	Basis            SavingsBasis

	Parallelism int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		WindowDays:       7,
		Discount:         0.30,
		MinSavings:       50,
		MaxWaitDays:      3,
		MinOrders:        2,
		MinBatchValue:    500,
		MaxBatchSize:     10,
		IndividualRate:   0.10,
		ConsolidatedRate: 0.07,
		AdminSavings:     25,
		Basis:            BasisOrderValue,
		Parallelism:      4,
	}
}

func (c Config) Validate() error {
	switch {
	case c.WindowDays <= 0:
		return fmt.Errorf("window days must be positive")
	case c.Discount < 0 || c.Discount >= 1:
		return fmt.Errorf("consolidation discount must be in [0,1)")
	case c.MinSavings < 0:
		return fmt.Errorf("minimum savings must not be negative")
	case c.MaxWaitDays < 0:
		return fmt.Errorf("max wait days must not be negative")
	case c.MinOrders < 1:
		return fmt.Errorf("min orders per batch must be at least 1")
	case c.MaxBatchSize < c.MinOrders:
		return fmt.Errorf("max batch size must be at least min orders per batch")
	case c.Basis != BasisOrderValue && c.Basis != BasisShippingCost:
		return fmt.Errorf("unknown savings basis %q", c.Basis)
	}
	return nil
}
