package ledger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
)

// Order is one historical purchase order. Values are never mutated after
// ingestion; derived fields are attached when the snapshot is built.
type Order struct {
	ID                 string                   `json:"id"`
	Date               time.Time                `json:"date"`
	SupplierName       string                   `json:"supplier_name"`
	TotalAmount        float64                  `json:"total_amount"`
	ShippingCost       float64                  `json:"shipping_cost"`
	Carrier            string                   `json:"carrier,omitempty"`
	LeadTimeDays       *int                     `json:"lead_time_days,omitempty"`
	GeographicLocation string                   `json:"geographic_location"`
	DiversityCategory  enums.DiversityCategory  `json:"diversity_category"`
	ConsolidationLevel enums.ConsolidationLevel `json:"consolidation_opportunity_level"`
}

// HasCarrier reports whether the order names a real carrier.
func (o Order) HasCarrier() bool {
	return o.Carrier != "" && !strings.EqualFold(o.Carrier, "N/A")
}

// RawOrder is the order input schema handed over by the data-loading
// collaborator. Only carrier, lead time, category and level may be absent.
type RawOrder struct {
	ID                            string  `json:"id"`
	Date                          string  `json:"date"`
	SupplierName                  string  `json:"supplier_name"`
	TotalAmount                   float64 `json:"total_amount"`
	ShippingCost                  float64 `json:"shipping_cost"`
	Carrier                       *string `json:"carrier"`
	LeadTimeDays                  *int    `json:"lead_time_days"`
	GeographicLocation            string  `json:"geographic_location"`
	DiversityCategory             *string `json:"diversity_category"`
	ConsolidationOpportunityLevel *string `json:"consolidation_opportunity_level"`
}

// DataQualityIssue describes an input row excluded from aggregation.
type DataQualityIssue struct {
	Index   int      `json:"index"`
	OrderID string   `json:"order_id,omitempty"`
	Reasons []string `json:"reasons"`
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
}

func parseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed date %q", value)
}

// Normalize validates a raw row and converts it to an Order. Every problem
// found in the row is reported, combined into one error.
func Normalize(raw RawOrder) (Order, error) {
	var errs error

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		errs = multierr.Append(errs, fmt.Errorf("id is required"))
	}
	supplier := strings.TrimSpace(raw.SupplierName)
	if supplier == "" {
		errs = multierr.Append(errs, fmt.Errorf("supplier name is required"))
	}
	date, err := parseDate(raw.Date)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	if raw.TotalAmount < 0 {
		errs = multierr.Append(errs, fmt.Errorf("negative total amount %.2f", raw.TotalAmount))
	}
	if raw.ShippingCost < 0 {
		errs = multierr.Append(errs, fmt.Errorf("negative shipping cost %.2f", raw.ShippingCost))
	}
	if raw.LeadTimeDays != nil && *raw.LeadTimeDays < 0 {
		errs = multierr.Append(errs, fmt.Errorf("negative lead time %d", *raw.LeadTimeDays))
	}
	if errs != nil {
		return Order{}, errs
	}

	order := Order{
		ID:                 id,
		Date:               date,
		SupplierName:       supplier,
		TotalAmount:        raw.TotalAmount,
		ShippingCost:       raw.ShippingCost,
		GeographicLocation: strings.TrimSpace(raw.GeographicLocation),
		DiversityCategory:  enums.DiversityUnknown,
	}
	if raw.Carrier != nil {
		order.Carrier = strings.TrimSpace(*raw.Carrier)
	}
	if raw.LeadTimeDays != nil {
		lt := *raw.LeadTimeDays
		order.LeadTimeDays = &lt
	}
	if raw.DiversityCategory != nil {
		// Unrecognized labels fall back to Unknown and go through classification.
		if cat, err := enums.ParseDiversityCategory(*raw.DiversityCategory); err == nil {
			order.DiversityCategory = cat
		}
	}
	if raw.ConsolidationOpportunityLevel != nil {
		if lvl, err := enums.ParseConsolidationLevel(*raw.ConsolidationOpportunityLevel); err == nil {
			order.ConsolidationLevel = lvl
		}
	}
	return order, nil
}

func issueFor(index int, raw RawOrder, err error) DataQualityIssue {
	issue := DataQualityIssue{Index: index, OrderID: strings.TrimSpace(raw.ID)}
	for _, e := range multierr.Errors(err) {
		issue.Reasons = append(issue.Reasons, e.Error())
	}
	return issue
}
