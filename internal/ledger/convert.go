package ledger

import (
	"github.com/isaiahriv1234/Freight-Project/pkg/db/models"
	"github.com/isaiahriv1234/Freight-Project/pkg/money"
)

const rowDateLayout = "2006-01-02"

// RawFromModel converts a stored row into the input schema so stored and
// freshly ingested data go through the same validation.
func RawFromModel(row models.ProcurementOrder) RawOrder {
	raw := RawOrder{
		ID:                            row.ID,
		Date:                          row.OrderDate.UTC().Format(rowDateLayout),
		SupplierName:                  row.SupplierName,
		TotalAmount:                   money.ToFloat(row.TotalAmount),
		ShippingCost:                  money.ToFloat(row.ShippingCost),
		Carrier:                       row.Carrier,
		GeographicLocation:            row.GeographicLocation,
		DiversityCategory:             row.DiversityCategory,
		ConsolidationOpportunityLevel: row.ConsolidationLevel,
	}
	if row.LeadTimeDays != nil {
		lt := *row.LeadTimeDays
		raw.LeadTimeDays = &lt
	}
	return raw
}

// ModelFromOrder converts a validated order into a storable row.
func ModelFromOrder(o Order) models.ProcurementOrder {
	row := models.ProcurementOrder{
		ID:                 o.ID,
		OrderDate:          o.Date,
		SupplierName:       o.SupplierName,
		TotalAmount:        money.FromFloat(o.TotalAmount),
		ShippingCost:       money.FromFloat(o.ShippingCost),
		LeadTimeDays:       o.LeadTimeDays,
		GeographicLocation: o.GeographicLocation,
	}
	if o.Carrier != "" {
		carrier := o.Carrier
		row.Carrier = &carrier
	}
	if o.DiversityCategory != "" {
		cat := o.DiversityCategory.String()
		row.DiversityCategory = &cat
	}
	if o.ConsolidationLevel != "" {
		lvl := o.ConsolidationLevel.String()
		row.ConsolidationLevel = &lvl
	}
	return row
}
