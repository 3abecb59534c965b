package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProcurementOrder is one historical purchase order row feeding the ledger.
// Nullable columns map to pointers so "unknown" survives the round trip.
type ProcurementOrder struct {
	ID                 string          `gorm:"column:id;primaryKey"`
	OrderDate          time.Time       `gorm:"column:order_date;not null"`
	SupplierName       string          `gorm:"column:supplier_name;not null"`
	TotalAmount        decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2);not null"`
	ShippingCost       decimal.Decimal `gorm:"column:shipping_cost;type:numeric(14,2);not null"`
	Carrier            *string         `gorm:"column:carrier"`
	LeadTimeDays       *int            `gorm:"column:lead_time_days"`
	GeographicLocation string          `gorm:"column:geographic_location;not null;default:''"`
	DiversityCategory  *string         `gorm:"column:diversity_category"`
	ConsolidationLevel *string         `gorm:"column:consolidation_level"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (ProcurementOrder) TableName() string { return "procurement_orders" }
