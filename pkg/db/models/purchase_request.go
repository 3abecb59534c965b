package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
)

// PurchaseRequest is the current state of an internal purchase request.
// Status only changes through PurchaseRequestTransition rows written in the
// same transaction.
type PurchaseRequest struct {
	ID                    uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey"`
	Requester             string                      `gorm:"column:requester;not null"`
	Department            string                      `gorm:"column:department;not null"`
	SupplierName          string                      `gorm:"column:supplier_name;not null"`
	ItemDescription       string                      `gorm:"column:item_description;not null;default:''"`
	TotalAmount           decimal.Decimal             `gorm:"column:total_amount;type:numeric(14,2);not null"`
	Urgency               enums.Urgency               `gorm:"column:urgency;not null"`
	ApprovalLevel         enums.ApprovalLevel         `gorm:"column:approval_level;not null"`
	Status                enums.PurchaseRequestStatus `gorm:"column:status;not null"`
	RecommendedCarrier    string                      `gorm:"column:recommended_carrier;not null;default:''"`
	EstimatedShippingCost decimal.Decimal             `gorm:"column:estimated_shipping_cost;type:numeric(14,2);not null"`
	ConsolidationEligible bool                        `gorm:"column:consolidation_eligible;not null;default:false"`
	PONumber              *string                     `gorm:"column:po_number"`
	ResolvedBy            *string                     `gorm:"column:resolved_by"`
	ResolvedAt            *time.Time                  `gorm:"column:resolved_at"`
	Version               int                         `gorm:"column:version;not null;default:1"`
	CreatedAt             time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (PurchaseRequest) TableName() string { return "purchase_requests" }

// PurchaseRequestTransition is one append-only step in a request's history.
// Version matches the request version the step produced.
type PurchaseRequestTransition struct {
	ID         uuid.UUID                    `gorm:"column:id;type:uuid;primaryKey"`
	RequestID  uuid.UUID                    `gorm:"column:request_id;type:uuid;not null;index;uniqueIndex:purchase_request_transitions_version_unique,priority:1"`
	FromStatus *enums.PurchaseRequestStatus `gorm:"column:from_status"`
	ToStatus   enums.PurchaseRequestStatus  `gorm:"column:to_status;not null"`
	Actor      string                       `gorm:"column:actor;not null"`
	Notes      string                       `gorm:"column:notes;not null;default:''"`
	Version    int                          `gorm:"column:version;not null;uniqueIndex:purchase_request_transitions_version_unique,priority:2"`
	CreatedAt  time.Time                    `gorm:"column:created_at;not null"`
}

func (PurchaseRequestTransition) TableName() string { return "purchase_request_transitions" }
