package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/isaiahriv1234/Freight-Project/pkg/db/models"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
)

type RequestView struct {
	ID                    uuid.UUID                   `json:"id"`
	Requester             string                      `json:"requester"`
	Department            string                      `json:"department"`
	SupplierName          string                      `json:"supplier_name"`
	ItemDescription       string                      `json:"item_description,omitempty"`
	TotalAmount           decimal.Decimal             `json:"total_amount"`
	Urgency               enums.Urgency               `json:"urgency"`
	ApprovalLevel         enums.ApprovalLevel         `json:"approval_level"`
	Status                enums.PurchaseRequestStatus `json:"status"`
	RecommendedCarrier    string                      `json:"recommended_carrier"`
	EstimatedShippingCost decimal.Decimal             `json:"estimated_shipping_cost"`
	ConsolidationEligible bool                        `json:"consolidation_eligible"`
	PONumber              *string                     `json:"po_number,omitempty"`
	ResolvedBy            *string                     `json:"resolved_by,omitempty"`
	ResolvedAt            *time.Time                  `json:"resolved_at,omitempty"`
	Version               int                         `json:"version"`
	CreatedAt             time.Time                   `json:"created_at"`
	UpdatedAt             time.Time                   `json:"updated_at"`
}

type TransitionView struct {
	FromStatus *enums.PurchaseRequestStatus `json:"from_status"`
	ToStatus   enums.PurchaseRequestStatus  `json:"to_status"`
	Actor      string                       `json:"actor"`
	Notes      string                       `json:"notes,omitempty"`
	Version    int                          `json:"version"`
	At         time.Time                    `json:"at"`
}

func toRequestView(m models.PurchaseRequest) RequestView {
	return RequestView{
		ID:                    m.ID,
		Requester:             m.Requester,
		Department:            m.Department,
		SupplierName:          m.SupplierName,
		ItemDescription:       m.ItemDescription,
		TotalAmount:           m.TotalAmount,
		Urgency:               m.Urgency,
		ApprovalLevel:         m.ApprovalLevel,
		Status:                m.Status,
		RecommendedCarrier:    m.RecommendedCarrier,
		EstimatedShippingCost: m.EstimatedShippingCost,
		ConsolidationEligible: m.ConsolidationEligible,
		PONumber:              m.PONumber,
		ResolvedBy:            m.ResolvedBy,
		ResolvedAt:            m.ResolvedAt,
		Version:               m.Version,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

func toTransitionViews(rows []models.PurchaseRequestTransition) []TransitionView {
	out := make([]TransitionView, 0, len(rows))
	for _, r := range rows {
		out = append(out, TransitionView{
			FromStatus: r.FromStatus,
			ToStatus:   r.ToStatus,
			Actor:      r.Actor,
			Notes:      r.Notes,
			Version:    r.Version,
			At:         r.CreatedAt,
		})
	}
	return out
}
