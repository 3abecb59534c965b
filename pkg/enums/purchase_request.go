package enums

import "fmt"

// ApprovalLevel is the sign-off tier assigned to a purchase request at
// submission time.
type ApprovalLevel string

const (
	ApprovalLevelAuto      ApprovalLevel = "auto"
	ApprovalLevelManager   ApprovalLevel = "manager"
	ApprovalLevelExecutive ApprovalLevel = "executive"
)

var validApprovalLevels = []ApprovalLevel{
	ApprovalLevelAuto,
	ApprovalLevelManager,
	ApprovalLevelExecutive,
}

func (a ApprovalLevel) String() string {
	return string(a)
}

func (a ApprovalLevel) IsValid() bool {
	for _, candidate := range validApprovalLevels {
		if candidate == a {
			return true
		}
	}
	return false
}

func ParseApprovalLevel(value string) (ApprovalLevel, error) {
	for _, candidate := range validApprovalLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval level %q", value)
}

// PurchaseRequestStatus tracks the approval lifecycle of a purchase request.
type PurchaseRequestStatus string

const (
	PurchaseRequestStatusSubmitted         PurchaseRequestStatus = "submitted"
	PurchaseRequestStatusAutoApproved      PurchaseRequestStatus = "auto_approved"
	PurchaseRequestStatusPendingApproval   PurchaseRequestStatus = "pending_approval"
	PurchaseRequestStatusApproved          PurchaseRequestStatus = "approved"
	PurchaseRequestStatusRejected          PurchaseRequestStatus = "rejected"
	PurchaseRequestStatusPOCreated         PurchaseRequestStatus = "po_created"
	PurchaseRequestStatusRequesterNotified PurchaseRequestStatus = "requester_notified"
)

var validPurchaseRequestStatuses = []PurchaseRequestStatus{
	PurchaseRequestStatusSubmitted,
	PurchaseRequestStatusAutoApproved,
	PurchaseRequestStatusPendingApproval,
	PurchaseRequestStatusApproved,
	PurchaseRequestStatusRejected,
	PurchaseRequestStatusPOCreated,
	PurchaseRequestStatusRequesterNotified,
}

func (s PurchaseRequestStatus) String() string {
	return string(s)
}

func (s PurchaseRequestStatus) IsValid() bool {
	for _, candidate := range validPurchaseRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsResolved reports whether an approver decision is no longer possible.
func (s PurchaseRequestStatus) IsResolved() bool {
	return s != PurchaseRequestStatusSubmitted && s != PurchaseRequestStatusPendingApproval
}

func ParsePurchaseRequestStatus(value string) (PurchaseRequestStatus, error) {
	for _, candidate := range validPurchaseRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase request status %q", value)
}

// PurchaseDecision is the action an approver takes on a pending request.
type PurchaseDecision string

const (
	PurchaseDecisionApprove PurchaseDecision = "approve"
	PurchaseDecisionReject  PurchaseDecision = "reject"
)

func (d PurchaseDecision) IsValid() bool {
	return d == PurchaseDecisionApprove || d == PurchaseDecisionReject
}

func ParsePurchaseDecision(value string) (PurchaseDecision, error) {
	d := PurchaseDecision(value)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid purchase decision %q", value)
	}
	return d, nil
}
