package purchasing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/isaiahriv1234/Freight-Project/pkg/config"
	"github.com/isaiahriv1234/Freight-Project/pkg/enums"
)

// ApprovalPolicy assigns the sign-off tier for a request amount.
type ApprovalPolicy struct {
	autoLimit    decimal.Decimal
	managerLimit decimal.Decimal
}

func NewApprovalPolicy(autoLimit, managerLimit decimal.Decimal) (ApprovalPolicy, error) {
	if autoLimit.IsNegative() {
		return ApprovalPolicy{}, fmt.Errorf("auto approve limit must not be negative")
	}
	if managerLimit.LessThan(autoLimit) {
		return ApprovalPolicy{}, fmt.Errorf("manager approve limit must be at least the auto approve limit")
	}
	return ApprovalPolicy{autoLimit: autoLimit, managerLimit: managerLimit}, nil
}

// PolicyFromConfig parses the configured thresholds.
func PolicyFromConfig(cfg config.ApprovalConfig) (ApprovalPolicy, error) {
	auto, manager, err := cfg.Limits()
	if err != nil {
		return ApprovalPolicy{}, err
	}
	return NewApprovalPolicy(auto, manager)
}

// Level returns Auto up to and including the auto limit, Manager up to and
// including the manager limit, Executive above.
func (p ApprovalPolicy) Level(amount decimal.Decimal) enums.ApprovalLevel {
	switch {
	case amount.LessThanOrEqual(p.autoLimit):
		return enums.ApprovalLevelAuto
	case amount.LessThanOrEqual(p.managerLimit):
		return enums.ApprovalLevelManager
	default:
		return enums.ApprovalLevelExecutive
	}
}

var allowedTransitions = map[enums.PurchaseRequestStatus][]enums.PurchaseRequestStatus{
	enums.PurchaseRequestStatusSubmitted: {
		enums.PurchaseRequestStatusAutoApproved,
		enums.PurchaseRequestStatusPendingApproval,
	},
	enums.PurchaseRequestStatusAutoApproved:    {enums.PurchaseRequestStatusPOCreated},
	enums.PurchaseRequestStatusPendingApproval: {enums.PurchaseRequestStatusApproved, enums.PurchaseRequestStatusRejected},
	enums.PurchaseRequestStatusApproved:        {enums.PurchaseRequestStatusPOCreated},
	enums.PurchaseRequestStatusRejected:        {enums.PurchaseRequestStatusRequesterNotified},
}

// CanTransition reports whether the state machine permits from -> to.
func CanTransition(from, to enums.PurchaseRequestStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// unresolvedStatuses are the states in which a request still awaits an outcome.
var unresolvedStatuses = []enums.PurchaseRequestStatus{
	enums.PurchaseRequestStatusSubmitted,
	enums.PurchaseRequestStatusPendingApproval,
}
