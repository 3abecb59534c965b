package enums

import "fmt"

// AlertType identifies the engine that raised an alert.
type AlertType string

const (
	AlertTypeConsolidation       AlertType = "consolidation"
	AlertTypeCarrierOptimization AlertType = "carrier_optimization"
	AlertTypeOverchargeDetected  AlertType = "overcharge_detected"
	AlertTypeComplianceGap       AlertType = "compliance_gap"
)

var validAlertTypes = []AlertType{
	AlertTypeConsolidation,
	AlertTypeCarrierOptimization,
	AlertTypeOverchargeDetected,
	AlertTypeComplianceGap,
}

func (a AlertType) String() string {
	return string(a)
}

func (a AlertType) IsValid() bool {
	for _, candidate := range validAlertTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

func ParseAlertType(value string) (AlertType, error) {
	for _, candidate := range validAlertTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert type %q", value)
}

// AlertPriority ranks alerts. Critical and Warning are used for compliance
// gaps, the rest for savings alerts.
type AlertPriority string

const (
	AlertPriorityCritical AlertPriority = "critical"
	AlertPriorityHigh     AlertPriority = "high"
	AlertPriorityMedium   AlertPriority = "medium"
	AlertPriorityWarning  AlertPriority = "warning"
	AlertPriorityLow      AlertPriority = "low"
)

var validAlertPriorities = []AlertPriority{
	AlertPriorityCritical,
	AlertPriorityHigh,
	AlertPriorityMedium,
	AlertPriorityWarning,
	AlertPriorityLow,
}

func (p AlertPriority) String() string {
	return string(p)
}

func (p AlertPriority) IsValid() bool {
	for _, candidate := range validAlertPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// Weight is the tie-break rank used when ordering alerts.
func (p AlertPriority) Weight() int {
	switch p {
	case AlertPriorityCritical, AlertPriorityHigh:
		return 3
	case AlertPriorityMedium, AlertPriorityWarning:
		return 2
	case AlertPriorityLow:
		return 1
	default:
		return 0
	}
}

func ParseAlertPriority(value string) (AlertPriority, error) {
	for _, candidate := range validAlertPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert priority %q", value)
}
