package enums

import (
	"fmt"
	"strings"
)

// Urgency is the requested delivery speed.
type Urgency string

const (
	UrgencyStandard  Urgency = "standard"
	UrgencyExpedited Urgency = "expedited"
	UrgencyOvernight Urgency = "overnight"
)

var validUrgencies = []Urgency{UrgencyStandard, UrgencyExpedited, UrgencyOvernight}

func (u Urgency) String() string {
	return string(u)
}

func (u Urgency) IsValid() bool {
	for _, candidate := range validUrgencies {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUrgency accepts case-insensitive input; empty input maps to standard.
func ParseUrgency(value string) (Urgency, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return UrgencyStandard, nil
	}
	for _, candidate := range validUrgencies {
		if string(candidate) == trimmed {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid urgency %q", value)
}

// WeightCategory is the coarse shipment weight band.
type WeightCategory string

const (
	WeightLight  WeightCategory = "light"
	WeightMedium WeightCategory = "medium"
	WeightHeavy  WeightCategory = "heavy"
)

var validWeightCategories = []WeightCategory{WeightLight, WeightMedium, WeightHeavy}

func (w WeightCategory) String() string {
	return string(w)
}

func (w WeightCategory) IsValid() bool {
	for _, candidate := range validWeightCategories {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWeightCategory accepts case-insensitive input; empty input maps to medium.
func ParseWeightCategory(value string) (WeightCategory, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return WeightMedium, nil
	}
	for _, candidate := range validWeightCategories {
		if string(candidate) == trimmed {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid weight category %q", value)
}

// ConsolidationLevel grades how many neighbouring orders a supplier order has.
type ConsolidationLevel string

const (
	ConsolidationLevelLow      ConsolidationLevel = "Low"
	ConsolidationLevelMedium   ConsolidationLevel = "Medium"
	ConsolidationLevelHigh     ConsolidationLevel = "High"
	ConsolidationLevelVeryHigh ConsolidationLevel = "VeryHigh"
)

var validConsolidationLevels = []ConsolidationLevel{
	ConsolidationLevelLow,
	ConsolidationLevelMedium,
	ConsolidationLevelHigh,
	ConsolidationLevelVeryHigh,
}

// ConsolidationLevels returns every level from lowest to highest.
func ConsolidationLevels() []ConsolidationLevel {
	out := make([]ConsolidationLevel, len(validConsolidationLevels))
	copy(out, validConsolidationLevels)
	return out
}

func (c ConsolidationLevel) String() string {
	return string(c)
}

func (c ConsolidationLevel) IsValid() bool {
	for _, candidate := range validConsolidationLevels {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseConsolidationLevel tolerates case, spaces and underscores ("Very High",
// "very_high"). Empty input returns an empty level so callers can derive it.
func ParseConsolidationLevel(value string) (ConsolidationLevel, error) {
	normalized := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.TrimSpace(value))
	if normalized == "" {
		return "", nil
	}
	for _, candidate := range validConsolidationLevels {
		if strings.EqualFold(string(candidate), normalized) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid consolidation level %q", value)
}

// Confidence qualifies how a recommendation was produced.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

func (c Confidence) String() string {
	return string(c)
}

// IdentificationMethod records how an order's diversity category was decided.
type IdentificationMethod string

const (
	IdentificationExisting     IdentificationMethod = "existing"
	IdentificationKeywordMatch IdentificationMethod = "keyword_match"
	IdentificationInference    IdentificationMethod = "inference"
	IdentificationNone         IdentificationMethod = "none"
)

func (m IdentificationMethod) String() string {
	return string(m)
}
