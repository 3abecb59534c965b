package enums

import (
	"fmt"
	"strings"
)

// DiversityCategory classifies a supplier's ownership status for spend
// compliance reporting.
type DiversityCategory string

const (
	DiversityDVBE       DiversityCategory = "DVBE"
	DiversityWOB        DiversityCategory = "WOB"
	DiversityMBE        DiversityCategory = "MBE"
	DiversitySDB        DiversityCategory = "SDB"
	DiversityOSB        DiversityCategory = "OSB"
	DiversityUnknown    DiversityCategory = "Unknown"
	DiversityNonDiverse DiversityCategory = "NonDiverse"
)

var validDiversityCategories = []DiversityCategory{
	DiversityDVBE,
	DiversityWOB,
	DiversityMBE,
	DiversitySDB,
	DiversityOSB,
	DiversityUnknown,
	DiversityNonDiverse,
}

var diversityLabels = map[DiversityCategory]string{
	DiversityDVBE:       "Disabled Veteran Business Enterprise",
	DiversityWOB:        "Women-Owned Business",
	DiversityMBE:        "Minority Business Enterprise",
	DiversitySDB:        "Small Disadvantaged Business",
	DiversityOSB:        "Other Small Business",
	DiversityUnknown:    "Unknown",
	DiversityNonDiverse: "Non-Diverse",
}

// DiversityCategories returns every category in reporting order.
func DiversityCategories() []DiversityCategory {
	out := make([]DiversityCategory, len(validDiversityCategories))
	copy(out, validDiversityCategories)
	return out
}

// String implements fmt.Stringer.
func (d DiversityCategory) String() string {
	return string(d)
}

// Label returns the human readable name.
func (d DiversityCategory) Label() string {
	if label, ok := diversityLabels[d]; ok {
		return label
	}
	return string(d)
}

// IsValid reports whether the value is a known DiversityCategory.
func (d DiversityCategory) IsValid() bool {
	for _, candidate := range validDiversityCategories {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsDiverse reports whether spend in this category counts toward the overall
// diversity share.
func (d DiversityCategory) IsDiverse() bool {
	return d.IsValid() && d != DiversityUnknown && d != DiversityNonDiverse
}

// ParseDiversityCategory converts raw input into a DiversityCategory. Empty
// input maps to Unknown.
func ParseDiversityCategory(value string) (DiversityCategory, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return DiversityUnknown, nil
	}
	for _, candidate := range validDiversityCategories {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	if strings.EqualFold(trimmed, "non-diverse") || strings.EqualFold(trimmed, "non_diverse") {
		return DiversityNonDiverse, nil
	}
	return "", fmt.Errorf("invalid diversity category %q", value)
}
