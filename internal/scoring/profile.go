package scoring

import "strings"

// CostTier is the relative price band of a carrier.
type CostTier string

const (
	CostTierNone    CostTier = "none"
	CostTierLowest  CostTier = "lowest"
	CostTierLow     CostTier = "low"
	CostTierMedium  CostTier = "medium"
	CostTierHigh    CostTier = "high"
	CostTierUnknown CostTier = "unknown"
)

// SpeedTier is the relative delivery speed of a carrier.
type SpeedTier string

const (
	SpeedInstant SpeedTier = "instant"
	SpeedFastest SpeedTier = "fastest"
	SpeedFast    SpeedTier = "fast"
	SpeedSlow    SpeedTier = "slow"
	SpeedSlowest SpeedTier = "slowest"
	SpeedUnknown SpeedTier = "unknown"
)

// Kind groups carriers by the rules that apply to them.
type Kind string

const (
	KindParcel     Kind = "parcel"
	KindFreight    Kind = "freight"
	KindGround     Kind = "ground"
	KindElectronic Kind = "electronic"
	KindUnprofiled Kind = "unprofiled"
)

// Profile is the fixed description of a known carrier.
type Profile struct {
	Name            string    `json:"name"`
	Kind            Kind      `json:"kind"`
	CostTier        CostTier  `json:"cost_tier"`
	SpeedTier       SpeedTier `json:"speed_tier"`
	Reliability     float64   `json:"reliability"`
	PerThousandRate float64   `json:"per_thousand_rate"`
}

// Profiled reports whether the carrier is one of the known profiles.
func (p Profile) Profiled() bool {
	return p.Kind != KindUnprofiled
}

const unprofiledPerThousandRate = 10

var knownProfiles = []Profile{
	{Name: "UPS", Kind: KindParcel, CostTier: CostTierMedium, SpeedTier: SpeedFast, Reliability: 0.95, PerThousandRate: 25},
	{Name: "FedEx", Kind: KindParcel, CostTier: CostTierHigh, SpeedTier: SpeedFastest, Reliability: 0.96, PerThousandRate: 25},
	{Name: "Freight", Kind: KindFreight, CostTier: CostTierLow, SpeedTier: SpeedSlow, Reliability: 0.90, PerThousandRate: 50},
	{Name: "Ground", Kind: KindGround, CostTier: CostTierLowest, SpeedTier: SpeedSlowest, Reliability: 0.92, PerThousandRate: 10},
	{Name: "Electronic", Kind: KindElectronic, CostTier: CostTierNone, SpeedTier: SpeedInstant, Reliability: 0.99, PerThousandRate: 10},
}

// Profiles returns the known carrier profiles.
func Profiles() []Profile {
	out := make([]Profile, len(knownProfiles))
	copy(out, knownProfiles)
	return out
}

// LookupProfile matches a carrier name case-insensitively. Unknown carriers
// get an explicit unprofiled profile rather than borrowing another's.
func LookupProfile(name string) Profile {
	trimmed := strings.TrimSpace(name)
	for _, p := range knownProfiles {
		if strings.EqualFold(p.Name, trimmed) {
			return p
		}
	}
	return Profile{
		Name:            trimmed,
		Kind:            KindUnprofiled,
		CostTier:        CostTierUnknown,
		SpeedTier:       SpeedUnknown,
		PerThousandRate: unprofiledPerThousandRate,
	}
}
