package ratequote

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Dimensions are package measurements in inches.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Request describes one shipment to be priced.
type Request struct {
	OriginZip     string     `json:"origin_zip"`
	DestCity      string     `json:"dest_city"`
	DestState     string     `json:"dest_state"`
	DestZip       string     `json:"dest_zip"`
	WeightLbs     float64    `json:"weight_lbs"`
	Dimensions    Dimensions `json:"dimensions"`
	DeclaredValue float64    `json:"declared_value"`
}

// Fingerprint is a stable hash of the request used as a cache key.
func (r Request) Fingerprint() string {
	norm := r
	norm.OriginZip = strings.TrimSpace(norm.OriginZip)
	norm.DestCity = strings.ToLower(strings.TrimSpace(norm.DestCity))
	norm.DestState = strings.ToUpper(strings.TrimSpace(norm.DestState))
	norm.DestZip = strings.TrimSpace(norm.DestZip)
	payload, _ := json.Marshal(norm)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:16])
}

// Quote is one priced service offered by a carrier.
type Quote struct {
	Carrier     string  `json:"carrier"`
	ServiceName string  `json:"service_name"`
	Cost        float64 `json:"cost"`
	Currency    string  `json:"currency"`
	TransitDays int     `json:"transit_days"`
}

// Provider fetches quotes from one external rate service.
type Provider interface {
	Name() string
	Quote(ctx context.Context, req Request) ([]Quote, error)
}

// usable drops quotes that cannot be compared against history.
func usable(quotes []Quote) []Quote {
	out := quotes[:0:0]
	for _, q := range quotes {
		if q.Cost > 0 && strings.TrimSpace(q.Carrier) != "" {
			out = append(out, q)
		}
	}
	return out
}
