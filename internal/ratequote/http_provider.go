package ratequote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	pkgerrors "github.com/isaiahriv1234/Freight-Project/pkg/errors"
)

const (
	ratesPath                   = "rates"
	responseBodyReadLimit int64 = 1024
	defaultCurrency             = "USD"
)

var (
	errAPIKeyRequired  = errors.New("rate provider api key is required")
	errBaseURLRequired = errors.New("rate provider base url is required")
)

// HTTPProvider calls a carrier rate API that accepts the shipment as JSON and
// returns a list of priced services.
type HTTPProvider struct {
	name       string
	carrier    string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures optional provider behavior.
type Option func(*HTTPProvider)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *HTTPProvider) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// WithRateLimit throttles outbound calls to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(p *HTTPProvider) {
		if rps > 0 {
			if burst < 1 {
				burst = 1
			}
			p.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// NewHTTPProvider builds a provider named name whose quotes are attributed to
// carrier.
func NewHTTPProvider(name, carrier, baseURL, apiKey string, opts ...Option) (*HTTPProvider, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}
	trimmedURL := strings.TrimSpace(baseURL)
	if trimmedURL == "" {
		return nil, errBaseURLRequired
	}
	if strings.TrimSpace(name) == "" {
		name = strings.ToLower(carrier)
	}

	p := &HTTPProvider{
		name:       name,
		carrier:    carrier,
		baseURL:    trimmedURL,
		apiKey:     trimmedKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

func (p *HTTPProvider) Name() string { return p.name }

type rateResponse struct {
	Rates []struct {
		Service     string  `json:"service"`
		TotalCharge float64 `json:"total_charge"`
		Currency    string  `json:"currency"`
		TransitDays int     `json:"transit_days"`
	} `json:"rates"`
}

// Quote posts the request and maps the returned rates.
func (p *HTTPProvider) Quote(ctx context.Context, req Request) ([]Quote, error) {
	if p == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "rate provider not configured")
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit wait")
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal rate request")
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(p.baseURL, "/"), ratesPath)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build rate request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute rate request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "rate request failed")
	}

	var apiResp rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode rate response")
	}

	quotes := make([]Quote, 0, len(apiResp.Rates))
	for _, r := range apiResp.Rates {
		currency := r.Currency
		if currency == "" {
			currency = defaultCurrency
		}
		quotes = append(quotes, Quote{
			Carrier:     p.carrier,
			ServiceName: r.Service,
			Cost:        r.TotalCharge,
			Currency:    currency,
			TransitDays: r.TransitDays,
		})
	}
	return quotes, nil
}
