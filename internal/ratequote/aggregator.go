package ratequote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/isaiahriv1234/Freight-Project/pkg/config"
	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
	"github.com/isaiahriv1234/Freight-Project/pkg/metrics"
)

const (
	outcomeOK       = "ok"
	outcomeCacheHit = "cache_hit"
	outcomeError    = "error"
	outcomeTimeout  = "timeout"
	outcomeEmpty    = "empty"
)

// Cache is the subset of the redis client used to memoize quotes.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	QuoteKey(provider, fingerprint string) string
}

// Aggregator fans a request out to every provider and merges what comes back.
// A failing or slow provider only removes its own quotes.
type Aggregator struct {
	providers []Provider
	timeout   time.Duration
	cache     Cache
	cacheTTL  time.Duration
	metrics   *metrics.QuoteMetrics
	logg      *logger.Logger
}

type AggregatorOption func(*Aggregator)

func WithCache(cache Cache, ttl time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if cache != nil && ttl > 0 {
			a.cache = cache
			a.cacheTTL = ttl
		}
	}
}

func WithMetrics(m *metrics.QuoteMetrics) AggregatorOption {
	return func(a *Aggregator) { a.metrics = m }
}

func NewAggregator(providers []Provider, timeout time.Duration, logg *logger.Logger, opts ...AggregatorOption) (*Aggregator, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("per provider timeout must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	a := &Aggregator{providers: providers, timeout: timeout, logg: logg}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a, nil
}

// NewFromConfig wires an HTTP provider for every carrier with credentials.
// With none configured the aggregator always returns no quotes.
func NewFromConfig(cfg config.RateQuotesConfig, logg *logger.Logger, opts ...AggregatorOption) (*Aggregator, error) {
	type spec struct{ name, carrier, baseURL, apiKey string }
	specs := []spec{
		{"ups", "UPS", cfg.UPSBaseURL, cfg.UPSAPIKey},
		{"fedex", "FedEx", cfg.FedExBaseURL, cfg.FedExAPIKey},
	}
	var providers []Provider
	for _, s := range specs {
		if s.apiKey == "" || s.baseURL == "" {
			continue
		}
		p, err := NewHTTPProvider(s.name, s.carrier, s.baseURL, s.apiKey, WithRateLimit(cfg.RPS, cfg.Burst))
		if err != nil {
			return nil, fmt.Errorf("%s provider: %w", s.name, err)
		}
		providers = append(providers, p)
	}
	return NewAggregator(providers, cfg.Timeout, logg, opts...)
}

// Providers reports how many providers are configured.
func (a *Aggregator) Providers() int { return len(a.providers) }

// Quotes returns every usable quote sorted by cost, then carrier and service.
// It never returns an error: provider failures are logged and skipped.
func (a *Aggregator) Quotes(ctx context.Context, req Request) []Quote {
	if len(a.providers) == 0 {
		return nil
	}
	fingerprint := req.Fingerprint()
	results := make([][]Quote, len(a.providers))

	var g errgroup.Group
	for i, p := range a.providers {
		g.Go(func() error {
			results[i] = a.fetch(ctx, p, req, fingerprint)
			return nil
		})
	}
	_ = g.Wait()

	var out []Quote
	for _, r := range results {
		out = append(out, r...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return out[i].Cost < out[j].Cost
		}
		if out[i].Carrier != out[j].Carrier {
			return out[i].Carrier < out[j].Carrier
		}
		return out[i].ServiceName < out[j].ServiceName
	})
	return out
}

func (a *Aggregator) fetch(ctx context.Context, p Provider, req Request, fingerprint string) []Quote {
	name := p.Name()
	ctx = a.logg.WithCarrier(ctx, name)

	// The cache round trips share the provider's timeout budget.
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if cached, ok := a.fromCache(callCtx, name, fingerprint); ok {
		a.metrics.Observe(name, outcomeCacheHit, 0)
		return cached
	}

	started := time.Now()
	quotes, err := p.Quote(callCtx, req)
	elapsed := time.Since(started)
	if err != nil {
		outcome := outcomeError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			outcome = outcomeTimeout
		}
		a.metrics.Observe(name, outcome, elapsed)
		a.logg.Warn(a.logg.WithField(ctx, "error", err.Error()), "rate quote unavailable")
		return nil
	}

	quotes = usable(quotes)
	if len(quotes) == 0 {
		a.metrics.Observe(name, outcomeEmpty, elapsed)
		return nil
	}
	a.metrics.Observe(name, outcomeOK, elapsed)
	a.toCache(callCtx, name, fingerprint, quotes)
	return quotes
}

func (a *Aggregator) fromCache(ctx context.Context, provider, fingerprint string) ([]Quote, bool) {
	if a.cache == nil {
		return nil, false
	}
	raw, err := a.cache.Get(ctx, a.cache.QuoteKey(provider, fingerprint))
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			a.logg.Warn(a.logg.WithField(ctx, "error", err.Error()), "rate quote cache read failed")
		}
		return nil, false
	}
	var quotes []Quote
	if err := json.Unmarshal([]byte(raw), &quotes); err != nil {
		return nil, false
	}
	quotes = usable(quotes)
	return quotes, len(quotes) > 0
}

func (a *Aggregator) toCache(ctx context.Context, provider, fingerprint string, quotes []Quote) {
	if a.cache == nil {
		return
	}
	payload, err := json.Marshal(quotes)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, a.cache.QuoteKey(provider, fingerprint), string(payload), a.cacheTTL); err != nil {
		a.logg.Warn(a.logg.WithField(ctx, "error", err.Error()), "rate quote cache write failed")
	}
}
