package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/isaiahriv1234/Freight-Project/api/controllers"
	"github.com/isaiahriv1234/Freight-Project/api/middleware"
	"github.com/isaiahriv1234/Freight-Project/internal/ledger"
	"github.com/isaiahriv1234/Freight-Project/internal/orchestrator"
	"github.com/isaiahriv1234/Freight-Project/internal/purchasing"
	"github.com/isaiahriv1234/Freight-Project/pkg/config"
	"github.com/isaiahriv1234/Freight-Project/pkg/db"
	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
	"github.com/isaiahriv1234/Freight-Project/pkg/redis"
)

// Deps carries the services the HTTP surface is wired to. A nil Redis
// client disables rate limiting and idempotency replay.
type Deps struct {
	DB         db.Pinger
	Redis      *redis.Client
	Ledger     ledger.Service
	Runner     *orchestrator.Runner
	Purchasing purchasing.Service
	Metrics    http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	checks := []controllers.ReadinessCheck{}
	if deps.DB != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "db", Pinger: deps.DB})
	}
	if deps.Redis != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "redis", Pinger: deps.Redis})
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks...))
	})

	metricsHandler := deps.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// analysisRunner is an interface; keep a nil *Runner from becoming a
	// non-nil interface value.
	var runner interface{ Start() *orchestrator.Run }
	if deps.Runner != nil {
		runner = deps.Runner
	}

	apiPolicy := middleware.NewRateLimitPolicy("api", cfg.HTTP.RateLimitWindow, cfg.HTTP.RateLimitPerIP)

	r.Route("/api/v1", func(r chi.Router) {
		if deps.Redis != nil {
			r.Use(middleware.RateLimit(apiPolicy, deps.Redis, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))
		}

		r.Route("/ledger", func(r chi.Router) {
			r.Post("/orders", controllers.LedgerIngest(deps.Ledger, logg))
			r.Post("/refresh", controllers.LedgerRefresh(deps.Ledger, logg))
		})

		r.Route("/carriers", func(r chi.Router) {
			r.Get("/stats", controllers.CarrierStats(runner, logg))
			r.Get("/recommendations", controllers.CarrierRecommendations(runner, logg))
			r.Post("/select", controllers.CarrierSelect(runner, logg))
			r.Get("/rules", controllers.ShippingRules(runner, logg))
		})

		r.Route("/consolidation", func(r chi.Router) {
			r.Get("/opportunities", controllers.ConsolidationOpportunities(runner, cfg.Engine.ConsolidationWindowDays, logg))
			r.Get("/batches", controllers.ConsolidationBatches(runner, logg))
		})

		r.Route("/compliance", func(r chi.Router) {
			r.Get("/summary", controllers.ComplianceSummary(runner, logg))
			r.Get("/status", controllers.ComplianceStatus(runner, logg))
			r.Get("/recommendations", controllers.ComplianceRecommendations(runner, logg))
			r.Get("/trends", controllers.ComplianceTrends(runner, logg))
			r.Get("/suppliers", controllers.ComplianceSuppliers(runner, logg))
		})

		r.Get("/alerts", controllers.Alerts(runner, logg))
		r.Get("/report", controllers.Report(runner, logg))

		r.Route("/purchase-requests", func(r chi.Router) {
			r.Post("/", controllers.PurchaseRequestSubmit(deps.Purchasing, logg))
			r.Get("/", controllers.PurchaseRequestList(deps.Purchasing, logg))
			r.Get("/consolidation", controllers.PurchaseRequestConsolidation(deps.Purchasing, logg))
			r.Get("/{requestId}", controllers.PurchaseRequestDetail(deps.Purchasing, logg))
			r.Post("/{requestId}/decision", controllers.PurchaseRequestDecision(deps.Purchasing, logg))
		})
	})

	return r
}
