package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Engine       EngineConfig
	Approval     ApprovalConfig
	Compliance   ComplianceConfig
	RateQuotes   RateQuotesConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Cron         CronConfig
	HTTP         HTTPConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Approval.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FREIGHT_APP_ENV" required:"true"`
	Port         string `envconfig:"FREIGHT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FREIGHT_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"FREIGHT_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"FREIGHT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FREIGHT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FREIGHT_DB_DSN"`
	Driver string `envconfig:"FREIGHT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FREIGHT_DB_HOST"`
	LegacyPort     int    `envconfig:"FREIGHT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FREIGHT_DB_USER"`
	LegacyPassword string `envconfig:"FREIGHT_DB_PASSWORD"`
	LegacyName     string `envconfig:"FREIGHT_DB_NAME"`
	LegacySSLMode  string `envconfig:"FREIGHT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FREIGHT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FREIGHT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FREIGHT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FREIGHT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"FREIGHT_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FREIGHT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FREIGHT_REDIS_ADDR"`
	Password     string        `envconfig:"FREIGHT_REDIS_PASSWORD"`
	DB           int           `envconfig:"FREIGHT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FREIGHT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FREIGHT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FREIGHT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FREIGHT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FREIGHT_REDIS_WRITE_TIMEOUT" default:"5s"`
	KeyPrefix    string        `envconfig:"FREIGHT_REDIS_KEY_PREFIX" default:"freight"`
}

type FeatureFlagsConfig struct {
	UseSQLite     bool `envconfig:"FREIGHT_USE_SQLITE" default:"false"`
	AutoMigrate   bool `envconfig:"FREIGHT_AUTO_MIGRATE" default:"false"`
	RealtimeRates bool `envconfig:"FREIGHT_FEATURE_REALTIME_RATES" default:"true"`
}

// EngineConfig holds the heuristic constants shared by the scoring,
// consolidation and alerting passes.
type EngineConfig struct {
	ConsolidationWindowDays int     `envconfig:"FREIGHT_CONSOLIDATION_WINDOW_DAYS" default:"7"`
	ConsolidationDiscount   float64 `envconfig:"FREIGHT_CONSOLIDATION_DISCOUNT" default:"0.30"`
	MinConsolidationSavings float64 `envconfig:"FREIGHT_MIN_CONSOLIDATION_SAVINGS" default:"50"`
	AutoConsolidateSavings  float64 `envconfig:"FREIGHT_AUTO_CONSOLIDATE_SAVINGS" default:"200"`

	BatchMaxWaitDays              int     `envconfig:"FREIGHT_BATCH_MAX_WAIT_DAYS" default:"3"`
	BatchMinOrders                int     `envconfig:"FREIGHT_BATCH_MIN_ORDERS" default:"2"`
	BatchMinValue                 float64 `envconfig:"FREIGHT_BATCH_MIN_VALUE" default:"500"`
	BatchMaxSize                  int     `envconfig:"FREIGHT_BATCH_MAX_SIZE" default:"10"`
	BatchIndividualShippingRate   float64 `envconfig:"FREIGHT_BATCH_INDIVIDUAL_SHIPPING_RATE" default:"0.10"`
	BatchConsolidatedShippingRate float64 `envconfig:"FREIGHT_BATCH_CONSOLIDATED_SHIPPING_RATE" default:"0.07"`
	BatchAdminSavingsPerOrder     float64 `envconfig:"FREIGHT_BATCH_ADMIN_SAVINGS_PER_ORDER" default:"25"`
	BatchSavingsBasis             string  `envconfig:"FREIGHT_BATCH_SAVINGS_BASIS" default:"order_value"`
	BatchParallelism              int     `envconfig:"FREIGHT_BATCH_PARALLELISM" default:"4"`

	MinShippingCost   float64 `envconfig:"FREIGHT_MIN_SHIPPING_COST" default:"5"`
	DefaultGroundCost float64 `envconfig:"FREIGHT_DEFAULT_GROUND_COST" default:"25"`
	DefaultGroundDays int     `envconfig:"FREIGHT_DEFAULT_GROUND_DAYS" default:"5"`

	OverchargeMultiplier   float64 `envconfig:"FREIGHT_OVERCHARGE_MULTIPLIER" default:"1.5"`
	OverchargeLookbackDays int     `envconfig:"FREIGHT_OVERCHARGE_LOOKBACK_DAYS" default:"30"`
	AlertSavingsThreshold  float64 `envconfig:"FREIGHT_ALERT_SAVINGS_THRESHOLD" default:"50"`
	HighPrioritySavings    float64 `envconfig:"FREIGHT_HIGH_PRIORITY_SAVINGS" default:"500"`
	MaxConsolidationAlerts int     `envconfig:"FREIGHT_MAX_CONSOLIDATION_ALERTS" default:"5"`
}

type ApprovalConfig struct {
	AutoApproveLimit    string `envconfig:"FREIGHT_AUTO_APPROVE_LIMIT" default:"500.00"`
	ManagerApproveLimit string `envconfig:"FREIGHT_MANAGER_APPROVE_LIMIT" default:"5000.00"`
}

// Limits parses the configured approval thresholds.
func (a ApprovalConfig) Limits() (decimal.Decimal, decimal.Decimal, error) {
	auto, err := decimal.NewFromString(strings.TrimSpace(a.AutoApproveLimit))
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid %s: %w", EnvAutoApproveLimit, err)
	}
	manager, err := decimal.NewFromString(strings.TrimSpace(a.ManagerApproveLimit))
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid %s: %w", EnvManagerApproveLimit, err)
	}
	return auto, manager, nil
}

func (a ApprovalConfig) validate() error {
	auto, manager, err := a.Limits()
	if err != nil {
		return err
	}
	if auto.IsNegative() || manager.LessThan(auto) {
		return fmt.Errorf("%s must be >= %s >= 0", EnvManagerApproveLimit, EnvAutoApproveLimit)
	}
	return nil
}

type ComplianceConfig struct {
	TargetOverall float64 `envconfig:"FREIGHT_TARGET_OVERALL_PCT" default:"25"`
	TargetDVBE    float64 `envconfig:"FREIGHT_TARGET_DVBE_PCT" default:"3"`
	TargetWOB     float64 `envconfig:"FREIGHT_TARGET_WOB_PCT" default:"5"`
	TargetMBE     float64 `envconfig:"FREIGHT_TARGET_MBE_PCT" default:"10"`

	SmallOrderThreshold         float64 `envconfig:"FREIGHT_SMALL_ORDER_THRESHOLD" default:"500"`
	InfrequentSupplierMaxOrders int     `envconfig:"FREIGHT_INFREQUENT_SUPPLIER_MAX_ORDERS" default:"3"`
}

type RateQuotesConfig struct {
	Timeout      time.Duration `envconfig:"FREIGHT_RATE_QUOTE_TIMEOUT" default:"3s"`
	CacheTTL     time.Duration `envconfig:"FREIGHT_RATE_QUOTE_CACHE_TTL" default:"15m"`
	RPS          float64       `envconfig:"FREIGHT_RATE_QUOTE_RPS" default:"5"`
	Burst        int           `envconfig:"FREIGHT_RATE_QUOTE_BURST" default:"5"`
	OriginZip    string        `envconfig:"FREIGHT_RATE_QUOTE_ORIGIN_ZIP" default:"95814"`
	UPSBaseURL   string        `envconfig:"FREIGHT_UPS_BASE_URL"`
	UPSAPIKey    string        `envconfig:"FREIGHT_UPS_API_KEY"`
	FedExBaseURL string        `envconfig:"FREIGHT_FEDEX_BASE_URL"`
	FedExAPIKey  string        `envconfig:"FREIGHT_FEDEX_API_KEY"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FREIGHT_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"FREIGHT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FREIGHT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	ReportsTopic string `envconfig:"FREIGHT_PUBSUB_REPORTS_TOPIC" default:"freight-analysis-reports"`
}

type BigQueryConfig struct {
	Dataset     string `envconfig:"FREIGHT_BIGQUERY_DATASET" default:"freight"`
	AlertsTable string `envconfig:"FREIGHT_BIGQUERY_ALERTS_TABLE" default:"shipping_alerts"`
	RunsTable   string `envconfig:"FREIGHT_BIGQUERY_RUNS_TABLE" default:"analysis_runs"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"FREIGHT_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"FREIGHT_CRON_LOCK_TTL" default:"30m"`
}

type HTTPConfig struct {
	CORSOrigins     []string      `envconfig:"FREIGHT_CORS_ORIGINS" default:"http://localhost:3000"`
	RateLimitWindow time.Duration `envconfig:"FREIGHT_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitPerIP  int           `envconfig:"FREIGHT_RATE_LIMIT_PER_IP" default:"120"`
}

// ReportingEnabled reports whether GCP report sinks are configured.
func (c *Config) ReportingEnabled() bool {
	return strings.TrimSpace(c.GCP.ProjectID) != ""
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
