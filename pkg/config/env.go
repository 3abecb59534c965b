package config

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "FREIGHT_APP_ENV"
	EnvPort     = "FREIGHT_APP_PORT"
	EnvLogLevel = "FREIGHT_LOG_LEVEL"

	EnvDBDSN  = "FREIGHT_DB_DSN"
	EnvDBHost = "FREIGHT_DB_HOST"
	EnvDBUser = "FREIGHT_DB_USER"
	EnvDBName = "FREIGHT_DB_NAME"

	EnvRedisURL = "FREIGHT_REDIS_URL"

	EnvAutoApproveLimit    = "FREIGHT_AUTO_APPROVE_LIMIT"
	EnvManagerApproveLimit = "FREIGHT_MANAGER_APPROVE_LIMIT"

	EnvConsolidationWindowDays = "FREIGHT_CONSOLIDATION_WINDOW_DAYS"
	EnvOverchargeMultiplier    = "FREIGHT_OVERCHARGE_MULTIPLIER"
	EnvTargetOverall           = "FREIGHT_TARGET_OVERALL_PCT"

	EnvGCPProjectID       = "FREIGHT_GCP_PROJECT_ID"
	EnvPubSubReportsTopic = "FREIGHT_PUBSUB_REPORTS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
