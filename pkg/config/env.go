package config

const (
	EnvPrefix = "MALDONADO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "MALDONADO_APP_ENV"
	EnvPort     = "MALDONADO_APP_PORT"
	EnvLogLevel = "MALDONADO_LOG_LEVEL"

	EnvDBDSN  = "MALDONADO_DB_DSN"
	EnvDBHost = "MALDONADO_DB_HOST"
	EnvDBUser = "MALDONADO_DB_USER"
	EnvDBName = "MALDONADO_DB_NAME"

	EnvRedisURL = "MALDONADO_REDIS_URL"

	EnvJWTSecret  = "MALDONADO_JWT_SECRET"
	EnvJWTIssuer  = "MALDONADO_JWT_ISSUER"
	EnvJWTExpMins = "MALDONADO_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite  = "MALDONADO_USE_SQLITE"
	EnvSQLitePath = "MALDONADO_SQLITE_PATH"

	EnvGCPProjectID             = "MALDONADO_GCP_PROJECT_ID"
	EnvPubSubQuoteTopic         = "MALDONADO_PUBSUB_QUOTE_TOPIC"
	EnvPubSubQuoteSubscription  = "MALDONADO_PUBSUB_QUOTE_SUBSCRIPTION"
	EnvSendgridAPIKey           = "MALDONADO_SENDGRID_API_KEY"
	EnvSendgridFrom             = "MALDONADO_SENDGRID_FROM_EMAIL"
	EnvNotificationsAdminEmail  = "MALDONADO_NOTIFICATIONS_ADMIN_EMAIL"
	EnvFrontendURL              = "MALDONADO_FRONTEND_URL"
	EnvWhatsAppNumber           = "MALDONADO_WHATSAPP_NUMBER"
	EnvClientAPIURL             = "MALDONADO_CLIENT_API_URL"
	EnvClientTimeout            = "MALDONADO_CLIENT_TIMEOUT"
	EnvClientDataDir            = "MALDONADO_CLIENT_DATA_DIR"
	EnvClientStorage            = "MALDONADO_CLIENT_STORAGE"
	EnvClientRedisURL           = "MALDONADO_CLIENT_REDIS_URL"
	EnvClientConfirmationDelay  = "MALDONADO_CLIENT_CONFIRMATION_DELAY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
