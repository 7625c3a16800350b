package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Sendgrid      SendgridConfig
	Notifications NotificationsConfig
	Quotes        QuotesConfig
	Outbox        OutboxConfig
	Metrics       MetricsConfig
	Housekeeping  HousekeepingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
		return &cfg, nil
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MALDONADO_APP_ENV" required:"true"`
	Port         string `envconfig:"MALDONADO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MALDONADO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MALDONADO_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"MALDONADO_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MALDONADO_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN        string `envconfig:"MALDONADO_DB_DSN"`
	Driver     string `envconfig:"MALDONADO_DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"MALDONADO_SQLITE_PATH" default:"maldonado.db"`

	LegacyHost     string `envconfig:"MALDONADO_DB_HOST"`
	LegacyPort     int    `envconfig:"MALDONADO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MALDONADO_DB_USER"`
	LegacyPassword string `envconfig:"MALDONADO_DB_PASSWORD"`
	LegacyName     string `envconfig:"MALDONADO_DB_NAME"`
	LegacySSLMode  string `envconfig:"MALDONADO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MALDONADO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MALDONADO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MALDONADO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MALDONADO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MALDONADO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MALDONADO_REDIS_ADDR"`
	Password     string        `envconfig:"MALDONADO_REDIS_PASSWORD"`
	DB           int           `envconfig:"MALDONADO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MALDONADO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MALDONADO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MALDONADO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MALDONADO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MALDONADO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig defaults to a one day access token lifetime.
type JWTConfig struct {
	Secret            string `envconfig:"MALDONADO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MALDONADO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MALDONADO_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// AccessTTL returns the access token lifetime.
func (j JWTConfig) AccessTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MALDONADO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MALDONADO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MALDONADO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MALDONADO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MALDONADO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MALDONADO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"MALDONADO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MALDONADO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"MALDONADO_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"MALDONADO_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"MALDONADO_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	QuoteWindow        time.Duration `envconfig:"MALDONADO_RATE_LIMIT_QUOTE_WINDOW" default:"10m"`
	QuoteIPLimit       int           `envconfig:"MALDONADO_RATE_LIMIT_QUOTE_IP_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite         bool `envconfig:"MALDONADO_USE_SQLITE" default:"false"`
	AutoMigrate       bool `envconfig:"MALDONADO_AUTO_MIGRATE" default:"false"`
	QuoteNotification bool `envconfig:"MALDONADO_FEATURE_QUOTE_NOTIFICATIONS" default:"false"`
}

type CORSConfig struct {
	FrontendURL    string `envconfig:"MALDONADO_FRONTEND_URL" default:"http://localhost:3000"`
	ExtraOrigins   string `envconfig:"MALDONADO_CORS_EXTRA_ORIGINS"`
	MaxAgeSeconds  int    `envconfig:"MALDONADO_CORS_MAX_AGE" default:"300"`
	AllowAnyOrigin bool   `envconfig:"MALDONADO_CORS_ALLOW_ANY" default:"false"`
}

// Origins returns the frontend origin plus any comma separated extras.
func (c CORSConfig) Origins() []string {
	if c.AllowAnyOrigin {
		return []string{"*"}
	}
	origins := []string{}
	if o := strings.TrimSpace(c.FrontendURL); o != "" {
		origins = append(origins, strings.TrimRight(o, "/"))
	}
	for _, extra := range strings.Split(c.ExtraOrigins, ",") {
		if o := strings.TrimSpace(extra); o != "" {
			origins = append(origins, strings.TrimRight(o, "/"))
		}
	}
	return origins
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MALDONADO_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"MALDONADO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MALDONADO_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	QuoteTopic        string `envconfig:"MALDONADO_PUBSUB_QUOTE_TOPIC" default:"quote-events"`
	QuoteSubscription string `envconfig:"MALDONADO_PUBSUB_QUOTE_SUBSCRIPTION" default:"quote-events-notifications"`
	MaxOutstanding    int    `envconfig:"MALDONADO_PUBSUB_MAX_OUTSTANDING" default:"10"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"MALDONADO_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"MALDONADO_SENDGRID_FROM_EMAIL" default:"no-reply@maldonadorepuestos.com.ar"`
	FromName    string `envconfig:"MALDONADO_SENDGRID_FROM_NAME" default:"Maldonado Repuestos"`
}

type NotificationsConfig struct {
	AdminEmail string `envconfig:"MALDONADO_NOTIFICATIONS_ADMIN_EMAIL"`
}

type QuotesConfig struct {
	WhatsAppNumber string        `envconfig:"MALDONADO_WHATSAPP_NUMBER" default:"542614544128"`
	IdempotencyTTL time.Duration `envconfig:"MALDONADO_QUOTE_IDEMPOTENCY_TTL" default:"24h"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"MALDONADO_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"MALDONADO_OUTBOX_POLL_INTERVAL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"MALDONADO_OUTBOX_MAX_ATTEMPTS" default:"10"`
	ProcessedTTL   time.Duration `envconfig:"MALDONADO_EVENT_PROCESSED_TTL" default:"168h"`
}

// MetricsConfig controls the standalone /metrics listener of the workers.
// The API serves /metrics on its own router.
type MetricsConfig struct {
	Addr string `envconfig:"MALDONADO_METRICS_ADDR"`
}

// HousekeepingConfig drives the cron worker. Retention windows are measured
// from published_at for outbox rows and updated_at for cart lines.
type HousekeepingConfig struct {
	Interval        time.Duration `envconfig:"MALDONADO_HOUSEKEEPING_INTERVAL" default:"6h"`
	LockTTL         time.Duration `envconfig:"MALDONADO_HOUSEKEEPING_LOCK_TTL" default:"1h"`
	OutboxRetention time.Duration `envconfig:"MALDONADO_OUTBOX_RETENTION" default:"720h"`
	CartRetention   time.Duration `envconfig:"MALDONADO_CART_RETENTION" default:"2160h"`
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
