package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Storage backends available to the storefront SDK.
const (
	ClientStorageFile   = "file"
	ClientStorageRedis  = "redis"
	ClientStorageMemory = "memory"
)

// ClientConfig configures the storefront SDK and the quotecart CLI.
type ClientConfig struct {
	APIURL            string        `envconfig:"MALDONADO_CLIENT_API_URL" default:"http://localhost:8080/api"`
	Timeout           time.Duration `envconfig:"MALDONADO_CLIENT_TIMEOUT" default:"10s"`
	MaxRetries        uint64        `envconfig:"MALDONADO_CLIENT_MAX_RETRIES" default:"2"`
	RetryBase         time.Duration `envconfig:"MALDONADO_CLIENT_RETRY_BASE" default:"200ms"`
	CacheSize         int           `envconfig:"MALDONADO_CLIENT_CACHE_SIZE" default:"256"`
	Storage           string        `envconfig:"MALDONADO_CLIENT_STORAGE" default:"file"`
	DataDir           string        `envconfig:"MALDONADO_CLIENT_DATA_DIR" default:".maldonado"`
	RedisURL          string        `envconfig:"MALDONADO_CLIENT_REDIS_URL"`
	WhatsAppNumber    string        `envconfig:"MALDONADO_WHATSAPP_NUMBER" default:"542614544128"`
	ConfirmationDelay time.Duration `envconfig:"MALDONADO_CLIENT_CONFIRMATION_DELAY" default:"2500ms"`
	SearchDebounce    time.Duration `envconfig:"MALDONADO_CLIENT_SEARCH_DEBOUNCE" default:"300ms"`
	LogLevel          string        `envconfig:"MALDONADO_LOG_LEVEL" default:"warn"`
}

// LoadClient reads the SDK configuration from the environment.
func LoadClient() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing client config: %w", err)
	}
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	switch cfg.Storage {
	case ClientStorageFile, ClientStorageMemory:
	case ClientStorageRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("%s is required when storage is %q", EnvClientRedisURL, ClientStorageRedis)
		}
	default:
		return nil, fmt.Errorf("unsupported client storage %q", cfg.Storage)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("%s must be positive", EnvClientTimeout)
	}
	return &cfg, nil
}
