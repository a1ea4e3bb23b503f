package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds all service settings, populated from environment variables
// over built-in defaults (env > default precedence).
type Config struct {
	HTTPAddr        string        `koanf:"http_addr"`
	LogLevel        string        `koanf:"log_level"`
	LogFormat       string        `koanf:"log_format"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Upstream DWD WFS.
	WFSBaseURL      string        `koanf:"wfs_base"`
	WFSVersion      string        `koanf:"wfs_version"`
	TypeName        string        `koanf:"type_name"`
	UpstreamTimeout time.Duration `koanf:"http_timeout"`
	UserAgent       string        `koanf:"user_agent"`

	// Request shaping.
	DefaultMaxFeatures int `koanf:"max_features"`

	// Result cache.
	CacheTTL      time.Duration `koanf:"cache_ttl"`
	CacheCapacity int           `koanf:"max_cache_items"`

	// Display time zone for *_local timestamps.
	LocalTZ string `koanf:"local_tz"`

	// Optional Kafka fan-out of normalized warnings.
	KafkaEnabled bool     `koanf:"kafka_enabled"`
	KafkaBrokers []string `koanf:"kafka_brokers"`
	KafkaTopic   string   `koanf:"kafka_topic"`
}

// envKeys maps the environment surface onto config keys. Unknown variables
// map to "" and are ignored by the provider. The DWD_* and cache names match
// the service's historical deployment environment.
var envKeys = map[string]string{
	"HTTP_ADDR":        "http_addr",
	"LOG_LEVEL":        "log_level",
	"LOG_FORMAT":       "log_format",
	"SHUTDOWN_TIMEOUT": "shutdown_timeout",
	"DWD_WFS_BASE":     "wfs_base",
	"DWD_WFS_VERSION":  "wfs_version",
	"DWD_TYPENAME":     "type_name",
	"HTTP_TIMEOUT":     "http_timeout",
	"USER_AGENT":       "user_agent",
	"MAX_FEATURES":     "max_features",
	"CACHE_TTL":        "cache_ttl",
	"MAX_CACHE_ITEMS":  "max_cache_items",
	"LOCAL_TZ":         "local_tz",
	"KAFKA_ENABLED":    "kafka_enabled",
	"KAFKA_BROKERS":    "kafka_brokers",
	"KAFKA_TOPIC":      "kafka_topic",
}

func defaults() map[string]any {
	return map[string]any{
		"http_addr":        ":8080",
		"log_level":        "info",
		"log_format":       "json",
		"shutdown_timeout": "10s",
		"wfs_base":         "https://maps.dwd.de/geoserver/dwd/ows",
		"wfs_version":      "2.0.0",
		"type_name":        "dwd:Warnungen_Gemeinden_vereinigt",
		"http_timeout":     "25s",
		"user_agent":       "dwd-warnings-service/1.0 (+https://data-tales.dev/)",
		"max_features":     800,
		"cache_ttl":        "20s",
		"max_cache_items":  200,
		"local_tz":         "Europe/Berlin",
		"kafka_enabled":    false,
		"kafka_brokers":    "localhost:9092",
		"kafka_topic":      "dwd-warnings",
	}
}

// Load reads configuration from environment variables, applying defaults
// where unset, and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}
	if err := k.Load(env.Provider("", ".", func(s string) string { return envKeys[s] }), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.WFSBaseURL == "" {
		return errors.New("DWD_WFS_BASE is required")
	}
	if c.TypeName == "" {
		return errors.New("DWD_TYPENAME is required")
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("invalid HTTP_TIMEOUT")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	if c.DefaultMaxFeatures <= 0 {
		return errors.New("invalid MAX_FEATURES")
	}
	if c.CacheTTL <= 0 {
		return errors.New("invalid CACHE_TTL")
	}
	if c.CacheCapacity <= 0 {
		return errors.New("invalid MAX_CACHE_ITEMS")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if c.KafkaEnabled && c.KafkaTopic == "" {
		return errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is not set")
	}
	return nil
}
