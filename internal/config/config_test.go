package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Equal(t, "https://maps.dwd.de/geoserver/dwd/ows", cfg.WFSBaseURL)
	assert.Equal(t, "2.0.0", cfg.WFSVersion)
	assert.Equal(t, "dwd:Warnungen_Gemeinden_vereinigt", cfg.TypeName)
	assert.Equal(t, 25*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 800, cfg.DefaultMaxFeatures)

	assert.Equal(t, 20*time.Second, cfg.CacheTTL)
	assert.Equal(t, 200, cfg.CacheCapacity)
	assert.Equal(t, "Europe/Berlin", cfg.LocalTZ)

	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, "dwd-warnings", cfg.KafkaTopic)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DWD_WFS_BASE", "https://wfs.example.test/ows")
	t.Setenv("DWD_TYPENAME", "dwd:Warnungen_Landkreise")
	t.Setenv("MAX_FEATURES", "250")
	t.Setenv("CACHE_TTL", "45s")
	t.Setenv("MAX_CACHE_ITEMS", "50")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "https://wfs.example.test/ows", cfg.WFSBaseURL)
	assert.Equal(t, "dwd:Warnungen_Landkreise", cfg.TypeName)
	assert.Equal(t, 250, cfg.DefaultMaxFeatures)
	assert.Equal(t, 45*time.Second, cfg.CacheTTL)
	assert.Equal(t, 50, cfg.CacheCapacity)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_KafkaBrokerList(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_UnrelatedEnvIgnored(t *testing.T) {
	t.Setenv("PATH_INFO", "something")
	t.Setenv("DWD_UNKNOWN_SETTING", "x")

	_, err := Load()
	require.NoError(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "empty wfs base", key: "DWD_WFS_BASE", value: ""},
		{name: "empty type name", key: "DWD_TYPENAME", value: ""},
		{name: "zero timeout", key: "HTTP_TIMEOUT", value: "0s"},
		{name: "zero max features", key: "MAX_FEATURES", value: "0"},
		{name: "negative cache ttl", key: "CACHE_TTL", value: "-1s"},
		{name: "zero cache capacity", key: "MAX_CACHE_ITEMS", value: "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate_KafkaCrossChecks(t *testing.T) {
	cfg := &Config{
		WFSBaseURL:         "https://maps.dwd.de/geoserver/dwd/ows",
		TypeName:           "dwd:Warnungen_Gemeinden_vereinigt",
		UpstreamTimeout:    time.Second,
		ShutdownTimeout:    time.Second,
		DefaultMaxFeatures: 800,
		CacheTTL:           time.Second,
		CacheCapacity:      10,
		KafkaEnabled:       true,
	}

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")

	cfg.KafkaBrokers = []string{"localhost:9092"}
	err = cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_TOPIC")

	cfg.KafkaTopic = "dwd-warnings"
	assert.NoError(t, cfg.validate())
}
