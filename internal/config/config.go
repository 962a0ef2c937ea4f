// Package config loads service configuration from an optional YAML file and
// SATPASS_-prefixed environment variables, with environment taking priority.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all tunables for the pass-prediction service.
type Config struct {
	ListenAddr string
	TrustProxy bool
	LogLevel   string

	AuthEnabled bool
	AuthToken   string

	TLESourceURL       string
	TLEExtraURLs       []string
	TLECacheDir        string
	TLECacheMaxFiles   int
	TLERefreshInterval time.Duration

	StationCatalogPath string

	DefaultHorizon      time.Duration
	DefaultStep         time.Duration
	DefaultThresholdDeg float64
	MaxSamples          int
	Workers             int

	RateLimitPerMinute int

	ResultCacheTTL        time.Duration
	ResultCacheMaxEntries int
}

// Load builds the configuration. When configFile is non-empty it must exist
// and parse; environment variables override file values either way.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SATPASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen.addr", ":8080")
	v.SetDefault("trust.proxy", false)
	v.SetDefault("log.level", "info")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.token", "")

	v.SetDefault("tle.source_url", "")
	v.SetDefault("tle.extra_urls", []string{})
	v.SetDefault("tle.cache_dir", "data/tle")
	v.SetDefault("tle.cache_max_files", 5)
	v.SetDefault("tle.refresh_interval", 6*time.Hour)

	v.SetDefault("stations.path", "")

	v.SetDefault("predict.horizon", 24*time.Hour)
	v.SetDefault("predict.step", 30*time.Second)
	v.SetDefault("predict.threshold_deg", 10.0)
	v.SetDefault("predict.max_samples", 100_000)
	v.SetDefault("predict.workers", 0)

	v.SetDefault("ratelimit.per_minute", 120)

	v.SetDefault("result_cache.ttl", time.Minute)
	v.SetDefault("result_cache.max_entries", 1024)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		ListenAddr: v.GetString("listen.addr"),
		TrustProxy: v.GetBool("trust.proxy"),
		LogLevel:   v.GetString("log.level"),

		AuthEnabled: v.GetBool("auth.enabled"),
		AuthToken:   v.GetString("auth.token"),

		TLESourceURL:       v.GetString("tle.source_url"),
		TLEExtraURLs:       v.GetStringSlice("tle.extra_urls"),
		TLECacheDir:        v.GetString("tle.cache_dir"),
		TLECacheMaxFiles:   v.GetInt("tle.cache_max_files"),
		TLERefreshInterval: v.GetDuration("tle.refresh_interval"),

		StationCatalogPath: v.GetString("stations.path"),

		DefaultHorizon:      v.GetDuration("predict.horizon"),
		DefaultStep:         v.GetDuration("predict.step"),
		DefaultThresholdDeg: v.GetFloat64("predict.threshold_deg"),
		MaxSamples:          v.GetInt("predict.max_samples"),
		Workers:             v.GetInt("predict.workers"),

		RateLimitPerMinute: v.GetInt("ratelimit.per_minute"),

		ResultCacheTTL:        v.GetDuration("result_cache.ttl"),
		ResultCacheMaxEntries: v.GetInt("result_cache.max_entries"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.AuthEnabled && c.AuthToken == "" {
		return fmt.Errorf("auth enabled but no token configured")
	}
	if c.DefaultStep <= 0 {
		return fmt.Errorf("predict step must be positive, got %v", c.DefaultStep)
	}
	if c.DefaultHorizon <= 0 {
		return fmt.Errorf("predict horizon must be positive, got %v", c.DefaultHorizon)
	}
	if c.MaxSamples <= 0 {
		return fmt.Errorf("max samples must be positive, got %d", c.MaxSamples)
	}
	return nil
}
