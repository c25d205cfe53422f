package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Cache    CacheConfig
	Zones    ZonesConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type UpstreamConfig struct {
	AlertsURL    string
	UserAgent    string
	AlertTimeout time.Duration
	ZoneTimeout  time.Duration
}

type CacheConfig struct {
	TTL time.Duration
}

type ZonesConfig struct {
	PrefetchWorkers int
	FallbackEvents  []string
}

type LoggingConfig struct {
	Level string
}

// Hazard types for which zone-based geometry reconstruction is an
// acceptable visual proxy. Alerts outside this list keep whatever
// geometry upstream gave them, including none.
var defaultFallbackEvents = []string{
	"winter weather advisory",
	"winter storm warning",
	"winter storm watch",
	"blizzard warning",
	"wind chill advisory",
	"wind chill warning",
	"freeze warning",
	"hard freeze warning",
	"frost advisory",
	"ice storm warning",
	"areal flood advisory",
	"areal flood warning",
	"areal flood watch",
	"dense fog advisory",
	"wind advisory",
	"high wind warning",
	"red flag warning",
	"fire weather watch",
	"special weather statement",
	"heat advisory",
	"excessive heat warning",
	"snow squall warning",
}

// DefaultFallbackEvents returns a copy of the built-in fallback list.
func DefaultFallbackEvents() []string {
	return append([]string(nil), defaultFallbackEvents...)
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Upstream: UpstreamConfig{
			AlertsURL:    getEnv("ALERTS_URL", "https://api.weather.gov/alerts/active"),
			UserAgent:    getEnv("USER_AGENT", "MaxWeatherDashboard (example@example.com)"),
			AlertTimeout: getEnvDuration("ALERT_TIMEOUT", 15*time.Second),
			ZoneTimeout:  getEnvDuration("ZONE_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			TTL: getEnvDuration("CACHE_TTL", 60*time.Second),
		},
		Zones: ZonesConfig{
			PrefetchWorkers: getEnvInt("ZONE_PREFETCH_WORKERS", 4),
			FallbackEvents:  getEnvList("FALLBACK_EVENTS", defaultFallbackEvents),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Upstream.AlertsURL == "" {
		return fmt.Errorf("alerts URL must not be empty")
	}
	if c.Upstream.UserAgent == "" {
		return fmt.Errorf("user agent must not be empty")
	}
	if c.Cache.TTL < time.Second {
		return fmt.Errorf("cache TTL must be at least 1 second")
	}
	if c.Zones.PrefetchWorkers < 1 {
		return fmt.Errorf("zone prefetch workers must be at least 1")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if val := os.Getenv(key); val != "" {
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, strings.ToLower(p))
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
