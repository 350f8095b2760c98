package config

import "github.com/preston-bernstein/gridiron-service/internal/metrics"

// MetricsConfig controls telemetry export; it is handed to metrics.Setup as-is.
type MetricsConfig = metrics.TelemetryConfig

// Config holds runtime configuration for the server.
type Config struct {
	Port         string
	TickSecret   string
	TickInterval Duration
	LeagueFile   string
	Store        StoreConfig
	Engine       EngineConfig
	Timing       TimingConfig
	Metrics      MetricsConfig
	Log          LogConfig
}

// LogConfig selects log level and handler format.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:         envOrDefault(envPort, defaultPort),
		TickSecret:   envOrDefault(envTickSecret, ""),
		TickInterval: durationEnvOrDefault(envTickInterval, defaultTickInterval),
		LeagueFile:   envOrDefault(envLeagueFile, ""),
		Store:        loadStore(),
		Engine:       loadEngine(),
		Timing:       loadTiming(),
		Metrics:      loadMetrics(),
		Log: LogConfig{
			Level:  envOrDefault(envLogLevel, defaultLogLevel),
			Format: envOrDefault(envLogFormat, defaultLogFormat),
		},
	}
}

func loadMetrics() MetricsConfig {
	return MetricsConfig{
		Enabled:      boolEnvOrDefault(envMetricsOn, true),
		Port:         envOrDefault(envMetricsPort, defaultMetricsPort),
		ServiceName:  envOrDefault(envOtelService, defaultServiceName),
		OtlpEndpoint: envOrDefault(envOtelEndpoint, ""),
		OtlpInsecure: boolEnvOrDefault(envOtelInsecure, true),
	}
}
