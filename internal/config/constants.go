package config

import "time"

const (
	envPort            = "PORT"
	envTickSecret      = "TICK_SECRET"
	envTickInterval    = "TICK_INTERVAL"
	envLeagueFile      = "LEAGUE_FILE"
	envStore           = "STORE"
	envDatabaseURL     = "DATABASE_URL"
	envDBMaxOpenConns  = "DB_MAX_OPEN_CONNS"
	envDBMaxIdleConns  = "DB_MAX_IDLE_CONNS"
	envSimEngine       = "SIM_ENGINE"
	envSimEngineURL    = "SIM_ENGINE_URL"
	envSimEngineToken  = "SIM_ENGINE_TOKEN"
	envSimTimeout      = "SIM_ENGINE_TIMEOUT"
	envSimRetries      = "SIM_RETRY_ATTEMPTS"
	envOffseason       = "OFFSEASON_DURATION"
	envIntermission    = "INTERMISSION"
	envWeekBreak       = "WEEK_BREAK"
	envBroadcastBuffer = "BROADCAST_BUFFER"
	envDefaultDuration = "DEFAULT_GAME_DURATION"
	envMaxDuration     = "MAX_GAME_DURATION"
	envMetricsPort     = "METRICS_PORT"
	envMetricsOn       = "METRICS_ENABLED"
	envOtelEndpoint    = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService     = "OTEL_SERVICE_NAME"
	envOtelInsecure    = "OTEL_EXPORTER_OTLP_INSECURE"
	envLogLevel        = "LOG_LEVEL"
	envLogFormat       = "LOG_FORMAT"

	defaultPort = "4000"
	// Zero leaves ticking to the external trigger.
	defaultTickInterval    = Duration(0)
	defaultStore           = StoreMemory
	defaultDBMaxOpenConns  = 10
	defaultDBMaxIdleConns  = 5
	defaultSimEngine       = EngineFixture
	defaultSimTimeout      = 30 * Duration(time.Second)
	defaultSimRetries      = 3
	defaultOffseason       = 6 * Duration(time.Hour)
	defaultIntermission    = 3 * Duration(time.Minute)
	defaultWeekBreak       = 30 * Duration(time.Minute)
	defaultBroadcastBuffer = 60 * Duration(time.Second)
	defaultGameDuration    = 15 * Duration(time.Minute)
	defaultMaxGameDuration = 2 * Duration(time.Hour)
	defaultMetricsPort     = "9090"
	defaultServiceName     = "gridiron-service"
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
)
