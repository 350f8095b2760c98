package config

import "strings"

// Simulation engine kinds.
const (
	EngineFixture = "fixture"
	EngineHTTP    = "http"
)

// EngineConfig controls how games are simulated.
type EngineConfig struct {
	Kind          string
	URL           string
	Token         string
	Timeout       Duration
	RetryAttempts int
}

func loadEngine() EngineConfig {
	return EngineConfig{
		Kind:          strings.ToLower(envOrDefault(envSimEngine, defaultSimEngine)),
		URL:           envOrDefault(envSimEngineURL, ""),
		Token:         envOrDefault(envSimEngineToken, ""),
		Timeout:       durationEnvOrDefault(envSimTimeout, defaultSimTimeout),
		RetryAttempts: intEnvOrDefault(envSimRetries, defaultSimRetries),
	}
}
