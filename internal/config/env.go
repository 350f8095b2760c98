package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Duration wraps time.Duration for clearer type usage in Config.
type Duration = time.Duration

// envValue returns the trimmed value of key; ok is false when unset or blank.
func envValue(key string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	return raw, raw != ""
}

// envParsed falls back to def when key is blank or parse rejects the value.
func envParsed[T any](key string, def T, parse func(string) (T, bool)) T {
	raw, ok := envValue(key)
	if !ok {
		return def
	}
	if v, ok := parse(raw); ok {
		return v
	}
	return def
}

func envOrDefault(key, defaultValue string) string {
	return envParsed(key, defaultValue, func(s string) (string, bool) { return s, true })
}

func durationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	return envParsed(key, defaultValue, parseDuration)
}

func intEnvOrDefault(key string, defaultValue int) int {
	return envParsed(key, defaultValue, parsePositiveInt)
}

func boolEnvOrDefault(key string, defaultValue bool) bool {
	return envParsed(key, defaultValue, parseBool)
}

// parseDuration accepts Go durations ("90s", "2m") or whole seconds ("90").
func parseDuration(s string) (time.Duration, bool) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, secs > 0
	}
	d, err := time.ParseDuration(s)
	return d, err == nil && d > 0
}

func parsePositiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil && n > 0
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
