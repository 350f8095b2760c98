package config

import "strings"

// Store kinds.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Kind         string
	DatabaseURL  string
	MaxOpenConns int
	MaxIdleConns int
}

func loadStore() StoreConfig {
	return StoreConfig{
		Kind:         strings.ToLower(envOrDefault(envStore, defaultStore)),
		DatabaseURL:  envOrDefault(envDatabaseURL, ""),
		MaxOpenConns: intEnvOrDefault(envDBMaxOpenConns, defaultDBMaxOpenConns),
		MaxIdleConns: intEnvOrDefault(envDBMaxIdleConns, defaultDBMaxIdleConns),
	}
}
