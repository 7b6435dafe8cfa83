package backend

import (
	"fmt"

	"financas/internal/config"
	"financas/internal/store"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:           backendType,
		SeedFile:       appConfig.SeedFile,
		SQLiteDBPath:   appConfig.SQLiteDBPath,
		DatabaseURL:    appConfig.DatabaseURL,
		MaxConns:       appConfig.DBMaxConns,
		IdleTimeout:    appConfig.DBIdleTimeout,
		ConnectTimeout: appConfig.DBConnectTimeout,
		Production:     appConfig.IsProduction(),
	}, nil
}

// Validate reports missing connection settings as store.ErrNotConfigured so
// callers can tell them apart from connection failures.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLITE_DB_PATH is required for sqlite backend: %w", store.ErrNotConfigured)
		}
	case PostgresBackend:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres backend: %w", store.ErrNotConfigured)
		}
	}
	return nil
}

// GetBackendTypes returns all valid backend types.
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SQLiteBackend, PostgresBackend}
}
