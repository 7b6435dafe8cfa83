package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"financas/internal/config"
	"financas/internal/core"
	"financas/internal/store"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name          string
		cfg           Config
		wantErr       bool
		notConfigured bool
	}{
		{"memory", Config{Type: MemoryBackend}, false, false},
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true, true},
		{"postgres without url", Config{Type: PostgresBackend}, true, true},
		{"unknown type", Config{Type: "sheets"}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := errors.Is(err, store.ErrNotConfigured); got != tt.notConfigured {
				t.Errorf("errors.Is(ErrNotConfigured) = %v, want %v", got, tt.notConfigured)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	app := &config.Config{DataBackend: "postgres", DatabaseURL: "postgres://db/app", DBMaxConns: 10, AppEnv: "production"}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != PostgresBackend || cfg.MaxConns != 10 || !cfg.Production {
		t.Errorf("unexpected config %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestFactory_SQLite(t *testing.T) {
	f := NewFactory(nil)
	res, err := f.CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "app.db"),
	})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()

	if _, err := res.Store.Insert(context.Background(), core.NewTransaction{
		Type: core.Income, Category: core.CategorySalary, Amount: 1, Date: "2024-01-01",
	}); err != nil {
		t.Fatalf("insert through sqlite backend: %v", err)
	}
}

// countingFactory fails until ok is set.
type countingFactory struct {
	calls int
	ok    bool
}

func (f *countingFactory) CreateBackend(ctx context.Context, cfg Config) (*BackendResult, error) {
	f.calls++
	if !f.ok {
		return nil, errors.New("connection refused")
	}
	return NewFactory(nil).CreateBackend(ctx, cfg)
}

func TestResolver_RetriesUntilResolved(t *testing.T) {
	factory := &countingFactory{}
	r := NewResolver(factory, StaticLoader(Config{Type: MemoryBackend}), nil)
	ctx := context.Background()

	if _, err := r.List(ctx); err == nil {
		t.Fatal("expected failure while backend is down")
	}
	factory.ok = true
	if _, err := r.List(ctx); err != nil {
		t.Fatalf("second attempt should resolve: %v", err)
	}
	if _, err := r.List(ctx); err != nil {
		t.Fatal(err)
	}
	if factory.calls != 2 {
		t.Errorf("resolved backend should be reused, factory called %d times", factory.calls)
	}
	if err := r.Ready(ctx); err != nil {
		t.Errorf("Ready() = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestEnvLoader_MissingVariables(t *testing.T) {
	t.Setenv("DATA_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	r := NewResolver(NewFactory(nil), EnvLoader(), nil)
	_, err := r.List(context.Background())
	if !errors.Is(err, store.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	// Setting the variable is enough for the loader; the connection itself
	// is not attempted here.
	t.Setenv("DATA_BACKEND", "memory")
	if _, err := r.List(context.Background()); err != nil {
		t.Fatalf("memory backend should resolve after reconfiguration: %v", err)
	}
}
