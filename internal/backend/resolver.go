package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"financas/internal/config"
	"financas/internal/core"
	"financas/internal/store"
)

// ConfigLoader produces the backend configuration on demand.
type ConfigLoader func() (Config, error)

// EnvLoader re-reads the environment on every call so that variables set
// after startup are picked up by the next attempt.
func EnvLoader() ConfigLoader {
	return func() (Config, error) {
		appCfg := config.Load()
		if st := config.CheckEnvironment(appCfg); !st.Configured() {
			return Config{}, fmt.Errorf("missing %s: %w", strings.Join(st.MissingNames(), ", "), store.ErrNotConfigured)
		}
		return FromAppConfig(appCfg)
	}
}

// StaticLoader always returns cfg.
func StaticLoader(cfg Config) ConfigLoader {
	return func() (Config, error) { return cfg, nil }
}

// Resolver is a store.Store that creates the real backend on first use. A
// failed resolution is not cached: every call retries, so a dashboard retry
// re-checks configuration and connectivity.
type Resolver struct {
	factory Factory
	load    ConfigLoader
	logger  *slog.Logger

	mu     sync.Mutex
	result *BackendResult
}

var _ store.Store = (*Resolver)(nil)

func NewResolver(factory Factory, load ConfigLoader, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{factory: factory, load: load, logger: logger}
}

// Resolve returns the backend, creating it if needed.
func (r *Resolver) Resolve(ctx context.Context) (store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result != nil {
		return r.result.Store, nil
	}

	cfg, err := r.load()
	if err != nil {
		return nil, err
	}
	res, err := r.factory.CreateBackend(ctx, cfg)
	if err != nil {
		r.logger.WarnContext(ctx, "Backend not available", "backend", cfg.Type.String(), "error", err)
		return nil, err
	}
	r.result = res
	return res.Store, nil
}

// Ready resolves the backend and pings it when it supports pinging.
func (r *Resolver) Ready(ctx context.Context) error {
	st, err := r.Resolve(ctx)
	if err != nil {
		return err
	}
	if p, ok := st.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (r *Resolver) List(ctx context.Context) ([]core.Transaction, error) {
	st, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return st.List(ctx)
}

func (r *Resolver) Insert(ctx context.Context, in core.NewTransaction) (core.Transaction, error) {
	st, err := r.Resolve(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	return st.Insert(ctx, in)
}

func (r *Resolver) Get(ctx context.Context, id string) (core.Transaction, error) {
	st, err := r.Resolve(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	return st.Get(ctx, id)
}

func (r *Resolver) PendingSync(ctx context.Context, limit int) ([]core.Transaction, error) {
	st, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return st.PendingSync(ctx, limit)
}

func (r *Resolver) IsSynced(ctx context.Context, id string) (bool, error) {
	st, err := r.Resolve(ctx)
	if err != nil {
		return false, err
	}
	return st.IsSynced(ctx, id)
}

func (r *Resolver) MarkSynced(ctx context.Context, id string) error {
	st, err := r.Resolve(ctx)
	if err != nil {
		return err
	}
	return st.MarkSynced(ctx, id)
}

func (r *Resolver) MarkSyncError(ctx context.Context, id string) error {
	st, err := r.Resolve(ctx)
	if err != nil {
		return err
	}
	return st.MarkSyncError(ctx, id)
}

func (r *Resolver) ListAccounts(ctx context.Context) ([]core.Account, error) {
	st, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return st.ListAccounts(ctx)
}

func (r *Resolver) InsertAccount(ctx context.Context, a core.Account) (core.Account, error) {
	st, err := r.Resolve(ctx)
	if err != nil {
		return core.Account{}, err
	}
	return st.InsertAccount(ctx, a)
}

func (r *Resolver) ListGoals(ctx context.Context) ([]core.Goal, error) {
	st, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return st.ListGoals(ctx)
}

func (r *Resolver) InsertGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	st, err := r.Resolve(ctx)
	if err != nil {
		return core.Goal{}, err
	}
	return st.InsertGoal(ctx, g)
}

func (r *Resolver) ListCompanies(ctx context.Context) ([]core.Company, error) {
	st, err := r.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return st.ListCompanies(ctx)
}

func (r *Resolver) InsertCompany(ctx context.Context, c core.Company) (core.Company, error) {
	st, err := r.Resolve(ctx)
	if err != nil {
		return core.Company{}, err
	}
	return st.InsertCompany(ctx, c)
}

// Close runs the backend cleanup if one was created.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result == nil || r.result.Cleanup == nil {
		return nil
	}
	err := r.result.Cleanup()
	r.result = nil
	return err
}
