package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// PostgresConfig holds the pool settings for a hosted Postgres database.
type PostgresConfig struct {
	URL            string
	MaxConns       int
	IdleTimeout    time.Duration
	ConnectTimeout time.Duration
	Production     bool
}

// defaultConnectTimeout applies when DB_CONNECT_TIMEOUT is unset.
const defaultConnectTimeout = 10 * time.Second

// PostgresDSN returns the URL with sslmode set (require in production,
// disable otherwise) and connect_timeout in whole seconds. Values already in
// the URL win.
func PostgresDSN(rawURL string, production bool, connectTimeout time.Duration) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	q := u.Query()
	if q.Get("sslmode") == "" {
		if production {
			q.Set("sslmode", "require")
		} else {
			q.Set("sslmode", "disable")
		}
	}
	if q.Get("connect_timeout") == "" {
		if connectTimeout <= 0 {
			connectTimeout = defaultConnectTimeout
		}
		secs := int(connectTimeout.Seconds())
		if secs < 1 {
			secs = 1
		}
		q.Set("connect_timeout", strconv.Itoa(secs))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// NewPostgresRepository connects with a bounded pool, pings with a timeout
// and migrates the schema.
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*Repository, error) {
	dsn, err := PostgresDSN(cfg.URL, cfg.Production, cfg.ConnectTimeout)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
		db.SetMaxIdleConns(cfg.MaxConns)
	}
	if cfg.IdleTimeout > 0 {
		db.SetConnMaxIdleTime(cfg.IdleTimeout)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if _, err := db.ExecContext(pingCtx, "SELECT 1"); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := RunMigrations(DialectPostgres, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return newRepository(db, DialectPostgres), nil
}
