package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v4/pgxpool"
)

var (
	ErrConnectFailed = errors.New("database connection failed")
	ErrMigrateFailed = errors.New("database migration failed")
	ErrPingFailed    = errors.New("database ping failed")
)

type Config struct {
	ConnString     string
	MigrationsPath string
	// MaxConns caps the pool; zero keeps the pgx default.
	MaxConns int32
}

// DB is the Postgres device store. It implements registry.Store.
type DB struct {
	connString     string
	migrationsPath string
	pool           *pgxpool.Pool
}

// Migrate brings the schema up to the latest version found under the
// migrations path.
func (db *DB) Migrate(ctx context.Context) error {
	const fn = "DB:Migrate"
	slog.InfoContext(ctx, "Running database migrations...", "path", db.migrationsPath)

	m, err := migrate.New("file://"+db.migrationsPath, db.connString)
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrMigrateFailed, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s:%w:%w", fn, ErrMigrateFailed, err)
	}
	version, dirty, err := m.Version()
	if err == nil {
		slog.InfoContext(ctx, "Database schema ready", "version", version, "dirty", dirty)
	}
	return nil
}

func Init(ctx context.Context, cfg Config) (*DB, error) {
	const fn = "DB:Init"
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrConnectFailed, err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.ConnectConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%s:%w:%w", fn, ErrConnectFailed, err)
	}

	db := &DB{
		pool:           pool,
		connString:     cfg.ConnString,
		migrationsPath: cfg.MigrationsPath,
	}
	if err := db.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s:%w", fn, err)
	}
	return db, nil
}

func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("DB:Ping:%w:%w", ErrPingFailed, err)
	}
	return nil
}

func (db *DB) Close() {
	db.pool.Close()
}
