package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB holds the connection pool the sink and the listing queries share.
type DB struct {
	Pool *pgxpool.Pool
}

// PoolOptions tunes the pool. Zero values keep the pgx defaults.
type PoolOptions struct {
	MaxConns       int32
	ConnectTimeout time.Duration
}

// Connect creates a pool for connString and checks it with a ping.
func Connect(ctx context.Context, connString string, opts PoolOptions) (*DB, error) {
	config, err := poolConfig(connString, opts)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

func poolConfig(connString string, opts PoolOptions) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.ConnectTimeout > 0 {
		config.ConnConfig.ConnectTimeout = opts.ConnectTimeout
	}
	return config, nil
}

// EnsureDatabase creates the database named in connString when it does not
// exist yet. It connects through the postgres maintenance database, since
// the target cannot be reached before it exists.
func EnsureDatabase(ctx context.Context, connString string) (created bool, err error) {
	config, target, err := maintenanceConfig(connString)
	if err != nil {
		return false, err
	}

	conn, err := pgx.ConnectConfig(ctx, config)
	if err != nil {
		return false, fmt.Errorf("failed to connect to maintenance database: %w", err)
	}
	defer conn.Close(ctx)

	var exists bool
	err = conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, target).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up database %s: %w", target, err)
	}
	if exists {
		return false, nil
	}

	// CREATE DATABASE takes no bind parameters.
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{target}.Sanitize()); err != nil {
		return false, fmt.Errorf("failed to create database %s: %w", target, err)
	}
	return true, nil
}

// maintenanceConfig points connString at the postgres database and returns
// the database it originally named.
func maintenanceConfig(connString string) (*pgx.ConnConfig, string, error) {
	config, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, "", fmt.Errorf("invalid database url: %w", err)
	}
	target := config.Database
	if target == "" || target == "postgres" {
		return nil, "", fmt.Errorf("database url names no database to create")
	}
	config.Database = "postgres"
	return config, target, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}
