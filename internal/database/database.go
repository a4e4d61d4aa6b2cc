// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

// Package database provides the DuckDB-backed media store access layer:
// connection management, schema bootstrap, the named-parameter query builder,
// and the read-side queries used by the discovery and recommendation engines.
//
// The whole layer is read-mostly: the tables are populated by the external
// ETL pipeline, and every query here is a read-side projection.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/alp82/goodwatch-monorepo-sub000/internal/config"
	"github.com/alp82/goodwatch-monorepo-sub000/internal/logging"
)

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New creates a database connection, applies resource settings, and ensures
// the schema exists. An empty cfg.Path opens an in-memory database.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	if cfg.Path != "" {
		// DuckDB does not create parent directories itself.
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	conn, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}

	if err := db.applySettings(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := db.initSchema(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Str("max_memory", cfg.MaxMemory).
		Msg("media store ready")

	return db, nil
}

// applySettings configures DuckDB memory and thread limits.
func (db *DB) applySettings() error {
	threads := db.cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	if _, err := db.conn.Exec(fmt.Sprintf("SET threads = %d", threads)); err != nil {
		return fmt.Errorf("failed to set threads: %w", err)
	}

	if db.cfg.MaxMemory != "" {
		if _, err := db.conn.Exec("SET memory_limit = ?", db.cfg.MaxMemory); err != nil {
			return fmt.Errorf("failed to set memory limit: %w", err)
		}
	}

	return nil
}

// Conn exposes the underlying connection for schema seeding in tests.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// queryCtx derives a context bounded by the configured query timeout.
func (db *DB) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := db.cfg.QueryTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}
