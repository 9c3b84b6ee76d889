// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package database holds the command-line client's local state: a small
// SQLite file whose schema is managed by embedded goose migrations.
package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vinovest/sqlx"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// DefaultPath is the local state database used by the command-line client.
const DefaultPath = "./data/client.db"

// The state file stores a bearer credential.
const (
	dirMode  fs.FileMode = 0o700
	fileMode fs.FileMode = 0o600
)

// Open opens (or creates) the state database at dsn and migrates it.
// An empty dsn means DefaultPath; ":memory:" gives a throwaway database.
func Open(dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		dsn = DefaultPath
	}

	if !isMemory(dsn) {
		if err := prepareFile(dsn); err != nil {
			return nil, err
		}
	}

	conn, err := sqlx.Open("sqlite", withParams(dsn))
	if err != nil {
		return nil, err
	}

	// One process, one short-lived command: a single connection also keeps
	// an in-memory database on one schema.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if _, err := conn.ExecContext(context.Background(), "PRAGMA journal_mode = WAL"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}

	if err := RunMigrations(conn.DB); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return conn, nil
}

func isMemory(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// prepareFile creates the parent directory and an empty private file, so
// SQLite never creates the database with the umask's permissions.
func prepareFile(dsn string) error {
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return f.Close()
}

// withParams appends the driver parameters the client relies on unless the
// caller set them.
func withParams(dsn string) string {
	params := []struct{ key, param string }{
		{"_txlock", "_txlock=immediate"},
		{"busy_timeout", "_pragma=busy_timeout(5000)"},
	}
	for _, p := range params {
		if strings.Contains(dsn, p.key) {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + p.param
	}
	return dsn
}
