// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vinovest/sqlx"
)

// SQLitePersister stores the credential in the metadata table of a local database.
type SQLitePersister struct {
	db *sqlx.DB
}

// NewSQLitePersister creates a persister on a database opened with database.Open.
func NewSQLitePersister(db *sqlx.DB) *SQLitePersister {
	return &SQLitePersister{db: db}
}

func (p *SQLitePersister) Load(ctx context.Context) (string, error) {
	var token string
	err := p.db.GetContext(ctx, &token, `SELECT value FROM metadata WHERE key = ?`, StorageKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	return token, nil
}

func (p *SQLitePersister) Save(ctx context.Context, token string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		StorageKey, token)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (p *SQLitePersister) Delete(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, StorageKey); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
