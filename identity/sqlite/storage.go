// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"database/sql"

	"github.com/MainfluxLabs/storefront/identity"
	"github.com/MainfluxLabs/storefront/pkg/errors"
	"github.com/jmoiron/sqlx"
)

var _ identity.Storage = (*storage)(nil)

type storage struct {
	db *sqlx.DB
}

// NewStorage returns sqlite backed identity storage.
func NewStorage(db *sqlx.DB) identity.Storage {
	return &storage{db: db}
}

func (s *storage) Get(ctx context.Context, key string) (string, error) {
	q := `SELECT value FROM client_state WHERE name = ?`

	var value string
	if err := s.db.QueryRowxContext(ctx, q, key).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", identity.ErrNotFound
		}
		return "", errors.Wrap(errors.ErrStorage, err)
	}

	return value, nil
}

func (s *storage) Set(ctx context.Context, key, value string) error {
	q := `INSERT INTO client_state (name, value, updated_at) VALUES (:name, :value, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	row := dbState{Name: key, Value: value}
	if _, err := s.db.NamedExecContext(ctx, q, row); err != nil {
		return errors.Wrap(errors.ErrStorage, err)
	}

	return nil
}

func (s *storage) Remove(ctx context.Context, key string) error {
	q := `DELETE FROM client_state WHERE name = ?`

	if _, err := s.db.ExecContext(ctx, q, key); err != nil {
		return errors.Wrap(errors.ErrStorage, err)
	}

	return nil
}

type dbState struct {
	Name  string `db:"name"`
	Value string `db:"value"`
}
