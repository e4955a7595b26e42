// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

// Package sqlite contains the local file storage of the client identity.
package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
	_ "modernc.org/sqlite" // required for SQL access
)

// Config defines the options that are used when opening the identity file.
type Config struct {
	Path        string
	BusyTimeout int
}

// Connect opens the sqlite file and applies any unapplied database
// migrations. A non-nil error is returned to indicate failure.
func Connect(cfg Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", cfg.Path, cfg.BusyTimeout)

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One writer, the client owns its identity file.
	db.SetMaxOpenConns(1)

	if err := migrateDB(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func migrateDB(db *sqlx.DB) error {
	migrations := &migrate.MemoryMigrationSource{
		Migrations: []*migrate.Migration{
			{
				Id: "identity_1",
				Up: []string{
					`CREATE TABLE IF NOT EXISTS client_state (
						name       TEXT PRIMARY KEY,
						value      TEXT NOT NULL,
						updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
				},
				Down: []string{
					"DROP TABLE client_state",
				},
			},
		},
	}

	_, err := migrate.Exec(db.DB, "sqlite3", migrations, migrate.Up)
	return err
}
