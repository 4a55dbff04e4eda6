/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS devices (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	ip TEXT NOT NULL,
	protocol TEXT NOT NULL,
	port INTEGER NOT NULL,
	owner TEXT NOT NULL,
	latency REAL,
	is_online INTEGER NOT NULL DEFAULT 0,
	history TEXT NOT NULL DEFAULT '[]',
	status_history TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_devices_owner ON devices(owner);`

// SQLiteStore keeps one row per device in a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger logger.Logger
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(ctx context.Context, path string, log logger.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)

	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	// database/sql would otherwise hand concurrent writers separate
	// connections, which SQLite serializes with busy errors.
	sqldb.SetMaxOpenConns(1)

	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()

		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}

	if _, err := sqldb.ExecContext(ctx, sqliteSchema); err != nil {
		_ = sqldb.Close()

		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}

	log.Info().Str("path", path).Msg("Opened SQLite device store")

	return &SQLiteStore{db: sqldb, logger: log}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]models.Device, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, ip, protocol, port, owner, latency, is_online, history, status_history
		FROM devices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query devices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	devices := []models.Device{}

	for rows.Next() {
		var (
			d             models.Device
			latency       sql.NullFloat64
			history       []byte
			statusHistory []byte
		)

		if err := rows.Scan(&d.ID, &d.Name, &d.IP, &d.Protocol, &d.Port, &d.Owner,
			&latency, &d.IsOnline, &history, &statusHistory); err != nil {
			return nil, fmt.Errorf("sqlite: scan device: %w", err)
		}

		if latency.Valid {
			v := latency.Float64
			d.Latency = &v
		}

		if err := decodeWindows(&d, history, statusHistory); err != nil {
			s.logger.Warn().Err(err).Msg("Resetting malformed monitoring windows")
		}

		devices = append(devices, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate devices: %w", err)
	}

	return devices, nil
}

// Save replaces every row in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, devices []models.Device) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM devices`); err != nil {
		return fmt.Errorf("sqlite: clear devices: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO devices
		(id, name, ip, protocol, port, owner, latency, is_online, history, status_history)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range devices {
		d := &devices[i]

		history, statusHistory, encErr := encodeWindows(d)
		if encErr != nil {
			return encErr
		}

		if _, err = stmt.ExecContext(ctx, d.ID, d.Name, d.IP, d.Protocol, d.Port, d.Owner,
			d.Latency, d.IsOnline, history, statusHistory); err != nil {
			return fmt.Errorf("sqlite: insert device %d: %w", d.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
