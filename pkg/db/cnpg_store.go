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
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

const cnpgSchema = `CREATE TABLE IF NOT EXISTS blinknet_devices (
	id BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	ip TEXT NOT NULL,
	protocol TEXT NOT NULL,
	port INTEGER NOT NULL,
	owner TEXT NOT NULL,
	latency DOUBLE PRECISION,
	is_online BOOLEAN NOT NULL DEFAULT FALSE,
	history JSONB NOT NULL DEFAULT '[]'::jsonb,
	status_history JSONB NOT NULL DEFAULT '[]'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_blinknet_devices_owner ON blinknet_devices (owner);`

const upsertDeviceSQL = `INSERT INTO blinknet_devices
	(id, name, ip, protocol, port, owner, latency, is_online, history, status_history, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10::jsonb, now())
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	ip = EXCLUDED.ip,
	protocol = EXCLUDED.protocol,
	port = EXCLUDED.port,
	owner = EXCLUDED.owner,
	latency = EXCLUDED.latency,
	is_online = EXCLUDED.is_online,
	history = EXCLUDED.history,
	status_history = EXCLUDED.status_history,
	updated_at = now()`

// CNPGStore keeps device records in a Postgres table.
type CNPGStore struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

var _ Store = (*CNPGStore)(nil)

func NewCNPGStore(ctx context.Context, cfg *models.CNPGDatabase, log logger.Logger) (*CNPGStore, error) {
	pool, err := NewCNPGPool(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if _, err := pool.Exec(ctx, cnpgSchema); err != nil {
		pool.Close()

		return nil, fmt.Errorf("cnpg: migrate: %w", err)
	}

	return &CNPGStore{pool: pool, logger: log}, nil
}

func (s *CNPGStore) Load(ctx context.Context) ([]models.Device, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, ip, protocol, port, owner, latency, is_online,
		history::text, status_history::text FROM blinknet_devices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("cnpg: query devices: %w", err)
	}
	defer rows.Close()

	devices := []models.Device{}

	for rows.Next() {
		var (
			d             models.Device
			history       string
			statusHistory string
		)

		if err := rows.Scan(&d.ID, &d.Name, &d.IP, &d.Protocol, &d.Port, &d.Owner,
			&d.Latency, &d.IsOnline, &history, &statusHistory); err != nil {
			return nil, fmt.Errorf("cnpg: scan device: %w", err)
		}

		if err := decodeWindows(&d, []byte(history), []byte(statusHistory)); err != nil {
			s.logger.Warn().Err(err).Msg("Resetting malformed monitoring windows")
		}

		devices = append(devices, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cnpg: iterate devices: %w", err)
	}

	return devices, nil
}

// Save deletes rows missing from devices and upserts the rest in one
// transaction.
func (s *CNPGStore) Save(ctx context.Context, devices []models.Device) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cnpg: begin: %w", err)
	}

	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]int64, 0, len(devices))
	for i := range devices {
		ids = append(ids, devices[i].ID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM blinknet_devices WHERE NOT (id = ANY($1))`, ids); err != nil {
		return fmt.Errorf("cnpg: prune devices: %w", err)
	}

	batch, err := buildUpsertBatch(devices)
	if err != nil {
		return err
	}

	if err := sendBatchExecAll(ctx, batch, tx.SendBatch, "upsert devices"); err != nil {
		return fmt.Errorf("cnpg: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("cnpg: commit: %w", err)
	}

	return nil
}

func buildUpsertBatch(devices []models.Device) (*pgx.Batch, error) {
	batch := &pgx.Batch{}

	for i := range devices {
		d := &devices[i]

		history, statusHistory, err := encodeWindows(d)
		if err != nil {
			return nil, err
		}

		batch.Queue(upsertDeviceSQL, d.ID, d.Name, d.IP, d.Protocol, d.Port, d.Owner,
			d.Latency, d.IsOnline, history, statusHistory)
	}

	return batch, nil
}

func (s *CNPGStore) Close() error {
	s.pool.Close()

	return nil
}

// sendBatchExecAll executes every queued statement and always closes the
// results.
func sendBatchExecAll(ctx context.Context, batch *pgx.Batch, send func(context.Context, *pgx.Batch) pgx.BatchResults, operation string) (err error) {
	if batch == nil || batch.Len() == 0 {
		return nil
	}

	br := send(ctx, batch)
	defer func() {
		if closeErr := br.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%s batch close: %w", operation, closeErr)
		}
	}()

	for i := 0; i < batch.Len(); i++ {
		if _, err = br.Exec(); err != nil {
			return fmt.Errorf("%s batch exec (command %d): %w", operation, i, err)
		}
	}

	return nil
}
