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

//go:generate mockgen -destination=mock_db.go -package=db github.com/Hunter-Bennett/Blinknet/pkg/db Store

// Package db provides the persistence sinks for device records.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

var (
	ErrUnsupportedBackend = errors.New("unsupported persistence backend")
)

// Store persists the full device set. Save replaces whatever was stored
// before, so the last writer wins.
type Store interface {
	Load(ctx context.Context) ([]models.Device, error)
	Save(ctx context.Context, devices []models.Device) error
	Close() error
}

// NewStore opens the backend selected by cfg.Backend.
func NewStore(ctx context.Context, cfg *models.PersistenceConfig, log logger.Logger) (Store, error) {
	switch cfg.Backend {
	case models.PersistenceFile, "":
		return NewFileStore(cfg.Path, log), nil
	case models.PersistenceSQLite:
		return NewSQLiteStore(ctx, cfg.Path, log)
	case models.PersistencePostgres:
		return NewCNPGStore(ctx, cfg.CNPG, log)
	case models.PersistenceRedis:
		return NewRedisStore(ctx, cfg.Redis, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.Backend)
	}
}
