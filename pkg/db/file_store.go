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
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

// FileStore keeps the device set in a single indented JSON array.
type FileStore struct {
	path   string
	logger logger.Logger
	mu     sync.Mutex
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string, log logger.Logger) *FileStore {
	return &FileStore{path: path, logger: log}
}

// Load returns an empty set when the file is missing or cannot be decoded.
func (s *FileStore) Load(_ context.Context) ([]models.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Device{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var devices []models.Device
	if err := json.Unmarshal(data, &devices); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("Malformed devices file, starting with an empty registry")

		return []models.Device{}, nil
	}

	if devices == nil {
		devices = []models.Device{}
	}

	return devices, nil
}

// Save writes to a temporary file in the same directory and renames it over
// the target so readers never observe a partial file.
func (s *FileStore) Save(_ context.Context, devices []models.Device) error {
	if devices == nil {
		devices = []models.Device{}
	}

	data, err := json.MarshalIndent(devices, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode devices: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("failed to write devices: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}

	return nil
}

func (*FileStore) Close() error {
	return nil
}
