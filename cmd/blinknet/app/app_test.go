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

package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

func TestLoadConfigFromFileAppliesDefaults(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	path := filepath.Join(t.TempDir(), "blinknet.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"listen_addr": "127.0.0.1:9000",
		"monitor": {"check_interval": "5s"},
		"api": {"keys": {"k1": "alice"}}
	}`), 0o600))

	cfg, err := LoadConfig(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, 5*time.Second, time.Duration(cfg.Monitor.CheckInterval))
	assert.Equal(t, models.DefaultSmoothingCount, cfg.Monitor.SmoothingCount)
	assert.Equal(t, models.DefaultHistoryLength, cfg.Monitor.HistoryLength)
	assert.Equal(t, models.PersistenceFile, cfg.Persistence.Backend)
	assert.Equal(t, "devices.json", cfg.Persistence.Path)
	assert.Equal(t, "alice", cfg.API.Keys["k1"])
}

func TestLoadConfigRejectsInvalidDocument(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	path := filepath.Join(t.TempDir(), "blinknet.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"monitor": {"smoothing_count": -1}}`), 0o600))

	_, err := LoadConfig(context.Background(), path)
	require.Error(t, err)
}

func TestLoadConfigFromKVNeedsNATSURL(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")
	t.Setenv("NATS_URL", "")

	_, err := LoadConfig(context.Background(), "blinknet.json")
	require.ErrorIs(t, err, errKVBootstrapURL)
}

func TestRunFailsOnMissingConfig(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	err := Run(context.Background(), Options{ConfigPath: filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)
}
