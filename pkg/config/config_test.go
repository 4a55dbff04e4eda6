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

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKVStore struct {
	values map[string][]byte
	err    error
}

func (f *fakeKVStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}

	val, ok := f.values[key]

	return val, ok, nil
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "blinknet.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadAndValidateFromFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := writeConfigFile(t, `{
		"listen_addr": ":9000",
		"monitor": {"check_interval": "5s", "probe_timeout": 1000000000},
		"persistence": {"backend": "sqlite", "path": "/tmp/devices.db"},
		"api": {"keys": {"k1": "alice"}}
	}`)

	var cfg models.Config

	require.NoError(t, NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), path, &cfg))

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, models.Duration(5*time.Second), cfg.Monitor.CheckInterval)
	assert.Equal(t, models.Duration(time.Second), cfg.Monitor.ProbeTimeout)
	assert.Equal(t, models.DefaultSmoothingCount, cfg.Monitor.SmoothingCount)
	assert.Equal(t, models.DefaultHistoryLength, cfg.Monitor.HistoryLength)
	assert.Equal(t, "alice", cfg.API.Keys["k1"])
}

func TestLoadAndValidateRejectsInvalidConfig(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	path := writeConfigFile(t, `{"persistence": {"backend": "etcd"}}`)

	var cfg models.Config

	err := NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "etcd")
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	var cfg models.Config

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "/does/not/exist.json", &cfg)
	require.Error(t, err)
}

func TestInvalidConfigSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "consul")

	var cfg models.Config

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "x.json", &cfg)
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestKVSourceRequiresStore(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")

	var cfg models.Config

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "x.json", &cfg)
	require.ErrorIs(t, err, errKVStoreNotSet)
}

func TestKVSourceLoadsDocument(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")

	c := NewConfig(logger.NewTestLogger())
	c.SetKVStore(&fakeKVStore{values: map[string][]byte{
		"config/blinknet.json": []byte(`{"listen_addr": ":7000"}`),
	}})

	var cfg models.Config

	require.NoError(t, c.LoadAndValidate(context.Background(), "/etc/blinknet/blinknet.json", &cfg))
	assert.Equal(t, ":7000", cfg.ListenAddr)
}

func TestKVSourceFallsBackToFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")

	path := writeConfigFile(t, `{"listen_addr": ":7100"}`)

	c := NewConfig(logger.NewTestLogger())
	c.SetKVStore(&fakeKVStore{err: errors.New("bucket offline")})

	var cfg models.Config

	require.NoError(t, c.LoadAndValidate(context.Background(), path, &cfg))
	assert.Equal(t, ":7100", cfg.ListenAddr)
}

func TestKVSourceFallbackFailureWrapsBoth(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")

	c := NewConfig(logger.NewTestLogger())
	c.SetKVStore(&fakeKVStore{values: map[string][]byte{}})

	var cfg models.Config

	err := c.LoadAndValidate(context.Background(), "/missing/blinknet.json", &cfg)
	require.ErrorIs(t, err, errLoadConfigFailed)
	require.ErrorIs(t, err, errKVKeyNotFound)
}

func TestKeyForPath(t *testing.T) {
	assert.Equal(t, "config/blinknet.json", KeyForPath("/etc/blinknet/blinknet.json"))
	assert.Equal(t, "config/blinknet.json", KeyForPath("blinknet.json"))
}

func TestFileLoaderRejectsUnknownKeys(t *testing.T) {
	path := writeConfigFile(t, `{"listen_addr": ":9000", "monitr": {"check_interval": "1s"}}`)

	var cfg models.Config

	err := (&FileConfigLoader{}).Load(context.Background(), path, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monitr")
}

func TestFileLoaderRejectsEmptyFile(t *testing.T) {
	path := writeConfigFile(t, "  \n")

	var cfg models.Config

	err := (&FileConfigLoader{}).Load(context.Background(), path, &cfg)
	require.ErrorIs(t, err, errEmptyConfigFile)
}
