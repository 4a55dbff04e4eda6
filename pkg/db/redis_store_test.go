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
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	store := NewRedisStoreWithClient(client, "", logger.NewTestLogger())
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleDevices()))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleDevices(), loaded)

	keys, err := mr.HKeys(defaultRedisKey)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "4"}, keys)
}

func TestRedisStoreSaveReplacesSnapshot(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleDevices()))

	remaining := sampleDevices()[1:]
	remaining[0].Name = "nas-renamed"

	require.NoError(t, store.Save(ctx, remaining))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, int64(4), loaded[0].ID)
	assert.Equal(t, "nas-renamed", loaded[0].Name)
	keys, err := mr.HKeys(defaultRedisKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, keys)

	require.NoError(t, store.Save(ctx, nil))

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.False(t, mr.Exists(defaultRedisKey))
}

func TestRedisStoreLoadSortsAndSkipsMalformed(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	devices := []models.Device{
		{ID: 10, Name: "c", IP: "10.0.0.10", Protocol: "tcp", Port: 22, Owner: "alice", History: []float64{}, StatusHistory: []bool{}},
		{ID: 2, Name: "a", IP: "10.0.0.2", Protocol: "tcp", Port: 22, Owner: "alice", History: []float64{}, StatusHistory: []bool{}},
		{ID: 7, Name: "b", IP: "10.0.0.7", Protocol: "tcp", Port: 22, Owner: "bob", History: []float64{}, StatusHistory: []bool{}},
	}

	require.NoError(t, store.Save(ctx, devices))

	mr.HSet(defaultRedisKey, "99", "{not json")

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, []int64{2, 7, 10}, []int64{loaded[0].ID, loaded[1].ID, loaded[2].ID})
}

func TestRedisStoreEmptyKey(t *testing.T) {
	store, _ := newTestRedisStore(t)

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestNewRedisStoreConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedisStore(context.Background(), &models.RedisConfig{Addr: mr.Addr(), Key: "custom:devices"}, logger.NewTestLogger())
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Save(context.Background(), sampleDevices()))
	keys, err := mr.HKeys("custom:devices")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "4"}, keys)
}

func TestNewRedisStoreRequiresConfig(t *testing.T) {
	_, err := NewRedisStore(context.Background(), nil, logger.NewTestLogger())
	require.ErrorIs(t, err, ErrUnsupportedBackend)
}
