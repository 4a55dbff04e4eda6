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
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

const defaultRedisKey = "blinknet:devices"

// RedisStore keeps one hash whose fields are device ids and whose values are
// JSON encoded device records.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	logger logger.Logger
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(ctx context.Context, cfg *models.RedisConfig, log logger.Logger) (*RedisStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: redis configuration is required", ErrUnsupportedBackend)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 1,
		MaxRetries:   3,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Str("addr", cfg.Addr).Str("key", cfg.Key).Msg("Connected to Redis device store")

	return NewRedisStoreWithClient(client, cfg.Key, log), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.UniversalClient, key string, log logger.Logger) *RedisStore {
	if key == "" {
		key = defaultRedisKey
	}

	return &RedisStore{client: client, key: key, logger: log}
}

// Load skips hash entries that do not decode and logs them.
func (s *RedisStore) Load(ctx context.Context) ([]models.Device, error) {
	entries, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: hgetall %s: %w", s.key, err)
	}

	devices := make([]models.Device, 0, len(entries))

	for field, raw := range entries {
		var d models.Device
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			s.logger.Warn().Err(err).Str("field", field).Msg("Skipping malformed device record")

			continue
		}

		devices = append(devices, d)
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })

	return devices, nil
}

// Save replaces the hash in a MULTI/EXEC pipeline.
func (s *RedisStore) Save(ctx context.Context, devices []models.Device) error {
	values := make([]interface{}, 0, len(devices)*2)

	for i := range devices {
		data, err := json.Marshal(&devices[i])
		if err != nil {
			return fmt.Errorf("redis: encode device %d: %w", devices[i].ID, err)
		}

		values = append(values, strconv.FormatInt(devices[i].ID, 10), string(data))
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)

		if len(values) > 0 {
			pipe.HSet(ctx, s.key, values...)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: save devices: %w", err)
	}

	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
