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

// Package kvnats backs config.KVStore with a NATS JetStream key/value bucket.
package kvnats

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Hunter-Bennett/Blinknet/pkg/config"
)

// DefaultBucket holds blinknet configuration documents.
const DefaultBucket = "blinknet-config"

type Client struct {
	nc *nats.Conn
	kv jetstream.KeyValue
}

var _ config.KVStore = (*Client)(nil)

// New opens bucket, creating it when missing. The client takes ownership of nc.
func New(ctx context.Context, nc *nats.Conn, bucket string) (*Client, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "blinknet configuration",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open KV bucket %s: %w", bucket, err)
	}

	return &Client{nc: nc, kv: kv}, nil
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := c.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return entry.Value(), true, nil
}

// Put stores value under key and returns the new revision.
func (c *Client) Put(ctx context.Context, key string, value []byte) (uint64, error) {
	return c.kv.Put(ctx, key, value)
}

func (c *Client) Close() error {
	if c.nc != nil {
		c.nc.Close()
	}

	return nil
}
