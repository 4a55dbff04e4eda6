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

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
)

const (
	DefaultCheckInterval  = 2 * time.Second
	DefaultSmoothingCount = 3
	DefaultHistoryLength  = 20
	DefaultProbeTimeout   = 2 * time.Second
	DefaultConcurrency    = 16
	DefaultListenAddr     = ":8000"

	PersistenceFile     = "file"
	PersistenceSQLite   = "sqlite"
	PersistencePostgres = "postgres"
	PersistenceRedis    = "redis"

	defaultDevicesFile = "devices.json"
	defaultSQLitePath  = "blinknet.db"
	defaultRedisKey    = "blinknet:devices"
	defaultStreamName  = "events"
)

var (
	errInvalidDuration      = errors.New("invalid duration")
	errInvalidBackend       = errors.New("unsupported persistence backend")
	errMissingCNPG          = errors.New("persistence.cnpg is required for the postgres backend")
	errMissingRedis         = errors.New("persistence.redis is required for the redis backend")
	errNonPositiveInterval  = errors.New("monitor.check_interval must be positive")
	errNonPositiveTimeout   = errors.New("monitor.probe_timeout must be positive")
	errNonPositiveWindow    = errors.New("monitor.smoothing_count must be positive")
	errNonPositiveHistory   = errors.New("monitor.history_length must be positive")
	errNonPositiveWorkers   = errors.New("monitor.concurrency must be positive")
	errNATSURLRequired      = errors.New("nats url is required")
	errEmptyAPIKeyOwner     = errors.New("api.keys entries must map to a non-empty owner")
	errEmptyRedisAddr       = errors.New("persistence.redis.addr is required")
	errEmptyCNPGHost        = errors.New("persistence.cnpg.host is required")
	errEmptyCNPGDatabase    = errors.New("persistence.cnpg.database is required")
	errEmptyPersistencePath = errors.New("persistence.path is required")
)

// Duration is a time.Duration that unmarshals from "2s" strings or from
// nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))

		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidDuration, err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config is the top-level blinknet configuration document.
type Config struct {
	ListenAddr  string            `json:"listen_addr"`
	Monitor     MonitorConfig     `json:"monitor"`
	Persistence PersistenceConfig `json:"persistence"`
	API         APIConfig         `json:"api"`
	CORS        CORSConfig        `json:"cors,omitempty"`
	NATS        *NATSConfig       `json:"nats,omitempty"`
	Events      *EventsConfig     `json:"events,omitempty"`
	Logging     *logger.Config    `json:"logging,omitempty"`
}

// MonitorConfig holds the scheduler, smoothing and history settings.
type MonitorConfig struct {
	CheckInterval  Duration `json:"check_interval"`
	SmoothingCount int      `json:"smoothing_count"`
	HistoryLength  int      `json:"history_length"`
	ProbeTimeout   Duration `json:"probe_timeout"`
	Concurrency    int      `json:"concurrency"`
}

// PersistenceConfig selects and configures the device record sink.
type PersistenceConfig struct {
	Backend string        `json:"backend"`
	Path    string        `json:"path,omitempty"`
	CNPG    *CNPGDatabase `json:"cnpg,omitempty"`
	Redis   *RedisConfig  `json:"redis,omitempty"`
}

// CNPGDatabase describes a Postgres connection.
type CNPGDatabase struct {
	Host               string            `json:"host"`
	Port               int               `json:"port"`
	Database           string            `json:"database"`
	Username           string            `json:"username"`
	Password           string            `json:"password"`
	SSLMode            string            `json:"ssl_mode"`
	ApplicationName    string            `json:"application_name"`
	MaxConnections     int32             `json:"max_connections"`
	MinConnections     int32             `json:"min_connections"`
	MaxConnLifetime    Duration          `json:"max_conn_lifetime"`
	HealthCheckPeriod  Duration          `json:"health_check_period"`
	StatementTimeout   Duration          `json:"statement_timeout"`
	ExtraRuntimeParams map[string]string `json:"extra_runtime_params,omitempty"`
	CertDir            string            `json:"cert_dir,omitempty"`
	TLS                *TLSConfig        `json:"tls,omitempty"`
}

// TLSConfig names client certificate material. Relative paths resolve
// against the owning section's cert_dir.
type TLSConfig struct {
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`
	CAFile   string `json:"ca_file"`
}

// RedisConfig describes a Redis connection.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Key      string `json:"key"`
}

// APIConfig maps API keys to the owner they authenticate.
type APIConfig struct {
	Keys map[string]string `json:"keys"`
}

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins,omitempty"`
	AllowCredentials bool     `json:"allow_credentials,omitempty"`
}

// NATSConfig configures NATS connectivity.
type NATSConfig struct {
	URL     string     `json:"url"`
	Domain  string     `json:"domain,omitempty"`
	CertDir string     `json:"cert_dir,omitempty"`
	TLS     *TLSConfig `json:"tls,omitempty"`
}

// EventsConfig configures status change publishing.
type EventsConfig struct {
	Enabled    bool   `json:"enabled"`
	StreamName string `json:"stream_name"`
}

// ApplyDefaults fills unset values with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}

	c.Monitor.ApplyDefaults()

	if c.Persistence.Backend == "" {
		c.Persistence.Backend = PersistenceFile
	}

	if c.Persistence.Path == "" {
		switch c.Persistence.Backend {
		case PersistenceFile:
			c.Persistence.Path = defaultDevicesFile
		case PersistenceSQLite:
			c.Persistence.Path = defaultSQLitePath
		}
	}

	if c.Persistence.Redis != nil && c.Persistence.Redis.Key == "" {
		c.Persistence.Redis.Key = defaultRedisKey
	}

	if c.Persistence.CNPG != nil && c.Persistence.CNPG.Port == 0 {
		c.Persistence.CNPG.Port = 5432
	}

	if c.Events != nil && c.Events.StreamName == "" {
		c.Events.StreamName = defaultStreamName
	}
}

// ApplyDefaults fills unset monitor settings.
func (m *MonitorConfig) ApplyDefaults() {
	if m.CheckInterval == 0 {
		m.CheckInterval = Duration(DefaultCheckInterval)
	}

	if m.SmoothingCount == 0 {
		m.SmoothingCount = DefaultSmoothingCount
	}

	if m.HistoryLength == 0 {
		m.HistoryLength = DefaultHistoryLength
	}

	if m.ProbeTimeout == 0 {
		m.ProbeTimeout = Duration(DefaultProbeTimeout)
	}

	if m.Concurrency == 0 {
		m.Concurrency = DefaultConcurrency
	}
}

// Validate implements config.Validator.
func (c *Config) Validate() error {
	c.ApplyDefaults()

	if err := c.Monitor.Validate(); err != nil {
		return err
	}

	if err := c.Persistence.Validate(); err != nil {
		return err
	}

	for key, owner := range c.API.Keys {
		if key == "" || owner == "" {
			return errEmptyAPIKeyOwner
		}
	}

	if c.Events != nil && c.Events.Enabled {
		if c.NATS == nil || c.NATS.URL == "" {
			return errNATSURLRequired
		}
	}

	return nil
}

// Validate checks the monitor settings.
func (m *MonitorConfig) Validate() error {
	switch {
	case m.CheckInterval <= 0:
		return errNonPositiveInterval
	case m.ProbeTimeout <= 0:
		return errNonPositiveTimeout
	case m.SmoothingCount <= 0:
		return errNonPositiveWindow
	case m.HistoryLength <= 0:
		return errNonPositiveHistory
	case m.Concurrency <= 0:
		return errNonPositiveWorkers
	}

	return nil
}

// Validate checks that the selected backend has what it needs.
func (p *PersistenceConfig) Validate() error {
	switch p.Backend {
	case PersistenceFile, PersistenceSQLite:
		if p.Path == "" {
			return errEmptyPersistencePath
		}
	case PersistencePostgres:
		if p.CNPG == nil {
			return errMissingCNPG
		}

		if p.CNPG.Host == "" {
			return errEmptyCNPGHost
		}

		if p.CNPG.Database == "" {
			return errEmptyCNPGDatabase
		}
	case PersistenceRedis:
		if p.Redis == nil {
			return errMissingRedis
		}

		if p.Redis.Addr == "" {
			return errEmptyRedisAddr
		}
	default:
		return fmt.Errorf("%w: %q", errInvalidBackend, p.Backend)
	}

	return nil
}
