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

// Package app wires the blinknet daemon together.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hunter-Bennett/Blinknet/pkg/api"
	"github.com/Hunter-Bennett/Blinknet/pkg/config"
	"github.com/Hunter-Bennett/Blinknet/pkg/config/kvnats"
	"github.com/Hunter-Bennett/Blinknet/pkg/db"
	"github.com/Hunter-Bennett/Blinknet/pkg/lifecycle"
	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
	"github.com/Hunter-Bennett/Blinknet/pkg/metrics"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
	"github.com/Hunter-Bennett/Blinknet/pkg/monitor"
	"github.com/Hunter-Bennett/Blinknet/pkg/natsutil"
	"github.com/Hunter-Bennett/Blinknet/pkg/registry"
	"github.com/Hunter-Bennett/Blinknet/pkg/scan"
)

const (
	serviceName     = "blinknet"
	shutdownTimeout = 10 * time.Second
)

var errKVBootstrapURL = errors.New("CONFIG_SOURCE=kv requires NATS_URL")

// Options contains runtime configuration derived from CLI flags.
type Options struct {
	ConfigPath string
	Version    string
}

// Run boots the monitor and API and blocks until SIGINT or SIGTERM.
func Run(ctx context.Context, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := LoadConfig(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	mainLogger, err := lifecycle.CreateComponentLogger(ctx, "main", cfg.Logging)
	if err != nil {
		return err
	}

	defer func() {
		if err := lifecycle.ShutdownLogger(); err != nil {
			mainLogger.Error().Err(err).Msg("Error shutting down logger")
		}
	}()

	var otelCfg *logger.OTelConfig
	if cfg.Logging != nil {
		otelCfg = &cfg.Logging.OTel
	}

	tp, err := logger.InitializeTracing(ctx, logger.TracingConfig{
		ServiceName: serviceName,
		Logger:      mainLogger,
		OTel:        otelCfg,
	})
	if err != nil {
		return err
	}

	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			mainLogger.Error().Err(err).Msg("Error shutting down tracer provider")
		}
	}()

	store, err := db.NewStore(ctx, &cfg.Persistence, lifecycle.DeriveComponentLogger(mainLogger, "store"))
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Persistence.Backend, err)
	}

	defer func() {
		if err := store.Close(); err != nil {
			mainLogger.Error().Err(err).Msg("Error closing store")
		}
	}()

	devices := registry.NewDeviceRegistry(store, cfg.Monitor, lifecycle.DeriveComponentLogger(mainLogger, "registry"))
	if err := devices.Load(ctx); err != nil {
		return err
	}

	recorder := metrics.NewRecorder()

	apiServer := api.NewAPIServer(cfg.CORS, devices, lifecycle.DeriveComponentLogger(mainLogger, "api"),
		api.WithAPIKeys(cfg.API.Keys),
		api.WithMetrics(recorder),
	)

	monitorOpts := []monitor.Option{
		monitor.WithRecorder(recorder),
		monitor.WithTracer(tp.Tracer(serviceName + "/monitor")),
		monitor.WithTickListener(apiServer.OnTick),
	}

	if cfg.Events != nil && cfg.Events.Enabled {
		eventsLogger := lifecycle.DeriveComponentLogger(mainLogger, "events")

		nc, err := natsutil.Connect(cfg.NATS, eventsLogger)
		if err != nil {
			return err
		}

		defer func() {
			if err := nc.Drain(); err != nil {
				mainLogger.Warn().Err(err).Msg("Error draining NATS connection")
			}
		}()

		publisher, err := natsutil.CreateEventPublisher(ctx, nc, cfg.NATS, cfg.Events.StreamName, eventsLogger)
		if err != nil {
			return err
		}

		monitorOpts = append(monitorOpts, monitor.WithPublisher(publisher))
	}

	monitorLogger := lifecycle.DeriveComponentLogger(mainLogger, "monitor")
	prober := scan.NewTCPProber(time.Duration(cfg.Monitor.ProbeTimeout), cfg.Monitor.Concurrency, monitorLogger)
	mon := monitor.NewMonitor(cfg.Monitor, prober, devices, monitorLogger, monitorOpts...)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mon.Start(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- apiServer.Start(cfg.ListenAddr)
	}()

	mainLogger.Info().
		Str("version", opts.Version).
		Str("listen_addr", cfg.ListenAddr).
		Str("backend", cfg.Persistence.Backend).
		Msg("Blinknet started")

	var runErr error

	select {
	case <-ctx.Done():
		mainLogger.Info().Msg("Shutdown signal received")
	case runErr = <-errCh:
		if runErr != nil {
			mainLogger.Error().Err(runErr).Msg("API server failed")
		}
	}

	mon.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		mainLogger.Warn().Err(err).Msg("Error shutting down API server")
	}

	if err := devices.Persist(shutdownCtx); err != nil {
		mainLogger.Error().Err(err).Msg("Final persist failed")
	}

	mainLogger.Info().Msg("Blinknet stopped")

	return runErr
}

// LoadConfig reads the configuration from the source named by CONFIG_SOURCE.
// The kv source bootstraps a NATS connection from NATS_URL and reads the
// bucket named by CONFIG_KV_BUCKET.
func LoadConfig(ctx context.Context, path string) (*models.Config, error) {
	loader := config.NewConfig(nil)

	if os.Getenv("CONFIG_SOURCE") == "kv" {
		kv, err := OpenKVStore(ctx, os.Getenv("NATS_URL"), os.Getenv("CONFIG_KV_BUCKET"))
		if err != nil {
			return nil, err
		}

		defer func() { _ = kv.Close() }()

		loader.SetKVStore(kv)
	}

	var cfg models.Config
	if err := loader.LoadAndValidate(ctx, path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// OpenKVStore connects to NATS and opens the configuration bucket. An empty
// bucket selects kvnats.DefaultBucket.
func OpenKVStore(ctx context.Context, url, bucket string) (*kvnats.Client, error) {
	if url == "" {
		return nil, errKVBootstrapURL
	}

	if bucket == "" {
		bucket = kvnats.DefaultBucket
	}

	log, err := lifecycle.CreateComponentLogger(ctx, "config", nil)
	if err != nil {
		return nil, err
	}

	nc, err := natsutil.Connect(&models.NATSConfig{URL: url}, log)
	if err != nil {
		return nil, err
	}

	kv, err := kvnats.New(ctx, nc, bucket)
	if err != nil {
		nc.Close()

		return nil, err
	}

	return kv, nil
}
