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

// Package api serves the device read/write API and the live dashboard stream.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	bnHttp "github.com/Hunter-Bennett/Blinknet/pkg/http"
	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
	"github.com/Hunter-Bennett/Blinknet/pkg/monitor"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// DeviceService is the registry surface the API needs.
type DeviceService interface {
	Add(ctx context.Context, owner string, spec models.DeviceSpec) (models.DeviceView, error)
	Update(ctx context.Context, owner string, id int64, spec models.DeviceSpec) (models.DeviceView, error)
	Remove(ctx context.Context, owner string, id int64) error
	Get(owner string, id int64) (models.DeviceView, error)
	SnapshotFor(owner string) []models.DeviceView
}

// MetricsProvider exposes Prometheus metrics and records request timings.
type MetricsProvider interface {
	bnHttp.RequestObserver
	Handler() http.Handler
}

type APIServer struct {
	router     *mux.Router
	devices    DeviceService
	corsConfig models.CORSConfig
	apiKeys    map[string]string
	metrics    MetricsProvider
	hub        *streamHub
	logger     logger.Logger

	mu     sync.Mutex
	server *http.Server
}

// NewAPIServer creates a new API server instance with the given configuration
func NewAPIServer(config models.CORSConfig, devices DeviceService, log logger.Logger, options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		router:     mux.NewRouter(),
		devices:    devices,
		corsConfig: config,
		apiKeys:    map[string]string{},
		logger:     log,
	}

	for _, o := range options {
		o(s)
	}

	s.hub = newStreamHub(devices, log)

	s.setupRoutes()

	return s
}

// WithAPIKeys sets the API key to owner mapping.
func WithAPIKeys(keys map[string]string) func(server *APIServer) {
	return func(server *APIServer) {
		server.apiKeys = keys
	}
}

// WithMetrics mounts /metrics and records request metrics.
func WithMetrics(m MetricsProvider) func(server *APIServer) {
	return func(server *APIServer) {
		server.metrics = m
	}
}

func (s *APIServer) setupRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return bnHttp.CommonMiddleware(next, s.corsConfig, s.logger)
	})

	if s.metrics != nil {
		s.router.Use(bnHttp.MetricsMiddleware(s.metrics))
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	s.router.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)

	protected := s.router.PathPrefix("/api").Subrouter()
	protected.Use(bnHttp.APIKeyMiddlewareWithOptions(bnHttp.APIKeyOptions{
		Keys:            s.apiKeys,
		LogUnauthorized: true,
		Logger:          s.logger,
	}))

	protected.HandleFunc("/status", s.getStatus).Methods(http.MethodGet)
	protected.HandleFunc("/devices", s.getStatus).Methods(http.MethodGet)
	protected.HandleFunc("/devices", s.createDevice).Methods(http.MethodPost)
	protected.HandleFunc("/devices/{id}", s.getDevice).Methods(http.MethodGet)
	protected.HandleFunc("/devices/{id}", s.updateDevice).Methods(http.MethodPut)
	protected.HandleFunc("/devices/{id}", s.deleteDevice).Methods(http.MethodDelete)
	protected.HandleFunc("/stream", s.hub.handleStream(s.checkWebSocketOrigin)).Methods(http.MethodGet)
}

// Handler returns the routed handler, mainly for tests.
func (s *APIServer) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called. It returns nil after a clean shutdown.
func (s *APIServer) Start(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.logger.Info().Str("addr", addr).Msg("API server listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown closes stream clients and gracefully stops the HTTP server.
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.hub.closeAll()

	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	return srv.Shutdown(ctx)
}

// OnTick pushes fresh snapshots to every connected dashboard. Register it
// with monitor.WithTickListener.
func (s *APIServer) OnTick(_ context.Context, _ monitor.TickSummary) {
	s.hub.broadcast()
}
