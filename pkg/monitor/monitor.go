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

// Package monitor runs the periodic probe, smoothing and history loop.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

var ErrAlreadyRunning = errors.New("monitor already running")

const (
	persistTimeout = 10 * time.Second
	tracerName     = "blinknet/monitor"
)

// TickSummary describes one completed tick.
type TickSummary struct {
	Devices   int
	Online    int
	Probed    int
	Discarded int
	// Abandoned counts results received after the tick was cancelled.
	Abandoned  int
	Panics     int
	Duration   time.Duration
	PersistErr error
}

// TickListener is called after every completed tick.
type TickListener func(ctx context.Context, summary TickSummary)

// Monitor owns the scheduler loop. It is the only writer of monitoring
// fields in the registry.
type Monitor struct {
	interval  time.Duration
	prober    Prober
	registry  Registry
	smoother  *Smoother
	history   *LatencyHistory
	publisher StatusPublisher
	recorder  Recorder
	clock     Clock
	tracer    trace.Tracer
	listeners []TickListener
	logger    logger.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type Option func(*Monitor)

// WithPublisher enables status transition events.
func WithPublisher(p StatusPublisher) Option {
	return func(m *Monitor) {
		m.publisher = p
	}
}

func WithRecorder(r Recorder) Option {
	return func(m *Monitor) {
		m.recorder = r
	}
}

func WithClock(c Clock) Option {
	return func(m *Monitor) {
		m.clock = c
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(m *Monitor) {
		m.tracer = t
	}
}

func WithTickListener(l TickListener) Option {
	return func(m *Monitor) {
		m.listeners = append(m.listeners, l)
	}
}

func NewMonitor(cfg models.MonitorConfig, prober Prober, registry Registry, log logger.Logger, opts ...Option) *Monitor {
	cfg.ApplyDefaults()

	m := &Monitor{
		interval: time.Duration(cfg.CheckInterval),
		prober:   prober,
		registry: registry,
		smoother: NewSmoother(cfg.SmoothingCount),
		history:  NewLatencyHistory(cfg.HistoryLength),
		recorder: nopRecorder{},
		clock:    realClock{},
		tracer:   noop.NewTracerProvider().Tracer(tracerName),
		logger:   log,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Start runs one tick immediately and then one per interval until ctx ends
// or Stop is called.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)

	m.running = true
	m.done = make(chan struct{})
	m.cancel = cancel

	m.wg.Add(1)

	go m.run(loopCtx, m.done)

	m.logger.Info().Dur("interval", m.interval).Msg("Monitor started")

	return nil
}

// Stop ends the loop, abandons in-flight probes and waits for the loop
// goroutine to exit. It is safe to call more than once.
func (m *Monitor) Stop() {
	m.mu.Lock()

	if !m.running {
		m.mu.Unlock()

		return
	}

	m.running = false
	close(m.done)
	m.cancel()
	m.mu.Unlock()

	m.wg.Wait()

	m.logger.Info().Msg("Monitor stopped")
}

func (m *Monitor) run(ctx context.Context, done <-chan struct{}) {
	defer m.wg.Done()

	m.Tick(ctx)

	ticker := m.clock.Ticker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.Chan():
			m.Tick(ctx)
		}
	}
}

// Tick probes every current target once, folds the outcomes into the
// registry and persists the result.
func (m *Monitor) Tick(ctx context.Context) TickSummary {
	start := m.clock.Now()

	ctx, span := m.tracer.Start(ctx, "monitor.tick")
	defer span.End()

	targets := m.registry.Targets()
	summary := TickSummary{Devices: len(targets)}

	for result := range m.prober.ProbeAll(ctx, targets) {
		if ctx.Err() != nil {
			summary.Abandoned++

			continue
		}

		summary.Probed++

		m.recorder.ObserveProbe(result)
		m.handleResult(ctx, result, &summary)
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := m.registry.Persist(persistCtx); err != nil {
		summary.PersistErr = err

		m.recorder.PersistFailed()
		m.logger.Error().Err(err).Msg("Failed to persist devices, will retry next tick")
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
	}

	summary.Duration = m.clock.Now().Sub(start)

	span.SetAttributes(
		attribute.Int("devices", summary.Devices),
		attribute.Int("online", summary.Online),
		attribute.Int("discarded", summary.Discarded),
	)

	m.recorder.ObserveTick(summary.Duration, summary.Devices, summary.Online)

	m.logger.Debug().
		Int("devices", summary.Devices).
		Int("online", summary.Online).
		Int("probed", summary.Probed).
		Int("discarded", summary.Discarded).
		Int("abandoned", summary.Abandoned).
		Dur("duration", summary.Duration).
		Msg("Tick completed")

	for _, l := range m.listeners {
		l(ctx, summary)
	}

	return summary
}

// handleResult isolates panics to the device being updated.
func (m *Monitor) handleResult(ctx context.Context, result models.ProbeResult, summary *TickSummary) {
	defer func() {
		if r := recover(); r != nil {
			summary.Panics++

			m.logger.Error().
				Int64("device_id", result.Target.DeviceID).
				Str("panic", fmt.Sprint(r)).
				Msg("Recovered from panic while updating device")
		}
	}()

	updated, previous, ok := m.registry.UpdateMonitoring(result.Target, func(dev *models.Device) {
		m.smoother.Apply(dev, result.Available())
		m.history.Record(dev, result.Latency)
		dev.Latency = result.Latency
	})
	if !ok {
		summary.Discarded++

		m.logger.Debug().
			Int64("device_id", result.Target.DeviceID).
			Uint64("revision", result.Target.Revision).
			Msg("Discarded result for removed or edited device")

		return
	}

	if updated.IsOnline {
		summary.Online++
	}

	if current := updated.Status(); current != previous {
		m.publishTransition(ctx, updated, previous, current)
	}
}

func (m *Monitor) publishTransition(ctx context.Context, dev *models.Device, previous, current models.DeviceStatus) {
	m.logger.Info().
		Int64("device_id", dev.ID).
		Str("owner", dev.Owner).
		Str("address", dev.Address()).
		Str("previous", string(previous)).
		Str("current", string(current)).
		Msg("Device status changed")

	if m.publisher == nil {
		return
	}

	event := &models.DeviceStatusEventData{
		DeviceID:      dev.ID,
		Owner:         dev.Owner,
		Name:          dev.Name,
		IP:            dev.IP,
		Port:          dev.Port,
		PreviousState: previous,
		CurrentState:  current,
		Latency:       dev.Latency,
		Timestamp:     m.clock.Now().UTC(),
	}

	if err := m.publisher.PublishDeviceStatus(ctx, event); err != nil {
		m.logger.Warn().Err(err).Int64("device_id", dev.ID).Msg("Failed to publish device status event")
	}
}

type nopRecorder struct{}

func (nopRecorder) ObserveProbe(models.ProbeResult)     {}
func (nopRecorder) ObserveTick(time.Duration, int, int) {}
func (nopRecorder) PersistFailed()                      {}
