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

// Package scan implements TCP connect probing.
package scan

import (
	"context"
	"fmt"
	"math"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

const (
	defaultTimeout               = 2 * time.Second
	defaultConcurrency           = 16
	defaultConcurrencyMultiplier = 2
)

// TCPProber measures TCP connect latency. It never retries and never
// exchanges data over the connection.
type TCPProber struct {
	timeout     time.Duration
	concurrency int
	logger      logger.Logger
	dialer      net.Dialer
}

func NewTCPProber(timeout time.Duration, concurrency int, log logger.Logger) *TCPProber {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &TCPProber{
		timeout:     timeout,
		concurrency: concurrency,
		logger:      log,
	}
}

// Probe connects to host:port and returns the connect time in milliseconds
// rounded to two decimals, or nil on any failure.
func (p *TCPProber) Probe(ctx context.Context, host string, port int) *float64 {
	latency, _, _ := p.probe(ctx, host, port)

	return latency
}

// ProbeAll probes every target through a bounded worker pool. The channel is
// closed once all targets are answered or ctx ends.
func (p *TCPProber) ProbeAll(ctx context.Context, targets []models.Target) <-chan models.ProbeResult {
	resultCh := make(chan models.ProbeResult, len(targets))
	if len(targets) == 0 {
		close(resultCh)

		return resultCh
	}

	workers := p.concurrency
	if workers > len(targets) {
		workers = len(targets)
	}

	workCh := make(chan models.Target, workers*defaultConcurrencyMultiplier)

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			p.worker(ctx, workCh, resultCh)
		}()
	}

	go func() {
		defer close(workCh)

		for _, t := range targets {
			select {
			case <-ctx.Done():
				return
			case workCh <- t:
			}
		}
	}()

	go func() {
		wg.Wait()

		close(resultCh)
	}()

	return resultCh
}

func (p *TCPProber) worker(ctx context.Context, workCh <-chan models.Target, resultCh chan<- models.ProbeResult) {
	for t := range workCh {
		latency, elapsed, err := p.probe(ctx, t.Host, t.Port)

		// A dial cut short by cancellation says nothing about the target.
		if ctx.Err() != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case resultCh <- models.ProbeResult{Target: t, Latency: latency, Duration: elapsed, Err: err}:
		}
	}
}

func (p *TCPProber) probe(ctx context.Context, host string, port int) (*float64, time.Duration, error) {
	if host == "" {
		return nil, 0, ErrNoHost
	}

	if port < 1 || port > 65535 {
		return nil, 0, fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()

	conn, err := p.dialer.DialContext(probeCtx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	elapsed := time.Since(start)

	if err != nil {
		if probeCtx.Err() != nil {
			return nil, elapsed, probeCtx.Err()
		}

		return nil, elapsed, err
	}

	if err := conn.Close(); err != nil {
		p.logger.Debug().Err(err).Str("host", host).Int("port", port).Msg("failed to close probe connection")
	}

	latency := RoundMillis(elapsed)

	return &latency, elapsed, nil
}

// RoundMillis converts d to milliseconds rounded to two decimal places.
func RoundMillis(d time.Duration) float64 {
	ms := float64(d) / float64(time.Millisecond)

	return math.Round(ms*100) / 100
}
