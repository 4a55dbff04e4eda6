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

package scan

import (
	"context"
	"math"
	"net"
	"testing"
	"time"

	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startListener(t *testing.T) (string, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}

			_ = conn.Close()
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)

	return addr.IP.String(), addr.Port
}

// closedPort returns a port that had a listener a moment ago and now refuses.
func closedPort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	return port
}

func TestProbeOpenPort(t *testing.T) {
	t.Parallel()

	host, port := startListener(t)
	p := NewTCPProber(time.Second, 1, logger.NewTestLogger())

	latency := p.Probe(context.Background(), host, port)
	require.NotNil(t, latency)
	assert.GreaterOrEqual(t, *latency, 0.0)
	assert.InDelta(t, math.Round(*latency*100), *latency*100, 1e-6, "latency keeps two decimals")
}

func TestProbeFailuresReturnNil(t *testing.T) {
	t.Parallel()

	p := NewTCPProber(500*time.Millisecond, 1, logger.NewTestLogger())

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	host, port := startListener(t)

	tests := []struct {
		name string
		ctx  context.Context
		host string
		port int
	}{
		{"refused", context.Background(), "127.0.0.1", closedPort(t)},
		{"port zero", context.Background(), "127.0.0.1", 0},
		{"port too large", context.Background(), "127.0.0.1", 70000},
		{"empty host", context.Background(), "", 80},
		{"unresolvable host", context.Background(), "blinknet.invalid", 80},
		{"cancelled context", cancelled, host, port},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, p.Probe(tt.ctx, tt.host, tt.port))
		})
	}
}

func TestProbeAllAnswersEveryTarget(t *testing.T) {
	t.Parallel()

	host, port := startListener(t)
	refused := closedPort(t)

	targets := []models.Target{
		{DeviceID: 1, Host: host, Port: port, Revision: 3},
		{DeviceID: 2, Host: "127.0.0.1", Port: refused},
		{DeviceID: 3, Host: host, Port: port},
		{DeviceID: 4, Host: "127.0.0.1", Port: 0},
	}

	p := NewTCPProber(time.Second, 2, logger.NewTestLogger())

	got := make(map[int64]models.ProbeResult)
	for r := range p.ProbeAll(context.Background(), targets) {
		got[r.Target.DeviceID] = r
	}

	require.Len(t, got, len(targets))
	assert.True(t, got[1].Available())
	assert.Equal(t, uint64(3), got[1].Target.Revision)
	assert.False(t, got[2].Available())
	assert.Error(t, got[2].Err)
	assert.True(t, got[3].Available())
	assert.False(t, got[4].Available())
	assert.ErrorIs(t, got[4].Err, ErrInvalidPort)
}

func TestProbeAllEmpty(t *testing.T) {
	t.Parallel()

	p := NewTCPProber(0, 0, logger.NewTestLogger())

	_, open := <-p.ProbeAll(context.Background(), nil)
	assert.False(t, open)
}

func TestProbeAllClosesOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	targets := make([]models.Target, 50)
	for i := range targets {
		targets[i] = models.Target{DeviceID: int64(i), Host: "127.0.0.1", Port: 1}
	}

	p := NewTCPProber(time.Second, 4, logger.NewTestLogger())

	done := make(chan int)

	go func() {
		received := 0
		for range p.ProbeAll(ctx, targets) {
			received++
		}

		done <- received
	}()

	select {
	case received := <-done:
		assert.Zero(t, received, "dials cut short by cancellation must not be reported")
	case <-time.After(5 * time.Second):
		t.Fatal("ProbeAll did not close its channel after cancellation")
	}
}

func TestRoundMillis(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.23, RoundMillis(1234567*time.Nanosecond), 1e-9)
	assert.InDelta(t, 1.24, RoundMillis(1235001*time.Nanosecond), 1e-9)
	assert.InDelta(t, 2000.0, RoundMillis(2*time.Second), 1e-9)
	assert.Equal(t, 0.0, RoundMillis(0))
}
