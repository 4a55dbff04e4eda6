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

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

// gathered flattens the registry into name{label=value,...} -> value for the
// counters and gauges, and name -> sample count for histograms.
func gathered(t *testing.T, r *Recorder) map[string]float64 {
	t.Helper()

	families, err := r.Registry().Gather()
	require.NoError(t, err)

	out := make(map[string]float64)

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "{" + lp.GetName() + "=" + lp.GetValue() + "}"
			}

			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}

	return out
}

func TestRecorderCountsProbesByResult(t *testing.T) {
	r := NewRecorder()
	latency := 12.5

	r.ObserveProbe(models.ProbeResult{Latency: &latency})
	r.ObserveProbe(models.ProbeResult{Latency: &latency})
	r.ObserveProbe(models.ProbeResult{})

	got := gathered(t, r)
	assert.InDelta(t, 2.0, got["blinknet_probes_total{result=success}"], 0)
	assert.InDelta(t, 1.0, got["blinknet_probes_total{result=failure}"], 0)
	assert.InDelta(t, 2.0, got["blinknet_probe_latency_ms"], 0)
}

func TestRecorderTickAndPersistMetrics(t *testing.T) {
	r := NewRecorder()

	r.ObserveTick(150*time.Millisecond, 5, 3)
	r.ObserveTick(100*time.Millisecond, 4, 4)
	r.PersistFailed()

	got := gathered(t, r)
	assert.InDelta(t, 4.0, got["blinknet_devices"], 0)
	assert.InDelta(t, 4.0, got["blinknet_devices_online"], 0)
	assert.InDelta(t, 2.0, got["blinknet_tick_duration_seconds"], 0)
	assert.InDelta(t, 1.0, got["blinknet_persist_failures_total"], 0)
}

func TestRecorderObserveRequest(t *testing.T) {
	r := NewRecorder()

	r.ObserveRequest(http.MethodGet, "/api/status", http.StatusOK, time.Millisecond)

	got := gathered(t, r)
	assert.InDelta(t, 1.0, got["blinknet_http_requests_total{method=GET}{route=/api/status}{status=200}"], 0)
}

func TestHandlerExposesPrivateRegistry(t *testing.T) {
	r := NewRecorder()
	r.PersistFailed()

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "blinknet_persist_failures_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRecordersAreIndependent(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()

	a.PersistFailed()

	assert.InDelta(t, 0.0, gathered(t, b)["blinknet_persist_failures_total"], 0)
}
