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

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hunter-Bennett/Blinknet/pkg/db"
	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
	"github.com/Hunter-Bennett/Blinknet/pkg/metrics"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
	"github.com/Hunter-Bennett/Blinknet/pkg/monitor"
	"github.com/Hunter-Bennett/Blinknet/pkg/registry"
)

var testKeys = map[string]string{"alice-key": "alice", "bob-key": "bob"}

func newTestServer(t *testing.T) (*APIServer, *registry.DeviceRegistry) {
	t.Helper()

	log := logger.NewTestLogger()
	store := db.NewFileStore(filepath.Join(t.TempDir(), "devices.json"), log)
	reg := registry.NewDeviceRegistry(store, models.MonitorConfig{}, log)

	srv := NewAPIServer(models.CORSConfig{}, reg, log, WithAPIKeys(testKeys), WithMetrics(metrics.NewRecorder()))

	return srv, reg
}

func do(t *testing.T, h http.Handler, method, path, key string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody

	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)

		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())

	return v
}

func TestHealthzNeedsNoKey(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv.Handler(), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestStatusRequiresKey(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv.Handler(), http.MethodGet, "/api/status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, srv.Handler(), http.MethodGet, "/api/status", "nope", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestStatusEmptyIsArray(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv.Handler(), http.MethodGet, "/api/status", "alice-key", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestDeviceLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rr := do(t, h, http.MethodPost, "/api/devices", "alice-key",
		models.DeviceSpec{Name: "router", IP: "192.168.1.1", Port: 80})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	created := decode[models.DeviceView](t, rr)
	assert.Equal(t, int64(1), created.ID)
	assert.Nil(t, created.Latency)
	assert.False(t, created.IsOnline)

	rr = do(t, h, http.MethodGet, "/api/devices/1", "alice-key", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t,
		`{"id":1,"name":"router","ip":"192.168.1.1","latency":null,"is_online":false,"history":[]}`,
		rr.Body.String())

	rr = do(t, h, http.MethodGet, "/api/devices/1", "bob-key", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodPut, "/api/devices/1", "alice-key",
		models.DeviceSpec{Name: "core", IP: "192.168.1.2", Port: 443})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "core", decode[models.DeviceView](t, rr).Name)

	rr = do(t, h, http.MethodPut, "/api/devices/1", "bob-key",
		models.DeviceSpec{Name: "mine", IP: "192.168.1.2", Port: 443})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodDelete, "/api/devices/1", "bob-key", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodDelete, "/api/devices/1", "alice-key", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodDelete, "/api/devices/1", "alice-key", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	errBody := decode[models.ErrorResponse](t, rr)
	assert.Equal(t, http.StatusNotFound, errBody.Status)
}

func TestDeviceValidationErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rr := do(t, h, http.MethodPost, "/api/devices", "alice-key", models.DeviceSpec{Name: "x", IP: "10.0.0.1", Port: 0})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/devices", "alice-key", "{broken")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/devices/abc", "alice-key", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/devices/-3", "alice-key", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStatusShowsOnlyOwnersDevices(t *testing.T) {
	srv, reg := newTestServer(t)
	ctx := context.Background()

	_, err := reg.Add(ctx, "alice", models.DeviceSpec{Name: "a1", IP: "10.0.0.1", Port: 80})
	require.NoError(t, err)
	_, err = reg.Add(ctx, "bob", models.DeviceSpec{Name: "b1", IP: "10.0.0.2", Port: 80})
	require.NoError(t, err)
	_, err = reg.Add(ctx, "alice", models.DeviceSpec{Name: "a2", IP: "10.0.0.3", Port: 80})
	require.NoError(t, err)

	rr := do(t, srv.Handler(), http.MethodGet, "/api/status", "alice-key", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	views := decode[[]models.DeviceView](t, rr)
	require.Len(t, views, 2)
	assert.Equal(t, "a1", views[0].Name)
	assert.Equal(t, "a2", views[1].Name)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	do(t, h, http.MethodGet, "/api/status", "alice-key", nil)

	rr := do(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `blinknet_http_requests_total{method="GET",route="/api/status",status="200"} 1`)
}

func TestStreamPushesOwnerSnapshotAfterTick(t *testing.T) {
	srv, reg := newTestServer(t)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/stream?api_key=alice-key"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first models.StreamMessage
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "snapshot", first.Type)
	assert.Empty(t, first.Devices)

	_, err = reg.Add(context.Background(), "alice", models.DeviceSpec{Name: "edge", IP: "10.0.0.9", Port: 22})
	require.NoError(t, err)
	_, err = reg.Add(context.Background(), "bob", models.DeviceSpec{Name: "hidden", IP: "10.0.0.10", Port: 22})
	require.NoError(t, err)

	srv.OnTick(context.Background(), monitor.TickSummary{})

	var second models.StreamMessage
	require.NoError(t, conn.ReadJSON(&second))
	require.Len(t, second.Devices, 1)
	assert.Equal(t, "edge", second.Devices[0].Name)

	require.NoError(t, srv.Shutdown(context.Background()))
}

func TestStreamRejectsMissingKey(t *testing.T) {
	srv, _ := newTestServer(t)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/stream"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
