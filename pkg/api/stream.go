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
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	bnHttp "github.com/Hunter-Bennett/Blinknet/pkg/http"
	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

const (
	streamMessageSnapshot = "snapshot"

	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
	streamReadLimit  = 512
)

type snapshotter interface {
	SnapshotFor(owner string) []models.DeviceView
}

// streamHub fans completed-tick snapshots out to dashboard websockets. Each
// client only ever sees its owner's devices.
type streamHub struct {
	devices snapshotter
	logger  logger.Logger

	mu      sync.Mutex
	clients map[*streamClient]struct{}
}

type streamClient struct {
	owner string
	conn  *websocket.Conn

	// send holds at most the newest undelivered message.
	send      chan models.StreamMessage
	pushMu    sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

func newStreamHub(devices snapshotter, log logger.Logger) *streamHub {
	return &streamHub{
		devices: devices,
		logger:  log,
		clients: make(map[*streamClient]struct{}),
	}
}

func (h *streamHub) handleStream(checkOrigin func(*http.Request) bool) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := bnHttp.OwnerFromContext(r.Context())
		if !ok {
			writeError(w, "unauthorized", http.StatusUnauthorized)

			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Error().
				Err(err).
				Str("remote_addr", r.RemoteAddr).
				Str("origin", r.Header.Get("Origin")).
				Msg("Failed to upgrade to WebSocket")

			return
		}

		c := &streamClient{
			owner: owner,
			conn:  conn,
			send:  make(chan models.StreamMessage, 1),
			done:  make(chan struct{}),
		}

		h.add(c)
		defer h.remove(c)

		h.logger.Info().Str("remote_addr", r.RemoteAddr).Str("owner", owner).Msg("Dashboard stream connected")

		c.push(snapshotMessage(h.devices.SnapshotFor(owner)))

		go h.writePump(c)

		h.readPump(c)

		h.logger.Debug().Str("remote_addr", r.RemoteAddr).Msg("Dashboard stream closed")
	}
}

// broadcast sends every connected client its owner's current snapshot.
func (h *streamHub) broadcast() {
	h.mu.Lock()
	clients := make([]*streamClient, 0, len(h.clients))

	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	snapshots := make(map[string]models.StreamMessage)

	for _, c := range clients {
		msg, ok := snapshots[c.owner]
		if !ok {
			msg = snapshotMessage(h.devices.SnapshotFor(c.owner))
			snapshots[c.owner] = msg
		}

		c.push(msg)
	}
}

func (h *streamHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		c.close()
	}
}

func (h *streamHub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

func (h *streamHub) add(c *streamClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *streamHub) remove(c *streamClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	c.close()
}

// readPump drains client frames so pongs and close frames are processed. It
// returns once the client disconnects.
func (h *streamHub) readPump(c *streamClient) {
	c.conn.SetReadLimit(streamReadLimit)

	if err := c.conn.SetReadDeadline(time.Now().Add(streamPongWait)); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to set WebSocket read deadline")
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Msg("Dashboard stream read failed")
			}

			return
		}
	}
}

func (h *streamHub) writePump(c *streamClient) {
	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))

			if err := c.conn.WriteJSON(msg); err != nil {
				h.logger.Debug().Err(err).Str("owner", c.owner).Msg("Dashboard stream write failed")
				c.close()

				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				c.close()

				return
			}
		}
	}
}

// push replaces any undelivered message with msg.
func (c *streamClient) push(msg models.StreamMessage) {
	c.pushMu.Lock()
	defer c.pushMu.Unlock()

	select {
	case <-c.send:
	default:
	}

	c.send <- msg
}

func (c *streamClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func snapshotMessage(devices []models.DeviceView) models.StreamMessage {
	return models.StreamMessage{
		Type:      streamMessageSnapshot,
		Devices:   devices,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// checkWebSocketOrigin validates WebSocket origin against CORS configuration
func (s *APIServer) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}

	for _, allowedOrigin := range s.corsConfig.AllowedOrigins {
		if allowedOrigin == origin || allowedOrigin == "*" {
			return true
		}
	}

	s.logger.Warn().Str("origin", origin).Msg("Rejected WebSocket origin")

	return false
}
