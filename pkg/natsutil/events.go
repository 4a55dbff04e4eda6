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

// Package natsutil connects to NATS and publishes device status events to
// JetStream.
package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

const eventSource = "blinknet/monitor"

type publisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// EventPublisher publishes CloudEvents to a JetStream stream.
type EventPublisher struct {
	js     publisher
	stream string
	logger logger.Logger
	now    func() time.Time
}

func NewEventPublisher(js jetstream.JetStream, streamName string, log logger.Logger) *EventPublisher {
	return newEventPublisher(js, streamName, log)
}

func newEventPublisher(js publisher, streamName string, log logger.Logger) *EventPublisher {
	return &EventPublisher{
		js:     js,
		stream: streamName,
		logger: log,
		now:    time.Now,
	}
}

// StatusSubject returns the subject status events for owner are published on.
func StatusSubject(owner string) string {
	return models.DeviceStatusSubjectPrefix + "." + sanitizeToken(owner)
}

// PublishDeviceStatus publishes one availability transition.
func (p *EventPublisher) PublishDeviceStatus(ctx context.Context, data *models.DeviceStatusEventData) error {
	ts := data.Timestamp
	if ts.IsZero() {
		ts = p.now().UTC()
	}

	event := models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            models.DeviceStatusEventType,
		DataContentType: "application/json",
		Subject:         StatusSubject(data.Owner),
		Time:            &ts,
		Data:            data,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal device status event: %w", err)
	}

	ack, err := p.js.Publish(ctx, event.Subject, eventBytes)
	if err != nil {
		return fmt.Errorf("failed to publish device status event: %w", err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("subject", event.Subject).
		Uint64("seq", ack.Sequence).
		Msg("Published device status event")

	return nil
}

// CreateEventPublisher ensures the stream exists and covers the status
// subjects, then returns a publisher bound to it.
func CreateEventPublisher(ctx context.Context, nc *nats.Conn, cfg *models.NATSConfig, streamName string, log logger.Logger) (*EventPublisher, error) {
	var (
		js  jetstream.JetStream
		err error
	)

	if cfg != nil && cfg.Domain != "" {
		js, err = jetstream.NewWithDomain(nc, cfg.Domain)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context with domain %s: %w", cfg.Domain, err)
		}
	} else {
		js, err = jetstream.New(nc)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}
	}

	subject := models.DeviceStatusSubjectPrefix + ".*"

	stream, err := js.Stream(ctx, streamName)

	switch {
	case err == nil:
		info, infoErr := stream.Info(ctx)
		if infoErr != nil {
			return nil, fmt.Errorf("failed to read stream %s: %w", streamName, infoErr)
		}

		subjects := ensureSubjectList(append([]string(nil), info.Config.Subjects...), subject)
		if len(subjects) != len(info.Config.Subjects) {
			streamConfig := info.Config
			streamConfig.Subjects = subjects

			if _, err = js.UpdateStream(ctx, streamConfig); err != nil {
				return nil, fmt.Errorf("failed to add %s to stream %s: %w", subject, streamName, err)
			}

			log.Info().Str("stream", streamName).Str("subject", subject).Msg("Extended NATS JetStream stream subjects")
		}
	case isStreamMissingErr(err):
		if _, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     streamName,
			Subjects: []string{subject},
		}); err != nil {
			return nil, fmt.Errorf("failed to create stream %s: %w", streamName, err)
		}

		log.Info().Str("stream", streamName).Msg("Created NATS JetStream stream")
	default:
		return nil, fmt.Errorf("failed to look up stream %s: %w", streamName, err)
	}

	return NewEventPublisher(js, streamName, log), nil
}

func ensureSubjectList(subjects []string, subject string) []string {
	for _, existing := range subjects {
		if matchesSubject(existing, subject) {
			return subjects
		}
	}

	return append(subjects, subject)
}

// matchesSubject reports whether pattern covers subject using NATS token
// wildcards.
func matchesSubject(pattern, subject string) bool {
	pTokens := strings.Split(pattern, ".")
	sTokens := strings.Split(subject, ".")

	for i, tok := range pTokens {
		if tok == ">" {
			return len(sTokens) > i
		}

		if i >= len(sTokens) {
			return false
		}

		if tok != "*" && tok != sTokens[i] {
			return false
		}
	}

	return len(pTokens) == len(sTokens)
}

func isStreamMissingErr(err error) bool {
	return errors.Is(err, jetstream.ErrStreamNotFound) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrStreamNotFound) ||
		errors.Is(err, nats.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrNoResponders)
}

// sanitizeToken keeps owners from injecting subject separators or wildcards.
func sanitizeToken(s string) string {
	if s == "" {
		return "_"
	}

	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}

		return r
	}, s)
}
