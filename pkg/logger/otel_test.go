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

package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestOTelConfigDefaults(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_TIMEOUT", "")

	config := DefaultOTelConfig()

	if config.BatchTimeout != Duration(5*time.Second) {
		t.Errorf("Expected default BatchTimeout to be 5s, got %v", config.BatchTimeout)
	}

	if config.Enabled {
		t.Error("OTel export should be disabled by default")
	}
}

func TestOTelWriter_Disabled(t *testing.T) {
	writer, err := NewOTelWriter(context.Background(), OTelConfig{Enabled: false})
	if !errors.Is(err, ErrOTelLoggingDisabled) {
		t.Errorf("Expected ErrOTelLoggingDisabled, got %v", err)
	}

	if writer != nil {
		t.Error("Writer should be nil when OTel is disabled")
	}
}

func TestOTelWriter_NoEndpoint(t *testing.T) {
	writer, err := NewOTelWriter(context.Background(), OTelConfig{Enabled: true})
	if !errors.Is(err, ErrOTelEndpointRequired) {
		t.Errorf("Expected ErrOTelEndpointRequired, got %v", err)
	}

	if writer != nil {
		t.Error("Writer should be nil when endpoint is empty")
	}
}

func TestLoggerWithOTelEnabledButNoEndpoint(t *testing.T) {
	config := &Config{
		Level:  "info",
		Output: "stdout",
		OTel:   OTelConfig{Enabled: true},
	}

	if err := Init(context.Background(), config); err != nil {
		t.Fatalf("Expected stdout-only logger without an endpoint: %v", err)
	}

	Info().Str("test", "value").Msg("Test message with OTel enabled but no endpoint")
}

func TestMapZerologLevelToOTel(t *testing.T) {
	tests := []struct {
		zerologLevel string
		expected     string
	}{
		{"trace", "TRACE"},
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"fatal", "FATAL"},
		{"panic", "FATAL"},
		{"unknown", "INFO"},
	}

	for _, test := range tests {
		result := mapZerologLevelToOTel(test.zerologLevel)
		if result.String() != test.expected {
			t.Errorf("mapZerologLevelToOTel(%s) = %s, expected %s",
				test.zerologLevel, result.String(), test.expected)
		}
	}
}

func TestFormatAttributeValue(t *testing.T) {
	if got := formatAttributeValue(nil); got != "null" {
		t.Errorf("Expected null, got %q", got)
	}

	if got := formatAttributeValue(12.5); got != "12.5" {
		t.Errorf("Expected 12.5, got %q", got)
	}

	if got := formatAttributeValue([]interface{}{1.0, 2.0}); got != "[1,2]" {
		t.Errorf("Expected [1,2], got %q", got)
	}

	long := strings.Repeat("a", maxAttributeValueLength+10)
	got := formatAttributeValue(long)

	if len(got) != maxAttributeValueLength || !strings.HasSuffix(got, "...") {
		t.Errorf("Expected truncation to %d bytes, got %d", maxAttributeValueLength, len(got))
	}
}

func TestMultiWriter(t *testing.T) {
	var a, b bytes.Buffer

	mw := NewMultiWriter(&a, &b)

	n, err := mw.Write([]byte("line\n"))
	if err != nil || n != 5 {
		t.Fatalf("Unexpected write result n=%d err=%v", n, err)
	}

	if a.String() != "line\n" || b.String() != "line\n" {
		t.Errorf("Expected both writers to receive the line, got %q and %q", a.String(), b.String())
	}
}
