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
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit(t *testing.T) {
	config := &Config{
		Level:  "warn",
		Debug:  true,
		Output: "stderr",
	}

	if err := Init(context.Background(), config); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	if GetLogger().GetLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug to override level, got %v", GetLogger().GetLevel())
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	err := Init(context.Background(), &Config{Level: "chatty"})
	if err == nil {
		t.Fatal("Expected an error for an unknown level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected zerolog.Level
	}{
		{"empty defaults to info", Config{}, zerolog.InfoLevel},
		{"explicit level", Config{Level: "error"}, zerolog.ErrorLevel},
		{"debug flag", Config{Level: "error", Debug: true}, zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := ParseLevel(&tt.config)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if level != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, level)
			}
		})
	}
}

func TestSetDebug(t *testing.T) {
	SetDebug(true)

	if GetLogger().GetLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level after SetDebug(true), got %v", GetLogger().GetLevel())
	}

	SetDebug(false)

	if GetLogger().GetLevel() != zerolog.InfoLevel {
		t.Errorf("Expected info level after SetDebug(false), got %v", GetLogger().GetLevel())
	}
}

func TestWithComponent(t *testing.T) {
	componentLogger := WithComponent("monitor")

	if componentLogger.GetLevel() == zerolog.Disabled {
		t.Error("Component logger should not be disabled")
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OTEL_SERVICE_NAME", "")

	config := DefaultConfig()

	if config.Level != "info" {
		t.Errorf("Expected default level info, got %q", config.Level)
	}

	if config.Output != "stdout" {
		t.Errorf("Expected default output stdout, got %q", config.Output)
	}

	if config.OTel.ServiceName != "blinknet" {
		t.Errorf("Expected default service name blinknet, got %q", config.OTel.ServiceName)
	}
}

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEBUG", "yes")
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_HEADERS", "x-api-key=abc, tenant = t1")

	config := DefaultConfig()

	if config.Level != "debug" || !config.Debug {
		t.Errorf("Expected env overrides, got level=%q debug=%v", config.Level, config.Debug)
	}

	if config.OTel.Headers["tenant"] != "t1" || config.OTel.Headers["x-api-key"] != "abc" {
		t.Errorf("Unexpected headers %v", config.OTel.Headers)
	}
}

func TestNewTestLoggerIsSilent(t *testing.T) {
	l := NewTestLogger()

	if l.Info().Enabled() {
		t.Error("Test logger should discard events")
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders("a=1, b = two ,broken,c=x=y")

	want := map[string]string{"a": "1", "b": "two", "c": "x=y"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d headers, got %v", len(want), got)
	}

	for k, v := range want {
		if got[k] != v {
			t.Errorf("Header %q: expected %q, got %q", k, v, got[k])
		}
	}

	if len(parseHeaders("")) != 0 {
		t.Error("Empty header string should yield no headers")
	}
}

func TestEnvLookupFlag(t *testing.T) {
	env := envLookup(func(key string) (string, bool) {
		values := map[string]string{"ON": "On", "ONE": "1", "OFF": "false", "EMPTY": ""}
		v, ok := values[key]

		return v, ok
	})

	for key, want := range map[string]bool{"ON": true, "ONE": true, "OFF": false, "EMPTY": false, "MISSING": false} {
		if got := env.flag(key); got != want {
			t.Errorf("flag(%q) = %v, want %v", key, got, want)
		}
	}
}
