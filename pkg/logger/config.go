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
	"os"
	"strings"
	"time"
)

const (
	defaultServiceName  = "blinknet"
	defaultBatchTimeout = 5 * time.Second
)

// DefaultConfig builds the logging configuration used when the config
// document has no logging section. It reads LOG_LEVEL, DEBUG, LOG_OUTPUT,
// LOG_TIME_FORMAT and the OTLP log exporter variables.
func DefaultConfig() *Config {
	env := envLookup(os.LookupEnv)

	return &Config{
		Level:      env.str("LOG_LEVEL", "info"),
		Debug:      env.flag("DEBUG"),
		Output:     env.str("LOG_OUTPUT", "stdout"),
		TimeFormat: env.str("LOG_TIME_FORMAT", ""),
		OTel:       env.otel(),
	}
}

// DefaultOTelConfig returns the OTLP log export settings from the environment.
// Export stays off unless OTEL_LOGS_ENABLED is set.
func DefaultOTelConfig() OTelConfig {
	return envLookup(os.LookupEnv).otel()
}

type envLookup func(key string) (string, bool)

func (e envLookup) str(key, fallback string) string {
	if v, ok := e(key); ok && v != "" {
		return v
	}

	return fallback
}

func (e envLookup) flag(key string) bool {
	switch strings.ToLower(e.str(key, "")) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func (e envLookup) otel() OTelConfig {
	return OTelConfig{
		Enabled:      e.flag("OTEL_LOGS_ENABLED"),
		Endpoint:     e.str("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT", ""),
		Headers:      parseHeaders(e.str("OTEL_EXPORTER_OTLP_LOGS_HEADERS", "")),
		ServiceName:  e.str("OTEL_SERVICE_NAME", defaultServiceName),
		BatchTimeout: Duration(defaultBatchTimeout),
		Insecure:     e.flag("OTEL_EXPORTER_OTLP_LOGS_INSECURE"),
	}
}

// parseHeaders reads "k1=v1,k2=v2". Pairs without '=' are ignored.
func parseHeaders(raw string) map[string]string {
	headers := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}

		headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	return headers
}
