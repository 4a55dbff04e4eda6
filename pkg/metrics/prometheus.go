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

// Package metrics exposes monitor and HTTP measurements to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

const namespace = "blinknet"

// Recorder owns a private Prometheus registry so tests and embedders never
// collide with the global one.
type Recorder struct {
	registry *prometheus.Registry

	probesTotal     *prometheus.CounterVec
	probeLatency    prometheus.Histogram
	devices         prometheus.Gauge
	devicesOnline   prometheus.Gauge
	tickDuration    prometheus.Histogram
	persistFailures prometheus.Counter

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		probesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "probes_total",
				Help:      "Total number of TCP connect probes by result",
			},
			[]string{"result"},
		),
		probeLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "probe_latency_ms",
				Help:      "Connect latency of successful probes in milliseconds",
				Buckets:   []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2000},
			},
		),
		devices: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "devices",
				Help:      "Number of devices probed in the last tick",
			},
		),
		devicesOnline: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "devices_online",
				Help:      "Number of devices online after the last tick",
			},
		),
		tickDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tick_duration_seconds",
				Help:      "Wall time of one monitor tick",
				Buckets:   prometheus.DefBuckets,
			},
		),
		persistFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persist_failures_total",
				Help:      "Total number of failed device snapshot writes",
			},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func (r *Recorder) ObserveProbe(result models.ProbeResult) {
	if !result.Available() {
		r.probesTotal.WithLabelValues("failure").Inc()

		return
	}

	r.probesTotal.WithLabelValues("success").Inc()
	r.probeLatency.Observe(*result.Latency)
}

func (r *Recorder) ObserveTick(duration time.Duration, devices, online int) {
	r.tickDuration.Observe(duration.Seconds())
	r.devices.Set(float64(devices))
	r.devicesOnline.Set(float64(online))
}

func (r *Recorder) PersistFailed() {
	r.persistFailures.Inc()
}

// ObserveRequest records one served HTTP request. route is the matched
// route template, not the raw path.
func (r *Recorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	r.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the private registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
