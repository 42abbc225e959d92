// Copyright 2026 The Waymark Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ErrWindowSizeInvalid indicates a non-positive rolling window size.
var ErrWindowSizeInvalid = errors.New("rolling window size must be positive")

// Option configures a Recorder.
type Option func(*Recorder) error

// promState holds the Prometheus-provider extras, set by WithPrometheus.
type promState struct {
	registry *promclient.Registry
	handler  http.Handler
}

// WithWindowSize sets the rolling window length for the moving average.
//
// Default: DefaultWindowSize.
func WithWindowSize(n int) Option {
	return func(r *Recorder) error {
		if n <= 0 {
			return fmt.Errorf("%w: %d", ErrWindowSizeInvalid, n)
		}
		r.window = make([]time.Duration, n)
		return nil
	}
}

// WithMeterProvider mirrors the recorder's instruments onto an existing
// OpenTelemetry meter provider, typically the application's global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(r *Recorder) error {
		r.meter = mp.Meter(meterName)
		return nil
	}
}

// WithPrometheus backs the instruments with a dedicated Prometheus
// registry. The scrape handler is available via PrometheusHandler.
func WithPrometheus() Option {
	return func(r *Recorder) error {
		registry := promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return fmt.Errorf("create prometheus exporter: %w", err)
		}
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
		r.meter = provider.Meter(meterName)
		r.prom = &promState{
			registry: registry,
			handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}
		return nil
	}
}

// WithStdout periodically dumps metrics to stdout. Intended for debug
// runs, not production.
func WithStdout(interval time.Duration) Option {
	return func(r *Recorder) error {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("create stdout exporter: %w", err)
		}
		reader := sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(interval))
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		r.meter = provider.Meter(meterName)
		return nil
	}
}

// PrometheusHandler returns the scrape handler when WithPrometheus was
// used, or nil otherwise.
func (r *Recorder) PrometheusHandler() http.Handler {
	if r == nil || r.prom == nil {
		return nil
	}
	return r.prom.handler
}
