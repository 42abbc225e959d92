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

// Package metrics records dispatch telemetry for the routing engine:
// registration and dispatch counters, a bounded rolling window of recent
// dispatch durations for an approximate moving average, plus lifetime
// average and success rate.
//
// Recording is purely additive bookkeeping and never affects matching
// outcomes. A nil *Recorder is valid and records nothing, so callers
// never need to guard their recording sites.
//
// Counters and the duration histogram are mirrored to OpenTelemetry
// instruments; the in-process aggregates in Stats stay available without
// any exporter configured.
package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// DefaultWindowSize bounds the rolling window of recent dispatch
// durations.
const DefaultWindowSize = 128

// Recording reuses context.Background() for instrument calls: it is
// immutable, safe for concurrent use, and the engine's Match has no
// request context to thread through.
var bgCtx = context.Background()

// Recorder accumulates routing telemetry. All methods are safe for
// concurrent use and safe on a nil receiver.
type Recorder struct {
	mu sync.Mutex

	registrations uint64
	successes     uint64
	failures      uint64
	totalDuration time.Duration

	// window is a ring of the most recent dispatch durations.
	window []time.Duration
	head   int
	filled int

	meter            metric.Meter
	prom             *promState
	registrationsCtr metric.Int64Counter
	dispatchCtr      metric.Int64Counter
	failureCtr       metric.Int64Counter
	durationHist     metric.Float64Histogram
}

// Stats is a point-in-time snapshot of the recorder's aggregates.
type Stats struct {
	Registrations uint64
	Dispatches    uint64 // successes + failures
	Successes     uint64
	Failures      uint64

	// MovingAverage is the mean of the rolling window; zero when no
	// dispatch has been recorded yet.
	MovingAverage time.Duration

	// LifetimeAverage is the mean over every recorded dispatch.
	LifetimeAverage time.Duration

	// SuccessRate is successes / dispatches in [0, 1]; zero when no
	// dispatch has been recorded yet.
	SuccessRate float64
}

// New creates a Recorder. Without provider options the OpenTelemetry
// side uses a no-op meter and only the in-process aggregates are live.
func New(opts ...Option) (*Recorder, error) {
	r := &Recorder{
		window: make([]time.Duration, DefaultWindowSize),
		meter:  noop.NewMeterProvider().Meter(meterName),
	}
	for _, o := range opts {
		if err := o(r); err != nil {
			return nil, err
		}
	}
	if err := r.initInstruments(); err != nil {
		return nil, err
	}
	return r, nil
}

// MustNew is New but panics on error.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

const meterName = "github.com/waymark-dev/waymark/metrics"

func (r *Recorder) initInstruments() error {
	var err error

	r.registrationsCtr, err = r.meter.Int64Counter(
		"router_registrations_total",
		metric.WithDescription("Total number of registered routes"),
	)
	if err != nil {
		return fmt.Errorf("create registrations counter: %w", err)
	}

	r.dispatchCtr, err = r.meter.Int64Counter(
		"router_dispatches_total",
		metric.WithDescription("Total number of dispatch queries"),
	)
	if err != nil {
		return fmt.Errorf("create dispatch counter: %w", err)
	}

	r.failureCtr, err = r.meter.Int64Counter(
		"router_dispatch_failures_total",
		metric.WithDescription("Total number of dispatch queries that returned an error"),
	)
	if err != nil {
		return fmt.Errorf("create failure counter: %w", err)
	}

	r.durationHist, err = r.meter.Float64Histogram(
		"router_dispatch_duration_seconds",
		metric.WithDescription("Duration of dispatch queries in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("create duration histogram: %w", err)
	}

	return nil
}

// RecordRegistration counts one successful route registration.
func (r *Recorder) RecordRegistration() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.registrations++
	r.mu.Unlock()
	r.registrationsCtr.Add(bgCtx, 1)
}

// RecordDispatch counts one dispatch query and its duration.
func (r *Recorder) RecordDispatch(d time.Duration, ok bool) {
	if r == nil {
		return
	}

	r.mu.Lock()
	if ok {
		r.successes++
	} else {
		r.failures++
	}
	r.totalDuration += d
	r.window[r.head] = d
	r.head = (r.head + 1) % len(r.window)
	if r.filled < len(r.window) {
		r.filled++
	}
	r.mu.Unlock()

	r.dispatchCtr.Add(bgCtx, 1)
	if !ok {
		r.failureCtr.Add(bgCtx, 1)
	}
	r.durationHist.Record(bgCtx, d.Seconds())
}

// Stats returns a consistent snapshot of the aggregates.
func (r *Recorder) Stats() Stats {
	if r == nil {
		return Stats{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s := Stats{
		Registrations: r.registrations,
		Successes:     r.successes,
		Failures:      r.failures,
		Dispatches:    r.successes + r.failures,
	}

	if r.filled > 0 {
		var sum time.Duration
		for i := 0; i < r.filled; i++ {
			sum += r.window[i]
		}
		s.MovingAverage = sum / time.Duration(r.filled)
	}
	if s.Dispatches > 0 {
		s.LifetimeAverage = r.totalDuration / time.Duration(s.Dispatches)
		s.SuccessRate = float64(s.Successes) / float64(s.Dispatches)
	}

	return s
}
