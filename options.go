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

package waymark

import (
	"log/slog"

	"github.com/waymark-dev/waymark/config"
	"github.com/waymark-dev/waymark/metrics"
)

// WithConfig sets the engine's configuration surface: base domain,
// strict subdomain mode and its allow-list, cache directory, and debug
// verbosity.
//
// Example:
//
//	e := waymark.MustNew(waymark.WithConfig(config.Config{
//	    BaseDomain:        "example.com",
//	    StrictSubdomains:  true,
//	    AllowedSubdomains: []string{"api", "admin"},
//	}))
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithLogger sets the structured logger used for cache recovery notices
// and debug diagnostics. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithMetrics attaches a dispatch telemetry recorder. Telemetry is
// purely additive bookkeeping and never affects matching outcomes.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(e *Engine) {
		e.rec = rec
	}
}

// WithDiagnostics sets a diagnostic handler. Diagnostic events are
// optional; the engine behaves identically whether they are collected
// or not.
//
// Example:
//
//	handler := waymark.DiagnosticHandlerFunc(func(ev waymark.DiagnosticEvent) {
//	    slog.Warn(ev.Message, "kind", ev.Kind, "fields", ev.Fields)
//	})
//	e := waymark.MustNew(waymark.WithDiagnostics(handler))
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(e *Engine) {
		e.diagnostics = handler
	}
}

// WithBloomFilterSize sets the bit size of the static index's negative-
// lookup filter. Must be > 0 or New fails validation.
//
// Default: 1000. Recommended: 2-3x the number of static routes.
func WithBloomFilterSize(size uint64) Option {
	return func(e *Engine) {
		e.bloomSize = size
	}
}

// WithBloomFilterHashFunctions sets the number of derived hash functions
// used by the filter. Values are clamped to [1, 10].
//
// Default: 3.
func WithBloomFilterHashFunctions(n int) Option {
	return func(e *Engine) {
		e.bloomHashFuncs = n
	}
}
