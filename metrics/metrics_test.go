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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilRecorderIsSafe(t *testing.T) {
	t.Parallel()

	var r *Recorder
	r.RecordRegistration()
	r.RecordDispatch(time.Millisecond, true)
	assert.Equal(t, Stats{}, r.Stats())
}

func TestRecorderAggregates(t *testing.T) {
	t.Parallel()

	r := MustNew()

	r.RecordRegistration()
	r.RecordRegistration()
	r.RecordDispatch(10*time.Millisecond, true)
	r.RecordDispatch(20*time.Millisecond, true)
	r.RecordDispatch(30*time.Millisecond, false)

	s := r.Stats()
	assert.Equal(t, uint64(2), s.Registrations)
	assert.Equal(t, uint64(3), s.Dispatches)
	assert.Equal(t, uint64(2), s.Successes)
	assert.Equal(t, uint64(1), s.Failures)
	assert.Equal(t, 20*time.Millisecond, s.MovingAverage)
	assert.Equal(t, 20*time.Millisecond, s.LifetimeAverage)
	assert.InDelta(t, 2.0/3.0, s.SuccessRate, 1e-9)
}

func TestRecorderEmptyStats(t *testing.T) {
	t.Parallel()

	s := MustNew().Stats()
	assert.Zero(t, s.MovingAverage)
	assert.Zero(t, s.LifetimeAverage)
	assert.Zero(t, s.SuccessRate)
}

func TestMovingAverageWindowBounded(t *testing.T) {
	t.Parallel()

	r := MustNew(WithWindowSize(4))

	// Old samples fall out of the window; the lifetime average keeps them.
	for i := 0; i < 100; i++ {
		r.RecordDispatch(time.Second, true)
	}
	for i := 0; i < 4; i++ {
		r.RecordDispatch(time.Millisecond, true)
	}

	s := r.Stats()
	assert.Equal(t, time.Millisecond, s.MovingAverage)
	assert.Greater(t, s.LifetimeAverage, time.Millisecond)
}

func TestWithWindowSizeInvalid(t *testing.T) {
	t.Parallel()

	_, err := New(WithWindowSize(0))
	assert.ErrorIs(t, err, ErrWindowSizeInvalid)

	_, err = New(WithWindowSize(-5))
	assert.ErrorIs(t, err, ErrWindowSizeInvalid)
}

func TestWithPrometheus(t *testing.T) {
	t.Parallel()

	r, err := New(WithPrometheus())
	require.NoError(t, err)
	require.NotNil(t, r.PrometheusHandler())

	r.RecordDispatch(5*time.Millisecond, true)
	assert.Equal(t, uint64(1), r.Stats().Dispatches)
}

func TestPrometheusHandlerNilWithoutProvider(t *testing.T) {
	t.Parallel()

	assert.Nil(t, MustNew().PrometheusHandler())

	var r *Recorder
	assert.Nil(t, r.PrometheusHandler())
}

func TestRecorderConcurrent(t *testing.T) {
	t.Parallel()

	r := MustNew()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 250; j++ {
				r.RecordDispatch(time.Microsecond, j%2 == 0)
				r.RecordRegistration()
			}
		}()
	}
	wg.Wait()

	s := r.Stats()
	assert.Equal(t, uint64(2000), s.Dispatches)
	assert.Equal(t, uint64(2000), s.Registrations)
	assert.Equal(t, uint64(1000), s.Failures)
}
