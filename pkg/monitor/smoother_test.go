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

package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

func TestSmootherFreshDeviceIsUnknown(t *testing.T) {
	dev := models.NewDevice(1, "alice", models.DeviceSpec{Name: "a", IP: "10.0.0.1", Port: 80})

	assert.Equal(t, models.DeviceStatusUnknown, dev.Status())
	assert.False(t, dev.IsOnline)
}

func TestSmootherDebouncesFailures(t *testing.T) {
	s := NewSmoother(3)
	dev := models.NewDevice(1, "alice", models.DeviceSpec{Name: "a", IP: "10.0.0.1", Port: 80})

	steps := []struct {
		outcome bool
		online  bool
	}{
		{true, true},
		{false, true},
		{false, true},
		{false, false},
		{false, false},
		{true, true},
	}

	for i, step := range steps {
		s.Apply(dev, step.outcome)
		assert.Equal(t, step.online, dev.IsOnline, "step %d", i)
	}

	assert.Equal(t, []bool{false, false, true}, dev.StatusHistory)
}

func TestSmootherFirstFailureIsOffline(t *testing.T) {
	s := NewSmoother(3)
	dev := models.NewDevice(1, "alice", models.DeviceSpec{Name: "a", IP: "10.0.0.1", Port: 80})

	s.Apply(dev, false)

	assert.False(t, dev.IsOnline)
	assert.Equal(t, models.DeviceStatusOffline, dev.Status())
}

// Every outcome sequence up to length 8: online exactly when the retained
// window holds at least one success, and the window never exceeds its bound.
func TestSmootherExhaustiveSequences(t *testing.T) {
	const (
		window = 3
		maxLen = 8
	)

	s := NewSmoother(window)

	for n := 1; n <= maxLen; n++ {
		for bits := 0; bits < 1<<n; bits++ {
			dev := models.NewDevice(1, "alice", models.DeviceSpec{Name: "a", IP: "10.0.0.1", Port: 80})
			seq := make([]bool, n)

			for i := range seq {
				seq[i] = bits&(1<<i) != 0
				s.Apply(dev, seq[i])

				require.LessOrEqual(t, len(dev.StatusHistory), window)

				start := 0
				if i+1 > window {
					start = i + 1 - window
				}

				expectedWindow := seq[start : i+1]
				require.Equal(t, expectedWindow, dev.StatusHistory, "sequence %v step %d", seq, i)

				if seq[i] {
					require.True(t, dev.IsOnline, "success must mark online: %v", seq[:i+1])
				}

				require.Equal(t, anySuccess(expectedWindow), dev.IsOnline, "sequence %v step %d", seq, i)
			}
		}
	}
}

func TestSmootherDefaultsWindow(t *testing.T) {
	assert.Equal(t, models.DefaultSmoothingCount, NewSmoother(0).window)
}
