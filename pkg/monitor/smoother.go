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

import "github.com/Hunter-Bennett/Blinknet/pkg/models"

// Smoother debounces raw probe outcomes. A single success marks the device
// online; it goes offline only once every outcome in the window failed.
type Smoother struct {
	window int
}

func NewSmoother(window int) *Smoother {
	if window <= 0 {
		window = models.DefaultSmoothingCount
	}

	return &Smoother{window: window}
}

// Apply records outcome in dev.StatusHistory and recomputes dev.IsOnline.
func (s *Smoother) Apply(dev *models.Device, outcome bool) {
	dev.StatusHistory = append(dev.StatusHistory, outcome)
	if len(dev.StatusHistory) > s.window {
		dev.StatusHistory = append([]bool{}, dev.StatusHistory[len(dev.StatusHistory)-s.window:]...)
	}

	if outcome {
		dev.IsOnline = true

		return
	}

	// Offline only once the retained window holds nothing but failures.
	dev.IsOnline = anySuccess(dev.StatusHistory)
}

func anySuccess(outcomes []bool) bool {
	for _, ok := range outcomes {
		if ok {
			return true
		}
	}

	return false
}
