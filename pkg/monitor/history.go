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

// LatencyHistory keeps the most recent latency samples per device, oldest
// first. Failed probes are stored as 0.
type LatencyHistory struct {
	length int
}

func NewLatencyHistory(length int) *LatencyHistory {
	if length <= 0 {
		length = models.DefaultHistoryLength
	}

	return &LatencyHistory{length: length}
}

func (h *LatencyHistory) Record(dev *models.Device, sample *float64) {
	value := 0.0
	if sample != nil {
		value = *sample
	}

	dev.History = append(dev.History, value)
	if len(dev.History) > h.length {
		dev.History = append([]float64{}, dev.History[len(dev.History)-h.length:]...)
	}
}
