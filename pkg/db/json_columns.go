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

package db

import (
	"encoding/json"
	"fmt"

	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

// encodeWindows renders the history slices for JSON text columns.
func encodeWindows(d *models.Device) (history, statusHistory string, err error) {
	h := d.History
	if h == nil {
		h = []float64{}
	}

	sh := d.StatusHistory
	if sh == nil {
		sh = []bool{}
	}

	hb, err := json.Marshal(h)
	if err != nil {
		return "", "", fmt.Errorf("device %d history: %w", d.ID, err)
	}

	shb, err := json.Marshal(sh)
	if err != nil {
		return "", "", fmt.Errorf("device %d status_history: %w", d.ID, err)
	}

	return string(hb), string(shb), nil
}

func decodeWindows(d *models.Device, history, statusHistory []byte) error {
	d.History = []float64{}
	d.StatusHistory = []bool{}

	if len(history) > 0 {
		if err := json.Unmarshal(history, &d.History); err != nil {
			return fmt.Errorf("device %d history: %w", d.ID, err)
		}
	}

	if len(statusHistory) > 0 {
		if err := json.Unmarshal(statusHistory, &d.StatusHistory); err != nil {
			return fmt.Errorf("device %d status_history: %w", d.ID, err)
		}
	}

	return nil
}
