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

package models

import "time"

const (
	// DeviceStatusEventType is the CloudEvents type for availability transitions.
	DeviceStatusEventType = "com.blinknet.device.status"
	// DeviceStatusSubjectPrefix is followed by the owning user.
	DeviceStatusSubjectPrefix = "events.devices.status"
)

// CloudEvent represents a CloudEvents v1.0 compliant event.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// DeviceStatusEventData is the payload published when the derived status of a
// device changes.
type DeviceStatusEventData struct {
	DeviceID      int64        `json:"device_id"`
	Owner         string       `json:"owner"`
	Name          string       `json:"name"`
	IP            string       `json:"ip"`
	Port          int          `json:"port"`
	PreviousState DeviceStatus `json:"previous_state"`
	CurrentState  DeviceStatus `json:"current_state"`
	Latency       *float64     `json:"latency"`
	Timestamp     time.Time    `json:"timestamp"`
}
