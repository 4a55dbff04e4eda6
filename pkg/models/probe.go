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

// Target is one probe job captured from the registry at the start of a tick.
type Target struct {
	DeviceID int64
	Host     string
	Port     int
	// Revision is the device revision at capture time. Results carrying an
	// older revision are discarded by the registry.
	Revision uint64
}

// ProbeResult is the outcome of probing a single Target.
type ProbeResult struct {
	Target   Target
	Latency  *float64
	Duration time.Duration
	// Err is the dial error for diagnostics only; a failed probe is not an
	// error condition.
	Err error
}

// Available reports whether the connect succeeded.
func (r ProbeResult) Available() bool {
	return r.Latency != nil
}
