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

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

var (
	ErrDeviceNameRequired = errors.New("device name is required")
	ErrDeviceIPRequired   = errors.New("device ip is required")
	ErrDevicePortRange    = errors.New("device port must be between 1 and 65535")
	ErrDeviceOwner        = errors.New("device owner is required")
)

// DeviceStatus is the derived availability state of a device.
type DeviceStatus string

const (
	// DeviceStatusUnknown means the device has not been probed since it was
	// registered or last edited.
	DeviceStatusUnknown DeviceStatus = "unknown"
	DeviceStatusOnline  DeviceStatus = "online"
	DeviceStatusOffline DeviceStatus = "offline"
)

// Device is a monitored endpoint owned by a single user. The JSON layout is the
// persisted record shape.
type Device struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	IP            string    `json:"ip"`
	Protocol      string    `json:"protocol"`
	Port          int       `json:"port"`
	Owner         string    `json:"owner"`
	Latency       *float64  `json:"latency"`
	IsOnline      bool      `json:"is_online"`
	History       []float64 `json:"history"`
	StatusHistory []bool    `json:"status_history"`
}

// DeviceSpec carries the identity fields supplied on registration or edit.
type DeviceSpec struct {
	Name     string `json:"name"`
	IP       string `json:"ip"`
	Protocol string `json:"protocol"`
	Port     int    `json:"port"`
}

// DeviceView is the read API representation of a device.
type DeviceView struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	IP       string    `json:"ip"`
	Latency  *float64  `json:"latency"`
	IsOnline bool      `json:"is_online"`
	History  []float64 `json:"history"`
}

// Validate normalizes and checks the identity fields.
func (s *DeviceSpec) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	s.IP = strings.TrimSpace(s.IP)
	s.Protocol = strings.TrimSpace(s.Protocol)

	if s.Name == "" {
		return ErrDeviceNameRequired
	}

	if s.IP == "" {
		return ErrDeviceIPRequired
	}

	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrDevicePortRange, s.Port)
	}

	if s.Protocol == "" {
		s.Protocol = "tcp"
	}

	return nil
}

// NewDevice builds a freshly registered device with empty monitoring state.
func NewDevice(id int64, owner string, spec DeviceSpec) *Device {
	return &Device{
		ID:            id,
		Name:          spec.Name,
		IP:            spec.IP,
		Protocol:      spec.Protocol,
		Port:          spec.Port,
		Owner:         owner,
		History:       []float64{},
		StatusHistory: []bool{},
	}
}

// Apply overwrites the identity fields and clears the smoothing window, which
// returns the device to the unknown status. History is kept for display
// continuity.
func (d *Device) Apply(spec DeviceSpec) {
	d.Name = spec.Name
	d.IP = spec.IP
	d.Protocol = spec.Protocol
	d.Port = spec.Port
	d.StatusHistory = []bool{}
	d.IsOnline = false
}

// Status derives the tri-state availability from the smoothing window.
func (d *Device) Status() DeviceStatus {
	if len(d.StatusHistory) == 0 {
		return DeviceStatusUnknown
	}

	if d.IsOnline {
		return DeviceStatusOnline
	}

	return DeviceStatusOffline
}

// View returns a copy of the fields exposed by the read API.
func (d *Device) View() DeviceView {
	return DeviceView{
		ID:       d.ID,
		Name:     d.Name,
		IP:       d.IP,
		Latency:  copyFloatPtr(d.Latency),
		IsOnline: d.IsOnline,
		History:  append([]float64{}, d.History...),
	}
}

// Clone returns a deep copy so callers never share slices with the registry.
func (d *Device) Clone() *Device {
	if d == nil {
		return nil
	}

	c := *d
	c.Latency = copyFloatPtr(d.Latency)
	c.History = append([]float64{}, d.History...)
	c.StatusHistory = append([]bool{}, d.StatusHistory...)

	return &c
}

// Normalize repairs records loaded from persistence: nil slices become empty
// and windows longer than the configured bounds are trimmed to their newest
// entries.
func (d *Device) Normalize(smoothingCount, historyLength int) {
	if d.History == nil {
		d.History = []float64{}
	}

	if d.StatusHistory == nil {
		d.StatusHistory = []bool{}
	}

	if smoothingCount > 0 && len(d.StatusHistory) > smoothingCount {
		d.StatusHistory = append([]bool{}, d.StatusHistory[len(d.StatusHistory)-smoothingCount:]...)
	}

	if historyLength > 0 && len(d.History) > historyLength {
		d.History = append([]float64{}, d.History[len(d.History)-historyLength:]...)
	}

	if len(d.StatusHistory) == 0 {
		d.IsOnline = false
	}
}

// Address returns the host:port dial string.
func (d *Device) Address() string {
	return net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}

func copyFloatPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}

	c := *v

	return &c
}
