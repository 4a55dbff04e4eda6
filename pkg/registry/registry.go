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

// Package registry owns the in-memory device set shared by the API and the
// monitor.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Hunter-Bennett/Blinknet/pkg/db"
	"github.com/Hunter-Bennett/Blinknet/pkg/logger"
	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrInvalidDevice  = errors.New("invalid device")
)

type entry struct {
	device   *models.Device
	revision uint64
}

// DeviceRegistry guards every device behind one lock and only hands out
// copies. Devices are visible and mutable only through their owner.
type DeviceRegistry struct {
	mu      sync.RWMutex
	devices map[int64]*entry
	nextID  int64

	// persistMu keeps snapshot writes from interleaving so the newest
	// snapshot is always the last one saved.
	persistMu sync.Mutex
	store     db.Store

	smoothingCount int
	historyLength  int
	logger         logger.Logger
}

func NewDeviceRegistry(store db.Store, cfg models.MonitorConfig, log logger.Logger) *DeviceRegistry {
	cfg.ApplyDefaults()

	return &DeviceRegistry{
		devices:        make(map[int64]*entry),
		nextID:         1,
		store:          store,
		smoothingCount: cfg.SmoothingCount,
		historyLength:  cfg.HistoryLength,
		logger:         log,
	}
}

// Load replaces the in-memory set with the persisted records. Records that
// fail validation or repeat an earlier id are skipped with a warning. The
// next id is one past the largest loaded id.
func (r *DeviceRegistry) Load(ctx context.Context) error {
	records, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load devices: %w", err)
	}

	devices := make(map[int64]*entry, len(records))

	var maxID int64

	for i := range records {
		d := records[i]

		if err := validateRecord(&d); err != nil {
			r.logger.Warn().Err(err).Int64("device_id", d.ID).Msg("Skipping invalid persisted device")

			continue
		}

		if _, dup := devices[d.ID]; dup {
			r.logger.Warn().Int64("device_id", d.ID).Msg("Skipping duplicate persisted device")

			continue
		}

		d.Normalize(r.smoothingCount, r.historyLength)
		devices[d.ID] = &entry{device: &d}

		if d.ID > maxID {
			maxID = d.ID
		}
	}

	r.mu.Lock()
	r.devices = devices
	r.nextID = maxID + 1
	r.mu.Unlock()

	r.logger.Info().Int("devices", len(devices)).Int64("next_id", maxID+1).Msg("Loaded device registry")

	return nil
}

func validateRecord(d *models.Device) error {
	if d.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidDevice)
	}

	if d.Owner == "" {
		return models.ErrDeviceOwner
	}

	spec := models.DeviceSpec{Name: d.Name, IP: d.IP, Protocol: d.Protocol, Port: d.Port}
	if err := spec.Validate(); err != nil {
		return err
	}

	d.Name, d.IP, d.Protocol = spec.Name, spec.IP, spec.Protocol

	return nil
}

// Add registers a new device for owner and persists the set.
func (r *DeviceRegistry) Add(ctx context.Context, owner string, spec models.DeviceSpec) (models.DeviceView, error) {
	if owner == "" {
		return models.DeviceView{}, fmt.Errorf("%w: %w", ErrInvalidDevice, models.ErrDeviceOwner)
	}

	if err := spec.Validate(); err != nil {
		return models.DeviceView{}, fmt.Errorf("%w: %w", ErrInvalidDevice, err)
	}

	r.mu.Lock()
	dev := models.NewDevice(r.nextID, owner, spec)
	r.nextID++
	r.devices[dev.ID] = &entry{device: dev}
	view := dev.View()
	r.mu.Unlock()

	r.logger.Info().Int64("device_id", dev.ID).Str("owner", owner).Str("address", dev.Address()).Msg("Device added")

	r.persistAfterChange(ctx, "add")

	return view, nil
}

// Update overwrites the identity fields of an owned device and resets its
// smoothing window. Probe results captured before the edit are discarded.
func (r *DeviceRegistry) Update(ctx context.Context, owner string, id int64, spec models.DeviceSpec) (models.DeviceView, error) {
	if err := spec.Validate(); err != nil {
		return models.DeviceView{}, fmt.Errorf("%w: %w", ErrInvalidDevice, err)
	}

	r.mu.Lock()

	e, ok := r.owned(owner, id)
	if !ok {
		r.mu.Unlock()

		return models.DeviceView{}, ErrDeviceNotFound
	}

	e.device.Apply(spec)
	e.revision++
	view := e.device.View()
	r.mu.Unlock()

	r.logger.Info().Int64("device_id", id).Str("owner", owner).Msg("Device updated")

	r.persistAfterChange(ctx, "update")

	return view, nil
}

// Remove deletes an owned device. Removing another owner's device reports
// ErrDeviceNotFound and changes nothing.
func (r *DeviceRegistry) Remove(ctx context.Context, owner string, id int64) error {
	r.mu.Lock()

	if _, ok := r.owned(owner, id); !ok {
		r.mu.Unlock()

		return ErrDeviceNotFound
	}

	delete(r.devices, id)
	r.mu.Unlock()

	r.logger.Info().Int64("device_id", id).Str("owner", owner).Msg("Device removed")

	r.persistAfterChange(ctx, "remove")

	return nil
}

func (r *DeviceRegistry) Get(owner string, id int64) (models.DeviceView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.owned(owner, id)
	if !ok {
		return models.DeviceView{}, ErrDeviceNotFound
	}

	return e.device.View(), nil
}

// SnapshotFor returns the owner's devices ordered by id.
func (r *DeviceRegistry) SnapshotFor(owner string) []models.DeviceView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	views := make([]models.DeviceView, 0)

	for _, e := range r.devices {
		if e.device.Owner == owner {
			views = append(views, e.device.View())
		}
	}

	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })

	return views
}

// Owners lists every owner with at least one device.
func (r *DeviceRegistry) Owners() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	owners := make([]string, 0)

	for _, e := range r.devices {
		if _, ok := seen[e.device.Owner]; ok {
			continue
		}

		seen[e.device.Owner] = struct{}{}
		owners = append(owners, e.device.Owner)
	}

	sort.Strings(owners)

	return owners
}

// Targets captures the probe address and revision of every device.
func (r *DeviceRegistry) Targets() []models.Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	targets := make([]models.Target, 0, len(r.devices))

	for id, e := range r.devices {
		targets = append(targets, models.Target{
			DeviceID: id,
			Host:     e.device.IP,
			Port:     e.device.Port,
			Revision: e.revision,
		})
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].DeviceID < targets[j].DeviceID })

	return targets
}

// UpdateMonitoring runs update against the live device when target still
// matches it. A removed device or a revision bumped by an edit since the
// target was captured yields ok=false and leaves the registry untouched.
func (r *DeviceRegistry) UpdateMonitoring(target models.Target, update func(*models.Device)) (*models.Device, models.DeviceStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.devices[target.DeviceID]
	if !ok || e.revision != target.Revision {
		return nil, models.DeviceStatusUnknown, false
	}

	previous := e.device.Status()

	// Work on a copy so a panicking update cannot leave a half-written device.
	working := e.device.Clone()
	update(working)
	e.device = working

	return working.Clone(), previous, true
}

// Records returns deep copies of every device in persisted form, ordered by id.
func (r *DeviceRegistry) Records() []models.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]models.Device, 0, len(r.devices))

	for _, e := range r.devices {
		records = append(records, *e.device.Clone())
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	return records
}

// Persist writes a full snapshot to the store.
func (r *DeviceRegistry) Persist(ctx context.Context) error {
	r.persistMu.Lock()
	defer r.persistMu.Unlock()

	if err := r.store.Save(ctx, r.Records()); err != nil {
		return fmt.Errorf("failed to persist devices: %w", err)
	}

	return nil
}

func (r *DeviceRegistry) persistAfterChange(ctx context.Context, op string) {
	if err := r.Persist(ctx); err != nil {
		r.logger.Error().Err(err).Str("op", op).Msg("Failed to persist devices after change")
	}
}

// owned must be called with r.mu held.
func (r *DeviceRegistry) owned(owner string, id int64) (*entry, bool) {
	e, ok := r.devices[id]
	if !ok || e.device.Owner != owner {
		return nil, false
	}

	return e, true
}
