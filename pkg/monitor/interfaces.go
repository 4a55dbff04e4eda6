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

//go:generate mockgen -destination=mock_monitor.go -package=monitor github.com/Hunter-Bennett/Blinknet/pkg/monitor Prober,Registry,StatusPublisher,Recorder,Clock,Ticker

package monitor

import (
	"context"
	"time"

	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

// Prober runs one round of connect probes.
type Prober interface {
	ProbeAll(ctx context.Context, targets []models.Target) <-chan models.ProbeResult
}

// Registry is the device store the monitor reads targets from and writes
// monitoring fields back to.
type Registry interface {
	Targets() []models.Target
	// UpdateMonitoring applies update to the device named by target under the
	// registry lock. It returns a copy of the updated device and the status
	// before the update, or ok=false when the device was removed or edited
	// after the target was captured.
	UpdateMonitoring(target models.Target, update func(*models.Device)) (updated *models.Device, previous models.DeviceStatus, ok bool)
	Persist(ctx context.Context) error
}

// StatusPublisher announces derived status transitions.
type StatusPublisher interface {
	PublishDeviceStatus(ctx context.Context, event *models.DeviceStatusEventData) error
}

// Recorder receives probe and tick measurements.
type Recorder interface {
	ObserveProbe(result models.ProbeResult)
	ObserveTick(duration time.Duration, devices, online int)
	PersistFailed()
}

// Clock abstracts time for the scheduler loop.
type Clock interface {
	Now() time.Time
	Ticker(d time.Duration) Ticker
}

// Ticker is the subset of time.Ticker the loop uses.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}
