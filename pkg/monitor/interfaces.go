/*
 * Copyright 2026 Carver Automation Corporation.
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
	"context"
	"time"

	"github.com/carverauto/wifimon/pkg/models"
)

// Clock abstracts time-related operations.
type Clock interface {
	Now() time.Time
	Ticker(d time.Duration) Ticker
	After(d time.Duration) <-chan time.Time
}

// Ticker abstracts the ticker behavior.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// Subscriber receives status notifications from a Monitor. Callbacks are
// invoked from a dispatch goroutine after engine state has committed; they
// must not call back into the monitor's control operations synchronously.
type Subscriber interface {
	OnStatusChanged(status models.NetworkStatus)
	OnConnected(info *models.NetworkInfo)
	OnDisconnected()
}

// PressureSampler reports whether the host is under resource pressure. A
// monitor consults it once per poll cycle to decide between the normal and
// degraded polling cadence.
type PressureSampler interface {
	UnderPressure(ctx context.Context) bool
}
