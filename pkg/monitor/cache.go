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
	"time"

	"github.com/carverauto/wifimon/pkg/models"
)

// cacheEntry is the single cached observation. Owned exclusively by
// StatusCache and mutated only through Update.
type cacheEntry struct {
	status      models.NetworkStatus
	observedAt  time.Time
	changeCount int
}

// StatusCache decides whether a newly observed status differs enough from
// the last published one to be worth publishing. Adapters report small
// spurious RSSI jitter and the OS fires path-change notifications far more
// often than the user-visible state changes; this filter keeps near-duplicate
// notifications away from consumers.
//
// StatusCache is not safe for concurrent use; the owning Monitor serializes
// access.
type StatusCache struct {
	entry       *cacheEntry
	signalDelta int
	clock       Clock
}

// NewStatusCache creates a cache using the given dBm significance threshold.
func NewStatusCache(signalDelta int, clock Clock) *StatusCache {
	if clock == nil {
		clock = realClock{}
	}

	return &StatusCache{signalDelta: signalDelta, clock: clock}
}

// ShouldPublish reports whether candidate is a significant change from the
// cached status.
func (c *StatusCache) ShouldPublish(candidate models.NetworkStatus) bool {
	if c.entry == nil {
		return true
	}

	cached := c.entry.status

	if cached.State != candidate.State {
		return true
	}

	switch candidate.State {
	case models.StateConnected:
		return c.connectedChanged(cached.Info, candidate.Info)
	case models.StateError:
		return errorMessage(cached) != errorMessage(candidate)
	case models.StateConnecting:
		return cached.ConnectingTo != candidate.ConnectingTo
	default:
		// Identical stateless variants (disconnected, disabled, ...) are
		// never republished.
		return false
	}
}

func (c *StatusCache) connectedChanged(old, new *models.NetworkInfo) bool {
	if !old.SameNetwork(new) {
		return true
	}

	oldSignal, newSignal := old.SignalStrength, new.SignalStrength

	switch {
	case oldSignal == nil && newSignal == nil:
		return false
	case oldSignal == nil || newSignal == nil:
		// Gaining or losing the signal reading is itself significant.
		return true
	default:
		return abs(*oldSignal-*newSignal) >= c.signalDelta
	}
}

// Update replaces the cached entry if the candidate is significant, stamping
// the observation time and bumping the change count. Insignificant candidates
// are a no-op. Returns whether the entry was replaced.
func (c *StatusCache) Update(status models.NetworkStatus) bool {
	if !c.ShouldPublish(status) {
		return false
	}

	count := 1
	if c.entry != nil {
		count = c.entry.changeCount + 1
	}

	c.entry = &cacheEntry{
		status:      status,
		observedAt:  c.clock.Now(),
		changeCount: count,
	}

	return true
}

// Snapshot returns the cached status if it was observed within ttl. Used to
// short-circuit redundant adapter reads, not as the publish gate.
func (c *StatusCache) Snapshot(ttl time.Duration) (models.NetworkStatus, bool) {
	if c.entry == nil {
		return models.Unknown(), false
	}

	if c.clock.Now().Sub(c.entry.observedAt) >= ttl {
		return models.Unknown(), false
	}

	return c.entry.status, true
}

// Last returns the cached status regardless of age.
func (c *StatusCache) Last() (models.NetworkStatus, bool) {
	if c.entry == nil {
		return models.Unknown(), false
	}

	return c.entry.status, true
}

// ChangeCount returns how many significant changes the cache has accepted.
func (c *StatusCache) ChangeCount() int {
	if c.entry == nil {
		return 0
	}

	return c.entry.changeCount
}

// Clear empties the cache so the next observation always publishes.
func (c *StatusCache) Clear() {
	c.entry = nil
}

func errorMessage(s models.NetworkStatus) string {
	if s.Error == nil {
		return ""
	}

	return s.Error.Message
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
