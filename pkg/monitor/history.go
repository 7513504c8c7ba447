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

// EventHistory is an append-only, bounded log of connection transitions.
// Once the capacity is exceeded the oldest events are evicted; lifetime
// counters keep feeding ConnectionStats after eviction. Not safe for
// concurrent use; the owning Monitor serializes access.
type EventHistory struct {
	capacity    int
	signalDelta int
	clock       Clock

	events []models.ConnectionEvent

	total          int
	connections    int
	disconnections int
	errors         int

	lastConnectedAt time.Time
}

// NewEventHistory creates a history bounded at capacity events.
func NewEventHistory(capacity, signalDelta int, clock Clock) *EventHistory {
	if clock == nil {
		clock = realClock{}
	}

	return &EventHistory{
		capacity:    capacity,
		signalDelta: signalDelta,
		clock:       clock,
		events:      make([]models.ConnectionEvent, 0, capacity),
	}
}

// Record classifies the transition from oldStatus to newStatus and, when it
// maps to an event type, appends the event. Transitions that map to nothing
// (for example unknown to disconnected) return nil and record nothing.
func (h *EventHistory) Record(oldStatus, newStatus models.NetworkStatus) *models.ConnectionEvent {
	event := h.classify(oldStatus, newStatus)
	if event == nil {
		return nil
	}

	h.append(*event)

	return event
}

func (h *EventHistory) classify(oldStatus, newStatus models.NetworkStatus) *models.ConnectionEvent {
	now := h.clock.Now()

	if newStatus.State == models.StateError {
		return &models.ConnectionEvent{
			Type:      models.EventError,
			Timestamp: now,
			Error:     newStatus.Error,
		}
	}

	oldConnected := oldStatus.State == models.StateConnected
	newConnected := newStatus.State == models.StateConnected

	switch {
	case !oldConnected && newConnected:
		h.lastConnectedAt = now

		return &models.ConnectionEvent{
			Type:      models.EventConnected,
			Timestamp: now,
			Network:   newStatus.Info,
		}

	case oldConnected && newStatus.State == models.StateDisconnected:
		event := &models.ConnectionEvent{
			Type:      models.EventDisconnected,
			Timestamp: now,
		}

		if !h.lastConnectedAt.IsZero() {
			session := now.Sub(h.lastConnectedAt)
			event.Duration = &session
		}

		return event

	case oldConnected && newConnected:
		if !oldStatus.Info.SameNetwork(newStatus.Info) {
			h.lastConnectedAt = now

			return &models.ConnectionEvent{
				Type:      models.EventReconnected,
				Timestamp: now,
				From:      oldStatus.Info,
				To:        newStatus.Info,
			}
		}

		oldSignal, newSignal := oldStatus.Info.SignalStrength, newStatus.Info.SignalStrength
		if oldSignal != nil && newSignal != nil && abs(*oldSignal-*newSignal) >= h.signalDelta {
			return &models.ConnectionEvent{
				Type:        models.EventSignalChanged,
				Timestamp:   now,
				Network:     newStatus.Info,
				OldStrength: oldSignal,
				NewStrength: newSignal,
			}
		}

		return nil

	default:
		return nil
	}
}

func (h *EventHistory) append(event models.ConnectionEvent) {
	h.events = append(h.events, event)
	if h.capacity > 0 && len(h.events) > h.capacity {
		h.events = h.events[len(h.events)-h.capacity:]
	}

	h.total++

	switch event.Type {
	case models.EventConnected, models.EventReconnected:
		h.connections++
	case models.EventDisconnected:
		h.disconnections++
	case models.EventError:
		h.errors++
	}
}

// Snapshot returns up to limit of the most recent events, oldest first,
// without mutating history. A non-positive limit returns everything retained.
func (h *EventHistory) Snapshot(limit int) []models.ConnectionEvent {
	n := len(h.events)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]models.ConnectionEvent, n)
	copy(out, h.events[len(h.events)-n:])

	return out
}

// Stats returns the lifetime connection statistics. With no connections and
// no errors the success rate is optimistically 1.0.
func (h *EventHistory) Stats() models.ConnectionStats {
	stats := models.ConnectionStats{
		TotalEvents:        h.total,
		ConnectionCount:    h.connections,
		DisconnectionCount: h.disconnections,
		ErrorCount:         h.errors,
		SuccessRate:        1.0,
	}

	if h.connections+h.errors > 0 {
		stats.SuccessRate = float64(h.connections) / float64(h.connections+h.errors)
	}

	if h.connections > 0 {
		stats.StabilityRatio = float64(h.disconnections) / float64(h.connections)
	}

	return stats
}

// Clear empties the history and its lifetime counters.
func (h *EventHistory) Clear() {
	h.events = h.events[:0]
	h.total = 0
	h.connections = 0
	h.disconnections = 0
	h.errors = 0
	h.lastConnectedAt = time.Time{}
}

// Len returns the number of retained events.
func (h *EventHistory) Len() int {
	return len(h.events)
}
