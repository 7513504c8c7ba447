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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/wifimon/pkg/models"
)

func TestEventHistory_Classification(t *testing.T) {
	home := connectedStatus("Home", "aa:bb", intPtr(-50))
	cafe := connectedStatus("Cafe", "cc:dd", intPtr(-60))

	tests := []struct {
		name string
		old  models.NetworkStatus
		new  models.NetworkStatus
		want models.EventType
		none bool
	}{
		{name: "disconnected to connected", old: models.Disconnected(), new: home, want: models.EventConnected},
		{name: "initial unknown to connected", old: models.Unknown(), new: home, want: models.EventConnected},
		{name: "connected to disconnected", old: home, new: models.Disconnected(), want: models.EventDisconnected},
		{name: "network change while connected", old: home, new: cafe, want: models.EventReconnected},
		{
			name: "significant signal move",
			old:  home,
			new:  connectedStatus("Home", "aa:bb", intPtr(-58)),
			want: models.EventSignalChanged,
		},
		{
			name: "small signal move records nothing",
			old:  home,
			new:  connectedStatus("Home", "aa:bb", intPtr(-53)),
			none: true,
		},
		{
			name: "transition into error",
			old:  home,
			new:  models.ErrorStatus(&models.NetworkError{Kind: models.ErrorKindTimeout, Message: "adapter query timed out"}),
			want: models.EventError,
		},
		{name: "unknown to disconnected records nothing", old: models.Unknown(), new: models.Disconnected(), none: true},
		{name: "connected to disabled records nothing", old: home, new: models.Disabled(), none: true},
		{name: "disconnected to disabled records nothing", old: models.Disconnected(), new: models.Disabled(), none: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := NewEventHistory(defaultHistoryCapacity, defaultSignalDeltaThreshold, newFakeClock())

			event := history.Record(tt.old, tt.new)

			if tt.none {
				assert.Nil(t, event)
				assert.Zero(t, history.Len())

				return
			}

			require.NotNil(t, event)
			assert.Equal(t, tt.want, event.Type)
			assert.Equal(t, 1, history.Len())
		})
	}
}

func TestEventHistory_EventPayloads(t *testing.T) {
	clock := newFakeClock()
	history := NewEventHistory(defaultHistoryCapacity, defaultSignalDeltaThreshold, clock)

	home := connectedStatus("Home", "aa:bb", intPtr(-50))
	cafe := connectedStatus("Cafe", "cc:dd", intPtr(-62))

	event := history.Record(models.Disconnected(), home)
	require.NotNil(t, event)
	require.NotNil(t, event.Network)
	assert.Equal(t, "Home", event.Network.SSID)

	event = history.Record(home, cafe)
	require.NotNil(t, event)
	require.NotNil(t, event.From)
	require.NotNil(t, event.To)
	assert.Equal(t, "Home", event.From.SSID)
	assert.Equal(t, "Cafe", event.To.SSID)

	moved := connectedStatus("Cafe", "cc:dd", intPtr(-70))

	event = history.Record(cafe, moved)
	require.NotNil(t, event)
	assert.Equal(t, models.EventSignalChanged, event.Type)
	require.NotNil(t, event.OldStrength)
	require.NotNil(t, event.NewStrength)
	assert.Equal(t, -62, *event.OldStrength)
	assert.Equal(t, -70, *event.NewStrength)

	clock.Advance(90 * time.Second)

	event = history.Record(moved, models.Disconnected())
	require.NotNil(t, event)
	assert.Equal(t, models.EventDisconnected, event.Type)
	require.NotNil(t, event.Duration, "disconnect carries the session length")
	assert.Equal(t, 90*time.Second, *event.Duration)
}

func TestEventHistory_BoundedEviction(t *testing.T) {
	clock := newFakeClock()
	history := NewEventHistory(defaultHistoryCapacity, defaultSignalDeltaThreshold, clock)

	// Alternate connect/disconnect to generate 1000 qualifying events.
	for i := 0; i < 500; i++ {
		clock.Advance(time.Second)
		require.NotNil(t, history.Record(models.Disconnected(), connectedStatus("Home", "aa:bb", intPtr(-50))))
		clock.Advance(time.Second)
		require.NotNil(t, history.Record(connectedStatus("Home", "aa:bb", intPtr(-50)), models.Disconnected()))
	}

	events := history.Snapshot(1000)
	require.Len(t, events, defaultHistoryCapacity)

	// Oldest-first ordering preserved across evictions.
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Timestamp.Before(events[i-1].Timestamp))
	}

	// The retained tail ends with the most recent event, a disconnect.
	assert.Equal(t, models.EventDisconnected, events[len(events)-1].Type)

	stats := history.Stats()
	assert.Equal(t, 1000, stats.TotalEvents, "lifetime counters survive eviction")
	assert.Equal(t, 500, stats.ConnectionCount)
	assert.Equal(t, 500, stats.DisconnectionCount)
}

func TestEventHistory_SnapshotLimit(t *testing.T) {
	history := NewEventHistory(defaultHistoryCapacity, defaultSignalDeltaThreshold, newFakeClock())

	for i := 0; i < 5; i++ {
		history.Record(models.Disconnected(), connectedStatus("Home", "aa:bb", intPtr(-50)))
		history.Record(connectedStatus("Home", "aa:bb", intPtr(-50)), models.Disconnected())
	}

	assert.Len(t, history.Snapshot(3), 3)
	assert.Len(t, history.Snapshot(0), 10)
	assert.Len(t, history.Snapshot(100), 10)

	// Snapshot must not mutate history.
	assert.Equal(t, 10, history.Len())
}

func TestEventHistory_Stats(t *testing.T) {
	history := NewEventHistory(defaultHistoryCapacity, defaultSignalDeltaThreshold, newFakeClock())

	stats := history.Stats()
	assert.InEpsilon(t, 1.0, stats.SuccessRate, 1e-9, "no evidence reads as success")
	assert.Zero(t, stats.StabilityRatio)

	errStatus := models.ErrorStatus(&models.NetworkError{Kind: models.ErrorKindTimeout, Message: "adapter query timed out"})

	history.Record(models.Disconnected(), connectedStatus("Home", "aa:bb", intPtr(-50)))
	history.Record(connectedStatus("Home", "aa:bb", intPtr(-50)), models.Disconnected())
	history.Record(models.Disconnected(), errStatus)

	stats = history.Stats()
	assert.Equal(t, 3, stats.TotalEvents)
	assert.Equal(t, 1, stats.ConnectionCount)
	assert.Equal(t, 1, stats.DisconnectionCount)
	assert.Equal(t, 1, stats.ErrorCount)
	assert.InEpsilon(t, 0.5, stats.SuccessRate, 1e-9)
	assert.InEpsilon(t, 1.0, stats.StabilityRatio, 1e-9)

	history.Clear()

	assert.Zero(t, history.Len())
	assert.Zero(t, history.Stats().TotalEvents)
}
