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

// Package models defines the shared value types of the wifimon engine.
package models

import "time"

// StatusState identifies the variant of a NetworkStatus.
type StatusState string

const (
	StateUnknown       StatusState = "unknown"
	StateConnected     StatusState = "connected"
	StateDisconnected  StatusState = "disconnected"
	StateConnecting    StatusState = "connecting"
	StateDisconnecting StatusState = "disconnecting"
	StateDisabled      StatusState = "disabled"
	StateError         StatusState = "error"
)

// NetworkStatus is the published connectivity state of one wireless adapter.
// Exactly one variant is active; the payload fields are populated only for
// the variant that carries them. StateUnknown is the initial value before the
// first poll resolves and must not reappear afterwards except on reset.
type NetworkStatus struct {
	State        StatusState   `json:"state"`
	Info         *NetworkInfo  `json:"info,omitempty"`
	ConnectingTo string        `json:"connecting_to,omitempty"`
	Error        *NetworkError `json:"error,omitempty"`
}

func Unknown() NetworkStatus {
	return NetworkStatus{State: StateUnknown}
}

func Connected(info *NetworkInfo) NetworkStatus {
	return NetworkStatus{State: StateConnected, Info: info}
}

func Disconnected() NetworkStatus {
	return NetworkStatus{State: StateDisconnected}
}

func Connecting(ssid string) NetworkStatus {
	return NetworkStatus{State: StateConnecting, ConnectingTo: ssid}
}

func Disconnecting() NetworkStatus {
	return NetworkStatus{State: StateDisconnecting}
}

func Disabled() NetworkStatus {
	return NetworkStatus{State: StateDisabled}
}

func ErrorStatus(err *NetworkError) NetworkStatus {
	return NetworkStatus{State: StateError, Error: err}
}

// IsResolved reports whether the status represents a successful resolution
// of the adapter state. Connected, disconnected and disabled all count;
// only classified errors do not.
func (s NetworkStatus) IsResolved() bool {
	switch s.State {
	case StateConnected, StateDisconnected, StateDisabled:
		return true
	default:
		return false
	}
}

// NetworkInfo is an immutable description of a joined wireless network.
type NetworkInfo struct {
	SSID           string    `json:"ssid"`
	BSSID          string    `json:"bssid,omitempty"`
	SignalStrength *int      `json:"signal_strength,omitempty"` // dBm, conventionally [-100, 0]
	Secure         bool      `json:"secure"`
	Frequency      *float64  `json:"frequency,omitempty"` // MHz
	Channel        *int      `json:"channel,omitempty"`
	Standard       string    `json:"standard,omitempty"`
	ConnectedAt    time.Time `json:"connected_at"`
}

// SameNetwork reports whether two readings describe the same network.
// Identity is (ssid, bssid); signal fluctuation does not change identity.
func (n *NetworkInfo) SameNetwork(other *NetworkInfo) bool {
	if n == nil || other == nil {
		return n == other
	}

	return n.SSID == other.SSID && n.BSSID == other.BSSID
}
