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

// Package adapter defines the contract between the monitoring engine and the
// platform code that queries a wireless adapter, plus a Linux implementation.
package adapter

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPlatform indicates the host does not expose wireless
	// adapter state in a way this package can read.
	ErrUnsupportedPlatform = errors.New("wireless adapter state is not readable on this platform")

	// ErrInterfaceNotFound indicates the configured wireless interface does
	// not exist on the host.
	ErrInterfaceNotFound = errors.New("wireless interface not found")

	// ErrNoWirelessInterface indicates no wireless interface could be
	// auto-detected.
	ErrNoWirelessInterface = errors.New("no wireless interface present")
)

// CodeError is a failure reported by the adapter itself with a numeric code.
type CodeError struct {
	Code int
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("adapter error code %d", e.Code)
}

// Reading is one raw observation of adapter state. When the adapter is
// powered on and associated, SSID is non-empty and the optional link fields
// may be populated.
type Reading struct {
	PoweredOn      bool
	SSID           string
	BSSID          string
	SignalStrength *int // dBm

	// Secure reports whether the link is encrypted. Wireless extensions
	// only expose the legacy encode flag, so this is best effort: an open
	// network and a failed query both read as false.
	Secure    bool
	Frequency *float64 // MHz
	Channel   *int
	Standard  string
}

// Reader performs one synchronous, side-effect-free adapter query. Readers
// never retry internally; retry policy belongs entirely to the engine.
type Reader interface {
	Read(ctx context.Context) (*Reading, error)
}
