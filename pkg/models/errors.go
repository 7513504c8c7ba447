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

package models

import "fmt"

// ErrorKind is the closed taxonomy of adapter read failures.
type ErrorKind string

const (
	ErrorKindPermissionDenied     ErrorKind = "permission_denied"
	ErrorKindNetworkUnavailable   ErrorKind = "network_unavailable"
	ErrorKindHardwareError        ErrorKind = "hardware_error"
	ErrorKindAdapterError         ErrorKind = "adapter_error"
	ErrorKindFrameworkError       ErrorKind = "framework_error"
	ErrorKindTimeout              ErrorKind = "timeout"
	ErrorKindInvalidConfiguration ErrorKind = "invalid_configuration"
	ErrorKindUnsupportedSystem    ErrorKind = "unsupported_system"
	ErrorKindUnknown              ErrorKind = "unknown"
)

// Severity grades how serious a classified failure is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// NetworkError is a classified adapter failure. The classifier guarantees
// that semantically identical failures produce identical NetworkError values,
// which is what makes equality-based deduplication of error statuses work.
type NetworkError struct {
	Kind    ErrorKind `json:"kind"`
	Code    int       `json:"code,omitempty"`  // adapter_error only
	Cause   string    `json:"cause,omitempty"` // framework_error and unknown
	Message string    `json:"message"`
}

func (e *NetworkError) Error() string {
	return e.Message
}

// Retryable reports whether automatic retry can help.
func (e *NetworkError) Retryable() bool {
	switch e.Kind {
	case ErrorKindPermissionDenied, ErrorKindHardwareError,
		ErrorKindUnsupportedSystem, ErrorKindInvalidConfiguration:
		return false
	default:
		return true
	}
}

// RequiresUserIntervention reports whether recovery needs an action the
// engine cannot take itself, such as granting a permission.
func (e *NetworkError) RequiresUserIntervention() bool {
	switch e.Kind {
	case ErrorKindPermissionDenied, ErrorKindHardwareError, ErrorKindUnsupportedSystem:
		return true
	default:
		return false
	}
}

func (e *NetworkError) Severity() Severity {
	switch e.Kind {
	case ErrorKindPermissionDenied, ErrorKindUnsupportedSystem:
		return SeverityCritical
	case ErrorKindHardwareError, ErrorKindNetworkUnavailable:
		return SeverityHigh
	case ErrorKindAdapterError, ErrorKindFrameworkError, ErrorKindInvalidConfiguration:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// RecoverySuggestion returns a short human-readable hint for the failure.
func (e *NetworkError) RecoverySuggestion() string {
	switch e.Kind {
	case ErrorKindPermissionDenied:
		return "grant the application permission to read wireless state, then force a refresh"
	case ErrorKindNetworkUnavailable:
		return "check that a wireless network is in range"
	case ErrorKindHardwareError:
		return "check the wireless adapter hardware"
	case ErrorKindAdapterError:
		return fmt.Sprintf("adapter returned code %d; power-cycling the adapter may help", e.Code)
	case ErrorKindFrameworkError:
		return "retry; if the failure persists, restart the monitor"
	case ErrorKindTimeout:
		return "retry; the adapter query timed out"
	case ErrorKindInvalidConfiguration:
		return "review the monitor configuration"
	case ErrorKindUnsupportedSystem:
		return "this host does not expose wireless state in a supported way"
	default:
		return "retry; if the failure persists, force a refresh"
	}
}
