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
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/carverauto/wifimon/pkg/adapter"
	"github.com/carverauto/wifimon/pkg/models"
)

// Classify maps an adapter read failure into the closed ErrorKind taxonomy.
// It is a pure function: semantically identical failures always produce the
// same NetworkError, which keeps the cache's equality-based deduplication of
// error statuses intact.
func Classify(err error) *models.NetworkError {
	if err == nil {
		return nil
	}

	var codeErr *adapter.CodeError
	if errors.As(err, &codeErr) {
		return &models.NetworkError{
			Kind:    models.ErrorKindAdapterError,
			Code:    codeErr.Code,
			Message: fmt.Sprintf("wireless adapter reported error code %d", codeErr.Code),
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) || errors.Is(err, syscall.ETIMEDOUT):
		return &models.NetworkError{
			Kind:    models.ErrorKindTimeout,
			Message: "adapter query timed out",
		}

	case errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM):
		return &models.NetworkError{
			Kind:    models.ErrorKindPermissionDenied,
			Message: "permission denied reading wireless adapter state",
		}

	case errors.Is(err, adapter.ErrUnsupportedPlatform):
		return &models.NetworkError{
			Kind:    models.ErrorKindUnsupportedSystem,
			Message: "wireless adapter state is not readable on this host",
		}

	case errors.Is(err, adapter.ErrInterfaceNotFound) || errors.Is(err, adapter.ErrNoWirelessInterface) ||
		errors.Is(err, syscall.ENODEV):
		return &models.NetworkError{
			Kind:    models.ErrorKindHardwareError,
			Message: "wireless interface is not present",
		}

	case errors.Is(err, syscall.ENETDOWN) || errors.Is(err, syscall.ENETUNREACH):
		return &models.NetworkError{
			Kind:    models.ErrorKindNetworkUnavailable,
			Message: "wireless network is unavailable",
		}

	case errors.Is(err, context.Canceled):
		return &models.NetworkError{
			Kind:    models.ErrorKindFrameworkError,
			Cause:   context.Canceled.Error(),
			Message: "adapter query was canceled",
		}

	default:
		return &models.NetworkError{
			Kind:    models.ErrorKindUnknown,
			Cause:   err.Error(),
			Message: "unclassified adapter failure: " + err.Error(),
		}
	}
}
