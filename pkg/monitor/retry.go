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

// RetryController tracks retry attempts and computes capped exponential
// backoff delays, independent of which error triggered the retry. Not safe
// for concurrent use; the owning Monitor serializes access.
type RetryController struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	clock       Clock

	attempts      int
	lastAttemptAt time.Time
}

// NewRetryController creates a controller with the given bounds.
func NewRetryController(maxAttempts int, baseDelay, maxDelay time.Duration, clock Clock) *RetryController {
	if clock == nil {
		clock = realClock{}
	}

	return &RetryController{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
		clock:       clock,
	}
}

// CanRetry reports whether another attempt is allowed.
func (r *RetryController) CanRetry() bool {
	return r.attempts < r.maxAttempts
}

// Exhausted reports whether the attempt budget is spent.
func (r *RetryController) Exhausted() bool {
	return !r.CanRetry()
}

// NextDelay returns min(baseDelay * 2^attempts, maxDelay).
func (r *RetryController) NextDelay() time.Duration {
	delay := r.baseDelay

	for i := 0; i < r.attempts; i++ {
		delay *= 2
		if delay >= r.maxDelay {
			return r.maxDelay
		}
	}

	if delay > r.maxDelay {
		return r.maxDelay
	}

	return delay
}

// RecordAttempt consumes one retry slot and stamps the attempt time.
func (r *RetryController) RecordAttempt() {
	r.attempts++
	r.lastAttemptAt = r.clock.Now()
}

// Reset returns the controller to idle. Called whenever the engine resolves
// a status successfully.
func (r *RetryController) Reset() {
	r.attempts = 0
	r.lastAttemptAt = time.Time{}
}

// Attempts returns the number of recorded attempts since the last reset.
func (r *RetryController) Attempts() int {
	return r.attempts
}

// LastAttemptAt returns when the most recent attempt was recorded.
func (r *RetryController) LastAttemptAt() (time.Time, bool) {
	return r.lastAttemptAt, !r.lastAttemptAt.IsZero()
}

// Status describes the controller for consumers. NextDelay is nil once
// retries are exhausted.
func (r *RetryController) Status() models.RetryStatus {
	status := models.RetryStatus{
		Attempts:    r.attempts,
		MaxAttempts: r.maxAttempts,
		CanRetry:    r.CanRetry(),
	}

	if status.CanRetry {
		delay := r.NextDelay()
		status.NextDelay = &delay
	}

	return status
}
