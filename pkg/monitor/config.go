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

	"github.com/carverauto/wifimon/pkg/logger"
	"github.com/carverauto/wifimon/pkg/models"
)

const (
	defaultPollInterval         = 2 * time.Second
	defaultDegradedPollInterval = 5 * time.Second
	defaultMinTickInterval      = 500 * time.Millisecond
	defaultCacheTTL             = time.Second
	defaultSignalDeltaThreshold = 5 // dBm
	defaultHistoryCapacity      = 50
	defaultStabilityWindow      = 10
	defaultMaxRetryAttempts     = 5
	defaultBaseRetryDelay       = 2 * time.Second
	defaultMaxRetryDelay        = 60 * time.Second
)

// Config controls one Monitor instance. Zero values take the documented
// defaults, so an empty config is valid.
type Config struct {
	PollInterval         models.Duration `json:"poll_interval"`          // default 2s
	DegradedPollInterval models.Duration `json:"degraded_poll_interval"` // default 5s, used under host pressure
	MinTickInterval      models.Duration `json:"min_tick_interval"`      // default 500ms
	CacheTTL             models.Duration `json:"cache_ttl"`              // default 1s
	SignalDeltaThreshold int             `json:"signal_delta_threshold"` // default 5 dBm
	HistoryCapacity      int             `json:"history_capacity"`       // default 50
	StabilityWindow      int             `json:"stability_window"`       // default 10
	MaxRetryAttempts     int             `json:"max_retry_attempts"`     // default 5
	BaseRetryDelay       models.Duration `json:"base_retry_delay"`       // default 2s
	MaxRetryDelay        models.Duration `json:"max_retry_delay"`        // default 60s
	Logging              *logger.Config  `json:"logging,omitempty"`
}

// withDefaults returns a copy with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	if c.PollInterval == 0 {
		c.PollInterval = models.Duration(defaultPollInterval)
	}

	if c.DegradedPollInterval == 0 {
		c.DegradedPollInterval = models.Duration(defaultDegradedPollInterval)
	}

	if c.MinTickInterval == 0 {
		c.MinTickInterval = models.Duration(defaultMinTickInterval)
	}

	if c.CacheTTL == 0 {
		c.CacheTTL = models.Duration(defaultCacheTTL)
	}

	if c.SignalDeltaThreshold == 0 {
		c.SignalDeltaThreshold = defaultSignalDeltaThreshold
	}

	if c.HistoryCapacity == 0 {
		c.HistoryCapacity = defaultHistoryCapacity
	}

	if c.StabilityWindow == 0 {
		c.StabilityWindow = defaultStabilityWindow
	}

	if c.MaxRetryAttempts == 0 {
		c.MaxRetryAttempts = defaultMaxRetryAttempts
	}

	if c.BaseRetryDelay == 0 {
		c.BaseRetryDelay = models.Duration(defaultBaseRetryDelay)
	}

	if c.MaxRetryDelay == 0 {
		c.MaxRetryDelay = models.Duration(defaultMaxRetryDelay)
	}

	return c
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.PollInterval < 0 || c.DegradedPollInterval < 0 || c.MinTickInterval < 0 ||
		c.CacheTTL < 0 || c.BaseRetryDelay < 0 || c.MaxRetryDelay < 0 {
		return ErrNegativeInterval
	}

	if c.SignalDeltaThreshold < 0 {
		return ErrNegativeThreshold
	}

	if c.HistoryCapacity < 0 || c.StabilityWindow < 0 || c.MaxRetryAttempts < 0 {
		return ErrNegativeBound
	}

	if c.MaxRetryDelay != 0 && c.BaseRetryDelay > c.MaxRetryDelay {
		return ErrBaseDelayAboveMax
	}

	return nil
}
