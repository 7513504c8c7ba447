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
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
)

const (
	defaultCPUPressureThreshold = 85.0 // percent
	defaultLoadPerCoreThreshold = 2.0
)

// CPUPressureSampler reports host resource pressure from CPU utilization and
// the one-minute load average. The monitor consults it to decide whether to
// fall back to the degraded polling cadence.
type CPUPressureSampler struct {
	cpuThreshold    float64
	loadPerCore     float64
	usageCollector  func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)
	loadCollector   func(ctx context.Context) (*load.AvgStat, error)
	logicalCPUCount int
}

// NewCPUPressureSampler creates a sampler. Zero thresholds take defaults.
func NewCPUPressureSampler(cpuThreshold, loadPerCore float64) *CPUPressureSampler {
	if cpuThreshold <= 0 {
		cpuThreshold = defaultCPUPressureThreshold
	}

	if loadPerCore <= 0 {
		loadPerCore = defaultLoadPerCoreThreshold
	}

	return &CPUPressureSampler{
		cpuThreshold:    cpuThreshold,
		loadPerCore:     loadPerCore,
		usageCollector:  cpu.PercentWithContext,
		loadCollector:   load.AvgWithContext,
		logicalCPUCount: runtime.NumCPU(),
	}
}

// UnderPressure reports whether the host is currently pressured. Collection
// failures read as no pressure so a broken metric source never degrades the
// polling cadence.
func (s *CPUPressureSampler) UnderPressure(ctx context.Context) bool {
	if usage, err := s.usageCollector(ctx, 0, false); err == nil && len(usage) > 0 {
		if usage[0] >= s.cpuThreshold {
			return true
		}
	}

	if avg, err := s.loadCollector(ctx); err == nil && s.logicalCPUCount > 0 {
		if avg.Load1/float64(s.logicalCPUCount) >= s.loadPerCore {
			return true
		}
	}

	return false
}
