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

import "github.com/carverauto/wifimon/pkg/models"

// Penalties are tracked in tenths of a point so stacked subtractions land
// exactly on the band edges instead of drifting below them in float64.
const (
	disconnectPenalty   = 3 // 0.3
	signalPenalty       = 2 // 0.2
	errorPenalty        = 4 // 0.4
	maxDisconnects      = 3
	maxSignalChanges    = 5
	maxErrors           = 2
	stableScoreFloor    = 0.7
	issueDisconnects    = "frequent disconnects"
	issueSignalChanges  = "unstable signal strength"
	issueRepeatedErrors = "repeated connection errors"
)

// StabilityAnalyzer derives a connection-quality score from recent events.
// The result is always a pure function of the events passed in; nothing is
// retained between calls.
type StabilityAnalyzer struct {
	window int
}

// NewStabilityAnalyzer creates an analyzer over the given event window size.
func NewStabilityAnalyzer(window int) *StabilityAnalyzer {
	return &StabilityAnalyzer{window: window}
}

// Analyze scores the most recent window of events. Penalties are evaluated
// in a fixed order (disconnects, signal changes, errors) and the issue list
// preserves that order. With no events the result is optimistic: a perfect
// score and no issues.
func (a *StabilityAnalyzer) Analyze(events []models.ConnectionEvent) models.StabilityReport {
	if a.window > 0 && len(events) > a.window {
		events = events[len(events)-a.window:]
	}

	var disconnects, signalChanges, errorCount int

	for i := range events {
		switch events[i].Type {
		case models.EventDisconnected:
			disconnects++
		case models.EventSignalChanged:
			signalChanges++
		case models.EventError:
			errorCount++
		}
	}

	tenths := 10

	issues := []string{}

	if disconnects > maxDisconnects {
		tenths -= disconnectPenalty

		issues = append(issues, issueDisconnects)
	}

	if signalChanges > maxSignalChanges {
		tenths -= signalPenalty

		issues = append(issues, issueSignalChanges)
	}

	if errorCount > maxErrors {
		tenths -= errorPenalty

		issues = append(issues, issueRepeatedErrors)
	}

	if tenths < 0 {
		tenths = 0
	}

	score := float64(tenths) / 10

	return models.StabilityReport{
		Score:  score,
		Level:  levelFor(score),
		Stable: score >= stableScoreFloor,
		Issues: issues,
	}
}

func levelFor(score float64) models.StabilityLevel {
	switch {
	case score >= 0.9:
		return models.StabilityExcellent
	case score >= 0.7:
		return models.StabilityGood
	case score >= 0.5:
		return models.StabilityFair
	case score >= 0.3:
		return models.StabilityPoor
	default:
		return models.StabilityCritical
	}
}
