package models

import "time"

// ConnectionStats summarizes the lifetime connection activity of a monitor.
// SuccessRate is connects / (connects + errors); StabilityRatio is
// disconnects / connects. Both are pure derived metrics.
type ConnectionStats struct {
	TotalEvents        int     `json:"total_events"`
	ConnectionCount    int     `json:"connection_count"`
	DisconnectionCount int     `json:"disconnection_count"`
	ErrorCount         int     `json:"error_count"`
	SuccessRate        float64 `json:"success_rate"`
	StabilityRatio     float64 `json:"stability_ratio"`
}

// StabilityLevel is the qualitative band of a stability score.
type StabilityLevel string

const (
	StabilityExcellent StabilityLevel = "excellent"
	StabilityGood      StabilityLevel = "good"
	StabilityFair      StabilityLevel = "fair"
	StabilityPoor      StabilityLevel = "poor"
	StabilityCritical  StabilityLevel = "critical"
)

// StabilityReport is the derived connection-quality assessment.
type StabilityReport struct {
	Score  float64        `json:"score"` // 0.0 - 1.0
	Level  StabilityLevel `json:"level"`
	Stable bool           `json:"stable"`
	Issues []string       `json:"issues"`
}

// RetryStatus describes the retry state machine to consumers. NextDelay is
// nil once retries are exhausted.
type RetryStatus struct {
	Attempts    int            `json:"attempts"`
	MaxAttempts int            `json:"max_attempts"`
	CanRetry    bool           `json:"can_retry"`
	NextDelay   *time.Duration `json:"next_delay,omitempty"`
}
