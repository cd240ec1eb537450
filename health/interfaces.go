// Package health aggregates health checks and serves them over HTTP for
// the actuator endpoint and discovery health checks.
package health

import (
	"context"
	"time"
)

// Checker is a single named health check.
type Checker interface {
	// Check returns nil when healthy.
	Check(ctx context.Context) error

	// Name returns the unique name of this health check
	Name() string
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// AggregatedStatus represents the aggregated status of all health checks
type AggregatedStatus struct {
	Status    Status                  `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Checks    map[string]*CheckResult `json:"checks,omitempty"`
	Summary   StatusSummary           `json:"summary"`
}

// StatusSummary provides a summary of health check results
type StatusSummary struct {
	TotalChecks   int `json:"total_checks"`
	PassingChecks int `json:"passing_checks"`
	FailingChecks int `json:"failing_checks"`
}

// Status is the state of a check or of the whole application.
type Status string

const (
	StatusUp   Status = "UP"
	StatusDown Status = "DOWN"
)
