package health

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Static errors for health package
var (
	ErrHealthCheckNotFound = errors.New("health check not found")
	ErrDuplicateCheck      = errors.New("health check already registered")
)

// Aggregator runs registered checks and reports DOWN if any check fails.
type Aggregator struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	timeout  time.Duration
}

// NewAggregator creates an aggregator with a per-check timeout. A zero
// timeout means 10 seconds.
func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Aggregator{checkers: make(map[string]Checker), timeout: timeout}
}

// RegisterCheck adds a check. Names must be unique.
func (a *Aggregator) RegisterCheck(checker Checker) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.checkers[checker.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCheck, checker.Name())
	}
	a.checkers[checker.Name()] = checker
	return nil
}

// UnregisterCheck removes a check by name.
func (a *Aggregator) UnregisterCheck(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.checkers[name]; !exists {
		return fmt.Errorf("%w: %s", ErrHealthCheckNotFound, name)
	}
	delete(a.checkers, name)
	return nil
}

// Names lists registered check names, sorted.
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.checkers))
	for n := range a.checkers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CheckAll runs every check. With no checks registered the status is UP.
func (a *Aggregator) CheckAll(ctx context.Context) *AggregatedStatus {
	a.mu.RLock()
	checkers := make([]Checker, 0, len(a.checkers))
	for _, c := range a.checkers {
		checkers = append(checkers, c)
	}
	a.mu.RUnlock()

	status := &AggregatedStatus{
		Status:    StatusUp,
		Timestamp: time.Now(),
		Checks:    make(map[string]*CheckResult, len(checkers)),
	}
	for _, c := range checkers {
		res := a.run(ctx, c)
		status.Checks[c.Name()] = res
		status.Summary.TotalChecks++
		if res.Status == StatusUp {
			status.Summary.PassingChecks++
		} else {
			status.Summary.FailingChecks++
			status.Status = StatusDown
		}
	}
	return status
}

// CheckOne runs a specific health check by name
func (a *Aggregator) CheckOne(ctx context.Context, name string) (*CheckResult, error) {
	a.mu.RLock()
	checker, exists := a.checkers[name]
	a.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrHealthCheckNotFound, name)
	}
	return a.run(ctx, checker), nil
}

func (a *Aggregator) run(ctx context.Context, c Checker) *CheckResult {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	err := c.Check(ctx)
	res := &CheckResult{
		Name:      c.Name(),
		Status:    StatusUp,
		Timestamp: start,
		Duration:  time.Since(start),
	}
	if err != nil {
		res.Status = StatusDown
		res.Error = err.Error()
	}
	return res
}

// CheckFunc adapts a function to Checker.
type CheckFunc struct {
	name string
	fn   func(context.Context) error
}

// NewCheck creates a named check from fn.
func NewCheck(name string, fn func(context.Context) error) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

func (c *CheckFunc) Name() string { return c.name }

func (c *CheckFunc) Check(ctx context.Context) error { return c.fn(ctx) }
