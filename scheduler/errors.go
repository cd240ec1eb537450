package scheduler

import "errors"

var (
	ErrJobExists       = errors.New("job already scheduled")
	ErrInvalidSchedule = errors.New("invalid schedule")
	ErrStopTimeout     = errors.New("scheduler shutdown timed out")
)
