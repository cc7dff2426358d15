package scheduler

import "errors"

var (
	// ErrAlreadyRunning is returned by Start on a started scheduler
	ErrAlreadyRunning = errors.New("scheduler already running")

	// ErrJobInProgress is returned by RunNow while the previous run has not finished
	ErrJobInProgress = errors.New("job run already in progress")

	// ErrUnknownJob is returned by RunNow for a job that was never added
	ErrUnknownJob = errors.New("unknown job")

	// ErrInvalidConfig is returned for a non-positive interval
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
