package monitor

import "errors"

var (
	ErrAlreadyStarted    = errors.New("monitor already started")
	ErrNilReader         = errors.New("adapter reader is required")
	ErrRetriesExhausted  = errors.New("retry attempts exhausted")
	ErrNegativeInterval  = errors.New("intervals must not be negative")
	ErrNegativeThreshold = errors.New("signal delta threshold must not be negative")
	ErrNegativeBound     = errors.New("capacities and attempt limits must not be negative")
	ErrBaseDelayAboveMax = errors.New("base retry delay exceeds max retry delay")
)
