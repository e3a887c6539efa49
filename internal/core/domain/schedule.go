package domain

import (
	"fmt"
	"time"
)

// ScheduleConfig drives the daily retry controller.
type ScheduleConfig struct {
	// Hour and Minute are the local time-of-day the daily run fires.
	Hour   int
	Minute int

	// MaxRetries bounds the backoff retries after a failed run.
	MaxRetries int

	// BackoffBase is the first retry delay; each further retry doubles it.
	BackoffBase time.Duration
}

// DefaultScheduleConfig returns the stock 20:30 schedule with three
// retries at 5/10/20 minutes.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		Hour:        20,
		Minute:      30,
		MaxRetries:  3,
		BackoffBase: 5 * time.Minute,
	}
}

// ParseScheduleTime parses an "HH:MM" clock string.
func ParseScheduleTime(s string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("%w: schedule time %q (want HH:MM)", ErrInvalidInput, s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: schedule time %q out of range", ErrInvalidInput, s)
	}
	return hour, minute, nil
}
