package presence

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimestamp is returned when a timestamp does not fit its display type.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// TimestampDisplay selects how Discord renders the presence timestamp.
type TimestampDisplay uint8

const (
	// TimestampLeft renders a countdown to the instant.
	TimestampLeft TimestampDisplay = iota
	// TimestampElapsed renders the time passed since the instant.
	TimestampElapsed
)

func (d TimestampDisplay) String() string {
	switch d {
	case TimestampLeft:
		return "left"
	case TimestampElapsed:
		return "elapsed"
	default:
		return fmt.Sprintf("TimestampDisplay(%d)", uint8(d))
	}
}

// Timestamp holds either a start instant (elapsed) or an end instant (countdown).
type Timestamp struct {
	Start *time.Time
	End   *time.Time
}

// NewTimestamp validates t against the display type. A countdown needs an
// instant strictly in the future, an elapsed timer one strictly in the past.
func NewTimestamp(t time.Time, display TimestampDisplay) (*Timestamp, error) {
	return newTimestampAt(t, display, time.Now())
}

func newTimestampAt(t time.Time, display TimestampDisplay, now time.Time) (*Timestamp, error) {
	switch display {
	case TimestampLeft:
		if !t.After(now) {
			return nil, fmt.Errorf("%w: %s must be in the future when displaying time left", ErrInvalidTimestamp, t.Format(time.RFC3339))
		}

		return &Timestamp{End: &t}, nil
	case TimestampElapsed:
		if !t.Before(now) {
			return nil, fmt.Errorf("%w: %s must be in the past when displaying time elapsed", ErrInvalidTimestamp, t.Format(time.RFC3339))
		}

		return &Timestamp{Start: &t}, nil
	default:
		return nil, fmt.Errorf("%w: unknown display type %s", ErrInvalidTimestamp, display)
	}
}
