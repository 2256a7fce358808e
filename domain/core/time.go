package core

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the calendar-date form used by every date field the backend accepts.
const DateLayout = "2006-01-02"

// Clock supplies the current time. Validation takes one so "today" is injectable.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// ParseDate parses a YYYY-MM-DD string as a UTC calendar date
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Today truncates now to its calendar date, in now's own location, expressed as UTC midnight
func Today(c Clock) time.Time {
	y, m, d := c.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns ceil((to - from) / 24h)
func DaysBetween(from, to time.Time) int {
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}
