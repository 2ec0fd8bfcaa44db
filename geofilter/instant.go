package geofilter

import (
	"fmt"
	"time"
)

// Granularity distinguishes date-valued instants from full timestamps.
type Granularity int

const (
	GranDate Granularity = iota
	GranTimestamp
)

// Instant is the single runtime representation behind both the Date and the
// Timestamp declared kinds. A date is an instant at midnight UTC with date
// granularity; ordering always compares the underlying instants, so dates
// and timestamps interoperate wherever order is defined.
type Instant struct {
	Time time.Time
	Gran Granularity
}

// Unbounded ends of an open interval are represented as sentinel instants
// rather than a distinct variant. The low sentinel matches the smallest
// date both SQLite and PostgreSQL accept.
var (
	MinInstant = Instant{Time: time.Date(-2021, 1, 1, 0, 0, 0, 0, time.UTC), Gran: GranTimestamp}
	MaxInstant = Instant{Time: time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC), Gran: GranTimestamp}
)

func NewDate(t time.Time) Instant {
	y, m, d := t.UTC().Date()
	return Instant{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Gran: GranDate}
}

func NewTimestamp(t time.Time) Instant {
	return Instant{Time: t.UTC(), Gran: GranTimestamp}
}

// ParseDate accepts a full-date per RFC 3339 (YYYY-MM-DD).
func ParseDate(s string) (Instant, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Instant{}, Wrap(ErrParse, fmt.Sprintf("invalid date %q", s), err)
	}
	return NewDate(t), nil
}

// ParseTimestamp accepts an RFC 3339 timestamp in the time zone UTC ("Z").
func ParseTimestamp(s string) (Instant, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Instant{}, Wrap(ErrParse, fmt.Sprintf("invalid timestamp %q", s), err)
	}
	return NewTimestamp(t), nil
}

func (i Instant) IsMin() bool { return i.Time.Equal(MinInstant.Time) }

func (i Instant) IsMax() bool { return i.Time.Equal(MaxInstant.Time) }

func (i Instant) Before(o Instant) bool { return i.Time.Before(o.Time) }

func (i Instant) After(o Instant) bool { return i.Time.After(o.Time) }

func (i Instant) Equal(o Instant) bool { return i.Time.Equal(o.Time) }

func (i Instant) Compare(o Instant) int { return i.Time.Compare(o.Time) }

func (i Instant) String() string {
	if i.Gran == GranDate {
		return i.Time.Format("2006-01-02")
	}
	return i.Time.Format("2006-01-02T15:04:05.999999999Z")
}
