// Package timerange provides the canonical time range type used by the
// download and loading pipeline. Free-form input is normalized here, once,
// at the public entry points; everything downstream works with time.Time.
package timerange

import (
	"errors"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// ErrStartAfterEnd is returned when a range's start is after its end.
var ErrStartAfterEnd = errors.New("time range start is after end")

// Granularity selects the bucket size a range expands into.
type Granularity int

// Supported granularities
const (
	Hour Granularity = iota
	Minute
)

func (g Granularity) String() string {
	if g == Minute {
		return "minute"
	}
	return "hour"
}

func (g Granularity) step() time.Duration {
	if g == Minute {
		return time.Minute
	}
	return time.Hour
}

// TimeRange is an inclusive (start, end) pair of UTC timestamps.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// New builds a validated TimeRange. Both endpoints are normalized to UTC.
func New(start, end time.Time) (TimeRange, error) {
	start, end = start.UTC(), end.UTC()
	if start.After(end) {
		return TimeRange{}, fmt.Errorf("%w: %s > %s", ErrStartAfterEnd, start, end)
	}

	return TimeRange{Start: start, End: end}, nil
}

// Parse builds a TimeRange from two free-form timestamp strings. Each
// endpoint is parsed independently, then validated as a pair.
func Parse(start, end string) (TimeRange, error) {
	s, err := ParseTime(start)
	if err != nil {
		return TimeRange{}, err
	}

	e, err := ParseTime(end)
	if err != nil {
		return TimeRange{}, err
	}

	return New(s, e)
}

// ParseTime normalizes a free-form timestamp string into a UTC time.Time.
func ParseTime(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}

	return t.UTC(), nil
}

// Expand returns the ordered sequence of bucket start times covering the
// range, inclusive of partially-covered boundary buckets.
//
// Expand does not validate ordering: a range whose start is after its end
// expands to the empty sequence. Public entry points reject such ranges
// with ErrStartAfterEnd before any I/O happens.
func (tr TimeRange) Expand(g Granularity) []time.Time {
	first := truncate(tr.Start, g)
	last := truncate(tr.End, g)

	var buckets []time.Time
	for cur := first; !cur.After(last); cur = cur.Add(g.step()) {
		buckets = append(buckets, cur)
	}

	return buckets
}

func (tr TimeRange) String() string {
	const layout = "2006-01-02 15:04:05"
	return fmt.Sprintf("[%s, %s]", tr.Start.Format(layout), tr.End.Format(layout))
}

func truncate(t time.Time, g Granularity) time.Time {
	t = t.UTC()
	if g == Minute {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	}

	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
}
