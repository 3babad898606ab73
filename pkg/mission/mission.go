// Package mission provides identifiers and archive layout helpers for the
// supported all-sky-imager camera arrays.
package mission

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownMission is returned when a mission code is not REGO or THEMIS.
var ErrUnknownMission = errors.New("unknown mission, expected REGO or THEMIS")

// Mission identifies a camera array.
type Mission string

// Supported missions
const (
	REGO   Mission = "REGO"
	THEMIS Mission = "THEMIS"
)

// All returns the supported missions in a stable order.
func All() []Mission {
	return []Mission{REGO, THEMIS}
}

// Parse converts a case-insensitive mission code into a Mission.
func Parse(s string) (Mission, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(REGO):
		return REGO, nil
	case string(THEMIS):
		return THEMIS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMission, s)
	}
}

func (m Mission) String() string {
	return string(m)
}

// Dir is the mission subdirectory name under the local data root.
func (m Mission) Dir() string {
	return strings.ToLower(string(m))
}

// StreamPath returns the remote day directory path relative to the mission
// base URL, e.g. "stream0/2017/04/13/".
func (m Mission) StreamPath(day time.Time) string {
	day = day.UTC()
	return fmt.Sprintf("stream0/%04d/%02d/%02d/", day.Year(), day.Month(), day.Day())
}

// SkymapPath returns the remote skymap directory path for a station,
// relative to the mission base URL.
func (m Mission) SkymapPath(station string) string {
	return fmt.Sprintf("skymap/%s/", strings.ToLower(station))
}

// HourDir is the remote hour subdirectory name, e.g. "ut05/".
func HourDir(t time.Time) string {
	return fmt.Sprintf("ut%02d/", t.UTC().Hour())
}

// MinuteStamp is the filename timestamp prefix shared by both archives,
// e.g. "20170413_0510".
func MinuteStamp(t time.Time) string {
	return t.UTC().Format("20060102_1504")
}
