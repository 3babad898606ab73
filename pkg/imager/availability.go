package imager

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/auroralab/allsky/pkg/timerange"
)

// Availability markers
const (
	MarkerLoaded      = "Loaded"
	MarkerUnavailable = "-"
)

// Availability is the station × hour data-availability matrix. It is
// derived state, rebuilt fully on every Load.
type Availability struct {
	stations []string
	hours    []time.Time
	marks    map[string]map[time.Time]string
}

func newAvailability(stationCodes []string, tr timerange.TimeRange) *Availability {
	hours := tr.Expand(timerange.Hour)

	marks := make(map[string]map[time.Time]string, len(stationCodes))
	for _, code := range stationCodes {
		row := make(map[time.Time]string, len(hours))
		for _, h := range hours {
			row[h] = MarkerUnavailable
		}
		marks[code] = row
	}

	return &Availability{
		stations: append([]string(nil), stationCodes...),
		hours:    hours,
		marks:    marks,
	}
}

func (a *Availability) markLoaded(station string, ts time.Time) {
	ts = ts.UTC()
	hour := time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), 0, 0, 0, time.UTC)

	if row, ok := a.marks[station]; ok {
		if _, ok := row[hour]; ok {
			row[hour] = MarkerLoaded
		}
	}
}

// Stations returns the station codes in table order.
func (a *Availability) Stations() []string {
	return append([]string(nil), a.stations...)
}

// Hours returns the hour buckets covered by the table, in order.
func (a *Availability) Hours() []time.Time {
	return append([]time.Time(nil), a.hours...)
}

// Status returns the marker for one station and hour. Unknown cells report
// the unavailable marker.
func (a *Availability) Status(station string, hour time.Time) string {
	if row, ok := a.marks[strings.ToUpper(station)]; ok {
		if mark, ok := row[hour.UTC()]; ok {
			return mark
		}
	}

	return MarkerUnavailable
}

func (a *Availability) String() string {
	var sb strings.Builder

	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprint(w, "station")
	for _, h := range a.hours {
		fmt.Fprintf(w, "\t%s", h.Format("2006-01-02 15:00"))
	}
	fmt.Fprintln(w)

	for _, station := range a.stations {
		fmt.Fprint(w, station)
		for _, h := range a.hours {
			fmt.Fprintf(w, "\t%s", a.marks[station][h])
		}
		fmt.Fprintln(w)
	}

	_ = w.Flush()

	return sb.String()
}
