package imager

import "errors"

// Imager-specific errors
var (
	// ErrTimeRangeRequired is returned when an operation needs a time range
	// and none was supplied at construction or call time. It is raised
	// before any network activity.
	ErrTimeRangeRequired = errors.New("time range required: supply it at construction or to the called method")

	// ErrNoStations is returned when the station table has no stations for
	// the requested array.
	ErrNoStations = errors.New("no stations known for array")
)
