package frames

import "errors"

// Loader-specific errors
var (
	// ErrStationNoData is returned when a station has no data anywhere in
	// the requested time range. Multi-station callers treat it as
	// skip-and-continue; every other error aborts the load.
	ErrStationNoData = errors.New("no ASI data found for station in time range")

	// ErrNoFrames is returned when a file decodes to zero frames.
	ErrNoFrames = errors.New("file contains no image frames")

	// ErrMissingTimestamp is returned when a frame header carries no
	// effective image time.
	ErrMissingTimestamp = errors.New("frame header missing effective image time")
)
