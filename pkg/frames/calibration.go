package frames

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Calibration is a per-station skymap record: where the camera sits and how
// its pixels map onto the sky. One record is loaded per station per load.
type Calibration struct {
	Station       string    `json:"station"`
	Mission       string    `json:"mission"`
	GeneratedAt   time.Time `json:"generated_at"`
	SiteLatitude  float64   `json:"site_latitude"`
	SiteLongitude float64   `json:"site_longitude"`
	SiteAltitudeM float64   `json:"site_altitude_m"`
	ImageWidth    int       `json:"image_width"`
	ImageHeight   int       `json:"image_height"`

	// Per-pixel look directions, row-major, optional in older skymaps.
	PixelAzimuth   []float64 `json:"pixel_azimuth,omitempty"`
	PixelElevation []float64 `json:"pixel_elevation,omitempty"`
}

// ReadCalibration parses a skymap file from disk.
func ReadCalibration(path string) (*Calibration, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // Path derived from configured data root
	if err != nil {
		return nil, err
	}

	cal := &Calibration{}
	if err := json.Unmarshal(raw, cal); err != nil {
		return nil, fmt.Errorf("parse skymap %s: %w", path, err)
	}

	return cal, nil
}
