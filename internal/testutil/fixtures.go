package testutil

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// FrameSpec describes one fixture frame.
type FrameSpec struct {
	Time   time.Time
	Width  int
	Height int
	Fill   uint16
}

// EncodePGM renders frame specs as a concatenated binary PGM stream with
// per-frame effective-image-time comments, the layout archive files use.
func EncodePGM(specs []FrameSpec) []byte {
	var buf bytes.Buffer

	for _, spec := range specs {
		w, h := spec.Width, spec.Height
		if w == 0 {
			w = 16
		}
		if h == 0 {
			h = 16
		}

		fmt.Fprint(&buf, "P5\n")
		fmt.Fprintf(&buf, "# Effective image time: %s UTC\n", spec.Time.UTC().Format("2006-01-02 15:04:05.000000"))
		fmt.Fprintf(&buf, "%d %d\n", w, h)
		fmt.Fprint(&buf, "65535\n")

		for i := 0; i < w*h; i++ {
			_ = binary.Write(&buf, binary.BigEndian, spec.Fill)
		}
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

// EncodePGMGz is EncodePGM with gzip compression, matching the .pgm.gz
// files the archive serves.
func EncodePGMGz(specs []FrameSpec) []byte {
	var buf bytes.Buffer

	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write(EncodePGM(specs))
	_ = gz.Close()

	return buf.Bytes()
}

// MinuteFile builds a gzipped minute file: n frames starting at start,
// spaced by cadence (3s if zero), 16x16 pixels filled with fill.
func MinuteFile(start time.Time, n int, cadence time.Duration, fill uint16) []byte {
	if cadence == 0 {
		cadence = 3 * time.Second
	}

	specs := make([]FrameSpec, 0, n)
	for i := 0; i < n; i++ {
		specs = append(specs, FrameSpec{Time: start.Add(time.Duration(i) * cadence), Fill: fill})
	}

	return EncodePGMGz(specs)
}

// ImageFileName builds the deterministic archive filename for a minute
// file, e.g. "20170413_0510_luck_rego-full_6300.pgm.gz".
func ImageFileName(t time.Time, station, tag string) string {
	return fmt.Sprintf("%s_%s_%s.pgm.gz", t.UTC().Format("20060102_1504"), strings.ToLower(station), tag)
}

// SkymapJSON builds a minimal skymap document for a station.
func SkymapJSON(missionName, station string, generated time.Time) []byte {
	doc := fmt.Sprintf(`{
  "station": %q,
  "mission": %q,
  "generated_at": %q,
  "site_latitude": 51.15,
  "site_longitude": -107.26,
  "site_altitude_m": 665.0,
  "image_width": 16,
  "image_height": 16
}`, strings.ToUpper(station), strings.ToUpper(missionName), generated.UTC().Format(time.RFC3339))

	return []byte(doc)
}

// SkymapFileName builds the deterministic skymap filename for a station,
// e.g. "rego_skymap_luck_20170401.json".
func SkymapFileName(missionName, station string, generated time.Time) string {
	return fmt.Sprintf("%s_skymap_%s_%s.json",
		strings.ToLower(missionName), strings.ToLower(station), generated.UTC().Format("20060102"))
}
