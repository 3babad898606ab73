package frames

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/auroralab/allsky/pkg/archive"
	"github.com/auroralab/allsky/pkg/mission"
	"github.com/auroralab/allsky/pkg/observability"
	"github.com/auroralab/allsky/pkg/timerange"
)

// Loader produces the ordered frame sequence for one station over a time
// range, downloading whatever is missing locally on the way.
type Loader interface {
	// GetFrames returns every frame for the station inside the range, in
	// strictly increasing time order. Minutes with no remote data are
	// skipped; if the whole range is empty the error is ErrStationNoData.
	GetFrames(ctx context.Context, tr timerange.TimeRange, station string, force bool) ([]Frame, error)

	// LoadCalibration fetches (on cache miss) and parses the station's
	// newest skymap.
	LoadCalibration(ctx context.Context, station string) (*Calibration, error)
}

type loader struct {
	log        logrus.FieldLogger
	mission    mission.Mission
	downloader archive.Downloader
}

// NewLoader creates a Loader for one mission on top of a Downloader.
func NewLoader(log logrus.FieldLogger, m mission.Mission, downloader archive.Downloader) Loader {
	return &loader{
		log:        log.WithField("service", "loader").WithField("mission", m.String()),
		mission:    m,
		downloader: downloader,
	}
}

func (l *loader) GetFrames(ctx context.Context, tr timerange.TimeRange, station string, force bool) ([]Frame, error) {
	station = strings.ToUpper(station)

	out := make([]Frame, 0)

	for _, bucket := range tr.Expand(timerange.Minute) {
		paths, err := l.localFiles(bucket, station)
		if err != nil {
			return nil, err
		}

		if len(paths) == 0 || force {
			paths, err = l.downloader.Download(ctx, bucket, station, timerange.Minute, force)
			if errors.Is(err, archive.ErrDirectoryNotFound) {
				// This minute has no data; later minutes may.
				l.log.WithFields(logrus.Fields{"station": station, "bucket": bucket}).Debug("No remote data for bucket")
				continue
			}
			if err != nil {
				return nil, err
			}
		}

		for _, path := range paths {
			decoded, err := DecodeFile(path)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}

			observability.FramesDecodedTotal.WithLabelValues(l.mission.Dir(), station).Add(float64(len(decoded)))

			for _, f := range decoded {
				if f.Time.Before(tr.Start) || f.Time.After(tr.End) {
					continue
				}
				// Overlapping buckets can replay a frame; buckets are walked
				// chronologically, so dropping non-advancing timestamps keeps
				// the sequence strictly increasing.
				if len(out) > 0 && !f.Time.After(out[len(out)-1].Time) {
					continue
				}
				out = append(out, f)
			}
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: station=%s range=%s", ErrStationNoData, station, tr)
	}

	return out, nil
}

func (l *loader) LoadCalibration(ctx context.Context, station string) (*Calibration, error) {
	path, err := l.downloader.DownloadSkymap(ctx, station, false)
	if err != nil {
		return nil, err
	}

	cal, err := ReadCalibration(path)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(cal.Station, station) {
		l.log.WithFields(logrus.Fields{"station": station, "skymap_station": cal.Station}).Warn("Skymap station code mismatch")
	}

	return cal, nil
}

// localFiles returns the cached files covering one minute bucket. The
// deterministic local name starts with "<minute stamp>_<station>".
func (l *loader) localFiles(bucket time.Time, station string) ([]string, error) {
	pattern := filepath.Join(l.downloader.LocalDir(), mission.MinuteStamp(bucket)+"_"+strings.ToLower(station)+"*")

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(matches)

	return matches, nil
}
