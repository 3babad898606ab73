// Package imager provides the session facade binding one camera array, a
// station set, and a time range. It drives the frame loader across stations
// and keeps the per-load availability bookkeeping.
package imager

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/auroralab/allsky/pkg/archive"
	"github.com/auroralab/allsky/pkg/config"
	"github.com/auroralab/allsky/pkg/frames"
	"github.com/auroralab/allsky/pkg/mission"
	"github.com/auroralab/allsky/pkg/stations"
	"github.com/auroralab/allsky/pkg/timerange"
)

// StationData holds the loaded frames and calibration for one station.
type StationData struct {
	Frames      []frames.Frame
	Calibration *frames.Calibration
}

// Imager is a stateful session over one array and station set. Construction
// validates inputs; Load populates per-station data and the availability
// table; both are rebuilt on every Load.
type Imager struct {
	log     logrus.FieldLogger
	cfg     *config.Config
	mission mission.Mission

	stations  []stations.Station
	timeRange *timerange.TimeRange

	downloader archive.Downloader
	loader     frames.Loader

	data         map[string]StationData
	availability *Availability
}

// New builds an Imager. A nil or empty stationCodes selects every known
// station of the array; codes are matched case-insensitively. A nil
// timeRange is allowed and must then be supplied to Load or Download.
func New(log logrus.FieldLogger, cfg *config.Config, array string, stationCodes []string, tr *timerange.TimeRange) (*Imager, error) {
	m, err := mission.Parse(array)
	if err != nil {
		return nil, err
	}

	table, err := stations.LoadTable()
	if err != nil {
		return nil, err
	}

	selected, err := selectStations(log, cfg, table, m, stationCodes)
	if err != nil {
		return nil, err
	}

	downloader := archive.NewDownloader(log, cfg, m)

	return &Imager{
		log:        log.WithField("service", "imager").WithField("mission", m.String()),
		cfg:        cfg,
		mission:    m,
		stations:   selected,
		timeRange:  tr,
		downloader: downloader,
		loader:     frames.NewLoader(log, m, downloader),
	}, nil
}

func selectStations(log logrus.FieldLogger, cfg *config.Config, table *stations.Table, m mission.Mission, codes []string) ([]stations.Station, error) {
	if len(codes) == 0 {
		all := table.ForArray(m.String())
		if len(all) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoStations, m)
		}

		return all, nil
	}

	selected := make([]stations.Station, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))

		st, ok := table.Lookup(m.String(), code)
		if !ok {
			// Not fatal: the archive is the authority on what exists.
			if !cfg.SuppressWarnings {
				log.WithFields(logrus.Fields{"mission": m.String(), "station": code}).Warn("Station not in metadata table")
			}
			st = stations.Station{Array: m.String(), Code: code}
		}

		selected = append(selected, st)
	}

	return selected, nil
}

// Mission returns the session's camera array.
func (im *Imager) Mission() mission.Mission {
	return im.mission
}

// Stations returns the session's station metadata in table order.
func (im *Imager) Stations() []stations.Station {
	return append([]stations.Station(nil), im.stations...)
}

// StationCodes returns the session's station codes in table order.
func (im *Imager) StationCodes() []string {
	codes := make([]string, 0, len(im.stations))
	for _, st := range im.stations {
		codes = append(codes, st.Code)
	}

	return codes
}

// Load fetches (downloading on cache miss), decodes, and stores the frame
// sequence and calibration for every station, then rebuilds the
// availability table. A station with no data in range is skipped; any other
// error aborts the whole load. Pass a non-nil tr to set or replace the
// session time range.
func (im *Imager) Load(ctx context.Context, tr *timerange.TimeRange) error {
	if err := im.adoptTimeRange(tr); err != nil {
		return err
	}

	im.data = make(map[string]StationData, len(im.stations))
	avail := newAvailability(im.StationCodes(), *im.timeRange)

	for _, st := range im.stations {
		frs, err := im.loader.GetFrames(ctx, *im.timeRange, st.Code, false)
		if errors.Is(err, frames.ErrStationNoData) {
			im.log.WithField("station", st.Code).Info("Station has no data in range, skipping")
			continue
		}
		if err != nil {
			return err
		}

		cal, err := im.loader.LoadCalibration(ctx, st.Code)
		if errors.Is(err, archive.ErrDirectoryNotFound) {
			if !im.cfg.SuppressWarnings {
				im.log.WithField("station", st.Code).Warn("No skymap published for station")
			}
			cal = nil
		} else if err != nil {
			return err
		}

		im.data[st.Code] = StationData{Frames: frs, Calibration: cal}

		for _, f := range frs {
			avail.markLoaded(st.Code, f.Time)
		}
	}

	im.availability = avail

	return nil
}

// Download bulk-fetches every hour bucket in range for every station,
// without decoding. Hours a station was not observing are skipped.
func (im *Imager) Download(ctx context.Context, tr *timerange.TimeRange) error {
	if err := im.adoptTimeRange(tr); err != nil {
		return err
	}

	for _, st := range im.stations {
		for _, bucket := range im.timeRange.Expand(timerange.Hour) {
			_, err := im.downloader.Download(ctx, bucket, st.Code, timerange.Hour, false)
			if errors.Is(err, archive.ErrDirectoryNotFound) {
				im.log.WithFields(logrus.Fields{"station": st.Code, "bucket": bucket}).Debug("No remote data for hour")
				continue
			}
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// Data returns the loaded frames and calibration for one station.
func (im *Imager) Data(station string) (StationData, bool) {
	data, ok := im.data[strings.ToUpper(station)]
	return data, ok
}

// Availability returns the station × hour table from the last Load, or nil
// before the first Load.
func (im *Imager) Availability() *Availability {
	return im.availability
}

// TimeRange returns the session time range, nil if not yet set.
func (im *Imager) TimeRange() *timerange.TimeRange {
	if im.timeRange == nil {
		return nil
	}

	tr := *im.timeRange

	return &tr
}

func (im *Imager) adoptTimeRange(tr *timerange.TimeRange) error {
	if tr != nil {
		copied := *tr
		im.timeRange = &copied
	}

	if im.timeRange == nil {
		return ErrTimeRangeRequired
	}

	return nil
}

func (im *Imager) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s Imager\nstations=%s\n", im.mission, strings.Join(im.StationCodes(), ","))

	if im.timeRange != nil {
		fmt.Fprintf(&sb, "time_range=%s\n", im.timeRange)
	}

	if im.availability != nil {
		fmt.Fprintf(&sb, "data_availability:\n%s", im.availability)
	}

	return sb.String()
}
