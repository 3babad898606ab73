package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/auroralab/allsky/pkg/config"
	"github.com/auroralab/allsky/pkg/mission"
	"github.com/auroralab/allsky/pkg/observability"
	"github.com/auroralab/allsky/pkg/timerange"
)

// Downloader fetches archive files for one mission into the local data root.
type Downloader interface {
	// Download fetches the image file(s) for one station and one bucket.
	// Minute granularity fetches the single file stamped with the bucket's
	// minute; when several entries match, the first in listing order wins.
	// Hour granularity fetches every file in the bucket's hour directory.
	// Files already on disk are skipped unless force is set. Returns the
	// local paths covered by the request, present or fetched.
	Download(ctx context.Context, day time.Time, station string, g timerange.Granularity, force bool) ([]string, error)

	// DownloadSkymap fetches the newest calibration skymap for a station,
	// skipping the fetch when a cached copy exists and force is unset.
	// Returns the local path.
	DownloadSkymap(ctx context.Context, station string, force bool) (string, error)

	// LocalDir is the mission's directory under the local data root.
	LocalDir() string
}

type downloader struct {
	log      logrus.FieldLogger
	mission  mission.Mission
	baseURL  string
	dataDir  string
	resolver Resolver
	client   *http.Client
}

// NewDownloader creates a Downloader for one mission. The HTTP client never
// follows redirects: the archive is not expected to redirect, and a 3xx is
// reported as ErrBadStatus instead of an error page being saved as data.
func NewDownloader(log logrus.FieldLogger, cfg *config.Config, m mission.Mission) Downloader {
	client := &http.Client{
		Timeout: cfg.Archive.RequestTimeout,
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &downloader{
		log:      log.WithField("service", "downloader").WithField("mission", m.String()),
		mission:  m,
		baseURL:  withTrailingSlash(cfg.Archive.BaseURL(m)),
		dataDir:  cfg.DataDir,
		resolver: NewResolver(log, client),
		client:   client,
	}
}

func (d *downloader) LocalDir() string {
	return filepath.Join(d.dataDir, d.mission.Dir())
}

func (d *downloader) Download(ctx context.Context, day time.Time, station string, g timerange.Granularity, force bool) ([]string, error) {
	day = day.UTC()

	dayURL := d.baseURL + d.mission.StreamPath(day)

	// Was this station taking data that day?
	stationDirs, err := d.resolver.ListEntries(ctx, dayURL, strings.ToLower(station))
	if err != nil {
		return nil, err
	}

	hourURL := dayURL + withTrailingSlash(stationDirs[0]) + mission.HourDir(day)

	var names []string
	if g == timerange.Minute {
		matches, err := d.resolver.ListEntries(ctx, hourURL, mission.MinuteStamp(day))
		if err != nil {
			return nil, err
		}
		names = matches[:1]
	} else {
		names, err = d.resolver.ListEntries(ctx, hourURL, "")
		if err != nil {
			return nil, err
		}
	}

	localDir := d.LocalDir()
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", localDir, err)
	}

	paths := make([]string, 0, len(names))

	for _, name := range names {
		if strings.HasSuffix(name, "/") {
			continue
		}

		localPath := filepath.Join(localDir, name)
		paths = append(paths, localPath)

		if !force && fileExists(localPath) {
			observability.CacheHitsTotal.WithLabelValues(d.mission.Dir()).Inc()
			d.log.WithField("file", name).Debug("Local file exists, skipping download")
			continue
		}

		if err := d.fetchFile(ctx, hourURL+name, localPath); err != nil {
			return nil, err
		}
	}

	return paths, nil
}

func (d *downloader) DownloadSkymap(ctx context.Context, station string, force bool) (string, error) {
	skymapURL := d.baseURL + d.mission.SkymapPath(station)

	entries, err := d.resolver.ListEntries(ctx, skymapURL, strings.ToLower(station))
	if err != nil {
		return "", err
	}

	candidates := make([]string, 0, len(entries))
	for _, name := range entries {
		if strings.HasSuffix(name, ".json") {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: url=%s pattern=%q", ErrDirectoryNotFound, skymapURL, strings.ToLower(station)+"*.json")
	}

	// Skymap names embed their generation date and listings sort ascending,
	// so the last candidate is the newest.
	name := candidates[len(candidates)-1]

	localDir := filepath.Join(d.LocalDir(), "skymap")
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return "", fmt.Errorf("create skymap directory %s: %w", localDir, err)
	}

	localPath := filepath.Join(localDir, name)
	if !force && fileExists(localPath) {
		observability.CacheHitsTotal.WithLabelValues(d.mission.Dir()).Inc()
		return localPath, nil
	}

	if err := d.fetchFile(ctx, skymapURL+name, localPath); err != nil {
		return "", err
	}

	return localPath, nil
}

// fetchFile streams one remote file to localPath. The write is
// atomic-or-absent: bytes go to a temp file that is renamed into place only
// after the full body has been read, and removed on any failure.
func (d *downloader) fetchFile(ctx context.Context, fileURL, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, http.NoBody)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		observability.DownloadsTotal.WithLabelValues(d.mission.Dir(), "failed").Inc()
		return fmt.Errorf("fetch %s: %w", fileURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.DownloadsTotal.WithLabelValues(d.mission.Dir(), "failed").Inc()
		return fmt.Errorf("%w: %s returned %s", ErrBadStatus, fileURL, resp.Status)
	}

	tmpPath := localPath + ".tmp-" + uuid.NewString()

	tmp, err := os.Create(tmpPath) //nolint:gosec // Path derived from configured data root
	if err != nil {
		return fmt.Errorf("create temp file %s: %w", tmpPath, err)
	}

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		observability.DownloadsTotal.WithLabelValues(d.mission.Dir(), "failed").Inc()

		return fmt.Errorf("stream %s: %w", fileURL, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, localPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("finalize %s: %w", localPath, err)
	}

	observability.DownloadsTotal.WithLabelValues(d.mission.Dir(), "success").Inc()
	observability.DownloadBytesTotal.WithLabelValues(d.mission.Dir()).Add(float64(n))

	d.log.WithFields(logrus.Fields{"url": fileURL, "bytes": n}).Debug("Downloaded file")

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func withTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}

	return s + "/"
}
