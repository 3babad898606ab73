package frames_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auroralab/allsky/internal/testutil"
	"github.com/auroralab/allsky/pkg/archive"
	"github.com/auroralab/allsky/pkg/config"
	"github.com/auroralab/allsky/pkg/frames"
	"github.com/auroralab/allsky/pkg/mission"
	"github.com/auroralab/allsky/pkg/timerange"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

func newLoaderEnv(t *testing.T) (*testutil.ArchiveServer, frames.Loader) {
	t.Helper()

	srv := testutil.NewArchiveServer()
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Logging: "error",
		DataDir: t.TempDir(),
		Archive: config.ArchiveConfig{
			REGOBaseURL:    srv.URL(),
			THEMISBaseURL:  srv.URL(),
			RequestTimeout: 5 * time.Second,
		},
	}

	downloader := archive.NewDownloader(testLogger(), cfg, mission.REGO)

	return srv, frames.NewLoader(testLogger(), mission.REGO, downloader)
}

func addMinute(srv *testutil.ArchiveServer, ts time.Time, nFrames int) {
	name := testutil.ImageFileName(ts, "LUCK", "rego-full_6300")
	srv.AddFile("stream0/2017/04/13/luck_rego-full/ut05/"+name, testutil.MinuteFile(ts, nFrames, 3*time.Second, 50))
}

func TestGetFramesOrderedAcrossBuckets(t *testing.T) {
	srv, loader := newLoaderEnv(t)

	first := time.Date(2017, 4, 13, 5, 10, 0, 0, time.UTC)
	second := time.Date(2017, 4, 13, 5, 11, 0, 0, time.UTC)
	addMinute(srv, first, 20)
	addMinute(srv, second, 20)

	tr, err := timerange.New(first, second.Add(59*time.Second))
	require.NoError(t, err)

	frs, err := loader.GetFrames(context.Background(), tr, "luck", false)
	require.NoError(t, err)
	assert.Len(t, frs, 40)

	for i := 1; i < len(frs); i++ {
		assert.True(t, frs[i].Time.After(frs[i-1].Time),
			"timestamps must be strictly increasing, got %s then %s", frs[i-1].Time, frs[i].Time)
	}
}

func TestGetFramesFiltersToRange(t *testing.T) {
	srv, loader := newLoaderEnv(t)

	bucket := time.Date(2017, 4, 13, 5, 10, 0, 0, time.UTC)
	addMinute(srv, bucket, 20) // frames at :00, :03, ..., :57

	tr, err := timerange.New(bucket.Add(30*time.Second), bucket.Add(40*time.Second))
	require.NoError(t, err)

	frs, err := loader.GetFrames(context.Background(), tr, "LUCK", false)
	require.NoError(t, err)

	// :30, :33, :36, :39
	assert.Len(t, frs, 4)
	assert.False(t, frs[0].Time.Before(tr.Start))
	assert.False(t, frs[len(frs)-1].Time.After(tr.End))
}

func TestGetFramesUsesLocalCache(t *testing.T) {
	srv, loader := newLoaderEnv(t)

	bucket := time.Date(2017, 4, 13, 5, 10, 0, 0, time.UTC)
	addMinute(srv, bucket, 5)

	tr, err := timerange.New(bucket, bucket.Add(59*time.Second))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = loader.GetFrames(ctx, tr, "LUCK", false)
	require.NoError(t, err)
	hitsAfterFirst := srv.TotalFileHits()

	_, err = loader.GetFrames(ctx, tr, "LUCK", false)
	require.NoError(t, err)

	assert.Equal(t, hitsAfterFirst, srv.TotalFileHits(), "second load must not refetch cached files")
}

func TestGetFramesForceRefetches(t *testing.T) {
	srv, loader := newLoaderEnv(t)

	bucket := time.Date(2017, 4, 13, 5, 10, 0, 0, time.UTC)
	addMinute(srv, bucket, 5)

	tr, err := timerange.New(bucket, bucket.Add(59*time.Second))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = loader.GetFrames(ctx, tr, "LUCK", false)
	require.NoError(t, err)

	_, err = loader.GetFrames(ctx, tr, "LUCK", true)
	require.NoError(t, err)

	assert.Equal(t, 2, srv.TotalFileHits())
}

func TestGetFramesSkipsEmptyMinutes(t *testing.T) {
	srv, loader := newLoaderEnv(t)

	// Data for 05:10 and 05:12 only; 05:11 is a gap
	addMinute(srv, time.Date(2017, 4, 13, 5, 10, 0, 0, time.UTC), 2)
	addMinute(srv, time.Date(2017, 4, 13, 5, 12, 0, 0, time.UTC), 2)

	tr, err := timerange.New(
		time.Date(2017, 4, 13, 5, 10, 0, 0, time.UTC),
		time.Date(2017, 4, 13, 5, 12, 59, 0, time.UTC),
	)
	require.NoError(t, err)

	frs, err := loader.GetFrames(context.Background(), tr, "LUCK", false)
	require.NoError(t, err)
	assert.Len(t, frs, 4)
}

func TestGetFramesStationNoData(t *testing.T) {
	srv, loader := newLoaderEnv(t)

	// The day exists but only for another station
	srv.AddDir("stream0/2017/04/13/gill_rego-full/ut05/")

	tr, err := timerange.New(
		time.Date(2017, 4, 13, 5, 10, 0, 0, time.UTC),
		time.Date(2017, 4, 13, 5, 11, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	_, err = loader.GetFrames(context.Background(), tr, "LUCK", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, frames.ErrStationNoData)
	assert.NotErrorIs(t, err, archive.ErrDirectoryNotFound,
		"whole-range emptiness must be distinguishable from a listing miss")
}

func TestLoadCalibration(t *testing.T) {
	srv, loader := newLoaderEnv(t)

	generated := time.Date(2017, 4, 1, 0, 0, 0, 0, time.UTC)
	srv.AddFile("skymap/luck/"+testutil.SkymapFileName("rego", "LUCK", generated), testutil.SkymapJSON("REGO", "LUCK", generated))

	cal, err := loader.LoadCalibration(context.Background(), "LUCK")
	require.NoError(t, err)
	assert.Equal(t, "LUCK", cal.Station)
	assert.Equal(t, generated, cal.GeneratedAt)
}
