package frames_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auroralab/allsky/internal/testutil"
	"github.com/auroralab/allsky/pkg/frames"
)

var frameStart = time.Date(2017, 4, 13, 5, 10, 0, 0, time.UTC)

func TestDecodeStreamMultiFrame(t *testing.T) {
	specs := []testutil.FrameSpec{
		{Time: frameStart, Width: 4, Height: 3, Fill: 100},
		{Time: frameStart.Add(3 * time.Second), Width: 4, Height: 3, Fill: 200},
		{Time: frameStart.Add(6 * time.Second), Width: 4, Height: 3, Fill: 300},
	}

	decoded, err := frames.DecodeStream(bytes.NewReader(testutil.EncodePGM(specs)))
	require.NoError(t, err)
	require.Len(t, decoded, 3)

	for i, f := range decoded {
		assert.Equal(t, specs[i].Time, f.Time)
		assert.Equal(t, 4, f.Width)
		assert.Equal(t, 3, f.Height)
		assert.Equal(t, 65535, f.MaxVal)
		require.Len(t, f.Pixels, 12)
		assert.Equal(t, specs[i].Fill, f.Pixels[0])
		assert.Equal(t, specs[i].Fill, f.Pixels[11])
	}
}

func TestDecodeStreamSubsecondTimestamp(t *testing.T) {
	at := frameStart.Add(30 * time.Millisecond)

	decoded, err := frames.DecodeStream(bytes.NewReader(testutil.EncodePGM([]testutil.FrameSpec{{Time: at, Width: 2, Height: 2}})))
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, at, decoded[0].Time)
}

func TestDecodeStreamEightBitSamples(t *testing.T) {
	raw := []byte("P5\n# Effective image time: 2017-04-13 05:10:00.000000 UTC\n2 2\n255\n")
	raw = append(raw, 10, 20, 30, 40)

	decoded, err := frames.DecodeStream(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, decoded, 1)

	f := decoded[0]
	assert.Equal(t, 255, f.MaxVal)
	assert.Equal(t, []uint16{10, 20, 30, 40}, f.Pixels)
}

func TestDecodeStreamMissingTimestamp(t *testing.T) {
	raw := []byte("P5\n2 2\n255\n")
	raw = append(raw, 1, 2, 3, 4)

	_, err := frames.DecodeStream(bytes.NewReader(raw))
	require.Error(t, err)
	assert.ErrorIs(t, err, frames.ErrMissingTimestamp)
}

func TestDecodeStreamEmptyInput(t *testing.T) {
	_, err := frames.DecodeStream(bytes.NewReader(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, frames.ErrNoFrames)
}

func TestDecodeStreamBadMagic(t *testing.T) {
	_, err := frames.DecodeStream(bytes.NewReader([]byte("P6\n2 2\n255\n")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "P5")
}

func TestDecodeFileGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "20170413_0510_luck_rego-full_6300.pgm.gz")
	data := testutil.EncodePGMGz([]testutil.FrameSpec{
		{Time: frameStart, Width: 2, Height: 2, Fill: 7},
		{Time: frameStart.Add(3 * time.Second), Width: 2, Height: 2, Fill: 8},
	})
	require.NoError(t, os.WriteFile(path, data, 0o600))

	decoded, err := frames.DecodeFile(path)
	require.NoError(t, err)
	assert.Len(t, decoded, 2)
}

func TestReadCalibration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rego_skymap_luck_20170401.json")
	generated := time.Date(2017, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.WriteFile(path, testutil.SkymapJSON("REGO", "LUCK", generated), 0o600))

	cal, err := frames.ReadCalibration(path)
	require.NoError(t, err)

	assert.Equal(t, "LUCK", cal.Station)
	assert.Equal(t, "REGO", cal.Mission)
	assert.Equal(t, generated, cal.GeneratedAt)
	assert.InDelta(t, 51.15, cal.SiteLatitude, 0.01)
	assert.Equal(t, 16, cal.ImageWidth)
}

func TestReadCalibrationBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))

	_, err := frames.ReadCalibration(path)
	require.Error(t, err)
}
