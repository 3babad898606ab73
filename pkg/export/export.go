// Package export writes decoded frame sequences to disk as numbered PNG
// images. It is a downstream consumer of the frame loader: loading produces
// the sequence, exporting reads it, and neither drives the other.
package export

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/auroralab/allsky/pkg/frames"
)

// WriteSequence renders frames into dir as 16-bit grayscale PNGs named
// <index>_<timestamp>.png, creating dir if needed. Returns the written
// paths in frame order.
func WriteSequence(log logrus.FieldLogger, dir string, frs []frames.Frame) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory %s: %w", dir, err)
	}

	paths := make([]string, 0, len(frs))

	for i, f := range frs {
		name := fmt.Sprintf("%04d_%s.png", i, f.Time.UTC().Format("20060102_150405.000"))
		path := filepath.Join(dir, name)

		if err := writePNG(path, f); err != nil {
			return nil, err
		}

		paths = append(paths, path)
	}

	log.WithFields(logrus.Fields{"dir": dir, "frames": len(paths)}).Info("Exported frame sequence")

	return paths, nil
}

func writePNG(path string, f frames.Frame) error {
	img := image.NewGray16(image.Rect(0, 0, f.Width, f.Height))

	// Stretch sample values to the full 16-bit range so dim auroral images
	// stay visible regardless of the camera's maxval.
	scale := 1
	if f.MaxVal > 0 {
		scale = 65535 / f.MaxVal
	}

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := int(f.Pixels[y*f.Width+x]) * scale
			if v > 65535 {
				v = 65535
			}
			idx := img.PixOffset(x, y)
			img.Pix[idx] = uint8(v >> 8)
			img.Pix[idx+1] = uint8(v)
		}
	}

	out, err := os.Create(path) //nolint:gosec // Path derived from user-requested export dir
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := png.Encode(out, img); err != nil {
		_ = out.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}

	return out.Close()
}
