// Package frames turns cached archive files into ordered, timestamped image
// frames, and loads per-station calibration skymaps.
package frames

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Frame is a single decoded image tagged with its true capture time.
type Frame struct {
	Time   time.Time
	Width  int
	Height int
	MaxVal int
	Pixels []uint16
}

// effectiveTimePrefix marks the header comment carrying a frame's capture
// time, e.g. "# Effective image time: 2017-04-13 05:10:00.030000 UTC".
const effectiveTimePrefix = "effective image time:"

const effectiveTimeLayout = "2006-01-02 15:04:05.999999"

// DecodeFile decodes one archive image file into its frames. Files ending
// in .gz are decompressed transparently.
func DecodeFile(path string) ([]Frame, error) {
	f, err := os.Open(path) //nolint:gosec // Path derived from configured data root
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream %s: %w", path, err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	return DecodeStream(r)
}

// DecodeStream decodes a stream of concatenated binary PGM images, each
// carrying its capture time in a header comment, into frames in stream
// order.
func DecodeStream(r io.Reader) ([]Frame, error) {
	br := bufio.NewReader(r)

	var out []Frame
	for {
		frame, err := decodeFrame(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *frame)
	}

	if len(out) == 0 {
		return nil, ErrNoFrames
	}

	return out, nil
}

func decodeFrame(br *bufio.Reader) (*Frame, error) {
	var comments []string

	magic, err := readToken(br, &comments)
	if err != nil {
		return nil, err
	}
	if magic != "P5" {
		return nil, fmt.Errorf("unsupported image magic %q, expected P5", magic)
	}

	width, err := readIntToken(br, &comments)
	if err != nil {
		return nil, fmt.Errorf("read image width: %w", err)
	}

	height, err := readIntToken(br, &comments)
	if err != nil {
		return nil, fmt.Errorf("read image height: %w", err)
	}

	maxVal, err := readIntToken(br, &comments)
	if err != nil {
		return nil, fmt.Errorf("read image maxval: %w", err)
	}

	ts, err := effectiveTime(comments)
	if err != nil {
		return nil, err
	}

	pixels, err := readPixels(br, width, height, maxVal)
	if err != nil {
		return nil, fmt.Errorf("read pixel data: %w", err)
	}

	return &Frame{
		Time:   ts,
		Width:  width,
		Height: height,
		MaxVal: maxVal,
		Pixels: pixels,
	}, nil
}

func effectiveTime(comments []string) (time.Time, error) {
	for _, c := range comments {
		lower := strings.ToLower(c)
		idx := strings.Index(lower, effectiveTimePrefix)
		if idx < 0 {
			continue
		}

		raw := strings.TrimSpace(c[idx+len(effectiveTimePrefix):])
		raw = strings.TrimSuffix(raw, " UTC")

		ts, err := time.ParseInLocation(effectiveTimeLayout, raw, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse effective image time %q: %w", raw, err)
		}

		return ts, nil
	}

	return time.Time{}, ErrMissingTimestamp
}

// readToken returns the next whitespace-delimited header token, collecting
// any comment lines passed over. io.EOF before the first byte of a token
// means a clean end of stream.
func readToken(br *bufio.Reader, comments *[]string) (string, error) {
	var sb strings.Builder

	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}

		switch {
		case b == '#' && sb.Len() == 0:
			line, err := br.ReadString('\n')
			if err != nil && err != io.EOF {
				return "", err
			}
			*comments = append(*comments, strings.TrimSpace(line))
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			if sb.Len() > 0 {
				return sb.String(), nil
			}
		default:
			sb.WriteByte(b)
		}
	}
}

func readIntToken(br *bufio.Reader, comments *[]string) (int, error) {
	tok, err := readToken(br, comments)
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(tok)
}

// readPixels reads the raw sample block that follows the maxval token.
// Samples are one byte when maxval < 256, big-endian two-byte otherwise.
func readPixels(br *bufio.Reader, width, height, maxVal int) ([]uint16, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}

	count := width * height
	pixels := make([]uint16, count)

	if maxVal < 256 {
		buf := make([]byte, count)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, err
		}
		for i, b := range buf {
			pixels[i] = uint16(b)
		}

		return pixels, nil
	}

	buf := make([]byte, 2*count)
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		pixels[i] = uint16(buf[2*i])<<8 | uint16(buf[2*i+1])
	}

	return pixels, nil
}
