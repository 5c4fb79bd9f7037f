// Package imaging bounds the byte size of an image before upload by
// downscaling and re-encoding it as JPEG. The routine is a best-effort
// single-pass search: it never retries a failed decode and returns its last
// encoding even when the size target is not met.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"strings"

	"golang.org/x/image/draw"

	// Register the decoders accepted as capture sources.
	_ "image/gif"
	_ "image/png"

	"github.com/styleai/styleai/internal/serviceerr"
)

const (
	DefaultMaxWidth  = 1920
	DefaultMaxHeight = 1920
	DefaultQuality   = 0.75
	DefaultMaxSizeKB = 500

	qualityFloor = 0.5
	qualityStep  = 0.1
	maxAttempts  = 5
)

type Options struct {
	MaxWidth  int
	MaxHeight int
	// Quality is the initial JPEG quality factor in [0, 1].
	Quality float64
	// MaxSizeKB is the target upper bound on the encoded payload size.
	MaxSizeKB float64
}

func (o *Options) applyDefaults() {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.MaxHeight <= 0 {
		o.MaxHeight = DefaultMaxHeight
	}
	if o.Quality <= 0 {
		o.Quality = DefaultQuality
	}
	if o.MaxSizeKB <= 0 {
		o.MaxSizeKB = DefaultMaxSizeKB
	}
}

// Result carries the compressed payload together with the encoding
// parameters that produced it.
type Result struct {
	Data     []byte
	Width    int
	Height   int
	Quality  float64
	Attempts int
	SizeKB   float64
}

// Compress decodes data, downscales it to fit opts.MaxWidth x opts.MaxHeight
// preserving aspect ratio (never upscaling), and re-encodes it as JPEG,
// lowering the quality in 0.1 steps towards a floor of 0.5 until the
// estimated size fits opts.MaxSizeKB or five reduction attempts have been
// made. Safe to call concurrently on independent inputs.
func Compress(data []byte, opts Options) (Result, error) {
	opts.applyDefaults()

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("decoding image: %w", errors.Join(err, serviceerr.ErrDecode))
	}

	width, height := targetDims(src.Bounds().Dx(), src.Bounds().Dy(), opts.MaxWidth, opts.MaxHeight)

	surface, err := render(src, width, height)
	if err != nil {
		return Result{}, err
	}

	quality := opts.Quality
	encoded, err := encodeJPEG(surface, quality)
	if err != nil {
		return Result{}, err
	}

	attempts := 0
	for attempts < maxAttempts {
		if EstimateSizeKB(len(encoded)) <= opts.MaxSizeKB || quality <= qualityFloor {
			break
		}

		quality = math.Max(qualityFloor, quality-qualityStep)
		encoded, err = encodeJPEG(surface, quality)
		if err != nil {
			return Result{}, err
		}
		attempts++
	}

	return Result{
		Data:     encoded,
		Width:    width,
		Height:   height,
		Quality:  quality,
		Attempts: attempts,
		SizeKB:   EstimateSizeKB(len(encoded)),
	}, nil
}

// targetDims scales both dimensions by the single ratio
// min(maxW/w, maxH/h), floored to integer pixels. Dimensions already within
// bounds are kept as-is.
func targetDims(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}

	ratio := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))

	return int(math.Floor(float64(w) * ratio)), int(math.Floor(float64(h) * ratio))
}

// render draws src onto an offscreen RGBA surface of the target dimensions.
func render(src image.Image, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("surface %dx%d: %w", width, height, serviceerr.ErrSurface)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return dst, nil
}

func encodeJPEG(img image.Image, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", errors.Join(err, serviceerr.ErrSurface))
	}

	return buf.Bytes(), nil
}

// jpegQuality maps a [0, 1] quality factor onto the encoder's 1-100 scale.
func jpegQuality(q float64) int {
	n := int(math.Round(q * 100))
	if n < 1 {
		n = 1
	}
	if n > 100 {
		n = 100
	}

	return n
}

// EstimateSizeKB reports the approximate wire size of a payload of n bytes,
// derived from the base64 text length times 3/4, in KB. An approximation,
// not an exact byte count; the compression loop only needs a monotone proxy.
func EstimateSizeKB(n int) float64 {
	base64Len := base64.StdEncoding.EncodedLen(n)
	return float64(base64Len) * 3 / 4 / 1024
}

// ToDataURL wraps a JPEG payload in the data URL form the upload endpoint
// expects.
func ToDataURL(data []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
}

// FromDataURL strips an optional data URL prefix and decodes the base64
// payload.
func FromDataURL(s string) ([]byte, error) {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[i+1:]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 payload: %w", errors.Join(err, serviceerr.ErrDecode))
	}

	return data, nil
}
