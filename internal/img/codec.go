// Package img is the codec adapter: it decodes, resizes and re-encodes image
// bytes. It knows nothing about plans or storage layout.
package img

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/imaging"
)

var (
	// ErrUnsupportedFormat is returned for anything outside the JPEG/PNG whitelist.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrDecode is returned when the payload cannot be decoded as an image.
	ErrDecode = errors.New("failed to decode image")
)

// DefaultMaxPixels bounds decoded image area to keep adversarially large
// inputs from exhausting memory.
const DefaultMaxPixels = 64 << 20

// Codec resizes image bytes. The zero value is not usable; use NewCodec.
type Codec struct {
	maxPixels int
}

func NewCodec(maxPixels int) *Codec {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Codec{maxPixels: maxPixels}
}

// normalizeFormat maps a file extension or format name onto the encoder
// format. Only the encoder selection normalizes "jpg" to JPEG; storage paths
// keep the original extension verbatim.
func normalizeFormat(format string) (imaging.Format, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "jpg", "jpeg":
		return imaging.JPEG, nil
	case "png":
		return imaging.PNG, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// SupportedFormat reports whether the extension/format name is on the whitelist.
func SupportedFormat(format string) bool {
	_, err := normalizeFormat(format)
	return err == nil
}

// ContentType returns the MIME type for a whitelisted format.
func ContentType(format string) (string, error) {
	f, err := normalizeFormat(format)
	if err != nil {
		return "", err
	}
	if f == imaging.PNG {
		return "image/png", nil
	}
	return "image/jpeg", nil
}

// Resize scales the image to the target edge length, preserving aspect ratio:
// the new height is targetEdge and the width follows from the source ratio.
// The result is re-encoded in the input format.
func (c *Codec) Resize(data []byte, format string, targetEdge int) ([]byte, error) {
	encFormat, err := normalizeFormat(format)
	if err != nil {
		return nil, err
	}
	if targetEdge <= 0 {
		return nil, fmt.Errorf("%w: target edge %d", ErrDecode, targetEdge)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Height <= 0 || cfg.Width <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}
	if cfg.Width*cfg.Height > c.maxPixels {
		return nil, fmt.Errorf("%w: image exceeds %d pixels", ErrDecode, c.maxPixels)
	}

	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	// Width 0 lets imaging compute it from the aspect ratio.
	resized := imaging.Resize(src, 0, targetEdge, imaging.Lanczos)

	var buf bytes.Buffer
	err = imaging.Encode(&buf, resized, encFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), nil
}
