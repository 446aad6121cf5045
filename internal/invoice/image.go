package invoice

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

const (
	// MaxImageSize is the largest accepted upload, in bytes.
	MaxImageSize = 5 << 20
	// MaxImageDimension bounds both the width and the height of an image,
	// in pixels.
	MaxImageDimension = 8000
)

var (
	ErrUnsupportedImage = errors.New("file is not an image")
	ErrImageTooLarge    = errors.New("image exceeds 5 MB")
	ErrInvalidDataURI   = errors.New("invalid image data URI")
	ErrImageDimensions  = fmt.Errorf("image exceeds %d x %d pixels", MaxImageDimension, MaxImageDimension)
)

// ImageSlot names one of the image fields of a document.
type ImageSlot string

const (
	SlotHeader    ImageSlot = "header"
	SlotLogo      ImageSlot = "logo"
	SlotSignature ImageSlot = "signature"
)

// Slots lists every image slot in display order.
var Slots = []ImageSlot{SlotHeader, SlotLogo, SlotSignature}

// Image returns the data URI stored in the slot.
func (d *Document) Image(slot ImageSlot) string {
	switch slot {
	case SlotHeader:
		return d.HeaderImage
	case SlotLogo:
		return d.CompanyLogo
	case SlotSignature:
		return d.Signature
	}

	return ""
}

// SetImage stores uri in the slot. An unknown slot is an error.
func (d *Document) SetImage(slot ImageSlot, uri string) error {
	switch slot {
	case SlotHeader:
		d.HeaderImage = uri
	case SlotLogo:
		d.CompanyLogo = uri
	case SlotSignature:
		d.Signature = uri
	default:
		return fmt.Errorf("unknown image slot %q", slot)
	}

	return nil
}

// EncodeImage checks an uploaded file and returns it as an inline data URI.
// The declared content type must be image/*, the payload at most
// MaxImageSize bytes, and the sniffed content must also be an image. Images
// whose header can be read must fit within MaxImageDimension on both axes.
func EncodeImage(contentType string, data []byte) (string, error) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/") {
		return "", fmt.Errorf("%w: declared type %q", ErrUnsupportedImage, contentType)
	}

	if len(data) > MaxImageSize {
		return "", ErrImageTooLarge
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", fmt.Errorf("%w: content is %s", ErrUnsupportedImage, detected.String())
	}

	if err := checkDimensions(data); err != nil {
		return "", err
	}

	return "data:" + detected.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeImage parses a base64 data URI produced by EncodeImage. It returns
// the raw bytes alongside the decoded image.
func DecodeImage(uri string) (image.Image, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, nil, ErrInvalidDataURI
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, nil, ErrInvalidDataURI
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}

	if err := checkDimensions(raw); err != nil {
		return nil, nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("decoding image: %w", err)
	}

	return img, raw, nil
}

// checkDimensions reads only the image header. Formats without a registered
// decoder (SVG, for one) pass; they are never rasterized.
func checkDimensions(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	if cfg.Width > MaxImageDimension || cfg.Height > MaxImageDimension {
		return fmt.Errorf("%w: got %d x %d", ErrImageDimensions, cfg.Width, cfg.Height)
	}

	return nil
}
