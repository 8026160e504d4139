package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// DefaultMaxImageSize caps uploads at 5MB.
const DefaultMaxImageSize = 5 * 1024 * 1024

var ErrInvalidImage = errors.New("invalid image")

// ImageInfo describes a validated upload.
type ImageInfo struct {
	Format      string // jpeg, png or gif
	Extension   string
	ContentType string
	Width       int
	Height      int
}

type ImageProcessor struct {
	MaxSize int64
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{MaxSize: DefaultMaxImageSize}
}

// ValidateImage accepts jpeg, png and gif up to MaxSize.
func (p *ImageProcessor) ValidateImage(data []byte) (*ImageInfo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidImage)
	}
	if int64(len(data)) > p.MaxSize {
		return nil, fmt.Errorf("%w: exceeds %dMB", ErrInvalidImage, p.MaxSize/(1024*1024))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	info := &ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}
	switch format {
	case "jpeg":
		info.Extension, info.ContentType = "jpg", "image/jpeg"
	case "png":
		info.Extension, info.ContentType = "png", "image/png"
	case "gif":
		info.Extension, info.ContentType = "gif", "image/gif"
	default:
		return nil, fmt.Errorf("%w: format %s not allowed", ErrInvalidImage, format)
	}
	return info, nil
}

// Thumbnail fits the image into a size x size box and encodes it as JPEG quality 90.
// Images already inside the box are re-encoded without upscaling.
func (p *ImageProcessor) Thumbnail(data []byte, size int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}

	resized := imaging.Fit(img, size, size, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("cannot encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
