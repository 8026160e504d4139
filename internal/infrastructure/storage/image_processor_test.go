package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestValidateImage_AcceptsPNGAndGIF(t *testing.T) {
	p := NewImageProcessor()

	info, err := p.ValidateImage(encodePNG(t, 4, 3))
	require.NoError(t, err)
	assert.Equal(t, "png", info.Extension)
	assert.Equal(t, "image/png", info.ContentType)
	assert.Equal(t, 4, info.Width)

	buf := new(bytes.Buffer)
	pal := image.NewPaletted(image.Rect(0, 0, 2, 2), []color.Color{color.White, color.Black})
	require.NoError(t, gif.Encode(buf, pal, nil))
	info, err = p.ValidateImage(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "gif", info.Extension)
}

func TestValidateImage_Rejects(t *testing.T) {
	p := &ImageProcessor{MaxSize: 10}

	_, err := p.ValidateImage(nil)
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = p.ValidateImage(bytes.Repeat([]byte{1}, 11))
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = NewImageProcessor().ValidateImage([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestThumbnail_FitsIntoBox(t *testing.T) {
	thumb, err := NewImageProcessor().Thumbnail(encodePNG(t, 1200, 300), 600)
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 600, cfg.Width)
	assert.Equal(t, 150, cfg.Height)
}

func TestThumbnail_DoesNotUpscale(t *testing.T) {
	thumb, err := NewImageProcessor().Thumbnail(encodePNG(t, 40, 20), 600)
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
}
