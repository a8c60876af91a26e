package service

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ripple/internal/config"
	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes is a minimal valid PNG header payload, enough for content sniffing.
func pngBytes() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 16)...)
}

func jpegBytes() []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0}, 16)...)
}

func newTestImageService(t *testing.T) *ImageService {
	t.Helper()
	return NewImageService(&config.Config{UploadDir: t.TempDir()})
}

func TestImageService_Save(t *testing.T) {
	t.Run("stores png under upload dir with generated name", func(t *testing.T) {
		svc := newTestImageService(t)

		ref, err := svc.Save(UploadImageInput{Filename: "cat.png", Content: pngBytes()})
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(ref, "/uploads/"))
		assert.Equal(t, ".png", filepath.Ext(ref))

		onDisk := filepath.Join(svc.UploadDir(), strings.TrimPrefix(ref, "/uploads/"))
		data, err := os.ReadFile(onDisk)
		require.NoError(t, err)
		assert.Equal(t, pngBytes(), data)
	})

	t.Run("accepts jpeg", func(t *testing.T) {
		svc := newTestImageService(t)
		_, err := svc.Save(UploadImageInput{Filename: "photo.JPG", Content: jpegBytes()})
		assert.NoError(t, err)
	})

	t.Run("rejects empty upload", func(t *testing.T) {
		svc := newTestImageService(t)
		_, err := svc.Save(UploadImageInput{Filename: "cat.png"})
		assertAppError(t, err, models.CodeValidation)
	})

	t.Run("rejects oversized upload", func(t *testing.T) {
		svc := newTestImageService(t)
		big := append(pngBytes(), make([]byte, DefaultMaxUploadSizeMB*1024*1024)...)
		_, err := svc.Save(UploadImageInput{Filename: "cat.png", Content: big})
		assertAppError(t, err, models.CodeValidation)
	})

	t.Run("rejects disallowed extension", func(t *testing.T) {
		svc := newTestImageService(t)
		_, err := svc.Save(UploadImageInput{Filename: "cat.gif", Content: pngBytes()})
		assertAppError(t, err, models.CodeValidation)
	})

	t.Run("rejects content that is not an image", func(t *testing.T) {
		svc := newTestImageService(t)
		_, err := svc.Save(UploadImageInput{Filename: "cat.png", Content: []byte("<html>not an image</html>")})
		assertAppError(t, err, models.CodeValidation)
	})
}
