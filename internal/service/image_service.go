package service

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"ripple/internal/config"
	"ripple/internal/models"

	"github.com/google/uuid"
)

const (
	DefaultUploadDir          = "./uploads"
	DefaultMaxUploadSizeMB    = 5
	uploadedImagePublicPrefix = "/uploads/"
)

// allowedImageExts are the accepted upload extensions. The sniffed content
// type must agree with the extension set as well.
var allowedImageExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".webp": true,
}

var allowedImageMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UploadImageInput is the raw uploaded file content and its original filename.
type UploadImageInput struct {
	Filename string
	Content  []byte
}

// ImageService validates and stores post image attachments on local disk.
type ImageService struct {
	uploadDir          string
	maxUploadSizeBytes int64
}

// NewImageService creates an image service using the configured upload directory.
func NewImageService(cfg *config.Config) *ImageService {
	uploadDir := DefaultUploadDir
	if cfg != nil && cfg.UploadDir != "" {
		uploadDir = cfg.UploadDir
	}
	return &ImageService{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: DefaultMaxUploadSizeMB * 1024 * 1024,
	}
}

// UploadDir returns the directory uploads are written to.
func (s *ImageService) UploadDir() string { return s.uploadDir }

// Save validates the upload and writes it under the upload directory with a
// generated filename. It returns the public path to store as the post's
// image reference.
func (s *ImageService) Save(in UploadImageInput) (string, error) {
	if len(in.Content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(
			fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	ext := strings.ToLower(filepath.Ext(in.Filename))
	if !allowedImageExts[ext] {
		return "", models.NewValidationError("Only image files are allowed (jpeg, jpg, png, webp)")
	}

	if !allowedImageMIMEs[http.DetectContentType(in.Content)] {
		return "", models.NewValidationError("Only image files are allowed (jpeg, jpg, png, webp)")
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", models.NewInternalError(err)
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.uploadDir, name), in.Content, 0o644); err != nil {
		return "", models.NewInternalError(err)
	}

	return uploadedImagePublicPrefix + name, nil
}
