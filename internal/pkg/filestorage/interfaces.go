package filestorage

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/deptce/mentorship/internal/pkg/apperrors"
)

// PhotoStorage stores profile photos under a stable public id. Saving to an
// existing public id replaces the previous photo.
type PhotoStorage interface {
	SavePhoto(ctx context.Context, publicID string, fileHeader *multipart.FileHeader) (string, error)
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ValidateImage checks the declared type, sniffed content and size of an
// uploaded image, and returns the file extension to store it under.
func ValidateImage(fileHeader *multipart.FileHeader, maxBytes int64) (string, error) {
	if fileHeader == nil {
		return "", apperrors.NewBadRequestError("photo file is required")
	}
	if maxBytes > 0 && fileHeader.Size > maxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", apperrors.ErrFileTooLarge, fileHeader.Size, maxBytes)
	}

	declared := strings.ToLower(strings.TrimSpace(strings.Split(fileHeader.Header.Get("Content-Type"), ";")[0]))
	if _, ok := allowedImageTypes[declared]; !ok && declared != "" && declared != "application/octet-stream" {
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnsupportedMediaType, declared)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	sniffed := http.DetectContentType(head[:n])
	ext, ok := allowedImageTypes[sniffed]
	if !ok {
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnsupportedMediaType, sniffed)
	}

	if orig := strings.ToLower(filepath.Ext(fileHeader.Filename)); orig == ".jpeg" && ext == ".jpg" {
		return orig, nil
	}
	return ext, nil
}
