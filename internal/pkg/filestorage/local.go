package filestorage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string
	baseURL  string
	maxBytes int64
	logger   zerolog.Logger
}

// NewLocalStorage creates a new LocalStorage instance. Files are written
// below basePath and addressed as baseURL/<public id><ext>.
func NewLocalStorage(basePath, baseURL string, maxBytes int64, logger zerolog.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
		logger:   logger,
	}, nil
}

// SavePhoto writes the photo to <basePath>/<publicID><ext>, removing any
// earlier photo stored under the same public id.
func (ls *LocalStorage) SavePhoto(ctx context.Context, publicID string, fileHeader *multipart.FileHeader) (string, error) {
	ext, err := ValidateImage(fileHeader, ls.maxBytes)
	if err != nil {
		return "", err
	}

	rel := path.Clean("/" + publicID)[1:]
	if rel == "" || rel == "." {
		return "", fmt.Errorf("invalid public id %q", publicID)
	}
	dstPath := filepath.Join(ls.basePath, filepath.FromSlash(rel)) + ext

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		ls.logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	if old, _ := filepath.Glob(filepath.Join(ls.basePath, filepath.FromSlash(rel)) + ".*"); len(old) > 0 {
		for _, p := range old {
			if p != dstPath {
				_ = os.Remove(p)
			}
		}
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dstPath), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		ls.logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		return "", fmt.Errorf("failed to save file content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to save file content: %w", err)
	}
	if err := os.Rename(tmp.Name(), dstPath); err != nil {
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	url := ls.baseURL + "/" + rel + ext
	ls.logger.Info().Str("public_id", publicID).Str("url", url).Msg("Photo saved")
	return url, nil
}
