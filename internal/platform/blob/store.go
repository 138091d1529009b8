// Package blob stores binary artifacts (payment proof screenshots, receipts)
// and returns stable URLs for them.
package blob

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/qudmeet/exchange-service/internal/config"
)

// Store persists an artifact and returns the URL it is served from
type Store interface {
	Put(ctx context.Context, filename string, contentType string, data []byte) (string, error)
}

// FileStore writes artifacts to a local directory served by the HTTP layer
type FileStore struct {
	baseDir string
	baseURL string
	logger  *slog.Logger
}

func NewFileStore(logger *slog.Logger, cfg *config.BlobConfig) (*FileStore, error) {
	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory %s: %w", cfg.BaseDir, err)
	}

	return &FileStore{
		baseDir: cfg.BaseDir,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger,
	}, nil
}

// Put writes the artifact and returns its public URL. The filename is
// flattened to its base so callers cannot escape the blob directory.
func (s *FileStore) Put(_ context.Context, filename string, _ string, data []byte) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid blob filename: %q", filename)
	}

	path := filepath.Join(s.baseDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error("Failed to write blob", "filename", name, "error", err)
		return "", fmt.Errorf("failed to write blob %s: %w", name, err)
	}

	url := s.baseURL + "/" + name
	s.logger.Debug("Stored blob", "filename", name, "url", url, "size", len(data))
	return url, nil
}
