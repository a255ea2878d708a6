package imagestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// fileStore implements Store on the local file system.
type fileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates a file-system image store rooted at dir.
func NewFileStore(dir string, logger zerolog.Logger) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory %s: %w", dir, err)
	}

	return &fileStore{
		dir:    dir,
		logger: logger.With().Str("component", "file-image-store").Logger(),
	}, nil
}

func (s *fileStore) path(key string) string {
	return filepath.Join(s.dir, filepath.Base(key))
}

// Put stores the image bytes under the given key.
func (s *fileStore) Put(ctx context.Context, key string, data []byte) error {
	path := s.path(key)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to write image file")
		return fmt.Errorf("failed to write image file %s: %w", path, err)
	}

	s.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("image file written")

	return nil
}

// Get retrieves the image bytes stored under the key.
func (s *fileStore) Get(ctx context.Context, key string) ([]byte, error) {
	path := s.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		s.logger.Error().Err(err).Str("path", path).Msg("failed to read image file")
		return nil, fmt.Errorf("failed to read image file %s: %w", path, err)
	}

	return data, nil
}

// Delete removes the image stored under the key.
func (s *fileStore) Delete(ctx context.Context, key string) error {
	path := s.path(key)

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		s.logger.Error().Err(err).Str("path", path).Msg("failed to delete image file")
		return fmt.Errorf("failed to delete image file %s: %w", path, err)
	}

	return nil
}
