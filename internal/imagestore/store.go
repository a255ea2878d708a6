// Package imagestore persists product and profile images outside their
// database rows, either on the local file system or in an S3 bucket.
package imagestore

import (
	"bytes"
	"context"
	"errors"
)

// ErrNotFound is returned when no image is stored under the requested key.
var ErrNotFound = errors.New("image not found")

// Store abstracts where images live.
type Store interface {
	// Put stores the image bytes under the given key, replacing any
	// previous image.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves the image bytes stored under the key. Returns
	// ErrNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the image stored under the key. Deleting an absent
	// image is not an error.
	Delete(ctx context.Context, key string) error
}

var (
	jpegMagic = []byte{0xff, 0xd8}
	pngMagic  = []byte{0x89, 0x50, 0x4e, 0x47}
	gifMagic  = []byte("GIF8")
)

// SniffMIME detects the image content type from its leading bytes.
func SniffMIME(data []byte) string {
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return "image/jpeg"
	case bytes.HasPrefix(data, pngMagic):
		return "image/png"
	case bytes.HasPrefix(data, gifMagic):
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
