// Package storage persists avatar blobs behind a backend-neutral
// interface with local-disk and S3 implementations.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowedImageTypes is the content-type allow-list enforced before any
// upload reaches a backend.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ErrNotFound is returned when a blob does not exist.
var ErrNotFound = errors.New("storage: blob not found")

// Store is the blob storage contract used for avatars.
type Store interface {
	// Put stores data under a generated name and returns the blob key.
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	// Get returns the blob data and its content type.
	Get(ctx context.Context, blobName string) ([]byte, string, error)
	// Delete removes a blob; deleting a missing blob is not an error.
	Delete(ctx context.Context, blobName string) error
}

// ValidateImage checks the content type against the allow-list and the
// payload against the size cap. Returns the file extension to use.
func ValidateImage(data []byte, contentType string, maxBytes int64) (string, error) {
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("invalid image type: %s (allowed: JPEG, PNG, GIF, WebP)", contentType)
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("image too large (maximum %d MB)", maxBytes/(1024*1024))
	}
	return ext, nil
}

func blobName(ext string) string {
	return "avatars/" + uuid.New().String() + ext
}

// LocalStore keeps blobs on the local filesystem under a base directory.
type LocalStore struct {
	basePath string
	maxBytes int64
}

// NewLocalStore creates the base directory if needed.
func NewLocalStore(basePath string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(basePath, "avatars"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{basePath: basePath, maxBytes: maxBytes}, nil
}

// Put validates and writes the image, returning its blob key.
func (s *LocalStore) Put(_ context.Context, data []byte, contentType string) (string, error) {
	ext, err := ValidateImage(data, contentType, s.maxBytes)
	if err != nil {
		return "", err
	}

	name := blobName(ext)
	path := filepath.Join(s.basePath, filepath.FromSlash(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	return name, nil
}

// Get reads a blob back together with a content type derived from its
// extension.
func (s *LocalStore) Get(_ context.Context, name string) ([]byte, string, error) {
	if !validBlobName(name) {
		return nil, "", ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.basePath, filepath.FromSlash(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to read blob: %w", err)
	}
	return data, contentTypeFor(name), nil
}

// Delete removes a blob; a missing blob is a no-op.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	if !validBlobName(name) {
		return nil
	}
	err := os.Remove(filepath.Join(s.basePath, filepath.FromSlash(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// validBlobName rejects anything outside the avatars/ namespace,
// including path traversal attempts.
func validBlobName(name string) bool {
	if !strings.HasPrefix(name, "avatars/") || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(strings.TrimPrefix(name, "avatars/"), "/\\")
}

func contentTypeFor(name string) string {
	for ct, ext := range allowedImageTypes {
		if strings.HasSuffix(name, ext) {
			return ct
		}
	}
	return "image/jpeg"
}
