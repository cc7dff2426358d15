package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	procurementapp "github.com/roofpo/backend/internal/application/procurement"
)

var _ procurementapp.AttachmentStorage = (*StubObjectStorage)(nil)

// StubObjectStorage keeps objects in memory. It backs development setups
// without S3 and the service tests.
type StubObjectStorage struct {
	// BaseURL prefixes generated download URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "http://localhost:8080/storage",
		objects: make(map[string][]byte),
	}
}

// Upload keeps the object body in memory
func (s *StubObjectStorage) Upload(_ context.Context, storageKey string, body io.Reader, _ int64, _ string) error {
	if storageKey == "" {
		return errEmptyKey
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = data
	return nil
}

// GenerateDownloadURL builds a fake signed URL
func (s *StubObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignTTL
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/" + url.PathEscape(storageKey) + "?expires=" + expiresAt.UTC().Format(time.RFC3339), expiresAt, nil
}

// DeleteObject removes the object
func (s *StubObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	return nil
}

// Object returns a stored object body
func (s *StubObjectStorage) Object(storageKey string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[storageKey]
	return bytes.Clone(data), ok
}
