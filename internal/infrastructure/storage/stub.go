package storage

import (
	"context"
	"net/url"
	"sync"
	"time"

	appimport "github.com/landedcost/backend/internal/application/importation"
)

// StubDocumentStorage hands out fake URLs and remembers deletions.
// It is selected when no bucket is configured.
type StubDocumentStorage struct {
	BaseURL string

	mu      sync.Mutex
	deleted map[string]bool
}

// NewStubDocumentStorage creates a stub rooted at baseURL
func NewStubDocumentStorage(baseURL string) *StubDocumentStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8080/stub-storage"
	}
	return &StubDocumentStorage{
		BaseURL: baseURL,
		deleted: make(map[string]bool),
	}
}

// GenerateUploadURL returns a fake upload URL
func (s *StubDocumentStorage) GenerateUploadURL(_ context.Context, storageKey, _ string, expiresIn time.Duration) (string, time.Time, error) {
	return s.url("upload", storageKey, expiresIn)
}

// GenerateDownloadURL returns a fake download URL
func (s *StubDocumentStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	return s.url("download", storageKey, expiresIn)
}

// DeleteObject records the deletion
func (s *StubDocumentStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted[storageKey] = true
	return nil
}

// ObjectExists is true for every key not deleted through this stub
func (s *StubDocumentStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.deleted[storageKey], nil
}

func (s *StubDocumentStorage) url(action, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignExpiry
	}
	expiresAt := time.Now().Add(expiresIn).UTC()
	q := url.Values{"expires": {expiresAt.Format(time.RFC3339)}}
	return s.BaseURL + "/" + action + "/" + storageKey + "?" + q.Encode(), expiresAt, nil
}

var _ appimport.DocumentStorage = (*StubDocumentStorage)(nil)
