package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/landedcost/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubDocumentStorage_URLs(t *testing.T) {
	s := NewStubDocumentStorage("https://files.test")
	ctx := context.Background()

	up, upExp, err := s.GenerateUploadURL(ctx, "shipments/1/2/invoice.pdf", "application/pdf", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up, "https://files.test/upload/shipments/1/2/invoice.pdf?expires="))
	assert.WithinDuration(t, time.Now().Add(time.Minute), upExp, 5*time.Second)

	down, _, err := s.GenerateDownloadURL(ctx, "shipments/1/2/invoice.pdf", 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(down, "https://files.test/download/"))

	_, _, err = s.GenerateUploadURL(ctx, "", "", 0)
	assert.ErrorIs(t, err, errEmptyKey)
}

func TestStubDocumentStorage_DeleteThenExists(t *testing.T) {
	s := NewStubDocumentStorage("")
	ctx := context.Background()

	exists, err := s.ObjectExists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.DeleteObject(ctx, "k"))

	exists, err = s.ObjectExists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNew_SelectsImplementation(t *testing.T) {
	ctx := context.Background()

	stub, err := New(ctx, config.StorageConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &StubDocumentStorage{}, stub)

	s3Storage, err := New(ctx, testStorageConfig(), nil)
	require.NoError(t, err)
	assert.IsType(t, &S3DocumentStorage{}, s3Storage)

	_, err = New(ctx, config.StorageConfig{Bucket: "b", AccessKeyID: "only-key"}, nil)
	assert.Error(t, err)
}
