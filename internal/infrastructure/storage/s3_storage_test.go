package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/roofpo/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:         true,
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		Bucket:          "po-invoices",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket", func(t *testing.T) {
		cfg := validStorageConfig()
		cfg.Bucket = ""
		_, err := NewS3ObjectStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing credentials", func(t *testing.T) {
		cfg := validStorageConfig()
		cfg.SecretAccessKey = ""
		_, err := NewS3ObjectStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret are required")
	})

	t.Run("valid config with defaults", func(t *testing.T) {
		cfg := validStorageConfig()
		cfg.Region = ""
		storage, err := NewS3ObjectStorage(cfg, WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, "po-invoices", storage.Bucket())
		assert.Equal(t, defaultPresignTTL, storage.presignTTL)
	})

	t.Run("endpoint without scheme", func(t *testing.T) {
		cfg := validStorageConfig()
		cfg.Endpoint = "minio.internal:9000"
		_, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
	})
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	cfg := validStorageConfig()
	cfg.PresignTTL = 5 * time.Minute
	storage, err := NewS3ObjectStorage(cfg)
	require.NoError(t, err)

	t.Run("presigns locally", func(t *testing.T) {
		link, expiresAt, err := storage.GenerateDownloadURL(context.Background(), "invoices/po-1/inv.pdf", 0)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(link, "http://localhost:9000/po-invoices/invoices/po-1/inv.pdf"))
		assert.Contains(t, link, "X-Amz-Signature")
		assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)
	})

	t.Run("empty key", func(t *testing.T) {
		_, _, err := storage.GenerateDownloadURL(context.Background(), "", time.Minute)
		assert.ErrorIs(t, err, errEmptyKey)
	})
}

func TestS3ObjectStorage_EmptyKeys(t *testing.T) {
	storage, err := NewS3ObjectStorage(validStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, storage.Upload(ctx, "", strings.NewReader("x"), 1, "text/plain"), errEmptyKey)
	assert.ErrorIs(t, storage.DeleteObject(ctx, ""), errEmptyKey)
}
