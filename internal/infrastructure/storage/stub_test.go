package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubObjectStorage_UploadAndDelete(t *testing.T) {
	storage := NewStubObjectStorage()
	ctx := context.Background()

	require.NoError(t, storage.Upload(ctx, "invoices/a.pdf", strings.NewReader("%PDF-1.4"), 8, "application/pdf"))

	data, ok := storage.Object("invoices/a.pdf")
	require.True(t, ok)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, storage.DeleteObject(ctx, "invoices/a.pdf"))
	_, ok = storage.Object("invoices/a.pdf")
	assert.False(t, ok)
}

func TestStubObjectStorage_GenerateDownloadURL(t *testing.T) {
	storage := NewStubObjectStorage()

	link, expiresAt, err := storage.GenerateDownloadURL(context.Background(), "invoices/a.pdf", time.Hour)

	require.NoError(t, err)
	assert.Contains(t, link, "invoices%2Fa.pdf")
	assert.True(t, expiresAt.After(time.Now().Add(59*time.Minute)))

	_, _, err = storage.GenerateDownloadURL(context.Background(), "", time.Hour)
	assert.ErrorIs(t, err, errEmptyKey)
}
