package procurement

import (
	"context"
	"io"
	"time"
)

// AttachmentStorage stores invoice documents in object storage
type AttachmentStorage interface {
	Upload(ctx context.Context, storageKey string, body io.Reader, size int64, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
}

// AttachmentUpload is an invoice document received with the request
type AttachmentUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}
