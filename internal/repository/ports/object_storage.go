package ports

import (
	"context"
	"io"
	"time"
)

type ObjectStorage interface {
	Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error)
	PresignGet(ctx context.Context, bucket, objectName string, expiry time.Duration) (string, error)
}
