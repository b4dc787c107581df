package storage

import "context"

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the operations the pipeline needs for report
// artifacts: upload a local file, pull one back, list and prune.
type ObjectStorage interface {
	UploadFile(ctx context.Context, key string, filePath string, contentType string) error
	DownloadFile(ctx context.Context, key string, destPath string) error
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DeleteObject(ctx context.Context, key string) error
}
