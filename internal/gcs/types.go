package gcs

import (
	"context"
)

// StorageService is the Cloud Storage surface used by the loader, the report
// publisher and the upload command.
type StorageService interface {
	// UploadFile copies a local file to bucketName/objectName.
	UploadFile(ctx context.Context, bucketName, objectName, filePath string) error

	// UploadBytes writes data to bucketName/objectName and returns its gs:// URI.
	UploadBytes(ctx context.Context, bucketName, objectName, contentType string, data []byte) (string, error)

	// FetchFromGCS reads the whole object named by a gs:// URI.
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)

	// ExtractFilenameFromGCSURI returns the last path segment of a gs:// URI.
	ExtractFilenameFromGCSURI(uri string) string
}
