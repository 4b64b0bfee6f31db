package report

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/dvloznov/cfo-copilot/internal/gcs"
)

// Publisher stores a rendered report and returns where it went.
type Publisher interface {
	Publish(ctx context.Context, r *Report, doc Document) (string, error)
}

// ObjectName is the storage path of a report:
// reports/<month>/cfo_report_<YYYYMMDD_HHMMSS>.<ext>.
func ObjectName(month string, generatedAt time.Time, format Format) string {
	return path.Join("reports", month, fmt.Sprintf("cfo_report_%s.%s", generatedAt.UTC().Format("20060102_150405"), format.Extension()))
}

// FilePublisher writes reports under Dir.
type FilePublisher struct {
	Dir string
}

// Publish writes the document to Dir/ObjectName and returns the file path.
func (p *FilePublisher) Publish(ctx context.Context, r *Report, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(p.Dir, filepath.FromSlash(ObjectName(r.Month, r.GeneratedAt, doc.Format)))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("FilePublisher.Publish: creating directory: %w", err)
	}
	if err := os.WriteFile(dst, doc.Data, 0o644); err != nil {
		return "", fmt.Errorf("FilePublisher.Publish: writing %s: %w", dst, err)
	}
	return dst, nil
}

// GCSPublisher uploads reports to a bucket.
type GCSPublisher struct {
	Bucket  string
	Storage gcs.StorageService
}

// Publish uploads the document and returns its gs:// URI.
func (p *GCSPublisher) Publish(ctx context.Context, r *Report, doc Document) (string, error) {
	object := ObjectName(r.Month, r.GeneratedAt, doc.Format)
	uri, err := p.Storage.UploadBytes(ctx, p.Bucket, object, doc.Format.ContentType(), doc.Data)
	if err != nil {
		return "", fmt.Errorf("GCSPublisher.Publish: %w", err)
	}
	return uri, nil
}
