// Package gcs archives imported workbooks in Google Cloud Storage so a
// sync can be reproduced later from the exact source file.
package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const workbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Archive provides workbook upload and fetch operations. The interface
// exists so handlers and the CLI can be tested without a bucket.
type Archive interface {
	UploadWorkbook(ctx context.Context, bucket, objectName string, data []byte) (string, error)
	Fetch(ctx context.Context, gsURI string) ([]byte, error)
}

// Client implements Archive against real GCS. It assumes Application
// Default Credentials are configured.
type Client struct{}

// ObjectName builds a date-partitioned object name for an uploaded
// workbook, keeping the original filename recognizable.
func ObjectName(filename string) string {
	return fmt.Sprintf("workbooks/%s/%s-%s",
		time.Now().UTC().Format("2006/01/02"), uuid.NewString()[:8], filepath.Base(filename))
}

// UploadWorkbook writes workbook bytes to the bucket and returns the
// resulting gs:// URI.
func (Client) UploadWorkbook(ctx context.Context, bucket, objectName string, data []byte) (string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("UploadWorkbook: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = workbookContentType
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("UploadWorkbook: copy to writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("UploadWorkbook: finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", bucket, objectName), nil
}

// UploadWorkbookFile uploads a workbook from the local filesystem.
func (c Client) UploadWorkbookFile(ctx context.Context, bucket, objectName, filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("UploadWorkbookFile: read %q: %w", filePath, err)
	}
	return c.UploadWorkbook(ctx, bucket, objectName, data)
}

// Fetch downloads workbook bytes from a gs:// URI.
func (Client) Fetch(ctx context.Context, gsURI string) ([]byte, error) {
	bucket, object, err := splitURI(gsURI)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: create storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: open %s: %w", gsURI, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: read %s: %w", gsURI, err)
	}
	return data, nil
}

func splitURI(gsURI string) (bucket, object string, err error) {
	if !strings.HasPrefix(gsURI, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", gsURI)
	}
	trimmed := strings.TrimPrefix(gsURI, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", gsURI)
	}
	return parts[0], parts[1], nil
}
