package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores archived bracket documents in an object store.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	// GetPublicURL returns "" when no public base URL is configured.
	GetPublicURL(key string) string
}

// ResultKey is the object key of a tournament run's archive document.
func ResultKey(tenantID, runID string) string {
	return "results/" + tenantID + "/" + runID + ".json"
}
