package gcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/yungbote/articlegen-backend/internal/articlepipeline"
)

// JobStorage persists article pipeline artifacts under a single bucket,
// one prefix per job. It satisfies articlepipeline.Storage.
type JobStorage struct {
	client    *storage.Client
	bucket    string
	cdnDomain string
}

var _ articlepipeline.Storage = (*JobStorage)(nil)

// NewJobStorage dials GCS (or the configured emulator) according to
// ResolveObjectStorageConfigFromEnv, targeting bucketName.
func NewJobStorage(ctx context.Context, bucketName string) (*JobStorage, error) {
	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		return nil, err
	}

	opts := ClientOptionsFromEnv()
	if cfg.IsEmulatorMode() {
		if err := os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost); err != nil {
			return nil, fmt.Errorf("set STORAGE_EMULATOR_HOST: %w", err)
		}
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("new storage client: %w", err)
	}

	return &JobStorage{
		client:    client,
		bucket:    bucketName,
		cdnDomain: strings.TrimSpace(os.Getenv("STORAGE_CDN_DOMAIN")),
	}, nil
}

// Put writes data under <jobID>/<key> and returns its durable location: a
// CDN URL if STORAGE_CDN_DOMAIN is configured, else a gs:// URI.
func (s *JobStorage) Put(ctx context.Context, jobID, key string, data []byte, contentType string) (string, error) {
	objectName := jobID + "/" + key
	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object %s: %w", objectName, err)
	}

	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, objectName), nil
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName), nil
}

// Get is a convenience reader for what Put wrote; nothing in this module
// calls it.
func (s *JobStorage) Get(ctx context.Context, jobID, key string) (io.ReadCloser, error) {
	objectName := jobID + "/" + key
	return s.client.Bucket(s.bucket).Object(objectName).NewReader(ctx)
}
