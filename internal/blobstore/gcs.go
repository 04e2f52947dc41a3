package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/ocx/syncx/internal/apperr"
)

// GCS is the Google Cloud Storage-backed BlobStore.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS dials GCS using credentialsJSON (the contents of a service
// account key, per GOOGLE_APPLICATION_CREDENTIALS_JSON) and apiKey
// (GOOGLE_STORAGE_API_KEY); each is passed to the storage client as a
// client option when it is non-empty.
func NewGCS(ctx context.Context, bucket string, credentialsJSON []byte, apiKey string) (*GCS, error) {
	opts := []option.ClientOption{}
	if len(credentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("blobstore: gcs client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

func (g *GCS) Get(ctx context.Context, name string) ([]byte, error) {
	r, err := g.client.Bucket(g.bucket).Object(name).NewReader(ctx)
	switch {
	case errors.Is(err, storage.ErrObjectNotExist):
		return nil, fmt.Errorf("%w: blob %s", apperr.NotFound, name)
	case err != nil:
		return nil, fmt.Errorf("%w: blobstore get %s: %v", apperr.Internal, name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: blobstore read %s: %v", apperr.Internal, name, err)
	}
	return data, nil
}

func (g *GCS) Put(ctx context.Context, name string, data []byte) error {
	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("%w: blobstore write %s: %v", apperr.Internal, name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: blobstore close %s: %v", apperr.Internal, name, err)
	}
	return nil
}

func (g *GCS) Close() error { return g.client.Close() }
