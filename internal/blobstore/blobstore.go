// Package blobstore is the content-addressed object store backing the
// worker's member/tree uploads and the download path's fetches (C4).
package blobstore

import "context"

// BlobStore is the capability boundary; names are forward-slash paths
// (e.g. "zips/<id>.zip", "backup/<id>/<attempt>/<file>").
type BlobStore interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
}
