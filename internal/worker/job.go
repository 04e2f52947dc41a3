package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ocx/syncx/internal/apperr"
	"github.com/ocx/syncx/internal/archive"
	"github.com/ocx/syncx/internal/blobstore"
	"github.com/ocx/syncx/internal/cache"
	"github.com/ocx/syncx/internal/merkle"
	"github.com/ocx/syncx/internal/pathresolver"
)

// RunJob executes the full state machine for one dequeued id and returns
// the attempt number it materialized, or an error at the step it failed.
// Exported so callers outside the package, such as the client integration
// test, can drive a single job synchronously instead of going through the
// queue-fed Pool.
func RunJob(ctx context.Context, id string, blobs blobstore.BlobStore, ch cache.Cache) (int, State, error) {
	attempt, err := nextAttempt(ctx, ch, id)
	if err != nil {
		return 0, StateDequeued, err
	}

	zipPath := pathresolver.LocalZipPath(id)
	if err := ensureLocalZip(ctx, zipPath, id, blobs); err != nil {
		return attempt, StateLocalZipReady, err
	}

	wipDir := pathresolver.WipUploadDir(id)
	members, err := archive.UnpackFile(zipPath, wipDir)
	if err != nil {
		return attempt, StateUnpacked, fmt.Errorf("%w: unpack %s: %v", apperr.Internal, id, err)
	}

	blobsByMember := make(map[string][]byte, len(members))
	leaves := make([][]byte, 0, len(members))
	for _, name := range members {
		data, err := os.ReadFile(filepath.Join(wipDir, name))
		if err != nil {
			return attempt, StateUnpacked, fmt.Errorf("%w: read member %s: %v", apperr.Internal, name, err)
		}
		blobsByMember[name] = data
		leaves = append(leaves, data)
	}

	tree, err := merkle.New(leaves)
	if err != nil {
		return attempt, StateTreeBuilt, fmt.Errorf("%w: build tree for %s: %v", apperr.Internal, id, err)
	}

	serialized, err := merkle.Serialize(tree)
	if err != nil {
		return attempt, StateTreePersisted, fmt.Errorf("%w: serialize tree for %s: %v", apperr.Internal, id, err)
	}
	treePath := pathresolver.LocalMerkleTreePath(id)
	if err := os.MkdirAll(filepath.Dir(treePath), 0o755); err != nil {
		return attempt, StateTreePersisted, fmt.Errorf("%w: mkdir for tree %s: %v", apperr.Internal, id, err)
	}
	if err := os.WriteFile(treePath, serialized, 0o644); err != nil {
		return attempt, StateTreePersisted, fmt.Errorf("%w: write tree %s: %v", apperr.Internal, id, err)
	}

	for name, data := range blobsByMember {
		object := pathresolver.RemoteMemberObject(id, attempt, name)
		if err := blobs.Put(ctx, object, data); err != nil {
			return attempt, StateMembersUploaded, fmt.Errorf("%w: upload member %s: %v", apperr.Internal, name, err)
		}
		if err := ch.Set(ctx, pathresolver.ExistenceKey(id, name), "true", 0); err != nil {
			return attempt, StateMembersUploaded, fmt.Errorf("%w: index member %s: %v", apperr.Internal, name, err)
		}
	}

	treeObject := pathresolver.RemoteTreeObject(id, attempt)
	if err := blobs.Put(ctx, treeObject, serialized); err != nil {
		return attempt, StateIndexed, fmt.Errorf("%w: upload tree %s: %v", apperr.Internal, id, err)
	}

	return attempt, StateDone, nil
}

// ensureLocalZip implements the C11 bandwidth optimization (§4.5): if the
// archive already landed on this host from the upload RPC, skip the
// round-trip to the blob store.
func ensureLocalZip(ctx context.Context, zipPath, id string, blobs blobstore.BlobStore) error {
	if _, err := os.Stat(zipPath); err == nil {
		return nil
	}

	data, err := blobs.Get(ctx, pathresolver.RemoteZipObject(id))
	if err != nil {
		return fmt.Errorf("%w: fetch zip for %s: %v", apperr.Internal, id, err)
	}
	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		return fmt.Errorf("%w: mkdir for zip %s: %v", apperr.Internal, id, err)
	}
	return os.WriteFile(zipPath, data, 0o644)
}

// nextAttempt allocates the attempt number this job run will materialize
// under, by reading and incrementing the counter cache key (SPEC_FULL.md
// re-upload-ordering resolution). Non-atomic: acceptable given the base
// spec's explicit no-cross-upload-ordering guarantee (§5).
func nextAttempt(ctx context.Context, ch cache.Cache, id string) (int, error) {
	key := pathresolver.AttemptKey(id)
	current := 0
	if raw, ok, err := ch.Get(ctx, key); err != nil {
		return 0, fmt.Errorf("%w: read attempt counter for %s: %v", apperr.Internal, id, err)
	} else if ok {
		if n, err := strconv.Atoi(raw); err == nil {
			current = n
		}
	}
	next := current + 1
	if err := ch.Set(ctx, key, strconv.Itoa(next), 0); err != nil {
		return 0, fmt.Errorf("%w: write attempt counter for %s: %v", apperr.Internal, id, err)
	}
	return next, nil
}

// CurrentAttempt returns the most recently allocated attempt number for
// id, used by the download path to resolve which attempt's blobs to read.
func CurrentAttempt(ctx context.Context, ch cache.Cache, id string) (int, bool, error) {
	raw, ok, err := ch.Get(ctx, pathresolver.AttemptKey(id))
	if err != nil || !ok {
		return 0, ok, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%w: malformed attempt counter for %s", apperr.Internal, id)
	}
	return n, true, nil
}
