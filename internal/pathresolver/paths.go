// Package pathresolver gives every other component the same, deterministic
// naming for local scratch files and remote blob-store objects, so nothing
// has to re-derive a path convention inline (§3 StoredObject, §6 Local file
// system layout).
package pathresolver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
)

const tempRoot = "temp"

// LocalZipPath is where an uploaded archive lands before it is enqueued:
// temp/zips/<id>.zip.
func LocalZipPath(id string) string {
	return filepath.Join(tempRoot, "zips", id+".zip")
}

// WipUploadDir is the worker's per-job unpack scratch directory:
// temp/wip_uploads/<id>/.
func WipUploadDir(id string) string {
	return filepath.Join(tempRoot, "wip_uploads", id)
}

// WipDownloadDir is the download service's per-request scratch directory:
// temp/wip_downloads/<id>/.
func WipDownloadDir(id string) string {
	return filepath.Join(tempRoot, "wip_downloads", id)
}

// LocalMerkleTreePath is where the worker writes the serialized tree before
// uploading it: temp/merkle_trees/<id>_mtree.txt.
func LocalMerkleTreePath(id string) string {
	return filepath.Join(tempRoot, "merkle_trees", id+"_mtree.txt")
}

// RemoteZipObject is the blob-store name for the raw uploaded archive:
// zips/<id>.zip.
func RemoteZipObject(id string) string {
	return fmt.Sprintf("zips/%s.zip", id)
}

// RemoteMemberObject is the blob-store name for one unpacked member,
// namespaced by upload attempt so a re-upload cannot silently clobber the
// proofs a client already verified against (SPEC_FULL.md §6):
// backup/<id>/<attempt>/<file_name>.
func RemoteMemberObject(id string, attempt int, fileName string) string {
	return fmt.Sprintf("backup/%s/%d/%s", id, attempt, fileName)
}

// RemoteTreeObject is the blob-store name for the serialized tree of a given
// upload attempt: backup/<id>/<attempt>/<id>_mtree.txt. It is deliberately
// not indexed under its own visible name — only derived access is allowed.
func RemoteTreeObject(id string, attempt int) string {
	return fmt.Sprintf("backup/%s/%d/%s_mtree.txt", id, attempt, id)
}

// ExistenceKey is the cache key whose presence attests that a member is
// materialized in the blob store: SHA256(id || file_name).
func ExistenceKey(id, fileName string) string {
	h := sha256.Sum256([]byte(id + fileName))
	return hex.EncodeToString(h[:])
}

// AttemptKey is the cache key holding the current upload attempt number
// for id. The worker allocates a new attempt at dequeue time and the
// download path reads it to resolve which attempt's blobs are current
// (SPEC_FULL.md re-upload-ordering resolution).
func AttemptKey(id string) string {
	return "attempt:" + id
}
