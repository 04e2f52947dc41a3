package worker

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocx/syncx/internal/archive"
	"github.com/ocx/syncx/internal/blobstore"
	"github.com/ocx/syncx/internal/cache"
	"github.com/ocx/syncx/internal/pathresolver"
)

func writeFixtureFiles(t *testing.T, dir string, contents map[string]string) []string {
	t.Helper()
	var paths []string
	for name, body := range contents {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		paths = append(paths, p)
	}
	return paths
}

func TestRunJob_HappyPath(t *testing.T) {
	ctx := context.Background()
	id := "job-" + uuid.NewString()
	t.Cleanup(func() {
		os.RemoveAll(pathresolver.LocalZipPath(id))
		os.RemoveAll(pathresolver.WipUploadDir(id))
		os.RemoveAll(pathresolver.LocalMerkleTreePath(id))
	})

	srcDir := t.TempDir()
	filePaths := writeFixtureFiles(t, srcDir, map[string]string{
		"x.txt": "hello",
		"y.txt": "world",
	})

	zipPath := pathresolver.LocalZipPath(id)
	require.NoError(t, os.MkdirAll(filepath.Dir(zipPath), 0o755))
	zipFile, err := os.Create(zipPath)
	require.NoError(t, err)
	require.NoError(t, archive.Pack(zipFile, filePaths))
	require.NoError(t, zipFile.Close())

	blobs := blobstore.NewMemory()
	ch := cache.NewMemory()

	attempt, state, err := RunJob(ctx, id, blobs, ch)
	require.NoError(t, err)
	assert.Equal(t, StateDone, state)
	assert.Equal(t, 1, attempt)

	for _, name := range []string{"x.txt", "y.txt"} {
		exists, ok, err := ch.Get(ctx, pathresolver.ExistenceKey(id, name))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "true", exists)

		data, err := blobs.Get(ctx, pathresolver.RemoteMemberObject(id, attempt, name))
		require.NoError(t, err)
		assert.True(t, bytes.Equal(data, []byte(map[string]string{"x.txt": "hello", "y.txt": "world"}[name])))
	}

	_, err = blobs.Get(ctx, pathresolver.RemoteTreeObject(id, attempt))
	require.NoError(t, err)
}

func TestRunJob_FetchesZipFromBlobStoreWhenAbsentLocally(t *testing.T) {
	ctx := context.Background()
	id := "job-" + uuid.NewString()
	t.Cleanup(func() {
		os.RemoveAll(pathresolver.LocalZipPath(id))
		os.RemoveAll(pathresolver.WipUploadDir(id))
		os.RemoveAll(pathresolver.LocalMerkleTreePath(id))
	})

	srcDir := t.TempDir()
	filePaths := writeFixtureFiles(t, srcDir, map[string]string{"only.txt": "content"})

	var buf bytes.Buffer
	require.NoError(t, archive.Pack(&buf, filePaths))

	blobs := blobstore.NewMemory()
	require.NoError(t, blobs.Put(ctx, pathresolver.RemoteZipObject(id), buf.Bytes()))

	ch := cache.NewMemory()
	attempt, state, err := RunJob(ctx, id, blobs, ch)
	require.NoError(t, err)
	assert.Equal(t, StateDone, state)

	data, err := blobs.Get(ctx, pathresolver.RemoteMemberObject(id, attempt, "only.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), data)
}

func TestNextAttempt_Increments(t *testing.T) {
	ctx := context.Background()
	ch := cache.NewMemory()
	id := "attempt-test"

	first, err := nextAttempt(ctx, ch, id)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := nextAttempt(ctx, ch, id)
	require.NoError(t, err)
	assert.Equal(t, 2, second)

	current, ok, err := CurrentAttempt(ctx, ch, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, current)
}
