package download

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/ocx/syncx/internal/auth"
	"github.com/ocx/syncx/internal/blobstore"
	"github.com/ocx/syncx/internal/cache"
	"github.com/ocx/syncx/internal/merkle"
	"github.com/ocx/syncx/internal/metrics"
	"github.com/ocx/syncx/internal/pathresolver"
	"github.com/ocx/syncx/pb"
)

type fakeDownloadStream struct {
	grpc.ServerStream
	ctx  context.Context
	sent []*pb.DownloadChunk
}

func (f *fakeDownloadStream) Context() context.Context { return f.ctx }

func (f *fakeDownloadStream) Send(chunk *pb.DownloadChunk) error {
	f.sent = append(f.sent, chunk)
	return nil
}

func seedUpload(t *testing.T, ch cache.Cache, blobs blobstore.BlobStore, uid string, files map[string]string) {
	t.Helper()
	ctx := context.Background()

	leaves := make([][]byte, 0, len(files))
	for _, body := range files {
		leaves = append(leaves, []byte(body))
	}
	tree, err := merkle.New(leaves)
	require.NoError(t, err)
	serialized, err := merkle.Serialize(tree)
	require.NoError(t, err)

	const attempt = 1
	require.NoError(t, ch.Set(ctx, pathresolver.AttemptKey(uid), "1", 0))
	require.NoError(t, blobs.Put(ctx, pathresolver.RemoteTreeObject(uid, attempt), serialized))
	for name, body := range files {
		require.NoError(t, blobs.Put(ctx, pathresolver.RemoteMemberObject(uid, attempt, name), []byte(body)))
		require.NoError(t, ch.Set(ctx, pathresolver.ExistenceKey(uid, name), "true", 0))
	}
}

func TestDownloadFile_HappyPath(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	ch := cache.NewMemory()
	blobs := blobstore.NewMemory()
	svc := New(tokens, ch, blobs, metrics.New())

	seedUpload(t, ch, blobs, "uid-1", map[string]string{"x.txt": "hello", "y.txt": "world"})

	token, err := tokens.Issue("uid-1")
	require.NoError(t, err)

	stream := &fakeDownloadStream{ctx: context.Background()}
	err = svc.DownloadFile(&pb.DownloadRequest{BearerToken: token, FileName: "x.txt"}, stream)
	require.NoError(t, err)
	require.Len(t, stream.sent, 1)
	assert.Equal(t, []byte("hello"), stream.sent[0].Content)
	require.NotNil(t, stream.sent[0].MerkleProof)
	assert.NotEmpty(t, stream.sent[0].MerkleProof.Nodes)
}

func TestDownloadFile_MissingFileIsNotFound(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	ch := cache.NewMemory()
	blobs := blobstore.NewMemory()
	svc := New(tokens, ch, blobs, metrics.New())

	seedUpload(t, ch, blobs, "uid-2", map[string]string{"x.txt": "hello"})
	token, err := tokens.Issue("uid-2")
	require.NoError(t, err)

	stream := &fakeDownloadStream{ctx: context.Background()}
	err = svc.DownloadFile(&pb.DownloadRequest{BearerToken: token, FileName: "missing.txt"}, stream)
	require.Error(t, err)
}

func TestDownloadFile_RejectsBadToken(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	svc := New(tokens, cache.NewMemory(), blobstore.NewMemory(), metrics.New())

	stream := &fakeDownloadStream{ctx: context.Background()}
	err := svc.DownloadFile(&pb.DownloadRequest{BearerToken: "garbage", FileName: "x.txt"}, stream)
	require.Error(t, err)
}
