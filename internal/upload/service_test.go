package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"time"

	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/ocx/syncx/internal/auth"
	"github.com/ocx/syncx/internal/cache"
	"github.com/ocx/syncx/internal/docs"
	"github.com/ocx/syncx/internal/events"
	"github.com/ocx/syncx/internal/metrics"
	"github.com/ocx/syncx/internal/pathresolver"
	"github.com/ocx/syncx/internal/queue"
	"github.com/ocx/syncx/pb"
)

// fakeUploadStream is an in-process stand-in for pb.Syncx_UploadFilesServer.
type fakeUploadStream struct {
	grpc.ServerStream
	ctx    context.Context
	chunks []*pb.UploadChunk
	pos    int
	sent   *pb.UploadResponse
}

func (f *fakeUploadStream) Context() context.Context { return f.ctx }

func (f *fakeUploadStream) Recv() (*pb.UploadChunk, error) {
	if f.pos >= len(f.chunks) {
		return nil, io.EOF
	}
	c := f.chunks[f.pos]
	f.pos++
	return c, nil
}

func (f *fakeUploadStream) SendAndClose(resp *pb.UploadResponse) error {
	f.sent = resp
	return nil
}

func newTestService(t *testing.T) (*Service, *queue.Memory, docs.Docs) {
	t.Helper()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	store := docs.NewMemoryStore(cache.NewMemory())
	q := queue.NewMemory(4)
	svc := New(tokens, store, q, events.NewMemory(), metrics.New())
	return svc, q, store
}

func TestUploadFiles_HappyPath(t *testing.T) {
	ctx := context.Background()
	svc, q, store := newTestService(t)

	require.NoError(t, store.InsertClient(ctx, docs.ClientRecord{ID: "uid-1", PasswordHash: "h"}))
	token, err := svc.tokens.Issue("uid-1")
	require.NoError(t, err)

	t.Cleanup(func() {
		os.RemoveAll(pathresolver.LocalZipPath("uid-1"))
	})

	stream := &fakeUploadStream{
		ctx: context.Background(),
		chunks: []*pb.UploadChunk{
			{BearerToken: token, Content: []byte("hello ")},
			{Content: []byte("world")},
		},
	}

	require.NoError(t, svc.UploadFiles(stream))
	assert.Equal(t, "upload received", stream.sent.Message)

	data, err := os.ReadFile(pathresolver.LocalZipPath("uid-1"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	enqueued, err := q.BlockingPop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", enqueued)
}

func TestUploadFiles_RejectsBadToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	stream := &fakeUploadStream{
		ctx:    context.Background(),
		chunks: []*pb.UploadChunk{{BearerToken: "garbage", Content: []byte("x")}},
	}
	err := svc.UploadFiles(stream)
	require.Error(t, err)
}

func TestUploadFiles_EmptyStreamIsInvalid(t *testing.T) {
	svc, _, _ := newTestService(t)
	stream := &fakeUploadStream{ctx: context.Background(), chunks: nil}
	err := svc.UploadFiles(stream)
	require.Error(t, err)
}

func TestUploadFiles_RejectsChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	svc, q, store := newTestService(t)
	require.NoError(t, store.InsertClient(ctx, docs.ClientRecord{ID: "uid-2", PasswordHash: "h"}))
	token, err := svc.tokens.Issue("uid-2")
	require.NoError(t, err)

	t.Cleanup(func() {
		os.RemoveAll(pathresolver.LocalZipPath("uid-2"))
	})

	md := metadata.Pairs("checksum", hex.EncodeToString(sha256.New().Sum(nil))) // wrong on purpose
	streamCtx := metadata.NewIncomingContext(context.Background(), md)
	stream := &fakeUploadStream{
		ctx:    streamCtx,
		chunks: []*pb.UploadChunk{{BearerToken: token, Content: []byte("hello")}},
	}

	err = svc.UploadFiles(stream)
	require.Error(t, err)
	_, popErr := q.BlockingPop(withTimeout(ctx))
	assert.True(t, errors.Is(popErr, context.DeadlineExceeded))
}

func withTimeout(ctx context.Context) context.Context {
	c, _ := context.WithTimeout(ctx, 10*time.Millisecond)
	return c
}
