package client

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/ocx/syncx/internal/auth"
	"github.com/ocx/syncx/internal/blobstore"
	"github.com/ocx/syncx/internal/cache"
	"github.com/ocx/syncx/internal/docs"
	"github.com/ocx/syncx/internal/download"
	"github.com/ocx/syncx/internal/events"
	"github.com/ocx/syncx/internal/metrics"
	"github.com/ocx/syncx/internal/pathresolver"
	"github.com/ocx/syncx/internal/queue"
	"github.com/ocx/syncx/internal/upload"
	"github.com/ocx/syncx/internal/worker"
	"github.com/ocx/syncx/pb"
)

// inProcessUploadStream bridges the client core's Syncx_UploadFilesClient
// calls directly to a running upload.Service, without a real network
// connection — it buffers Send()s and replays them through the same
// server-side stream contract the real RPC uses.
type inProcessUploadStream struct {
	grpc.ClientStream
	grpc.ServerStream
	ctx    context.Context
	svc    *upload.Service
	chunks []*pb.UploadChunk
	pos    int
	resp   *pb.UploadResponse
}

func (s *inProcessUploadStream) Context() context.Context { return s.ctx }

func (s *inProcessUploadStream) Send(c *pb.UploadChunk) error {
	s.chunks = append(s.chunks, c)
	return nil
}

func (s *inProcessUploadStream) Recv() (*pb.UploadChunk, error) {
	if s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	c := s.chunks[s.pos]
	s.pos++
	return c, nil
}

func (s *inProcessUploadStream) SendAndClose(resp *pb.UploadResponse) error {
	s.resp = resp
	return nil
}

func (s *inProcessUploadStream) CloseAndRecv() (*pb.UploadResponse, error) {
	if err := s.svc.UploadFiles(s); err != nil {
		return nil, err
	}
	return s.resp, nil
}

type inProcessDownloadStream struct {
	grpc.ClientStream
	grpc.ServerStream
	ctx  context.Context
	sent []*pb.DownloadChunk
	pos  int
}

func (s *inProcessDownloadStream) Context() context.Context { return s.ctx }

func (s *inProcessDownloadStream) Send(c *pb.DownloadChunk) error {
	s.sent = append(s.sent, c)
	return nil
}

func (s *inProcessDownloadStream) Recv() (*pb.DownloadChunk, error) {
	if s.pos >= len(s.sent) {
		return nil, io.EOF
	}
	c := s.sent[s.pos]
	s.pos++
	return c, nil
}

// fakeRPC bridges pb.SyncxClient directly onto running service instances.
type fakeRPC struct {
	uploadSvc   *upload.Service
	downloadSvc *download.Service
}

func (f *fakeRPC) RegisterClient(ctx context.Context, req *pb.RegisterClientRequest, _ ...grpc.CallOption) (*pb.RegisterClientResponse, error) {
	return f.uploadSvc.RegisterClient(ctx, req)
}

func (f *fakeRPC) UploadFiles(ctx context.Context, _ ...grpc.CallOption) (pb.Syncx_UploadFilesClient, error) {
	// A real transport carries outgoing request metadata to the server as
	// incoming metadata; reproduce that handoff for this in-process bridge.
	if md, ok := metadata.FromOutgoingContext(ctx); ok {
		ctx = metadata.NewIncomingContext(ctx, md)
	}
	return &inProcessUploadStream{ctx: ctx, svc: f.uploadSvc}, nil
}

func (f *fakeRPC) DownloadFile(ctx context.Context, req *pb.DownloadRequest, _ ...grpc.CallOption) (pb.Syncx_DownloadFileClient, error) {
	stream := &inProcessDownloadStream{ctx: ctx}
	if err := f.downloadSvc.DownloadFile(req, stream); err != nil {
		return nil, err
	}
	return stream, nil
}

// TestUploadDownloadRoundTrip exercises Scenario C end-to-end: register,
// upload a directory of two files, download one of them, and confirm the
// recomputed root matches the root the client stored after upload.
func TestUploadDownloadRoundTrip(t *testing.T) {
	origConfigDir := os.Getenv("XDG_CONFIG_HOME")
	configDir := t.TempDir()
	require.NoError(t, os.Setenv("XDG_CONFIG_HOME", configDir))
	t.Cleanup(func() { os.Setenv("XDG_CONFIG_HOME", origConfigDir) })

	ctx := context.Background()
	tokens := auth.NewTokenIssuer("integration-secret", time.Hour)
	store := docs.NewMemoryStore(cache.NewMemory())
	sharedCache := cache.NewMemory()
	q := queue.NewMemory(4)
	blobs := blobstore.NewMemory()
	emit := events.NewMemory()
	mx := metrics.New()

	uploadSvc := upload.New(tokens, store, q, emit, mx)
	downloadSvc := download.New(tokens, sharedCache, blobs, mx)

	rpc := &fakeRPC{uploadSvc: uploadSvc, downloadSvc: downloadSvc}
	c := New(rpc)

	commitment, err := c.CreateAccount(ctx, "hunter2")
	require.NoError(t, err)
	id := commitment.ID

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/x.txt", []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(dir+"/y.txt", []byte("world"), 0o644))
	t.Cleanup(func() {
		os.RemoveAll(pathresolver.LocalZipPath(id))
		os.RemoveAll(pathresolver.WipUploadDir(id))
	})

	root, err := c.Upload(ctx, dir)
	require.NoError(t, err)
	assert.NotEmpty(t, root)

	// Synchronously run the step the worker pool would otherwise run off
	// the queue, so the test doesn't depend on goroutine scheduling.
	jobID, err := q.BlockingPop(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, jobID)
	_, state, err := worker.RunJob(ctx, jobID, blobs, sharedCache)
	require.NoError(t, err)
	assert.Equal(t, worker.StateDone, state)

	result, err := c.Download(ctx, "x.txt", t.TempDir())
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, root, result.RecomputedRoot)
}
