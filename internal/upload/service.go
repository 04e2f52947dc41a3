// Package upload implements the streaming ingest RPCs (C9): account
// registration and chunked archive capture.
package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/ocx/syncx/internal/apperr"
	"github.com/ocx/syncx/internal/auth"
	"github.com/ocx/syncx/internal/docs"
	"github.com/ocx/syncx/internal/events"
	"github.com/ocx/syncx/internal/metrics"
	"github.com/ocx/syncx/internal/pathresolver"
	"github.com/ocx/syncx/internal/queue"
	"github.com/ocx/syncx/pb"
)

// Service implements the RegisterClient and UploadFiles halves of
// pb.SyncxServer (§4.3).
type Service struct {
	tokens *auth.TokenIssuer
	store  docs.Docs
	queue  queue.Queue
	emit   events.Emitter
	mx     *metrics.Metrics
	log    *slog.Logger
}

func New(tokens *auth.TokenIssuer, store docs.Docs, q queue.Queue, emit events.Emitter, mx *metrics.Metrics) *Service {
	return &Service{tokens: tokens, store: store, queue: q, emit: emit, mx: mx, log: slog.With("component", "upload")}
}

// RegisterClient hashes the password, persists {id, password_hash}, and
// issues a bearer token (§6).
func (s *Service) RegisterClient(ctx context.Context, req *pb.RegisterClientRequest) (*pb.RegisterClientResponse, error) {
	if req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, apperr.InvalidRequest.Error())
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, status.Error(codes.Internal, apperr.Internal.Error())
	}

	id := uuid.NewString()
	if err := s.store.InsertClient(ctx, docs.ClientRecord{ID: id, PasswordHash: hash}); err != nil {
		return nil, toStatus(err)
	}

	token, err := s.tokens.Issue(id)
	if err != nil {
		return nil, status.Error(codes.Internal, apperr.Internal.Error())
	}

	return &pb.RegisterClientResponse{ID: id, BearerToken: token}, nil
}

// UploadFiles assembles a streamed archive into temp/zips/<uid>.zip and
// enqueues the id for worker processing once the stream completes (§4.3).
// The reply never blocks on archive expansion.
func (s *Service) UploadFiles(stream pb.Syncx_UploadFilesServer) error {
	start := time.Now()
	first, err := stream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.mx.UploadsTotal.WithLabelValues("invalid").Inc()
			return status.Error(codes.InvalidArgument, apperr.InvalidRequest.Error())
		}
		return status.Error(codes.Internal, apperr.Internal.Error())
	}

	uid, err := s.tokens.Verify(first.BearerToken)
	if err != nil {
		s.mx.UploadsTotal.WithLabelValues("unauthenticated").Inc()
		return status.Error(codes.Unauthenticated, apperr.Unauthenticated.Error())
	}

	zipPath := pathresolver.LocalZipPath(uid)
	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		return status.Error(codes.Internal, apperr.Internal.Error())
	}
	// Truncate on first chunk: a retried upload must not concatenate onto a
	// stale partial archive (§9 partial-upload-resumption fix).
	f, err := os.OpenFile(zipPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return status.Error(codes.Internal, apperr.Internal.Error())
	}
	defer f.Close()

	hasher := sha256.New()
	writeChunk := func(content []byte) error {
		if _, err := f.Write(content); err != nil {
			return err
		}
		hasher.Write(content)
		return nil
	}

	if err := writeChunk(first.Content); err != nil {
		s.mx.UploadsTotal.WithLabelValues("internal").Inc()
		return status.Error(codes.Internal, apperr.Internal.Error())
	}

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.mx.UploadsTotal.WithLabelValues("internal").Inc()
			return status.Error(codes.Internal, apperr.Internal.Error())
		}
		if err := writeChunk(chunk.Content); err != nil {
			s.mx.UploadsTotal.WithLabelValues("internal").Inc()
			return status.Error(codes.Internal, apperr.Internal.Error())
		}
	}

	if err := f.Close(); err != nil {
		return status.Error(codes.Internal, apperr.Internal.Error())
	}

	if err := s.checkChecksum(stream.Context(), hasher); err != nil {
		s.log.Warn("checksum mismatch, rejecting upload", "uid", uid, "err", err)
		s.mx.UploadsTotal.WithLabelValues("checksum_mismatch").Inc()
		return status.Error(codes.InvalidArgument, err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.queue.Push(ctx, uid); err != nil {
		s.log.Error("enqueue failed", "uid", uid, "err", err)
		s.mx.UploadsTotal.WithLabelValues("internal").Inc()
		return status.Error(codes.Internal, apperr.Internal.Error())
	}

	s.mx.UploadsTotal.WithLabelValues("ok").Inc()
	s.mx.UploadDuration.Observe(time.Since(start).Seconds())
	s.emit.Emit(events.TypeUploadReceived, uid, nil)

	return stream.SendAndClose(&pb.UploadResponse{Message: "upload received"})
}

// checkChecksum enforces the stream's checksum metadata against the
// assembled archive (§9 checksum-metadata resolution: enforce and reject
// on mismatch, rather than the source's advisory-only treatment). Absent
// metadata is tolerated for callers that omit it.
func (s *Service) checkChecksum(ctx context.Context, hasher interface{ Sum([]byte) []byte }) error {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}
	values := md.Get("checksum")
	if len(values) == 0 {
		return nil
	}
	want := values[0]
	got := hex.EncodeToString(hasher.Sum(nil))
	if want != got {
		return fmt.Errorf("%w: checksum mismatch", apperr.InvalidRequest)
	}
	return nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, apperr.InvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, apperr.NotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, apperr.Unauthenticated):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		return status.Error(codes.Internal, fmt.Sprintf("%v", apperr.Internal))
	}
}
