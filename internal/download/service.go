// Package download implements the DownloadFile RPC (C10): existence
// check, member + tree fetch, proof generation, streamed reply.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ocx/syncx/internal/apperr"
	"github.com/ocx/syncx/internal/auth"
	"github.com/ocx/syncx/internal/blobstore"
	"github.com/ocx/syncx/internal/cache"
	"github.com/ocx/syncx/internal/merkle"
	"github.com/ocx/syncx/internal/metrics"
	"github.com/ocx/syncx/internal/pathresolver"
	"github.com/ocx/syncx/internal/worker"
	"github.com/ocx/syncx/pb"
)

// Service implements the DownloadFile half of pb.SyncxServer (§4.4).
type Service struct {
	tokens *auth.TokenIssuer
	cache  cache.Cache
	blobs  blobstore.BlobStore
	mx     *metrics.Metrics
	log    *slog.Logger
}

func New(tokens *auth.TokenIssuer, ch cache.Cache, blobs blobstore.BlobStore, mx *metrics.Metrics) *Service {
	return &Service{tokens: tokens, cache: ch, blobs: blobs, mx: mx, log: slog.With("component", "download")}
}

func (s *Service) DownloadFile(req *pb.DownloadRequest, stream pb.Syncx_DownloadFileServer) error {
	start := time.Now()
	uid, err := s.tokens.Verify(req.BearerToken)
	if err != nil {
		s.mx.DownloadsTotal.WithLabelValues("unauthenticated").Inc()
		return status.Error(codes.Unauthenticated, apperr.Unauthenticated.Error())
	}

	ctx := stream.Context()

	existenceKey := pathresolver.ExistenceKey(uid, req.FileName)
	_, exists, err := s.cache.Get(ctx, existenceKey)
	if err != nil {
		s.mx.DownloadsTotal.WithLabelValues("internal").Inc()
		return status.Error(codes.Internal, apperr.Internal.Error())
	}
	if !exists {
		s.mx.DownloadsTotal.WithLabelValues("not_found").Inc()
		return status.Error(codes.NotFound, apperr.NotFound.Error())
	}

	attempt, ok, err := worker.CurrentAttempt(ctx, s.cache, uid)
	if err != nil || !ok {
		s.mx.DownloadsTotal.WithLabelValues("internal").Inc()
		return status.Error(codes.Internal, apperr.Internal.Error())
	}

	content, err := s.blobs.Get(ctx, pathresolver.RemoteMemberObject(uid, attempt, req.FileName))
	if err != nil {
		return toStatus(s.mx, err)
	}

	treeBytes, err := s.blobs.Get(ctx, pathresolver.RemoteTreeObject(uid, attempt))
	if err != nil {
		return toStatus(s.mx, err)
	}
	tree, err := merkle.Deserialize(treeBytes)
	if err != nil {
		s.mx.DownloadsTotal.WithLabelValues("internal").Inc()
		return status.Error(codes.Internal, apperr.Internal.Error())
	}

	leafHash := hashFile(content)
	proof, err := tree.Prove(leafHash)
	if err != nil {
		s.mx.DownloadsTotal.WithLabelValues("internal").Inc()
		return status.Error(codes.Internal, apperr.Internal.Error())
	}

	if err := stream.Send(&pb.DownloadChunk{Content: content, MerkleProof: toWireProof(proof)}); err != nil {
		return err
	}

	s.mx.DownloadsTotal.WithLabelValues("ok").Inc()
	s.mx.DownloadDuration.Observe(time.Since(start).Seconds())
	return nil
}

func hashFile(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func toWireProof(proof []merkle.ProofNode) *pb.MerkleProof {
	nodes := make([]pb.ProofNode, len(proof))
	for i, n := range proof {
		nodes[i] = pb.ProofNode{Hash: n.Sibling, Flag: uint32(n.Side)}
	}
	return &pb.MerkleProof{Nodes: nodes}
}

func toStatus(mx *metrics.Metrics, err error) error {
	mx.DownloadsTotal.WithLabelValues("internal").Inc()
	switch {
	case errors.Is(err, apperr.NotFound):
		return status.Error(codes.NotFound, apperr.NotFound.Error())
	default:
		return status.Error(codes.Internal, fmt.Sprintf("%v", apperr.Internal))
	}
}
