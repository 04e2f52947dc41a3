// Package rpc composes the upload and download services behind the single
// pb.SyncxServer surface the generated service descriptor expects.
package rpc

import (
	"context"

	"github.com/ocx/syncx/internal/download"
	"github.com/ocx/syncx/internal/upload"
	"github.com/ocx/syncx/pb"
)

// Server delegates RegisterClient and UploadFiles to the upload service and
// DownloadFile to the download service, so the two stay independently
// testable while still satisfying pb.SyncxServer as one registration.
type Server struct {
	pb.UnimplementedSyncxServer
	upload   *upload.Service
	download *download.Service
}

func New(u *upload.Service, d *download.Service) *Server {
	return &Server{upload: u, download: d}
}

func (s *Server) RegisterClient(ctx context.Context, req *pb.RegisterClientRequest) (*pb.RegisterClientResponse, error) {
	return s.upload.RegisterClient(ctx, req)
}

func (s *Server) UploadFiles(stream pb.Syncx_UploadFilesServer) error {
	return s.upload.UploadFiles(stream)
}

func (s *Server) DownloadFile(req *pb.DownloadRequest, stream pb.Syncx_DownloadFileServer) error {
	return s.download.DownloadFile(req, stream)
}
