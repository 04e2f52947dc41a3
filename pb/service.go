package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	serviceName = "syncx.Syncx"

	methodRegisterClient = "/" + serviceName + "/RegisterClient"
	methodUploadFiles    = "/" + serviceName + "/UploadFiles"
	methodDownloadFile   = "/" + serviceName + "/DownloadFile"
)

// SyncxServer is the server API for the Syncx service (§6).
type SyncxServer interface {
	RegisterClient(context.Context, *RegisterClientRequest) (*RegisterClientResponse, error)
	UploadFiles(Syncx_UploadFilesServer) error
	DownloadFile(*DownloadRequest, Syncx_DownloadFileServer) error
}

// UnimplementedSyncxServer can be embedded by a SyncxServer implementation
// to satisfy the interface ahead of implementing every method.
type UnimplementedSyncxServer struct{}

func (UnimplementedSyncxServer) RegisterClient(context.Context, *RegisterClientRequest) (*RegisterClientResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RegisterClient not implemented")
}

func (UnimplementedSyncxServer) UploadFiles(Syncx_UploadFilesServer) error {
	return status.Error(codes.Unimplemented, "method UploadFiles not implemented")
}

func (UnimplementedSyncxServer) DownloadFile(*DownloadRequest, Syncx_DownloadFileServer) error {
	return status.Error(codes.Unimplemented, "method DownloadFile not implemented")
}

// Syncx_UploadFilesServer is the server-side stream handle for the
// client-streaming UploadFiles RPC.
type Syncx_UploadFilesServer interface {
	SendAndClose(*UploadResponse) error
	Recv() (*UploadChunk, error)
	grpc.ServerStream
}

type syncxUploadFilesServer struct {
	grpc.ServerStream
}

func (s *syncxUploadFilesServer) SendAndClose(resp *UploadResponse) error {
	return s.ServerStream.SendMsg(resp)
}

func (s *syncxUploadFilesServer) Recv() (*UploadChunk, error) {
	chunk := new(UploadChunk)
	if err := s.ServerStream.RecvMsg(chunk); err != nil {
		return nil, err
	}
	return chunk, nil
}

// Syncx_DownloadFileServer is the server-side stream handle for the
// server-streaming DownloadFile RPC.
type Syncx_DownloadFileServer interface {
	Send(*DownloadChunk) error
	grpc.ServerStream
}

type syncxDownloadFileServer struct {
	grpc.ServerStream
}

func (s *syncxDownloadFileServer) Send(chunk *DownloadChunk) error {
	return s.ServerStream.SendMsg(chunk)
}

func registerClientHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(RegisterClientRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SyncxServer).RegisterClient(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodRegisterClient}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SyncxServer).RegisterClient(ctx, req.(*RegisterClientRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func uploadFilesHandler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(SyncxServer).UploadFiles(&syncxUploadFilesServer{stream})
}

func downloadFileHandler(srv interface{}, stream grpc.ServerStream) error {
	req := new(DownloadRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(SyncxServer).DownloadFile(req, &syncxDownloadFileServer{stream})
}

// ServiceDesc is the grpc.ServiceDesc for the Syncx service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SyncxServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterClient", Handler: registerClientHandler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "UploadFiles",
			Handler:       uploadFilesHandler,
			ClientStreams: true,
		},
		{
			StreamName:    "DownloadFile",
			Handler:       downloadFileHandler,
			ServerStreams: true,
		},
	},
	Metadata: "syncx.proto",
}

// RegisterSyncxServer registers srv on s.
func RegisterSyncxServer(s grpc.ServiceRegistrar, srv SyncxServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// SyncxClient is the client API for the Syncx service.
type SyncxClient interface {
	RegisterClient(ctx context.Context, in *RegisterClientRequest, opts ...grpc.CallOption) (*RegisterClientResponse, error)
	UploadFiles(ctx context.Context, opts ...grpc.CallOption) (Syncx_UploadFilesClient, error)
	DownloadFile(ctx context.Context, in *DownloadRequest, opts ...grpc.CallOption) (Syncx_DownloadFileClient, error)
}

type syncxClient struct {
	cc grpc.ClientConnInterface
}

// NewSyncxClient builds a SyncxClient over cc.
func NewSyncxClient(cc grpc.ClientConnInterface) SyncxClient {
	return &syncxClient{cc: cc}
}

func (c *syncxClient) RegisterClient(ctx context.Context, in *RegisterClientRequest, opts ...grpc.CallOption) (*RegisterClientResponse, error) {
	out := new(RegisterClientResponse)
	if err := c.cc.Invoke(ctx, methodRegisterClient, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Syncx_UploadFilesClient is the client-side stream handle for UploadFiles.
type Syncx_UploadFilesClient interface {
	Send(*UploadChunk) error
	CloseAndRecv() (*UploadResponse, error)
	grpc.ClientStream
}

type syncxUploadFilesClient struct {
	grpc.ClientStream
}

func (c *syncxUploadFilesClient) Send(chunk *UploadChunk) error {
	return c.ClientStream.SendMsg(chunk)
}

func (c *syncxUploadFilesClient) CloseAndRecv() (*UploadResponse, error) {
	if err := c.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	resp := new(UploadResponse)
	if err := c.ClientStream.RecvMsg(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *syncxClient) UploadFiles(ctx context.Context, opts ...grpc.CallOption) (Syncx_UploadFilesClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], methodUploadFiles, opts...)
	if err != nil {
		return nil, err
	}
	return &syncxUploadFilesClient{stream}, nil
}

// Syncx_DownloadFileClient is the client-side stream handle for
// DownloadFile.
type Syncx_DownloadFileClient interface {
	Recv() (*DownloadChunk, error)
	grpc.ClientStream
}

type syncxDownloadFileClient struct {
	grpc.ClientStream
}

func (c *syncxDownloadFileClient) Recv() (*DownloadChunk, error) {
	chunk := new(DownloadChunk)
	if err := c.ClientStream.RecvMsg(chunk); err != nil {
		return nil, err
	}
	return chunk, nil
}

func (c *syncxClient) DownloadFile(ctx context.Context, in *DownloadRequest, opts ...grpc.CallOption) (Syncx_DownloadFileClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[1], methodDownloadFile, opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &syncxDownloadFileClient{stream}, nil
}
