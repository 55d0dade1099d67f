package comms

import (
	context "context"

	grpc "google.golang.org/grpc"
	codes "google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
)

const (
	QueueService_Enqueue_FullMethodName        = "/fila.QueueService/Enqueue"
	QueueService_ServeNext_FullMethodName      = "/fila.QueueService/ServeNext"
	QueueService_RemoveAt_FullMethodName       = "/fila.QueueService/RemoveAt"
	QueueService_GetAt_FullMethodName          = "/fila.QueueService/GetAt"
	QueueService_ListPending_FullMethodName    = "/fila.QueueService/ListPending"
	QueueService_ListServed_FullMethodName     = "/fila.QueueService/ListServed"
	QueueService_SubscribeQueue_FullMethodName = "/fila.QueueService/SubscribeQueue"
	QueueService_Shutdown_FullMethodName       = "/fila.QueueService/Shutdown"
)

// QueueServiceClient is the client API for QueueService.
type QueueServiceClient interface {
	Enqueue(ctx context.Context, in *EnqueueRequest, opts ...grpc.CallOption) (*EnqueueResponse, error)
	ServeNext(ctx context.Context, in *ServeNextRequest, opts ...grpc.CallOption) (*ServeNextResponse, error)
	RemoveAt(ctx context.Context, in *PositionRequest, opts ...grpc.CallOption) (*EntryResponse, error)
	GetAt(ctx context.Context, in *PositionRequest, opts ...grpc.CallOption) (*EntryResponse, error)
	ListPending(ctx context.Context, in *ListPendingRequest, opts ...grpc.CallOption) (*ListPendingResponse, error)
	ListServed(ctx context.Context, in *ListServedRequest, opts ...grpc.CallOption) (*ListServedResponse, error)
	SubscribeQueue(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (QueueService_SubscribeQueueClient, error)
	Shutdown(ctx context.Context, in *ShutdownRequest, opts ...grpc.CallOption) (*ShutdownResponse, error)
}

type queueServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewQueueServiceClient(cc grpc.ClientConnInterface) QueueServiceClient {
	return &queueServiceClient{cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{CallOption()}, opts...)
}

func (c *queueServiceClient) Enqueue(ctx context.Context, in *EnqueueRequest, opts ...grpc.CallOption) (*EnqueueResponse, error) {
	out := new(EnqueueResponse)
	err := c.cc.Invoke(ctx, QueueService_Enqueue_FullMethodName, in, out, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queueServiceClient) ServeNext(ctx context.Context, in *ServeNextRequest, opts ...grpc.CallOption) (*ServeNextResponse, error) {
	out := new(ServeNextResponse)
	err := c.cc.Invoke(ctx, QueueService_ServeNext_FullMethodName, in, out, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queueServiceClient) RemoveAt(ctx context.Context, in *PositionRequest, opts ...grpc.CallOption) (*EntryResponse, error) {
	out := new(EntryResponse)
	err := c.cc.Invoke(ctx, QueueService_RemoveAt_FullMethodName, in, out, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queueServiceClient) GetAt(ctx context.Context, in *PositionRequest, opts ...grpc.CallOption) (*EntryResponse, error) {
	out := new(EntryResponse)
	err := c.cc.Invoke(ctx, QueueService_GetAt_FullMethodName, in, out, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queueServiceClient) ListPending(ctx context.Context, in *ListPendingRequest, opts ...grpc.CallOption) (*ListPendingResponse, error) {
	out := new(ListPendingResponse)
	err := c.cc.Invoke(ctx, QueueService_ListPending_FullMethodName, in, out, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queueServiceClient) ListServed(ctx context.Context, in *ListServedRequest, opts ...grpc.CallOption) (*ListServedResponse, error) {
	out := new(ListServedResponse)
	err := c.cc.Invoke(ctx, QueueService_ListServed_FullMethodName, in, out, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queueServiceClient) SubscribeQueue(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (QueueService_SubscribeQueueClient, error) {
	stream, err := c.cc.NewStream(ctx, &QueueService_ServiceDesc.Streams[0], QueueService_SubscribeQueue_FullMethodName, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &queueServiceSubscribeQueueClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type QueueService_SubscribeQueueClient interface {
	Recv() (*QueueSnapshot, error)
	grpc.ClientStream
}

type queueServiceSubscribeQueueClient struct {
	grpc.ClientStream
}

func (x *queueServiceSubscribeQueueClient) Recv() (*QueueSnapshot, error) {
	m := new(QueueSnapshot)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *queueServiceClient) Shutdown(ctx context.Context, in *ShutdownRequest, opts ...grpc.CallOption) (*ShutdownResponse, error) {
	out := new(ShutdownResponse)
	err := c.cc.Invoke(ctx, QueueService_Shutdown_FullMethodName, in, out, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// QueueServiceServer is the server API for QueueService.
// All implementations must embed UnimplementedQueueServiceServer
// for forward compatibility.
type QueueServiceServer interface {
	Enqueue(context.Context, *EnqueueRequest) (*EnqueueResponse, error)
	ServeNext(context.Context, *ServeNextRequest) (*ServeNextResponse, error)
	RemoveAt(context.Context, *PositionRequest) (*EntryResponse, error)
	GetAt(context.Context, *PositionRequest) (*EntryResponse, error)
	ListPending(context.Context, *ListPendingRequest) (*ListPendingResponse, error)
	ListServed(context.Context, *ListServedRequest) (*ListServedResponse, error)
	SubscribeQueue(*SubscribeRequest, QueueService_SubscribeQueueServer) error
	Shutdown(context.Context, *ShutdownRequest) (*ShutdownResponse, error)
	mustEmbedUnimplementedQueueServiceServer()
}

// UnimplementedQueueServiceServer must be embedded to have forward compatible implementations.
type UnimplementedQueueServiceServer struct{}

func (UnimplementedQueueServiceServer) Enqueue(context.Context, *EnqueueRequest) (*EnqueueResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Enqueue not implemented")
}
func (UnimplementedQueueServiceServer) ServeNext(context.Context, *ServeNextRequest) (*ServeNextResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ServeNext not implemented")
}
func (UnimplementedQueueServiceServer) RemoveAt(context.Context, *PositionRequest) (*EntryResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RemoveAt not implemented")
}
func (UnimplementedQueueServiceServer) GetAt(context.Context, *PositionRequest) (*EntryResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAt not implemented")
}
func (UnimplementedQueueServiceServer) ListPending(context.Context, *ListPendingRequest) (*ListPendingResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListPending not implemented")
}
func (UnimplementedQueueServiceServer) ListServed(context.Context, *ListServedRequest) (*ListServedResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListServed not implemented")
}
func (UnimplementedQueueServiceServer) SubscribeQueue(*SubscribeRequest, QueueService_SubscribeQueueServer) error {
	return status.Errorf(codes.Unimplemented, "method SubscribeQueue not implemented")
}
func (UnimplementedQueueServiceServer) Shutdown(context.Context, *ShutdownRequest) (*ShutdownResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Shutdown not implemented")
}
func (UnimplementedQueueServiceServer) mustEmbedUnimplementedQueueServiceServer() {}

func RegisterQueueServiceServer(s grpc.ServiceRegistrar, srv QueueServiceServer) {
	s.RegisterService(&QueueService_ServiceDesc, srv)
}

func unaryHandler[Req any](method string, call func(QueueServiceServer, context.Context, *Req) (any, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(QueueServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(QueueServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _QueueService_SubscribeQueue_Handler(srv any, stream grpc.ServerStream) error {
	m := new(SubscribeRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(QueueServiceServer).SubscribeQueue(m, &queueServiceSubscribeQueueServer{stream})
}

type QueueService_SubscribeQueueServer interface {
	Send(*QueueSnapshot) error
	grpc.ServerStream
}

type queueServiceSubscribeQueueServer struct {
	grpc.ServerStream
}

func (x *queueServiceSubscribeQueueServer) Send(m *QueueSnapshot) error {
	return x.ServerStream.SendMsg(m)
}

// QueueService_ServiceDesc is the grpc.ServiceDesc for QueueService.
var QueueService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "fila.QueueService",
	HandlerType: (*QueueServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Enqueue",
			Handler: unaryHandler(QueueService_Enqueue_FullMethodName, func(s QueueServiceServer, ctx context.Context, in *EnqueueRequest) (any, error) {
				return s.Enqueue(ctx, in)
			}),
		},
		{
			MethodName: "ServeNext",
			Handler: unaryHandler(QueueService_ServeNext_FullMethodName, func(s QueueServiceServer, ctx context.Context, in *ServeNextRequest) (any, error) {
				return s.ServeNext(ctx, in)
			}),
		},
		{
			MethodName: "RemoveAt",
			Handler: unaryHandler(QueueService_RemoveAt_FullMethodName, func(s QueueServiceServer, ctx context.Context, in *PositionRequest) (any, error) {
				return s.RemoveAt(ctx, in)
			}),
		},
		{
			MethodName: "GetAt",
			Handler: unaryHandler(QueueService_GetAt_FullMethodName, func(s QueueServiceServer, ctx context.Context, in *PositionRequest) (any, error) {
				return s.GetAt(ctx, in)
			}),
		},
		{
			MethodName: "ListPending",
			Handler: unaryHandler(QueueService_ListPending_FullMethodName, func(s QueueServiceServer, ctx context.Context, in *ListPendingRequest) (any, error) {
				return s.ListPending(ctx, in)
			}),
		},
		{
			MethodName: "ListServed",
			Handler: unaryHandler(QueueService_ListServed_FullMethodName, func(s QueueServiceServer, ctx context.Context, in *ListServedRequest) (any, error) {
				return s.ListServed(ctx, in)
			}),
		},
		{
			MethodName: "Shutdown",
			Handler: unaryHandler(QueueService_Shutdown_FullMethodName, func(s QueueServiceServer, ctx context.Context, in *ShutdownRequest) (any, error) {
				return s.Shutdown(ctx, in)
			}),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SubscribeQueue",
			Handler:       _QueueService_SubscribeQueue_Handler,
			ServerStreams: true,
		},
	},
}
