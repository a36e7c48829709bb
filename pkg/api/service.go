package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ServiceName = "s3toolplugin.v1.ToolService"

	GetPluginInfoMethod       = "/" + ServiceName + "/GetPluginInfo"
	ValidateCredentialsMethod = "/" + ServiceName + "/ValidateCredentials"
	InvokeToolMethod          = "/" + ServiceName + "/InvokeTool"
)

// ToolServiceServer is the server API for the tool service.
type ToolServiceServer interface {
	GetPluginInfo(context.Context, *GetPluginInfoRequest) (*GetPluginInfoResponse, error)
	ValidateCredentials(context.Context, *ValidateCredentialsRequest) (*ValidateCredentialsResponse, error)
	InvokeTool(*InvokeToolRequest, InvokeToolServer) error
}

// InvokeToolServer is the server side of the InvokeTool message stream.
type InvokeToolServer interface {
	Send(*Message) error
	grpc.ServerStream
}

type invokeToolServer struct {
	grpc.ServerStream
}

func (x *invokeToolServer) Send(m *Message) error {
	return x.ServerStream.SendMsg(m)
}

// UnimplementedToolServiceServer can be embedded to satisfy ToolServiceServer.
type UnimplementedToolServiceServer struct{}

func (UnimplementedToolServiceServer) GetPluginInfo(context.Context, *GetPluginInfoRequest) (*GetPluginInfoResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPluginInfo not implemented")
}

func (UnimplementedToolServiceServer) ValidateCredentials(context.Context, *ValidateCredentialsRequest) (*ValidateCredentialsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ValidateCredentials not implemented")
}

func (UnimplementedToolServiceServer) InvokeTool(*InvokeToolRequest, InvokeToolServer) error {
	return status.Error(codes.Unimplemented, "method InvokeTool not implemented")
}

func RegisterToolServiceServer(s grpc.ServiceRegistrar, srv ToolServiceServer) {
	s.RegisterService(&ToolServiceDesc, srv)
}

func getPluginInfoHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetPluginInfoRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ToolServiceServer).GetPluginInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetPluginInfoMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ToolServiceServer).GetPluginInfo(ctx, req.(*GetPluginInfoRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func validateCredentialsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ValidateCredentialsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ToolServiceServer).ValidateCredentials(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ValidateCredentialsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ToolServiceServer).ValidateCredentials(ctx, req.(*ValidateCredentialsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func invokeToolHandler(srv any, stream grpc.ServerStream) error {
	in := new(InvokeToolRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ToolServiceServer).InvokeTool(in, &invokeToolServer{stream})
}

// ToolServiceDesc describes the tool service for grpc.Server registration.
var ToolServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ToolServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetPluginInfo", Handler: getPluginInfoHandler},
		{MethodName: "ValidateCredentials", Handler: validateCredentialsHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "InvokeTool", Handler: invokeToolHandler, ServerStreams: true},
	},
	Metadata: "s3toolplugin/v1/tool_service",
}

// ToolServiceClient is the client API for the tool service.
type ToolServiceClient interface {
	GetPluginInfo(ctx context.Context, in *GetPluginInfoRequest, opts ...grpc.CallOption) (*GetPluginInfoResponse, error)
	ValidateCredentials(ctx context.Context, in *ValidateCredentialsRequest, opts ...grpc.CallOption) (*ValidateCredentialsResponse, error)
	InvokeTool(ctx context.Context, in *InvokeToolRequest, opts ...grpc.CallOption) (InvokeToolClient, error)
}

// InvokeToolClient is the client side of the InvokeTool message stream.
type InvokeToolClient interface {
	Recv() (*Message, error)
	grpc.ClientStream
}

type toolServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewToolServiceClient(cc grpc.ClientConnInterface) ToolServiceClient {
	return &toolServiceClient{cc: cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *toolServiceClient) GetPluginInfo(ctx context.Context, in *GetPluginInfoRequest, opts ...grpc.CallOption) (*GetPluginInfoResponse, error) {
	out := new(GetPluginInfoResponse)
	if err := c.cc.Invoke(ctx, GetPluginInfoMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *toolServiceClient) ValidateCredentials(ctx context.Context, in *ValidateCredentialsRequest, opts ...grpc.CallOption) (*ValidateCredentialsResponse, error) {
	out := new(ValidateCredentialsResponse)
	if err := c.cc.Invoke(ctx, ValidateCredentialsMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *toolServiceClient) InvokeTool(ctx context.Context, in *InvokeToolRequest, opts ...grpc.CallOption) (InvokeToolClient, error) {
	stream, err := c.cc.NewStream(ctx, &ToolServiceDesc.Streams[0], InvokeToolMethod, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &invokeToolClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type invokeToolClient struct {
	grpc.ClientStream
}

func (x *invokeToolClient) Recv() (*Message, error) {
	m := new(Message)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
