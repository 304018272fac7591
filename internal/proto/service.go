// Package proto holds the wire contract between the worklog CLI and the
// activity backend: the gRPC service description and the mapping between
// domain records and protobuf well-known message types.
//
// Messages are google.protobuf.Struct values keyed by the backend column
// names (id, tipo_atividade, descricao, inicio, fim, user_id, ano, mes, dia,
// horas_trabalhadas), so no generated code is needed on either side.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "worklog.v1.ActivityService"

const (
	ActivityService_Ping_FullMethodName            = "/" + ServiceName + "/Ping"
	ActivityService_CreateSession_FullMethodName   = "/" + ServiceName + "/CreateSession"
	ActivityService_CloseSession_FullMethodName    = "/" + ServiceName + "/CloseSession"
	ActivityService_FindOpenSession_FullMethodName = "/" + ServiceName + "/FindOpenSession"
	ActivityService_ListSessions_FullMethodName    = "/" + ServiceName + "/ListSessions"
	ActivityService_ExportReport_FullMethodName    = "/" + ServiceName + "/ExportReport"
)

// PingOK is the status string a healthy server answers Ping with.
const PingOK = "OK"

// ActivityServiceClient is the client API for ActivityService.
type ActivityServiceClient interface {
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	CreateSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CloseSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	FindOpenSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListSessions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ExportReport(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type activityServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewActivityServiceClient(cc grpc.ClientConnInterface) ActivityServiceClient {
	return &activityServiceClient{cc}
}

func invoke[R any, PR interface {
	*R
	proto.Message
}](ctx context.Context, cc grpc.ClientConnInterface, method string, in proto.Message, opts []grpc.CallOption) (PR, error) {
	out := PR(new(R))
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *activityServiceClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, ActivityService_Ping_FullMethodName, in, opts)
}

func (c *activityServiceClient) CreateSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, ActivityService_CreateSession_FullMethodName, in, opts)
}

func (c *activityServiceClient) CloseSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, ActivityService_CloseSession_FullMethodName, in, opts)
}

func (c *activityServiceClient) FindOpenSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, ActivityService_FindOpenSession_FullMethodName, in, opts)
}

func (c *activityServiceClient) ListSessions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, ActivityService_ListSessions_FullMethodName, in, opts)
}

func (c *activityServiceClient) ExportReport(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, ActivityService_ExportReport_FullMethodName, in, opts)
}

// ActivityServiceServer is the server API for ActivityService.
// Implementations must embed UnimplementedActivityServiceServer.
type ActivityServiceServer interface {
	Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	CreateSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CloseSession(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	FindOpenSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSessions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedActivityServiceServer()
}

func RegisterActivityServiceServer(s grpc.ServiceRegistrar, srv ActivityServiceServer) {
	s.RegisterService(&ActivityService_ServiceDesc, srv)
}

func unary[T any, PT interface {
	*T
	proto.Message
}, R proto.Message](fullMethod string, call func(ActivityServiceServer, context.Context, PT) (R, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PT(new(T))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ActivityServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ActivityServiceServer), ctx, req.(PT))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ActivityService_ServiceDesc is the grpc.ServiceDesc for ActivityService.
var ActivityService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ActivityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unary[emptypb.Empty](ActivityService_Ping_FullMethodName, ActivityServiceServer.Ping)},
		{MethodName: "CreateSession", Handler: unary[structpb.Struct](ActivityService_CreateSession_FullMethodName, ActivityServiceServer.CreateSession)},
		{MethodName: "CloseSession", Handler: unary[structpb.Struct](ActivityService_CloseSession_FullMethodName, ActivityServiceServer.CloseSession)},
		{MethodName: "FindOpenSession", Handler: unary[structpb.Struct](ActivityService_FindOpenSession_FullMethodName, ActivityServiceServer.FindOpenSession)},
		{MethodName: "ListSessions", Handler: unary[structpb.Struct](ActivityService_ListSessions_FullMethodName, ActivityServiceServer.ListSessions)},
		{MethodName: "ExportReport", Handler: unary[structpb.Struct](ActivityService_ExportReport_FullMethodName, ActivityServiceServer.ExportReport)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "worklog/v1/activity.proto",
}
