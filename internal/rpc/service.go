// Package rpc exposes a compiled windowed decoder over gRPC. Messages are
// protobuf well-known types; batches travel as wire frames inside BytesValue.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "slidewin.v1.Decoder"

const (
	infoMethod   = "/" + ServiceName + "/Info"
	decodeMethod = "/" + ServiceName + "/Decode"
)

// DecoderServer is the server API for the slidewin.v1.Decoder service.
type DecoderServer interface {
	Info(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Decode(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
}

func Register(s grpc.ServiceRegistrar, srv DecoderServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func infoHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DecoderServer).Info(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: infoMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DecoderServer).Info(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func decodeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DecoderServer).Decode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: decodeMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DecoderServer).Decode(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc for the slidewin.v1.Decoder service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DecoderServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Info", Handler: infoHandler},
		{MethodName: "Decode", Handler: decodeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "slidewin/v1/decoder.proto",
}
