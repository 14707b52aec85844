package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// SessionService is the server side of the open calls
type SessionService interface {
	OpenGrain(ctx context.Context, grainID string) (types.OpenOutcome, error)
	OpenToken(ctx context.Context, req types.TokenRequest) (types.OpenOutcome, error)
}

// ServiceDesc describes shell.Sessions for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SessionService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodOpenGrain, Handler: openGrainHandler},
		{MethodName: MethodOpenToken, Handler: openTokenHandler},
	},
	Streams: []grpc.StreamDesc{},
}

// Register serves svc on s
func Register(s *grpc.Server, svc SessionService) {
	s.RegisterService(&ServiceDesc, svc)
}

func openGrainHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := &structpb.Struct{}
	if err := dec(req); err != nil {
		return nil, err
	}
	handle := func(ctx context.Context, msg any) (any, error) {
		grainID := msg.(*structpb.Struct).GetFields()[fieldGrainID].GetStringValue()
		if grainID == "" {
			return nil, status.Error(codes.InvalidArgument, "grain_id is required")
		}
		outcome, err := srv.(SessionService).OpenGrain(ctx, grainID)
		return respond(outcome, err)
	}
	if interceptor == nil {
		return handle(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(MethodOpenGrain)}
	return interceptor(ctx, req, info, handle)
}

func openTokenHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := &structpb.Struct{}
	if err := dec(req); err != nil {
		return nil, err
	}
	handle := func(ctx context.Context, msg any) (any, error) {
		fields := msg.(*structpb.Struct).GetFields()
		tokenReq := types.TokenRequest{
			Token:     fields[fieldToken].GetStringValue(),
			Incognito: fields[fieldIncognito].GetBoolValue(),
		}
		if tokenReq.Token == "" {
			return nil, status.Error(codes.InvalidArgument, "token is required")
		}
		outcome, err := srv.(SessionService).OpenToken(ctx, tokenReq)
		return respond(outcome, err)
	}
	if interceptor == nil {
		return handle(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(MethodOpenToken)}
	return interceptor(ctx, req, info, handle)
}

func respond(outcome types.OpenOutcome, err error) (any, error) {
	if err != nil {
		if _, ok := status.FromError(err); ok {
			return nil, err
		}
		return nil, status.Error(codes.Unknown, err.Error())
	}
	msg, err := encodeOutcome(outcome)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return msg, nil
}
