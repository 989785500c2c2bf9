// Package grpcapi exposes the draw controller over gRPC. Messages are the
// well-known Empty and Struct types, so no generated code is needed.
package grpcapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/prize-gacha/internal/machine"
)

const ServiceName = "prizegacha.v1.Drawer"

// DrawerServer is the server API for the Drawer service.
type DrawerServer interface {
	Draw(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Decline(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Reset(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Snapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func unaryHandler(method string, call func(DrawerServer, context.Context, *emptypb.Empty) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(emptypb.Empty)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DrawerServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(DrawerServer), ctx, req.(*emptypb.Empty))
			})
		},
	}
}

// ServiceDesc describes the Drawer service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DrawerServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("Draw", DrawerServer.Draw),
		unaryHandler("Decline", DrawerServer.Decline),
		unaryHandler("Reset", DrawerServer.Reset),
		unaryHandler("Snapshot", DrawerServer.Snapshot),
	},
	Streams: []grpc.StreamDesc{},
}

// Server implements DrawerServer on top of a Controller.
type Server struct {
	ctl *machine.Controller
}

func NewServer(ctl *machine.Controller) *Server { return &Server{ctl: ctl} }

// Register attaches the Drawer service to s.
func Register(s *grpc.Server, srv DrawerServer) { s.RegisterService(&ServiceDesc, srv) }

func (s *Server) Draw(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	ch, err := s.ctl.RequestDraw()
	if err != nil {
		return nil, toStatus(err)
	}
	select {
	case out := <-ch:
		if out.Err != nil {
			return nil, toStatus(out.Err)
		}
		return toStruct(map[string]any{"award": out.Award, "status": s.ctl.Snapshot().Status})
	case <-ctx.Done():
		return nil, status.FromContextError(ctx.Err()).Err()
	}
}

func (s *Server) Decline(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	p, err := s.ctl.DeclineLastAward()
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"declined": p, "status": s.ctl.Snapshot().Status})
}

func (s *Server) Reset(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	s.ctl.ResetInventory()
	return toStruct(s.ctl.Snapshot())
}

func (s *Server) Snapshot(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(s.ctl.Snapshot())
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, machine.ErrDrawInProgress):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, machine.ErrStockExhausted):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, machine.ErrNoPriorAward),
		errors.Is(err, machine.ErrNotDeclinable),
		errors.Is(err, machine.ErrTriggerDisabled):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// toStruct round-trips v through JSON so its json tags shape the message.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return st, nil
}

// LogUnary logs each call with its status code and latency.
func LogUnary(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		lvl := slog.LevelInfo
		if code != codes.OK {
			lvl = slog.LevelWarn
		}
		log.LogAttrs(ctx, lvl, "grpc.call",
			slog.String("method", info.FullMethod),
			slog.String("code", code.String()),
			slog.Duration("latency", time.Since(start)))
		return resp, err
	}
}
