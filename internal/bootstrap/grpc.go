package bootstrap

import (
	"context"
	"log/slog"
	"net"

	"go.uber.org/fx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const grpcServiceName = "sightguide.v1.SceneService"

func NewGRPCServer() *grpc.Server {
	return grpc.NewServer()
}

func NewHealthServer() *health.Server {
	return health.NewServer()
}

func RegisterHealthService(server *grpc.Server, hs *health.Server) {
	healthpb.RegisterHealthServer(server, hs)
}

func StartGRPCServer(lc fx.Lifecycle, server *grpc.Server, hs *health.Server, cfg *Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				return err
			}
			hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
			hs.SetServingStatus(grpcServiceName, healthpb.HealthCheckResponse_SERVING)
			go func() {
				logger.Info("gRPC server starting", "addr", cfg.GRPCAddr)
				if err := server.Serve(lis); err != nil {
					logger.Error("gRPC server error", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			hs.Shutdown()
			server.GracefulStop()
			return nil
		},
	})
}

var GRPCModule = fx.Options(
	fx.Provide(NewGRPCServer, NewHealthServer),
	fx.Invoke(RegisterHealthService),
	fx.Invoke(StartGRPCServer),
)
