// Package server поднимает gRPC-сервер со стандартным сервисом
// grpc.health.v1.Health для проверок живости оркестратором.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName — имя сервиса в ответах Health/Check.
const ServiceName = "splitex"

// HealthServer обслуживает Health по TCP.
type HealthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
	log        *slog.Logger
}

// New открывает listener на address и регистрирует сервис здоровья.
func New(address string, log *slog.Logger) (*HealthServer, error) {
	const op = "grpc.server.New"
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return NewWithListener(lis, log), nil
}

// NewWithListener регистрирует сервис здоровья на готовом listener.
func NewWithListener(lis net.Listener, log *slog.Logger) *HealthServer {
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &HealthServer{
		grpcServer: grpcServer,
		health:     hs,
		listener:   lis,
		log:        log,
	}
}

// Addr возвращает адрес, на котором слушает сервер.
func (s *HealthServer) Addr() string {
	return s.listener.Addr().String()
}

// Run обслуживает запросы до отмены ctx. Перед остановкой все сервисы
// переводятся в NOT_SERVING.
func (s *HealthServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("gRPC health service listening on", slog.String("address", s.Addr()))
		errCh <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}
