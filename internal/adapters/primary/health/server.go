package health

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server expose uniquement le health check gRPC standard (K8s/Docker) et la reflection.
type Server struct {
	GRPC   *grpc.Server
	health *health.Server
}

func NewServer() *Server {
	// Intercepteur OTEL pour propager le contexte de trace
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	// Active la reflection pour grpcurl / Postman
	reflection.Register(grpcServer)

	return &Server{GRPC: grpcServer, health: healthServer}
}

// SetServing bascule le statut global ; appelé une fois les dépendances prêtes.
func (s *Server) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

// Stop passe en NOT_SERVING puis draine les appels en cours.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.GRPC.GracefulStop()
}
