package router

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joshp123/gohome-s5/internal/core"
)

// RegisterPlugins registers plugin services and the gRPC health service.
func RegisterPlugins(server *grpc.Server, plugins []core.Plugin) *health.Server {
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)

	for _, p := range plugins {
		p.RegisterGRPC(server)
	}
	SyncHealth(healthServer, plugins)

	return healthServer
}

// SyncHealth publishes each plugin's health under its service names.
func SyncHealth(healthServer *health.Server, plugins []core.Plugin) {
	overall := healthpb.HealthCheckResponse_SERVING
	for _, p := range plugins {
		status := servingStatus(p.Health())
		if status != healthpb.HealthCheckResponse_SERVING {
			overall = healthpb.HealthCheckResponse_NOT_SERVING
		}
		for _, svc := range p.Manifest().Services {
			healthServer.SetServingStatus(svc, status)
		}
	}
	healthServer.SetServingStatus("", overall)
}

func servingStatus(status core.HealthStatus) healthpb.HealthCheckResponse_ServingStatus {
	if status == core.HealthError {
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}
