package router

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joshp123/gohome-s5/internal/core"
)

type stubPlugin struct {
	id     string
	health core.HealthStatus
}

func (s stubPlugin) ID() string { return s.id }

func (s stubPlugin) Manifest() core.Manifest {
	return core.Manifest{PluginID: s.id, Services: []string{"gohome.plugins." + s.id + ".v1.Service"}}
}

func (s stubPlugin) AgentsMD() string                   { return "" }
func (s stubPlugin) Dashboards() []core.Dashboard       { return nil }
func (s stubPlugin) RegisterGRPC(*grpc.Server)          {}
func (s stubPlugin) Collectors() []prometheus.Collector { return nil }
func (s stubPlugin) Health() core.HealthStatus          { return s.health }
func (s stubPlugin) HealthMessage() string              { return "" }

func TestRegisterPluginsPublishesHealth(t *testing.T) {
	server := grpc.NewServer()
	plugins := []core.Plugin{
		stubPlugin{id: "good", health: core.HealthHealthy},
		stubPlugin{id: "bad", health: core.HealthError},
	}
	healthServer := RegisterPlugins(server, plugins)

	resp, err := healthServer.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "gohome.plugins.good.v1.Service"})
	if err != nil {
		t.Fatalf("Check good: %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("good status = %v", resp.Status)
	}

	resp, err = healthServer.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "gohome.plugins.bad.v1.Service"})
	if err != nil {
		t.Fatalf("Check bad: %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("bad status = %v", resp.Status)
	}

	resp, err = healthServer.Check(context.Background(), &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Check overall: %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("overall status = %v", resp.Status)
	}
}
