package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
)

type stubPlugin struct {
	id            string
	name          string
	version       string
	services      []string
	dashboards    []Dashboard
	agents        string
	health        HealthStatus
	healthMessage string
}

func (s stubPlugin) ID() string { return s.id }

func (s stubPlugin) Manifest() Manifest {
	return Manifest{
		PluginID:    s.id,
		DisplayName: s.name,
		Version:     s.version,
		Services:    s.services,
	}
}

func (s stubPlugin) AgentsMD() string { return s.agents }

func (s stubPlugin) Dashboards() []Dashboard { return s.dashboards }

func (s stubPlugin) RegisterGRPC(*grpc.Server) {}

func (s stubPlugin) Collectors() []prometheus.Collector { return nil }

func (s stubPlugin) Health() HealthStatus { return s.health }

func (s stubPlugin) HealthMessage() string { return s.healthMessage }

func newStubPlugin(id string) stubPlugin {
	return stubPlugin{
		id:         id,
		name:       "Demo",
		version:    "0.1.0",
		services:   []string{"gohome.plugins.demo.v1.DemoService"},
		agents:     "demo agents",
		health:     HealthHealthy,
		dashboards: []Dashboard{{Name: "demo", JSON: []byte(`{"title":"Demo"}`)}},
	}
}

func TestRegistryListPlugins(t *testing.T) {
	plugin := newStubPlugin("demo")
	svc := NewRegistryService([]Plugin{plugin})

	plugins := svc.ListPlugins()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	got := plugins[0]
	if got.PluginID != "demo" || got.DisplayName != "Demo" || got.Version != "0.1.0" {
		t.Fatalf("unexpected plugin summary: %+v", got)
	}
	if got.Status != string(HealthHealthy) {
		t.Fatalf("unexpected health status: %s", got.Status)
	}
}

func TestRegistryDescribePlugin(t *testing.T) {
	plugin := newStubPlugin("demo")
	svc := NewRegistryService([]Plugin{plugin})

	descriptor, ok := svc.DescribePlugin("demo")
	if !ok {
		t.Fatalf("expected plugin descriptor")
	}
	if descriptor.PluginID != "demo" {
		t.Fatalf("unexpected plugin id: %s", descriptor.PluginID)
	}
	if len(descriptor.Dashboards) != 1 {
		t.Fatalf("expected 1 dashboard, got %d", len(descriptor.Dashboards))
	}
	if descriptor.Dashboards[0].Path != "/dashboards/demo/demo.json" {
		t.Fatalf("unexpected dashboard path: %s", descriptor.Dashboards[0].Path)
	}

	if _, ok := svc.DescribePlugin("missing"); ok {
		t.Fatalf("expected no descriptor for unknown plugin")
	}
}

func TestRegistryHandler(t *testing.T) {
	svc := NewRegistryService([]Plugin{newStubPlugin("demo")})
	handler := svc.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plugins", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list []PluginSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].PluginID != "demo" {
		t.Fatalf("unexpected list: %+v", list)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plugins/demo", nil))
	var descriptor PluginDescriptor
	if err := json.Unmarshal(rec.Body.Bytes(), &descriptor); err != nil {
		t.Fatalf("decode descriptor: %v", err)
	}
	if descriptor.AgentsMD != "demo agents" {
		t.Fatalf("unexpected agents md: %q", descriptor.AgentsMD)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plugins/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d", rec.Code)
	}
}

func TestFilterPlugins(t *testing.T) {
	compiled := []Plugin{newStubPlugin("demo"), newStubPlugin("extra")}

	active := FilterPlugins(compiled, map[string]bool{"demo": true}, false)
	if len(active) != 1 || active[0].ID() != "demo" {
		t.Fatalf("unexpected active plugins: %v", active)
	}

	active = FilterPlugins(compiled, map[string]bool{}, true)
	if len(active) != 2 {
		t.Fatalf("expected all plugins, got %d", len(active))
	}
}

func TestValidateEnabledPlugins(t *testing.T) {
	compiled := []Plugin{newStubPlugin("demo")}

	if err := ValidateEnabledPlugins(compiled, map[string]bool{"demo": true}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ValidateEnabledPlugins(compiled, map[string]bool{"missing": true}, false); err == nil {
		t.Fatalf("expected error for missing plugin")
	}
}

func TestValidatePlugins(t *testing.T) {
	if err := ValidatePlugins([]Plugin{newStubPlugin("roborock_s5")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidatePlugins([]Plugin{newStubPlugin("demo"), newStubPlugin("demo")}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if err := ValidatePlugins([]Plugin{newStubPlugin("Bad-ID")}); err == nil {
		t.Fatalf("expected pattern error")
	}
}

func TestValidatePluginsDashboardsAndServices(t *testing.T) {
	unqualified := newStubPlugin("demo")
	unqualified.services = []string{"DemoService"}
	if err := ValidatePlugins([]Plugin{unqualified}); err == nil {
		t.Fatalf("expected service name error")
	}

	untitled := newStubPlugin("demo")
	untitled.dashboards = []Dashboard{{Name: "demo", JSON: []byte("{}")}}
	if err := ValidatePlugins([]Plugin{untitled}); err == nil {
		t.Fatalf("expected missing title error")
	}

	broken := newStubPlugin("demo")
	broken.dashboards = []Dashboard{{Name: "demo", JSON: []byte("{")}}
	if err := ValidatePlugins([]Plugin{broken}); err == nil {
		t.Fatalf("expected invalid json error")
	}

	dup := newStubPlugin("demo")
	dup.dashboards = append(dup.dashboards, dup.dashboards[0])
	if err := ValidatePlugins([]Plugin{dup}); err == nil {
		t.Fatalf("expected duplicate dashboard error")
	}
}

func TestWriteDashboardsSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	plugins := []Plugin{newStubPlugin("demo")}

	written, err := WriteDashboards(dir, plugins)
	if err != nil {
		t.Fatalf("write dashboards: %v", err)
	}
	if written != 1 {
		t.Fatalf("expected 1 written, got %d", written)
	}
	data, err := os.ReadFile(filepath.Join(dir, "demo", "demo.json"))
	if err != nil {
		t.Fatalf("read dashboard: %v", err)
	}
	if string(data) != `{"title":"Demo"}` {
		t.Fatalf("unexpected dashboard content: %s", data)
	}

	written, err = WriteDashboards(dir, plugins)
	if err != nil {
		t.Fatalf("rewrite dashboards: %v", err)
	}
	if written != 0 {
		t.Fatalf("expected unchanged dashboards to be skipped, wrote %d", written)
	}
}

func TestMetricsRegistry(t *testing.T) {
	degraded := newStubPlugin("other")
	degraded.health = HealthDegraded
	registry := MetricsRegistry("test", []Plugin{newStubPlugin("demo"), degraded})

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			if gauge := metric.GetGauge(); gauge != nil {
				found[family.GetName()] = gauge.GetValue()
			}
		}
	}
	if found["gohome_build_info"] != 1 {
		t.Fatalf("missing build info: %v", found["gohome_build_info"])
	}
	if found["gohome_plugins_healthy"] != 1 {
		t.Fatalf("expected 1 healthy plugin, got %v", found["gohome_plugins_healthy"])
	}
}
