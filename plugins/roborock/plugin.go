package roborock

import (
	"context"
	_ "embed"

	"github.com/joshp123/gohome-s5/internal/config"
	"github.com/joshp123/gohome-s5/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shimmeringbee/logwrap"
	"google.golang.org/grpc"
)

const pluginID = "roborock_s5"

//go:embed AGENTS.md
var agentsMD string

//go:embed dashboard.json
var dashboardJSON []byte

// Plugin implements the GoHome plugin contract.
type Plugin struct {
	adapter *S5
	poller  *StatusPoller
	channel *MQTTChannel
	logger  logwrap.Logger

	health        core.HealthStatus
	healthMessage string
}

var (
	_ core.Plugin = Plugin{}
	_ core.Runner = Plugin{}
)

// NewPlugin constructs the S5 plugin from config and dials the command channel.
func NewPlugin(cfg *config.RoborockS5Config, logger logwrap.Logger) (Plugin, bool) {
	if cfg == nil {
		return Plugin{}, false
	}

	runtimeCfg, err := ConfigFrom(cfg)
	if err != nil {
		return Plugin{health: core.HealthError, healthMessage: err.Error(), logger: logger}, true
	}
	if err := registerDescriptor(); err != nil {
		return Plugin{health: core.HealthError, healthMessage: err.Error(), logger: logger}, true
	}

	channel, err := DialMQTT(runtimeCfg.MQTT, logger)
	if err != nil {
		return Plugin{health: core.HealthError, healthMessage: err.Error(), logger: logger}, true
	}

	p := newPlugin(runtimeCfg, channel, logger)
	p.channel = channel
	return p, true
}

func newPlugin(cfg Config, channel CommandChannel, logger logwrap.Logger) Plugin {
	adapter := NewS5(channel, WithLogger(logger))
	return Plugin{
		adapter: adapter,
		poller:  NewStatusPoller(adapter, cfg.StatusPollInterval, logger),
		logger:  logger,
		health:  core.HealthHealthy,
	}
}

func (p Plugin) ID() string {
	return pluginID
}

func (p Plugin) Manifest() core.Manifest {
	return core.Manifest{
		PluginID:    pluginID,
		DisplayName: "Roborock S5",
		Version:     "0.1.0",
		Services:    []string{ServiceName},
	}
}

func (p Plugin) AgentsMD() string {
	return agentsMD
}

func (p Plugin) Dashboards() []core.Dashboard {
	return []core.Dashboard{{Name: "roborock-s5-overview", JSON: dashboardJSON}}
}

func (p Plugin) RegisterGRPC(server *grpc.Server) {
	if p.adapter == nil {
		return
	}
	if err := RegisterS5Service(server, p.adapter, p.poller); err != nil {
		p.logger.LogError(context.Background(), "Failed to register S5Service.", logwrap.Err(err))
	}
}

func (p Plugin) Collectors() []prometheus.Collector {
	if p.adapter == nil {
		return nil
	}
	return []prometheus.Collector{NewMetricsCollector(p.adapter, p.poller)}
}

// Run polls status until ctx is done, then closes the command channel.
func (p Plugin) Run(ctx context.Context) {
	if p.poller == nil {
		return
	}
	defer func() {
		if p.channel != nil {
			p.channel.Close()
		}
	}()
	p.poller.Run(ctx)
}

// Health degrades while status polls fail.
func (p Plugin) Health() core.HealthStatus {
	if p.health != core.HealthHealthy || p.poller == nil {
		return p.health
	}
	if _, _, _, err := p.poller.Last(); err != nil {
		return core.HealthDegraded
	}
	return p.health
}

func (p Plugin) HealthMessage() string {
	if p.healthMessage != "" || p.poller == nil {
		return p.healthMessage
	}
	if _, _, _, err := p.poller.Last(); err != nil {
		return "status poll failed: " + err.Error()
	}
	return ""
}
