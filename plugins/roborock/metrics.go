package roborock

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector exports the capability snapshot and the last polled status.
// Collect never talks to the device; the status poller owns the network.
type MetricsCollector struct {
	adapter *S5
	poller  *StatusPoller

	success prometheus.Gauge

	gen3           prometheus.Gauge
	msgVer         prometheus.Gauge
	fanSpeed       *prometheus.GaugeVec
	batteryPercent prometheus.Gauge
	state          *prometheus.GaugeVec
	errorCode      prometheus.Gauge
	fanPower       prometheus.Gauge
	labStatus      prometheus.Gauge
}

func NewMetricsCollector(adapter *S5, poller *StatusPoller) *MetricsCollector {
	return &MetricsCollector{
		adapter: adapter,
		poller:  poller,
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gohome_roborock_s5_scrape_success",
			Help: "Last status poll success (1=ok, 0=error)",
		}),
		gen3: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gohome_roborock_s5_gen3",
			Help: "Whether the firmware speaks the gen3 command set (1=yes, 0=no)",
		}),
		msgVer: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gohome_roborock_s5_msg_ver",
			Help: "Protocol version reported by the last status",
		}),
		fanSpeed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gohome_roborock_s5_fan_speed_value",
			Help: "Device value of each fan level in the active table",
		}, []string{"level", "label"}),
		batteryPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gohome_roborock_s5_battery_percent",
			Help: "Battery percentage (0-100)",
		}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gohome_roborock_s5_state",
			Help: "Vacuum state (label) reported by the device",
		}, []string{"state"}),
		errorCode: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gohome_roborock_s5_error_code",
			Help: "Vacuum error code (0=none)",
		}),
		fanPower: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gohome_roborock_s5_fan_power",
			Help: "Raw fan_power reported by the device",
		}),
		labStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gohome_roborock_s5_lab_status",
			Help: "Whether persistent maps are enabled (1=yes, 0=no)",
		}),
	}
}

func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	c.success.Describe(ch)
	c.gen3.Describe(ch)
	c.msgVer.Describe(ch)
	c.fanSpeed.Describe(ch)
	c.batteryPercent.Describe(ch)
	c.state.Describe(ch)
	c.errorCode.Describe(ch)
	c.fanPower.Describe(ch)
	c.labStatus.Describe(ch)
	c.adapter.commands.Describe(ch)
	c.adapter.markerWeight.Describe(ch)
	c.adapter.mapRefreshes.Describe(ch)
}

func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	caps := c.adapter.Capabilities()
	c.gen3.Set(boolGauge(caps.SupportsGen3))
	c.msgVer.Set(float64(caps.MsgVer))
	c.fanSpeed.Reset()
	for _, level := range caps.FanSpeeds.Levels() {
		spec, _ := caps.FanSpeeds.Lookup(level)
		c.fanSpeed.WithLabelValues(string(level), spec.Label).Set(float64(spec.Value))
	}

	c.gen3.Collect(ch)
	c.msgVer.Collect(ch)
	c.fanSpeed.Collect(ch)
	c.adapter.commands.Collect(ch)
	c.adapter.markerWeight.Collect(ch)
	c.adapter.mapRefreshes.Collect(ch)

	if c.poller == nil {
		return
	}
	status, _, observed, err := c.poller.Last()
	if err != nil || !observed {
		c.success.Set(0)
		c.success.Collect(ch)
		c.batteryPercent.Collect(ch)
		c.state.Collect(ch)
		c.errorCode.Collect(ch)
		c.fanPower.Collect(ch)
		c.labStatus.Collect(ch)
		return
	}

	c.success.Set(1)
	c.batteryPercent.Set(float64(status.BatteryPercent))
	c.state.Reset()
	if status.State != "" {
		c.state.WithLabelValues(status.State).Set(1)
	}
	c.errorCode.Set(float64(status.ErrorCode))
	c.fanPower.Set(float64(status.FanPower))
	c.labStatus.Set(boolGauge(status.LabStatus))

	c.success.Collect(ch)
	c.batteryPercent.Collect(ch)
	c.state.Collect(ch)
	c.errorCode.Collect(ch)
	c.fanPower.Collect(ch)
	c.labStatus.Collect(ch)
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

