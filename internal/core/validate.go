package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	pluginIDPattern      = regexp.MustCompile(`^[a-z][a-z0-9_]+$`)
	dashboardNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
)

// ValidatePlugins enforces the plugin contract at startup: unique well-formed ids,
// fully qualified gRPC service names, and dashboards Grafana can provision.
func ValidatePlugins(plugins []Plugin) error {
	seen := make(map[string]bool)
	for _, plugin := range plugins {
		id := plugin.ID()
		manifest := plugin.Manifest()
		if id == "" {
			return fmt.Errorf("plugin id is empty")
		}
		if !pluginIDPattern.MatchString(id) {
			return fmt.Errorf("plugin id %q does not match %s", id, pluginIDPattern.String())
		}
		if manifest.PluginID != id {
			return fmt.Errorf("plugin id mismatch: id=%q manifest=%q", id, manifest.PluginID)
		}
		if seen[id] {
			return fmt.Errorf("duplicate plugin id: %s", id)
		}
		seen[id] = true

		for _, svc := range manifest.Services {
			if strings.Count(svc, ".") < 2 {
				return fmt.Errorf("plugin %s: service %q is not fully qualified", id, svc)
			}
		}
		if err := validateDashboards(id, plugin.Dashboards()); err != nil {
			return err
		}
	}
	return nil
}

func validateDashboards(id string, dashboards []Dashboard) error {
	names := make(map[string]bool, len(dashboards))
	for _, dash := range dashboards {
		if !dashboardNamePattern.MatchString(dash.Name) {
			return fmt.Errorf("plugin %s: dashboard name %q does not match %s", id, dash.Name, dashboardNamePattern.String())
		}
		if names[dash.Name] {
			return fmt.Errorf("plugin %s: duplicate dashboard %s", id, dash.Name)
		}
		names[dash.Name] = true
		if !gjson.ValidBytes(dash.JSON) {
			return fmt.Errorf("plugin %s: dashboard %s is not valid JSON", id, dash.Name)
		}
		if gjson.GetBytes(dash.JSON, "title").String() == "" {
			return fmt.Errorf("plugin %s: dashboard %s has no title", id, dash.Name)
		}
	}
	return nil
}
