package plugins

import (
	"fmt"
	"sort"

	"github.com/shimmeringbee/logwrap"

	"github.com/joshp123/gohome-s5/internal/config"
	"github.com/joshp123/gohome-s5/internal/core"
)

// Factory builds a plugin instance from the loaded config. It reports false
// when the config has no section for the plugin.
type Factory func(*config.Config, logwrap.Logger) (core.Plugin, bool)

var compiled = map[string]Factory{}

// Register adds a compiled-in plugin factory under its plugin id.
func Register(id string, factory Factory) {
	if _, dup := compiled[id]; dup {
		panic(fmt.Sprintf("plugin %s registered twice", id))
	}
	compiled[id] = factory
}

// Compiled returns the configured plugin instances for this build, ordered by
// id. Each factory receives a logger tagged with its plugin id as source.
func Compiled(cfg *config.Config, logger logwrap.Logger) []core.Plugin {
	if cfg == nil {
		return nil
	}
	ids := make([]string, 0, len(compiled))
	for id := range compiled {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]core.Plugin, 0, len(ids))
	for _, id := range ids {
		pluginLogger := logger
		pluginLogger.AddOptionsToLogger(logwrap.Source(id))
		plugin, ok := compiled[id](cfg, pluginLogger)
		if !ok {
			continue
		}
		out = append(out, plugin)
	}
	return out
}
