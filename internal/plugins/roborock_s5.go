package plugins

import (
	"github.com/shimmeringbee/logwrap"

	"github.com/joshp123/gohome-s5/internal/config"
	"github.com/joshp123/gohome-s5/internal/core"
	"github.com/joshp123/gohome-s5/plugins/roborock"
)

func init() {
	Register("roborock_s5", func(cfg *config.Config, logger logwrap.Logger) (core.Plugin, bool) {
		return roborock.NewPlugin(cfg.RoborockS5, logger)
	})
}
