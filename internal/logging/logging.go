package logging

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/filter"
	"github.com/shimmeringbee/logwrap/impl/golog"
	"github.com/shimmeringbee/logwrap/impl/tee"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/joshp123/gohome-s5/internal/config"
)

// New builds the daemon logger: console output, plus a rotating file when
// cfg.File is set. Both sinks share the configured level.
func New(cfg *config.LoggingConfig, console io.Writer) (logwrap.Logger, io.Closer, error) {
	if cfg == nil {
		cfg = &config.LoggingConfig{Level: config.DefaultLogLevel}
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return logwrap.Logger{}, nil, err
	}

	impls := []logwrap.Impl{levelFilter(level, golog.Wrap(log.New(console, "", log.LstdFlags)))}
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
		impls = append(impls, levelFilter(level, golog.Wrap(log.New(file, "", log.LstdFlags))))
		closer = file
	}

	if len(impls) == 1 {
		return logwrap.New(impls[0]), closer, nil
	}
	return logwrap.New(tee.Tee(impls...)), closer, nil
}

// ParseLevel maps a config level name to a logwrap level.
func ParseLevel(name string) (logwrap.LogLevel, error) {
	switch strings.ToLower(name) {
	case "", "info":
		return logwrap.Info, nil
	case "trace":
		return logwrap.Trace, nil
	case "debug":
		return logwrap.Debug, nil
	case "warn":
		return logwrap.Warn, nil
	case "error":
		return logwrap.Error, nil
	}
	return logwrap.Info, fmt.Errorf("unknown log level '%s'", name)
}

func levelFilter(level logwrap.LogLevel, base logwrap.Impl) logwrap.Impl {
	return filter.Filter(base, func(message logwrap.Message) bool {
		return message.Level <= level
	})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
