package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/golog"

	"github.com/joshp123/gohome-s5/internal/config"
	"github.com/joshp123/gohome-s5/internal/core"
	"github.com/joshp123/gohome-s5/internal/logging"
	"github.com/joshp123/gohome-s5/internal/plugins"
	"github.com/joshp123/gohome-s5/internal/router"
	"github.com/joshp123/gohome-s5/internal/server"
)

const healthSyncInterval = 15 * time.Second

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "s5" {
		s5Main(os.Args[2:])
		return
	}

	ctx := context.Background()
	bootLogger := logwrap.New(golog.Wrap(log.New(os.Stderr, "", log.LstdFlags)))

	fs := flag.NewFlagSet("gohome", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to config.yaml")
	logLevel := fs.String("log-level", "", "override logging.level (trace|debug|info|warn|error)")
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("GOHOME")); err != nil {
		bootLogger.LogFatal(ctx, "Failed to parse environment/command line arguments.", logwrap.Err(err))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger.LogFatal(ctx, "Failed to load configuration.", logwrap.Datum("path", *configPath), logwrap.Err(err))
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	l, logCloser, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		bootLogger.LogFatal(ctx, "Failed to configure logging.", logwrap.Err(err))
	}
	defer logCloser.Close()

	l.LogInfo(ctx, "GoHome starting.", logwrap.Datum("version", version), logwrap.Datum("config", *configPath))

	enabled := config.EnabledPlugins(cfg)
	active := core.FilterPlugins(plugins.Compiled(cfg, l), enabled, false)
	if err := core.ValidateEnabledPlugins(active, enabled, false); err != nil {
		l.LogFatal(ctx, "Plugin set does not match config.", logwrap.Err(err))
	}
	if err := core.ValidatePlugins(active); err != nil {
		l.LogFatal(ctx, "Invalid plugin set.", logwrap.Err(err))
	}
	for _, p := range active {
		l.LogInfo(ctx, "Loaded plugin.", logwrap.Datum("plugin", p.ID()), logwrap.Datum("health", string(p.Health())), logwrap.Datum("message", p.HealthMessage()))
	}

	if written, err := core.WriteDashboards(cfg.Core.DashboardDir, active); err != nil {
		l.LogWarn(ctx, "Failed to write dashboards.", logwrap.Err(err))
	} else if written > 0 {
		l.LogInfo(ctx, "Wrote dashboards.", logwrap.Datum("dir", cfg.Core.DashboardDir), logwrap.Datum("count", written))
	}

	grpcServer, err := server.NewGRPCServer(cfg.Core.GRPCAddr, l)
	if err != nil {
		l.LogFatal(ctx, "Failed to listen for gRPC.", logwrap.Datum("addr", cfg.Core.GRPCAddr), logwrap.Err(err))
	}
	healthServer := router.RegisterPlugins(grpcServer.Server, active)

	metricsRegistry := core.MetricsRegistry(version, active)

	httpMux := http.NewServeMux()
	httpMux.Handle("/health", server.HealthHandler(active))
	httpMux.Handle("/metrics", server.MetricsHandler(metricsRegistry, l))
	httpMux.Handle("/dashboards/", server.DashboardsHandler(core.DashboardsMap(active)))
	registry := core.NewRegistryService(active)
	httpMux.Handle("/plugins", registry.Handler())
	httpMux.Handle("/plugins/", registry.Handler())
	for _, p := range active {
		if registrant, ok := p.(core.HTTPRegistrant); ok {
			registrant.RegisterHTTP(httpMux)
		}
	}
	httpServer := server.NewHTTPServer(cfg.Core.HTTPAddr, httpMux)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for _, p := range active {
		runner, ok := p.(core.Runner)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			runner.Run(runCtx)
			l.LogInfo(ctx, "Plugin runner stopped.", logwrap.Datum("plugin", id))
		}(p.ID())
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(healthSyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				router.SyncHealth(healthServer, active)
			}
		}
	}()

	go func() {
		l.LogInfo(ctx, "Serving HTTP.", logwrap.Datum("addr", cfg.Core.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.LogError(ctx, "HTTP server failed.", logwrap.Err(err))
			stop()
		}
	}()

	go func() {
		l.LogInfo(ctx, "Serving gRPC.", logwrap.Datum("addr", cfg.Core.GRPCAddr))
		if err := grpcServer.Serve(); err != nil {
			l.LogError(ctx, "gRPC server failed.", logwrap.Err(err))
			stop()
		}
	}()

	<-runCtx.Done()
	l.LogInfo(ctx, "Shutting down.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.LogWarn(ctx, "HTTP shutdown failed.", logwrap.Err(err))
	}
	grpcServer.Server.GracefulStop()
	wg.Wait()
}
