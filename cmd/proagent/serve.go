package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nadzzz/proagent/internal/config"
	"github.com/nadzzz/proagent/internal/health"
	"github.com/nadzzz/proagent/internal/storage"
	"github.com/nadzzz/proagent/internal/telemetry"
	"github.com/nadzzz/proagent/internal/transport"
	grpctransport "github.com/nadzzz/proagent/internal/transport/grpc"
	httptransport "github.com/nadzzz/proagent/internal/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daemon (HTTP/gRPC transports, health server, cleanup)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	config.SetupLogging(cfg.Logging)
	slog.Info("proagent starting", "version", version)

	shutdownTracing, err := telemetry.Setup(cfg.Tracing, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	a, err := build(cfg, slog.Default())
	if err != nil {
		return err
	}

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var transports []transport.Transport
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(httptransport.Options{
			Port:            cfg.Transports.HTTP.Port,
			Uploads:         a.uploads,
			Output:          a.out,
			Catalog:         a.resolver.Catalog(),
			Swagger:         cfg.Transports.HTTP.Swagger,
			MaxRequestBytes: requestLimit(cfg.Storage.MaxUploadBytes),
		}))
	}
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port, a.uploads,
			int(requestLimit(cfg.Storage.MaxUploadBytes))))
	}
	if len(transports) == 0 {
		return errors.New("no transports enabled; enable at least one in config")
	}

	healthServer := health.New(cfg.Server.HealthPort)
	healthServer.AddCheck("output_area", func(context.Context) error { return a.out.Writable() })

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return healthServer.ListenAndServe(gctx) })
	g.Go(func() error {
		return storage.RunCleanup(gctx, cfg.Storage.CleanupInterval, cfg.Storage.CleanupMaxAge,
			a.uploads.Dir(), a.out.Dir())
	})
	for _, t := range transports {
		g.Go(func() error {
			slog.Info("starting transport", "name", t.Name())
			return t.Listen(gctx, a.dispatcher)
		})
	}

	// Mark as ready once all transports are started.
	healthServer.SetReady(true)
	slog.Info("proagent ready",
		"transports", len(transports),
		"functions", a.registry.Names(),
		"health_port", cfg.Server.HealthPort)

	err = g.Wait()
	healthServer.SetReady(false)
	for _, t := range transports {
		if cerr := t.Close(); cerr != nil {
			slog.Error("transport close error", "name", t.Name(), "error", cerr)
		}
	}
	if err != nil {
		return err
	}
	slog.Info("proagent stopped")
	return nil
}

// requestLimit leaves room for form fields next to the largest upload.
func requestLimit(maxUpload int64) int64 {
	if maxUpload <= 0 {
		return 0
	}
	return maxUpload*4 + 1<<20
}
