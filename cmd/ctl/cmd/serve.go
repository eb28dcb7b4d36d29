package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/jpfielding/dicometa/internal/cache"
	"github.com/jpfielding/dicometa/internal/config"
	"github.com/jpfielding/dicometa/internal/database"
	"github.com/jpfielding/dicometa/internal/events"
	"github.com/jpfielding/dicometa/internal/metrics"
	"github.com/jpfielding/dicometa/internal/repository"
	"github.com/jpfielding/dicometa/internal/server"
	"github.com/jpfielding/dicometa/internal/service"
	"github.com/jpfielding/dicometa/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// NewServeCmd runs the HTTP API until the context is cancelled
func NewServeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the extraction HTTP API",
		Long:  "Serves the upload and lookup API. Configuration is read from the environment and an optional .env file; the --log-* flags override the LOG_* settings.",
		RunE: func(cmd *cobra.Command, args []string) error {
			envFiles, _ := cmd.Flags().GetStringSlice("env-file")
			cfg, err := config.Load(envFiles...)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
			}
			applyLogConfig(cmd, cfg.Log)
			return serve(ctx, cfg)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringSlice("env-file", nil, "env files to load instead of ./.env")
	pf.String("addr", ":8080", "listen address, overrides SERVER_ADDR")
	return cmd
}

// applyLogConfig replaces the flag configured logger with LOG_* unless the
// flags were given explicitly
func applyLogConfig(cmd *cobra.Command, lc config.LogConfig) {
	f := cmd.Flags()
	if f.Changed("log-level") || f.Changed("log-json") || f.Changed("log-file") {
		return
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}
	logCloser.Close()
	out, closer := logging.Output(os.Stdout, lc.File)
	logCloser = closer
	slog.SetDefault(logging.Logger(out, lc.JSON, level))
}

func serve(ctx context.Context, cfg *config.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	checks := map[string]server.Check{}
	opts := service.Options{Metrics: m, CacheTTL: cfg.Cache.TTL}

	switch cfg.Cache.Type {
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rc.Close()
		opts.Cache = rc
		checks["cache"] = rc.Ping
		slog.InfoContext(ctx, "Redis cache initialized", "addr", cfg.Redis.Addr)
	case "memory":
		mc := cache.NewMemoryCache(time.Minute)
		defer mc.Close()
		opts.Cache = mc
		slog.InfoContext(ctx, "Memory cache initialized")
	default:
		slog.InfoContext(ctx, "Cache disabled")
	}

	if cfg.Database.Enabled {
		db, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer database.Close(db)
		opts.Store = repository.NewPackageRepository(db)
		checks["database"] = func(ctx context.Context) error { return database.Ping(ctx, db) }
	}

	if cfg.RabbitMQ.Enabled {
		pub, err := events.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			return err
		}
		defer pub.Close()
		opts.Publisher = pub
		slog.InfoContext(ctx, "RabbitMQ publisher initialized", "queue", cfg.RabbitMQ.Queue)
	}

	sopts := server.Options{Server: cfg.Server, CORS: cfg.CORS, Checks: checks}
	if cfg.Metrics.Enabled {
		sopts.Metrics = m.Handler()
	}
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(service.NewExtractor(opts), sopts),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errc := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Server starting", "addr", cfg.Server.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.InfoContext(ctx, "Shutting down server...")
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.InfoContext(ctx, "Server stopped")
	return nil
}
