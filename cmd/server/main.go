package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gyaneshwarpardhi/pathsolver/internal/api"
	"github.com/gyaneshwarpardhi/pathsolver/internal/config"
	"github.com/gyaneshwarpardhi/pathsolver/internal/engine"
	"github.com/gyaneshwarpardhi/pathsolver/internal/ingest"
	"github.com/gyaneshwarpardhi/pathsolver/internal/logging"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (defaults when empty)")
	addr := flag.String("addr", "", "HTTP listen address (overrides server.addr)")
	flag.Parse()

	// ── Load config ──────────────────────────────────────────────────────────
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Engine ────────────────────────────────────────────────────────────────
	eng := engine.New(ctx, cfg.Engine, logger)

	// ── Preload graph file ────────────────────────────────────────────────────
	if cfg.Graph.Path != "" {
		p, err := ingest.ReadFile(cfg.Graph.Path)
		if err != nil {
			slog.Error("failed to read graph file", "err", err)
			os.Exit(1)
		}
		if _, err := eng.LoadGraph(ctx, "file", p.Edges, p.BuildOptions()...); err != nil {
			slog.Error("failed to load graph file", "err", err)
			os.Exit(1)
		}
	} else {
		slog.Info("no graph file configured; waiting for upload")
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.New(eng, api.Options{
		MaxUploadBytes: cfg.Graph.MaxUploadBytes,
		MaxBatch:       cfg.Engine.MaxBatch,
	}, logger)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutMs) * time.Millisecond,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutMs) * time.Millisecond,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	if cfg.Graph.Path != "" && cfg.Graph.Watch {
		w := ingest.NewWatcher(cfg.Graph.Path, logger)
		w.OnChange(func(p *ingest.Payload) {
			if _, err := eng.LoadGraph(gctx, "file", p.Edges, p.BuildOptions()...); err != nil {
				slog.Warn("hot-reload skipped: graph rejected", "err", err)
			}
		})
		g.Go(func() error { return w.Run(gctx) })
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down…")
		shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "err", err)
		eng.Shutdown()
		os.Exit(1)
	}
	eng.Shutdown()
	slog.Info("goodbye")
}
