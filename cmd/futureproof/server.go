package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/futureproofai/futureproof/internal/affinity"
	"github.com/futureproofai/futureproof/internal/api"
	"github.com/futureproofai/futureproof/internal/assessment"
	"github.com/futureproofai/futureproof/internal/config"
	"github.com/futureproofai/futureproof/internal/dataset"
	"github.com/futureproofai/futureproof/internal/engine"
	"github.com/futureproofai/futureproof/internal/inference"
	"github.com/futureproofai/futureproof/internal/storage"
)

func runServer() error {
	fmt.Fprintf(os.Stderr, "futureproof version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, err := engine.NewGemini(ctx, cfg.Gemini.APIKey)
	if err != nil {
		return fmt.Errorf("initializing generative engine: %w", err)
	}

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Reference dataset is optional; without it every request takes the
	// generative path.
	var matcher inference.DomainMatcher
	if cfg.Dataset.Path != "" {
		ds, err := dataset.Load(cfg.Dataset.Path)
		if err != nil {
			return fmt.Errorf("loading reference dataset: %w", err)
		}
		m := affinity.NewMatcher(eng, cfg.Gemini.EmbedModel, ds)
		if err := m.WarmUp(ctx); err != nil {
			slog.Warn("profile index warm-up failed, will retry lazily", "error", err)
		}
		matcher = m
		slog.Info("reference dataset loaded", "profiles", len(ds.Profiles))
	}

	gen := inference.NewGenerator(eng, inference.RetryPolicy{
		Attempts: cfg.Engine.RetryAttempts,
		Backoff:  cfg.Engine.RetryBackoff,
	}, store, cfg.Engine.CallTimeout)

	orch := inference.NewOrchestrator(gen, matcher, inference.NewCache(cfg.Engine.CacheTTL), inference.Options{
		FlashModel:        cfg.Gemini.FlashModel,
		DatasetThreshold:  cfg.Engine.DatasetThreshold,
		MaxGrowthSkills:   cfg.Engine.MaxGrowthSkills,
		MaxCertifications: cfg.Engine.MaxCertifications,
	})

	assessments := assessment.NewGenerator(gen, cfg.Gemini.ProModel, cfg.Engine.MCQCount)

	handler := api.NewAppHandler(api.AppDeps{
		Orchestrator: orch,
		Assessments:  assessments,
		Store:        store,
		Token:        cfg.Server.APIToken,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// MCP server over stdio, alongside the HTTP API.
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Orchestrator: orch,
		Assessments:  assessments,
		Store:        store,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "futureproof listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
