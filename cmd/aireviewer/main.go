package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	openaiadapter "github.com/ericfisherdev/aireviewer/internal/adapter/driven/openai"
	httphandler "github.com/ericfisherdev/aireviewer/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/aireviewer/internal/adapter/driving/web"
	"github.com/ericfisherdev/aireviewer/internal/application"
	"github.com/ericfisherdev/aireviewer/internal/config"
)

// sweepInterval is how often idle console sessions are dropped.
const sweepInterval = time.Minute

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	if !cfg.HasProviderCredentials() {
		return errors.New("AIREVIEWER_OPENAI_API_KEY is required")
	}
	slog.Info("config loaded",
		"env", cfg.Env,
		"listen_addr", cfg.ListenAddr,
		"model", cfg.Model,
		"provider_timeout", cfg.ProviderTimeout,
		"max_code_bytes", cfg.MaxCodeBytes,
		"allowed_origins", cfg.AllowedOrigins,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Create the review provider.
	provider, err := openaiadapter.NewProvider(openaiadapter.Config{
		APIKey:    cfg.OpenAIAPIKey,
		BaseURL:   cfg.OpenAIBaseURL,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
	})
	if err != nil {
		return fmt.Errorf("creating review provider: %w", err)
	}
	slog.Info("review provider created", "provider", provider.Name(), "model", provider.Model())

	// 4. Create application services.
	reviewSvc := application.NewReviewService(provider, cfg.MaxCodeBytes, cfg.ProviderTimeout, slog.Default())
	consoles := application.NewConsoleRegistry(cfg.SessionTTL, func() *application.Console {
		return application.NewConsole(application.WithMaxCodeBytes(cfg.MaxCodeBytes))
	})
	go consoles.Start(ctx, sweepInterval)

	// 5. Create HTTP handler and register gateway routes.
	apiHandler := httphandler.NewHandler(reviewSvc, slog.Default())
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	// 6. Create web handler and register console routes. The console talks to
	// the review service in-process.
	webHandler := webhandler.NewHandler(consoles, reviewSvc, cfg.MaxCodeBytes, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default(), cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.ProviderTimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 7. Log startup complete.
	slog.Info("aireviewer started",
		"listen_addr", cfg.ListenAddr,
		"console", "/app",
	)

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 9. Graceful shutdown; in-flight reviews get the provider timeout to drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ProviderTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	// 10. Log shutdown complete.
	slog.Info("shutdown complete")
	return nil
}
