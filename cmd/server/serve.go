package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chadiek/interview-coach/internal/config"
	"github.com/chadiek/interview-coach/internal/httpserver"
	"github.com/chadiek/interview-coach/internal/interview"
	"github.com/chadiek/interview-coach/internal/logging"
	"github.com/chadiek/interview-coach/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.HTTPAddress = addr
	}

	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	p, err := newProviders(cfg)
	if err != nil {
		return err
	}
	machine := interview.New(p.chat, p.stt, p.voice,
		interview.WithLogger(logger),
		interview.WithMaxQuestions(cfg.MaxQuestions),
		interview.WithQuestionTimeout(cfg.QuestionTimeout),
		interview.WithLanguage(cfg.TTSLanguage),
	)
	store := session.NewStore(cfg.SessionIdleTTL)

	srv := httpserver.New(httpserver.Deps{
		Store:   store,
		Machine: machine,
		Logger:  logger,
		Limiter: httpserver.NewRateLimiter(cfg.EventsPerSecond, cfg.EventBurst),
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go store.RunCleanup(ctx, 0)

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.HTTPAddress, "config", cfg.String())
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err)
		_ = server.Close()
	}
	return nil
}
