package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"mutevote/internal/config"
	"mutevote/internal/engine"
	"mutevote/internal/logging"
	"mutevote/internal/onebot"
	"mutevote/internal/registry"
	"mutevote/internal/server"
)

const resolutionDrainTimeout = 10 * time.Second

func runGracefulShutdown(srv *server.Server, eng *engine.Engine) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		if !eng.WaitWithTimeout(resolutionDrainTimeout) {
			slog.Warn("Abandoning votes still inside their window", "timeout", resolutionDrainTimeout)
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.EffectiveLogLevel(), cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	client := onebot.NewClient(cfg.OneBotAPIURL, cfg.BackendTimeout)
	store := registry.New()

	eng := engine.New(store, client, client, clock, cfg.VoteWindow(), cfg.DefaultMuteMinutes)

	srv := server.NewServer(cfg, eng, store, client)

	done := runGracefulShutdown(srv, eng)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
