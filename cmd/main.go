package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"imap-telegram-forwarder/internal/config"
	"imap-telegram-forwarder/internal/control"
	"imap-telegram-forwarder/internal/logging"
	"imap-telegram-forwarder/internal/models"
	"imap-telegram-forwarder/internal/supervisor"

	"github.com/cockroachdb/errors"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Log.Infof("No configuration file at %s, waiting for POST /configure", *configPath)
		cfg = &models.Config{Listen: models.DefaultListenAddress, LogLevel: models.DefaultLogLevel}
	case err != nil:
		logging.Log.Fatalf("Error reading configuration file: %v", err)
	}

	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		logging.Log.Warnf("Unknown log level %q, keeping info", cfg.LogLevel)
	}

	worker := supervisor.New(supervisor.DefaultScannerFactory)
	if cfg.Forwarder != nil {
		res := worker.Configure(*cfg.Forwarder)
		logging.Log.Infof("Worker started on startup because config exists: %s", res.Message)
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           control.New(worker).Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// Stop can block for the grace period
		WriteTimeout: supervisor.DefaultStopGrace + 5*time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logging.Log.Infof("Control API listening on %s", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logging.Log.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Log.Errorf("Server shutdown error: %v", err)
	}

	worker.Stop()
	logging.Log.Info("Stopped")
}
