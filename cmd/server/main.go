// Command server exposes the read API over the indexed corpus. The store is
// opened read-only, so the server can run alongside a harvest pass.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/presswire/newsdex/internal/api"
	"github.com/presswire/newsdex/internal/config"
	"github.com/presswire/newsdex/internal/logger"
	"github.com/presswire/newsdex/internal/store"
)

func main() {
	configPath := flag.String("config", "", "optional config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	st, err := store.OpenReadOnly(cfg.StorePath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      api.NewRouter(st, zl),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	zl.InfoObj("server listening", "server_start", map[string]any{"addr": cfg.ServerAddr})

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.ErrorObj("server failed", "server_error", map[string]any{"error": err.Error()})
			zl.Sync()
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zl.ErrorObj("server shutdown failed", "server_shutdown_error", map[string]any{"error": err.Error()})
		}
	}
}
