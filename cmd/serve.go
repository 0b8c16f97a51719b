package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"bookfinder/internal/app/directory"
	"bookfinder/internal/app/hub"
	"bookfinder/internal/app/kv"
	"bookfinder/internal/app/search"
	"bookfinder/internal/app/state"
	"bookfinder/internal/handler"
	"bookfinder/internal/pkg/logx"
	"bookfinder/internal/pkg/tracing"
)

const (
	// outbound requests to the search provider
	searchRate  = 5
	searchBurst = 5

	shutdownTimeout = 5 * time.Second
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and WebSocket API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, kvStore, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := kvStore.Close(); err != nil {
			logx.Error(err, "Failed to close key-value store")
		}
	}()

	shutdownTracing, err := tracing.Setup(ctx, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logx.Error(err, "Failed to flush traces")
		}
	}()

	keys := kv.KeysFor(cfg.StorageKeyPrefix)

	// Hydrate before attaching so restoring the snapshot does not write it back.
	store := state.NewStore()
	persister := state.NewPersister(kvStore, keys)
	persister.Hydrate(ctx, store)
	detach := persister.Attach(store)
	defer detach()

	users := directory.NewService(kvStore, directory.Options{
		UsersKey:         keys.Users,
		Latency:          cfg.DirectoryLatency,
		FavoritesLatency: cfg.FavoritesLatency,
		BcryptCost:       cfg.BcryptCost,
	})

	provider := search.NewOpenLibrary(cfg.SearchBaseURL, rate.Limit(searchRate), searchBurst)
	searcher := search.NewSearcher(provider, store, cfg.SearchPageSize)

	manager := hub.NewManager(hub.Deps{
		Store:     store,
		Directory: users,
		Searcher:  searcher,
		JWTSecret: cfg.JWTSecret,
	})

	router := handler.Router(ctx, &handler.AppDeps{
		Config:    cfg,
		Store:     store,
		Directory: users,
		Searcher:  searcher,
		Hub:       manager,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logx.Info(fmt.Sprintf("BookFinder Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logx.Info("Received shutdown signal. Starting graceful shutdown...")
	case err := <-serveErr:
		manager.Shutdown()
		return fmt.Errorf("server failed to start: %w", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	manager.Shutdown()

	logx.Info("Server gracefully stopped.")
	return nil
}
