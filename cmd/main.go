/*
Package main is the entry point for the BookFinder server.

The default command serves the HTTP and WebSocket API. The users subcommands
register and sign in accounts of the user directory from a terminal.
*/
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"bookfinder/internal/app/kv"
	"bookfinder/internal/configs"
	"bookfinder/internal/pkg/logx"
)

func main() {
	root := &cobra.Command{
		Use:           "bookfinder",
		Short:         "BookFinder state and user directory server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.AddCommand(newServeCommand(), newUsersCommand())

	if err := root.Execute(); err != nil {
		logx.Fatal(err, "BookFinder exited with an error")
	}
}

// bootstrap loads the configuration, initializes the global logger and opens the key-value store.
func bootstrap(ctx context.Context) (*configs.AppConfig, kv.Store, error) {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logx.InitGlobalLogger(cfg.IsDevelopment(), cfg.LogLevel); err != nil {
		return nil, nil, err
	}
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("storage_backend", cfg.StorageBackend).
		Dur("directory_latency", cfg.DirectoryLatency).
		Msg("Configuration loaded successfully")

	store, err := kv.Open(ctx, kv.Config{
		Backend:     cfg.StorageBackend,
		Path:        cfg.StoragePath,
		DatabaseDSN: cfg.DatabaseDSN,
		S3: kv.S3Config{
			BucketName:      cfg.S3BucketName,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			KeyPrefix:       cfg.S3KeyPrefix,
		},
	})
	if err != nil {
		return nil, nil, err
	}

	return cfg, store, nil
}
