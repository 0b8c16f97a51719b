/*
Package kv provides the persistent key-value store that holds BookFinder data.

Values are opaque strings, normally JSON documents. A missing key is reported
as ok == false, never as an error. Several backends share the Store interface;
Open selects one from a Config.
*/
package kv

import (
	"context"
	"fmt"
)

// Store is a string key-value store.
// Implementations are safe for concurrent use.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Config selects and configures a backend.
type Config struct {
	Backend string

	// Path is the file location for the file and sqlite backends.
	Path string

	// DatabaseDSN is the connection string for the postgres backend.
	DatabaseDSN string

	S3 S3Config
}

// Open creates the backend named by cfg.Backend, wrapped with tracing.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Backend {
	case BackendMemory:
		store = NewMemory()
	case BackendFile:
		store, err = NewFile(cfg.Path)
	case BackendSQLite:
		store, err = NewSQLite(cfg.Path)
	case BackendPostgres:
		store, err = NewPostgres(ctx, cfg.DatabaseDSN)
	case BackendS3:
		store, err = NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown kv backend %q", cfg.Backend)
	}

	if err != nil {
		return nil, fmt.Errorf("open %s kv backend: %w", cfg.Backend, err)
	}

	return WithTracing(store, cfg.Backend), nil
}

// Keys names the four persisted entries of the application.
type Keys struct {
	Users     string
	Favorites string
	History   string
	User      string
}

// DefaultPrefix keeps key names compatible with data exported from the web client.
const DefaultPrefix = "bookFinder"

// KeysFor derives the persisted key names from prefix. An empty prefix uses DefaultPrefix.
func KeysFor(prefix string) Keys {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Keys{
		Users:     prefix + "Users",
		Favorites: prefix + "Favorites",
		History:   prefix + "History",
		User:      prefix + "User",
	}
}
