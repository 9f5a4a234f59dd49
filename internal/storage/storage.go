package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"alcyxob/gym-manager/internal/config"
)

// FileStorage defines the interface for storing uploaded files.
type FileStorage interface {
	// Save stores r under key and returns the URL the file is served from.
	Save(ctx context.Context, key, contentType string, r io.Reader) (string, error)

	// Delete removes the object stored under key. A missing object is not an error.
	Delete(ctx context.Context, key string) error

	// KeyFromURL recovers the key of a URL returned by Save. ok is false for
	// URLs this storage did not produce.
	KeyFromURL(url string) (key string, ok bool)
}

var ErrUnknownDriver = errors.New("storage: unknown driver")

// Storage drivers accepted in storage.driver.
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// New builds the storage selected by cfg.Storage.Driver.
func New(cfg config.Config) (FileStorage, error) {
	switch strings.ToLower(cfg.Storage.Driver) {
	case "", DriverLocal:
		return NewLocalStorage(cfg.Server.StaticDir, cfg.Server.StaticPrefix)
	case DriverS3:
		return NewS3Storage(cfg.S3)
	}
	return nil, ErrUnknownDriver
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

func trimURL(base, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}
