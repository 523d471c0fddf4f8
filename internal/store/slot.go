package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Slot is one durable key-value entry holding an opaque blob.
type Slot interface {
	// Get returns the stored bytes; ok is false when nothing is stored under key.
	Get(ctx context.Context, key string) (b []byte, ok bool, err error)
	// Put overwrites the value stored under key.
	Put(ctx context.Context, key string, b []byte) error
	Close() error
}

type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
)

func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(BackendFile):
		return BackendFile, nil
	case string(BackendSQLite):
		return BackendSQLite, nil
	case string(BackendRedis):
		return BackendRedis, nil
	default:
		return "", fmt.Errorf("unknown backend: %q (expected file|sqlite|redis)", s)
	}
}

type SlotConfig struct {
	Backend Backend
	// Dir holds the file and sqlite backends' data.
	Dir string
	// RedisURL is a redis:// URL for the redis backend.
	RedisURL    string
	RedisPrefix string
}

// OpenSlot opens the backend named by cfg.
func OpenSlot(ctx context.Context, cfg SlotConfig) (Slot, error) {
	switch cfg.Backend {
	case "", BackendFile:
		if strings.TrimSpace(cfg.Dir) == "" {
			return nil, fmt.Errorf("file backend: missing dir")
		}
		return &FileSlot{Dir: cfg.Dir}, nil
	case BackendSQLite:
		if strings.TrimSpace(cfg.Dir) == "" {
			return nil, fmt.Errorf("sqlite backend: missing dir")
		}
		return OpenSQLiteSlot(ctx, filepath.Join(cfg.Dir, sqliteFileName))
	case BackendRedis:
		return OpenRedisSlot(ctx, cfg.RedisURL, cfg.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown backend: %q", string(cfg.Backend))
	}
}

func validateKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("slot key is empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid slot key: %q", key)
	}
	return nil
}
