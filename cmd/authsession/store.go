package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MrEthical07/authsession"
	"github.com/MrEthical07/authsession/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// embeddedRedis selects an in-process miniredis instead of a real server.
const embeddedRedis = "embedded"

func openStore(ctx context.Context, cfg authsession.StoreConfig, logger *zap.Logger) (authsession.DurableStore, func(), error) {
	switch cfg.Driver {
	case "memory":
		return store.NewMemoryStore(), func() {}, nil

	case "file":
		fs, err := store.NewFileStore(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		logger.Debug("using file store", zap.String("path", fs.Path()))
		return fs, func() {}, nil

	case "sqlite":
		path := cfg.Path
		if path == "" {
			dir, err := store.DefaultFileDir()
			if err != nil {
				return nil, nil, err
			}
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, nil, err
			}
			path = filepath.Join(dir, "session.db")
		}
		db, err := store.OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Debug("using sqlite store", zap.String("path", path))
		return db, func() { _ = db.Close() }, nil

	case "redis":
		addr := cfg.RedisAddr
		var mr *miniredis.Miniredis
		if addr == embeddedRedis {
			var err error
			mr, err = miniredis.Run()
			if err != nil {
				return nil, nil, fmt.Errorf("start miniredis: %w", err)
			}
			addr = mr.Addr()
			logger.Warn("using embedded miniredis; the session ends with the process", zap.String("addr", addr))
		}

		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			if mr != nil {
				mr.Close()
			}
			return nil, nil, fmt.Errorf("%w: %v", store.ErrRedisUnavailable, err)
		}
		logger.Debug("using redis store", zap.String("addr", addr))

		cleanup := func() {
			_ = client.Close()
			if mr != nil {
				mr.Close()
			}
		}
		return store.NewRedisStore(client, ""), cleanup, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
