// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis provides the managed client behind the browser session slots.

Every browser session and its UI preferences live under TTL'd keys
("auth-storage:<sid>", "ui-storage:<sid>"), so the gateway itself stays
stateless and can be restarted or scaled out without logging anybody out.
*/
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 3 * time.Second
	ioTimeout   = 2 * time.Second
	pingTimeout = 2 * time.Second

	// Session reads happen once per request; a small pool is plenty.
	poolSize     = 10
	minIdleConns = 2

	// Redis often starts after the gateway under compose.
	connectAttempts = 3
	connectBackoff  = 250 * time.Millisecond
)

// NewClient parses a Redis URL and returns a client once Redis answers a
// ping, retrying a few times with linear backoff.
func NewClient(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis_url_invalid: %w", err)
	}
	options.PoolSize = poolSize
	options.MinIdleConns = minIdleConns
	options.DialTimeout = dialTimeout
	options.ReadTimeout = ioTimeout
	options.WriteTimeout = ioTimeout

	client := redis.NewClient(options)

	for attempt := 1; ; attempt++ {
		err = Ping(ctx, client)
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			_ = client.Close()
			return nil, err
		}

		logger.Warn("redis_not_ready", slog.Int("attempt", attempt), slog.Any("error", err))
		select {
		case <-time.After(time.Duration(attempt) * connectBackoff):
		case <-ctx.Done():
			_ = client.Close()
			return nil, fmt.Errorf("redis_ping_failed: %w", ctx.Err())
		}
	}

	logger.Info("redis_connected", slog.String("addr", options.Addr), slog.Int("db", options.DB))
	return client, nil
}

// Ping checks the client, bounded by a short timeout. It backs /ready.
func Ping(ctx context.Context, client redis.UniversalClient) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis_ping_failed: %w", err)
	}
	return nil
}
