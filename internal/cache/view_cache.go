package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"ecoviewer/internal/models"
)

const (
	keyPrefix = "ecoviewer:view:"

	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second
	DefaultViewTTL      = 30 * time.Second
)

// NewRedisClient connects to redis and checks the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis: addr is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return client, nil
}

// ViewCache keeps the latest rendered view of every mounted dashboard, so other processes
// can read it without a websocket.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewViewCache(client *redis.Client, ttl time.Duration) *ViewCache {
	if ttl <= 0 {
		ttl = DefaultViewTTL
	}
	return &ViewCache{client: client, ttl: ttl}
}

func Key(sessionID string) string {
	return keyPrefix + sessionID
}

// PublishView stores v under its session key. The key expires unless refreshed by the next poll.
func (c *ViewCache) PublishView(ctx context.Context, v models.DashboardView) error {
	if v.SessionID == "" {
		return errors.New("view cache: empty session id")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("view cache: encode: %w", err)
	}
	return c.client.Set(ctx, Key(v.SessionID), data, c.ttl).Err()
}

func (c *ViewCache) ClearView(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, Key(sessionID)).Err()
}

func (c *ViewCache) Close() error {
	return c.client.Close()
}
