package redisclient

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const opTimeout = 2 * time.Second

type Config struct {
	Addr     string
	Password string
	DB       int
}

// Client wraps the go-redis handle. Redis backs only the shared login
// throttle here, so the process treats it as optional and the wrapper stays
// thin.
type Client struct {
	rdb *redis.Client
}

func New(cfg Config) *Client {
	// Short timeouts keep a slow Redis from stalling logins; the throttle
	// fails open on error anyway.
	return &Client{rdb: redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  opTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Raw exposes the underlying client for callers that need pipeline access.
func (c *Client) Raw() *redis.Client {
	return c.rdb
}
