package redisclient

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// wakeList is the list the API pushes job ids onto and the worker blocks on.
const wakeList = "repairhub:jobs:wake"

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// Wake pushes the job id so a blocked worker returns immediately.
func (c *Client) Wake(ctx context.Context, jobID string) error {
	return c.redisdb.LPush(ctx, wakeList, jobID).Err()
}

// PopWait blocks up to timeout for a wake signal. Returns ("", nil) on
// timeout so the caller falls back to its poll tick.
func (c *Client) PopWait(ctx context.Context, timeout time.Duration) (string, error) {
	// BRPOP needs its own read deadline beyond the client default
	res, err := c.redisdb.BRPop(ctx, timeout, wakeList).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}

	if len(res) != 2 {
		return "", nil
	}

	return res[1], nil
}
