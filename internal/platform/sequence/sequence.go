// Package sequence hands out the numeric part of human-readable document
// numbers such as "IPD-B-10001".
package sequence

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
)

// Generator returns the next number in a series. Numbers from Random may
// repeat; callers that need uniqueness check against their store.
type Generator interface {
	Next(ctx context.Context) (int64, error)
}

// Random draws uniformly from [min, max]. It reproduces the legacy
// five-digit bill numbers and is the default when no Redis is configured.
type Random struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	min, max int64
}

func NewRandom(min, max int64) *Random {
	return NewRandomSeeded(min, max, time.Now().UnixNano())
}

func NewRandomSeeded(min, max, seed int64) *Random {
	if max < min {
		min, max = max, min
	}
	return &Random{rnd: rand.New(rand.NewSource(seed)), min: min, max: max}
}

func (r *Random) Next(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.min + r.rnd.Int63n(r.max-r.min+1), nil
}

// Counter is a process-local monotonic sequence.
type Counter struct {
	next atomic.Int64
}

func NewCounter(start int64) *Counter {
	c := &Counter{}
	c.next.Store(start)
	return c
}

func (c *Counter) Next(context.Context) (int64, error) {
	return c.next.Add(1) - 1, nil
}

// Redis keeps the sequence in a Redis key so that several server processes
// share one series of bill numbers.
type Redis struct {
	client *redis.Client
	key    string
	start  int64
}

func NewRedis(client *redis.Client, key string, start int64) *Redis {
	return &Redis{client: client, key: key, start: start}
}

func (r *Redis) Next(ctx context.Context) (int64, error) {
	// SETNX leaves an existing counter alone; the first INCR then yields start.
	if err := r.client.SetNX(ctx, r.key, r.start-1, 0).Err(); err != nil {
		return 0, fmt.Errorf("initialise sequence %s: %w", r.key, err)
	}
	n, err := r.client.Incr(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment sequence %s: %w", r.key, err)
	}
	return n, nil
}

// ConnectRedis parses a redis:// URL and verifies the server is reachable.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
