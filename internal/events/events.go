package events

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"webhook-etl/internal/model"
)

// DefaultKey is the Redis list job events are pushed to
const DefaultKey = "webhook-etl:events"

// MemoryPublisher keeps the most recent events in process. It backs the
// manager when no Redis address is configured.
type MemoryPublisher struct {
	mu     sync.Mutex
	size   int
	events []model.JobEvent
}

// NewMemoryPublisher keeps the last size events, 100 when size <= 0
func NewMemoryPublisher(size int) *MemoryPublisher {
	if size <= 0 {
		size = 100
	}
	return &MemoryPublisher{size: size}
}

func (p *MemoryPublisher) Publish(_ context.Context, event model.JobEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	if len(p.events) > p.size {
		p.events = p.events[len(p.events)-p.size:]
	}
	return nil
}

// Recent returns the buffered events oldest first
func (p *MemoryPublisher) Recent() []model.JobEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.JobEvent(nil), p.events...)
}

// RedisPublisher pushes job events as JSON onto a Redis list
type RedisPublisher struct {
	client *redis.Client
	key    string
}

// NewRedisPublisher connects to Redis and pushes onto key, DefaultKey when empty
func NewRedisPublisher(addr, password string, db int, key string) *RedisPublisher {
	if key == "" {
		key = DefaultKey
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 2 * time.Second,
	})

	// Unreachable Redis is not fatal; publishing will log failures per event
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Failed to connect to Redis at %s: %v", addr, err)
	}

	return &RedisPublisher{client: rdb, key: key}
}

func (p *RedisPublisher) Publish(ctx context.Context, event model.JobEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.LPush(ctx, p.key, data).Err()
}

// Next pops the oldest pending event, waiting up to timeout. It returns
// nil, nil when nothing arrived in time.
func (p *RedisPublisher) Next(ctx context.Context, timeout time.Duration) (*model.JobEvent, error) {
	result, err := p.client.BRPop(ctx, timeout, p.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// result[0] is the key, result[1] the payload
	var event model.JobEvent
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (p *RedisPublisher) Close() error { return p.client.Close() }
