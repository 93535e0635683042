package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/storage"
	"github.com/redis/go-redis/v9"
)

const (
	slotPrefix     = "slot:"
	changesChannel = "storage"
)

// RedisClient stores slots as plain Redis strings and announces every write
// on the storage channel so other server processes can refresh.
type RedisClient struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisClient creates a new Redis client
func NewRedisClient(ctx context.Context, addr, password string, db int, log *logger.Logger) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Test connection
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: client,
		log:    log.With("service", "RedisSlotStore"),
	}, nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

func slotKey(key string) string {
	return slotPrefix + key
}

// Slots

func (r *RedisClient) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, slotKey(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get slot %s: %w", key, err)
	}
	return v, true, nil
}

func (r *RedisClient) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, slotKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set slot %s: %w", key, err)
	}
	r.publish(ctx, storage.Change{Key: key, Value: value})
	return nil
}

func (r *RedisClient) Remove(ctx context.Context, key string) error {
	n, err := r.client.Del(ctx, slotKey(key)).Result()
	if err != nil {
		return fmt.Errorf("failed to remove slot %s: %w", key, err)
	}
	if n > 0 {
		r.publish(ctx, storage.Change{Key: key, Removed: true})
	}
	return nil
}

// Pub/Sub

func (r *RedisClient) publish(ctx context.Context, c storage.Change) {
	data, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := r.client.Publish(ctx, changesChannel, data).Err(); err != nil {
		// the write itself succeeded; watchers fall back to polling
		r.log.Warn("failed to publish slot change", "key", c.Key, "error", err)
	}
}

// Watch subscribes to slot changes made by any process sharing this Redis.
func (r *RedisClient) Watch(ctx context.Context) (<-chan storage.Change, error) {
	sub := r.client.Subscribe(ctx, changesChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to slot changes: %w", err)
	}

	out := make(chan storage.Change, 64)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				var c storage.Change
				if err := json.Unmarshal([]byte(m.Payload), &c); err != nil {
					r.log.Warn("bad slot change payload", "error", err)
					continue
				}
				select {
				case out <- c:
				default:
				}
			}
		}
	}()

	return out, nil
}

// AllowAction implements a Redis-backed token-bucket limiter per key (key+action),
// shared by every server process. Returns true if the action is allowed.
func (r *RedisClient) AllowAction(ctx context.Context, key, action string, rate, burst int) (bool, error) {
	rlKey := fmt.Sprintf("rl:%s:%s", action, key)
	// Lua script: manage tokens and last timestamp
	script := `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local vals = redis.call('HMGET', key, 'tokens', 'last')
local tokens = tonumber(vals[1])
local last = tonumber(vals[2])
if tokens == nil then tokens = burst end
if last == nil then last = now end
local delta = math.max(0, now - last)
local new_tokens = math.min(burst, tokens + (delta * rate / 1000))
local allowed = 0
if new_tokens >= 1 then
	new_tokens = new_tokens - 1
	allowed = 1
end
redis.call('HMSET', key, 'tokens', new_tokens, 'last', now)
redis.call('PEXPIRE', key, 60000)
return allowed
`

	now := time.Now().UnixMilli()
	res, err := r.client.Eval(ctx, script, []string{rlKey}, rate, burst, now).Result()
	if err != nil {
		return false, err
	}
	switch v := res.(type) {
	case int64:
		return v == 1, nil
	default:
		return false, fmt.Errorf("unexpected result from rate limiter: %T %v", res, res)
	}
}
