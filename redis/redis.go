package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"helpdesk/config"
)

const (
	typingTTL = 5 * time.Second
	cursorTTL = 24 * time.Hour
)

type RedisClient struct {
	Client *redis.Client
}

func NewRedisClient(cfg *config.RedisConfig) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("redis client connection test failed: %w", err)
	}

	return &RedisClient{Client: client}, nil
}

func (r *RedisClient) Close() error {
	return r.Client.Close()
}

func typingKey(conversationID uint, party string) string {
	return fmt.Sprintf("helpdesk:typing:%d:%s", conversationID, party)
}

// SetTyping records that a party (agent or user) is typing in a
// conversation. The key expires after a few seconds so a missed clear
// resets itself.
func (r *RedisClient) SetTyping(ctx context.Context, conversationID uint, party string, typing bool) error {
	key := typingKey(conversationID, party)
	if typing {
		return r.Client.Set(ctx, key, "1", typingTTL).Err()
	}
	return r.Client.Del(ctx, key).Err()
}

// GetTyping reports whether the given party is currently typing. Meant to
// be polled by the opposite party.
func (r *RedisClient) GetTyping(ctx context.Context, conversationID uint, party string) (bool, error) {
	_, err := r.Client.Get(ctx, typingKey(conversationID, party)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func cursorKey(departmentID uint) string {
	return fmt.Sprintf("helpdesk:rr:dept:%d", departmentID)
}

// LastAgent returns the round-robin cursor for a department, 0 when unset
// or expired.
func (r *RedisClient) LastAgent(ctx context.Context, departmentID uint) (uint, error) {
	val, err := r.Client.Get(ctx, cursorKey(departmentID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, nil
	}
	return uint(id), nil
}

// SetLastAgent advances the round-robin cursor. Concurrent selections race
// on this read-then-write; a lost update skips or repeats one agent in the
// rotation, which is tolerated.
func (r *RedisClient) SetLastAgent(ctx context.Context, departmentID, agentID uint) error {
	return r.Client.Set(ctx, cursorKey(departmentID), strconv.FormatUint(uint64(agentID), 10), cursorTTL).Err()
}

// OnlineUsers returns the websocket presence hash for a conversation room.
func (r *RedisClient) OnlineUsers(ctx context.Context, conversationID uint) (map[string]string, error) {
	key := fmt.Sprintf("helpdesk:conversation:%d:online_users", conversationID)
	result, err := r.Client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch online users for key %s: %w", key, err)
	}
	return result, nil
}
