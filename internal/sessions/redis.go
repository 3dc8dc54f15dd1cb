package sessions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in Redis with server-side expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	gen    func() (Token, error)
}

// NewRedisClient connects to Redis and verifies it responds.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

// NewRedisStore wraps client; a non-positive ttl stores sessions without expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, gen: newToken}
}

func (s *RedisStore) Create(ctx context.Context, userID string) (Token, error) {
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		token, err := s.gen()
		if err != nil {
			return 0, err
		}
		ok, err := s.client.SetNX(ctx, redisKey(token), userID, s.ttl).Result()
		if err != nil {
			return 0, fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			return token, nil
		}
	}
	return 0, errors.New("could not allocate unique session token")
}

func (s *RedisStore) Resolve(ctx context.Context, token Token) (string, error) {
	userID, err := s.client.Get(ctx, redisKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return userID, nil
}

func (s *RedisStore) Revoke(ctx context.Context, token Token) error {
	if err := s.client.Del(ctx, redisKey(token)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Reset deletes every session key.
func (s *RedisStore) Reset(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func redisKey(token Token) string {
	return redisKeyPrefix + strconv.FormatInt(int64(token), 10)
}

var _ Store = (*RedisStore)(nil)
