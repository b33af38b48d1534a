package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRefreshStoreTTL = 30 * 24 * time.Hour

// RefreshTokenStore guarda el jti de cada refresh token emitido para poder rotarlo o revocarlo.
type RefreshTokenStore interface {
	Store(jti string, accountID int64, ttl time.Duration) error
	Exists(jti string) (bool, error)
	Revoke(jti string) error
}

type memoryRefreshEntry struct {
	accountID int64
	expiresAt time.Time
}

type memoryRefreshTokenStore struct {
	mu    sync.Mutex
	items map[string]memoryRefreshEntry
}

func NewMemoryRefreshTokenStore() RefreshTokenStore {
	return &memoryRefreshTokenStore{
		items: make(map[string]memoryRefreshEntry),
	}
}

func (s *memoryRefreshTokenStore) Store(jti string, accountID int64, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultRefreshStoreTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[jti] = memoryRefreshEntry{accountID: accountID, expiresAt: time.Now().UTC().Add(ttl)}
	return nil
}

func (s *memoryRefreshTokenStore) Exists(jti string) (bool, error) {
	jti = strings.TrimSpace(jti)
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[jti]
	if !ok {
		return false, nil
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(s.items, jti)
		return false, nil
	}
	return true, nil
}

func (s *memoryRefreshTokenStore) Revoke(jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, strings.TrimSpace(jti))
	return nil
}

type redisKV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisRefreshTokenStore struct {
	client redisKV
	prefix string
}

func NewRedisRefreshTokenStore(client *redis.Client) RefreshTokenStore {
	if client == nil {
		return nil
	}
	return &redisRefreshTokenStore{
		client: client,
		prefix: "auth:refresh:",
	}
}

func (s *redisRefreshTokenStore) Store(jti string, accountID int64, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultRefreshStoreTTL
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+jti, strconv.FormatInt(accountID, 10), ttl).Err()
}

func (s *redisRefreshTokenStore) Exists(jti string) (bool, error) {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	n, err := s.client.Exists(ctx, s.prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisRefreshTokenStore) Revoke(jti string) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Del(ctx, s.prefix+jti).Err()
}
