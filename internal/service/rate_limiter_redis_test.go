package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type mockRedisEvaler struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	result     int64
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.result)
	return cmd
}

func TestRedisRateLimiterAllow(t *testing.T) {
	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisResendLimiter
		if !l.Allow("user@school.ru") {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		l := &redisResendLimiter{
			logger: zap.NewNop(),
			client: &mockRedisEvaler{result: 1},
			window: time.Minute,
			max:    3,
			prefix: ResendVerificationKeyPrefix,
		}
		if l.Allow("   ") {
			t.Fatalf("expected empty key to be rejected")
		}
	})

	t.Run("allow when count within max", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 2}
		l := &redisResendLimiter{
			logger: zap.NewNop(),
			client: mock,
			window: 2 * time.Minute,
			max:    3,
			prefix: ResendVerificationKeyPrefix,
		}
		if !l.Allow(" User@School.ru ") {
			t.Fatalf("expected allow when count <= max")
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "school-auth:resend-verification:user@school.ru" {
			t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 120 {
			t.Fatalf("expected TTL seconds=120, got %+v", mock.lastArgs)
		}
		if mock.lastScript != redisAllowScript {
			t.Fatalf("expected script to match")
		}
	})

	t.Run("deny when count exceeds max", func(t *testing.T) {
		l := &redisResendLimiter{
			logger: zap.NewNop(),
			client: &mockRedisEvaler{result: 4},
			window: time.Minute,
			max:    3,
			prefix: ResendVerificationKeyPrefix,
		}
		if l.Allow("user@school.ru") {
			t.Fatalf("expected deny when count > max")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := &redisResendLimiter{
			logger: zap.NewNop(),
			client: &mockRedisEvaler{err: errors.New("redis down")},
			window: time.Minute,
			max:    3,
			prefix: ResendVerificationKeyPrefix,
		}
		if !l.Allow("user@school.ru") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}

func TestMemoryRateLimiterAllow(t *testing.T) {
	l := NewRateLimiter(time.Minute, 2)
	if !l.Allow("a@school.ru") || !l.Allow("a@school.ru") {
		t.Fatalf("expected first two hits allowed")
	}
	if l.Allow("a@school.ru") {
		t.Fatalf("expected third hit denied")
	}
	if !l.Allow("b@school.ru") {
		t.Fatalf("expected other keys unaffected")
	}
}

func TestNewRedisResendLimiter(t *testing.T) {
	if l := NewRedisResendLimiter(zap.NewNop(), nil, "x:", time.Minute, 1); l != nil {
		t.Fatalf("expected nil limiter for nil client")
	}

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	l, ok := NewRedisResendLimiter(nil, client, "  ", 0, 0).(*redisResendLimiter)
	if !ok {
		t.Fatalf("expected redis-backed limiter")
	}
	if l.prefix != ResendVerificationKeyPrefix {
		t.Fatalf("expected default prefix, got %q", l.prefix)
	}
	if l.window != time.Minute || l.max != 1 || l.logger == nil {
		t.Fatalf("unexpected defaults: window=%v max=%d", l.window, l.max)
	}
}
