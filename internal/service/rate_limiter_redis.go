package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ResendVerificationKeyPrefix agrupa los contadores de reenvio por direccion de correo.
const ResendVerificationKeyPrefix = "school-auth:resend-verification:"

const redisAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// redisResendLimiter cuenta reenvios de verificacion por correo en una ventana fija.
type redisResendLimiter struct {
	logger *zap.Logger
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

// NewRedisResendLimiter comparte el limite de reenvios entre instancias; prefix vacio usa ResendVerificationKeyPrefix.
func NewRedisResendLimiter(logger *zap.Logger, client *redis.Client, prefix string, window time.Duration, max int) RateLimiter {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = ResendVerificationKeyPrefix
	}
	return &redisResendLimiter{
		logger: logger,
		client: client,
		window: window,
		max:    max,
		prefix: prefix,
	}
}

// Allow deja pasar si Redis falla: el reenvio no debe quedar bloqueado por la cache.
func (l *redisResendLimiter) Allow(email string) bool {
	if l == nil || l.client == nil {
		return true
	}
	address := strings.ToLower(strings.TrimSpace(email))
	if address == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisAllowScript, []string{l.prefix + address}, seconds).Int()
	if err != nil {
		l.logger.Warn("resend limiter unavailable, allowing request", zap.String("email", address), zap.Error(err))
		return true
	}
	if count > l.max {
		l.logger.Info("resend verification throttled", zap.String("email", address), zap.Int("count", count))
		return false
	}
	return true
}
