package lock

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "checkout:lock:"

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Redis is a per-user lock shared by every process using the same Redis.
// The key expires after ttl so a crashed holder cannot block the user forever.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	logger *zap.Logger
}

func NewRedis(client *redis.Client, ttl, wait time.Duration, logger *zap.Logger) *Redis {
	return &Redis{client: client, ttl: ttl, wait: wait, logger: logger}
}

func Key(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

// Lock polls SET NX with backoff until it wins or the wait limit passes.
func (r *Redis) Lock(ctx context.Context, userID int64) (func(), error) {
	key := Key(userID)
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, r.wait)
	defer cancel()

	backoff := 10 * time.Millisecond
	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", ErrNotAcquired, ctx.Err())
			}
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return r.unlockFunc(key, token), nil
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrNotAcquired, ctx.Err())
		}
		if backoff < 200*time.Millisecond {
			backoff *= 2
		}
	}
}

func (r *Redis) unlockFunc(key, token string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		n, err := releaseScript.Run(ctx, r.client, []string{key}, token).Int()
		if err != nil {
			r.logger.Error("release checkout lock", zap.String("key", key), zap.Error(err))
			return
		}
		if n == 0 {
			r.logger.Warn("checkout lock expired before release", zap.String("key", key))
		}
	}
}
