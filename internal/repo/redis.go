package repo

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/go-redis/redis/v8"
)

const csrfTTL = 12 * time.Hour

// Redis backs the per-user CSRF tokens handed out at login and checked on
// every state-changing request.
type Redis struct {
	cli *redis.Client
}

func NewRedis(addr string) *Redis {
	return &Redis{cli: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *Redis) Close() error { return r.cli.Close() }

func (r *Redis) Ping(ctx context.Context) error { return r.cli.Ping(ctx).Err() }

func (r *Redis) Issue(ctx context.Context, uid string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	if err := r.cli.Set(ctx, "csrf:"+uid, token, csrfTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (r *Redis) Validate(ctx context.Context, uid, token string) (bool, error) {
	stored, err := r.cli.Get(ctx, "csrf:"+uid).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return token != "" && stored == token, nil
}
