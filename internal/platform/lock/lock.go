// Package lock serializes reconciliation. Local covers a single process; Redis
// extends the guarantee across instances sharing one database.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/ispbill/pkg/config"
	"github.com/fatflowers/ispbill/pkg/tool"
)

var (
	// ErrLockNotAcquired is returned when the lock could not be taken before
	// the wait timeout or the context expired.
	ErrLockNotAcquired = errors.New("reconciliation lock not acquired")
	// ErrLockLost is returned on release when the lease could not be renewed
	// and another holder may have run in the meantime.
	ErrLockLost = errors.New("reconciliation lock lost")
)

// Unlock releases a held lock.
type Unlock func(ctx context.Context) error

type Locker interface {
	Lock(ctx context.Context) (Unlock, error)
	// Distributed reports whether other processes may change the database
	// between two acquisitions.
	Distributed() bool
}

// Local is a context-aware mutex.
type Local struct {
	ch chan struct{}
}

func NewLocal() *Local {
	return &Local{ch: make(chan struct{}, 1)}
}

func (l *Local) Lock(ctx context.Context) (Unlock, error) {
	select {
	case l.ch <- struct{}{}:
		return func(context.Context) error {
			<-l.ch
			return nil
		}, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrLockNotAcquired, ctx.Err())
	}
}

func (l *Local) Distributed() bool { return false }

// release deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call('get', KEYS[1]) == ARGV[1] then
  return redis.call('del', KEYS[1])
else
  return 0
end
`)

// extend pushes the expiry out only while the key still holds our token.
var extendScript = redis.NewScript(`
if redis.call('get', KEYS[1]) == ARGV[1] then
  return redis.call('pexpire', KEYS[1], ARGV[2])
else
  return 0
end
`)

const retryInterval = 50 * time.Millisecond

// Redis is a SET NX PX lock. The lease is renewed every third of the TTL
// while held, so the TTL only bounds how long a crashed holder blocks others.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	wait   time.Duration
	// local keeps goroutines of this process from spinning on Redis.
	local *Local
}

func NewRedis(client *redis.Client, key string, ttl, wait time.Duration) *Redis {
	return &Redis{client: client, key: key, ttl: ttl, wait: wait, local: NewLocal()}
}

func (r *Redis) Lock(ctx context.Context) (Unlock, error) {
	if r.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.wait)
		defer cancel()
	}
	unlockLocal, err := r.local.Lock(ctx)
	if err != nil {
		return nil, err
	}

	token := tool.GenerateUUIDV7()
	for {
		ok, err := r.client.SetNX(ctx, r.key, token, r.ttl).Result()
		if err == nil && ok {
			return r.hold(ctx, token, unlockLocal), nil
		}
		if err != nil && ctx.Err() == nil {
			_ = unlockLocal(ctx)
			return nil, fmt.Errorf("failed to acquire lock %s: %w", r.key, err)
		}

		select {
		case <-time.After(retryInterval):
		case <-ctx.Done():
			_ = unlockLocal(ctx)
			return nil, fmt.Errorf("%w: %s: %v", ErrLockNotAcquired, r.key, ctx.Err())
		}
	}
}

// hold keeps the lease alive until the returned Unlock runs.
func (r *Redis) hold(ctx context.Context, token string, unlockLocal Unlock) Unlock {
	renewCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	var lost atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(max(r.ttl/3, time.Millisecond))
		defer ticker.Stop()
		for {
			select {
			case <-renewCtx.Done():
				return
			case <-ticker.C:
				n, err := extendScript.Run(renewCtx, r.client, []string{r.key}, token, r.ttl.Milliseconds()).Int64()
				if renewCtx.Err() != nil {
					return
				}
				// a transient error leaves the remaining lease to the next tick
				if err == nil && n == 0 {
					lost.Store(true)
					return
				}
			}
		}
	}()

	return func(ctx context.Context) error {
		stop()
		wg.Wait()
		defer unlockLocal(ctx)
		if err := releaseScript.Run(ctx, r.client, []string{r.key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock %s: %w", r.key, err)
		}
		if lost.Load() {
			return fmt.Errorf("%w: %s", ErrLockLost, r.key)
		}
		return nil
	}
}

func (r *Redis) Distributed() bool { return true }

// New returns a Redis lock when lock.redis_addr is configured and a Local
// lock otherwise.
func New(lc fx.Lifecycle, cfg *config.Config, log *zap.SugaredLogger) (Locker, error) {
	if cfg.Lock.RedisAddr == "" {
		log.Infow("reconciliation lock is process local")
		return NewLocal(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Lock.RedisAddr,
		Password: cfg.Lock.RedisPassword,
		DB:       cfg.Lock.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect redis at %s: %w", cfg.Lock.RedisAddr, err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Infow("closing redis client")
			return client.Close()
		},
	})
	log.Infow("reconciliation lock is distributed", "addr", cfg.Lock.RedisAddr, "key", cfg.Lock.Key, "ttl", cfg.Lock.TTL)
	return NewRedis(client, cfg.Lock.Key, cfg.Lock.TTL, cfg.Lock.WaitTimeout), nil
}

var Module = fx.Options(
	fx.Provide(New),
)
