package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestLocal_SerializesAndHonorsContext(t *testing.T) {
	l := NewLocal()
	require.False(t, l.Distributed())

	unlock, err := l.Lock(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx)
	require.ErrorIs(t, err, ErrLockNotAcquired)

	require.NoError(t, unlock(context.Background()))
	unlock, err = l.Lock(context.Background())
	require.NoError(t, err)
	require.NoError(t, unlock(context.Background()))
}

func newRedisLock(t *testing.T, ttl, wait time.Duration) (*Redis, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "ispbill:test", ttl, wait), mr, client
}

func TestRedis_AcquireAndRelease(t *testing.T) {
	l, mr, _ := newRedisLock(t, time.Second, 200*time.Millisecond)
	require.True(t, l.Distributed())

	unlock, err := l.Lock(context.Background())
	require.NoError(t, err)
	require.True(t, mr.Exists("ispbill:test"))

	require.NoError(t, unlock(context.Background()))
	require.False(t, mr.Exists("ispbill:test"))
}

func TestRedis_HeldByOtherInstance(t *testing.T) {
	l, mr, _ := newRedisLock(t, time.Second, 100*time.Millisecond)
	require.NoError(t, mr.Set("ispbill:test", "someone-else"))

	_, err := l.Lock(context.Background())
	require.ErrorIs(t, err, ErrLockNotAcquired)
	// the other holder's key is untouched
	v, err := mr.Get("ispbill:test")
	require.NoError(t, err)
	require.Equal(t, "someone-else", v)
}

func TestRedis_ReleaseDoesNotDeleteForeignToken(t *testing.T) {
	l, mr, _ := newRedisLock(t, time.Second, 100*time.Millisecond)
	unlock, err := l.Lock(context.Background())
	require.NoError(t, err)

	// lease expired and another instance took over
	require.NoError(t, mr.Set("ispbill:test", "new-holder"))
	require.NoError(t, unlock(context.Background()))

	v, err := mr.Get("ispbill:test")
	require.NoError(t, err)
	require.Equal(t, "new-holder", v)
}

func TestRedis_ExpiredLeaseCanBeRetaken(t *testing.T) {
	l, mr, client := newRedisLock(t, time.Second, time.Second)
	require.NoError(t, client.Set(context.Background(), "ispbill:test", "crashed", time.Second).Err())
	mr.FastForward(2 * time.Second)

	unlock, err := l.Lock(context.Background())
	require.NoError(t, err)
	require.NoError(t, unlock(context.Background()))
}

func TestRedis_MutualExclusion(t *testing.T) {
	l, _, _ := newRedisLock(t, 5*time.Second, 5*time.Second)

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background())
			if err != nil {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			_ = unlock(context.Background())
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), atomic.LoadInt32(&maxInside))
}

func TestRedis_RenewsLeaseWhileHeld(t *testing.T) {
	l, mr, _ := newRedisLock(t, 300*time.Millisecond, time.Second)
	unlock, err := l.Lock(context.Background())
	require.NoError(t, err)

	// most of the lease is gone; the next renewal restores it
	mr.FastForward(250 * time.Millisecond)
	require.Eventually(t, func() bool {
		return mr.TTL("ispbill:test") > 200*time.Millisecond
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, unlock(context.Background()))
	require.False(t, mr.Exists("ispbill:test"))
}

func TestRedis_ReleaseReportsLostLease(t *testing.T) {
	l, mr, _ := newRedisLock(t, 90*time.Millisecond, time.Second)
	unlock, err := l.Lock(context.Background())
	require.NoError(t, err)

	require.NoError(t, mr.Set("ispbill:test", "new-holder"))
	// wait past at least one renewal attempt
	time.Sleep(100 * time.Millisecond)

	err = unlock(context.Background())
	require.ErrorIs(t, err, ErrLockLost)
	v, err := mr.Get("ispbill:test")
	require.NoError(t, err)
	require.Equal(t, "new-holder", v)
}
