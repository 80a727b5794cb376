package recon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/Tsaitung/Orderly-sub008/pkg/errors"
)

const (
	defaultLockTTL = 5 * time.Minute

	runAttemptsCounter = "run_attempts"
	attemptCounterTTL  = 24 * time.Hour
)

// RunKey identifies the serialization scope of a reconciliation run: at most
// one run may be in flight per (restaurant, supplier, period).
type RunKey struct {
	RestaurantOrgID uuid.UUID
	SupplierOrgID   uuid.UUID
	PeriodStart     time.Time
	PeriodEnd       time.Time
}

// Locker serializes runs per RunKey. A second acquire for a held key is
// rejected with RECONCILIATION_IN_PROGRESS rather than blocking.
type Locker interface {
	Acquire(ctx context.Context, key RunKey) (Lease, error)
}

// Lease releases a held run lock.
type Lease interface {
	Release(ctx context.Context) error
}

// redisStore defines the operations used by RedisLocker.
type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RunLockKey(restaurantOrgID, supplierOrgID, periodStart, periodEnd string) string
	CounterKey(name string) string
}

// RedisLocker implements Locker using Redis SETNX + TTL.
type RedisLocker struct {
	client redisStore
	ttl    time.Duration
}

// NewRedisLocker constructs a Redis-backed run locker. The TTL guards
// against locks orphaned by a crashed run.
func NewRedisLocker(client redisStore, ttl time.Duration) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client required for run locker")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl}, nil
}

// Acquire tries to own the run lock for the configured TTL.
func (l *RedisLocker) Acquire(ctx context.Context, key RunKey) (Lease, error) {
	// Best-effort rolling counter of acquisition attempts; lock behavior
	// does not depend on it.
	_, _ = l.client.IncrWithTTL(ctx, l.client.CounterKey(runAttemptsCounter), attemptCounterTTL)

	owner := uuid.NewString()
	lockKey := l.client.RunLockKey(
		key.RestaurantOrgID.String(),
		key.SupplierOrgID.String(),
		key.PeriodStart.Format("2006-01-02"),
		key.PeriodEnd.Format("2006-01-02"),
	)
	ok, err := l.client.SetNX(ctx, lockKey, owner, l.ttl)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataUnavailable, err, "acquiring run lock")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeReconciliationInFlight, "a reconciliation for this key is already running").
			WithDetails(map[string]string{
				"restaurant_org_id": key.RestaurantOrgID.String(),
				"supplier_org_id":   key.SupplierOrgID.String(),
				"period_start":      key.PeriodStart.Format("2006-01-02"),
				"period_end":        key.PeriodEnd.Format("2006-01-02"),
			})
	}
	return &redisLease{client: l.client, key: lockKey, owner: owner}, nil
}

type redisLease struct {
	client redisStore
	key    string
	owner  string
}

// Release frees the lock only if the owner value still matches.
func (l *redisLease) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	value, err := l.client.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != l.owner {
		return nil
	}
	if err := l.client.Del(ctx, l.key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	l.owner = ""
	return nil
}
