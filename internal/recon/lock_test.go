package recon

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/Tsaitung/Orderly-sub008/pkg/errors"
)

type fakeLockStore struct {
	values   map[string]string
	counters map[string]int64
	setErr   error
	getErr   error
	delErr   error
	incrErr  error
	lastTTL  time.Duration
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{
		values:   map[string]string{},
		counters: map[string]int64{},
	}
}

func (f *fakeLockStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if f.setErr != nil {
		return false, f.setErr
	}
	if _, held := f.values[key]; held {
		return false, nil
	}
	f.values[key] = fmt.Sprint(value)
	f.lastTTL = ttl
	return true, nil
}

func (f *fakeLockStore) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeLockStore) Del(ctx context.Context, keys ...string) error {
	if f.delErr != nil {
		return f.delErr
	}
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeLockStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.counters[key]++
	return f.counters[key], nil
}

func (f *fakeLockStore) RunLockKey(restaurantOrgID, supplierOrgID, periodStart, periodEnd string) string {
	return strings.Join([]string{"orderly:recon:lock", restaurantOrgID, supplierOrgID, periodStart, periodEnd}, ":")
}

func (f *fakeLockStore) CounterKey(name string) string {
	return "orderly:counter:" + name
}

func testRunKey() RunKey {
	return RunKey{
		RestaurantOrgID: uuid.New(),
		SupplierOrgID:   uuid.New(),
		PeriodStart:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:       time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestRedisLockerAcquireAndRelease(t *testing.T) {
	store := newFakeLockStore()
	locker, err := NewRedisLocker(store, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	key := testRunKey()
	lease, err := locker.Acquire(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected acquire error: %v", err)
	}
	if len(store.values) != 1 {
		t.Fatalf("expected one held lock, got %d", len(store.values))
	}
	if store.lastTTL != time.Minute {
		t.Fatalf("expected 1m TTL, got %s", store.lastTTL)
	}

	if err := lease.Release(context.Background()); err != nil {
		t.Fatalf("unexpected release error: %v", err)
	}
	if len(store.values) != 0 {
		t.Fatal("expected lock to be freed")
	}
}

func TestRedisLockerRejectsHeldKey(t *testing.T) {
	store := newFakeLockStore()
	locker, err := NewRedisLocker(store, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	key := testRunKey()
	first, err := locker.Acquire(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected acquire error: %v", err)
	}

	_, err = locker.Acquire(context.Background(), key)
	if !pkgerrors.HasCode(err, pkgerrors.CodeReconciliationInFlight) {
		t.Fatalf("expected in-flight rejection, got %v", err)
	}

	// A different period is a different key and acquires freely.
	other := key
	other.PeriodStart = key.PeriodStart.AddDate(0, 1, 0)
	other.PeriodEnd = key.PeriodEnd.AddDate(0, 1, 0)
	if _, err := locker.Acquire(context.Background(), other); err != nil {
		t.Fatalf("unexpected acquire error for different key: %v", err)
	}

	if err := first.Release(context.Background()); err != nil {
		t.Fatalf("unexpected release error: %v", err)
	}
	if _, err := locker.Acquire(context.Background(), key); err != nil {
		t.Fatalf("expected re-acquire after release, got %v", err)
	}
}

func TestRedisLockerReleaseIsOwnerChecked(t *testing.T) {
	store := newFakeLockStore()
	locker, err := NewRedisLocker(store, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	key := testRunKey()
	lease, err := locker.Acquire(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected acquire error: %v", err)
	}

	// Simulate TTL expiry plus takeover by another run.
	lockKey := store.RunLockKey(
		key.RestaurantOrgID.String(),
		key.SupplierOrgID.String(),
		"2024-03-01",
		"2024-03-31",
	)
	store.values[lockKey] = "someone-else"

	if err := lease.Release(context.Background()); err != nil {
		t.Fatalf("unexpected release error: %v", err)
	}
	if store.values[lockKey] != "someone-else" {
		t.Fatal("release must not delete a lock owned by another run")
	}
}

func TestRedisLockerReleaseToleratesExpiredLock(t *testing.T) {
	store := newFakeLockStore()
	locker, err := NewRedisLocker(store, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lease, err := locker.Acquire(context.Background(), testRunKey())
	if err != nil {
		t.Fatalf("unexpected acquire error: %v", err)
	}
	store.values = map[string]string{}

	if err := lease.Release(context.Background()); err != nil {
		t.Fatalf("expected expired lock to release cleanly, got %v", err)
	}
}

func TestRedisLockerAcquireStoreError(t *testing.T) {
	store := newFakeLockStore()
	store.setErr = fmt.Errorf("connection refused")
	locker, err := NewRedisLocker(store, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = locker.Acquire(context.Background(), testRunKey())
	if !pkgerrors.HasCode(err, pkgerrors.CodeDataUnavailable) {
		t.Fatalf("expected data-unavailable wrap, got %v", err)
	}
}

func TestRedisLockerCountsAcquireAttempts(t *testing.T) {
	store := newFakeLockStore()
	locker, err := NewRedisLocker(store, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	key := testRunKey()
	if _, err := locker.Acquire(context.Background(), key); err != nil {
		t.Fatalf("unexpected acquire error: %v", err)
	}
	// A rejected acquire still counts as an attempt.
	if _, err := locker.Acquire(context.Background(), key); !pkgerrors.HasCode(err, pkgerrors.CodeReconciliationInFlight) {
		t.Fatalf("expected in-flight rejection, got %v", err)
	}

	if got := store.counters[store.CounterKey("run_attempts")]; got != 2 {
		t.Fatalf("expected 2 recorded attempts, got %d", got)
	}
}

func TestRedisLockerAcquireSurvivesCounterFailure(t *testing.T) {
	store := newFakeLockStore()
	store.incrErr = fmt.Errorf("connection refused")
	locker, err := NewRedisLocker(store, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := locker.Acquire(context.Background(), testRunKey()); err != nil {
		t.Fatalf("counter failure must not block acquisition, got %v", err)
	}
}
