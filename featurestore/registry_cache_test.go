package featurestore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fortio.org/assert"

	"github.com/aliyun/aliyun-pai-featurestore-online-go-sdk/domain"
)

type slowRegistry struct {
	Registry
	delay time.Duration
	calls atomic.Int64
}

func (r *slowRegistry) ListTables(ctx context.Context, project string) ([]domain.Table, error) {
	r.calls.Add(1)
	time.Sleep(r.delay)
	return r.Registry.ListTables(ctx, project)
}

// ctxRegistry fails ListTables when its context ends before delay.
type ctxRegistry struct {
	Registry
	delay time.Duration
	calls atomic.Int64
}

func (r *ctxRegistry) ListTables(ctx context.Context, project string) ([]domain.Table, error) {
	r.calls.Add(1)
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return r.Registry.ListTables(ctx, project)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRegistryCacheTTL(t *testing.T) {
	reg := newDriverRegistry()
	clock := &fakeClock{now: fixedNow}
	client := newTestClient(t, reg, newDriverStore(), WithRegistryTTL(time.Minute), WithClock(clock.Now))
	ctx := context.Background()
	assert.Equal(t, int64(1), reg.Fetches())

	_, err := client.ListTables(ctx, true)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), reg.Fetches())

	clock.Advance(2 * time.Minute)
	_, err = client.ListTables(ctx, true)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), reg.Fetches())

	_, err = client.ListTables(ctx, false)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), reg.Fetches())

	assert.NoError(t, client.RefreshRegistry(ctx))
	assert.Equal(t, int64(4), reg.Fetches())
}

func TestRegistryCacheForever(t *testing.T) {
	reg := newDriverRegistry()
	clock := &fakeClock{now: fixedNow}
	client := newTestClient(t, reg, newDriverStore(), WithRegistryTTL(0), WithClock(clock.Now))

	clock.Advance(240 * time.Hour)
	_, err := client.ListEntities(context.Background(), true)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), reg.Fetches())
}

func TestRegistryCacheRefreshPicksUpChanges(t *testing.T) {
	reg := newDriverRegistry()
	client := newTestClient(t, reg, newDriverStore(), WithRegistryTTL(0))
	ctx := context.Background()

	reg.AddFeatureBundle(projectName, &domain.FeatureBundle{Name: "late"})
	bundles, err := client.ListFeatureBundles(ctx, true)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(bundles))

	assert.NoError(t, client.RefreshRegistry(ctx))
	bundles, err = client.ListFeatureBundles(ctx, true)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(bundles))
}

func TestRegistryCacheSingleFlight(t *testing.T) {
	reg := &slowRegistry{Registry: newDriverRegistry(), delay: 100 * time.Millisecond}
	cache := NewRegistryCache(reg, time.Minute, nil)
	clock := &fakeClock{now: fixedNow}
	cache.now = clock.Now

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Project(context.Background(), projectName, true); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), reg.calls.Load())
}

func TestRegistryCacheCancelledCallerKeepsSharedFetch(t *testing.T) {
	reg := &ctxRegistry{Registry: newDriverRegistry(), delay: 100 * time.Millisecond}
	cache := NewRegistryCache(reg, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := cache.Project(ctx, projectName, true)
		first <- err
	}()
	time.Sleep(10 * time.Millisecond)

	second := make(chan error, 1)
	go func() {
		_, err := cache.Project(context.Background(), projectName, true)
		second <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected %v, got %v", context.Canceled, err)
	}
	assert.NoError(t, <-second)
	assert.Equal(t, int64(1), reg.calls.Load())

	_, err := cache.Project(context.Background(), projectName, true)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), reg.calls.Load())
}

func TestLoopLoadData(t *testing.T) {
	reg := newDriverRegistry()
	client, err := NewFeatureStoreClient(projectName, reg, newDriverStore(), WithLoopLoadData(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for reg.Fetches() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	client.Close()
	if reg.Fetches() < 3 {
		t.Fatalf("expected the loop to refresh, fetches=%d", reg.Fetches())
	}
	client.Close()
}
