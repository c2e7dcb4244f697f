package permcache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rbmarquez/doctorq/pkg/permcache"
	"github.com/rbmarquez/doctorq/pkg/rbac"
)

type response struct {
	set  *rbac.PermissionSet
	err  error
	gate chan struct{}
}

// scriptedFetcher answers the n-th call with responses[n], repeating the last one.
type scriptedFetcher struct {
	mu        sync.Mutex
	responses []response
	calls     atomic.Int32
	started   chan struct{}
}

func newScripted(responses ...response) *scriptedFetcher {
	return &scriptedFetcher{responses: responses, started: make(chan struct{}, 64)}
}

func (f *scriptedFetcher) Fetch(ctx context.Context, userID string) (*rbac.PermissionSet, error) {
	n := int(f.calls.Add(1)) - 1
	f.mu.Lock()
	r := f.responses[min(n, len(f.responses)-1)]
	f.mu.Unlock()

	f.started <- struct{}{}
	if r.gate != nil {
		<-r.gate
	}
	return r.set, r.err
}

func (f *scriptedFetcher) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-f.started:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch did not start")
	}
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func groupSet(groups ...rbac.Group) *rbac.PermissionSet {
	return rbac.NewPermissionSet(rbac.Snapshot{Groups: groups})
}

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, userID string) (*rbac.PermissionSet, error) {
	args := m.Called(ctx, userID)
	set, _ := args.Get(0).(*rbac.PermissionSet)
	return set, args.Error(1)
}

func TestGet_FreshEntryIsServedFromMemory(t *testing.T) {
	set := groupSet(rbac.GroupClinic)
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, "u1").Return(set, nil).Once()

	c := permcache.New(fetcher)
	ctx := context.Background()

	got, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Same(t, set, got)

	got, err = c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Same(t, set, got)

	fetcher.AssertExpectations(t)
	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Fetches)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestGet_InvalidUserID(t *testing.T) {
	c := permcache.New(newScripted(response{set: groupSet()}))
	set, err := c.Get(context.Background(), " ")
	assert.ErrorIs(t, err, permcache.ErrInvalidUserID)
	assert.True(t, set.IsEmpty())

	assert.ErrorIs(t, c.Set(context.Background(), "", groupSet()), permcache.ErrInvalidUserID)
}

func TestGet_CoalescesConcurrentCallers(t *testing.T) {
	gate := make(chan struct{})
	want := groupSet(rbac.GroupProfessional)
	fetcher := newScripted(response{set: want, gate: gate})
	c := permcache.New(fetcher)

	const callers = 32
	results := make([]*rbac.PermissionSet, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			set, err := c.Get(context.Background(), "u1")
			assert.NoError(t, err)
			results[i] = set
		}()
	}

	fetcher.waitStarted(t)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.calls.Load())
	for _, set := range results {
		assert.Same(t, want, set)
	}
}

func TestGet_FetchFailureYieldsEmptySet(t *testing.T) {
	fetcher := newScripted(response{err: errors.New("authority down")})
	c := permcache.New(fetcher)

	set, err := c.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.True(t, set.IsEmpty())
	assert.False(t, rbac.HasGroupAccess(set, rbac.GroupPatient))
	assert.Equal(t, int64(1), c.Stats().Failures)
}

func TestGet_NilSetFromFetcherIsEmpty(t *testing.T) {
	c := permcache.New(permcache.FetcherFunc(func(context.Context, string) (*rbac.PermissionSet, error) {
		return nil, nil
	}))
	set, err := c.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
}

func TestGet_StaleWhileRevalidate(t *testing.T) {
	clock := newClock()
	oldSet := groupSet(rbac.GroupPatient)
	newSet := groupSet(rbac.GroupPatient, rbac.GroupProfessional)
	gate := make(chan struct{})
	fetcher := newScripted(response{set: oldSet}, response{set: newSet, gate: gate})

	c := permcache.New(fetcher, permcache.WithTTL(time.Minute), permcache.WithClock(clock.Now))
	ctx := context.Background()

	got, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	require.Same(t, oldSet, got)
	fetcher.waitStarted(t)

	clock.Advance(2 * time.Minute)

	got, err = c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Same(t, oldSet, got, "stale set is served while revalidating")
	fetcher.waitStarted(t)

	got, _ = c.Get(ctx, "u1")
	assert.Same(t, oldSet, got)
	assert.Equal(t, int32(2), fetcher.calls.Load(), "one revalidation at a time")

	close(gate)
	assert.Eventually(t, func() bool {
		got, _ := c.Get(ctx, "u1")
		return got == newSet
	}, 2*time.Second, 5*time.Millisecond)
}

func TestGet_RevalidationFailureKeepsLastKnownGood(t *testing.T) {
	clock := newClock()
	good := groupSet(rbac.GroupClinic)
	fetcher := newScripted(response{set: good}, response{err: errors.New("timeout")})

	c := permcache.New(fetcher, permcache.WithTTL(time.Minute), permcache.WithClock(clock.Now))
	ctx := context.Background()

	_, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	fetcher.waitStarted(t)

	clock.Advance(2 * time.Minute)
	got, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Same(t, good, got)
	fetcher.waitStarted(t)

	require.Eventually(t, func() bool { return c.Stats().Failures == 1 }, 2*time.Second, 5*time.Millisecond)

	got, _ = c.Get(ctx, "u1")
	assert.Same(t, good, got, "failed revalidation never empties a known set")
	assert.Equal(t, int32(2), fetcher.calls.Load(), "no retry before another ttl window")

	clock.Advance(2 * time.Minute)
	got, _ = c.Get(ctx, "u1")
	assert.Same(t, good, got)
	fetcher.waitStarted(t)
	assert.Equal(t, int32(3), fetcher.calls.Load())
}

func TestInvalidate_WinsOverInFlightFetch(t *testing.T) {
	gate := make(chan struct{})
	stale := groupSet(rbac.GroupAdmin)
	fresh := groupSet(rbac.GroupPatient)
	fetcher := newScripted(response{set: stale, gate: gate}, response{set: fresh})
	c := permcache.New(fetcher)
	ctx := context.Background()

	result := make(chan *rbac.PermissionSet, 1)
	go func() {
		set, err := c.Get(ctx, "u1")
		assert.NoError(t, err)
		result <- set
	}()

	fetcher.waitStarted(t)
	require.NoError(t, c.Invalidate(ctx, "u1"))
	close(gate)

	select {
	case got := <-result:
		assert.Same(t, fresh, got, "waiter retries against the current entry")
	case <-time.After(2 * time.Second):
		t.Fatal("waiter did not return")
	}

	got, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Same(t, fresh, got)
	assert.Equal(t, int64(1), c.Stats().Discarded)
}

func TestTeardown_DuringFetchLeavesNoEntry(t *testing.T) {
	gate := make(chan struct{})
	fetcher := newScripted(response{set: groupSet(rbac.GroupClinic), gate: gate})
	c := permcache.New(fetcher)

	_, ready := c.TryGet(context.Background(), "u1")
	require.False(t, ready)
	fetcher.waitStarted(t)

	c.Teardown("u1")
	close(gate)

	require.Eventually(t, func() bool { return c.Stats().Discarded == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, c.Len())
}

func TestTeardown_BlockedGetDoesNotRefetch(t *testing.T) {
	gate := make(chan struct{})
	fetcher := newScripted(response{set: groupSet(rbac.GroupClinic), gate: gate})
	c := permcache.New(fetcher)

	type result struct {
		set *rbac.PermissionSet
		err error
	}
	done := make(chan result, 1)
	go func() {
		set, err := c.Get(context.Background(), "u1")
		done <- result{set, err}
	}()

	fetcher.waitStarted(t)
	c.Teardown("u1")
	close(gate)

	select {
	case r := <-done:
		assert.ErrorIs(t, r.err, permcache.ErrTornDown)
		require.NotNil(t, r.set)
		assert.True(t, r.set.IsEmpty())
	case <-time.After(2 * time.Second):
		t.Fatal("waiter did not return")
	}

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestTryGet_PendingThenReady(t *testing.T) {
	gate := make(chan struct{})
	want := groupSet(rbac.GroupSupplier)
	fetcher := newScripted(response{set: want, gate: gate})
	c := permcache.New(fetcher)
	ctx := context.Background()

	set, ready := c.TryGet(ctx, "u1")
	assert.False(t, ready)
	assert.Nil(t, set)

	_, ready = c.TryGet(ctx, "u1")
	assert.False(t, ready)
	fetcher.waitStarted(t)
	close(gate)

	require.Eventually(t, func() bool {
		_, ok := c.TryGet(ctx, "u1")
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	set, _ = c.TryGet(ctx, "u1")
	assert.Same(t, want, set)
	assert.Equal(t, int32(1), fetcher.calls.Load())

	set, ready = c.TryGet(ctx, "")
	assert.True(t, ready)
	assert.True(t, set.IsEmpty())
}

func TestSet_SupersedesInFlightFetch(t *testing.T) {
	gate := make(chan struct{})
	fetcher := newScripted(response{set: groupSet(rbac.GroupAdmin), gate: gate})
	c := permcache.New(fetcher)
	ctx := context.Background()

	_, _ = c.TryGet(ctx, "u1")
	fetcher.waitStarted(t)

	replacement := groupSet(rbac.GroupPatient)
	require.NoError(t, c.Set(ctx, "u1", replacement))
	close(gate)

	require.Eventually(t, func() bool { return c.Stats().Discarded == 1 }, 2*time.Second, 5*time.Millisecond)
	got, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Same(t, replacement, got)
}

func TestReload_FetchesAgain(t *testing.T) {
	first := groupSet(rbac.GroupPatient)
	second := groupSet(rbac.GroupPatient, rbac.GroupClinic)
	fetcher := newScripted(response{set: first}, response{set: second})
	c := permcache.New(fetcher)
	ctx := context.Background()

	got, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Same(t, first, got)

	got, err = c.Reload(ctx, "u1")
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestGet_CallerCancellationDoesNotAbortFetch(t *testing.T) {
	gate := make(chan struct{})
	want := groupSet(rbac.GroupClinic)
	fetcher := newScripted(response{set: want, gate: gate})
	c := permcache.New(fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		set, err := c.Get(ctx, "u1")
		assert.True(t, set.IsEmpty())
		done <- err
	}()

	fetcher.waitStarted(t)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(gate)
	require.Eventually(t, func() bool {
		set, ok := c.TryGet(context.Background(), "u1")
		return ok && set == want
	}, 2*time.Second, 5*time.Millisecond)
}

func TestCapacity_EvictsLeastRecentlyUsed(t *testing.T) {
	fetcher := newScripted(response{set: groupSet(rbac.GroupPatient)})
	c := permcache.New(fetcher, permcache.WithCapacity(2))
	ctx := context.Background()

	for _, id := range []string{"u1", "u2", "u3"} {
		_, err := c.Get(ctx, id)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(1), c.Stats().Evictions)

	c.Close()
	assert.Equal(t, 0, c.Len())
}

func TestFetchTimeout(t *testing.T) {
	c := permcache.New(permcache.FetcherFunc(func(ctx context.Context, _ string) (*rbac.PermissionSet, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), permcache.WithFetchTimeout(10*time.Millisecond))

	set, err := c.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
	assert.Equal(t, int64(1), c.Stats().Failures)
}
