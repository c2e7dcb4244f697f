package permcache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rbmarquez/doctorq/pkg/async"
	"github.com/rbmarquez/doctorq/pkg/cache"
	"github.com/rbmarquez/doctorq/pkg/logger"
	"github.com/rbmarquez/doctorq/pkg/rbac"
)

// Fetcher loads the current permission set of a user from the authority.
type Fetcher interface {
	Fetch(ctx context.Context, userID string) (*rbac.PermissionSet, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, userID string) (*rbac.PermissionSet, error)

func (f FetcherFunc) Fetch(ctx context.Context, userID string) (*rbac.PermissionSet, error) {
	return f(ctx, userID)
}

// Store shares permission sets between instances. Load reports false when
// nothing is stored for the user.
type Store interface {
	Load(ctx context.Context, userID string) (*rbac.PermissionSet, bool, error)
	Save(ctx context.Context, userID string, set *rbac.PermissionSet) error
	Delete(ctx context.Context, userID string) error
}

type entry struct {
	set        *rbac.PermissionSet // nil until the first fetch completes
	fetchedAt  time.Time
	retryAfter time.Time // set after a failed revalidation
	inflight   *async.Future[*rbac.PermissionSet]
	token      uint64 // identifies the in-flight fetch
	tornDown   bool
}

// saveState tracks store writes in flight for one user. gen moves on every
// Invalidate or Set so a write that finishes after either is rolled back.
type saveState struct {
	pending int
	gen     uint64
}

// Cache holds one permission set per user.
//
// At most one fetch per user is in flight; concurrent callers share it.
// Entries older than the TTL are served while a background fetch refreshes
// them. A fetch result is applied only if its entry is still current, so
// Invalidate, Set, Teardown and eviction always win over an in-flight fetch.
type Cache struct {
	fetcher      Fetcher
	store        Store
	ttl          time.Duration
	capacity     int
	fetchTimeout time.Duration
	logger       *slog.Logger
	now          func() time.Time

	mu      sync.Mutex
	entries *cache.LRUCache[string, *entry]
	seq     uint64
	saves   map[string]*saveState

	stats counters
}

type counters struct {
	hits, misses, stale, fetches, failures, discarded, evictions atomic.Int64
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Entries   int
	Hits      int64
	Misses    int64
	Stale     int64
	Fetches   int64
	Failures  int64
	Discarded int64
	Evictions int64
}

// New creates a cache that loads sets through fetcher.
func New(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher:      fetcher,
		ttl:          DefaultTTL,
		capacity:     DefaultCapacity,
		fetchTimeout: DefaultFetchTimeout,
		logger:       logger.Discard(),
		now:          time.Now,
		saves:        make(map[string]*saveState),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("permcache"))

	c.entries = cache.NewLRUCache[string, *entry](c.capacity)
	c.entries.SetEvictCallback(func(userID string, _ *entry) {
		c.stats.evictions.Add(1)
		c.logger.Debug("permission entry evicted", logger.UserID(userID))
	})
	return c
}

// Get returns the user's permission set, fetching it when absent.
// A stale set is returned immediately and refreshed in the background.
// The returned set is never nil; a failed fetch yields rbac.EmptySet.
// Errors are reported only for an empty user id, a done ctx, or ErrTornDown
// when the user was torn down while the caller waited.
func (c *Cache) Get(ctx context.Context, userID string) (*rbac.PermissionSet, error) {
	if strings.TrimSpace(userID) == "" {
		return rbac.EmptySet(), ErrInvalidUserID
	}

	for {
		set, f := c.lookup(ctx, userID)
		if set != nil {
			return set, nil
		}

		set, err := f.Await(ctx)
		if errors.Is(err, errDiscarded) {
			continue
		}
		if errors.Is(err, ErrTornDown) {
			return rbac.EmptySet(), err
		}
		if err != nil {
			return rbac.EmptySet(), err
		}
		return set, nil
	}
}

// TryGet returns the user's set without blocking. The boolean is false while
// the first fetch is in flight; TryGet starts that fetch if needed.
func (c *Cache) TryGet(ctx context.Context, userID string) (*rbac.PermissionSet, bool) {
	if strings.TrimSpace(userID) == "" {
		return rbac.EmptySet(), true
	}
	set, _ := c.lookup(ctx, userID)
	return set, set != nil
}

// lookup returns the cached set, or the future of the fetch that will produce it.
func (c *Cache) lookup(ctx context.Context, userID string) (*rbac.PermissionSet, *async.Future[*rbac.PermissionSet]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Get(userID)
	if !ok {
		e = &entry{}
		c.entries.Put(userID, e)
	}

	if e.set != nil {
		now := c.now()
		if now.Sub(e.fetchedAt) < c.ttl {
			c.stats.hits.Add(1)
			return e.set, nil
		}
		c.stats.stale.Add(1)
		if e.inflight == nil && !now.Before(e.retryAfter) {
			c.startFetch(ctx, userID, e, false)
		}
		return e.set, nil
	}

	if e.inflight == nil {
		c.stats.misses.Add(1)
		c.startFetch(ctx, userID, e, c.store != nil)
	}
	return nil, e.inflight
}

// startFetch runs a fetch for e in the background. c.mu must be held.
func (c *Cache) startFetch(ctx context.Context, userID string, e *entry, useStore bool) {
	c.seq++
	token := c.seq
	e.token = token
	c.stats.fetches.Add(1)

	e.inflight = async.Async(context.WithoutCancel(ctx), userID,
		func(ctx context.Context, userID string) (*rbac.PermissionSet, error) {
			ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
			defer cancel()

			set, fromStore, err := c.load(ctx, userID, useStore)
			return c.commit(ctx, userID, e, token, set, fromStore, err)
		})
}

func (c *Cache) load(ctx context.Context, userID string, useStore bool) (*rbac.PermissionSet, bool, error) {
	if useStore {
		set, ok, err := c.store.Load(ctx, userID)
		switch {
		case err != nil:
			c.logger.WarnContext(ctx, "shared permission store load failed", logger.UserID(userID), logger.Error(err))
		case ok && set != nil:
			return set, true, nil
		}
	}

	if c.fetcher == nil {
		return nil, false, errors.New("permcache: no fetcher configured")
	}
	set, err := c.fetcher.Fetch(ctx, userID)
	if err == nil && set == nil {
		set = rbac.EmptySet()
	}
	return set, false, err
}

// commit applies a fetch result if the fetch is still the current one for its entry.
func (c *Cache) commit(ctx context.Context, userID string, e *entry, token uint64, set *rbac.PermissionSet, fromStore bool, err error) (*rbac.PermissionSet, error) {
	c.mu.Lock()

	if cur, ok := c.entries.Peek(userID); !ok || cur != e || e.token != token {
		tornDown := e.tornDown
		c.mu.Unlock()
		c.stats.discarded.Add(1)
		c.logger.DebugContext(ctx, "discarding superseded permission fetch", logger.UserID(userID))
		if tornDown {
			return nil, ErrTornDown
		}
		return nil, errDiscarded
	}

	e.inflight = nil
	now := c.now()

	if err != nil {
		c.stats.failures.Add(1)
		if e.set != nil {
			e.retryAfter = now.Add(c.ttl)
			kept := e.set
			c.mu.Unlock()
			c.logger.WarnContext(ctx, "permission revalidation failed, keeping last known set",
				logger.UserID(userID), logger.Error(err))
			return kept, nil
		}
		empty := rbac.EmptySet()
		e.set = empty
		e.fetchedAt = now
		c.mu.Unlock()
		c.logger.ErrorContext(ctx, "permission fetch failed, denying all",
			logger.UserID(userID), logger.Error(err))
		return empty, nil
	}

	e.set = set
	e.fetchedAt = now
	e.retryAfter = time.Time{}

	if c.store == nil || fromStore {
		c.mu.Unlock()
		return set, nil
	}
	gen := c.beginSave(userID)
	c.mu.Unlock()

	if err := c.save(ctx, userID, set, gen); err != nil {
		c.logger.WarnContext(ctx, "shared permission store save failed", logger.UserID(userID), logger.Error(err))
	}
	return set, nil
}

// beginSave registers a store write for userID and returns its generation.
// c.mu must be held.
func (c *Cache) beginSave(userID string) uint64 {
	st, ok := c.saves[userID]
	if !ok {
		st = &saveState{}
		c.saves[userID] = st
	}
	st.pending++
	return st.gen
}

// supersedeSaves marks store writes in flight for userID as outdated.
// c.mu must be held.
func (c *Cache) supersedeSaves(userID string) {
	if st, ok := c.saves[userID]; ok {
		st.gen++
	}
}

// save writes set to the store. If an Invalidate or Set happened while the
// write was in flight, the snapshot is deleted again so a revoked set never
// outlives the call that revoked it.
func (c *Cache) save(ctx context.Context, userID string, set *rbac.PermissionSet, gen uint64) error {
	err := c.store.Save(ctx, userID, set)

	c.mu.Lock()
	st := c.saves[userID]
	superseded := st.gen != gen
	st.pending--
	if st.pending == 0 {
		delete(c.saves, userID)
	}
	c.mu.Unlock()

	if err == nil && superseded {
		c.logger.DebugContext(ctx, "rolling back superseded permission snapshot", logger.UserID(userID))
		err = c.store.Delete(ctx, userID)
	}
	return err
}

// Set replaces the user's entry with set. In-flight fetches are discarded.
func (c *Cache) Set(ctx context.Context, userID string, set *rbac.PermissionSet) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUserID
	}
	if set == nil {
		set = rbac.EmptySet()
	}

	c.mu.Lock()
	c.entries.Put(userID, &entry{set: set, fetchedAt: c.now()})
	if c.store == nil {
		c.mu.Unlock()
		return nil
	}
	c.supersedeSaves(userID)
	gen := c.beginSave(userID)
	c.mu.Unlock()

	return c.save(ctx, userID, set, gen)
}

// Invalidate drops the user's entry and shared snapshot. Fetches started
// before the call are discarded on arrival; the next Get fetches again.
// The local entry is always dropped; the error reports a store failure.
func (c *Cache) Invalidate(ctx context.Context, userID string) error {
	c.mu.Lock()
	c.entries.Remove(userID)
	c.supersedeSaves(userID)
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Delete(ctx, userID); err != nil {
			c.logger.WarnContext(ctx, "shared permission store delete failed", logger.UserID(userID), logger.Error(err))
			return err
		}
	}
	return nil
}

// Reload invalidates the user's entry and fetches it again.
func (c *Cache) Reload(ctx context.Context, userID string) (*rbac.PermissionSet, error) {
	_ = c.Invalidate(ctx, userID)
	return c.Get(ctx, userID)
}

// Teardown forgets the user locally, for logout. In-flight fetches are
// discarded and callers blocked in Get receive ErrTornDown instead of
// fetching again. The shared snapshot is kept for the user's other sessions.
func (c *Cache) Teardown(userID string) {
	c.mu.Lock()
	c.tearDown(userID)
	c.mu.Unlock()
}

// Close tears down every entry.
func (c *Cache) Close() {
	c.mu.Lock()
	for _, userID := range c.entries.Keys() {
		c.tearDown(userID)
	}
	c.mu.Unlock()
}

// tearDown removes userID's entry and marks it so its waiters stop. c.mu must be held.
func (c *Cache) tearDown(userID string) {
	if e, ok := c.entries.Peek(userID); ok {
		e.tornDown = true
	}
	c.entries.Remove(userID)
}

// Len returns the number of users with an entry, including pending ones.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) Stats() Stats {
	return Stats{
		Entries:   c.entries.Len(),
		Hits:      c.stats.hits.Load(),
		Misses:    c.stats.misses.Load(),
		Stale:     c.stats.stale.Load(),
		Fetches:   c.stats.fetches.Load(),
		Failures:  c.stats.failures.Load(),
		Discarded: c.stats.discarded.Load(),
		Evictions: c.stats.evictions.Load(),
	}
}
