// Package cache provides a generic, thread-safe LRU (least recently used)
// cache with a fixed capacity.
//
// The permission cache keeps one entry per user in an LRUCache so memory stays
// bounded no matter how many principals pass through a process.
//
//	c := cache.NewLRUCache[string, *entry](10_000)
//	c.SetEvictCallback(func(userID string, e *entry) {
//	    log.Debug("evicted", "user_id", userID)
//	})
//
//	c.Put("user-1", e)
//	e, ok := c.Get("user-1")  // marks user-1 as recently used
//	e, ok = c.Peek("user-1")  // does not
//	c.Remove("user-1")
//
// Get, Peek, Put and Remove are O(1). The evict callback fires for capacity
// evictions and Clear, not for explicit Remove.
package cache
