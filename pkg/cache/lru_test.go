package cache_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rbmarquez/doctorq/pkg/cache"
)

func TestLRUCache_PutGet(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUCache[string, int](3)

	_, existed := c.Put("u1", 1)
	assert.False(t, existed)

	old, existed := c.Put("u1", 2)
	assert.True(t, existed)
	assert.Equal(t, 1, old)

	v, ok := c.Get("u1")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestLRUCache_Eviction(t *testing.T) {
	t.Parallel()

	t.Run("least recently used goes first", func(t *testing.T) {
		c := cache.NewLRUCache[string, int](2)
		c.Put("a", 1)
		c.Put("b", 2)
		c.Get("a")
		c.Put("c", 3)

		_, ok := c.Get("b")
		assert.False(t, ok)
		assert.ElementsMatch(t, []string{"a", "c"}, c.Keys())
	})

	t.Run("peek does not refresh", func(t *testing.T) {
		c := cache.NewLRUCache[string, int](2)
		c.Put("a", 1)
		c.Put("b", 2)

		v, ok := c.Peek("a")
		assert.True(t, ok)
		assert.Equal(t, 1, v)

		c.Put("c", 3)
		_, ok = c.Peek("a")
		assert.False(t, ok, "a was only peeked and should be evicted")
	})

	t.Run("keys ordered by recency", func(t *testing.T) {
		c := cache.NewLRUCache[string, int](3)
		c.Put("a", 1)
		c.Put("b", 2)
		c.Put("c", 3)
		c.Get("a")
		assert.Equal(t, []string{"a", "c", "b"}, c.Keys())
	})
}

func TestLRUCache_EvictCallback(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUCache[string, int](2)
	evicted := make(map[string]int)
	c.SetEvictCallback(func(key string, value int) {
		evicted[key] = value
	})

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)
	assert.Equal(t, map[string]int{"a": 1}, evicted)

	v, ok := c.Remove("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.NotContains(t, evicted, "b", "explicit remove is not an eviction")

	c.Clear()
	assert.Equal(t, 3, evicted["c"])
	assert.Equal(t, 0, c.Len())
}

func TestLRUCache_InvalidCapacity(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { cache.NewLRUCache[string, int](0) })
	assert.Panics(t, func() { cache.NewLRUCache[string, int](-1) })
}

func TestLRUCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUCache[int, int](64)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Put(n, n*2)
			c.Get(n)
			c.Peek(n - 1)
			if n%3 == 0 {
				c.Remove(n)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 64)
}

func BenchmarkLRUCache_Mixed(b *testing.B) {
	c := cache.NewLRUCache[int, int](1000)

	b.ResetTimer()
	for i := range b.N {
		if i%2 == 0 {
			c.Put(i%2000, i)
		} else {
			c.Get(i % 2000)
		}
	}
}
