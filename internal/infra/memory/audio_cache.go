package memory

import (
	"context"
	"sync"
	"time"
)

// AudioCache keeps fetched clips in process. Entries expire after ttl and the
// oldest entry is evicted once maxEntries is reached.
type AudioCache struct {
	ttl        time.Duration
	maxEntries int
	clock      func() time.Time

	mu      sync.Mutex
	entries map[string]cachedAudio
	order   []string
}

type cachedAudio struct {
	audio     []byte
	expiresAt time.Time
}

func NewAudioCache(ttl time.Duration, maxEntries int) *AudioCache {
	return &AudioCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      time.Now,
		entries:    make(map[string]cachedAudio),
	}
}

func (c *AudioCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && !entry.expiresAt.After(c.clock()) {
		c.removeLocked(key)
		return nil, false
	}
	return append([]byte(nil), entry.audio...), true
}

func (c *AudioCache) Set(_ context.Context, key string, audio []byte) {
	if len(audio) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.removeLocked(key)
	}
	for c.maxEntries > 0 && len(c.order) >= c.maxEntries {
		c.removeLocked(c.order[0])
	}
	c.entries[key] = cachedAudio{audio: append([]byte(nil), audio...), expiresAt: c.clock().Add(c.ttl)}
	c.order = append(c.order, key)
}

// Len reports the number of cached clips, expired ones included.
func (c *AudioCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *AudioCache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
