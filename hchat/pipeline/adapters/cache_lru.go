package adapters

import (
	"context"
	"sync"
	"time"

	ports "github.com/ZanzyTHEbar/hybridchat/hchat/pipeline/ports"
)

// LRUCache is a fixed-capacity cache whose entries also expire after a TTL.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*cacheItem
	head     *cacheItem // most recently used
	tail     *cacheItem
	now      func() time.Time
}

type cacheItem struct {
	key       string
	value     []byte
	expiresAt time.Time
	prev      *cacheItem
	next      *cacheItem
}

// NewLRUCache creates a cache holding at most capacity entries.
func NewLRUCache(capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCache{
		capacity: capacity,
		items:    make(map[string]*cacheItem),
		now:      time.Now,
	}
}

// Get returns a live entry and marks it most recently used.
func (c *LRUCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		return nil, false
	}

	if c.now().After(item.expiresAt) {
		c.unlink(item)
		delete(c.items, key)
		return nil, false
	}

	c.moveToFront(item)
	return item.value, true
}

// Set stores value for ttlSeconds, evicting the least recently used entry
// when full.
func (c *LRUCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(time.Duration(ttlSeconds) * time.Second)

	if item, exists := c.items[key]; exists {
		item.value = value
		item.expiresAt = expiresAt
		c.moveToFront(item)
		return nil
	}

	item := &cacheItem{key: key, value: value, expiresAt: expiresAt}
	c.pushFront(item)
	c.items[key] = item

	if len(c.items) > c.capacity {
		oldest := c.tail
		c.unlink(oldest)
		delete(c.items, oldest.key)
	}
	return nil
}

// Delete removes key if present.
func (c *LRUCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item, exists := c.items[key]; exists {
		c.unlink(item)
		delete(c.items, key)
	}
	return nil
}

// Len reports the number of entries, expired ones included.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRUCache) moveToFront(item *cacheItem) {
	if item == c.head {
		return
	}
	c.unlink(item)
	c.pushFront(item)
}

func (c *LRUCache) pushFront(item *cacheItem) {
	item.prev = nil
	item.next = c.head
	if c.head != nil {
		c.head.prev = item
	}
	c.head = item
	if c.tail == nil {
		c.tail = item
	}
}

func (c *LRUCache) unlink(item *cacheItem) {
	if item.prev != nil {
		item.prev.next = item.next
	} else {
		c.head = item.next
	}
	if item.next != nil {
		item.next.prev = item.prev
	} else {
		c.tail = item.prev
	}
	item.prev, item.next = nil, nil
}

var _ ports.Cache = (*LRUCache)(nil)
