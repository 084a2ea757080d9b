package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// LRU is an in-process cache with TTL and size-based eviction
type LRU struct {
	mu          sync.Mutex
	maxSize     int
	ttl         time.Duration
	items       map[string]*list.Element
	lru         *list.List
	generations map[string]int64
	now         func() time.Time
}

type lruItem struct {
	key       string
	data      []byte
	expiresAt time.Time
}

// NewLRU creates a cache holding at most maxSize reports for ttl each
func NewLRU(maxSize int, ttl time.Duration) *LRU {
	return &LRU{
		maxSize:     maxSize,
		ttl:         ttl,
		items:       make(map[string]*list.Element),
		lru:         list.New(),
		generations: make(map[string]int64),
		now:         time.Now,
	}
}

func (c *LRU) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	elem, exists := c.items[key]
	if !exists {
		c.mu.Unlock()
		return false, nil
	}
	item := elem.Value.(*lruItem)
	if c.now().After(item.expiresAt) {
		c.removeElement(elem)
		c.mu.Unlock()
		return false, nil
	}
	c.lru.MoveToFront(elem)
	data := item.data
	c.mu.Unlock()

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *LRU) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	item := &lruItem{key: key, data: data, expiresAt: c.now().Add(c.ttl)}
	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return nil
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem
	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
	return nil
}

func (c *LRU) Generation(_ context.Context, scope string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[scope], nil
}

func (c *LRU) Bump(_ context.Context, scope string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[scope]++
	return nil
}

// Size returns the current number of items in the cache
func (c *LRU) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRU) removeElement(elem *list.Element) {
	item := elem.Value.(*lruItem)
	delete(c.items, item.key)
	c.lru.Remove(elem)
}
