package hallucination

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// verificationCache is the bounded LRU keyed by hash-normalized claim text
// (SPEC_FULL.md §9 design note: "capacity ≈ 10k entries"; spec §4.4 step 3:
// "cached by claim-text hash"). It is process-wide and shared across
// workflows per spec §5, with last-writer-wins semantics on concurrent
// writes.
type verificationCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
}

type cacheEntry struct {
	key    string
	result VerificationResult
}

// newVerificationCache builds an LRU cache with the given capacity.
func newVerificationCache(capacity int) *verificationCache {
	if capacity <= 0 {
		capacity = 10000
	}
	return &verificationCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

func hashClaimText(text string) string {
	sum := sha256.Sum256([]byte(normalizeText(text)))
	return hex.EncodeToString(sum[:])
}

// Get looks up a claim's cached verification, promoting it to
// most-recently-used on hit.
func (c *verificationCache) Get(claimText string) (VerificationResult, bool) {
	key := hashClaimText(claimText)

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return VerificationResult{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).result, true
}

// Put stores result for claimText, evicting the least-recently-used entry
// if the cache is at capacity. Concurrent Put calls for the same key are
// last-writer-wins.
func (c *verificationCache) Put(claimText string, result VerificationResult) {
	key := hashClaimText(claimText)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).result = result
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&cacheEntry{key: key, result: result})
	c.entries[key] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
}
