package fetchdedupe

import (
	"hash/fnv"
	"sync"

	"github.com/mitchellh/copystructure"
)

const defaultShards = 16

// ResponseCache stores normalized responses by request key. Entries
// never expire; they are replaced by later writes or removed with
// Delete and Clear. Values are copied on the way in and on the way
// out, so callers never alias a stored entry. The one exception is a
// Data value copystructure cannot copy: it is stored and returned
// as-is, shared with whoever supplied it.
type ResponseCache struct {
	shards    []*cacheShard
	numShards int
}

type cacheShard struct {
	mu    sync.RWMutex
	store map[string]*Response
}

// NewResponseCache creates an empty cache with the default shard count.
func NewResponseCache() *ResponseCache {
	return NewResponseCacheWithShards(defaultShards)
}

// NewResponseCacheWithShards creates an empty cache split into n shards.
func NewResponseCacheWithShards(n int) *ResponseCache {
	if n <= 0 {
		n = defaultShards
	}
	shards := make([]*cacheShard, n)
	for i := range shards {
		shards[i] = &cacheShard{
			store: make(map[string]*Response),
		}
	}
	return &ResponseCache{
		shards:    shards,
		numShards: n,
	}
}

func (c *ResponseCache) getShard(key string) *cacheShard {
	hash := fnv.New32a()
	hash.Write([]byte(key))
	return c.shards[hash.Sum32()%uint32(c.numShards)]
}

// Has reports whether an entry exists for key.
func (c *ResponseCache) Has(key string) bool {
	shard := c.getShard(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()

	_, exists := shard.store[key]
	return exists
}

// Get returns a copy of the entry stored for key.
func (c *ResponseCache) Get(key string) (*Response, bool) {
	shard := c.getShard(key)
	shard.mu.RLock()
	entry, exists := shard.store[key]
	shard.mu.RUnlock()

	if !exists {
		return nil, false
	}
	return cloneResponse(entry), true
}

// Set stores a copy of resp under key, replacing any previous entry.
// The shape of resp is not validated.
func (c *ResponseCache) Set(key string, resp *Response) {
	entry := cloneResponse(resp)

	shard := c.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	shard.store[key] = entry
}

// Delete removes the entry for key.
func (c *ResponseCache) Delete(key string) {
	shard := c.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	delete(shard.store, key)
}

// Clear removes all entries.
func (c *ResponseCache) Clear() {
	for _, shard := range c.shards {
		shard.mu.Lock()
		shard.store = make(map[string]*Response)
		shard.mu.Unlock()
	}
}

// Len returns the number of stored entries.
func (c *ResponseCache) Len() int {
	total := 0
	for _, shard := range c.shards {
		shard.mu.RLock()
		total += len(shard.store)
		shard.mu.RUnlock()
	}
	return total
}

// cloneResponse deep-copies resp. A nil resp stays nil. When Data cannot
// be copied the clone keeps the original Data value.
func cloneResponse(resp *Response) *Response {
	if resp == nil {
		return nil
	}
	out := *resp
	out.Header = resp.Header.Clone()
	if resp.Data != nil {
		if data, err := copystructure.Copy(resp.Data); err == nil {
			out.Data = data
		}
	}
	return &out
}
