package bitnum

import (
	"encoding/binary"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/cespare/xxhash/v2"
)

// Cache is the weak-keyed bitvector intern table described in spec §4.1 and
// design notes §9: "a process-wide table keyed by (val,bitSize) holding
// weak references ... correctness must not depend on identity equality."
//
// BitNumber itself is a plain comparable value type used directly by every
// domain operation in this module — interning is an opt-in optimization for
// callers that want canonical pointers (e.g. for cheap identity checks in a
// higher layer, or to exercise/verify the property in tests), never a
// requirement for correctness.
//
// Sharded to bound lock contention, the same idiom pkg/search/worker.go
// uses a single mutex around bookkeeping counters for — here scaled to N
// shards since intern traffic is expected to be much hotter than a search
// result table. Keys are hashed with xxhash rather than Go's built-in map
// hashing so the shard and the unique-table lookup share one fast, documented
// hash function (also used by internal/bdd's node table).
type Cache struct {
	shards [numShards]shard

	hits   atomic.Int64
	misses atomic.Int64
}

type shard struct {
	mu sync.Mutex
	m  map[uint64]weak.Pointer[BitNumber]
}

const numShards = 32

// NewCache constructs an empty intern cache.
func NewCache() *Cache {
	c := &Cache{}
	for i := range c.shards {
		c.shards[i].m = make(map[uint64]weak.Pointer[BitNumber])
	}
	return c
}

func cacheKey(val uint64, bitSize uint8) uint64 {
	var buf [9]byte
	binary.LittleEndian.PutUint64(buf[:8], val)
	buf[8] = bitSize
	return xxhash.Sum64(buf[:])
}

// Intern returns the canonical *BitNumber for (val, bitSize): a previously
// live value with the same key if one is still reachable, otherwise a fresh
// one that becomes the new canonical representative. The cache holds only a
// weak reference, so an interned value that nothing else references is free
// to be collected — the entry is simply replaced (not removed eagerly) the
// next time its key is interned and found stale.
func (c *Cache) Intern(val uint64, bitSize uint8) *BitNumber {
	key := cacheKey(val, bitSize)
	sh := &c.shards[key%numShards]

	sh.mu.Lock()
	defer sh.mu.Unlock()

	if wp, ok := sh.m[key]; ok {
		if bn := wp.Value(); bn != nil && bn.val == val && bn.bitSize == bitSize {
			c.hits.Add(1)
			return bn
		}
	}
	c.misses.Add(1)
	bn := &BitNumber{val: val & maskFor(bitSize), bitSize: bitSize}
	sh.m[key] = weak.Make(bn)
	return bn
}

// Stats returns (hits, misses) observed so far.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
