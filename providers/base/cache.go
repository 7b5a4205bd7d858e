package base

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"
)

// DefaultCacheSize bounds the number of parsed sources kept in memory
const DefaultCacheSize = 512

// DefaultMaxAge is how long a parsed tree stays valid
const DefaultMaxAge = 5 * time.Minute

// ASTCache keeps parsed trees keyed by the hash of their source, together
// with per-language metadata M computed once per tree. Evicted trees are
// dropped, never closed: callers may still hold copies.
type ASTCache[M any] struct {
	entries   *lru.Cache[uint64, *CachedAST[M]]
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	maxAge    time.Duration
}

// CachedAST holds a parsed tree with its metadata
type CachedAST[M any] struct {
	Tree      *sitter.Tree
	Meta      M
	timestamp time.Time
	hitCount  atomic.Int32
}

// NewASTCache creates a cache of at most size entries older than maxAge
func NewASTCache[M any](size int, maxAge time.Duration) *ASTCache[M] {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	c := &ASTCache[M]{maxAge: maxAge}
	entries, err := lru.NewWithEvict[uint64, *CachedAST[M]](size, func(uint64, *CachedAST[M]) {
		c.evictions.Add(1)
	})
	if err != nil {
		panic(fmt.Sprintf("ast cache: %v", err)) // only for size <= 0
	}
	c.entries = entries
	return c
}

// GetOrParse returns a copy of the cached tree for source, parsing and
// computing metadata on a miss. The boolean reports a cache hit.
func (c *ASTCache[M]) GetOrParse(
	ctx context.Context,
	parser *sitter.Parser,
	source []byte,
	meta func(*sitter.Tree, []byte) M,
) (*sitter.Tree, M, bool, error) {
	key := xxhash.Sum64(source)

	if cached, ok := c.entries.Get(key); ok {
		if time.Since(cached.timestamp) <= c.maxAge {
			c.hits.Add(1)
			cached.hitCount.Add(1)
			return cached.Tree.Copy(), cached.Meta, true, nil
		}
		c.entries.Remove(key)
	}

	c.misses.Add(1)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		var zero M
		return nil, zero, false, err
	}
	if tree == nil {
		var zero M
		return nil, zero, false, fmt.Errorf("parser returned no tree")
	}

	entry := &CachedAST[M]{
		Tree:      tree,
		Meta:      meta(tree, source),
		timestamp: time.Now(),
	}
	c.entries.Add(key, entry)

	return tree.Copy(), entry.Meta, false, nil
}

// Purge drops every cached tree
func (c *ASTCache[M]) Purge() {
	c.entries.Purge()
}

// Len returns the number of cached trees
func (c *ASTCache[M]) Len() int {
	return c.entries.Len()
}

// Stats returns cache statistics
func (c *ASTCache[M]) Stats() map[string]int64 {
	hits, misses := c.hits.Load(), c.misses.Load()
	return map[string]int64{
		"hits":      hits,
		"misses":    misses,
		"evictions": c.evictions.Load(),
		"entries":   int64(c.entries.Len()),
		"hit_rate":  hits * 100 / (hits + misses + 1),
	}
}
