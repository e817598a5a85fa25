package vector

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCacheTTL is the lifetime of a cached search result.
const DefaultCacheTTL = 30 * time.Second

// resultCache memoizes Search results. Keys embed a generation counter that
// is bumped on every write, so results computed before a write are never
// served after it.
type resultCache struct {
	lru        *expirable.LRU[string, []Document]
	generation atomic.Uint64
}

func newResultCache(size int, ttl time.Duration) *resultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &resultCache{lru: expirable.NewLRU[string, []Document](size, nil, ttl)}
}

type cacheKey struct {
	Generation uint64         `json:"g"`
	Query      []float32      `json:"q"`
	K          int            `json:"k"`
	Metadata   map[string]any `json:"m,omitempty"`
	Text       string         `json:"t,omitempty"`
}

// key hashes the normalized search parameters. ok is false when the
// parameters cannot be encoded (NaN in the query), in which case the
// search bypasses the cache.
func (c *resultCache) key(query []float32, k int, f Filter) (string, bool) {
	if k < 0 {
		k = 0
	}
	data, err := json.Marshal(cacheKey{
		Generation: c.generation.Load(),
		Query:      query,
		K:          k,
		Metadata:   f.Metadata,
		Text:       strings.ToLower(strings.TrimSpace(f.Text)),
	})
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), true
}

func (c *resultCache) get(key string) ([]Document, bool) {
	docs, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return cloneDocuments(docs), true
}

func (c *resultCache) add(key string, docs []Document) {
	c.lru.Add(key, cloneDocuments(docs))
}

func (c *resultCache) invalidate() {
	c.generation.Add(1)
	c.lru.Purge()
}

func cloneDocuments(docs []Document) []Document {
	if docs == nil {
		return nil
	}
	out := make([]Document, len(docs))
	for i, d := range docs {
		d.Embedding = slices.Clone(d.Embedding)
		out[i] = d
	}
	return out
}
