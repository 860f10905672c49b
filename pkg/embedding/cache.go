package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedProvider memoizes embeddings by content hash. Interest text is
// re-submitted on every find-match call, so a short TTL saves one
// upstream round-trip per repeated query.
type CachedProvider struct {
	next  Provider
	cache *cache.Cache
}

func NewCachedProvider(next Provider, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedProvider{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (p *CachedProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if x, found := p.cache.Get(key); found {
		return x.([]float32), nil
	}

	values, err := p.next.Generate(ctx, text)
	if err != nil {
		return nil, err
	}

	p.cache.Set(key, values, cache.DefaultExpiration)
	return values, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
