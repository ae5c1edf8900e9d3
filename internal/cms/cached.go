package cms

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"finitefield.org/corporate-web/internal/cache"
)

// CachedSource is a read-through cache in front of another Source. Cache
// failures are logged and the underlying source is used directly.
type CachedSource struct {
	next   Source
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSource wraps next with c. A zero ttl uses the cache default.
func NewCachedSource(next Source, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{next: next, cache: c, ttl: ttl, logger: logger}
}

type cachedGlobal struct {
	Found bool     `json:"found"`
	Doc   Document `json:"doc,omitempty"`
}

func (s *CachedSource) Find(ctx context.Context, q Query) (Result, error) {
	key := cacheKey("find", q.key())
	var res Result
	if s.load(ctx, key, &res) {
		return res, nil
	}
	res, err := s.next.Find(ctx, q)
	if err != nil {
		return Result{}, err
	}
	s.store(ctx, key, res)
	return res, nil
}

func (s *CachedSource) Global(ctx context.Context, name, locale string, depth int) (Document, bool, error) {
	key := cacheKey("global", name+"|"+locale+"|"+itoa(depth))
	var entry cachedGlobal
	if s.load(ctx, key, &entry) {
		return entry.Doc, entry.Found, nil
	}
	doc, found, err := s.next.Global(ctx, name, locale, depth)
	if err != nil {
		return nil, false, err
	}
	s.store(ctx, key, cachedGlobal{Found: found, Doc: doc})
	return doc, found, nil
}

func (s *CachedSource) load(ctx context.Context, key string, out any) bool {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cms cache get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.Warn("cms cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *CachedSource) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
		s.logger.Warn("cms cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func cacheKey(kind, spec string) string {
	sum := sha256.Sum256([]byte(spec))
	return "cms:" + kind + ":" + hex.EncodeToString(sum[:12])
}
