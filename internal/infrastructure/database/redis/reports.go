package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/turtacn/simheat/internal/domain/report"
)

const (
	KindSimilarity = "similarity"
	KindPattern    = "pattern"
)

// ReportCache memoises parsed reports keyed by a digest of the report bytes
// and the layout used to read them.
type ReportCache struct {
	cache  Cache
	layout string
}

func NewReportCache(cache Cache, layout report.Layout) *ReportCache {
	return &ReportCache{cache: cache, layout: fmt.Sprintf("%+v", layout)}
}

// Key returns the cache key for a report of the given kind.
func (rc *ReportCache) Key(kind string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(rc.layout))
	h.Write([]byte{0})
	h.Write(content)
	return "report:" + kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// Similarity returns the cached matrix for content, parsing it on a miss.
// The boolean reports whether the value came from the cache.
func (rc *ReportCache) Similarity(ctx context.Context, content []byte, parse func() (*report.SimilarityMatrix, error)) (*report.SimilarityMatrix, bool, error) {
	hit := true
	var m report.SimilarityMatrix
	err := rc.cache.GetOrSet(ctx, rc.Key(KindSimilarity, content), &m, 0, func(context.Context) (interface{}, error) {
		hit = false
		return parse()
	})
	if err != nil {
		return nil, false, err
	}
	return &m, hit, nil
}

// Patterns is Similarity for pattern reports.
func (rc *ReportCache) Patterns(ctx context.Context, content []byte, parse func() (*report.AtomLabelSet, error)) (*report.AtomLabelSet, bool, error) {
	hit := true
	var s report.AtomLabelSet
	err := rc.cache.GetOrSet(ctx, rc.Key(KindPattern, content), &s, 0, func(context.Context) (interface{}, error) {
		hit = false
		return parse()
	})
	if err != nil {
		return nil, false, err
	}
	return &s, hit, nil
}

// Purge drops every cached report.
func (rc *ReportCache) Purge(ctx context.Context) (int64, error) {
	return rc.cache.DeleteByPrefix(ctx, "report:")
}

func (rc *ReportCache) Ping(ctx context.Context) error {
	return rc.cache.Ping(ctx)
}

//Personal.AI order the ending
