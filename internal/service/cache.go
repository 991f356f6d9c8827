package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/keiba-advisor/internal/metrics"
	"github.com/yourusername/keiba-advisor/internal/models"
)

// RecommendationCache memoizes issued recommendations by their engine inputs
type RecommendationCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewRecommendationCache creates a new recommendation cache
func NewRecommendationCache(ttl time.Duration, maxSize int) *RecommendationCache {
	return &RecommendationCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// CacheKey hashes the engine inputs. The engine is deterministic, so equal
// keys always describe equal recommendations.
func CacheKey(predictions []models.HorsePrediction, race models.RaceContext, cfg models.StrategyConfig) (string, error) {
	payload, err := json.Marshal(struct {
		Predictions []models.HorsePrediction `json:"p"`
		Race        models.RaceContext       `json:"r"`
		Config      models.StrategyConfig    `json:"c"`
	}{predictions, race, cfg})
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// Get retrieves a cached recommendation
func (rc *RecommendationCache) Get(key string) (*models.IssuedRecommendation, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if item, found := rc.cache.Get(key); found {
		if rec, ok := item.(*models.IssuedRecommendation); ok {
			rc.hitCount++
			metrics.RecordCacheHit()
			return rec, true
		}
	}

	rc.missCount++
	metrics.RecordCacheMiss()
	return nil, false
}

// Set stores a recommendation in cache
func (rc *RecommendationCache) Set(key string, rec *models.IssuedRecommendation) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.cache.ItemCount() >= rc.maxSize {
		rc.cache.DeleteExpired()
		if rc.cache.ItemCount() >= rc.maxSize {
			return
		}
	}
	rc.cache.Set(key, rec, rc.ttl)
}

// Clear flushes the entire cache
func (rc *RecommendationCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.cache.Flush()
	rc.hitCount = 0
	rc.missCount = 0
}

// Stats returns cache statistics
func (rc *RecommendationCache) Stats() (hits, misses uint64, ratio float64) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	hits = rc.hitCount
	misses = rc.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (rc *RecommendationCache) ItemCount() int {
	return rc.cache.ItemCount()
}
