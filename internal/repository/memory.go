package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/yourusername/keiba-advisor/internal/models"
)

// MemoryPurchaseRepository keeps the ledger in process memory.
// It backs the API when no database is configured.
type MemoryPurchaseRepository struct {
	mu        sync.RWMutex
	purchases map[uuid.UUID]*models.PurchaseRecord
}

// NewMemoryPurchaseRepository creates an empty in-memory ledger
func NewMemoryPurchaseRepository() *MemoryPurchaseRepository {
	return &MemoryPurchaseRepository{purchases: make(map[uuid.UUID]*models.PurchaseRecord)}
}

func (r *MemoryPurchaseRepository) Create(_ context.Context, p *models.PurchaseRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.RecommendationID != nil {
		for _, existing := range r.purchases {
			if existing.RecommendationID != nil && *existing.RecommendationID == *p.RecommendationID {
				return models.ErrDuplicatePurchase
			}
		}
	}

	cp := *p
	cp.Combinations = append([]string(nil), p.Combinations...)
	r.purchases[p.ID] = &cp
	return nil
}

func (r *MemoryPurchaseRepository) GetByID(_ context.Context, id uuid.UUID) (*models.PurchaseRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.purchases[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryPurchaseRepository) Settle(_ context.Context, p *models.PurchaseRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.purchases[p.ID]
	if !ok {
		return models.ErrNotFound
	}
	if stored.SettledAt != nil {
		return models.ErrAlreadySettled
	}
	stored.ActualReturn = p.ActualReturn
	stored.IsHit = p.IsHit
	stored.RecoveryRate = p.RecoveryRate
	stored.SettledAt = p.SettledAt
	return nil
}

func (r *MemoryPurchaseRepository) List(_ context.Context, limit int) ([]*models.PurchaseRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.PurchaseRecord, 0, len(r.purchases))
	for _, p := range r.purchases {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryPurchaseRepository) Statistics(_ context.Context) (*models.PurchaseStatistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byBetType := map[string][]*models.PurchaseRecord{}
	bySeason := map[string][]*models.PurchaseRecord{}
	for _, p := range r.purchases {
		byBetType[string(p.BetType)] = append(byBetType[string(p.BetType)], p)
		bySeason[string(p.Season)] = append(bySeason[string(p.Season)], p)
	}
	return &models.PurchaseStatistics{
		ByBetType: groupStatistics(byBetType),
		BySeason:  groupStatistics(bySeason),
	}, nil
}

func groupStatistics(groups map[string][]*models.PurchaseRecord) []models.GroupStatistics {
	out := make([]models.GroupStatistics, 0, len(groups))
	for key, records := range groups {
		s := models.Summarize(records)
		out = append(out, models.NewGroupStatistics(key, len(records), s.TotalCost, s.TotalReturn, s.HitCount))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// MemoryRecommendationRepository keeps issued recommendations in process memory
type MemoryRecommendationRepository struct {
	mu   sync.RWMutex
	recs map[uuid.UUID]*models.IssuedRecommendation
}

// NewMemoryRecommendationRepository creates an empty in-memory store
func NewMemoryRecommendationRepository() *MemoryRecommendationRepository {
	return &MemoryRecommendationRepository{recs: make(map[uuid.UUID]*models.IssuedRecommendation)}
}

func (r *MemoryRecommendationRepository) Save(_ context.Context, rec *models.IssuedRecommendation) error {
	if rec == nil || rec.Recommendation == nil {
		return models.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *rec
	r.recs[rec.ID] = &cp
	return nil
}

func (r *MemoryRecommendationRepository) GetByID(_ context.Context, id uuid.UUID) (*models.IssuedRecommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.recs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *MemoryRecommendationRepository) ListByRace(_ context.Context, raceID string, limit int) ([]*models.IssuedRecommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*models.IssuedRecommendation{}
	for _, rec := range r.recs {
		if rec.RaceInfo.RaceID == raceID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
