package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/keiba-advisor/internal/models"
)

// PurchaseRepository defines the interface for purchase ledger access
type PurchaseRepository interface {
	// Create returns models.ErrDuplicatePurchase when the recommendation was already purchased
	Create(ctx context.Context, purchase *models.PurchaseRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseRecord, error)
	// Settle persists the settlement fields of an unsettled purchase.
	// It returns models.ErrAlreadySettled when the purchase was settled first.
	Settle(ctx context.Context, purchase *models.PurchaseRecord) error
	// List returns purchases newest first; limit <= 0 returns all
	List(ctx context.Context, limit int) ([]*models.PurchaseRecord, error)
	Statistics(ctx context.Context) (*models.PurchaseStatistics, error)
}

// RecommendationRepository defines the interface for issued recommendation storage
type RecommendationRepository interface {
	Save(ctx context.Context, rec *models.IssuedRecommendation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.IssuedRecommendation, error)
	ListByRace(ctx context.Context, raceID string, limit int) ([]*models.IssuedRecommendation, error)
}
