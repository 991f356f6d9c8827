package repository

import (
	"fmt"

	"github.com/yourusername/keiba-advisor/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Purchase       PurchaseRepository
	Recommendation RecommendationRepository
}

// NewRepositories creates the PostgreSQL-backed repositories
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Purchase:       NewPostgresPurchaseRepository(db),
		Recommendation: NewPostgresRecommendationRepository(db),
	}, nil
}

// NewMemoryRepositories creates process-local repositories
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Purchase:       NewMemoryPurchaseRepository(),
		Recommendation: NewMemoryRecommendationRepository(),
	}
}
