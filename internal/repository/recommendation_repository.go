package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/keiba-advisor/internal/database"
	"github.com/yourusername/keiba-advisor/internal/models"
)

// PostgresRecommendationRepository implements RecommendationRepository for PostgreSQL.
// The full recommendation is kept as a JSONB payload next to a few indexed columns.
type PostgresRecommendationRepository struct {
	db *database.DB
}

// NewPostgresRecommendationRepository creates a new recommendation repository
func NewPostgresRecommendationRepository(db *database.DB) RecommendationRepository {
	return &PostgresRecommendationRepository{db: db}
}

// Save inserts an issued recommendation
func (r *PostgresRecommendationRepository) Save(ctx context.Context, rec *models.IssuedRecommendation) error {
	if rec == nil || rec.Recommendation == nil {
		return fmt.Errorf("%w: recommendation is empty", models.ErrInvalidInput)
	}

	payload, err := json.Marshal(rec.Recommendation)
	if err != nil {
		return fmt.Errorf("failed to encode recommendation: %w", err)
	}

	query := `
		INSERT INTO recommendations (id, race_id, race_level, bet_type, total_cost, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.Conn(ctx).Exec(ctx, query,
		rec.ID, rec.RaceInfo.RaceID, rec.RaceLevel, rec.BestBetType,
		rec.Recommendation.Recommendation.TotalCost, payload, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save recommendation: %w", err)
	}
	return nil
}

// GetByID retrieves a recommendation by ID
func (r *PostgresRecommendationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.IssuedRecommendation, error) {
	query := `SELECT id, created_at, payload FROM recommendations WHERE id = $1`

	rec, err := scanRecommendation(r.db.Conn(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}
	return rec, nil
}

// ListByRace retrieves the newest recommendations issued for a race
func (r *PostgresRecommendationRepository) ListByRace(ctx context.Context, raceID string, limit int) ([]*models.IssuedRecommendation, error) {
	query := `SELECT id, created_at, payload FROM recommendations WHERE race_id = $1 ORDER BY created_at DESC`
	args := []any{raceID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	recs := []*models.IssuedRecommendation{}
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func scanRecommendation(row pgx.Row) (*models.IssuedRecommendation, error) {
	var payload []byte
	rec := &models.IssuedRecommendation{Recommendation: &models.Recommendation{}}
	if err := row.Scan(&rec.ID, &rec.CreatedAt, &payload); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, rec.Recommendation); err != nil {
		return nil, fmt.Errorf("failed to decode recommendation payload: %w", err)
	}
	return rec, nil
}
