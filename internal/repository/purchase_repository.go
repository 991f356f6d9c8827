package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yourusername/keiba-advisor/internal/database"
	"github.com/yourusername/keiba-advisor/internal/models"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a duplicate key
const uniqueViolation = "23505"

const purchaseColumns = `id, recommendation_id, race_id, purchase_date, season, venue, bet_type, combinations, strategy_type,
	       purchase_count, unit_price, total_cost, expected_value, expected_return,
	       actual_return, is_hit, recovery_rate, settled_at, created_at`

// PostgresPurchaseRepository implements PurchaseRepository for PostgreSQL
type PostgresPurchaseRepository struct {
	db *database.DB
}

// NewPostgresPurchaseRepository creates a new purchase repository
func NewPostgresPurchaseRepository(db *database.DB) PurchaseRepository {
	return &PostgresPurchaseRepository{db: db}
}

// Create inserts a new purchase
func (r *PostgresPurchaseRepository) Create(ctx context.Context, p *models.PurchaseRecord) error {
	query := `
		INSERT INTO purchase_history (` + purchaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		p.ID, p.RecommendationID, p.RaceID, p.PurchaseDate, p.Season, p.Venue, p.BetType, p.Combinations, p.StrategyType,
		p.PurchaseCount, p.UnitPrice, p.TotalCost, p.ExpectedValue, p.ExpectedReturn,
		p.ActualReturn, p.IsHit, p.RecoveryRate, p.SettledAt, p.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return models.ErrDuplicatePurchase
	}
	if err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}
	return nil
}

// GetByID retrieves a purchase by ID
func (r *PostgresPurchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseRecord, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchase_history WHERE id = $1`

	p, err := scanPurchase(r.db.Conn(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	return p, nil
}

// Settle stores the payout of an unsettled purchase
func (r *PostgresPurchaseRepository) Settle(ctx context.Context, p *models.PurchaseRecord) error {
	query := `
		UPDATE purchase_history SET
			actual_return = $2, is_hit = $3, recovery_rate = $4, settled_at = $5
		WHERE id = $1 AND settled_at IS NULL
	`

	conn := r.db.Conn(ctx)
	tag, err := conn.Exec(ctx, query, p.ID, p.ActualReturn, p.IsHit, p.RecoveryRate, p.SettledAt)
	if err != nil {
		return fmt.Errorf("failed to settle purchase: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM purchase_history WHERE id = $1)`, p.ID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to settle purchase: %w", err)
	}
	if !exists {
		return models.ErrNotFound
	}
	return models.ErrAlreadySettled
}

// List retrieves the newest purchases
func (r *PostgresPurchaseRepository) List(ctx context.Context, limit int) ([]*models.PurchaseRecord, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchase_history ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	purchases := []*models.PurchaseRecord{}
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// Statistics aggregates the ledger by bet type and by season
func (r *PostgresPurchaseRepository) Statistics(ctx context.Context) (*models.PurchaseStatistics, error) {
	byBetType, err := r.groupBy(ctx, "bet_type")
	if err != nil {
		return nil, err
	}
	bySeason, err := r.groupBy(ctx, "season")
	if err != nil {
		return nil, err
	}
	return &models.PurchaseStatistics{ByBetType: byBetType, BySeason: bySeason}, nil
}

// groupBy only accepts the fixed column names used by Statistics
func (r *PostgresPurchaseRepository) groupBy(ctx context.Context, column string) ([]models.GroupStatistics, error) {
	query := fmt.Sprintf(`
		SELECT %[1]s, COUNT(*), COALESCE(SUM(total_cost), 0)::BIGINT, COALESCE(SUM(actual_return), 0)::BIGINT,
		       COUNT(*) FILTER (WHERE is_hit)
		FROM purchase_history
		GROUP BY %[1]s
		ORDER BY %[1]s
	`, column)

	rows, err := r.db.Conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate purchases by %s: %w", column, err)
	}
	defer rows.Close()

	groups := []models.GroupStatistics{}
	for rows.Next() {
		var (
			key               string
			count, hits       int
			cost, totalReturn int64
		)
		if err := rows.Scan(&key, &count, &cost, &totalReturn, &hits); err != nil {
			return nil, fmt.Errorf("failed to scan %s statistics: %w", column, err)
		}
		groups = append(groups, models.NewGroupStatistics(key, count, cost, totalReturn, hits))
	}
	return groups, rows.Err()
}

func scanPurchase(row pgx.Row) (*models.PurchaseRecord, error) {
	p := &models.PurchaseRecord{}
	err := row.Scan(
		&p.ID, &p.RecommendationID, &p.RaceID, &p.PurchaseDate, &p.Season, &p.Venue, &p.BetType, &p.Combinations, &p.StrategyType,
		&p.PurchaseCount, &p.UnitPrice, &p.TotalCost, &p.ExpectedValue, &p.ExpectedReturn,
		&p.ActualReturn, &p.IsHit, &p.RecoveryRate, &p.SettledAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
