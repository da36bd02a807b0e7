package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/promotion-service/internal/model"
	"github.com/fairyhunter13/promotion-service/internal/service"
	"github.com/fairyhunter13/promotion-service/pkg/database"
)

// PoolInterface defines the database operations needed by PromotionRepository.
// It is satisfied by *pgxpool.Pool and allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const promotionColumns = `promotion_id, name, product_id, discount_ratio, redeemed_count, created_at, updated_at`

// PromotionRepository provides data access for promotions using pgx.
type PromotionRepository struct {
	pool PoolInterface
}

// NewPromotionRepository creates a new PromotionRepository with the given pool.
func NewPromotionRepository(pool PoolInterface) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// invalidDataCodes are the PostgreSQL error codes caused by the promotion data itself.
var invalidDataCodes = map[string]bool{
	"23514": true, // check_violation
	"22001": true, // string_data_right_truncation
	"22003": true, // numeric_value_out_of_range
	"22021": true, // character_not_in_repertoire
}

// wrapDataError returns service.ErrInvalidPromotion for data errors and wraps the rest with op.
func wrapDataError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && invalidDataCodes[pgErr.Code] {
		return service.ErrInvalidPromotion
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanPromotion(row pgx.Row, p *model.Promotion) error {
	return row.Scan(
		&p.PromotionID,
		&p.Name,
		&p.ProductID,
		&p.DiscountRatio,
		&p.RedeemedCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

// List returns the promotions matching filter ordered by promotion_id.
// At most one filter field is expected to be set; a zero filter returns every row.
// On success, returns an empty slice (not nil) when nothing matches.
func (r *PromotionRepository) List(ctx context.Context, filter model.PromotionFilter) ([]model.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions`
	var args []any

	switch {
	case filter.Name != nil:
		query += ` WHERE name = $1`
		args = append(args, *filter.Name)
	case filter.ProductID != nil:
		query += ` WHERE product_id = $1`
		args = append(args, *filter.ProductID)
	case filter.DiscountRatio != nil:
		query += ` WHERE discount_ratio = $1`
		args = append(args, *filter.DiscountRatio)
	}
	query += ` ORDER BY promotion_id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDataError(err, "query promotions")
	}
	defer rows.Close()

	promotions := []model.Promotion{}
	for rows.Next() {
		var p model.Promotion
		if err := scanPromotion(rows, &p); err != nil {
			return nil, wrapDataError(err, "scan promotion")
		}
		promotions = append(promotions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDataError(err, "iterate promotion rows")
	}
	return promotions, nil
}

// GetByID retrieves a promotion by its id.
// Returns nil, nil if the promotion is not found (service layer handles this).
func (r *PromotionRepository) GetByID(ctx context.Context, id int64) (*model.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE promotion_id = $1`

	var p model.Promotion
	if err := scanPromotion(r.pool.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get promotion %d: %w", id, err)
	}
	return &p, nil
}

// Insert inserts a new promotion and fills in the server-assigned columns.
func (r *PromotionRepository) Insert(ctx context.Context, p *model.Promotion) error {
	query := `INSERT INTO promotions (name, product_id, discount_ratio)
		VALUES ($1, $2, $3)
		RETURNING ` + promotionColumns

	if err := scanPromotion(r.pool.QueryRow(ctx, query, p.Name, p.ProductID, p.DiscountRatio), p); err != nil {
		return wrapDataError(err, "insert promotion")
	}
	return nil
}

// Update writes name, product_id and discount_ratio of an existing promotion.
// redeemed_count is never written here. The stored row is scanned back into p.
// Returns service.ErrPromotionNotFound if no row has p.PromotionID.
func (r *PromotionRepository) Update(ctx context.Context, p *model.Promotion) error {
	query := `UPDATE promotions
		SET name = $2, product_id = $3, discount_ratio = $4, updated_at = NOW()
		WHERE promotion_id = $1
		RETURNING ` + promotionColumns

	err := scanPromotion(r.pool.QueryRow(ctx, query, p.PromotionID, p.Name, p.ProductID, p.DiscountRatio), p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.ErrPromotionNotFound
		}
		return wrapDataError(err, fmt.Sprintf("update promotion %d", p.PromotionID))
	}
	return nil
}

// Delete removes a promotion by id. Deleting an absent id is not an error.
func (r *PromotionRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM promotions WHERE promotion_id = $1`, id); err != nil {
		return fmt.Errorf("delete promotion %d: %w", id, err)
	}
	return nil
}

// DeleteAll removes every promotion.
func (r *PromotionRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM promotions`); err != nil {
		return fmt.Errorf("delete all promotions: %w", err)
	}
	return nil
}

// GetForUpdate retrieves a promotion with a row lock (SELECT FOR UPDATE).
// This locks the row until the transaction completes.
// Returns service.ErrPromotionNotFound if the promotion doesn't exist.
func (r *PromotionRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE promotion_id = $1 FOR UPDATE`

	var p model.Promotion
	if err := scanPromotion(tx.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrPromotionNotFound
		}
		return nil, fmt.Errorf("get promotion for update %d: %w", id, err)
	}
	return &p, nil
}

// IncrementRedeemed adds one to redeemed_count and returns the updated row.
// Must be called within a transaction after locking the row.
func (r *PromotionRepository) IncrementRedeemed(ctx context.Context, tx database.TxQuerier, id int64) (*model.Promotion, error) {
	query := `UPDATE promotions
		SET redeemed_count = redeemed_count + 1, updated_at = NOW()
		WHERE promotion_id = $1
		RETURNING ` + promotionColumns

	var p model.Promotion
	if err := scanPromotion(tx.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrPromotionNotFound
		}
		return nil, fmt.Errorf("increment redeemed count for %d: %w", id, err)
	}
	return &p, nil
}
