package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fairyhunter13/promotion-service/internal/model"
	"github.com/fairyhunter13/promotion-service/pkg/database"
)

// PromotionRepositoryInterface defines the interface for promotion data access.
type PromotionRepositoryInterface interface {
	List(ctx context.Context, filter model.PromotionFilter) ([]model.Promotion, error)
	GetByID(ctx context.Context, id int64) (*model.Promotion, error)
	Insert(ctx context.Context, p *model.Promotion) error
	Update(ctx context.Context, p *model.Promotion) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Promotion, error)
	IncrementRedeemed(ctx context.Context, tx database.TxQuerier, id int64) (*model.Promotion, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PromotionService provides business logic for promotion operations.
type PromotionService struct {
	pool TxBeginner
	repo PromotionRepositoryInterface
}

// NewPromotionService creates a new PromotionService.
// pool is usually a *pgxpool.Pool; tests pass a mock TxBeginner.
func NewPromotionService(pool TxBeginner, repo PromotionRepositoryInterface) *PromotionService {
	return &PromotionService{
		pool: pool,
		repo: repo,
	}
}

// List returns the promotions matching filter, or all of them for a zero filter.
func (s *PromotionService) List(ctx context.Context, filter model.PromotionFilter) ([]model.Promotion, error) {
	promotions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	return promotions, nil
}

// Get retrieves a promotion by id.
// Returns ErrPromotionNotFound if the promotion doesn't exist.
func (s *PromotionService) Get(ctx context.Context, id int64) (*model.Promotion, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	if p == nil {
		return nil, ErrPromotionNotFound
	}
	return p, nil
}

// Create stores a new promotion and fills in its server-assigned fields.
// Returns ErrInvalidPromotion if the store rejects the data.
func (s *PromotionService) Create(ctx context.Context, p *model.Promotion) error {
	p.PromotionID = 0
	p.RedeemedCount = 0
	if err := s.repo.Insert(ctx, p); err != nil {
		if errors.Is(err, ErrInvalidPromotion) {
			return ErrInvalidPromotion
		}
		return fmt.Errorf("create promotion: %w", err)
	}
	return nil
}

// Update replaces the editable fields of the promotion identified by id.
// The id argument always wins over p.PromotionID.
// Returns ErrPromotionNotFound if the promotion doesn't exist and
// ErrInvalidPromotion if the store rejects the data.
func (s *PromotionService) Update(ctx context.Context, id int64, p *model.Promotion) error {
	p.PromotionID = id
	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrPromotionNotFound) || errors.Is(err, ErrInvalidPromotion) {
			return err
		}
		return fmt.Errorf("update promotion: %w", err)
	}
	return nil
}

// Delete removes a promotion. Deleting an absent promotion is not an error.
func (s *PromotionService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete promotion: %w", err)
	}
	return nil
}

// RemoveAll deletes every promotion.
func (s *PromotionService) RemoveAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("remove all promotions: %w", err)
	}
	return nil
}

// Redeem atomically increments the redeemed_count of a promotion by one.
// Uses SELECT FOR UPDATE so concurrent redeems of the same promotion serialize on the row lock.
// Returns ErrPromotionNotFound if the promotion doesn't exist; nothing is created in that case.
func (s *PromotionService) Redeem(ctx context.Context, id int64) (*model.Promotion, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op after commit

	// 1. Lock the promotion row
	if _, err := s.repo.GetForUpdate(ctx, tx, id); err != nil {
		if errors.Is(err, ErrPromotionNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, fmt.Errorf("get promotion for update: %w", err)
	}

	// 2. Increment while holding the lock
	p, err := s.repo.IncrementRedeemed(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("increment redeemed count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit redeem: %w", err)
	}
	return p, nil
}
