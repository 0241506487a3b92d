package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/pkg/pagination"
)

// PromotionRepository defines the interface for promotion data operations
type PromotionRepository interface {
	Create(ctx context.Context, promotion *entity.Promotion) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Promotion, error)
	Update(ctx context.Context, promotion *entity.Promotion) error
	List(ctx context.Context, params *PromotionFilterParams) ([]entity.Promotion, int64, error)

	// ListActive returns active promotions whose scope covers kind and whose
	// date range contains asOf. Day, time and cap checks are left to the caller.
	ListActive(ctx context.Context, kind enum.ItemKind, asOf time.Time) ([]entity.Promotion, error)
	// LockByIDs loads the promotions under a row lock, in id order
	LockByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Promotion, error)
	IncrementUsage(ctx context.Context, id uuid.UUID, by int) error
	CountClientUsage(ctx context.Context, promotionID, clientID uuid.UUID) (int, error)
	CreateUsages(ctx context.Context, usages []entity.PromotionUsage) error
}

// PromotionFilterParams contains filtering parameters for promotion listings
type PromotionFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	ActiveOnly bool
}
