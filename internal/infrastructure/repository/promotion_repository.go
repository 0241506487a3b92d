package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type promotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository creates a new promotion repository
func NewPromotionRepository(db *gorm.DB) domainRepo.PromotionRepository {
	return &promotionRepository{db: db}
}

func (r *promotionRepository) Create(ctx context.Context, promotion *entity.Promotion) error {
	return conn(ctx, r.db).Create(promotion).Error
}

func (r *promotionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Promotion, error) {
	var promotion entity.Promotion
	err := conn(ctx, r.db).First(&promotion, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &promotion, err
}

func (r *promotionRepository) Update(ctx context.Context, promotion *entity.Promotion) error {
	return conn(ctx, r.db).Save(promotion).Error
}

func (r *promotionRepository) List(ctx context.Context, params *domainRepo.PromotionFilterParams) ([]entity.Promotion, int64, error) {
	var promotions []entity.Promotion
	var total int64

	query := conn(ctx, r.db).Model(&entity.Promotion{}).
		Scopes(SearchScope(params.Search, "name", "coupon_code"))
	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("created_at DESC").
		Find(&promotions).Error

	return promotions, total, err
}

func (r *promotionRepository) ListActive(ctx context.Context, kind enum.ItemKind, asOf time.Time) ([]entity.Promotion, error) {
	var promotions []entity.Promotion
	day := asOf.Format("2006-01-02")
	err := conn(ctx, r.db).
		Where("is_active = ?", true).
		Where("scope IN ?", enum.ScopesFor(kind)).
		Where("start_date <= ? AND end_date >= ?", day, day).
		Order("created_at ASC, id ASC").
		Find(&promotions).Error
	return promotions, err
}

func (r *promotionRepository) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Promotion, error) {
	if len(ids) == 0 {
		return []entity.Promotion{}, nil
	}
	var promotions []entity.Promotion
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&promotions).Error
	return promotions, err
}

func (r *promotionRepository) IncrementUsage(ctx context.Context, id uuid.UUID, by int) error {
	return conn(ctx, r.db).Model(&entity.Promotion{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", by)).Error
}

func (r *promotionRepository) CountClientUsage(ctx context.Context, promotionID, clientID uuid.UUID) (int, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.PromotionUsage{}).
		Where("promotion_id = ? AND client_id = ?", promotionID, clientID).
		Count(&count).Error
	return int(count), err
}

func (r *promotionRepository) CreateUsages(ctx context.Context, usages []entity.PromotionUsage) error {
	if len(usages) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&usages).Error
}
