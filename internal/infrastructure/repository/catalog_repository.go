package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"gorm.io/gorm"
)

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a repository over the services, products and packages tables
func NewCatalogRepository(db *gorm.DB) domainRepo.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetCatalogPrice(ctx context.Context, kind enum.ItemKind, id uuid.UUID) (*entity.CatalogPrice, error) {
	var model interface{}
	switch kind {
	case enum.ItemKindService:
		model = &entity.Service{}
	case enum.ItemKindProduct:
		model = &entity.Product{}
	case enum.ItemKindPackage:
		model = &entity.Package{}
	default:
		return nil, nil
	}

	var price entity.CatalogPrice
	err := conn(ctx, r.db).Model(model).
		Select("name AS description, price AS unit_price, is_active").
		Where("id = ?", id).
		Take(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	price.Kind = kind
	price.ItemID = id
	return &price, nil
}

func getByID[T any](ctx context.Context, db *gorm.DB, id uuid.UUID) (*T, error) {
	var out T
	err := conn(ctx, db).First(&out, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &out, err
}

func listCatalog[T any](ctx context.Context, db *gorm.DB, params *domainRepo.CatalogFilterParams) ([]T, int64, error) {
	var items []T
	var total int64

	var model T
	query := conn(ctx, db).Model(&model).Scopes(SearchScope(params.Search, "name"))
	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("name ASC").
		Find(&items).Error

	return items, total, err
}

func (r *catalogRepository) CreateService(ctx context.Context, service *entity.Service) error {
	return conn(ctx, r.db).Create(service).Error
}

func (r *catalogRepository) GetService(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	return getByID[entity.Service](ctx, r.db, id)
}

func (r *catalogRepository) UpdateService(ctx context.Context, service *entity.Service) error {
	return conn(ctx, r.db).Save(service).Error
}

func (r *catalogRepository) ListServices(ctx context.Context, params *domainRepo.CatalogFilterParams) ([]entity.Service, int64, error) {
	return listCatalog[entity.Service](ctx, r.db, params)
}

func (r *catalogRepository) CreateProduct(ctx context.Context, product *entity.Product) error {
	return conn(ctx, r.db).Create(product).Error
}

func (r *catalogRepository) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return getByID[entity.Product](ctx, r.db, id)
}

func (r *catalogRepository) UpdateProduct(ctx context.Context, product *entity.Product) error {
	return conn(ctx, r.db).Save(product).Error
}

func (r *catalogRepository) ListProducts(ctx context.Context, params *domainRepo.CatalogFilterParams) ([]entity.Product, int64, error) {
	return listCatalog[entity.Product](ctx, r.db, params)
}

func (r *catalogRepository) CreatePackage(ctx context.Context, pkg *entity.Package) error {
	return conn(ctx, r.db).Create(pkg).Error
}

func (r *catalogRepository) GetPackage(ctx context.Context, id uuid.UUID) (*entity.Package, error) {
	return getByID[entity.Package](ctx, r.db, id)
}

func (r *catalogRepository) UpdatePackage(ctx context.Context, pkg *entity.Package) error {
	return conn(ctx, r.db).Save(pkg).Error
}

func (r *catalogRepository) ListPackages(ctx context.Context, params *domainRepo.CatalogFilterParams) ([]entity.Package, int64, error) {
	return listCatalog[entity.Package](ctx, r.db, params)
}
