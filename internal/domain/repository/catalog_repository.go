package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/pkg/pagination"
)

// CatalogRepository defines read and maintenance operations for services,
// products and packages
type CatalogRepository interface {
	// GetCatalogPrice resolves the description and current price of a
	// catalog entry. Returns nil, nil when there is no such entry.
	GetCatalogPrice(ctx context.Context, kind enum.ItemKind, id uuid.UUID) (*entity.CatalogPrice, error)

	CreateService(ctx context.Context, service *entity.Service) error
	GetService(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	UpdateService(ctx context.Context, service *entity.Service) error
	ListServices(ctx context.Context, params *CatalogFilterParams) ([]entity.Service, int64, error)

	CreateProduct(ctx context.Context, product *entity.Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	UpdateProduct(ctx context.Context, product *entity.Product) error
	ListProducts(ctx context.Context, params *CatalogFilterParams) ([]entity.Product, int64, error)

	CreatePackage(ctx context.Context, pkg *entity.Package) error
	GetPackage(ctx context.Context, id uuid.UUID) (*entity.Package, error)
	UpdatePackage(ctx context.Context, pkg *entity.Package) error
	ListPackages(ctx context.Context, params *CatalogFilterParams) ([]entity.Package, int64, error)
}

// CatalogFilterParams contains filtering parameters for catalog listings
type CatalogFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	ActiveOnly bool
}
