package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CatalogService maintains services, products and packages
type CatalogService struct {
	catalogRepo repository.CatalogRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalogRepo repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalogRepo: catalogRepo}
}

// CatalogItemInput represents the create input shared by every catalog kind
type CatalogItemInput struct {
	Name            string
	Price           decimal.Decimal
	DurationMinutes int
	Code            *string
	StockQuantity   decimal.Decimal
	ServiceIDs      []uuid.UUID
}

func (in *CatalogItemInput) validate() error {
	var errs []apperror.FieldError
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "name is required"})
	}
	if in.Price.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "price", Message: "price cannot be negative"})
	}
	if in.DurationMinutes < 0 {
		errs = append(errs, apperror.FieldError{Field: "duration_minutes", Message: "duration cannot be negative"})
	}
	if len(errs) > 0 {
		return apperror.NewFieldValidationError(errs)
	}
	return nil
}

// CatalogUpdateInput changes the price or activation of a catalog entry
type CatalogUpdateInput struct {
	Price    *decimal.Decimal
	IsActive *bool
}

func (in *CatalogUpdateInput) validate() error {
	if in.Price != nil && in.Price.IsNegative() {
		return apperror.NewValidationError("price cannot be negative")
	}
	return nil
}

// CreateService adds a bookable service
func (s *CatalogService) CreateService(ctx context.Context, input *CatalogItemInput) (*entity.Service, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	svc := &entity.Service{
		Name:            strings.TrimSpace(input.Name),
		Price:           input.Price,
		DurationMinutes: input.DurationMinutes,
		IsActive:        true,
	}
	if err := s.catalogRepo.CreateService(ctx, svc); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return svc, nil
}

// GetService retrieves a service by ID
func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	svc, err := s.catalogRepo.GetService(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	if svc == nil {
		return nil, apperror.NewNotFoundError("Service")
	}
	return svc, nil
}

// UpdateService changes a service's price or activation
func (s *CatalogService) UpdateService(ctx context.Context, id uuid.UUID, input *CatalogUpdateInput) (*entity.Service, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	svc, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Price != nil {
		svc.Price = *input.Price
	}
	if input.IsActive != nil {
		svc.IsActive = *input.IsActive
	}
	if err := s.catalogRepo.UpdateService(ctx, svc); err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	return svc, nil
}

// ListServices retrieves services with pagination
func (s *CatalogService) ListServices(ctx context.Context, params *repository.CatalogFilterParams) (*pagination.PaginatedResult[entity.Service], error) {
	validateCatalogParams(params)
	items, total, err := s.catalogRepo.ListServices(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return pagination.NewPaginatedResult(items, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)), nil
}

// CreateProduct adds a retail product
func (s *CatalogService) CreateProduct(ctx context.Context, input *CatalogItemInput) (*entity.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	product := &entity.Product{
		Name:          strings.TrimSpace(input.Name),
		Code:          input.Code,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		IsActive:      true,
	}
	if err := s.catalogRepo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.catalogRepo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// UpdateProduct changes a product's price or activation
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input *CatalogUpdateInput) (*entity.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := s.catalogRepo.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

// ListProducts retrieves products with pagination
func (s *CatalogService) ListProducts(ctx context.Context, params *repository.CatalogFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	validateCatalogParams(params)
	items, total, err := s.catalogRepo.ListProducts(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return pagination.NewPaginatedResult(items, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)), nil
}

// CreatePackage bundles existing services at one price
func (s *CatalogService) CreatePackage(ctx context.Context, input *CatalogItemInput) (*entity.Package, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	for _, id := range input.ServiceIDs {
		if _, err := s.GetService(ctx, id); err != nil {
			if apperror.IsKind(err, apperror.KindNotFound) {
				return nil, apperror.NewValidationError(fmt.Sprintf("service %s does not exist", id))
			}
			return nil, err
		}
	}

	pkg := &entity.Package{
		Name:       strings.TrimSpace(input.Name),
		Price:      input.Price,
		ServiceIDs: entity.UUIDList(input.ServiceIDs),
		IsActive:   true,
	}
	if err := s.catalogRepo.CreatePackage(ctx, pkg); err != nil {
		return nil, fmt.Errorf("create package: %w", err)
	}
	return pkg, nil
}

// GetPackage retrieves a package by ID
func (s *CatalogService) GetPackage(ctx context.Context, id uuid.UUID) (*entity.Package, error) {
	pkg, err := s.catalogRepo.GetPackage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get package: %w", err)
	}
	if pkg == nil {
		return nil, apperror.NewNotFoundError("Package")
	}
	return pkg, nil
}

// UpdatePackage changes a package's price or activation
func (s *CatalogService) UpdatePackage(ctx context.Context, id uuid.UUID, input *CatalogUpdateInput) (*entity.Package, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	pkg, err := s.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Price != nil {
		pkg.Price = *input.Price
	}
	if input.IsActive != nil {
		pkg.IsActive = *input.IsActive
	}
	if err := s.catalogRepo.UpdatePackage(ctx, pkg); err != nil {
		return nil, fmt.Errorf("update package: %w", err)
	}
	return pkg, nil
}

// ListPackages retrieves packages with pagination
func (s *CatalogService) ListPackages(ctx context.Context, params *repository.CatalogFilterParams) (*pagination.PaginatedResult[entity.Package], error) {
	validateCatalogParams(params)
	items, total, err := s.catalogRepo.ListPackages(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return pagination.NewPaginatedResult(items, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)), nil
}

// Price resolves what a line of kind/id would be charged before promotions
func (s *CatalogService) Price(ctx context.Context, kind enum.ItemKind, id uuid.UUID) (*entity.CatalogPrice, error) {
	if !kind.IsValid() {
		return nil, apperror.NewValidationError(fmt.Sprintf("unknown item kind %q", kind))
	}
	price, err := s.catalogRepo.GetCatalogPrice(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("catalog price: %w", err)
	}
	if price == nil {
		return nil, apperror.NewNotFoundError("Catalog item")
	}
	return price, nil
}

func validateCatalogParams(params *repository.CatalogFilterParams) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
}
