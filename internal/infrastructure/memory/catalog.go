package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
)

type catalogRepo struct{ s *Store }

// Catalog returns the store as a CatalogRepository
func (s *Store) Catalog() domainRepo.CatalogRepository {
	return &catalogRepo{s: s}
}

func (r *catalogRepo) GetCatalogPrice(ctx context.Context, kind enum.ItemKind, id uuid.UUID) (*entity.CatalogPrice, error) {
	defer r.s.read()()

	price := &entity.CatalogPrice{Kind: kind, ItemID: id}
	switch kind {
	case enum.ItemKindService:
		v, ok := r.s.st.services[id]
		if !ok {
			return nil, nil
		}
		price.Description, price.UnitPrice, price.IsActive = v.Name, v.Price, v.IsActive
	case enum.ItemKindProduct:
		v, ok := r.s.st.products[id]
		if !ok {
			return nil, nil
		}
		price.Description, price.UnitPrice, price.IsActive = v.Name, v.Price, v.IsActive
	case enum.ItemKindPackage:
		v, ok := r.s.st.packages[id]
		if !ok {
			return nil, nil
		}
		price.Description, price.UnitPrice, price.IsActive = v.Name, v.Price, v.IsActive
	default:
		return nil, nil
	}
	return price, nil
}

func listNamed[T any](m map[uuid.UUID]T, name func(T) string, active func(T) bool, params *domainRepo.CatalogFilterParams) ([]T, int64) {
	all := sortedValues(m, func(a, b T) int {
		return strings.Compare(name(a), name(b))
	})
	out := make([]T, 0, len(all))
	for _, v := range all {
		if params.ActiveOnly && !active(v) {
			continue
		}
		if params.Search != "" && !containsFold(name(v), params.Search) {
			continue
		}
		out = append(out, v)
	}
	return page(out, params.Pagination), int64(len(out))
}

func (r *catalogRepo) CreateService(ctx context.Context, service *entity.Service) error {
	defer r.s.write(ctx)()
	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}
	r.s.stamp(&service.CreatedAt, &service.UpdatedAt)
	r.s.st.services[service.ID] = *service
	return nil
}

func (r *catalogRepo) GetService(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	defer r.s.read()()
	v, ok := r.s.st.services[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r *catalogRepo) UpdateService(ctx context.Context, service *entity.Service) error {
	defer r.s.write(ctx)()
	r.s.stamp(nil, &service.UpdatedAt)
	r.s.st.services[service.ID] = *service
	return nil
}

func (r *catalogRepo) ListServices(ctx context.Context, params *domainRepo.CatalogFilterParams) ([]entity.Service, int64, error) {
	defer r.s.read()()
	items, total := listNamed(r.s.st.services,
		func(v entity.Service) string { return v.Name },
		func(v entity.Service) bool { return v.IsActive }, params)
	return items, total, nil
}

func (r *catalogRepo) CreateProduct(ctx context.Context, product *entity.Product) error {
	defer r.s.write(ctx)()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.s.stamp(&product.CreatedAt, &product.UpdatedAt)
	r.s.st.products[product.ID] = *product
	return nil
}

func (r *catalogRepo) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	defer r.s.read()()
	v, ok := r.s.st.products[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r *catalogRepo) UpdateProduct(ctx context.Context, product *entity.Product) error {
	defer r.s.write(ctx)()
	r.s.stamp(nil, &product.UpdatedAt)
	r.s.st.products[product.ID] = *product
	return nil
}

func (r *catalogRepo) ListProducts(ctx context.Context, params *domainRepo.CatalogFilterParams) ([]entity.Product, int64, error) {
	defer r.s.read()()
	items, total := listNamed(r.s.st.products,
		func(v entity.Product) string { return v.Name },
		func(v entity.Product) bool { return v.IsActive }, params)
	return items, total, nil
}

func (r *catalogRepo) CreatePackage(ctx context.Context, pkg *entity.Package) error {
	defer r.s.write(ctx)()
	if pkg.ID == uuid.Nil {
		pkg.ID = uuid.New()
	}
	r.s.stamp(&pkg.CreatedAt, &pkg.UpdatedAt)
	stored := *pkg
	stored.ServiceIDs = append(entity.UUIDList(nil), pkg.ServiceIDs...)
	r.s.st.packages[pkg.ID] = stored
	return nil
}

func (r *catalogRepo) GetPackage(ctx context.Context, id uuid.UUID) (*entity.Package, error) {
	defer r.s.read()()
	v, ok := r.s.st.packages[id]
	if !ok {
		return nil, nil
	}
	v.ServiceIDs = append(entity.UUIDList(nil), v.ServiceIDs...)
	return &v, nil
}

func (r *catalogRepo) UpdatePackage(ctx context.Context, pkg *entity.Package) error {
	defer r.s.write(ctx)()
	r.s.stamp(nil, &pkg.UpdatedAt)
	stored := *pkg
	stored.ServiceIDs = append(entity.UUIDList(nil), pkg.ServiceIDs...)
	r.s.st.packages[pkg.ID] = stored
	return nil
}

func (r *catalogRepo) ListPackages(ctx context.Context, params *domainRepo.CatalogFilterParams) ([]entity.Package, int64, error) {
	defer r.s.read()()
	items, total := listNamed(r.s.st.packages,
		func(v entity.Package) string { return v.Name },
		func(v entity.Package) bool { return v.IsActive }, params)
	return items, total, nil
}
