package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
)

type promotionRepo struct{ s *Store }

// Promotions returns the store as a PromotionRepository
func (s *Store) Promotions() domainRepo.PromotionRepository {
	return &promotionRepo{s: s}
}

func byCreation(a, b entity.Promotion) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID.String(), b.ID.String())
}

func (r *promotionRepo) Create(ctx context.Context, promotion *entity.Promotion) error {
	defer r.s.write(ctx)()
	if promotion.ID == uuid.Nil {
		promotion.ID = uuid.New()
	}
	r.s.stamp(&promotion.CreatedAt, &promotion.UpdatedAt)
	r.s.st.promotions[promotion.ID] = *promotion
	return nil
}

func (r *promotionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Promotion, error) {
	defer r.s.read()()
	p, ok := r.s.st.promotions[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *promotionRepo) Update(ctx context.Context, promotion *entity.Promotion) error {
	defer r.s.write(ctx)()
	r.s.stamp(nil, &promotion.UpdatedAt)
	r.s.st.promotions[promotion.ID] = *promotion
	return nil
}

func (r *promotionRepo) List(ctx context.Context, params *domainRepo.PromotionFilterParams) ([]entity.Promotion, int64, error) {
	defer r.s.read()()

	all := sortedValues(r.s.st.promotions, func(a, b entity.Promotion) int { return byCreation(b, a) })
	out := make([]entity.Promotion, 0, len(all))
	for _, p := range all {
		if params.ActiveOnly && !p.IsActive {
			continue
		}
		if params.Search != "" && !containsFold(p.Name, params.Search) && !strPtrContains(p.CouponCode, params.Search) {
			continue
		}
		out = append(out, p)
	}
	return page(out, params.Pagination), int64(len(out)), nil
}

func (r *promotionRepo) ListActive(ctx context.Context, kind enum.ItemKind, asOf time.Time) ([]entity.Promotion, error) {
	defer r.s.read()()

	day := asOf.Format("2006-01-02")
	out := make([]entity.Promotion, 0)
	for _, p := range r.s.st.promotions {
		if !p.IsActive || !p.Scope.Covers(kind) {
			continue
		}
		if p.StartDate.Format("2006-01-02") > day || p.EndDate.Format("2006-01-02") < day {
			continue
		}
		out = append(out, p)
	}
	slices.SortFunc(out, byCreation)
	return out, nil
}

func (r *promotionRepo) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Promotion, error) {
	defer r.s.read()()

	out := make([]entity.Promotion, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.st.promotions[id]; ok {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b entity.Promotion) int {
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (r *promotionRepo) IncrementUsage(ctx context.Context, id uuid.UUID, by int) error {
	defer r.s.write(ctx)()
	p, ok := r.s.st.promotions[id]
	if !ok {
		return nil
	}
	p.UsageCount += by
	r.s.st.promotions[id] = p
	return nil
}

func (r *promotionRepo) CountClientUsage(ctx context.Context, promotionID, clientID uuid.UUID) (int, error) {
	defer r.s.read()()
	n := 0
	for _, u := range r.s.st.usages {
		if u.PromotionID == promotionID && u.ClientID != nil && *u.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

func (r *promotionRepo) CreateUsages(ctx context.Context, usages []entity.PromotionUsage) error {
	defer r.s.write(ctx)()
	for i := range usages {
		if usages[i].ID == uuid.Nil {
			usages[i].ID = uuid.New()
		}
		r.s.st.usages = append(r.s.st.usages, usages[i])
	}
	return nil
}

// Usages returns every recorded redemption, oldest first
func (s *Store) Usages() []entity.PromotionUsage {
	defer s.read()()
	return slices.Clone(s.st.usages)
}
