package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/pagination"
)

type clientRepo struct{ s *Store }

// Clients returns the store as a ClientRepository
func (s *Store) Clients() domainRepo.ClientRepository {
	return &clientRepo{s: s}
}

func (r *clientRepo) Create(ctx context.Context, client *entity.Client) error {
	defer r.s.write(ctx)()
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	r.s.stamp(&client.CreatedAt, &client.UpdatedAt)
	r.s.st.clients[client.ID] = *client
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	defer r.s.read()()
	c, ok := r.s.st.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *clientRepo) Update(ctx context.Context, client *entity.Client) error {
	defer r.s.write(ctx)()
	r.s.stamp(nil, &client.UpdatedAt)
	r.s.st.clients[client.ID] = *client
	return nil
}

func (r *clientRepo) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Client, int64, error) {
	defer r.s.read()()

	all := sortedValues(r.s.st.clients, func(a, b entity.Client) int { return strings.Compare(a.Name, b.Name) })
	out := make([]entity.Client, 0, len(all))
	for _, c := range all {
		if search != "" && !containsFold(c.Name, search) && !strPtrContains(c.Email, search) && !strPtrContains(c.Phone, search) {
			continue
		}
		out = append(out, c)
	}
	return page(out, params), int64(len(out)), nil
}

type paymentMethodRepo struct{ s *Store }

// PaymentMethods returns the store as a PaymentMethodRepository
func (s *Store) PaymentMethods() domainRepo.PaymentMethodRepository {
	return &paymentMethodRepo{s: s}
}

func (r *paymentMethodRepo) Create(ctx context.Context, method *entity.PaymentMethod) error {
	defer r.s.write(ctx)()
	for _, m := range r.s.st.paymentMethods {
		if strings.EqualFold(m.Name, method.Name) {
			return domainRepo.ErrDuplicate
		}
	}
	if method.ID == uuid.Nil {
		method.ID = uuid.New()
	}
	r.s.stamp(&method.CreatedAt, &method.UpdatedAt)
	r.s.st.paymentMethods[method.ID] = *method
	return nil
}

func (r *paymentMethodRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.PaymentMethod, error) {
	defer r.s.read()()
	m, ok := r.s.st.paymentMethods[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *paymentMethodRepo) GetByName(ctx context.Context, name string) (*entity.PaymentMethod, error) {
	defer r.s.read()()
	for _, m := range r.s.st.paymentMethods {
		if strings.EqualFold(m.Name, name) {
			return &m, nil
		}
	}
	return nil, nil
}

func (r *paymentMethodRepo) Update(ctx context.Context, method *entity.PaymentMethod) error {
	defer r.s.write(ctx)()
	r.s.stamp(nil, &method.UpdatedAt)
	r.s.st.paymentMethods[method.ID] = *method
	return nil
}

func (r *paymentMethodRepo) List(ctx context.Context, activeOnly bool) ([]entity.PaymentMethod, error) {
	defer r.s.read()()
	all := sortedValues(r.s.st.paymentMethods, func(a, b entity.PaymentMethod) int { return strings.Compare(a.Name, b.Name) })
	out := make([]entity.PaymentMethod, 0, len(all))
	for _, m := range all {
		if activeOnly && !m.IsActive {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
