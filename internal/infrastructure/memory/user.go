package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/pagination"
)

type userRepo struct{ s *Store }

// Users returns the store as a UserRepository
func (s *Store) Users() domainRepo.UserRepository {
	return &userRepo{s: s}
}

func (r *userRepo) Create(ctx context.Context, user *entity.User) error {
	defer r.s.write(ctx)()
	for _, u := range r.s.st.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domainRepo.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.s.stamp(&user.CreatedAt, &user.UpdatedAt)
	r.s.st.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	defer r.s.read()()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	defer r.s.read()()
	for _, u := range r.s.st.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepo) Update(ctx context.Context, user *entity.User) error {
	defer r.s.write(ctx)()
	r.s.stamp(nil, &user.UpdatedAt)
	r.s.st.users[user.ID] = *user
	return nil
}

func (r *userRepo) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.User, int64, error) {
	defer r.s.read()()
	all := sortedValues(r.s.st.users, func(a, b entity.User) int { return strings.Compare(a.Name, b.Name) })
	out := make([]entity.User, 0, len(all))
	for _, u := range all {
		if search != "" && !containsFold(u.Name, search) && !containsFold(u.Email, search) {
			continue
		}
		out = append(out, u)
	}
	return page(out, params), int64(len(out)), nil
}

type idempotencyRepo struct{ s *Store }

// Idempotency returns the store as an IdempotencyRepository
func (s *Store) Idempotency() domainRepo.IdempotencyRepository {
	return &idempotencyRepo{s: s}
}

func idemKey(key string, userID uuid.UUID) string {
	return userID.String() + ":" + key
}

func (r *idempotencyRepo) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	defer r.s.read()()
	k, ok := r.s.st.idempotency[idemKey(key, userID)]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (r *idempotencyRepo) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	defer r.s.write(ctx)()
	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	r.s.stamp(&ikey.CreatedAt, nil)
	r.s.st.idempotency[idemKey(ikey.Key, ikey.UserID)] = *ikey
	return nil
}

func (r *idempotencyRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	defer r.s.write(ctx)()
	for k, v := range r.s.st.idempotency {
		if v.IsExpiredAt(now) {
			delete(r.s.st.idempotency, k)
		}
	}
	return nil
}
