// Package memory is a process-local storage driver used in development mode
// and by the service tests. It implements every repository interface the
// application needs.
package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/pagination"
)

type ctxKey struct{}

// state is everything a transaction may need to roll back
type state struct {
	comandas       map[uuid.UUID]entity.Comanda
	tabCounter     int64
	services       map[uuid.UUID]entity.Service
	products       map[uuid.UUID]entity.Product
	packages       map[uuid.UUID]entity.Package
	promotions     map[uuid.UUID]entity.Promotion
	usages         []entity.PromotionUsage
	clients        map[uuid.UUID]entity.Client
	paymentMethods map[uuid.UUID]entity.PaymentMethod
	users          map[uuid.UUID]entity.User
	idempotency    map[string]entity.IdempotencyKey
}

func newState() state {
	return state{
		comandas:       map[uuid.UUID]entity.Comanda{},
		services:       map[uuid.UUID]entity.Service{},
		products:       map[uuid.UUID]entity.Product{},
		packages:       map[uuid.UUID]entity.Package{},
		promotions:     map[uuid.UUID]entity.Promotion{},
		clients:        map[uuid.UUID]entity.Client{},
		paymentMethods: map[uuid.UUID]entity.PaymentMethod{},
		users:          map[uuid.UUID]entity.User{},
		idempotency:    map[string]entity.IdempotencyKey{},
	}
}

// snapshot copies the maps. Stored values are never mutated in place, so
// sharing their slices with the snapshot is safe.
func (st state) snapshot() state {
	return state{
		comandas:       maps.Clone(st.comandas),
		tabCounter:     st.tabCounter,
		services:       maps.Clone(st.services),
		products:       maps.Clone(st.products),
		packages:       maps.Clone(st.packages),
		promotions:     maps.Clone(st.promotions),
		usages:         slices.Clone(st.usages),
		clients:        maps.Clone(st.clients),
		paymentMethods: maps.Clone(st.paymentMethods),
		users:          maps.Clone(st.users),
		idempotency:    maps.Clone(st.idempotency),
	}
}

// Store holds all rows in memory.
//
// Transactions are serialized by txMu and roll back by restoring a snapshot.
// Writes outside a transaction also take txMu so a rollback never discards them.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   state

	// Now is the clock used for created/updated timestamps
	Now func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{st: newState(), Now: time.Now}
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKey{}).(bool)
	return v
}

// write locks for a mutation and returns the matching unlock
func (s *Store) write(ctx context.Context) func() {
	if inTx(ctx) {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func (s *Store) read() func() {
	s.mu.RLock()
	return s.mu.RUnlock
}

// WithinTransaction implements repository.Transactor
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	saved := s.st.snapshot()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, ctxKey{}, true)); err != nil {
		s.mu.Lock()
		s.st = saved
		s.mu.Unlock()
		return err
	}
	return nil
}

// Transactor returns the store as a repository.Transactor
func (s *Store) Transactor() domainRepo.Transactor {
	return s
}

func (s *Store) stamp(created, updated *time.Time) {
	now := s.Now()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func strPtrContains(p *string, needle string) bool {
	return p != nil && containsFold(*p, needle)
}

// page slices items for page-based pagination
func page[T any](items []T, params *pagination.PaginationParams) []T {
	params.Validate()
	start := params.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + params.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func sortedValues[K comparable, V any](m map[K]V, cmp func(a, b V) int) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, cmp)
	return out
}
