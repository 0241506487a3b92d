package memory

import (
	"cmp"
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

type comandaRepo struct{ s *Store }

// Comandas returns the store as a ComandaRepository
func (s *Store) Comandas() domainRepo.ComandaRepository {
	return &comandaRepo{s: s}
}

func (r *comandaRepo) Create(ctx context.Context, comanda *entity.Comanda) error {
	defer r.s.write(ctx)()

	if comanda.ID == uuid.Nil {
		comanda.ID = uuid.New()
	}
	r.s.stamp(&comanda.CreatedAt, &comanda.UpdatedAt)
	stored := comanda.Clone()
	stored.Items = nil
	r.s.st.comandas[comanda.ID] = *stored
	return nil
}

func (r *comandaRepo) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Comanda, error) {
	defer r.s.read()()

	c, ok := r.s.st.comandas[id]
	if !ok {
		return nil, nil
	}
	return c.Clone(), nil
}

// LockByID is GetWithItems; the enclosing transaction already serializes writers
func (r *comandaRepo) LockByID(ctx context.Context, id uuid.UUID) (*entity.Comanda, error) {
	return r.GetWithItems(ctx, id)
}

func (r *comandaRepo) SaveItems(ctx context.Context, comandaID uuid.UUID, items []entity.ComandaItem, total decimal.Decimal) error {
	defer r.s.write(ctx)()

	c, ok := r.s.st.comandas[comandaID]
	if !ok || c.Status != enum.ComandaStatusOpen {
		return domainRepo.ErrNotOpen
	}
	now := r.s.Now()
	stored := make([]entity.ComandaItem, len(items))
	for i := range items {
		items[i].ComandaID = comandaID
		items[i].Position = i
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = now
		}
		stored[i] = items[i].Clone()
	}
	c.Items = stored
	c.Total = total
	c.UpdatedAt = now
	r.s.st.comandas[comandaID] = c
	return nil
}

func (r *comandaRepo) SetStatus(ctx context.Context, comanda *entity.Comanda) error {
	defer r.s.write(ctx)()

	c, ok := r.s.st.comandas[comanda.ID]
	if !ok {
		return nil
	}
	c.Status = comanda.Status
	c.Total = comanda.Total
	c.ClosedAt = comanda.ClosedAt
	c.ClosedBy = comanda.ClosedBy
	c.CancelledAt = comanda.CancelledAt
	c.PaymentMethodID = comanda.PaymentMethodID
	c.AmountCharged = comanda.AmountCharged
	c.UpdatedAt = r.s.Now()
	r.s.st.comandas[comanda.ID] = c
	return nil
}

func (r *comandaRepo) NextNumber(ctx context.Context) (int64, error) {
	defer r.s.write(ctx)()

	r.s.st.tabCounter++
	return r.s.st.tabCounter, nil
}

func matchesComanda(c *entity.Comanda, search string, status *enum.ComandaStatus, clientID *uuid.UUID, start, end *time.Time) bool {
	if status != nil && c.Status != *status {
		return false
	}
	if clientID != nil && (c.ClientID == nil || *c.ClientID != *clientID) {
		return false
	}
	if start != nil && c.OpenedAt.Before(*start) {
		return false
	}
	if end != nil && c.OpenedAt.After(*end) {
		return false
	}
	if search != "" && !containsFold(c.ClientName, search) && !containsFold(strconv.FormatInt(c.Number, 10), search) {
		return false
	}
	return true
}

// filtered returns matching tabs, newest number first
func (r *comandaRepo) filtered(search string, status *enum.ComandaStatus, clientID *uuid.UUID, start, end *time.Time) []entity.Comanda {
	all := sortedValues(r.s.st.comandas, func(a, b entity.Comanda) int {
		return cmp.Compare(b.Number, a.Number)
	})
	out := make([]entity.Comanda, 0, len(all))
	for i := range all {
		if matchesComanda(&all[i], search, status, clientID, start, end) {
			out = append(out, *all[i].Clone())
		}
	}
	return out
}

func (r *comandaRepo) List(ctx context.Context, params *domainRepo.ComandaFilterParams) ([]entity.Comanda, int64, error) {
	defer r.s.read()()

	matched := r.filtered(params.Search, params.Status, params.ClientID, params.StartDate, params.EndDate)
	return page(matched, params.Pagination), int64(len(matched)), nil
}

func (r *comandaRepo) ListWithCursor(ctx context.Context, params *domainRepo.ComandaCursorFilterParams) ([]entity.Comanda, error) {
	defer r.s.read()()

	params.Cursor.Validate()
	cursor, err := params.Cursor.DecodeCursor()
	if err != nil {
		return nil, err
	}

	matched := r.filtered(params.Search, params.Status, params.ClientID, params.StartDate, params.EndDate)
	if cursor == nil {
		return head(matched, params.Cursor.Limit+1), nil
	}

	if params.Cursor.Direction == pagination.CursorDirectionNext {
		out := make([]entity.Comanda, 0, params.Cursor.Limit+1)
		for _, c := range matched {
			if c.Number < cursor.Seq {
				out = append(out, c)
			}
		}
		return head(out, params.Cursor.Limit+1), nil
	}

	// previous page: the limit+1 tabs just above the cursor, still newest first
	above := make([]entity.Comanda, 0)
	for _, c := range matched {
		if c.Number > cursor.Seq {
			above = append(above, c)
		}
	}
	if len(above) > params.Cursor.Limit+1 {
		above = above[len(above)-(params.Cursor.Limit+1):]
	}
	return above, nil
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func (r *comandaRepo) Summary(ctx context.Context, from, to *time.Time) (*domainRepo.ComandaSummary, error) {
	defer r.s.read()()

	summary := &domainRepo.ComandaSummary{OpenTotal: decimal.Zero, ClosedRevenue: decimal.Zero}
	for _, c := range r.s.st.comandas {
		if !matchesComanda(&c, "", nil, nil, from, to) {
			continue
		}
		switch c.Status {
		case enum.ComandaStatusOpen:
			summary.OpenCount++
			summary.OpenTotal = summary.OpenTotal.Add(c.Total)
		case enum.ComandaStatusClosed:
			summary.ClosedCount++
			summary.ClosedRevenue = summary.ClosedRevenue.Add(c.Total)
		case enum.ComandaStatusCancelled:
			summary.CancelledCount++
		}
	}
	return summary, nil
}
