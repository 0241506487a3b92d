package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ComandaRepository defines the persistence operations for tabs.
// Getters return nil, nil when the row does not exist.
type ComandaRepository interface {
	Create(ctx context.Context, comanda *entity.Comanda) error
	// GetWithItems loads a tab with its lines ordered by position
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Comanda, error)
	// LockByID loads a tab with its lines and holds a row lock until the
	// surrounding transaction ends
	LockByID(ctx context.Context, id uuid.UUID) (*entity.Comanda, error)
	// SaveItems replaces the tab's lines and writes its total. It fails with
	// ErrNotOpen unless the stored tab is still open.
	SaveItems(ctx context.Context, comandaID uuid.UUID, items []entity.ComandaItem, total decimal.Decimal) error
	// SetStatus writes the lifecycle fields: status, timestamps, closer,
	// payment method, amount charged and total
	SetStatus(ctx context.Context, comanda *entity.Comanda) error
	// NextNumber issues the next sequential tab number
	NextNumber(ctx context.Context) (int64, error)
	List(ctx context.Context, params *ComandaFilterParams) ([]entity.Comanda, int64, error)
	ListWithCursor(ctx context.Context, params *ComandaCursorFilterParams) ([]entity.Comanda, error)
	Summary(ctx context.Context, from, to *time.Time) (*ComandaSummary, error)
}

// ComandaFilterParams contains filtering parameters for comanda queries
type ComandaFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.ComandaStatus
	ClientID   *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

// ComandaCursorFilterParams contains cursor-based filtering for comanda queries.
// Tabs are returned newest number first.
type ComandaCursorFilterParams struct {
	Cursor    *pagination.CursorParams
	Search    string
	Status    *enum.ComandaStatus
	ClientID  *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// ComandaSummary aggregates tabs for the front desk dashboard.
// Cancelled tabs only contribute to CancelledCount.
type ComandaSummary struct {
	OpenCount      int64           `json:"open_count"`
	OpenTotal      decimal.Decimal `json:"open_total"`
	ClosedCount    int64           `json:"closed_count"`
	ClosedRevenue  decimal.Decimal `json:"closed_revenue"`
	CancelledCount int64           `json:"cancelled_count"`
}
