package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// comandaCounter is the tab_counters row that numbers comandas
const comandaCounter = "comanda"

type comandaRepository struct {
	db *gorm.DB
}

// NewComandaRepository creates a new comanda repository
func NewComandaRepository(db *gorm.DB) domainRepo.ComandaRepository {
	return &comandaRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *comandaRepository) Create(ctx context.Context, comanda *entity.Comanda) error {
	return conn(ctx, r.db).Omit("Items").Create(comanda).Error
}

func (r *comandaRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Comanda, error) {
	var comanda entity.Comanda
	err := conn(ctx, r.db).
		Preload("Items", orderedItems).
		First(&comanda, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &comanda, err
}

func (r *comandaRepository) LockByID(ctx context.Context, id uuid.UUID) (*entity.Comanda, error) {
	var comanda entity.Comanda
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&comanda, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := conn(ctx, r.db).
		Where("comanda_id = ?", id).
		Order("position ASC").
		Find(&comanda.Items).Error; err != nil {
		return nil, err
	}
	return &comanda, nil
}

// SaveItems deletes and re-inserts the lines so positions always match the
// slice. The total is written first and only while the tab is open, so a
// closed tab's lines are never touched.
func (r *comandaRepository) SaveItems(ctx context.Context, comandaID uuid.UUID, items []entity.ComandaItem, total decimal.Decimal) error {
	db := conn(ctx, r.db)

	res := db.Model(&entity.Comanda{}).
		Where("id = ? AND status = ?", comandaID, enum.ComandaStatusOpen).
		Updates(map[string]interface{}{
			"total":      total,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update comanda total: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domainRepo.ErrNotOpen
	}

	if err := db.Where("comanda_id = ?", comandaID).Delete(&entity.ComandaItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear comanda items: %w", err)
	}

	if len(items) > 0 {
		for i := range items {
			items[i].ComandaID = comandaID
			items[i].Position = i
		}
		if err := db.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to insert comanda items: %w", err)
		}
	}
	return nil
}

func (r *comandaRepository) SetStatus(ctx context.Context, comanda *entity.Comanda) error {
	return conn(ctx, r.db).Model(&entity.Comanda{}).
		Where("id = ?", comanda.ID).
		Updates(map[string]interface{}{
			"status":            comanda.Status,
			"total":             comanda.Total,
			"closed_at":         comanda.ClosedAt,
			"closed_by":         comanda.ClosedBy,
			"cancelled_at":      comanda.CancelledAt,
			"payment_method_id": comanda.PaymentMethodID,
			"amount_charged":    comanda.AmountCharged,
			"updated_at":        time.Now(),
		}).Error
}

// NextNumber increments the counter row in place. Inside a transaction the
// row stays locked until commit, so numbers are never issued twice.
func (r *comandaRepository) NextNumber(ctx context.Context) (int64, error) {
	var counter entity.TabCounter
	err := conn(ctx, r.db).Raw(
		`INSERT INTO tab_counters (name, value, updated_at) VALUES (?, 1, NOW())
		 ON CONFLICT (name) DO UPDATE SET value = tab_counters.value + 1, updated_at = NOW()
		 RETURNING name, value, updated_at`, comandaCounter,
	).Scan(&counter).Error
	if err != nil {
		return 0, fmt.Errorf("failed to issue comanda number: %w", err)
	}
	return counter.Value, nil
}

func (r *comandaRepository) filtered(ctx context.Context, search string, status *enum.ComandaStatus, clientID *uuid.UUID, start, end *time.Time) *gorm.DB {
	query := conn(ctx, r.db).Model(&entity.Comanda{}).
		Scopes(SearchScope(search, "client_name", "CAST(number AS TEXT)"), DateRangeScope("opened_at", start, end))

	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}
	return query
}

func (r *comandaRepository) List(ctx context.Context, params *domainRepo.ComandaFilterParams) ([]entity.Comanda, int64, error) {
	var comandas []entity.Comanda
	var total int64

	query := r.filtered(ctx, params.Search, params.Status, params.ClientID, params.StartDate, params.EndDate)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Items", orderedItems).
		Order("number DESC").
		Find(&comandas).Error

	return comandas, total, err
}

// ListWithCursor pages by tab number, newest first
func (r *comandaRepository) ListWithCursor(ctx context.Context, params *domainRepo.ComandaCursorFilterParams) ([]entity.Comanda, error) {
	var comandas []entity.Comanda

	params.Cursor.Validate()
	query := r.filtered(ctx, params.Search, params.Status, params.ClientID, params.StartDate, params.EndDate)

	cursor, err := params.Cursor.DecodeCursor()
	if err != nil {
		return nil, err
	}

	order := "number DESC"
	if cursor != nil {
		if params.Cursor.Direction == pagination.CursorDirectionNext {
			query = query.Where("number < ?", cursor.Seq)
		} else {
			query = query.Where("number > ?", cursor.Seq)
			order = "number ASC"
		}
	}

	err = query.Limit(params.Cursor.Limit + 1).
		Preload("Items", orderedItems).
		Order(order).
		Find(&comandas).Error
	if err != nil {
		return nil, err
	}

	if order == "number ASC" {
		for i, j := 0, len(comandas)-1; i < j; i, j = i+1, j-1 {
			comandas[i], comandas[j] = comandas[j], comandas[i]
		}
	}
	return comandas, nil
}

type summaryRow struct {
	Status enum.ComandaStatus
	Count  int64
	Amount decimal.Decimal
}

func (r *comandaRepository) Summary(ctx context.Context, from, to *time.Time) (*domainRepo.ComandaSummary, error) {
	var rows []summaryRow
	err := conn(ctx, r.db).Model(&entity.Comanda{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS amount").
		Scopes(DateRangeScope("opened_at", from, to)).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &domainRepo.ComandaSummary{OpenTotal: decimal.Zero, ClosedRevenue: decimal.Zero}
	for _, row := range rows {
		switch row.Status {
		case enum.ComandaStatusOpen:
			summary.OpenCount = row.Count
			summary.OpenTotal = row.Amount
		case enum.ComandaStatusClosed:
			summary.ClosedCount = row.Count
			summary.ClosedRevenue = row.Amount
		case enum.ComandaStatusCancelled:
			summary.CancelledCount = row.Count
		}
	}
	return summary, nil
}
