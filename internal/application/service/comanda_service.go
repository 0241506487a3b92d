package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/internal/domain/pricing"
	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ClosedHook receives a tab after its checkout has been committed
type ClosedHook func(ctx context.Context, event entity.ComandaClosedEvent)

// ComandaService handles the tab lifecycle and its line items
type ComandaService struct {
	comandaRepo       repository.ComandaRepository
	catalogRepo       repository.CatalogRepository
	clientRepo        repository.ClientRepository
	paymentMethodRepo repository.PaymentMethodRepository
	pricing           *PricingService
	transactor        repository.Transactor
	clock             Clock
	log               *zap.Logger

	hooksMu sync.RWMutex
	hooks   []ClosedHook
}

// NewComandaService creates a new comanda service
func NewComandaService(
	comandaRepo repository.ComandaRepository,
	catalogRepo repository.CatalogRepository,
	clientRepo repository.ClientRepository,
	paymentMethodRepo repository.PaymentMethodRepository,
	pricingService *PricingService,
	transactor repository.Transactor,
	clock Clock,
	log *zap.Logger,
) *ComandaService {
	return &ComandaService{
		comandaRepo:       comandaRepo,
		catalogRepo:       catalogRepo,
		clientRepo:        clientRepo,
		paymentMethodRepo: paymentMethodRepo,
		pricing:           pricingService,
		transactor:        transactor,
		clock:             clock,
		log:               log,
	}
}

// OnClosed registers a hook run after every committed checkout
func (s *ComandaService) OnClosed(hook ClosedHook) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// OpenComandaInput represents the open comanda input
type OpenComandaInput struct {
	ClientID   *uuid.UUID
	ClientName string
	Notes      *string
}

// Open starts a new tab with the next sequential number
func (s *ComandaService) Open(ctx context.Context, principal entity.Principal, input *OpenComandaInput) (*entity.Comanda, error) {
	comanda := &entity.Comanda{
		ClientID:   input.ClientID,
		ClientName: strings.TrimSpace(input.ClientName),
		Status:     enum.ComandaStatusOpen,
		Total:      decimal.Zero,
		Notes:      input.Notes,
		OpenedBy:   principal.UserID,
		OpenedAt:   s.clock(),
		Items:      []entity.ComandaItem{},
	}

	if input.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, *input.ClientID)
		if err != nil {
			return nil, fmt.Errorf("resolve client: %w", err)
		}
		if client == nil {
			return nil, apperror.NewNotFoundError("Client")
		}
		comanda.ClientName = client.Name
	}

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		number, err := s.comandaRepo.NextNumber(ctx)
		if err != nil {
			return fmt.Errorf("next tab number: %w", err)
		}
		comanda.Number = number
		if err := s.comandaRepo.Create(ctx, comanda); err != nil {
			return fmt.Errorf("create comanda: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("comanda opened",
		zap.String("comanda_id", comanda.ID.String()),
		zap.Int64("number", comanda.Number),
		zap.String("opened_by", principal.UserID.String()),
	)
	return comanda, nil
}

// Get retrieves a tab with its lines
func (s *ComandaService) Get(ctx context.Context, id uuid.UUID) (*entity.Comanda, error) {
	comanda, err := s.comandaRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load comanda: %w", err)
	}
	if comanda == nil {
		return nil, apperror.NewNotFoundError("Comanda")
	}
	return comanda, nil
}

// AddItemInput represents one line to append to a tab
type AddItemInput struct {
	Kind           enum.ItemKind
	ItemID         *uuid.UUID
	Description    string
	Quantity       decimal.Decimal
	UnitPrice      *decimal.Decimal
	ProfessionalID *uuid.UUID
	Coupon         string
}

// AddItem prices a new line, applies promotions and appends it to the tab
func (s *ComandaService) AddItem(ctx context.Context, principal entity.Principal, comandaID uuid.UUID, input *AddItemInput) (*entity.Comanda, error) {
	if !input.Kind.IsValid() {
		return nil, apperror.NewValidationError(fmt.Sprintf("unknown item kind %q", input.Kind))
	}
	if !input.Quantity.IsPositive() {
		return nil, apperror.NewValidationError("quantity must be greater than zero")
	}

	description, listPrice, err := s.resolvePrice(ctx, input)
	if err != nil {
		return nil, err
	}

	var applied int
	var unitPrice decimal.Decimal
	next, err := s.mutate(ctx, comandaID, func(ctx context.Context, c *entity.Comanda) error {
		quote, err := s.pricing.evaluate(ctx, &QuoteInput{
			Kind:     input.Kind,
			Amount:   listPrice,
			ClientID: c.ClientID,
			Coupon:   input.Coupon,
		})
		if err != nil {
			return err
		}
		applied, unitPrice = len(quote.Applied), quote.Discounted

		return c.AppendItem(entity.ComandaItem{
			Kind:              input.Kind,
			ItemID:            input.ItemID,
			Description:       description,
			Quantity:          input.Quantity,
			ListPrice:         listPrice,
			UnitPrice:         quote.Discounted,
			AppliedPromotions: quote.Applied,
			ProfessionalID:    input.ProfessionalID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("comanda item added",
		zap.String("comanda_id", next.ID.String()),
		zap.String("kind", string(input.Kind)),
		zap.String("unit_price", unitPrice.String()),
		zap.Int("promotions", applied),
		zap.String("by", principal.UserID.String()),
	)
	return next, nil
}

// resolvePrice picks the explicit price when given, else the catalog price.
// The catalog description wins over the input when the entry exists.
func (s *ComandaService) resolvePrice(ctx context.Context, input *AddItemInput) (string, decimal.Decimal, error) {
	description := strings.TrimSpace(input.Description)

	var catalog *entity.CatalogPrice
	if input.ItemID != nil {
		var err error
		catalog, err = s.catalogRepo.GetCatalogPrice(ctx, input.Kind, *input.ItemID)
		if err != nil {
			return "", decimal.Zero, fmt.Errorf("catalog price: %w", err)
		}
		if catalog != nil {
			description = catalog.Description
		}
	}

	var price decimal.Decimal
	switch {
	case input.UnitPrice != nil:
		if input.UnitPrice.IsNegative() {
			return "", decimal.Zero, apperror.NewValidationError("unit price cannot be negative")
		}
		price = input.UnitPrice.Round(entity.MoneyPlaces)
	case catalog != nil:
		if !catalog.IsActive {
			return "", decimal.Zero, apperror.NewValidationError(fmt.Sprintf("%s %q is inactive", input.Kind, catalog.Description))
		}
		price = catalog.UnitPrice.Round(entity.MoneyPlaces)
	case input.ItemID != nil:
		return "", decimal.Zero, apperror.NewValidationError(fmt.Sprintf("no price found for %s %s", input.Kind, input.ItemID))
	default:
		return "", decimal.Zero, apperror.NewValidationError("unit price is required for items outside the catalog")
	}

	if description == "" {
		return "", decimal.Zero, apperror.NewValidationError("description is required")
	}
	return description, price, nil
}

// UpdateQuantity changes the quantity of the line at index
func (s *ComandaService) UpdateQuantity(ctx context.Context, principal entity.Principal, comandaID uuid.UUID, index int, quantity decimal.Decimal) (*entity.Comanda, error) {
	return s.mutate(ctx, comandaID, func(_ context.Context, c *entity.Comanda) error {
		return c.UpdateQuantity(index, quantity)
	})
}

// RemoveItem deletes the line at index
func (s *ComandaService) RemoveItem(ctx context.Context, principal entity.Principal, comandaID uuid.UUID, index int) (*entity.Comanda, error) {
	return s.mutate(ctx, comandaID, func(_ context.Context, c *entity.Comanda) error {
		return c.RemoveItem(index)
	})
}

// mutate applies fn to the locked tab and saves its lines in the same
// transaction. A tab closed or cancelled in between is never rewritten.
func (s *ComandaService) mutate(ctx context.Context, comandaID uuid.UUID, fn func(ctx context.Context, c *entity.Comanda) error) (*entity.Comanda, error) {
	var next *entity.Comanda
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		comanda, err := s.comandaRepo.LockByID(ctx, comandaID)
		if err != nil {
			return fmt.Errorf("lock comanda: %w", err)
		}
		if comanda == nil {
			return apperror.NewNotFoundError("Comanda")
		}
		if err := comanda.EnsureOpen(); err != nil {
			return err
		}

		edited := comanda.Clone()
		if err := fn(ctx, edited); err != nil {
			return err
		}
		if err := s.comandaRepo.SaveItems(ctx, edited.ID, edited.Items, edited.Total); err != nil {
			if errors.Is(err, repository.ErrNotOpen) {
				return apperror.NewInvalidStateError(fmt.Sprintf("comanda #%d is no longer open", comanda.Number))
			}
			return fmt.Errorf("save comanda items: %w", err)
		}
		next = edited
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// CloseComandaInput represents the checkout input
type CloseComandaInput struct {
	PaymentMethodID *uuid.UUID
}

// Close checks out a tab. Promotions whose caps were reached since the line
// was added are dropped from that line and the line is re-priced.
func (s *ComandaService) Close(ctx context.Context, principal entity.Principal, comandaID uuid.UUID, input *CloseComandaInput) (*entity.Comanda, error) {
	if err := requireFrontDesk(principal); err != nil {
		return nil, err
	}

	var method *entity.PaymentMethod
	if input.PaymentMethodID != nil {
		var err error
		method, err = s.paymentMethodRepo.GetByID(ctx, *input.PaymentMethodID)
		if err != nil {
			return nil, fmt.Errorf("load payment method: %w", err)
		}
		if method == nil {
			return nil, apperror.NewNotFoundError("Payment method")
		}
		if !method.IsActive {
			return nil, apperror.NewValidationError(fmt.Sprintf("payment method %q is inactive", method.Name))
		}
	}

	var closed *entity.Comanda
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		comanda, err := s.comandaRepo.LockByID(ctx, comandaID)
		if err != nil {
			return fmt.Errorf("lock comanda: %w", err)
		}
		if comanda == nil {
			return apperror.NewNotFoundError("Comanda")
		}
		if err := comanda.CanClose(); err != nil {
			return err
		}

		next := comanda.Clone()
		now := s.clock()

		if err := s.redeemPromotions(ctx, next, now); err != nil {
			return err
		}

		next.MarkClosed(now, principal.UserID)
		if method != nil {
			next.PaymentMethodID = &method.ID
			next.AmountCharged = decimal.NewNullDecimal(method.Apply(next.Total))
		}

		if err := s.comandaRepo.SaveItems(ctx, next.ID, next.Items, next.Total); err != nil {
			return fmt.Errorf("save comanda items: %w", err)
		}
		if err := s.comandaRepo.SetStatus(ctx, next); err != nil {
			return fmt.Errorf("set comanda status: %w", err)
		}
		closed = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("comanda closed",
		zap.String("comanda_id", closed.ID.String()),
		zap.Int64("number", closed.Number),
		zap.String("total", closed.Total.String()),
		zap.String("closed_by", principal.UserID.String()),
	)

	s.fireClosed(ctx, entity.NewComandaClosedEvent(closed))
	return closed, nil
}

// redeemPromotions consumes one use per promotion per line, in line order.
// A line whose promotion hit a cap is re-priced from its own snapshot
// without that promotion.
func (s *ComandaService) redeemPromotions(ctx context.Context, c *entity.Comanda, now time.Time) error {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, item := range c.Items {
		for _, id := range item.AppliedPromotions.IDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	redemption, err := s.pricing.BeginRedemption(ctx, ids, c.ClientID)
	if err != nil {
		return err
	}

	for i := range c.Items {
		item := &c.Items[i]
		if len(item.AppliedPromotions) == 0 {
			continue
		}

		kept := make([]entity.Promotion, 0, len(item.AppliedPromotions))
		dropped := false
		for _, ap := range item.AppliedPromotions {
			if err := redemption.Take(ap.PromotionID); err != nil {
				if apperror.IsKind(err, apperror.KindLimitExceeded) || apperror.IsKind(err, apperror.KindNotFound) {
					s.log.Warn("promotion excluded at checkout",
						zap.String("comanda_id", c.ID.String()),
						zap.String("promotion_id", ap.PromotionID.String()),
						zap.String("item", item.Description),
						zap.Error(err),
					)
					dropped = true
					continue
				}
				return err
			}
			kept = append(kept, pricing.FromApplied(ap))
		}

		if dropped {
			res := pricing.Reapply(kept, item.ListPrice)
			item.UnitPrice = res.Discounted
			item.AppliedPromotions = res.Applied
			item.Recalculate()
		}
	}
	c.Recompute()

	usages := make([]entity.PromotionUsage, 0, len(ids))
	for _, item := range c.Items {
		for _, ap := range item.AppliedPromotions {
			usages = append(usages, entity.PromotionUsage{
				PromotionID:   ap.PromotionID,
				ClientID:      c.ClientID,
				ComandaID:     c.ID,
				ComandaItemID: item.ID,
				Discount:      item.Quantity.Mul(ap.UnitDiscount),
				UsedAt:        now,
			})
		}
	}

	return s.pricing.CommitRedemption(ctx, redemption, usages)
}

func (s *ComandaService) fireClosed(ctx context.Context, event entity.ComandaClosedEvent) {
	s.hooksMu.RLock()
	hooks := append([]ClosedHook(nil), s.hooks...)
	s.hooksMu.RUnlock()

	for _, hook := range hooks {
		hook(ctx, event)
	}
}

// Cancel abandons an open tab, keeping its lines
func (s *ComandaService) Cancel(ctx context.Context, principal entity.Principal, comandaID uuid.UUID) (*entity.Comanda, error) {
	if err := requireFrontDesk(principal); err != nil {
		return nil, err
	}

	var cancelled *entity.Comanda
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		comanda, err := s.comandaRepo.LockByID(ctx, comandaID)
		if err != nil {
			return fmt.Errorf("lock comanda: %w", err)
		}
		if comanda == nil {
			return apperror.NewNotFoundError("Comanda")
		}

		next := comanda.Clone()
		if err := next.MarkCancelled(s.clock()); err != nil {
			return err
		}
		if err := s.comandaRepo.SetStatus(ctx, next); err != nil {
			return fmt.Errorf("set comanda status: %w", err)
		}
		cancelled = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("comanda cancelled",
		zap.String("comanda_id", cancelled.ID.String()),
		zap.Int64("number", cancelled.Number),
		zap.String("by", principal.UserID.String()),
	)
	return cancelled, nil
}

// List retrieves tabs with page pagination
func (s *ComandaService) List(ctx context.Context, params *repository.ComandaFilterParams) (*pagination.PaginatedResult[entity.Comanda], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	comandas, total, err := s.comandaRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list comandas: %w", err)
	}

	return pagination.NewPaginatedResult(comandas, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)), nil
}

// ListWithCursor retrieves tabs newest first with keyset pagination
func (s *ComandaService) ListWithCursor(ctx context.Context, params *repository.ComandaCursorFilterParams) (*pagination.CursorPaginatedResult[entity.Comanda], error) {
	if params.Cursor == nil {
		params.Cursor = pagination.DefaultCursorParams()
	}
	params.Cursor.Validate()
	if _, err := params.Cursor.DecodeCursor(); err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}

	comandas, err := s.comandaRepo.ListWithCursor(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list comandas: %w", err)
	}

	meta, items := pagination.NewCursorPagination(comandas, params.Cursor.Limit, func(c entity.Comanda) pagination.Cursor {
		return pagination.Cursor{Seq: c.Number}
	})
	meta.HasPrev = params.Cursor.Cursor != ""
	return pagination.NewCursorPaginatedResult(items, meta), nil
}

// Summary aggregates tabs opened within the optional range
func (s *ComandaService) Summary(ctx context.Context, from, to *time.Time) (*repository.ComandaSummary, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, apperror.NewValidationError("end date must not be before start date")
	}
	summary, err := s.comandaRepo.Summary(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("comanda summary: %w", err)
	}
	return summary, nil
}

func requireFrontDesk(p entity.Principal) error {
	switch p.Role {
	case enum.UserRoleAdmin, enum.UserRoleReception:
		return nil
	}
	return apperror.ErrForbidden
}
