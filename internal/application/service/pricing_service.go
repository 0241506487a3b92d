package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/internal/domain/pricing"
	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/pagination"
	"github.com/sangkips/salon-api/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Clock returns the current instant in the salon's timezone
type Clock func() time.Time

// SystemClock reads the wall clock in loc
func SystemClock(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}

// PricingService evaluates promotions and administers them
type PricingService struct {
	promotionRepo repository.PromotionRepository
	transactor    repository.Transactor
	clock         Clock
	log           *zap.Logger
}

// NewPricingService creates a new pricing service
func NewPricingService(
	promotionRepo repository.PromotionRepository,
	transactor repository.Transactor,
	clock Clock,
	log *zap.Logger,
) *PricingService {
	return &PricingService{
		promotionRepo: promotionRepo,
		transactor:    transactor,
		clock:         clock,
		log:           log,
	}
}

// ActivePromotions returns the promotions valid for kind at asOf for the
// given client and coupon
func (s *PricingService) ActivePromotions(ctx context.Context, kind enum.ItemKind, asOf time.Time, clientID *uuid.UUID, coupon string) ([]entity.Promotion, error) {
	candidates, err := s.promotionRepo.ListActive(ctx, kind, asOf)
	if err != nil {
		return nil, fmt.Errorf("list active promotions: %w", err)
	}

	active := make([]entity.Promotion, 0, len(candidates))
	for i := range candidates {
		p := &candidates[i]
		if !p.Scope.Covers(kind) {
			continue
		}
		if !pricing.MatchesCoupon(p, coupon) {
			continue
		}
		uses, err := s.clientUses(ctx, p, clientID)
		if err != nil {
			return nil, err
		}
		if pricing.IsValidAt(p, asOf, uses) {
			active = append(active, *p)
		}
	}
	return active, nil
}

func (s *PricingService) clientUses(ctx context.Context, p *entity.Promotion, clientID *uuid.UUID) (int, error) {
	if clientID == nil || p.MaxUsesPerClient == nil {
		return 0, nil
	}
	uses, err := s.promotionRepo.CountClientUsage(ctx, p.ID, *clientID)
	if err != nil {
		return 0, fmt.Errorf("count client usage: %w", err)
	}
	return uses, nil
}

// QuoteInput represents a price quote request
type QuoteInput struct {
	Kind     enum.ItemKind
	Amount   decimal.Decimal
	ClientID *uuid.UUID
	Coupon   string
	At       *time.Time
}

// Quote is the priced outcome for one unit
type Quote struct {
	Original       decimal.Decimal          `json:"original"`
	Discounted     decimal.Decimal          `json:"discounted"`
	Discount       decimal.Decimal          `json:"discount"`
	CommissionBase decimal.Decimal          `json:"commission_base"`
	Applied        entity.AppliedPromotions `json:"applied"`
}

// Quote prices amount against the promotions active for the input
func (s *PricingService) Quote(ctx context.Context, input *QuoteInput) (*Quote, error) {
	res, err := s.evaluate(ctx, input)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Original:       res.Original,
		Discounted:     res.Discounted,
		Discount:       res.Discount(),
		CommissionBase: res.CommissionBase,
		Applied:        res.Applied,
	}, nil
}

func (s *PricingService) evaluate(ctx context.Context, input *QuoteInput) (pricing.Result, error) {
	if input.Amount.IsNegative() {
		return pricing.Result{}, apperror.NewValidationError("amount cannot be negative")
	}
	if !input.Kind.IsValid() {
		return pricing.Result{}, apperror.NewValidationError(fmt.Sprintf("unknown item kind %q", input.Kind))
	}

	at := s.clock()
	if input.At != nil {
		at = input.At.In(at.Location())
	}

	active, err := s.ActivePromotions(ctx, input.Kind, at, input.ClientID, input.Coupon)
	if err != nil {
		return pricing.Result{}, err
	}
	return pricing.Select(active, input.Amount, input.Coupon), nil
}

// Redemption holds locked promotions while a checkout decides which
// applications it keeps
type Redemption struct {
	clientID   *uuid.UUID
	promotions map[uuid.UUID]*entity.Promotion
	clientUses map[uuid.UUID]int
	taken      map[uuid.UUID]int
}

// BeginRedemption locks the promotions so their caps can be checked and
// consumed. It must run inside a transaction.
func (s *PricingService) BeginRedemption(ctx context.Context, ids []uuid.UUID, clientID *uuid.UUID) (*Redemption, error) {
	r := &Redemption{
		clientID:   clientID,
		promotions: make(map[uuid.UUID]*entity.Promotion, len(ids)),
		clientUses: make(map[uuid.UUID]int, len(ids)),
		taken:      make(map[uuid.UUID]int, len(ids)),
	}
	if len(ids) == 0 {
		return r, nil
	}

	locked, err := s.promotionRepo.LockByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lock promotions: %w", err)
	}
	for i := range locked {
		p := &locked[i]
		uses, err := s.clientUses(ctx, p, clientID)
		if err != nil {
			return nil, err
		}
		r.promotions[p.ID] = p
		r.clientUses[p.ID] = uses
	}
	return r, nil
}

// Take consumes one use of the promotion, failing with a limit exceeded
// error when a cap has been reached
func (r *Redemption) Take(id uuid.UUID) error {
	p, ok := r.promotions[id]
	if !ok {
		return apperror.NewNotFoundError("Promotion")
	}
	taken := r.taken[id]
	if p.GlobalCapReached(taken + 1) {
		return apperror.NewLimitExceededError(fmt.Sprintf("promotion %q reached its usage limit", p.Name))
	}
	if r.clientID != nil && p.ClientCapReached(r.clientUses[id]+taken, 1) {
		return apperror.NewLimitExceededError(fmt.Sprintf("promotion %q reached its per-client limit", p.Name))
	}
	r.taken[id] = taken + 1
	return nil
}

// Taken reports how many uses of id have been consumed so far
func (r *Redemption) Taken(id uuid.UUID) int {
	return r.taken[id]
}

// CommitRedemption writes the consumed uses and their usage rows
func (s *PricingService) CommitRedemption(ctx context.Context, r *Redemption, usages []entity.PromotionUsage) error {
	for id, n := range r.taken {
		if n == 0 {
			continue
		}
		if err := s.promotionRepo.IncrementUsage(ctx, id, n); err != nil {
			return fmt.Errorf("increment promotion usage: %w", err)
		}
	}
	if len(usages) == 0 {
		return nil
	}
	if err := s.promotionRepo.CreateUsages(ctx, usages); err != nil {
		return fmt.Errorf("record promotion usage: %w", err)
	}
	return nil
}

// Redeem records one use of a promotion per usage row, re-checking the caps
// under a row lock
func (s *PricingService) Redeem(ctx context.Context, clientID *uuid.UUID, usages []entity.PromotionUsage) error {
	if len(usages) == 0 {
		return nil
	}
	return s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		seen := make(map[uuid.UUID]bool, len(usages))
		ids := make([]uuid.UUID, 0, len(usages))
		for _, u := range usages {
			if !seen[u.PromotionID] {
				seen[u.PromotionID] = true
				ids = append(ids, u.PromotionID)
			}
		}

		r, err := s.BeginRedemption(ctx, ids, clientID)
		if err != nil {
			return err
		}
		now := s.clock()
		for i := range usages {
			if err := r.Take(usages[i].PromotionID); err != nil {
				return err
			}
			usages[i].ClientID = clientID
			if usages[i].UsedAt.IsZero() {
				usages[i].UsedAt = now
			}
		}
		return s.CommitRedemption(ctx, r, usages)
	})
}

// CreatePromotionInput represents the create promotion input
type CreatePromotionInput struct {
	Name                   string
	Description            *string
	Kind                   enum.DiscountKind
	Value                  decimal.Decimal
	Scope                  enum.PromotionScope
	StartDate              time.Time
	EndDate                time.Time
	DaysOfWeek             int
	StartTime              *string
	EndTime                *string
	MaxUses                *int
	MaxUsesPerClient       *int
	AllowsCombining        bool
	CommissionOnDiscounted bool
	CouponCode             *string
}

// CreatePromotion validates and stores a new promotion
func (s *PricingService) CreatePromotion(ctx context.Context, input *CreatePromotionInput) (*entity.Promotion, error) {
	if fieldErrors := validatePromotion(input); len(fieldErrors) > 0 {
		return nil, apperror.NewFieldValidationError(fieldErrors)
	}

	promotion := &entity.Promotion{
		Name:                   strings.TrimSpace(input.Name),
		Description:            input.Description,
		Kind:                   input.Kind,
		Value:                  input.Value,
		Scope:                  input.Scope,
		StartDate:              input.StartDate,
		EndDate:                input.EndDate,
		DaysOfWeek:             input.DaysOfWeek,
		StartTime:              input.StartTime,
		EndTime:                input.EndTime,
		MaxUses:                input.MaxUses,
		MaxUsesPerClient:       input.MaxUsesPerClient,
		AllowsCombining:        input.AllowsCombining,
		CommissionOnDiscounted: input.CommissionOnDiscounted,
		IsActive:               true,
	}
	if input.CouponCode != nil {
		if code := utils.NormalizeCode(*input.CouponCode); code != "" {
			promotion.CouponCode = &code
			promotion.RequiresCoupon = true
		}
	}

	if err := s.promotionRepo.Create(ctx, promotion); err != nil {
		return nil, fmt.Errorf("create promotion: %w", err)
	}

	s.log.Info("promotion created",
		zap.String("promotion_id", promotion.ID.String()),
		zap.String("name", promotion.Name),
		zap.String("kind", string(promotion.Kind)),
		zap.String("value", promotion.Value.String()),
	)
	return promotion, nil
}

func validatePromotion(input *CreatePromotionInput) []apperror.FieldError {
	var errs []apperror.FieldError
	add := func(field, msg string) {
		errs = append(errs, apperror.FieldError{Field: field, Message: msg})
	}

	if strings.TrimSpace(input.Name) == "" {
		add("name", "name is required")
	}
	if !input.Kind.IsValid() {
		add("kind", "kind must be percentage, fixed_amount or fixed_price")
	}
	if input.Value.IsNegative() {
		add("value", "value cannot be negative")
	}
	if input.Kind == enum.DiscountKindPercentage && input.Value.GreaterThan(decimal.NewFromInt(100)) {
		add("value", "percentage cannot exceed 100")
	}
	if !input.Scope.IsValid() {
		add("scope", "scope must be services, products or both")
	}
	if input.EndDate.Before(input.StartDate) {
		add("end_date", "end date must not be before start date")
	}
	if input.DaysOfWeek < 0 || input.DaysOfWeek > pricing.EveryDay {
		add("days_of_week", "days of week must be a bit mask between 0 and 127")
	}
	if (input.StartTime == nil) != (input.EndTime == nil) {
		add("start_time", "start and end time must be given together")
	}
	if input.StartTime != nil {
		if _, err := pricing.ParseClock(*input.StartTime); err != nil {
			add("start_time", err.Error())
		}
	}
	if input.EndTime != nil {
		if _, err := pricing.ParseClock(*input.EndTime); err != nil {
			add("end_time", err.Error())
		}
	}
	if input.MaxUses != nil && *input.MaxUses < 0 {
		add("max_uses", "max uses cannot be negative")
	}
	if input.MaxUsesPerClient != nil && *input.MaxUsesPerClient < 0 {
		add("max_uses_per_client", "max uses per client cannot be negative")
	}
	return errs
}

// GetPromotion retrieves a promotion by ID
func (s *PricingService) GetPromotion(ctx context.Context, id uuid.UUID) (*entity.Promotion, error) {
	promotion, err := s.promotionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	if promotion == nil {
		return nil, apperror.NewNotFoundError("Promotion")
	}
	return promotion, nil
}

// ListPromotions retrieves promotions with pagination
func (s *PricingService) ListPromotions(ctx context.Context, params *repository.PromotionFilterParams) (*pagination.PaginatedResult[entity.Promotion], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	promotions, total, err := s.promotionRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}

	return pagination.NewPaginatedResult(promotions, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)), nil
}

// SetPromotionActive switches a promotion on or off
func (s *PricingService) SetPromotionActive(ctx context.Context, id uuid.UUID, active bool) (*entity.Promotion, error) {
	promotion, err := s.GetPromotion(ctx, id)
	if err != nil {
		return nil, err
	}
	if promotion.IsActive == active {
		return promotion, nil
	}

	promotion.IsActive = active
	if err := s.promotionRepo.Update(ctx, promotion); err != nil {
		return nil, fmt.Errorf("update promotion: %w", err)
	}

	s.log.Info("promotion activation changed",
		zap.String("promotion_id", promotion.ID.String()),
		zap.Bool("active", active),
	)
	return promotion, nil
}
