package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePromotionRequest represents a promotion creation request.
// Dates are "YYYY-MM-DD", times "HH:MM".
type CreatePromotionRequest struct {
	Name                   string          `json:"name" binding:"required,min=2,max=255"`
	Description            *string         `json:"description"`
	Kind                   string          `json:"kind" binding:"required,oneof=percentage fixed_amount fixed_price"`
	Value                  decimal.Decimal `json:"value"`
	Scope                  string          `json:"scope" binding:"required,oneof=services products both"`
	StartDate              string          `json:"start_date" binding:"required"`
	EndDate                string          `json:"end_date" binding:"required"`
	DaysOfWeek             int             `json:"days_of_week" binding:"min=0,max=127"`
	StartTime              *string         `json:"start_time"`
	EndTime                *string         `json:"end_time"`
	MaxUses                *int            `json:"max_uses" binding:"omitempty,min=0"`
	MaxUsesPerClient       *int            `json:"max_uses_per_client" binding:"omitempty,min=0"`
	AllowsCombining        bool            `json:"allows_combining"`
	CommissionOnDiscounted bool            `json:"commission_on_discounted"`
	CouponCode             *string         `json:"coupon_code" binding:"omitempty,max=64"`
}

// QuoteRequest asks what one unit of a kind would cost after promotions
type QuoteRequest struct {
	Kind     string           `json:"kind" binding:"required,oneof=service product package"`
	ItemID   *uuid.UUID       `json:"item_id"`
	Amount   *decimal.Decimal `json:"amount"`
	ClientID *uuid.UUID       `json:"client_id"`
	Coupon   string           `json:"coupon"`
}
