package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Promotion is a time- and condition-bounded discount rule
type Promotion struct {
	ID                     uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	Name                   string              `gorm:"size:255;not null" json:"name"`
	Description            *string             `gorm:"type:text" json:"description,omitempty"`
	Kind                   enum.DiscountKind   `gorm:"size:20;not null" json:"kind"`
	Value                  decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"value"`
	Scope                  enum.PromotionScope `gorm:"size:20;not null;index" json:"scope"`
	StartDate              time.Time           `gorm:"type:date;not null" json:"start_date"`
	EndDate                time.Time           `gorm:"type:date;not null" json:"end_date"`
	DaysOfWeek             int                 `gorm:"default:0" json:"days_of_week"`
	StartTime              *string             `gorm:"size:5" json:"start_time,omitempty"`
	EndTime                *string             `gorm:"size:5" json:"end_time,omitempty"`
	MaxUses                *int                `json:"max_uses,omitempty"`
	MaxUsesPerClient       *int                `json:"max_uses_per_client,omitempty"`
	UsageCount             int                 `gorm:"not null;default:0" json:"usage_count"`
	AllowsCombining        bool                `gorm:"default:false" json:"allows_combining"`
	CommissionOnDiscounted bool                `gorm:"default:false" json:"commission_on_discounted"`
	RequiresCoupon         bool                `gorm:"default:false" json:"requires_coupon"`
	CouponCode             *string             `gorm:"size:64;index" json:"coupon_code,omitempty"`
	IsActive               bool                `gorm:"default:true;index" json:"is_active"`
	CreatedAt              time.Time           `json:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at"`
	DeletedAt              gorm.DeletedAt      `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new promotion
func (p *Promotion) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Promotion model
func (Promotion) TableName() string {
	return "promotions"
}

// GlobalCapReached reports whether MaxUses has been hit
func (p *Promotion) GlobalCapReached(extra int) bool {
	return p.MaxUses != nil && p.UsageCount+extra > *p.MaxUses
}

// ClientCapReached reports whether a client with clientUses prior uses
// could not take extra more
func (p *Promotion) ClientCapReached(clientUses, extra int) bool {
	return p.MaxUsesPerClient != nil && clientUses+extra > *p.MaxUsesPerClient
}

// PromotionUsage records one redemption of a promotion on a closed comanda line
type PromotionUsage struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	PromotionID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"promotion_id"`
	ClientID      *uuid.UUID      `gorm:"type:uuid;index" json:"client_id,omitempty"`
	ComandaID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"comanda_id"`
	ComandaItemID uuid.UUID       `gorm:"type:uuid;not null" json:"comanda_item_id"`
	Discount      decimal.Decimal `gorm:"type:numeric(18,5);not null" json:"discount"`
	UsedAt        time.Time       `gorm:"not null" json:"used_at"`
}

// BeforeCreate generates a UUID before creating a new promotion usage
func (u *PromotionUsage) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PromotionUsage model
func (PromotionUsage) TableName() string {
	return "promotion_usages"
}
