package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// PaymentMethod carries the surcharge or discount applied when a tab is paid with it
type PaymentMethod struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name             string          `gorm:"size:100;not null;uniqueIndex" json:"name"`
	SurchargePercent decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0" json:"surcharge_percent"`
	SurchargeFixed   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"surcharge_fixed"`
	DiscountPercent  decimal.Decimal `gorm:"type:numeric(6,2);not null;default:0" json:"discount_percent"`
	IsActive         bool            `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new payment method
func (m *PaymentMethod) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PaymentMethod model
func (PaymentMethod) TableName() string {
	return "payment_methods"
}

// Apply returns the amount to charge for a tab total paid with this method
func (m *PaymentMethod) Apply(amount decimal.Decimal) decimal.Decimal {
	result := amount.
		Add(amount.Mul(m.SurchargePercent).Div(hundred)).
		Sub(amount.Mul(m.DiscountPercent).Div(hundred)).
		Add(m.SurchargeFixed)
	if result.IsNegative() {
		return decimal.Zero
	}
	return result.Round(MoneyPlaces)
}
