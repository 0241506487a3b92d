package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenComandaRequest represents an open tab request
type OpenComandaRequest struct {
	ClientID   *uuid.UUID `json:"client_id"`
	ClientName string     `json:"client_name" binding:"omitempty,max=255"`
	Notes      *string    `json:"notes"`
}

// AddItemRequest represents a new line on a tab. UnitPrice overrides the
// catalog price when present.
type AddItemRequest struct {
	Kind           string           `json:"kind" binding:"required,oneof=service product package"`
	ItemID         *uuid.UUID       `json:"item_id"`
	Description    string           `json:"description" binding:"omitempty,max=255"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	ProfessionalID *uuid.UUID       `json:"professional_id"`
	Coupon         string           `json:"coupon" binding:"omitempty,max=64"`
}

// UpdateQuantityRequest represents a quantity change on one line
type UpdateQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// CloseComandaRequest represents a checkout request
type CloseComandaRequest struct {
	PaymentMethodID *uuid.UUID `json:"payment_method_id"`
}
