package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateServiceRequest represents a service creation request
type CreateServiceRequest struct {
	Name            string          `json:"name" binding:"required,min=2,max=255"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration_minutes" binding:"min=0"`
}

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required,min=2,max=255"`
	Code          *string         `json:"code" binding:"omitempty,max=100"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
}

// CreatePackageRequest represents a package creation request
type CreatePackageRequest struct {
	Name       string          `json:"name" binding:"required,min=2,max=255"`
	Price      decimal.Decimal `json:"price"`
	ServiceIDs []uuid.UUID     `json:"service_ids"`
}

// UpdateCatalogItemRequest changes the price or activation of a catalog entry
type UpdateCatalogItemRequest struct {
	Price    *decimal.Decimal `json:"price"`
	IsActive *bool            `json:"is_active"`
}

// CreateClientRequest represents a client creation request
type CreateClientRequest struct {
	Name  string  `json:"name" binding:"required,min=2,max=255"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone" binding:"omitempty,max=50"`
	Notes *string `json:"notes"`
}

// CreatePaymentMethodRequest represents a payment method creation request
type CreatePaymentMethodRequest struct {
	Name             string          `json:"name" binding:"required,min=2,max=100"`
	SurchargePercent decimal.Decimal `json:"surcharge_percent"`
	SurchargeFixed   decimal.Decimal `json:"surcharge_fixed"`
	DiscountPercent  decimal.Decimal `json:"discount_percent"`
}

// QuotePaymentRequest asks what an amount costs with a payment method
type QuotePaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
