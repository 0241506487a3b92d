package entity

import "github.com/shopspring/decimal"

// ReceiptHeader holds the salon header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ReceiptLine is a single comanda line on a receipt.
type ReceiptLine struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Promotions  []string        `json:"promotions,omitempty"`
}

// Receipt is composed from a comanda at print time; it is not persisted.
type Receipt struct {
	Header        ReceiptHeader    `json:"header"`
	Number        int64            `json:"number"`
	Status        string           `json:"status"`
	Date          string           `json:"date"`
	Client        string           `json:"client"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	Lines         []ReceiptLine    `json:"lines"`
	Discount      decimal.Decimal  `json:"discount"`
	Total         decimal.Decimal  `json:"total"`
	AmountCharged *decimal.Decimal `json:"amount_charged,omitempty"`
}
