package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// MoneyPlaces is the precision of prices and totals
	MoneyPlaces = 2
	// QuantityPlaces is the precision of a line quantity
	QuantityPlaces = 3
)

// Comanda is an open tab accumulating service, product and package charges
// until checkout.
type Comanda struct {
	ID              uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	Number          int64               `gorm:"uniqueIndex;not null" json:"number"`
	ClientID        *uuid.UUID          `gorm:"type:uuid;index" json:"client_id,omitempty"`
	ClientName      string              `gorm:"size:255" json:"client_name"`
	Status          enum.ComandaStatus  `gorm:"default:0;index" json:"status"`
	Total           decimal.Decimal     `gorm:"type:numeric(14,2);not null;default:0" json:"total"`
	Notes           *string             `gorm:"type:text" json:"notes,omitempty"`
	PaymentMethodID *uuid.UUID          `gorm:"type:uuid" json:"payment_method_id,omitempty"`
	AmountCharged   decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"amount_charged"`
	OpenedBy        uuid.UUID           `gorm:"type:uuid;not null" json:"opened_by"`
	ClosedBy        *uuid.UUID          `gorm:"type:uuid" json:"closed_by,omitempty"`
	OpenedAt        time.Time           `gorm:"not null;index" json:"opened_at"`
	ClosedAt        *time.Time          `gorm:"index" json:"closed_at,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`

	// Relationships
	Items []ComandaItem `gorm:"foreignKey:ComandaID" json:"items"`
}

// BeforeCreate generates a UUID before creating a new comanda
func (c *Comanda) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Comanda model
func (Comanda) TableName() string {
	return "comandas"
}

// Clone returns a deep copy so a mutation can be discarded if persisting it fails
func (c *Comanda) Clone() *Comanda {
	out := *c
	out.Items = make([]ComandaItem, len(c.Items))
	for i := range c.Items {
		out.Items[i] = c.Items[i].Clone()
	}
	return &out
}

// Recompute rebuilds Total from the lines. It never adjusts incrementally.
func (c *Comanda) Recompute() {
	sum := decimal.Zero
	for i := range c.Items {
		c.Items[i].Position = i
		sum = sum.Add(c.Items[i].LineTotal)
	}
	c.Total = sum.Round(MoneyPlaces)
}

// EnsureOpen fails with an invalid state error unless items may still change
func (c *Comanda) EnsureOpen() error {
	if c.Status != enum.ComandaStatusOpen {
		return apperror.NewInvalidStateError(fmt.Sprintf("comanda #%d is %s", c.Number, c.Status))
	}
	return nil
}

// AppendItem adds a new line at the end. Lines are never merged.
func (c *Comanda) AppendItem(item ComandaItem) error {
	if err := c.EnsureOpen(); err != nil {
		return err
	}
	if !item.Quantity.IsPositive() {
		return apperror.NewValidationError("quantity must be greater than zero")
	}
	if err := checkQuantityPlaces(item.Quantity); err != nil {
		return err
	}
	item.ComandaID = c.ID
	item.ListPrice = item.ListPrice.Round(MoneyPlaces)
	item.UnitPrice = item.UnitPrice.Round(MoneyPlaces)
	item.Recalculate()
	c.Items = append(c.Items, item)
	c.Recompute()
	return nil
}

// UpdateQuantity changes the quantity of the line at index
func (c *Comanda) UpdateQuantity(index int, quantity decimal.Decimal) error {
	if err := c.EnsureOpen(); err != nil {
		return err
	}
	if !quantity.IsPositive() {
		return apperror.NewValidationError("quantity must be greater than zero; remove the item instead")
	}
	if err := checkQuantityPlaces(quantity); err != nil {
		return err
	}
	if index < 0 || index >= len(c.Items) {
		return apperror.NewNotFoundError("Comanda item")
	}
	c.Items[index].Quantity = quantity
	c.Items[index].Recalculate()
	c.Recompute()
	return nil
}

// RemoveItem deletes the line at index
func (c *Comanda) RemoveItem(index int) error {
	if err := c.EnsureOpen(); err != nil {
		return err
	}
	if index < 0 || index >= len(c.Items) {
		return apperror.NewNotFoundError("Comanda item")
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	c.Recompute()
	return nil
}

// checkQuantityPlaces rejects quantities the quantity column would round
func checkQuantityPlaces(q decimal.Decimal) error {
	if !q.Equal(q.Round(QuantityPlaces)) {
		return apperror.NewValidationError(fmt.Sprintf("quantity %s has more than %d decimal places", q, QuantityPlaces))
	}
	return nil
}

// CanClose reports whether checkout is allowed
func (c *Comanda) CanClose() error {
	if err := c.EnsureOpen(); err != nil {
		return err
	}
	if len(c.Items) == 0 {
		return apperror.NewInvalidStateError("cannot close a comanda without items")
	}
	return nil
}

// MarkClosed moves the tab to its terminal closed state
func (c *Comanda) MarkClosed(at time.Time, by uuid.UUID) {
	c.Recompute()
	c.Status = enum.ComandaStatusClosed
	c.ClosedAt = &at
	c.ClosedBy = &by
}

// MarkCancelled moves the tab to cancelled, keeping its items for audit
func (c *Comanda) MarkCancelled(at time.Time) error {
	if err := c.EnsureOpen(); err != nil {
		return err
	}
	c.Status = enum.ComandaStatusCancelled
	c.CancelledAt = &at
	return nil
}

// DisplayClient returns the linked client's snapshot name or the free text fallback
func (c *Comanda) DisplayClient() string {
	if c.ClientName != "" {
		return c.ClientName
	}
	return "Walk-in"
}

// ComandaItem is one priced entry within a tab
type ComandaItem struct {
	ID                uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	ComandaID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"comanda_id"`
	Position          int               `gorm:"not null" json:"position"`
	Kind              enum.ItemKind     `gorm:"size:20;not null" json:"kind"`
	ItemID            *uuid.UUID        `gorm:"type:uuid" json:"item_id,omitempty"`
	Description       string            `gorm:"size:255;not null" json:"description"`
	Quantity          decimal.Decimal   `gorm:"type:numeric(12,3);not null" json:"quantity"`
	ListPrice         decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"list_price"`
	UnitPrice         decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	LineTotal         decimal.Decimal   `gorm:"type:numeric(18,5);not null" json:"line_total"`
	CommissionBase    decimal.Decimal   `gorm:"type:numeric(18,5);not null" json:"commission_base"`
	AppliedPromotions AppliedPromotions `gorm:"type:jsonb" json:"applied_promotions"`
	ProfessionalID    *uuid.UUID        `gorm:"type:uuid;index" json:"professional_id,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new comanda item
func (i *ComandaItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ComandaItem model
func (ComandaItem) TableName() string {
	return "comanda_items"
}

// Clone copies the item including its promotion list
func (i ComandaItem) Clone() ComandaItem {
	if i.AppliedPromotions != nil {
		i.AppliedPromotions = append(AppliedPromotions(nil), i.AppliedPromotions...)
	}
	return i
}

// Recalculate derives LineTotal and CommissionBase from quantity and prices
func (i *ComandaItem) Recalculate() {
	i.LineTotal = i.Quantity.Mul(i.UnitPrice)
	i.CommissionBase = i.Quantity.Mul(i.commissionUnitBase())
}

// Discount is the amount taken off the list price for the whole line
func (i *ComandaItem) Discount() decimal.Decimal {
	return i.Quantity.Mul(i.ListPrice.Sub(i.UnitPrice))
}

func (i *ComandaItem) commissionUnitBase() decimal.Decimal {
	if len(i.AppliedPromotions) == 0 {
		return i.UnitPrice
	}
	for _, ap := range i.AppliedPromotions {
		if !ap.CommissionOnDiscounted {
			return i.ListPrice
		}
	}
	return i.UnitPrice
}

// AppliedPromotion records one promotion applied to a line's unit price
type AppliedPromotion struct {
	PromotionID            uuid.UUID         `json:"promotion_id"`
	Name                   string            `json:"name"`
	Kind                   enum.DiscountKind `json:"kind"`
	Value                  decimal.Decimal   `json:"value"`
	UnitDiscount           decimal.Decimal   `json:"unit_discount"`
	CommissionOnDiscounted bool              `json:"commission_on_discounted"`
}

// AppliedPromotions is stored as a JSON column
type AppliedPromotions []AppliedPromotion

func (a *AppliedPromotions) Scan(value interface{}) error {
	if value == nil {
		*a = AppliedPromotions{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to scan AppliedPromotions: %v", value)
	}

	return json.Unmarshal(data, a)
}

func (a AppliedPromotions) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// IDs returns the promotion ids in application order
func (a AppliedPromotions) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(a))
	for _, ap := range a {
		ids = append(ids, ap.PromotionID)
	}
	return ids
}

// TabCounter holds the last issued comanda number
type TabCounter struct {
	Name      string    `gorm:"size:50;primary_key" json:"name"`
	Value     int64     `gorm:"not null;default:0" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the TabCounter model
func (TabCounter) TableName() string {
	return "tab_counters"
}
