package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// EventComandaClosed is the event type published when checkout completes
const EventComandaClosed = "comanda_closed"

// ComandaClosedEvent is handed to downstream collaborators (financial entries,
// professional commissions) once a tab is closed and committed.
type ComandaClosedEvent struct {
	EventType       string              `json:"event_type"`
	ComandaID       uuid.UUID           `json:"comanda_id"`
	Number          int64               `json:"number"`
	ClientID        *uuid.UUID          `json:"client_id,omitempty"`
	FinalTotal      decimal.Decimal     `json:"final_total"`
	AmountCharged   decimal.NullDecimal `json:"amount_charged"`
	PaymentMethodID *uuid.UUID          `json:"payment_method_id,omitempty"`
	ClosedAt        time.Time           `json:"closed_at"`
	ClosedBy        uuid.UUID           `json:"closed_by"`
	Items           []ClosedItem        `json:"items"`
}

// ClosedItem is the part of a line a commission calculator needs
type ClosedItem struct {
	Kind           enum.ItemKind   `json:"kind"`
	ItemID         *uuid.UUID      `json:"item_id,omitempty"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	LineTotal      decimal.Decimal `json:"line_total"`
	CommissionBase decimal.Decimal `json:"commission_base"`
	ProfessionalID *uuid.UUID      `json:"professional_id,omitempty"`
}

// NewComandaClosedEvent builds the event from a closed tab
func NewComandaClosedEvent(c *Comanda) ComandaClosedEvent {
	ev := ComandaClosedEvent{
		EventType:       EventComandaClosed,
		ComandaID:       c.ID,
		Number:          c.Number,
		ClientID:        c.ClientID,
		FinalTotal:      c.Total,
		AmountCharged:   c.AmountCharged,
		PaymentMethodID: c.PaymentMethodID,
		Items:           make([]ClosedItem, 0, len(c.Items)),
	}
	if c.ClosedAt != nil {
		ev.ClosedAt = *c.ClosedAt
	}
	if c.ClosedBy != nil {
		ev.ClosedBy = *c.ClosedBy
	}
	for _, it := range c.Items {
		ev.Items = append(ev.Items, ClosedItem{
			Kind:           it.Kind,
			ItemID:         it.ItemID,
			Description:    it.Description,
			Quantity:       it.Quantity,
			LineTotal:      it.LineTotal,
			CommissionBase: it.CommissionBase,
			ProfessionalID: it.ProfessionalID,
		})
	}
	return ev
}
