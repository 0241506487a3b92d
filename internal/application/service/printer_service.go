package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/printer"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer           printer.Printer
	comandaRepo       repository.ComandaRepository
	paymentMethodRepo repository.PaymentMethodRepository
	kind              printer.Kind
	charWidth         int
	header            entity.ReceiptHeader
	log               *zap.Logger
}

// PrinterOptions describes the attached printer and the receipt header.
type PrinterOptions struct {
	Kind      printer.Kind
	CharWidth int
	StoreName string
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	comandaRepo repository.ComandaRepository,
	paymentMethodRepo repository.PaymentMethodRepository,
	opts PrinterOptions,
	log *zap.Logger,
) *PrinterService {
	return &PrinterService{
		printer:           p,
		comandaRepo:       comandaRepo,
		paymentMethodRepo: paymentMethodRepo,
		kind:              opts.Kind,
		charWidth:         opts.CharWidth,
		header:            entity.ReceiptHeader{StoreName: opts.StoreName},
		log:               log,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
	Device     string `json:"device"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.kind != printer.KindNone && s.kind != "",
		Connected:  s.printer.IsConnected(ctx),
		Type:       string(s.kind),
		Device:     s.printer.Describe(),
	}
}

// ComandaReceipt builds the receipt for a tab without printing it.
func (s *PrinterService) ComandaReceipt(ctx context.Context, comandaID uuid.UUID) (*entity.Receipt, error) {
	comanda, err := s.comandaRepo.GetWithItems(ctx, comandaID)
	if err != nil {
		return nil, fmt.Errorf("load comanda: %w", err)
	}
	if comanda == nil {
		return nil, apperror.NewNotFoundError("Comanda")
	}

	receipt := &entity.Receipt{
		Header:   s.header,
		Number:   comanda.Number,
		Status:   comanda.Status.String(),
		Date:     comanda.OpenedAt.Format("2006-01-02 15:04"),
		Client:   comanda.DisplayClient(),
		Discount: decimal.Zero,
		Total:    comanda.Total,
	}
	if comanda.ClosedAt != nil {
		receipt.Date = comanda.ClosedAt.Format("2006-01-02 15:04")
	}

	if comanda.PaymentMethodID != nil {
		method, err := s.paymentMethodRepo.GetByID(ctx, *comanda.PaymentMethodID)
		if err != nil {
			return nil, fmt.Errorf("load payment method: %w", err)
		}
		if method != nil {
			receipt.PaymentMethod = method.Name
		}
	}
	if comanda.AmountCharged.Valid {
		charged := comanda.AmountCharged.Decimal
		receipt.AmountCharged = &charged
	}

	for _, item := range comanda.Items {
		line := entity.ReceiptLine{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal.Round(entity.MoneyPlaces),
		}
		for _, ap := range item.AppliedPromotions {
			line.Promotions = append(line.Promotions, ap.Name)
		}
		receipt.Discount = receipt.Discount.Add(item.Discount())
		receipt.Lines = append(receipt.Lines, line)
	}
	receipt.Discount = receipt.Discount.Round(entity.MoneyPlaces)

	return receipt, nil
}

// PrintComanda prints a tab's receipt. The receipt is returned even when the
// printer fails so the caller can show it on screen.
func (s *PrinterService) PrintComanda(ctx context.Context, comandaID uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.ComandaReceipt(ctx, comandaID)
	if err != nil {
		return nil, err
	}

	data := FormatReceipt(receipt, s.charWidth)
	if err := s.printer.Print(ctx, data); err != nil {
		s.log.Error("printer error",
			zap.String("comanda_id", comandaID.String()),
			zap.String("device", s.printer.Describe()),
			zap.Error(err),
		)
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}

	return receipt, nil
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, charWidth int) []byte {
	doc := printer.NewDocument(charWidth)

	doc.Align(printer.AlignCenter).
		Bold(true).Double(true).
		Line(r.Header.StoreName).
		Double(false).Bold(false)
	if r.Header.Address != "" {
		doc.Line(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Line(r.Header.Phone)
	}

	doc.Align(printer.AlignLeft).
		Rule().
		Pair("Comanda:", fmt.Sprintf("#%d", r.Number)).
		Pair("Date:", r.Date).
		Pair("Client:", r.Client)
	if r.Status != "closed" {
		doc.Pair("Status:", r.Status)
	}
	if r.PaymentMethod != "" {
		doc.Pair("Payment:", r.PaymentMethod)
	}
	doc.Rule()

	one := decimal.NewFromInt(1)
	for _, line := range r.Lines {
		doc.Item(line.Quantity.String(), line.Description, line.LineTotal.StringFixed(2))
		if !line.Quantity.Equal(one) {
			doc.Note("@ " + line.UnitPrice.StringFixed(2) + " each")
		}
		for _, name := range line.Promotions {
			doc.Note("promo: " + name)
		}
	}
	doc.Rule()

	if r.Discount.IsPositive() {
		doc.Pair("Discounts:", "-"+r.Discount.StringFixed(2))
	}
	doc.Bold(true).
		Pair("TOTAL:", r.Total.StringFixed(2)).
		Bold(false)
	if r.AmountCharged != nil && !r.AmountCharged.Equal(r.Total) {
		doc.Pair("Charged:", r.AmountCharged.StringFixed(2))
	}

	doc.Rule().
		Align(printer.AlignCenter).
		Blank(1).
		Line("Thank you, see you soon!").
		Align(printer.AlignLeft).
		Finish(3)

	return doc.Bytes()
}
