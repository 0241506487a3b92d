package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPrinter struct {
	jobs [][]byte
	err  error
}

func (p *recordingPrinter) Print(_ context.Context, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, append([]byte(nil), data...))
	return nil
}

func (p *recordingPrinter) IsConnected(context.Context) bool { return p.err == nil }
func (p *recordingPrinter) Describe() string                 { return "recording" }

func TestPrinterService_PrintComanda(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "80.00")
	shampoo := f.product("Shampoo", "15.50")
	f.promotion(CreatePromotionInput{Name: "Weekday cut", Kind: enum.DiscountKindPercentage, Value: dec("10"), Scope: enum.PromotionScopeServices})

	c := f.open(nil)
	f.addService(c.ID, haircut, "")
	_, err := f.comandas.AddItem(f.ctx, f.frontDesk, c.ID, &AddItemInput{Kind: enum.ItemKindProduct, ItemID: &shampoo.ID, Quantity: dec("2")})
	require.NoError(t, err)
	_, err = f.comandas.Close(f.ctx, f.frontDesk, c.ID, &CloseComandaInput{})
	require.NoError(t, err)

	rec := &recordingPrinter{}
	svc := NewPrinterService(rec, f.store.Comandas(), f.store.PaymentMethods(), PrinterOptions{Kind: printer.KindNetwork, CharWidth: 32, StoreName: "Salon"}, zap.NewNop())

	receipt, err := svc.PrintComanda(f.ctx, c.ID)
	require.NoError(t, err)

	assert.Equal(t, "103.00", receipt.Total.StringFixed(2))
	assert.Equal(t, "8.00", receipt.Discount.StringFixed(2))
	require.Len(t, receipt.Lines, 2)
	assert.Equal(t, []string{"Weekday cut"}, receipt.Lines[0].Promotions)

	require.Len(t, rec.jobs, 1)
	assert.Contains(t, string(rec.jobs[0]), "TOTAL:")
	assert.Contains(t, string(rec.jobs[0]), "103.00")
	assert.Contains(t, string(rec.jobs[0]), "promo: Weekday cut")

	status := svc.GetStatus(f.ctx)
	assert.True(t, status.Configured)
	assert.True(t, status.Connected)
}

func TestPrinterService_PrintFailureKeepsReceipt(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "80.00")
	c := f.open(nil)
	f.addService(c.ID, haircut, "")

	rec := &recordingPrinter{err: errors.New("paper out")}
	svc := NewPrinterService(rec, f.store.Comandas(), f.store.PaymentMethods(), PrinterOptions{Kind: printer.KindUSB}, zap.NewNop())

	receipt, err := svc.PrintComanda(f.ctx, c.ID)
	assert.Error(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, "open", receipt.Status)

	_, err = svc.ComandaReceipt(f.ctx, uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
