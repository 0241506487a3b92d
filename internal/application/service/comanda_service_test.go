package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestComandaService_OpenAssignsSequentialNumbers(t *testing.T) {
	f := newFixture(t)

	first := f.open(nil)
	second := f.open(nil)

	assert.Equal(t, int64(1), first.Number)
	assert.Equal(t, int64(2), second.Number)
	assert.Equal(t, enum.ComandaStatusOpen, first.Status)
	assert.True(t, first.Total.IsZero())
	assert.Equal(t, f.frontDesk.UserID, first.OpenedBy)
}

func TestComandaService_OpenSnapshotsClientName(t *testing.T) {
	f := newFixture(t)
	client := f.client("Ana Souza")

	c := f.open(&client.ID)

	assert.Equal(t, "Ana Souza", c.ClientName)

	missing := uuid.New()
	_, err := f.comandas.Open(f.ctx, f.frontDesk, &OpenComandaInput{ClientID: &missing})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestComandaService_LineLifecycle(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "80.00")
	shampoo := f.product("Shampoo", "15.50")
	c := f.open(nil)

	c = f.addService(c.ID, haircut, "")
	c, err := f.comandas.AddItem(f.ctx, f.frontDesk, c.ID, &AddItemInput{
		Kind:     enum.ItemKindProduct,
		ItemID:   &shampoo.ID,
		Quantity: dec("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "111.00", c.Total.StringFixed(2))
	require.Len(t, c.Items, 2)
	assert.Equal(t, "Shampoo", c.Items[1].Description)

	c, err = f.comandas.UpdateQuantity(f.ctx, f.frontDesk, c.ID, 1, dec("3"))
	require.NoError(t, err)
	assert.Equal(t, "126.50", c.Total.StringFixed(2))

	c, err = f.comandas.RemoveItem(f.ctx, f.frontDesk, c.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "80.00", c.Total.StringFixed(2))

	stored, err := f.comandas.Get(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "80.00", stored.Total.StringFixed(2))
	assert.Len(t, stored.Items, 1)
}

func TestComandaService_AddItemExplicitPrice(t *testing.T) {
	f := newFixture(t)
	c := f.open(nil)

	c, err := f.comandas.AddItem(f.ctx, f.frontDesk, c.ID, &AddItemInput{
		Kind:        enum.ItemKindProduct,
		Description: "Hair clip",
		Quantity:    dec("2"),
		UnitPrice:   decPtr("4.25"),
	})
	require.NoError(t, err)
	assert.Equal(t, "8.50", c.Total.StringFixed(2))
	assert.Nil(t, c.Items[0].ItemID)
}

func TestComandaService_AddItemValidation(t *testing.T) {
	f := newFixture(t)
	c := f.open(nil)
	haircut := f.service("Haircut", "80.00")

	tests := []struct {
		name  string
		input AddItemInput
		kind  apperror.Kind
	}{
		{name: "unknown kind", input: AddItemInput{Kind: "voucher", Description: "x", Quantity: dec("1"), UnitPrice: decPtr("1")}, kind: apperror.KindValidation},
		{name: "zero quantity", input: AddItemInput{Kind: enum.ItemKindService, ItemID: &haircut.ID, Quantity: dec("0")}, kind: apperror.KindValidation},
		{name: "negative price", input: AddItemInput{Kind: enum.ItemKindProduct, Description: "x", Quantity: dec("1"), UnitPrice: decPtr("-1")}, kind: apperror.KindValidation},
		{name: "no price outside catalog", input: AddItemInput{Kind: enum.ItemKindProduct, Description: "x", Quantity: dec("1")}, kind: apperror.KindValidation},
		{name: "unknown catalog item", input: AddItemInput{Kind: enum.ItemKindService, ItemID: &c.ID, Quantity: dec("1")}, kind: apperror.KindValidation},
		{name: "missing description", input: AddItemInput{Kind: enum.ItemKindProduct, Quantity: dec("1"), UnitPrice: decPtr("1")}, kind: apperror.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.comandas.AddItem(f.ctx, f.frontDesk, c.ID, &tt.input)
			assert.True(t, apperror.IsKind(err, tt.kind), "got %v", err)
		})
	}

	_, err := f.comandas.AddItem(f.ctx, f.frontDesk, uuid.New(), &AddItemInput{Kind: enum.ItemKindService, ItemID: &haircut.ID, Quantity: dec("1")})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestComandaService_AddItemRejectsInactiveCatalogEntry(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "80.00")
	inactive := false
	_, err := f.catalog.UpdateService(f.ctx, haircut.ID, &CatalogUpdateInput{IsActive: &inactive})
	require.NoError(t, err)
	c := f.open(nil)

	_, err = f.comandas.AddItem(f.ctx, f.frontDesk, c.ID, &AddItemInput{Kind: enum.ItemKindService, ItemID: &haircut.ID, Quantity: dec("1")})

	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestComandaService_AppliesPromotionOnAdd(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "80.00")
	promo := f.promotion(CreatePromotionInput{
		Name:                   "Ten percent",
		Kind:                   enum.DiscountKindPercentage,
		Value:                  dec("10"),
		CommissionOnDiscounted: true,
	})
	c := f.open(nil)

	c = f.addService(c.ID, haircut, "")

	item := c.Items[0]
	assert.Equal(t, "80.00", item.ListPrice.StringFixed(2))
	assert.Equal(t, "72.00", item.UnitPrice.StringFixed(2))
	assert.Equal(t, "72.00", item.CommissionBase.StringFixed(2))
	require.Len(t, item.AppliedPromotions, 1)
	assert.Equal(t, promo.ID, item.AppliedPromotions[0].PromotionID)
	assert.Equal(t, "72.00", c.Total.StringFixed(2))
}

func TestComandaService_PromotionScope(t *testing.T) {
	f := newFixture(t)
	shampoo := f.product("Shampoo", "15.50")
	f.promotion(CreatePromotionInput{
		Kind:  enum.DiscountKindPercentage,
		Value: dec("50"),
		Scope: enum.PromotionScopeServices,
	})
	c := f.open(nil)

	c, err := f.comandas.AddItem(f.ctx, f.frontDesk, c.ID, &AddItemInput{Kind: enum.ItemKindProduct, ItemID: &shampoo.ID, Quantity: dec("1")})

	require.NoError(t, err)
	assert.Empty(t, c.Items[0].AppliedPromotions)
	assert.Equal(t, "15.50", c.Total.StringFixed(2))
}

func TestComandaService_CouponPromotion(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "80.00")
	promo := f.promotion(CreatePromotionInput{
		Name:       "Save ten",
		Kind:       enum.DiscountKindPercentage,
		Value:      dec("10"),
		CouponCode: strPtr("save10"),
	})
	require.NotNil(t, promo.CouponCode)
	assert.Equal(t, "SAVE10", *promo.CouponCode)
	assert.True(t, promo.RequiresCoupon)

	c := f.open(nil)
	c = f.addService(c.ID, haircut, "")
	assert.Equal(t, "80.00", c.Items[0].UnitPrice.StringFixed(2))

	c = f.addService(c.ID, haircut, "save10")
	assert.Equal(t, "72.00", c.Items[1].UnitPrice.StringFixed(2))
	assert.Equal(t, "152.00", c.Total.StringFixed(2))
}

func TestComandaService_CloseRecordsUsage(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "80.00")
	client := f.client("Ana")
	promo := f.promotion(CreatePromotionInput{Kind: enum.DiscountKindFixedAmount, Value: dec("5")})
	c := f.open(&client.ID)
	c = f.addService(c.ID, haircut, "")

	var events []entity.ComandaClosedEvent
	f.comandas.OnClosed(func(_ context.Context, ev entity.ComandaClosedEvent) {
		events = append(events, ev)
	})

	closed, err := f.comandas.Close(f.ctx, f.frontDesk, c.ID, &CloseComandaInput{})
	require.NoError(t, err)

	assert.Equal(t, enum.ComandaStatusClosed, closed.Status)
	assert.Equal(t, "75.00", closed.Total.StringFixed(2))
	require.NotNil(t, closed.ClosedBy)
	assert.Equal(t, f.frontDesk.UserID, *closed.ClosedBy)
	assert.False(t, closed.AmountCharged.Valid)

	usages := f.store.Usages()
	require.Len(t, usages, 1)
	assert.Equal(t, promo.ID, usages[0].PromotionID)
	assert.Equal(t, closed.ID, usages[0].ComandaID)
	assert.Equal(t, "5.00", usages[0].Discount.StringFixed(2))
	require.NotNil(t, usages[0].ClientID)
	assert.Equal(t, client.ID, *usages[0].ClientID)

	stored, err := f.pricing.GetPromotion(f.ctx, promo.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsageCount)

	require.Len(t, events, 1)
	assert.Equal(t, closed.ID, events[0].ComandaID)
	assert.Equal(t, "75.00", events[0].FinalTotal.StringFixed(2))
}

func TestComandaService_CloseTwiceFails(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "80.00")
	c := f.open(nil)
	f.addService(c.ID, haircut, "")

	_, err := f.comandas.Close(f.ctx, f.frontDesk, c.ID, &CloseComandaInput{})
	require.NoError(t, err)

	_, err = f.comandas.Close(f.ctx, f.frontDesk, c.ID, &CloseComandaInput{})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))

	_, err = f.comandas.AddItem(f.ctx, f.frontDesk, c.ID, &AddItemInput{Kind: enum.ItemKindService, ItemID: &haircut.ID, Quantity: dec("1")})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
}

func TestComandaService_CloseEmptyTabFails(t *testing.T) {
	f := newFixture(t)
	c := f.open(nil)

	_, err := f.comandas.Close(f.ctx, f.frontDesk, c.ID, &CloseComandaInput{})

	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
}

func TestComandaService_CloseRequiresFrontDesk(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "80.00")
	c := f.open(nil)
	f.addService(c.ID, haircut, "")

	_, err := f.comandas.Close(f.ctx, f.professional, c.ID, &CloseComandaInput{})
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	_, err = f.comandas.Cancel(f.ctx, f.professional, c.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
}

func TestComandaService_CloseWithPaymentMethod(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "100.00")
	card, err := f.methods.Create(f.ctx, &CreatePaymentMethodInput{Name: "Credit card", SurchargePercent: dec("3.5")})
	require.NoError(t, err)
	c := f.open(nil)
	f.addService(c.ID, haircut, "")

	closed, err := f.comandas.Close(f.ctx, f.frontDesk, c.ID, &CloseComandaInput{PaymentMethodID: &card.ID})
	require.NoError(t, err)

	require.NotNil(t, closed.PaymentMethodID)
	assert.Equal(t, card.ID, *closed.PaymentMethodID)
	require.True(t, closed.AmountCharged.Valid)
	assert.Equal(t, "103.50", closed.AmountCharged.Decimal.StringFixed(2))
	assert.Equal(t, "100.00", closed.Total.StringFixed(2))
}

func TestComandaService_CloseRejectsUnusablePaymentMethod(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "100.00")
	c := f.open(nil)
	f.addService(c.ID, haircut, "")

	missing := uuid.New()
	_, err := f.comandas.Close(f.ctx, f.frontDesk, c.ID, &CloseComandaInput{PaymentMethodID: &missing})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	method := &entity.PaymentMethod{Name: "Cheque", IsActive: true}
	require.NoError(t, f.store.PaymentMethods().Create(f.ctx, method))
	method.IsActive = false
	require.NoError(t, f.store.PaymentMethods().Update(f.ctx, method))

	_, err = f.comandas.Close(f.ctx, f.frontDesk, c.ID, &CloseComandaInput{PaymentMethodID: &method.ID})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	stored, err := f.comandas.Get(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.ComandaStatusOpen, stored.Status)
}

func TestComandaService_CloseDropsPromotionOverGlobalCap(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "80.00")
	promo := f.promotion(CreatePromotionInput{
		Kind:    enum.DiscountKindPercentage,
		Value:   dec("10"),
		MaxUses: intPtr(1),
	})

	first := f.open(nil)
	second := f.open(nil)
	f.addService(first.ID, haircut, "")
	second = f.addService(second.ID, haircut, "")
	require.Len(t, second.Items[0].AppliedPromotions, 1)

	_, err := f.comandas.Close(f.ctx, f.frontDesk, first.ID, &CloseComandaInput{})
	require.NoError(t, err)

	closed, err := f.comandas.Close(f.ctx, f.frontDesk, second.ID, &CloseComandaInput{})
	require.NoError(t, err)

	assert.Empty(t, closed.Items[0].AppliedPromotions)
	assert.Equal(t, "80.00", closed.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "80.00", closed.Total.StringFixed(2))

	stored, err := f.pricing.GetPromotion(f.ctx, promo.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsageCount)
	assert.Len(t, f.store.Usages(), 1)
}

func TestComandaService_CloseCountsEachLineAgainstCap(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "80.00")
	f.promotion(CreatePromotionInput{
		Kind:    enum.DiscountKindFixedAmount,
		Value:   dec("10"),
		MaxUses: intPtr(1),
	})
	c := f.open(nil)
	f.addService(c.ID, haircut, "")
	f.addService(c.ID, haircut, "")

	closed, err := f.comandas.Close(f.ctx, f.frontDesk, c.ID, &CloseComandaInput{})
	require.NoError(t, err)

	assert.Len(t, closed.Items[0].AppliedPromotions, 1)
	assert.Empty(t, closed.Items[1].AppliedPromotions)
	assert.Equal(t, "150.00", closed.Total.StringFixed(2))
}

func TestComandaService_PerClientCap(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "80.00")
	client := f.client("Ana")
	other := f.client("Bea")
	f.promotion(CreatePromotionInput{
		Kind:             enum.DiscountKindPercentage,
		Value:            dec("10"),
		MaxUsesPerClient: intPtr(1),
	})

	first := f.open(&client.ID)
	f.addService(first.ID, haircut, "")
	_, err := f.comandas.Close(f.ctx, f.frontDesk, first.ID, &CloseComandaInput{})
	require.NoError(t, err)

	again := f.open(&client.ID)
	again = f.addService(again.ID, haircut, "")
	assert.Empty(t, again.Items[0].AppliedPromotions)

	fresh := f.open(&other.ID)
	fresh = f.addService(fresh.ID, haircut, "")
	assert.Len(t, fresh.Items[0].AppliedPromotions, 1)
}

func TestComandaService_Cancel(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "80.00")
	c := f.open(nil)
	f.addService(c.ID, haircut, "")

	cancelled, err := f.comandas.Cancel(f.ctx, f.frontDesk, c.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.ComandaStatusCancelled, cancelled.Status)
	assert.Len(t, cancelled.Items, 1)

	_, err = f.comandas.Close(f.ctx, f.frontDesk, c.ID, &CloseComandaInput{})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))

	_, err = f.comandas.Cancel(f.ctx, f.frontDesk, c.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
}

func TestComandaService_ListAndSummary(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "80.00")

	closed := f.open(nil)
	f.addService(closed.ID, haircut, "")
	_, err := f.comandas.Close(f.ctx, f.frontDesk, closed.ID, &CloseComandaInput{})
	require.NoError(t, err)

	open := f.open(nil)
	f.addService(open.ID, haircut, "")
	f.addService(open.ID, haircut, "")

	cancelled := f.open(nil)
	_, err = f.comandas.Cancel(f.ctx, f.frontDesk, cancelled.ID)
	require.NoError(t, err)

	status := enum.ComandaStatusOpen
	result, err := f.comandas.List(f.ctx, &repository.ComandaFilterParams{Status: &status})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, open.ID, result.Items[0].ID)

	summary, err := f.comandas.Summary(f.ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.OpenCount)
	assert.Equal(t, "160.00", summary.OpenTotal.StringFixed(2))
	assert.Equal(t, int64(1), summary.ClosedCount)
	assert.Equal(t, "80.00", summary.ClosedRevenue.StringFixed(2))
	assert.Equal(t, int64(1), summary.CancelledCount)

	from := f.now
	to := f.now.AddDate(0, 0, -1)
	_, err = f.comandas.Summary(f.ctx, &from, &to)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestComandaService_ListWithCursor(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.open(nil)
	}

	first, err := f.comandas.ListWithCursor(f.ctx, &repository.ComandaCursorFilterParams{})
	require.NoError(t, err)
	require.Len(t, first.Items, 3)
	assert.Equal(t, int64(3), first.Items[0].Number)
	assert.False(t, first.Pagination.HasPrev)
}

// checkoutDuringLookup closes the tab the first time a catalog price is read,
// as when the front desk checks out while another line is being added
type checkoutDuringLookup struct {
	repository.CatalogRepository
	once     sync.Once
	checkout func()
}

func (c *checkoutDuringLookup) GetCatalogPrice(ctx context.Context, kind enum.ItemKind, id uuid.UUID) (*entity.CatalogPrice, error) {
	c.once.Do(c.checkout)
	return c.CatalogRepository.GetCatalogPrice(ctx, kind, id)
}

func TestComandaService_AddItemNeverRewritesClosedTab(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "80.00")
	c := f.open(nil)
	f.addService(c.ID, haircut, "")

	var events []entity.ComandaClosedEvent
	f.comandas.OnClosed(func(_ context.Context, ev entity.ComandaClosedEvent) {
		events = append(events, ev)
	})

	lookup := &checkoutDuringLookup{CatalogRepository: f.store.Catalog()}
	lookup.checkout = func() {
		_, err := f.comandas.Close(context.Background(), f.frontDesk, c.ID, &CloseComandaInput{})
		require.NoError(t, err)
	}
	racing := NewComandaService(
		f.store.Comandas(),
		lookup,
		f.store.Clients(),
		f.store.PaymentMethods(),
		f.pricing,
		f.store.Transactor(),
		func() time.Time { return f.now },
		zap.NewNop(),
	)

	_, err := racing.AddItem(f.ctx, f.frontDesk, c.ID, &AddItemInput{Kind: enum.ItemKindService, ItemID: &haircut.ID, Quantity: dec("1")})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState), "got %v", err)

	stored, err := f.comandas.Get(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.ComandaStatusClosed, stored.Status)
	assert.Len(t, stored.Items, 1)
	assert.Equal(t, "80.00", stored.Total.StringFixed(2))
	require.Len(t, events, 1)
	assert.True(t, events[0].FinalTotal.Equal(stored.Total))
}

func TestComandaRepository_SaveItemsRefusesClosedTab(t *testing.T) {
	f := newFixture(t)
	haircut := f.service("Haircut", "80.00")
	c := f.open(nil)
	c = f.addService(c.ID, haircut, "")

	closed, err := f.comandas.Close(f.ctx, f.frontDesk, c.ID, &CloseComandaInput{})
	require.NoError(t, err)

	stale := c.Clone()
	require.NoError(t, stale.RemoveItem(0))
	err = f.store.Comandas().SaveItems(f.ctx, stale.ID, stale.Items, stale.Total)
	assert.ErrorIs(t, err, repository.ErrNotOpen)

	stored, err := f.comandas.Get(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)
	assert.True(t, stored.Total.Equal(closed.Total))
}

func TestComandaService_ExplicitPriceMatchesStoredPrecision(t *testing.T) {
	f := newFixture(t)
	c := f.open(nil)

	_, err := f.comandas.AddItem(f.ctx, f.frontDesk, c.ID, &AddItemInput{
		Kind:        enum.ItemKindProduct,
		Description: "Pomade",
		Quantity:    dec("0.3333"),
		UnitPrice:   decPtr("10.555"),
	})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation), "got %v", err)

	c, err = f.comandas.AddItem(f.ctx, f.frontDesk, c.ID, &AddItemInput{
		Kind:        enum.ItemKindProduct,
		Description: "Pomade",
		Quantity:    dec("0.333"),
		UnitPrice:   decPtr("10.555"),
	})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	item := c.Items[0]
	assert.Equal(t, "10.56", item.UnitPrice.String())
	assert.True(t, item.LineTotal.Equal(item.Quantity.Mul(item.UnitPrice)))
	assert.Equal(t, "3.52", c.Total.StringFixed(2))

	_, err = f.comandas.UpdateQuantity(f.ctx, f.frontDesk, c.ID, 0, dec("2.0001"))
	assert.True(t, apperror.IsKind(err, apperror.KindValidation), "got %v", err)
}
