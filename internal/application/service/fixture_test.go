package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fixture wires every service to one in-memory store and a settable clock
type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *memory.Store
	now      time.Time
	pricing  *PricingService
	comandas *ComandaService
	catalog  *CatalogService
	clients  *ClientService
	methods  *PaymentMethodService

	frontDesk    entity.Principal
	professional entity.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: memory.NewStore(),
		now:   time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.store.Now = clock
	log := zap.NewNop()

	f.pricing = NewPricingService(f.store.Promotions(), f.store.Transactor(), clock, log)
	f.comandas = NewComandaService(
		f.store.Comandas(),
		f.store.Catalog(),
		f.store.Clients(),
		f.store.PaymentMethods(),
		f.pricing,
		f.store.Transactor(),
		clock,
		log,
	)
	f.catalog = NewCatalogService(f.store.Catalog())
	f.clients = NewClientService(f.store.Clients())
	f.methods = NewPaymentMethodService(f.store.PaymentMethods())

	f.frontDesk = entity.Principal{UserID: uuid.New(), Email: "desk@salon.test", Role: enum.UserRoleReception}
	f.professional = entity.Principal{UserID: uuid.New(), Email: "pro@salon.test", Role: enum.UserRoleProfessional}
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func (f *fixture) service(name, price string) *entity.Service {
	f.t.Helper()
	svc, err := f.catalog.CreateService(f.ctx, &CatalogItemInput{Name: name, Price: dec(price), DurationMinutes: 30})
	require.NoError(f.t, err)
	return svc
}

func (f *fixture) product(name, price string) *entity.Product {
	f.t.Helper()
	p, err := f.catalog.CreateProduct(f.ctx, &CatalogItemInput{Name: name, Price: dec(price), StockQuantity: dec("10")})
	require.NoError(f.t, err)
	return p
}

func (f *fixture) client(name string) *entity.Client {
	f.t.Helper()
	c, err := f.clients.Create(f.ctx, &CreateClientInput{Name: name})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) open(clientID *uuid.UUID) *entity.Comanda {
	f.t.Helper()
	c, err := f.comandas.Open(f.ctx, f.frontDesk, &OpenComandaInput{ClientID: clientID})
	require.NoError(f.t, err)
	return c
}

// promotion creates a promotion valid for a week around the fixture clock
func (f *fixture) promotion(in CreatePromotionInput) *entity.Promotion {
	f.t.Helper()
	if in.Name == "" {
		in.Name = "Promotion"
	}
	if in.Scope == "" {
		in.Scope = enum.PromotionScopeBoth
	}
	if in.StartDate.IsZero() {
		in.StartDate = f.now.AddDate(0, 0, -3)
		in.EndDate = f.now.AddDate(0, 0, 3)
	}
	p, err := f.pricing.CreatePromotion(f.ctx, &in)
	require.NoError(f.t, err)
	// distinct creation instants keep tie-breaks deterministic
	f.now = f.now.Add(time.Minute)
	return p
}

func (f *fixture) addService(comandaID uuid.UUID, svc *entity.Service, coupon string) *entity.Comanda {
	f.t.Helper()
	c, err := f.comandas.AddItem(f.ctx, f.frontDesk, comandaID, &AddItemInput{
		Kind:     enum.ItemKindService,
		ItemID:   &svc.ID,
		Quantity: dec("1"),
		Coupon:   coupon,
	})
	require.NoError(f.t, err)
	return c
}
