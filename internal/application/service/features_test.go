package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/application/service"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/internal/infrastructure/memory"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type catalogEntry struct {
	kind enum.ItemKind
	id   uuid.UUID
}

type comandaTestContext struct {
	now      time.Time
	pricing  *service.PricingService
	comandas *service.ComandaService
	catalog  *service.CatalogService
	desk     entity.Principal

	items   map[string]catalogEntry
	tabs    map[string]*entity.Comanda
	current string
	err     error
}

func (c *comandaTestContext) reset() {
	c.now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return c.now }
	log := zap.NewNop()

	store := memory.NewStore()
	store.Now = clock

	c.pricing = service.NewPricingService(store.Promotions(), store.Transactor(), clock, log)
	c.comandas = service.NewComandaService(
		store.Comandas(),
		store.Catalog(),
		store.Clients(),
		store.PaymentMethods(),
		c.pricing,
		store.Transactor(),
		clock,
		log,
	)
	c.catalog = service.NewCatalogService(store.Catalog())
	c.desk = entity.Principal{UserID: uuid.New(), Role: enum.UserRoleReception}

	c.items = map[string]catalogEntry{}
	c.tabs = map[string]*entity.Comanda{}
	c.current = ""
	c.err = nil
}

func (c *comandaTestContext) aServicePriced(name, price string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	svc, err := c.catalog.CreateService(context.Background(), &service.CatalogItemInput{Name: name, Price: p, DurationMinutes: 30})
	if err != nil {
		return err
	}
	c.items[name] = catalogEntry{kind: enum.ItemKindService, id: svc.ID}
	return nil
}

func (c *comandaTestContext) aProductPriced(name, price string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	product, err := c.catalog.CreateProduct(context.Background(), &service.CatalogItemInput{Name: name, Price: p, StockQuantity: decimal.NewFromInt(10)})
	if err != nil {
		return err
	}
	c.items[name] = catalogEntry{kind: enum.ItemKindProduct, id: product.ID}
	return nil
}

func (c *comandaTestContext) createPromotion(name string, percent int, scope string, maxUses *int) error {
	_, err := c.pricing.CreatePromotion(context.Background(), &service.CreatePromotionInput{
		Name:      name,
		Kind:      enum.DiscountKindPercentage,
		Value:     decimal.NewFromInt(int64(percent)),
		Scope:     enum.PromotionScope(scope),
		StartDate: c.now.AddDate(0, 0, -3),
		EndDate:   c.now.AddDate(0, 0, 3),
		MaxUses:   maxUses,
	})
	c.now = c.now.Add(time.Minute)
	return err
}

func (c *comandaTestContext) aPercentPromotionOn(percent int, name, scope string) error {
	return c.createPromotion(name, percent, scope, nil)
}

func (c *comandaTestContext) aPercentPromotionOnLimitedTo(percent int, name, scope string, uses int) error {
	return c.createPromotion(name, percent, scope, &uses)
}

func (c *comandaTestContext) anOpenComandaNamed(label string) error {
	tab, err := c.comandas.Open(context.Background(), c.desk, &service.OpenComandaInput{})
	if err != nil {
		return err
	}
	c.tabs[label] = tab
	c.current = label
	return nil
}

func (c *comandaTestContext) anOpenComanda() error {
	return c.anOpenComandaNamed("default")
}

func (c *comandaTestContext) addTo(qty, name, label string) error {
	entry, ok := c.items[name]
	if !ok {
		return fmt.Errorf("unknown catalog item %q", name)
	}
	q, err := decimal.NewFromString(qty)
	if err != nil {
		return err
	}
	tab, err := c.comandas.AddItem(context.Background(), c.desk, c.tabs[label].ID, &service.AddItemInput{
		Kind:     entry.kind,
		ItemID:   &entry.id,
		Quantity: q,
	})
	if err != nil {
		return err
	}
	c.tabs[label] = tab
	return nil
}

func (c *comandaTestContext) iAdd(qty, name string) error {
	return c.addTo(qty, name, c.current)
}

func (c *comandaTestContext) iRemoveLine(line int) error {
	tab, err := c.comandas.RemoveItem(context.Background(), c.desk, c.tabs[c.current].ID, line-1)
	if err != nil {
		return err
	}
	c.tabs[c.current] = tab
	return nil
}

func (c *comandaTestContext) theFrontDeskCloses(label string) error {
	tab, err := c.comandas.Close(context.Background(), c.desk, c.tabs[label].ID, &service.CloseComandaInput{})
	c.err = err
	if err == nil {
		c.tabs[label] = tab
	}
	return nil
}

func (c *comandaTestContext) theFrontDeskClosesTheComanda() error {
	return c.theFrontDeskCloses(c.current)
}

func (c *comandaTestContext) totalOf(label, want string) error {
	if c.err != nil {
		return fmt.Errorf("unexpected error: %w", c.err)
	}
	expected, err := decimal.NewFromString(want)
	if err != nil {
		return err
	}
	got := c.tabs[label].Total
	if !got.Equal(expected) {
		return fmt.Errorf("expected total %s, got %s", expected.StringFixed(2), got.StringFixed(2))
	}
	return nil
}

func (c *comandaTestContext) theComandaTotalIs(want string) error {
	return c.totalOf(c.current, want)
}

func (c *comandaTestContext) comandaClosedAt(label, want string) error {
	if c.tabs[label].Status != enum.ComandaStatusClosed {
		return fmt.Errorf("comanda %q is %s", label, c.tabs[label].Status)
	}
	return c.totalOf(label, want)
}

func (c *comandaTestContext) theComandaHasLines(n int) error {
	if got := len(c.tabs[c.current].Items); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (c *comandaTestContext) theComandaStatusIs(status string) error {
	if got := c.tabs[c.current].Status.String(); got != status {
		return fmt.Errorf("expected status %q, got %q", status, got)
	}
	return nil
}

func (c *comandaTestContext) theOperationFailsWith(kind string) error {
	if c.err == nil {
		return errors.New("expected an error, got none")
	}
	if !apperror.IsKind(c.err, apperror.Kind(kind)) {
		return fmt.Errorf("expected %s error, got %v", kind, c.err)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &comandaTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a service "([^"]*)" priced (\d+\.\d+)$`, tc.aServicePriced)
	ctx.Step(`^a product "([^"]*)" priced (\d+\.\d+)$`, tc.aProductPriced)
	ctx.Step(`^a (\d+) percent promotion "([^"]*)" on (services|products|both)$`, tc.aPercentPromotionOn)
	ctx.Step(`^a (\d+) percent promotion "([^"]*)" on (services|products|both) limited to (\d+) uses?$`, tc.aPercentPromotionOnLimitedTo)
	ctx.Step(`^an open comanda$`, tc.anOpenComanda)
	ctx.Step(`^an open comanda named "([^"]*)"$`, tc.anOpenComandaNamed)

	// When steps
	ctx.Step(`^I add (\d+(?:\.\d+)?) of "([^"]*)"$`, tc.iAdd)
	ctx.Step(`^I add (\d+(?:\.\d+)?) of "([^"]*)" to "([^"]*)"$`, tc.addTo)
	ctx.Step(`^I remove line (\d+)$`, tc.iRemoveLine)
	ctx.Step(`^the front desk closes the comanda$`, tc.theFrontDeskClosesTheComanda)
	ctx.Step(`^the front desk closes "([^"]*)"$`, tc.theFrontDeskCloses)

	// Then steps
	ctx.Step(`^the comanda total is (\d+\.\d+)$`, tc.theComandaTotalIs)
	ctx.Step(`^the comanda has (\d+) lines?$`, tc.theComandaHasLines)
	ctx.Step(`^the comanda status is "([^"]*)"$`, tc.theComandaStatusIs)
	ctx.Step(`^the operation fails with "([^"]*)"$`, tc.theOperationFailsWith)
	ctx.Step(`^comanda "([^"]*)" closed at (\d+\.\d+)$`, tc.comandaClosedAt)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../../features/comanda.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
