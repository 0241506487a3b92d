package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WithinTransactionRollsBack(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	var clientID uuid.UUID
	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
		client := &entity.Client{Name: "Ana"}
		require.NoError(t, store.Clients().Create(ctx, client))
		clientID = client.ID

		n, err := store.Comandas().NextNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Clients().GetByID(ctx, clientID)
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := store.Comandas().NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStore_WithinTransactionCommits(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var clientID uuid.UUID
	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
		client := &entity.Client{Name: "Ana"}
		if err := store.Clients().Create(ctx, client); err != nil {
			return err
		}
		clientID = client.ID

		// nested calls join the outer transaction
		return store.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := store.Comandas().NextNumber(ctx)
			return err
		})
	})
	require.NoError(t, err)

	got, err := store.Clients().GetByID(ctx, clientID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ana", got.Name)

	n, err := store.Comandas().NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestComandaRepo_ReturnsCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	repo := store.Comandas()

	tab := &entity.Comanda{Number: 1, Status: enum.ComandaStatusOpen, Total: decimal.Zero}
	require.NoError(t, repo.Create(ctx, tab))

	items := []entity.ComandaItem{{
		Kind:        enum.ItemKindService,
		Description: "Haircut",
		Quantity:    decimal.NewFromInt(1),
		ListPrice:   decimal.NewFromInt(80),
		UnitPrice:   decimal.NewFromInt(80),
	}}
	require.NoError(t, repo.SaveItems(ctx, tab.ID, items, decimal.NewFromInt(80)))

	loaded, err := repo.GetWithItems(ctx, tab.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	loaded.Items[0].Description = "changed"
	loaded.Items = append(loaded.Items, entity.ComandaItem{Description: "extra"})

	again, err := repo.GetWithItems(ctx, tab.ID)
	require.NoError(t, err)
	require.Len(t, again.Items, 1)
	assert.Equal(t, "Haircut", again.Items[0].Description)
	assert.Equal(t, 0, again.Items[0].Position)
	assert.Equal(t, "80", again.Total.String())

	missing, err := repo.GetWithItems(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_RejectsDuplicates(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Users().Create(ctx, &entity.User{Name: "Rita", Email: "rita@salon.test", Role: enum.UserRoleReception}))
	err := store.Users().Create(ctx, &entity.User{Name: "Other", Email: "RITA@salon.test", Role: enum.UserRoleAdmin})
	assert.ErrorIs(t, err, domainRepo.ErrDuplicate)

	require.NoError(t, store.PaymentMethods().Create(ctx, &entity.PaymentMethod{Name: "Pix", IsActive: true}))
	err = store.PaymentMethods().Create(ctx, &entity.PaymentMethod{Name: "pix"})
	assert.ErrorIs(t, err, domainRepo.ErrDuplicate)
}
