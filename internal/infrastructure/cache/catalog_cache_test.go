package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingCatalog counts the price lookups that reach the backing store
type countingCatalog struct {
	domainRepo.CatalogRepository
	lookups int
}

func (c *countingCatalog) GetCatalogPrice(ctx context.Context, kind enum.ItemKind, id uuid.UUID) (*entity.CatalogPrice, error) {
	c.lookups++
	return c.CatalogRepository.GetCatalogPrice(ctx, kind, id)
}

type cacheFixture struct {
	ctx     context.Context
	mr      *miniredis.Miniredis
	backing *countingCatalog
	cache   domainRepo.CatalogRepository
}

const testTTL = 10 * time.Minute

func newCacheFixture(t *testing.T) *cacheFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	backing := &countingCatalog{CatalogRepository: memory.NewStore().Catalog()}
	return &cacheFixture{
		ctx:     context.Background(),
		mr:      mr,
		backing: backing,
		cache:   NewCatalogCache(backing, rdb, testTTL, zap.NewNop()),
	}
}

func (f *cacheFixture) haircut(t *testing.T) *entity.Service {
	t.Helper()
	svc := &entity.Service{Name: "Haircut", Price: decimal.RequireFromString("80.00"), IsActive: true}
	require.NoError(t, f.cache.CreateService(f.ctx, svc))
	return svc
}

func TestCatalogCache_MissThenHit(t *testing.T) {
	f := newCacheFixture(t)
	svc := f.haircut(t)
	key := priceKey(enum.ItemKindService, svc.ID)

	first, err := f.cache.GetCatalogPrice(f.ctx, enum.ItemKindService, svc.ID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "80", first.UnitPrice.String())
	assert.Equal(t, 1, f.backing.lookups)
	assert.True(t, f.mr.Exists(key))
	assert.Equal(t, testTTL, f.mr.TTL(key))

	second, err := f.cache.GetCatalogPrice(f.ctx, enum.ItemKindService, svc.ID)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, 1, f.backing.lookups)
	assert.Equal(t, "Haircut", second.Description)
	assert.True(t, second.UnitPrice.Equal(first.UnitPrice))
}

func TestCatalogCache_UpdateInvalidates(t *testing.T) {
	f := newCacheFixture(t)
	svc := f.haircut(t)
	key := priceKey(enum.ItemKindService, svc.ID)

	_, err := f.cache.GetCatalogPrice(f.ctx, enum.ItemKindService, svc.ID)
	require.NoError(t, err)
	require.True(t, f.mr.Exists(key))

	svc.Price = decimal.RequireFromString("90.00")
	require.NoError(t, f.cache.UpdateService(f.ctx, svc))
	assert.False(t, f.mr.Exists(key))

	price, err := f.cache.GetCatalogPrice(f.ctx, enum.ItemKindService, svc.ID)
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, "90", price.UnitPrice.String())
	assert.Equal(t, 2, f.backing.lookups)
}

func TestCatalogCache_ExpiredEntryIsReloaded(t *testing.T) {
	f := newCacheFixture(t)
	svc := f.haircut(t)

	_, err := f.cache.GetCatalogPrice(f.ctx, enum.ItemKindService, svc.ID)
	require.NoError(t, err)

	f.mr.FastForward(testTTL + time.Second)

	_, err = f.cache.GetCatalogPrice(f.ctx, enum.ItemKindService, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, f.backing.lookups)
}

func TestCatalogCache_UnreadableEntryFallsThrough(t *testing.T) {
	f := newCacheFixture(t)
	svc := f.haircut(t)
	key := priceKey(enum.ItemKindService, svc.ID)
	require.NoError(t, f.mr.Set(key, "not json"))

	price, err := f.cache.GetCatalogPrice(f.ctx, enum.ItemKindService, svc.ID)
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, "80", price.UnitPrice.String())
	assert.Equal(t, 1, f.backing.lookups)
}

func TestCatalogCache_UnknownItemIsNotCached(t *testing.T) {
	f := newCacheFixture(t)
	id := uuid.New()

	price, err := f.cache.GetCatalogPrice(f.ctx, enum.ItemKindProduct, id)
	require.NoError(t, err)
	assert.Nil(t, price)
	assert.False(t, f.mr.Exists(priceKey(enum.ItemKindProduct, id)))
}

func TestCatalogCache_RedisDownServesFromStore(t *testing.T) {
	f := newCacheFixture(t)
	svc := f.haircut(t)
	f.mr.Close()

	price, err := f.cache.GetCatalogPrice(f.ctx, enum.ItemKindService, svc.ID)
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, "80", price.UnitPrice.String())
}
