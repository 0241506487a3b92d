package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"go.uber.org/zap"
)

const catalogPricePrefix = "salon:catalog:price:"

// catalogCache serves GetCatalogPrice from redis and drops the cached entry
// whenever a catalog row is updated. Every other call goes straight through.
type catalogCache struct {
	domainRepo.CatalogRepository
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

// NewCatalogCache wraps next with a redis read-through cache for catalog prices
func NewCatalogCache(next domainRepo.CatalogRepository, rdb *redis.Client, ttl time.Duration, log *zap.Logger) domainRepo.CatalogRepository {
	return &catalogCache{CatalogRepository: next, rdb: rdb, ttl: ttl, log: log}
}

func priceKey(kind enum.ItemKind, id uuid.UUID) string {
	return fmt.Sprintf("%s%s:%s", catalogPricePrefix, kind, id)
}

func (c *catalogCache) GetCatalogPrice(ctx context.Context, kind enum.ItemKind, id uuid.UUID) (*entity.CatalogPrice, error) {
	key := priceKey(kind, id)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var price entity.CatalogPrice
		if jsonErr := json.Unmarshal(raw, &price); jsonErr == nil {
			return &price, nil
		}
		c.log.Warn("discarding unreadable catalog cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	price, err := c.CatalogRepository.GetCatalogPrice(ctx, kind, id)
	if err != nil || price == nil {
		return price, err
	}

	if data, jsonErr := json.Marshal(price); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
			c.log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(setErr))
		}
	}
	return price, nil
}

func (c *catalogCache) invalidate(ctx context.Context, kind enum.ItemKind, id uuid.UUID) {
	if err := c.rdb.Del(ctx, priceKey(kind, id)).Err(); err != nil {
		c.log.Warn("catalog cache invalidation failed", zap.Stringer("id", id), zap.Error(err))
	}
}

func (c *catalogCache) UpdateService(ctx context.Context, service *entity.Service) error {
	if err := c.CatalogRepository.UpdateService(ctx, service); err != nil {
		return err
	}
	c.invalidate(ctx, enum.ItemKindService, service.ID)
	return nil
}

func (c *catalogCache) UpdateProduct(ctx context.Context, product *entity.Product) error {
	if err := c.CatalogRepository.UpdateProduct(ctx, product); err != nil {
		return err
	}
	c.invalidate(ctx, enum.ItemKindProduct, product.ID)
	return nil
}

func (c *catalogCache) UpdatePackage(ctx context.Context, pkg *entity.Package) error {
	if err := c.CatalogRepository.UpdatePackage(ctx, pkg); err != nil {
		return err
	}
	c.invalidate(ctx, enum.ItemKindPackage, pkg.ID)
	return nil
}
