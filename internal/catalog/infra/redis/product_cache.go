package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/dwikikusuma/shoping-checkout/internal/catalog/app"
	"github.com/dwikikusuma/shoping-checkout/internal/catalog/domain"
	goredis "github.com/redis/go-redis/v9"
)

// CachedProductRepo is a read-through cache in front of another ProductRepo.
// Cache failures degrade to the underlying repo.
type CachedProductRepo struct {
	next app.ProductRepo
	rdb  goredis.Cmdable
	ttl  time.Duration
	log  *slog.Logger
}

func NewCachedProductRepo(next app.ProductRepo, rdb goredis.Cmdable, ttl time.Duration, log *slog.Logger) *CachedProductRepo {
	return &CachedProductRepo{next: next, rdb: rdb, ttl: ttl, log: log}
}

func productKey(id string) string {
	return "catalog:product:" + id
}

func (r *CachedProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	raw, err := r.rdb.Get(ctx, productKey(id)).Bytes()
	switch {
	case err == nil:
		var p domain.Product
		if err := json.Unmarshal(raw, &p); err == nil {
			return p, nil
		}
		r.log.Warn("product cache entry corrupt", slog.String("product_id", id))
	case !errors.Is(err, goredis.Nil):
		r.log.Warn("product cache read failed", slog.String("product_id", id), slog.Any("err", err))
	}

	p, err := r.next.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := r.rdb.Set(ctx, productKey(id), data, r.ttl).Err(); err != nil {
			r.log.Warn("product cache write failed", slog.String("product_id", id), slog.Any("err", err))
		}
	}
	return p, nil
}
