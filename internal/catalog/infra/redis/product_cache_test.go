package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dwikikusuma/shoping-checkout/internal/catalog/domain"
	"github.com/dwikikusuma/shoping-checkout/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	goredis.Cmdable
	data    map[string]string
	readErr error
}

func (f *fakeCache) Get(_ context.Context, key string) *goredis.StringCmd {
	if f.readErr != nil {
		return goredis.NewStringResult("", f.readErr)
	}
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) *goredis.StatusCmd {
	f.data[key] = string(value.([]byte))
	return goredis.NewStatusResult("OK", nil)
}

type countingRepo struct {
	calls int
	p     domain.Product
}

func (r *countingRepo) Get(_ context.Context, id string) (domain.Product, error) {
	r.calls++
	if id != r.p.ID {
		return domain.Product{}, errors.New("unknown")
	}
	return r.p, nil
}

func TestCachedProductRepoReadThrough(t *testing.T) {
	ctx := context.Background()
	next := &countingRepo{p: domain.Product{ID: "p1", Name: "Mug", Price: decimal.RequireFromString("7.25")}}
	cache := &fakeCache{data: map[string]string{}}
	repo := NewCachedProductRepo(next, cache, time.Minute, logger.Discard())

	first, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	second, err := repo.Get(ctx, "p1")
	require.NoError(t, err)

	require.Equal(t, 1, next.calls)
	require.Equal(t, "Mug", second.Name)
	require.True(t, first.Price.Equal(second.Price))
	require.Contains(t, cache.data, "catalog:product:p1")
}

func TestCachedProductRepoDegradesOnCacheFailure(t *testing.T) {
	next := &countingRepo{p: domain.Product{ID: "p1", Name: "Mug"}}
	cache := &fakeCache{data: map[string]string{}, readErr: errors.New("connection refused")}
	repo := NewCachedProductRepo(next, cache, time.Minute, logger.Discard())

	p, err := repo.Get(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "Mug", p.Name)
	require.Equal(t, 1, next.calls)
}

func TestCachedProductRepoDoesNotCacheErrors(t *testing.T) {
	next := &countingRepo{p: domain.Product{ID: "p1"}}
	cache := &fakeCache{data: map[string]string{}}
	repo := NewCachedProductRepo(next, cache, time.Minute, logger.Discard())

	_, err := repo.Get(context.Background(), "p2")
	require.Error(t, err)
	require.Empty(t, cache.data)
}
