package postgres

import (
	"context"

	"github.com/dwikikusuma/shoping-checkout/internal/catalog/app"
	"github.com/dwikikusuma/shoping-checkout/internal/catalog/domain"
	"github.com/dwikikusuma/shoping-checkout/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

const getProduct = `
SELECT id::text, name, price, created_at, updated_at
FROM products
WHERE id = $1`

// Get returns app.ErrNotFound for ids that are not UUIDs; no such row can
// exist in the products table.
func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return domain.Product{}, app.ErrNotFound
	}

	var p domain.Product
	err = r.pool.QueryRow(ctx, getProduct, productID).Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt)
	if postgres.IsNoRows(err) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}
