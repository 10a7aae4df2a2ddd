// Package memory keeps every checkout table in process memory behind one
// mutex. It satisfies the same repository ports as the postgres adapters,
// including their atomicity guarantees, and backs STORAGE=memory and tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	accountdomain "github.com/dwikikusuma/shoping-checkout/internal/account/domain"
	cartapp "github.com/dwikikusuma/shoping-checkout/internal/cart/app"
	cartdomain "github.com/dwikikusuma/shoping-checkout/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/shoping-checkout/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/shoping-checkout/internal/catalog/domain"
	orderapp "github.com/dwikikusuma/shoping-checkout/internal/order/app"
	orderdomain "github.com/dwikikusuma/shoping-checkout/internal/order/domain"
)

type lineKey struct {
	cartKey   string
	productID string
}

type DB struct {
	mu  sync.Mutex
	now func() time.Time

	products map[string]catalogdomain.Product
	users    map[string]accountdomain.User
	lines    map[lineKey]cartdomain.CartItem
	orders   map[string]orderdomain.Order

	orderFault error
}

func New() *DB {
	return &DB{
		now:      time.Now,
		products: make(map[string]catalogdomain.Product),
		users:    make(map[string]accountdomain.User),
		lines:    make(map[lineKey]cartdomain.CartItem),
		orders:   make(map[string]orderdomain.Order),
	}
}

func (db *DB) PutProduct(p catalogdomain.Product) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.products[p.ID] = p
}

func (db *DB) PutUser(u accountdomain.User) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users[u.ID] = u
}

// FailOrderWrites makes the next CreateOrderTx fail with err after staging
// its rows, so callers can observe that nothing was committed.
func (db *DB) FailOrderWrites(err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.orderFault = err
}

func (db *DB) Products() *ProductRepo { return &ProductRepo{db: db} }
func (db *DB) Users() *UserRepo       { return &UserRepo{db: db} }
func (db *DB) Carts() *CartRepo       { return &CartRepo{db: db} }
func (db *DB) Orders() *OrderRepo     { return &OrderRepo{db: db} }

type ProductRepo struct{ db *DB }

func (r *ProductRepo) Get(_ context.Context, id string) (catalogdomain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return catalogdomain.Product{}, catalogapp.ErrNotFound
	}
	return p, nil
}

type UserRepo struct{ db *DB }

func (r *UserRepo) GetUser(_ context.Context, id string) (accountdomain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return accountdomain.User{}, accountdomain.ErrNotFound
	}
	return u, nil
}

type CartRepo struct{ db *DB }

func (r *CartRepo) UpsertIncrement(_ context.Context, item cartdomain.CartItem) (cartdomain.CartItem, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := r.db.now().UTC()
	key := lineKey{item.CartKey, item.ProductID}
	current, ok := r.db.lines[key]
	if ok {
		if !current.CanAdd(item.Quantity) {
			return cartdomain.CartItem{}, false, cartapp.ErrInvalidQuantity
		}
		current.Quantity += item.Quantity
		current.UpdatedAt = now
		r.db.lines[key] = current
		return current, false, nil
	}

	item.CreatedAt, item.UpdatedAt = now, now
	r.db.lines[key] = item
	return item, true, nil
}

func (r *CartRepo) Get(_ context.Context, cartKey, productID string) (cartdomain.CartItem, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	item, ok := r.db.lines[lineKey{cartKey, productID}]
	if !ok {
		return cartdomain.CartItem{}, cartapp.ErrItemNotFound
	}
	return item, nil
}

func (r *CartRepo) UpdateQuantity(_ context.Context, cartKey, productID string, quantity int32) (cartdomain.CartItem, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := lineKey{cartKey, productID}
	item, ok := r.db.lines[key]
	if !ok {
		return cartdomain.CartItem{}, cartapp.ErrItemNotFound
	}
	item.Quantity = quantity
	item.UpdatedAt = r.db.now().UTC()
	r.db.lines[key] = item
	return item, nil
}

func (r *CartRepo) RemoveItem(_ context.Context, cartKey, productID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.lines, lineKey{cartKey, productID})
	return nil
}

func (r *CartRepo) List(_ context.Context, cartKey string) ([]cartdomain.CartItem, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.cartLines(cartKey), nil
}

func (r *CartRepo) Rekey(_ context.Context, fromKey, toKey string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	moving := r.db.cartLines(fromKey)
	for _, item := range moving {
		if existing, ok := r.db.lines[lineKey{toKey, item.ProductID}]; ok && !existing.CanAdd(item.Quantity) {
			return cartapp.ErrInvalidQuantity
		}
	}

	now := r.db.now().UTC()
	for _, item := range moving {
		delete(r.db.lines, lineKey{fromKey, item.ProductID})

		dst := lineKey{toKey, item.ProductID}
		if existing, ok := r.db.lines[dst]; ok {
			existing.Quantity += item.Quantity
			existing.UpdatedAt = now
			r.db.lines[dst] = existing
			continue
		}
		item.CartKey = toKey
		item.UpdatedAt = now
		r.db.lines[dst] = item
	}
	return nil
}

// cartLines must be called with mu held.
func (db *DB) cartLines(cartKey string) []cartdomain.CartItem {
	var items []cartdomain.CartItem
	for k, item := range db.lines {
		if k.cartKey == cartKey {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ProductID < items[j].ProductID
	})
	return items
}

type OrderRepo struct{ db *DB }

func (r *OrderRepo) CreateOrderTx(_ context.Context, order orderdomain.Order, release orderdomain.CartRelease) (orderdomain.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	staged := cloneOrder(order)
	if err := r.db.orderFault; err != nil {
		r.db.orderFault = nil
		return orderdomain.Order{}, err
	}

	r.db.orders[staged.ID] = staged
	now := r.db.now().UTC()
	for _, ln := range release.Lines {
		key := lineKey{release.CartKey, ln.ProductID}
		item, ok := r.db.lines[key]
		if !ok {
			continue
		}
		item.Quantity -= ln.Quantity
		if !item.Retained() {
			delete(r.db.lines, key)
			continue
		}
		item.UpdatedAt = now
		r.db.lines[key] = item
	}
	return cloneOrder(staged), nil
}

func (r *OrderRepo) Get(_ context.Context, id string) (orderdomain.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.orders[id]
	if !ok {
		return orderdomain.Order{}, orderapp.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *OrderRepo) ListByUser(_ context.Context, userID string) ([]orderdomain.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []orderdomain.Order
	for _, o := range r.db.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *OrderRepo) Update(_ context.Context, id string, fn func(o *orderdomain.Order) (bool, error)) (orderdomain.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.orders[id]
	if !ok {
		return orderdomain.Order{}, orderapp.ErrNotFound
	}

	o := cloneOrder(stored)
	changed, err := fn(&o)
	if err != nil {
		return orderdomain.Order{}, err
	}
	if changed {
		// Items are immutable once created.
		o.Items = stored.Items
		r.db.orders[id] = o
	}
	return cloneOrder(o), nil
}

func cloneOrder(o orderdomain.Order) orderdomain.Order {
	o.Items = slices.Clone(o.Items)
	return o
}
