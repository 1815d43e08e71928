// Package memstore is an in-memory implementation of the catalog and order
// stores. It backs the package tests and `ENVIRONMENT=memory` local runs,
// with the same version-check and all-or-nothing semantics as the Postgres
// repos.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/delmas-dev/bartab/internal/apperr"
	"github.com/delmas-dev/bartab/internal/catalog"
	"github.com/delmas-dev/bartab/internal/orders"
)

type Store struct {
	mu     sync.RWMutex
	drinks map[string]catalog.Drink
	orders map[string]orders.Order
}

func New() *Store {
	return &Store{
		drinks: make(map[string]catalog.Drink),
		orders: make(map[string]orders.Order),
	}
}

// ---- catalog.Store ----

func (s *Store) Drink(ctx context.Context, id string) (*catalog.Drink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drinks[id]
	if !ok {
		return nil, apperr.NotFound("drink", id)
	}
	return &d, nil
}

func (s *Store) Drinks(ctx context.Context) ([]*catalog.Drink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*catalog.Drink, 0, len(s.drinks))
	for _, d := range s.drinks {
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) DrinksByCategory(ctx context.Context, c catalog.Category) ([]*catalog.Drink, error) {
	all, _ := s.Drinks(ctx)
	out := all[:0:0]
	for _, d := range all {
		if d.Category == c {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) AddDrink(ctx context.Context, d *catalog.Drink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drinks[d.ID] = *d
	return nil
}

func (s *Store) SaveDrink(ctx context.Context, d *catalog.Drink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.drinks[d.ID]
	if !ok {
		return apperr.NotFound("drink", d.ID)
	}
	if cur.Version != d.Version {
		return apperr.Conflict("drink", d.ID)
	}
	d.Version++
	s.drinks[d.ID] = *d
	return nil
}

func (s *Store) RemoveDrink(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drinks[id]; !ok {
		return apperr.NotFound("drink", id)
	}
	delete(s.drinks, id)
	return nil
}

// ---- orders.Store ----

func (s *Store) Order(ctx context.Context, id string) (*orders.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, apperr.NotFound("order", id)
	}
	return copyOrder(o), nil
}

func (s *Store) OrdersByStatus(ctx context.Context, st orders.Status) ([]*orders.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*orders.Order
	for _, o := range s.orders {
		if o.Status == st {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) AddOrder(ctx context.Context, o *orders.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = *copyOrder(*o)
	return nil
}

// SaveOrder mimics the transactional repo: the version must match, every
// decrement must be covered, and on any failure nothing changes.
func (s *Store) SaveOrder(ctx context.Context, o *orders.Order, dec []orders.StockDecrement) ([]orders.StockLevel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.orders[o.ID]
	if !ok {
		return nil, apperr.NotFound("order", o.ID)
	}
	if cur.Version != o.Version {
		return nil, apperr.Conflict("order", o.ID)
	}

	// validate every decrement before touching anything
	for _, d := range dec {
		drink, ok := s.drinks[d.DrinkID]
		if !ok {
			continue
		}
		if drink.Quantity.LessThan(decimal.NewFromInt(int64(d.Quantity))) {
			return nil, apperr.BusinessRule("insufficient stock to accept this order")
		}
	}

	var levels []orders.StockLevel
	for _, d := range dec {
		drink, ok := s.drinks[d.DrinkID]
		if !ok {
			continue
		}
		drink.Quantity = drink.Quantity.Sub(decimal.NewFromInt(int64(d.Quantity)))
		drink.Version++
		s.drinks[d.DrinkID] = drink
		levels = append(levels, orders.StockLevel{DrinkID: d.DrinkID, Quantity: drink.Quantity})
	}

	o.Version++
	s.orders[o.ID] = *copyOrder(*o)
	return levels, nil
}

func copyOrder(o orders.Order) *orders.Order {
	c := o
	c.Items = append([]orders.OrderItem(nil), o.Items...)
	return &c
}
