package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/delmas-dev/bartab/internal/apperr"
)

// Store is the persistence contract for the drink catalog.
type Store interface {
	Drink(ctx context.Context, id string) (*Drink, error)
	Drinks(ctx context.Context) ([]*Drink, error)
	DrinksByCategory(ctx context.Context, c Category) ([]*Drink, error)
	AddDrink(ctx context.Context, d *Drink) error
	SaveDrink(ctx context.Context, d *Drink) error
	RemoveDrink(ctx context.Context, id string) error
}

// StockNotifier is told about stock-level changes coming from admin updates.
// Failures are the implementation's problem; calls never return errors.
type StockNotifier interface {
	StockUpdated(drinkID string, quantity decimal.Decimal)
}

// DrinkInput carries the admin-provided fields for create and update.
type DrinkInput struct {
	Name        string
	Quantity    decimal.Decimal
	Category    Category
	Description string
	Price       decimal.Decimal
}

type Service struct {
	Store    Store
	Notifier StockNotifier
	Log      *zap.Logger
}

func (s *Service) validate(in DrinkInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validation("drink name is required")
	}
	if !in.Quantity.IsPositive() {
		return apperr.Validation("drink quantity must be greater than zero")
	}
	if in.Price.IsNegative() {
		return apperr.Validation("drink price cannot be negative")
	}
	if !categories[in.Category] {
		return apperr.Validation("unknown drink category %q", in.Category)
	}
	return nil
}

func (s *Service) CreateDrink(ctx context.Context, in DrinkInput) (*Drink, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	d := &Drink{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Quantity:    in.Quantity,
		Category:    in.Category,
		Description: in.Description,
		Price:       in.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}
	if err := s.Store.AddDrink(ctx, d); err != nil {
		return nil, err
	}
	s.Log.Info("drink created", zap.String("drink_id", d.ID), zap.String("name", d.Name))
	return d, nil
}

func (s *Service) GetDrink(ctx context.Context, id string) (*Drink, error) {
	return s.Store.Drink(ctx, id)
}

func (s *Service) ListDrinks(ctx context.Context) ([]*Drink, error) {
	return s.Store.Drinks(ctx)
}

func (s *Service) ListDrinksByCategory(ctx context.Context, category string) ([]*Drink, error) {
	c, err := ParseCategory(category)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}
	return s.Store.DrinksByCategory(ctx, c)
}

// UpdateDrink replaces every admin-editable field. A quantity change is a
// restock (or correction) and is announced to the stock notifier.
func (s *Service) UpdateDrink(ctx context.Context, id string, in DrinkInput) (*Drink, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	d, err := s.Store.Drink(ctx, id)
	if err != nil {
		return nil, err
	}
	stockChanged := !d.Quantity.Equal(in.Quantity)
	d.Name = in.Name
	d.Quantity = in.Quantity
	d.Category = in.Category
	d.Description = in.Description
	d.Price = in.Price
	d.UpdatedAt = time.Now().UTC()
	if err := s.Store.SaveDrink(ctx, d); err != nil {
		return nil, err
	}
	if stockChanged {
		s.Notifier.StockUpdated(d.ID, d.Quantity)
	}
	return d, nil
}

// DeleteDrink removes the catalog entry unconditionally. Historical order
// items keep their name/price snapshot; detailed stock checks report the
// missing drink as out of stock.
func (s *Service) DeleteDrink(ctx context.Context, id string) error {
	if err := s.Store.RemoveDrink(ctx, id); err != nil {
		return err
	}
	s.Log.Info("drink deleted", zap.String("drink_id", id))
	return nil
}
