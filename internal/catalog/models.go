package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Drink is a catalog entry. Quantity is the current stock level; it is only
// ever decremented by order acceptance and adjusted by admin updates.
type Drink struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Category    Category        `json:"category"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"-"`
}

type Category string

const (
	CategoryBeer      Category = "beer"
	CategorySpirits   Category = "spirits"
	CategoryCocktail  Category = "cocktail"
	CategoryWine      Category = "wine"
	CategoryChampagne Category = "champagne"
	CategoryCoffee    Category = "coffee"
	CategorySoda      Category = "soda"
	CategoryWater     Category = "water"
	CategoryJuice     Category = "juice"
)

var categories = map[Category]bool{
	CategoryBeer:      true,
	CategorySpirits:   true,
	CategoryCocktail:  true,
	CategoryWine:      true,
	CategoryChampagne: true,
	CategoryCoffee:    true,
	CategorySoda:      true,
	CategoryWater:     true,
	CategoryJuice:     true,
}

// Categories lists every known category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryBeer, CategorySpirits, CategoryCocktail, CategoryWine,
		CategoryChampagne, CategoryCoffee, CategorySoda, CategoryWater, CategoryJuice,
	}
}

// ParseCategory accepts category names case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !categories[c] {
		return "", fmt.Errorf("unknown drink category %q", s)
	}
	return c, nil
}
