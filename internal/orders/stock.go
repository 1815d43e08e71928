package orders

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/delmas-dev/bartab/internal/apperr"
	"github.com/delmas-dev/bartab/internal/catalog"
)

type IssueType string

const (
	IssueOutOfStock        IssueType = "out_of_stock"
	IssueInsufficientStock IssueType = "insufficient_stock"
)

// StockIssue describes one shortfall found by a detailed check.
type StockIssue struct {
	DrinkID           string          `json:"drink_id"`
	DrinkName         string          `json:"drink_name"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	Type              IssueType       `json:"type"`
}

// MissingQuantity is derived: max(0, requested-available), truncated.
func (i StockIssue) MissingQuantity() int {
	missing := i.RequestedQuantity.Sub(i.AvailableQuantity)
	if missing.IsNegative() {
		return 0
	}
	return int(missing.IntPart())
}

// StockCheckResult is transient: recomputed on every request, never cached,
// because stock moves between calls.
type StockCheckResult struct {
	IsFullyAvailable bool         `json:"is_fully_available"`
	Issues           []StockIssue `json:"issues"`
	CheckedAt        time.Time    `json:"checked_at"`
}

// drinkFinder is the slice of the store the verifier needs.
type drinkFinder interface {
	Drink(ctx context.Context, id string) (*catalog.Drink, error)
}

// verifyStock is the coarse check: false as soon as any requested drink is
// missing or short. Used as a cheap gate before creating or accepting.
func verifyStock(ctx context.Context, finder drinkFinder, items []ItemRequest) (bool, error) {
	for _, it := range items {
		d, err := finder.Drink(ctx, it.DrinkID)
		if err != nil {
			var nf *apperr.NotFoundError
			if errors.As(err, &nf) {
				return false, nil
			}
			return false, err
		}
		if d.Quantity.LessThan(decimal.NewFromInt(int64(it.Quantity))) {
			return false, nil
		}
	}
	return true, nil
}

// checkOrderStock is the detailed check: enumerates every item so staff get
// the full remediation picture, never short-circuiting.
func checkOrderStock(ctx context.Context, finder drinkFinder, o *Order) (*StockCheckResult, error) {
	result := &StockCheckResult{
		IsFullyAvailable: true,
		CheckedAt:        time.Now().UTC(),
	}

	for _, item := range o.Items {
		requested := decimal.NewFromInt(int64(item.Quantity))

		d, err := finder.Drink(ctx, item.DrinkID)
		if err != nil {
			var nf *apperr.NotFoundError
			if !errors.As(err, &nf) {
				return nil, err
			}
			// drink removed from the catalog
			result.Issues = append(result.Issues, StockIssue{
				DrinkID:           item.DrinkID,
				DrinkName:         item.DrinkName,
				RequestedQuantity: requested,
				AvailableQuantity: decimal.Zero,
				Type:              IssueOutOfStock,
			})
			result.IsFullyAvailable = false
			continue
		}

		switch {
		case d.Quantity.IsZero():
			result.Issues = append(result.Issues, StockIssue{
				DrinkID:           item.DrinkID,
				DrinkName:         item.DrinkName,
				RequestedQuantity: requested,
				AvailableQuantity: decimal.Zero,
				Type:              IssueOutOfStock,
			})
			result.IsFullyAvailable = false
		case d.Quantity.LessThan(requested):
			result.Issues = append(result.Issues, StockIssue{
				DrinkID:           item.DrinkID,
				DrinkName:         item.DrinkName,
				RequestedQuantity: requested,
				AvailableQuantity: d.Quantity,
				Type:              IssueInsufficientStock,
			})
			result.IsFullyAvailable = false
		}
	}

	return result, nil
}
