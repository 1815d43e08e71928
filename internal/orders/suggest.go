package orders

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EditSuggestion is one remediation staff can apply to resolve a stock issue.
type EditSuggestion struct {
	Description string `json:"description"`
	ActionID    string `json:"action_id"`
	Kind        string `json:"kind"` // "remove" or "reduce"
}

// EditSuggestions is the read-only preview returned to the barman dashboard.
// It never mutates the order.
type EditSuggestions struct {
	IsFullyAvailable  bool             `json:"is_fully_available"`
	Issues            []StockIssue     `json:"issues"`
	Suggestions       []EditSuggestion `json:"suggestions"`
	CurrentTotal      decimal.Decimal  `json:"current_total"`
	EstimatedNewTotal decimal.Decimal  `json:"estimated_new_total"`
}

// BuildEditSuggestions derives remediation suggestions from a detailed stock
// check. Out-of-stock items can only be removed; short items can be reduced
// to the available quantity or removed entirely.
func BuildEditSuggestions(o *Order, check *StockCheckResult) *EditSuggestions {
	var suggestions []EditSuggestion

	for _, issue := range check.Issues {
		switch issue.Type {
		case IssueOutOfStock:
			suggestions = append(suggestions, EditSuggestion{
				Description: fmt.Sprintf("Remove %s entirely (out of stock)", issue.DrinkName),
				ActionID:    fmt.Sprintf("remove-item-%s", issue.DrinkID),
				Kind:        "remove",
			})
		case IssueInsufficientStock:
			suggestions = append(suggestions, EditSuggestion{
				Description: fmt.Sprintf("Reduce %s from %s to %s", issue.DrinkName,
					issue.RequestedQuantity.String(), issue.AvailableQuantity.String()),
				ActionID: fmt.Sprintf("reduce-quantity-%s-%s", issue.DrinkID, issue.AvailableQuantity.String()),
				Kind:     "reduce",
			})
			suggestions = append(suggestions, EditSuggestion{
				Description: fmt.Sprintf("Remove %s entirely", issue.DrinkName),
				ActionID:    fmt.Sprintf("remove-item-%s", issue.DrinkID),
				Kind:        "remove",
			})
		}
	}

	return &EditSuggestions{
		IsFullyAvailable:  check.IsFullyAvailable,
		Issues:            check.Issues,
		Suggestions:       suggestions,
		CurrentTotal:      o.TotalAmount,
		EstimatedNewTotal: estimateNewTotal(o, check.Issues),
	}
}

// estimateNewTotal previews the total if every issue were resolved the cheap
// way: short items counted at the available quantity, out-of-stock items
// dropped, clean items kept as they are.
func estimateNewTotal(o *Order, issues []StockIssue) decimal.Decimal {
	byDrink := make(map[string]StockIssue, len(issues))
	for _, issue := range issues {
		byDrink[issue.DrinkID] = issue
	}

	total := decimal.Zero
	for _, item := range o.Items {
		issue, ok := byDrink[item.DrinkID]
		if !ok {
			total = total.Add(item.TotalPrice())
			continue
		}
		if issue.Type == IssueInsufficientStock {
			total = total.Add(item.UnitPrice.Mul(issue.AvailableQuantity))
		}
		// out of stock contributes nothing
	}
	return total
}
