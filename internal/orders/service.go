package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/delmas-dev/bartab/internal/apperr"
	"github.com/delmas-dev/bartab/internal/catalog"
)

// StockDecrement asks the store to subtract a quantity from a drink's stock
// inside the same transaction that persists the order.
type StockDecrement struct {
	DrinkID  string
	Quantity int
}

// StockLevel reports a drink's stock after a decrement was applied.
type StockLevel struct {
	DrinkID  string
	Quantity decimal.Decimal
}

// Store persists orders and exposes the catalog reads the engine needs.
//
// SaveOrder must apply the order's current state (fields, item set, status)
// and the requested stock decrements as one atomic unit, guarded by the
// order's version: a stale version fails with a ConflictError, a decrement
// that would drive stock negative fails with a BusinessRuleError, and in
// either case nothing is persisted.
type Store interface {
	Drink(ctx context.Context, id string) (*catalog.Drink, error)
	Order(ctx context.Context, id string) (*Order, error)
	OrdersByStatus(ctx context.Context, st Status) ([]*Order, error)
	AddOrder(ctx context.Context, o *Order) error
	SaveOrder(ctx context.Context, o *Order, dec []StockDecrement) ([]StockLevel, error)
}

// Notifier is told about lifecycle events after they commit. Calls are
// fire-and-forget: implementations swallow their own failures and never
// influence the transition that triggered them.
type Notifier interface {
	NewOrder(o *Order)
	StatusUpdated(o *Order)
	OrderReady(o *Order)
	StockUpdated(drinkID string, quantity decimal.Decimal)
	OrderModified(o *Order, reason string)
}

// Service is the order lifecycle engine: state transitions, stock
// verification and the staff editing operations.
type Service struct {
	Store    Store
	Notifier Notifier
	Log      *zap.Logger

	// NotifyOnComplete controls whether completing an order emits a status
	// notification.
	NotifyOnComplete bool
}

// CreateOrder gates on a coarse stock check, snapshots the requested drinks
// (name and price at creation time) and persists the order as pending.
// Requested drink ids missing from the catalog are skipped rather than
// failing the whole order.
func (s *Service) CreateOrder(ctx context.Context, customerName string, items []ItemRequest) (*Order, error) {
	if strings.TrimSpace(customerName) == "" {
		return nil, apperr.Validation("customer name is required")
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	ok, err := verifyStock(ctx, s.Store, items)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.BusinessRule("insufficient stock for one or more items")
	}

	o := &Order{
		ID:           uuid.NewString(),
		CustomerName: customerName,
		CreatedAt:    time.Now().UTC(),
		Status:       StatusPending,
		Version:      1,
	}
	skipped, err := s.buildItems(ctx, o, items)
	if err != nil {
		return nil, err
	}
	// every requested drink vanished between the gate and the snapshot
	if len(o.Items) == 0 {
		return nil, apperr.BusinessRule("insufficient stock for one or more items")
	}
	o.RecalculateTotal()

	if err := s.Store.AddOrder(ctx, o); err != nil {
		return nil, err
	}
	if skipped > 0 {
		s.Log.Warn("order created with unknown drinks skipped",
			zap.String("order_id", o.ID), zap.Int("skipped", skipped))
	}
	s.Notifier.NewOrder(o)
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.Store.Order(ctx, id)
}

func (s *Service) GetOrdersByStatus(ctx context.Context, status string) ([]*Order, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}
	return s.Store.OrdersByStatus(ctx, st)
}

// AcceptOrder re-checks stock (it may have moved since creation), then
// commits the status change and the per-item stock decrements atomically.
func (s *Service) AcceptOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.Store.Order(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, StatusAccepted) {
		return nil, apperr.BusinessRule("only pending orders may be accepted")
	}

	ok, err := verifyStock(ctx, s.Store, itemRequests(o.Items))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.BusinessRule("insufficient stock to accept this order")
	}

	o.Accept()
	levels, err := s.Store.SaveOrder(ctx, o, decrements(o.Items))
	if err != nil {
		return nil, err
	}
	for _, lv := range levels {
		s.Notifier.StockUpdated(lv.DrinkID, lv.Quantity)
	}
	s.Notifier.StatusUpdated(o)
	return o, nil
}

func (s *Service) RejectOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.Store.Order(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, StatusRejected) {
		return nil, apperr.BusinessRule("only pending orders may be rejected")
	}
	o.Reject()
	if _, err := s.Store.SaveOrder(ctx, o, nil); err != nil {
		return nil, err
	}
	s.Notifier.StatusUpdated(o)
	return o, nil
}

func (s *Service) MarkOrderReady(ctx context.Context, id string) (*Order, error) {
	o, err := s.Store.Order(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, StatusReady) {
		return nil, apperr.BusinessRule("only accepted orders may be marked ready")
	}
	o.MarkReady()
	if _, err := s.Store.SaveOrder(ctx, o, nil); err != nil {
		return nil, err
	}
	s.Notifier.OrderReady(o)
	return o, nil
}

func (s *Service) CompleteOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.Store.Order(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, StatusCompleted) {
		return nil, apperr.BusinessRule("only ready orders may be completed")
	}
	o.Complete()
	if _, err := s.Store.SaveOrder(ctx, o, nil); err != nil {
		return nil, err
	}
	if s.NotifyOnComplete {
		s.Notifier.StatusUpdated(o)
	}
	return o, nil
}

// CheckStockAvailability is the coarse gate: true only if every requested
// drink exists and covers the requested quantity.
func (s *Service) CheckStockAvailability(ctx context.Context, items []ItemRequest) (bool, error) {
	return verifyStock(ctx, s.Store, items)
}

// CheckOrderStockDetailed runs a fresh, exhaustive per-item check. The result
// is never cached: stock can change between calls.
func (s *Service) CheckOrderStockDetailed(ctx context.Context, orderID string) (*StockCheckResult, error) {
	o, err := s.Store.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return checkOrderStock(ctx, s.Store, o)
}

// EditOrder replaces the whole item set with fresh catalog snapshots. Status
// and stock are untouched; the modification is audited on the order.
func (s *Service) EditOrder(ctx context.Context, orderID string, newItems []ItemRequest, reason string) (*Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperr.Validation("a reason must be provided for the modification")
	}
	if err := validateItems(newItems); err != nil {
		return nil, err
	}

	o, err := s.Store.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.CanBeEdited() {
		return nil, apperr.BusinessRule("only pending orders may be edited")
	}

	ok, err := verifyStock(ctx, s.Store, newItems)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.BusinessRule("insufficient stock for the new items")
	}

	o.Items = nil
	skipped, err := s.buildItems(ctx, o, newItems)
	if err != nil {
		return nil, err
	}
	if len(o.Items) == 0 {
		return nil, apperr.BusinessRule("cannot remove all items from the order")
	}
	o.RecalculateTotal()
	o.MarkModified(reason)

	if _, err := s.Store.SaveOrder(ctx, o, nil); err != nil {
		return nil, err
	}
	if skipped > 0 {
		s.Log.Warn("order edited with unknown drinks skipped",
			zap.String("order_id", o.ID), zap.Int("skipped", skipped))
	}
	s.Notifier.OrderModified(o, reason)
	return o, nil
}

// AcceptPartialOrder drops the given line items, re-checks stock for what
// remains and then performs the full accept transition, stock decrements
// included.
func (s *Service) AcceptPartialOrder(ctx context.Context, orderID string, itemIDsToRemove []string, reason string) (*Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperr.Validation("a reason must be provided for the removals")
	}
	if len(itemIDsToRemove) == 0 {
		return nil, apperr.Validation("at least one item must be specified for removal")
	}

	o, err := s.Store.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.CanBeEdited() {
		return nil, apperr.BusinessRule("only pending orders may be edited")
	}

	remove := make(map[string]bool, len(itemIDsToRemove))
	for _, id := range itemIDsToRemove {
		remove[id] = true
	}
	kept := o.Items[:0:0]
	for _, it := range o.Items {
		if !remove[it.ID] {
			kept = append(kept, it)
		}
	}
	if len(kept) == 0 {
		return nil, apperr.BusinessRule("cannot remove all items from the order")
	}
	o.Items = kept

	ok, err := verifyStock(ctx, s.Store, itemRequests(o.Items))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.BusinessRule("insufficient stock even after removing the flagged items")
	}

	o.RecalculateTotal()
	o.MarkModified(reason)
	o.Accept()

	levels, err := s.Store.SaveOrder(ctx, o, decrements(o.Items))
	if err != nil {
		return nil, err
	}
	s.Notifier.OrderModified(o, reason)
	for _, lv := range levels {
		s.Notifier.StockUpdated(lv.DrinkID, lv.Quantity)
	}
	s.Notifier.StatusUpdated(o)
	return o, nil
}

// ModifyOrderQuantities adjusts quantities in place; a new quantity of zero
// or less removes the line item. Status and stock are untouched.
func (s *Service) ModifyOrderQuantities(ctx context.Context, orderID string, changes map[string]int, reason string) (*Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperr.Validation("a reason must be provided for the modifications")
	}
	if len(changes) == 0 {
		return nil, apperr.Validation("at least one quantity change must be specified")
	}

	o, err := s.Store.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.CanBeEdited() {
		return nil, apperr.BusinessRule("only pending orders may be edited")
	}

	changed := false
	kept := o.Items[:0:0]
	for _, it := range o.Items {
		newQty, ok := changes[it.ID]
		if !ok {
			kept = append(kept, it)
			continue
		}
		if newQty <= 0 {
			changed = true
			continue
		}
		if newQty != it.Quantity {
			it.Quantity = newQty
			changed = true
		}
		kept = append(kept, it)
	}
	if !changed {
		return nil, apperr.BusinessRule("no changes detected")
	}
	if len(kept) == 0 {
		return nil, apperr.BusinessRule("cannot remove all items from the order")
	}
	o.Items = kept

	ok, err := verifyStock(ctx, s.Store, itemRequests(o.Items))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.BusinessRule("insufficient stock for the new quantities")
	}

	o.RecalculateTotal()
	o.MarkModified(reason)

	if _, err := s.Store.SaveOrder(ctx, o, nil); err != nil {
		return nil, err
	}
	s.Notifier.OrderModified(o, reason)
	return o, nil
}

// GetOrderEditSuggestions previews remediations for an order's stock issues.
// Read-only; the order is not touched.
func (s *Service) GetOrderEditSuggestions(ctx context.Context, orderID string) (*EditSuggestions, error) {
	o, err := s.Store.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	check, err := checkOrderStock(ctx, s.Store, o)
	if err != nil {
		return nil, err
	}
	return BuildEditSuggestions(o, check), nil
}

// buildItems appends catalog snapshots for the requested items to the order,
// skipping drink ids that are not in the catalog. Returns the skipped count.
func (s *Service) buildItems(ctx context.Context, o *Order, items []ItemRequest) (int, error) {
	skipped := 0
	for _, req := range items {
		d, err := s.Store.Drink(ctx, req.DrinkID)
		if err != nil {
			var nf *apperr.NotFoundError
			if errors.As(err, &nf) {
				skipped++
				continue
			}
			return 0, err
		}
		o.Items = append(o.Items, OrderItem{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			DrinkID:   d.ID,
			DrinkName: d.Name,
			Quantity:  req.Quantity,
			UnitPrice: d.Price,
		})
	}
	return skipped, nil
}

func validateItems(items []ItemRequest) error {
	if len(items) == 0 {
		return apperr.Validation("the order must contain at least one item")
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return apperr.Validation("item quantities must be greater than zero")
		}
	}
	return nil
}

func itemRequests(items []OrderItem) []ItemRequest {
	out := make([]ItemRequest, 0, len(items))
	for _, it := range items {
		out = append(out, ItemRequest{DrinkID: it.DrinkID, Quantity: it.Quantity})
	}
	return out
}

func decrements(items []OrderItem) []StockDecrement {
	out := make([]StockDecrement, 0, len(items))
	for _, it := range items {
		out = append(out, StockDecrement{DrinkID: it.DrinkID, Quantity: it.Quantity})
	}
	return out
}
