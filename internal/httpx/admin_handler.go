package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/delmas-dev/bartab/internal/catalog"
	"github.com/delmas-dev/bartab/internal/orders"
	"github.com/delmas-dev/bartab/internal/redisx"
)

// AdminHandler serves the staff surface: drink catalog management and the
// order review/edit workflow.
type AdminHandler struct {
	Orders  *orders.Service
	Catalog *catalog.Service
	Redis   *redis.Client
}

type DrinkReq struct {
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

type EditOrderReq struct {
	Items  []orders.ItemRequest `json:"items"`
	Reason string               `json:"reason"`
}

type AcceptPartialReq struct {
	ItemIDsToRemove []string `json:"item_ids_to_remove"`
	Reason          string   `json:"reason"`
}

type ModifyQuantitiesReq struct {
	QuantityChanges map[string]int `json:"quantity_changes"`
	Reason          string         `json:"reason"`
}

type StockCheckReq struct {
	Items []orders.ItemRequest `json:"items"`
}

func (h *AdminHandler) Register(r *chi.Mux) {
	r.Route("/admin/drinks", func(r chi.Router) {
		r.Post("/", h.createDrink)
		r.Get("/", h.listDrinks)
		r.Get("/{id}", h.getDrink)
		r.Put("/{id}", h.updateDrink)
		r.Delete("/{id}", h.deleteDrink)
	})
	r.Route("/admin/orders", func(r chi.Router) {
		r.Post("/stock-check", h.checkStock)
		r.Get("/status/{status}", h.listOrdersByStatus)
		r.Get("/{id}", h.getOrder)
		r.Post("/{id}/accept", h.transition(h.Orders.AcceptOrder))
		r.Post("/{id}/reject", h.transition(h.Orders.RejectOrder))
		r.Post("/{id}/ready", h.transition(h.Orders.MarkOrderReady))
		r.Post("/{id}/complete", h.transition(h.Orders.CompleteOrder))
		r.Get("/{id}/stock-check", h.checkOrderStock)
		r.Get("/{id}/suggestions", h.getEditSuggestions)
		r.Put("/{id}/edit", h.editOrder)
		r.Post("/{id}/accept-partial", h.acceptPartial)
		r.Put("/{id}/modify-quantities", h.modifyQuantities)
	})
}

// ---- drinks ----

func (h *AdminHandler) decodeDrink(w http.ResponseWriter, r *http.Request) (catalog.DrinkInput, bool) {
	var req DrinkReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return catalog.DrinkInput{}, false
	}
	return catalog.DrinkInput{
		Name:        req.Name,
		Quantity:    req.Quantity,
		Category:    catalog.Category(req.Category),
		Description: req.Description,
		Price:       req.Price,
	}, true
}

func (h *AdminHandler) createDrink(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeDrink(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	d, err := h.Catalog.CreateDrink(ctx, in)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.invalidateMenu(ctx)
	writeJSON(w, http.StatusCreated, d)
}

func (h *AdminHandler) listDrinks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ds, err := h.Catalog.ListDrinks(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	if ds == nil {
		ds = []*catalog.Drink{}
	}
	writeJSON(w, http.StatusOK, ds)
}

func (h *AdminHandler) getDrink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	d, err := h.Catalog.GetDrink(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *AdminHandler) updateDrink(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeDrink(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	d, err := h.Catalog.UpdateDrink(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.invalidateMenu(ctx)
	writeJSON(w, http.StatusOK, d)
}

func (h *AdminHandler) deleteDrink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Catalog.DeleteDrink(ctx, chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	h.invalidateMenu(ctx)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) invalidateMenu(ctx context.Context) {
	if h.Redis == nil {
		return
	}
	keys := []string{redisx.KeyMenu}
	for _, c := range catalog.Categories() {
		keys = append(keys, fmt.Sprintf(redisx.KeyMenuCategory, string(c)))
	}
	_ = h.Redis.Del(ctx, keys...).Err()
}

// ---- orders ----

func (h *AdminHandler) listOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	os, err := h.Orders.GetOrdersByStatus(ctx, chi.URLParam(r, "status"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if os == nil {
		os = []*orders.Order{}
	}
	writeJSON(w, http.StatusOK, os)
}

func (h *AdminHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Orders.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// transition wraps the four plain lifecycle transitions, which share their
// request/response shape.
func (h *AdminHandler) transition(op func(ctx context.Context, id string) (*orders.Order, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		o, err := op(ctx, chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, err)
			return
		}
		cacheOrder(ctx, h.Redis, o)
		writeJSON(w, http.StatusOK, o)
	}
}

func (h *AdminHandler) checkStock(w http.ResponseWriter, r *http.Request) {
	var req StockCheckReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ok, err := h.Orders.CheckStockAvailability(ctx, req.Items)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": ok})
}

func (h *AdminHandler) checkOrderStock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	res, err := h.Orders.CheckOrderStockDetailed(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) getEditSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	res, err := h.Orders.GetOrderEditSuggestions(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) editOrder(w http.ResponseWriter, r *http.Request) {
	var req EditOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.EditOrder(ctx, chi.URLParam(r, "id"), req.Items, req.Reason)
	if err != nil {
		writeErr(w, err)
		return
	}
	cacheOrder(ctx, h.Redis, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *AdminHandler) acceptPartial(w http.ResponseWriter, r *http.Request) {
	var req AcceptPartialReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.AcceptPartialOrder(ctx, chi.URLParam(r, "id"), req.ItemIDsToRemove, req.Reason)
	if err != nil {
		writeErr(w, err)
		return
	}
	cacheOrder(ctx, h.Redis, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *AdminHandler) modifyQuantities(w http.ResponseWriter, r *http.Request) {
	var req ModifyQuantitiesReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.ModifyOrderQuantities(ctx, chi.URLParam(r, "id"), req.QuantityChanges, req.Reason)
	if err != nil {
		writeErr(w, err)
		return
	}
	cacheOrder(ctx, h.Redis, o)
	writeJSON(w, http.StatusOK, o)
}
