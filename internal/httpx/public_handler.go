package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/delmas-dev/bartab/internal/apperr"
	"github.com/delmas-dev/bartab/internal/catalog"
	"github.com/delmas-dev/bartab/internal/orders"
	"github.com/delmas-dev/bartab/internal/redisx"
)

// PublicHandler serves the customer-facing surface: menu browsing, order
// placement and order tracking.
type PublicHandler struct {
	Orders  *orders.Service
	Catalog *catalog.Service
	Redis   *redis.Client
}

type CreateOrderReq struct {
	CustomerName string               `json:"customer_name"`
	Items        []orders.ItemRequest `json:"items"`
}

func (h *PublicHandler) Register(r *chi.Mux) {
	r.Get("/menu", h.getMenu)
	r.Get("/menu/{category}", h.getMenuByCategory)
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
}

func (h *PublicHandler) getMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, redisx.KeyMenu).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	ds, err := h.Catalog.ListDrinks(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	if ds == nil {
		ds = []*catalog.Drink{}
	}
	b, _ := json.Marshal(ds)
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, redisx.KeyMenu, b, redisx.TTLMenuCache).Err()
	}
	writeJSON(w, http.StatusOK, json.RawMessage(b))
}

func (h *PublicHandler) getMenuByCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	raw := chi.URLParam(r, "category")
	c, err := catalog.ParseCategory(raw)
	if err != nil {
		// the public menu treats an unknown category as a missing page
		writeErr(w, apperr.NotFound("category", raw))
		return
	}
	category := string(c)
	key := fmt.Sprintf(redisx.KeyMenuCategory, category)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	ds, err := h.Catalog.ListDrinksByCategory(ctx, category)
	if err != nil {
		writeErr(w, err)
		return
	}
	if ds == nil {
		ds = []*catalog.Drink{}
	}
	b, _ := json.Marshal(ds)
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, b, redisx.TTLMenuCache).Err()
	}
	writeJSON(w, http.StatusOK, json.RawMessage(b))
}

func (h *PublicHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.CreateOrder(ctx, req.CustomerName, req.Items)
	if err != nil {
		writeErr(w, err)
		return
	}
	cacheOrder(ctx, h.Redis, o)
	writeJSON(w, http.StatusCreated, o)
}

func (h *PublicHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache fast-path, then store
	key := fmt.Sprintf(redisx.KeyOrder, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	o, err := h.Orders.GetOrder(ctx, orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	cacheOrder(ctx, h.Redis, o)
	writeJSON(w, http.StatusOK, o)
}

func cacheOrder(ctx context.Context, rdb *redis.Client, o *orders.Order) {
	if rdb == nil {
		return
	}
	b, _ := json.Marshal(o)
	_ = rdb.Set(ctx, fmt.Sprintf(redisx.KeyOrder, o.ID), b, redisx.TTLOrderCache).Err()
}
