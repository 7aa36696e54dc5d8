package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/bilguunmgl/go-shop-orders/internal/orders"
	"github.com/bilguunmgl/go-shop-orders/internal/redisx"
)

// OrderEngine is the reservation engine surface; satisfied by *orders.Engine.
type OrderEngine interface {
	PlaceOrder(ctx context.Context, in orders.PlaceOrderInput) (*orders.Order, []orders.StockChange, error)
	CancelOrder(ctx context.Context, orderID string) (*orders.Order, []orders.StockChange, error)
}

// OrderStore is the query/status surface; satisfied by *orders.Repo.
type OrderStore interface {
	List(ctx context.Context, page, limit int) ([]orders.Order, int, error)
	ListByUser(ctx context.Context, userID string) ([]orders.Order, error)
	Get(ctx context.Context, orderID string) (*orders.Order, error)
	GetStatus(ctx context.Context, orderID string) (orders.Status, error)
	UpdateStatus(ctx context.Context, orderID string, status orders.Status) (*orders.Order, error)
}

type OrdersHandler struct {
	Engine   OrderEngine
	Store    OrderStore
	Producer Publisher
	Redis    *redis.Client // optional status cache; nil disables caching
	Service  string
}

type CreateOrderReq struct {
	Name       string            `json:"name"`
	Phone      string            `json:"phone"`
	Email      string            `json:"email"`
	Delivery   string            `json:"delivery"`
	Note       string            `json:"note"`
	TotalCents int64             `json:"total_cents"`
	Items      []orders.CartItem `json:"items"`
}

type ListOrdersResp struct {
	Orders      []orders.Order `json:"orders"`
	CurrentPage int            `json:"current_page"`
	TotalPages  int            `json:"total_pages"`
}

type UpdateStatusReq struct {
	Status orders.Status `json:"status"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/api/orders", h.createOrder)
	r.Get("/api/orders", h.listOrders)
	r.Get("/api/orders/{id}", h.getOrder)
	r.Get("/api/orders/{id}/status", h.getOrderStatus)
	r.Put("/api/orders/{id}/status", h.updateOrderStatus)
	r.Delete("/api/orders/{id}", h.deleteOrder)
	r.Get("/api/userorders", h.userOrders)
}

// createOrder runs the placement transaction, then emits the post-commit
// events. Identity is established upstream; the id in X-User-Id is trusted.
func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	userID := r.Header.Get("X-User-Id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, changes, err := h.Engine.PlaceOrder(ctx, orders.PlaceOrderInput{
		Customer: orders.Customer{
			UserID:   userID,
			Name:     req.Name,
			Phone:    req.Phone,
			Email:    req.Email,
			Delivery: req.Delivery,
			Note:     req.Note,
		},
		TotalCents: req.TotalCents,
		Items:      req.Items,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.cacheStatus(ctx, o.ID, o.Status)

	trace := middleware.GetReqID(r.Context())
	emitEvent(h.Producer, h.Service, trace, orders.TopicOrderCreated, orders.EventOrderCreated,
		o.ID, orders.OrderCreatedPayload{Order: o})
	emitEvent(h.Producer, h.Service, trace, orders.TopicStockChanged, orders.EventStockChanged,
		o.ID, orders.StockChangedPayload{OrderID: o.ID, Changes: changes})

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, changes, err := h.Engine.CancelOrder(ctx, orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if h.Redis != nil {
		_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID)).Err()
	}

	trace := middleware.GetReqID(r.Context())
	emitEvent(h.Producer, h.Service, trace, orders.TopicOrderCancelled, orders.EventOrderCancelled,
		o.ID, orders.OrderCancelledPayload{OrderID: o.ID})
	emitEvent(h.Producer, h.Service, trace, orders.TopicStockChanged, orders.EventStockChanged,
		o.ID, orders.StockChangedPayload{OrderID: o.ID, Changes: changes})

	writeJSON(w, http.StatusOK, map[string]string{"deleted": o.ID})
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, totalPages, err := h.Store.List(ctx, page, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if page < 1 {
		page = 1
	}
	writeJSON(w, http.StatusOK, ListOrdersResp{Orders: list, CurrentPage: page, TotalPages: totalPages})
}

func (h *OrdersHandler) userOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		userID = r.URL.Query().Get("user_id")
	}
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user id is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Store.ListByUser(ctx, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// getOrderStatus serves from the Redis cache when warm, falling back to the DB.
func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	status, err := h.Store.GetStatus(ctx, orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.cacheStatus(ctx, orderID, status)
	writeJSON(w, http.StatusOK, map[string]orders.Status{"status": status})
}

func (h *OrdersHandler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	var req UpdateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if !req.Status.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status: " + string(req.Status)})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Store.UpdateStatus(ctx, orderID, req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.cacheStatus(ctx, o.ID, o.Status)

	trace := middleware.GetReqID(r.Context())
	emitEvent(h.Producer, h.Service, trace, orders.TopicOrderUpdated, orders.EventOrderUpdated,
		o.ID, orders.OrderUpdatedPayload{Order: o})

	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID string, status orders.Status) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	val, _ := json.Marshal(map[string]orders.Status{"status": status})
	_ = h.Redis.Set(ctx, key, val, redisx.TTLStatusCache).Err()
}
