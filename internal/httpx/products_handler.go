package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/bilguunmgl/go-shop-orders/internal/catalog"
	"github.com/bilguunmgl/go-shop-orders/internal/orders"
	"github.com/bilguunmgl/go-shop-orders/internal/redisx"
)

// Catalog is the product surface; satisfied by *catalog.Repo. The CRUD half is
// the catalog-editing collaborator, outside the reservation engine.
type Catalog interface {
	List(ctx context.Context, params catalog.ListParams) ([]catalog.Product, int, error)
	Homepage(ctx context.Context) ([]catalog.Product, error)
	Saled(ctx context.Context) ([]catalog.Product, error)
	GetByID(ctx context.Context, id string) (*catalog.Product, error)
	Create(ctx context.Context, in catalog.ProductInput) (*catalog.Product, error)
	Update(ctx context.Context, id string, in catalog.ProductInput) (*catalog.Product, error)
	Delete(ctx context.Context, id string) error
}

type ProductsHandler struct {
	Catalog  Catalog
	Producer Publisher
	Redis    *redis.Client // optional homepage cache; nil disables caching
	Service  string
}

type ListProductsResp struct {
	Products    []catalog.Product `json:"products"`
	CurrentPage int               `json:"current_page"`
	TotalPages  int               `json:"total_pages"`
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Post("/api/products", h.createProduct)
	r.Get("/api/products", h.listProducts)
	r.Get("/api/products/homepage", h.homepageProducts)
	r.Get("/api/products/saled", h.saledProducts)
	r.Get("/api/products/{id}", h.getProduct)
	r.Put("/api/products/{id}", h.updateProduct)
	r.Delete("/api/products/{id}", h.deleteProduct)
}

func (h *ProductsHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	params := catalog.ListParams{
		Page:          page,
		Limit:         limit,
		CategoryID:    q.Get("category_id"),
		SubCategoryID: q.Get("sub_category_id"),
		Search:        q.Get("search"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, totalPages, err := h.Catalog.List(ctx, params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if page < 1 {
		page = 1
	}
	writeJSON(w, http.StatusOK, ListProductsResp{Products: list, CurrentPage: page, TotalPages: totalPages})
}

func (h *ProductsHandler) homepageProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, redisx.KeyHomepageProducts).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	list, err := h.Catalog.Homepage(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if h.Redis != nil {
		if b, err := json.Marshal(list); err == nil {
			_ = h.Redis.Set(ctx, redisx.KeyHomepageProducts, b, redisx.TTLHomepageCache).Err()
		}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ProductsHandler) saledProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Catalog.Saled(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ProductsHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if in.Name == "" || in.CategoryID == "" || in.PriceCents < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, category and price are required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Catalog.Create(ctx, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.invalidateHomepage(ctx)
	emitEvent(h.Producer, h.Service, middleware.GetReqID(r.Context()),
		orders.TopicProductCreated, orders.EventProductCreated, p.ID,
		orders.ProductEventPayload{ProductID: p.ID})

	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Catalog.Update(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.invalidateHomepage(ctx)
	emitEvent(h.Producer, h.Service, middleware.GetReqID(r.Context()),
		orders.TopicProductUpdated, orders.EventProductUpdated, p.ID,
		orders.ProductEventPayload{ProductID: p.ID})

	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.Delete(ctx, id); err != nil {
		writeDomainError(w, err)
		return
	}

	h.invalidateHomepage(ctx)
	emitEvent(h.Producer, h.Service, middleware.GetReqID(r.Context()),
		orders.TopicProductDeleted, orders.EventProductDeleted, id,
		orders.ProductEventPayload{ProductID: id})

	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (h *ProductsHandler) invalidateHomepage(ctx context.Context) {
	if h.Redis == nil {
		return
	}
	_ = h.Redis.Del(ctx, redisx.KeyHomepageProducts).Err()
}
