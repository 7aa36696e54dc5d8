package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bilguunmgl/go-shop-orders/internal/catalog"
	"github.com/bilguunmgl/go-shop-orders/internal/orders"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps the engine's error taxonomy onto HTTP statuses.
// Insufficient stock carries the available/requested figures for the client.
func writeDomainError(w http.ResponseWriter, err error) {
	var ve *orders.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error()})
		return
	}
	var nf *orders.NotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": nf.Error()})
		return
	}
	var is *orders.InsufficientStockError
	if errors.As(err, &is) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      is.Error(),
			"product_id": is.ProductID,
			"size":       is.Size,
			"requested":  is.Requested,
			"available":  is.Available,
		})
		return
	}
	if errors.Is(err, orders.ErrTxConflict) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "temporary contention, retry"})
		return
	}
	if errors.Is(err, catalog.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
