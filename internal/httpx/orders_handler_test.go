package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/bilguunmgl/go-shop-orders/internal/orders"
)

type fakeEngine struct {
	order   *orders.Order
	changes []orders.StockChange
	err     error

	gotInput  *orders.PlaceOrderInput
	gotCancel string
}

func (f *fakeEngine) PlaceOrder(ctx context.Context, in orders.PlaceOrderInput) (*orders.Order, []orders.StockChange, error) {
	f.gotInput = &in
	return f.order, f.changes, f.err
}

func (f *fakeEngine) CancelOrder(ctx context.Context, orderID string) (*orders.Order, []orders.StockChange, error) {
	f.gotCancel = orderID
	return f.order, f.changes, f.err
}

type fakeStore struct {
	orders     []orders.Order
	totalPages int
	order      *orders.Order
	status     orders.Status
	err        error

	gotPage, gotLimit int
	gotStatus         orders.Status
}

func (f *fakeStore) List(ctx context.Context, page, limit int) ([]orders.Order, int, error) {
	f.gotPage, f.gotLimit = page, limit
	return f.orders, f.totalPages, f.err
}
func (f *fakeStore) ListByUser(ctx context.Context, userID string) ([]orders.Order, error) {
	return f.orders, f.err
}
func (f *fakeStore) Get(ctx context.Context, orderID string) (*orders.Order, error) {
	return f.order, f.err
}
func (f *fakeStore) GetStatus(ctx context.Context, orderID string) (orders.Status, error) {
	return f.status, f.err
}
func (f *fakeStore) UpdateStatus(ctx context.Context, orderID string, status orders.Status) (*orders.Order, error) {
	f.gotStatus = status
	return f.order, f.err
}

type published struct {
	topic string
	key   []byte
	value []byte
}

type fakePublisher struct {
	msgs []published
}

func (f *fakePublisher) Publish(topic string, key, value []byte, headers ...kafkago.Header) {
	f.msgs = append(f.msgs, published{topic: topic, key: key, value: value})
}

func newOrdersApp(eng OrderEngine, store OrderStore) (*fakePublisher, http.Handler) {
	pub := &fakePublisher{}
	r := NewRouter()
	(&OrdersHandler{Engine: eng, Store: store, Producer: pub, Service: "test-api"}).Register(r)
	return pub, r
}

func validOrderBody() string {
	return `{
		"name": "Bat", "phone": "99112233", "email": "bat@example.com",
		"delivery": "Sukhbaatar district", "total_cents": 5000,
		"items": [{"product_id": "p1", "qty": 2, "price_cents": 2500}]
	}`
}

func TestCreateOrderSuccess(t *testing.T) {
	placed := &orders.Order{ID: "o1", Status: orders.StatusPlaced}
	eng := &fakeEngine{order: placed, changes: []orders.StockChange{{ProductID: "p1", Delta: -2, StockAfter: 3}}}
	pub, app := newOrdersApp(eng, &fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(validOrderBody()))
	req.Header.Set("X-User-Id", "user-1")
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if eng.gotInput == nil || eng.gotInput.Customer.UserID != "user-1" {
		t.Fatalf("user id not passed through: %+v", eng.gotInput)
	}
	if len(pub.msgs) != 2 {
		t.Fatalf("expected order.created + stock.changed, got %d events", len(pub.msgs))
	}
	if pub.msgs[0].topic != orders.TopicOrderCreated || pub.msgs[1].topic != orders.TopicStockChanged {
		t.Fatalf("unexpected topics: %s, %s", pub.msgs[0].topic, pub.msgs[1].topic)
	}
	var env orders.Envelope
	if err := json.Unmarshal(pub.msgs[0].value, &env); err != nil {
		t.Fatalf("envelope decode: %v", err)
	}
	if env.EventType != orders.EventOrderCreated || env.CorrelationID != "o1" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestCreateOrderValidationError(t *testing.T) {
	eng := &fakeEngine{err: &orders.ValidationError{Msg: "cart is empty"}}
	pub, app := newOrdersApp(eng, &fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"name":"Bat"}`))
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("no events expected on failure, got %d", len(pub.msgs))
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	eng := &fakeEngine{err: &orders.InsufficientStockError{
		ProductID: "p1", Size: "M", Requested: 2, Available: 1,
	}}
	_, app := newOrdersApp(eng, &fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(validOrderBody()))
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["requested"].(float64) != 2 || body["available"].(float64) != 1 {
		t.Fatalf("missing figures: %v", body)
	}
}

func TestCreateOrderInvalidJSON(t *testing.T) {
	_, app := newOrdersApp(&fakeEngine{}, &fakeStore{})
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{`))
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestDeleteOrderNotFound(t *testing.T) {
	eng := &fakeEngine{err: &orders.NotFoundError{Resource: "order", ID: "nope"}}
	pub, app := newOrdersApp(eng, &fakeStore{})

	req := httptest.NewRequest(http.MethodDelete, "/api/orders/nope", nil)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("no events expected, got %d", len(pub.msgs))
	}
}

func TestDeleteOrderEmitsCancellation(t *testing.T) {
	eng := &fakeEngine{
		order:   &orders.Order{ID: "o9"},
		changes: []orders.StockChange{{ProductID: "p1", Delta: 2, StockAfter: 5}},
	}
	pub, app := newOrdersApp(eng, &fakeStore{})

	req := httptest.NewRequest(http.MethodDelete, "/api/orders/o9", nil)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if eng.gotCancel != "o9" {
		t.Fatalf("cancel id = %q", eng.gotCancel)
	}
	if len(pub.msgs) != 2 || pub.msgs[0].topic != orders.TopicOrderCancelled {
		t.Fatalf("unexpected events: %+v", pub.msgs)
	}
}

func TestListOrdersPagination(t *testing.T) {
	store := &fakeStore{orders: []orders.Order{{ID: "o1"}}, totalPages: 3}
	_, app := newOrdersApp(&fakeEngine{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/orders?page=2&limit=5", nil)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if store.gotPage != 2 || store.gotLimit != 5 {
		t.Fatalf("params not passed: page=%d limit=%d", store.gotPage, store.gotLimit)
	}
	var resp ListOrdersResp
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CurrentPage != 2 || resp.TotalPages != 3 || len(resp.Orders) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUserOrdersRequiresID(t *testing.T) {
	_, app := newOrdersApp(&fakeEngine{}, &fakeStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/userorders", nil)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	pub, app := newOrdersApp(&fakeEngine{}, &fakeStore{})
	req := httptest.NewRequest(http.MethodPut, "/api/orders/o1/status", strings.NewReader(`{"status":"SHIPPED"}`))
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("no events expected, got %d", len(pub.msgs))
	}
}

func TestUpdateStatusEmitsOrderUpdated(t *testing.T) {
	store := &fakeStore{order: &orders.Order{ID: "o1", Status: orders.StatusConfirmed}}
	pub, app := newOrdersApp(&fakeEngine{}, store)

	req := httptest.NewRequest(http.MethodPut, "/api/orders/o1/status", strings.NewReader(`{"status":"CONFIRMED"}`))
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if store.gotStatus != orders.StatusConfirmed {
		t.Fatalf("status not passed: %q", store.gotStatus)
	}
	if len(pub.msgs) != 1 || pub.msgs[0].topic != orders.TopicOrderUpdated {
		t.Fatalf("unexpected events: %+v", pub.msgs)
	}
}

func TestTxConflictSurfacesAsTransient(t *testing.T) {
	eng := &fakeEngine{err: orders.ErrTxConflict}
	_, app := newOrdersApp(eng, &fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(validOrderBody()))
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
