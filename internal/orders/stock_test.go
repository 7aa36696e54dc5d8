package orders

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/bilguunmgl/go-shop-orders/internal/catalog"
)

func sizedProduct() *catalog.Product {
	return &catalog.Product{
		ID:   "p1",
		Name: "Hoodie",
		// flat counter deliberately non-zero: it must never be consulted
		// while sizes exist
		Stock: 99,
		Sizes: []catalog.Size{
			{Label: "S", Stock: 2},
			{Label: "M", Stock: 0},
		},
	}
}

func TestReserveFlatStock(t *testing.T) {
	p := &catalog.Product{ID: "p2", Name: "Mug", Stock: 5}
	tgt, err := resolveReservation(p, CartItem{ProductID: "p2", Qty: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tgt.SizeLabel != "" || tgt.Remaining != 0 {
		t.Fatalf("unexpected target: %+v", tgt)
	}
}

func TestReserveFlatInsufficient(t *testing.T) {
	p := &catalog.Product{ID: "p2", Name: "Mug", Stock: 0}
	_, err := resolveReservation(p, CartItem{ProductID: "p2", Qty: 1})
	var is *InsufficientStockError
	if !errors.As(err, &is) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if is.Requested != 1 || is.Available != 0 {
		t.Fatalf("wrong figures: %+v", is)
	}
}

func TestReserveSizeEmptyVariant(t *testing.T) {
	_, err := resolveReservation(sizedProduct(), CartItem{ProductID: "p1", SelectedSize: "M", Qty: 1})
	var is *InsufficientStockError
	if !errors.As(err, &is) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if is.Size != "M" || is.Available != 0 {
		t.Fatalf("wrong figures: %+v", is)
	}
}

func TestReserveSizeDepletes(t *testing.T) {
	tgt, err := resolveReservation(sizedProduct(), CartItem{ProductID: "p1", SelectedSize: "S", Qty: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tgt.SizeLabel != "S" || tgt.Remaining != 0 {
		t.Fatalf("unexpected target: %+v", tgt)
	}
}

func TestReserveSizeRequired(t *testing.T) {
	_, err := resolveReservation(sizedProduct(), CartItem{ProductID: "p1", Qty: 1})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestReserveUnknownSize(t *testing.T) {
	_, err := resolveReservation(sizedProduct(), CartItem{ProductID: "p1", SelectedSize: "XL", Qty: 1})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Resource != "size" || nf.ID != "XL" {
		t.Fatalf("wrong not-found: %+v", nf)
	}
}

func TestReserveNeverTouchesFlatWhenSized(t *testing.T) {
	p := sizedProduct()
	tgt, err := resolveReservation(p, CartItem{ProductID: "p1", SelectedSize: "S", Qty: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tgt.SizeLabel == "" {
		t.Fatalf("flat counter chosen for a sized product: %+v", tgt)
	}
}

func TestRestoreToExistingSize(t *testing.T) {
	tgt := resolveRestore(sizedProduct(), "S", 2)
	if tgt.SizeLabel != "S" || tgt.Remaining != 4 {
		t.Fatalf("unexpected target: %+v", tgt)
	}
}

func TestRestoreToRemovedSizeFallsBackToFlat(t *testing.T) {
	tgt := resolveRestore(sizedProduct(), "XL", 3)
	if tgt.SizeLabel != "" || tgt.Remaining != 102 {
		t.Fatalf("unexpected target: %+v", tgt)
	}
}

func TestRestoreFlat(t *testing.T) {
	p := &catalog.Product{ID: "p2", Stock: 1}
	tgt := resolveRestore(p, "", 4)
	if tgt.SizeLabel != "" || tgt.Remaining != 5 {
		t.Fatalf("unexpected target: %+v", tgt)
	}
}

func TestValidatePlaceOrder(t *testing.T) {
	valid := PlaceOrderInput{
		Customer: Customer{
			UserID: "u1", Name: "Bat", Phone: "99112233",
			Email: "bat@example.com", Delivery: "Sukhbaatar district",
		},
		Items: []CartItem{{ProductID: uuid.NewString(), Qty: 1}},
	}
	if err := validatePlaceOrder(valid); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*PlaceOrderInput)
	}{
		{"missing user", func(in *PlaceOrderInput) { in.Customer.UserID = "" }},
		{"missing name", func(in *PlaceOrderInput) { in.Customer.Name = "" }},
		{"missing phone", func(in *PlaceOrderInput) { in.Customer.Phone = "" }},
		{"missing email", func(in *PlaceOrderInput) { in.Customer.Email = "" }},
		{"missing delivery", func(in *PlaceOrderInput) { in.Customer.Delivery = "" }},
		{"empty cart", func(in *PlaceOrderInput) { in.Items = nil }},
		{"zero qty", func(in *PlaceOrderInput) { in.Items = []CartItem{{ProductID: uuid.NewString(), Qty: 0}} }},
		{"missing product id", func(in *PlaceOrderInput) { in.Items = []CartItem{{Qty: 1}} }},
		{"malformed product id", func(in *PlaceOrderInput) { in.Items = []CartItem{{ProductID: "p1", Qty: 1}} }},
	}
	for _, tc := range cases {
		in := valid
		in.Items = append([]CartItem(nil), valid.Items...)
		tc.mutate(&in)
		var ve *ValidationError
		if err := validatePlaceOrder(in); !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPlaced, StatusConfirmed, StatusDelivered} {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if Status("SHIPPED").Valid() {
		t.Fatalf("unknown status accepted")
	}
}
