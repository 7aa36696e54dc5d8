package orders

import "time"

// CartItem is the client-supplied line item of a checkout request.
// Price and sale are display/audit snapshots persisted verbatim; stock math
// never trusts them.
type CartItem struct {
	ProductID    string `json:"product_id"`
	SelectedSize string `json:"selected_size,omitempty"`
	Qty          int    `json:"qty"`
	PriceCents   int64  `json:"price_cents"`
	SalePercent  int    `json:"sale_percent"`
}

// Item is the immutable snapshot persisted with the order.
type Item struct {
	ID           string `json:"id"`
	OrderID      string `json:"order_id"`
	ProductID    string `json:"product_id"`
	SelectedSize string `json:"selected_size,omitempty"`
	Qty          int    `json:"qty"`
	PriceCents   int64  `json:"price_cents"`
	SalePercent  int    `json:"sale_percent"`
}

type Customer struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Delivery string `json:"delivery"`
	Note     string `json:"note,omitempty"`
}

type Order struct {
	ID         string    `json:"id"`
	Customer   Customer  `json:"customer"`
	TotalCents int64     `json:"total_cents"`
	Status     Status    `json:"status"`
	Items      []Item    `json:"items"`
	CreatedAt  time.Time `json:"created_at"`
}

// PlaceOrderInput carries everything the checkout collaborator hands the engine.
// The caller's identity is already established; UserID is trusted as given.
type PlaceOrderInput struct {
	Customer   Customer   `json:"customer"`
	TotalCents int64      `json:"total_cents"`
	Items      []CartItem `json:"items"`
}
