package orders

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the non-transactional read/update surface over orders. Stock is
// never touched here; that is the Engine's job.
type Repo struct{ DB *pgxpool.Pool }

const orderCols = `id, user_id, customer_name, phone, email, delivery, note, total_cents, status, created_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Customer.UserID, &o.Customer.Name, &o.Customer.Phone,
		&o.Customer.Email, &o.Customer.Delivery, &o.Customer.Note,
		&o.TotalCents, &o.Status, &o.CreatedAt)
	return o, err
}

// List returns one admin page of orders, newest first, plus the total page count.
func (r *Repo) List(ctx context.Context, page, limit int) ([]Order, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.Query(ctx, `SELECT `+orderCols+` FROM orders
	                              ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachItems(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, int(math.Ceil(float64(total) / float64(limit))), nil
}

// ListByUser returns all orders placed by one user, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderCols+` FROM orders
	                              WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	out, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) attachItems(ctx context.Context, list []Order) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	byID := make(map[string]*Order, len(list))
	for i := range list {
		ids[i] = list[i].ID
		byID[list[i].ID] = &list[i]
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, selected_size, qty, price_cents, sale_percent
		FROM order_items WHERE order_id = ANY($1::uuid[]) ORDER BY position`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.SelectedSize,
			&it.Qty, &it.PriceCents, &it.SalePercent); err != nil {
			return err
		}
		byID[it.OrderID].Items = append(byID[it.OrderID].Items, it)
	}
	return rows.Err()
}

func (r *Repo) Get(ctx context.Context, orderID string) (*Order, error) {
	if uuid.Validate(orderID) != nil {
		return nil, &NotFoundError{Resource: "order", ID: orderID}
	}
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Resource: "order", ID: orderID}
	}
	if err != nil {
		return nil, err
	}
	list := []Order{o}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *Repo) GetStatus(ctx context.Context, orderID string) (Status, error) {
	if uuid.Validate(orderID) != nil {
		return "", &NotFoundError{Resource: "order", ID: orderID}
	}
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, orderID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", &NotFoundError{Resource: "order", ID: orderID}
	}
	if err != nil {
		return "", err
	}
	return Status(s), nil
}

// UpdateStatus sets the fulfillment status directly; any status may be set
// from any other. Returns the updated order.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, status Status) (*Order, error) {
	if uuid.Validate(orderID) != nil {
		return nil, &NotFoundError{Resource: "order", ID: orderID}
	}
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, orderID, status)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, &NotFoundError{Resource: "order", ID: orderID}
	}
	return r.Get(ctx, orderID)
}
