package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bilguunmgl/go-shop-orders/internal/catalog"
)

// Engine runs the order placement and cancellation transactions. Each call is
// one atomic transaction: stock mutations and the order insert/delete commit
// together or not at all.
type Engine struct{ DB *pgxpool.Pool }

const txAttempts = 3

// PlaceOrder validates the cart against live stock, decrements the
// authoritative counters and persists the order, all inside one transaction.
// Line items are processed in the client-supplied order so a failure names the
// first offending item. Deadlocks and serialization failures retry the whole
// operation from a fresh snapshot, bounded by txAttempts.
func (e *Engine) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Order, []StockChange, error) {
	if err := validatePlaceOrder(in); err != nil {
		return nil, nil, err
	}
	var lastErr error
	for attempt := 0; attempt < txAttempts; attempt++ {
		o, changes, err := e.placeOrderTx(ctx, in)
		if err != nil && retryableTx(err) {
			lastErr = err
			continue
		}
		return o, changes, err
	}
	return nil, nil, fmt.Errorf("%w: %v", ErrTxConflict, lastErr)
}

func validatePlaceOrder(in PlaceOrderInput) error {
	switch {
	case in.Customer.UserID == "":
		return &ValidationError{Msg: "user id is required"}
	case in.Customer.Name == "":
		return &ValidationError{Msg: "customer name is required"}
	case in.Customer.Phone == "":
		return &ValidationError{Msg: "phone number is required"}
	case in.Customer.Email == "":
		return &ValidationError{Msg: "email is required"}
	case in.Customer.Delivery == "":
		return &ValidationError{Msg: "delivery address is required"}
	case len(in.Items) == 0:
		return &ValidationError{Msg: "cart is empty"}
	}
	for _, it := range in.Items {
		if it.ProductID == "" {
			return &ValidationError{Msg: "product id is required for every cart item"}
		}
		if uuid.Validate(it.ProductID) != nil {
			return &ValidationError{Msg: "invalid product id: " + it.ProductID}
		}
		if it.Qty <= 0 {
			return &ValidationError{Msg: "quantity must be positive for product: " + it.ProductID}
		}
	}
	return nil
}

func (e *Engine) placeOrderTx(ctx context.Context, in PlaceOrderInput) (*Order, []StockChange, error) {
	tx, err := e.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	changes := make([]StockChange, 0, len(in.Items))
	for _, it := range in.Items {
		p, err := lockProduct(ctx, tx, it.ProductID)
		if err != nil {
			return nil, nil, err
		}
		tgt, err := resolveReservation(p, it)
		if err != nil {
			return nil, nil, err
		}
		if err := writeStock(ctx, tx, tgt); err != nil {
			return nil, nil, err
		}
		changes = append(changes, StockChange{
			ProductID: tgt.ProductID, Size: tgt.SizeLabel, Delta: -it.Qty, StockAfter: tgt.Remaining,
		})
	}

	o := &Order{
		ID:         uuid.NewString(),
		Customer:   in.Customer,
		TotalCents: in.TotalCents,
		Status:     StatusPlaced,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, user_id, customer_name, phone, email, delivery, note, total_cents, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at`,
		o.ID, o.Customer.UserID, o.Customer.Name, o.Customer.Phone, o.Customer.Email,
		o.Customer.Delivery, o.Customer.Note, o.TotalCents, o.Status,
	).Scan(&o.CreatedAt)
	if err != nil {
		return nil, nil, err
	}

	for i, it := range in.Items {
		item := Item{
			ID:           uuid.NewString(),
			OrderID:      o.ID,
			ProductID:    it.ProductID,
			SelectedSize: it.SelectedSize,
			Qty:          it.Qty,
			PriceCents:   it.PriceCents,
			SalePercent:  it.SalePercent,
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, selected_size, qty, price_cents, sale_percent, position)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			item.ID, item.OrderID, item.ProductID, item.SelectedSize,
			item.Qty, item.PriceCents, item.SalePercent, i,
		)
		if err != nil {
			return nil, nil, err
		}
		o.Items = append(o.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return o, changes, nil
}

// CancelOrder restores every line item's stock contribution and deletes the
// order, atomically. A product deleted since placement is skipped: restoring
// stock to a nonexistent catalog entry is a no-op, not a fault. Cancelling an
// already-cancelled order reports the order as not found.
func (e *Engine) CancelOrder(ctx context.Context, orderID string) (*Order, []StockChange, error) {
	if uuid.Validate(orderID) != nil {
		return nil, nil, &NotFoundError{Resource: "order", ID: orderID}
	}
	var lastErr error
	for attempt := 0; attempt < txAttempts; attempt++ {
		o, changes, err := e.cancelOrderTx(ctx, orderID)
		if err != nil && retryableTx(err) {
			lastErr = err
			continue
		}
		return o, changes, err
	}
	return nil, nil, fmt.Errorf("%w: %v", ErrTxConflict, lastErr)
}

func (e *Engine) cancelOrderTx(ctx context.Context, orderID string) (*Order, []StockChange, error) {
	tx, err := e.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// FOR UPDATE serializes concurrent cancellations: the loser blocks here,
	// then sees no row once the winner's delete commits.
	var o Order
	err = tx.QueryRow(ctx, `
		SELECT id, user_id, customer_name, phone, email, delivery, note, total_cents, status, created_at
		FROM orders WHERE id=$1 FOR UPDATE`, orderID,
	).Scan(&o.ID, &o.Customer.UserID, &o.Customer.Name, &o.Customer.Phone, &o.Customer.Email,
		&o.Customer.Delivery, &o.Customer.Note, &o.TotalCents, &o.Status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, &NotFoundError{Resource: "order", ID: orderID}
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, product_id, selected_size, qty, price_cents, sale_percent
		FROM order_items WHERE order_id=$1 ORDER BY position`, orderID)
	if err != nil {
		return nil, nil, err
	}
	for rows.Next() {
		it := Item{OrderID: o.ID}
		if err := rows.Scan(&it.ID, &it.ProductID, &it.SelectedSize, &it.Qty, &it.PriceCents, &it.SalePercent); err != nil {
			rows.Close()
			return nil, nil, err
		}
		o.Items = append(o.Items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var changes []StockChange
	for _, it := range o.Items {
		p, err := lockProduct(ctx, tx, it.ProductID)
		var nf *NotFoundError
		if errors.As(err, &nf) {
			continue // product removed from the catalog since placement
		}
		if err != nil {
			return nil, nil, err
		}
		tgt := resolveRestore(p, it.SelectedSize, it.Qty)
		if err := writeStock(ctx, tx, tgt); err != nil {
			return nil, nil, err
		}
		changes = append(changes, StockChange{
			ProductID: tgt.ProductID, Size: tgt.SizeLabel, Delta: it.Qty, StockAfter: tgt.Remaining,
		})
	}

	// items cascade
	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, orderID); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return &o, changes, nil
}

// lockProduct takes the product's row lock and reads the stock snapshot the
// resolution step decides against. Locking the parent row serializes all stock
// math on the product, so the size rows can be read without their own locks.
func lockProduct(ctx context.Context, tx pgx.Tx, productID string) (*catalog.Product, error) {
	var p catalog.Product
	err := tx.QueryRow(ctx, `SELECT id, name, stock FROM products WHERE id=$1 FOR UPDATE`, productID).
		Scan(&p.ID, &p.Name, &p.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Resource: "product", ID: productID}
	}
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `SELECT id, label, stock, position FROM product_sizes
	                            WHERE product_id=$1 ORDER BY position`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s catalog.Size
		if err := rows.Scan(&s.ID, &s.Label, &s.Stock, &s.Position); err != nil {
			return nil, err
		}
		p.Sizes = append(p.Sizes, s)
	}
	return &p, rows.Err()
}

// writeStock applies the resolved counter value. Absolute writes are safe
// because the product row lock is held from snapshot to commit.
func writeStock(ctx context.Context, tx pgx.Tx, tgt stockTarget) error {
	if tgt.SizeLabel == "" {
		_, err := tx.Exec(ctx, `UPDATE products SET stock=$2, updated_at=now() WHERE id=$1`,
			tgt.ProductID, tgt.Remaining)
		return err
	}
	_, err := tx.Exec(ctx, `UPDATE product_sizes SET stock=$3 WHERE product_id=$1 AND label=$2`,
		tgt.ProductID, tgt.SizeLabel, tgt.Remaining)
	return err
}

func retryableTx(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	// serialization_failure, deadlock_detected
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
