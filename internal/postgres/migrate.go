package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is applied at startup; every statement is idempotent so restarts are safe.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
    id              UUID PRIMARY KEY,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    category_id     TEXT NOT NULL DEFAULT '',
    sub_category_id TEXT NOT NULL DEFAULT '',
    price_cents     BIGINT NOT NULL CHECK (price_cents >= 0),
    sale_percent    INT NOT NULL DEFAULT 0 CHECK (sale_percent BETWEEN 0 AND 100),
    stock           INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS product_sizes (
    id         UUID PRIMARY KEY,
    product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    label      TEXT NOT NULL,
    stock      INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
    position   INT NOT NULL DEFAULT 0,
    UNIQUE (product_id, label)
);

CREATE TABLE IF NOT EXISTS product_images (
    id         UUID PRIMARY KEY,
    product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    url        TEXT NOT NULL,
    position   INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS orders (
    id            UUID PRIMARY KEY,
    user_id       TEXT NOT NULL,
    customer_name TEXT NOT NULL,
    phone         TEXT NOT NULL,
    email         TEXT NOT NULL,
    delivery      TEXT NOT NULL,
    note          TEXT NOT NULL DEFAULT '',
    total_cents   BIGINT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'PLACED',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS order_items (
    id            UUID PRIMARY KEY,
    order_id      UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_id    UUID NOT NULL,
    selected_size TEXT NOT NULL DEFAULT '',
    qty           INT NOT NULL CHECK (qty > 0),
    price_cents   BIGINT NOT NULL,
    sale_percent  INT NOT NULL DEFAULT 0,
    position      INT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_products_category   ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_orders_user         ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at   ON orders(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_order_items_order   ON order_items(order_id);
`

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
