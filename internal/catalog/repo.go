package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("product not found")

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, name, description, category_id, sub_category_id,
       price_cents, sale_percent, stock, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.SubCategoryID,
		&p.PriceCents, &p.SalePercent, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// List returns one page of products plus the total page count, newest first.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Product, int, error) {
	params.normalize()

	sql, args, err := countQuery(params).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := r.DB.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql, args, err = listQuery(params).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachDetails(ctx, out); err != nil {
		return nil, 0, err
	}
	totalPages := int(math.Ceil(float64(total) / float64(params.Limit)))
	return out, totalPages, nil
}

// Homepage returns the 12 newest products (what the storefront landing page shows).
func (r *Repo) Homepage(ctx context.Context) ([]Product, error) {
	return r.limited(ctx, `SELECT `+productCols+` FROM products ORDER BY created_at DESC LIMIT 12`)
}

// Saled returns the 6 newest discounted products.
func (r *Repo) Saled(ctx context.Context) ([]Product, error) {
	return r.limited(ctx, `SELECT `+productCols+` FROM products WHERE sale_percent > 0 ORDER BY created_at DESC LIMIT 6`)
}

func (r *Repo) limited(ctx context.Context, sql string) ([]Product, error) {
	rows, err := r.DB.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachDetails(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Product, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	list := []Product{p}
	if err := r.attachDetails(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// attachDetails loads sizes and images for the given products in two queries.
func (r *Repo) attachDetails(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	byID := make(map[string]*Product, len(products))
	for i := range products {
		ids[i] = products[i].ID
		byID[products[i].ID] = &products[i]
	}

	rows, err := r.DB.Query(ctx, `SELECT id, product_id, label, stock, position
	                              FROM product_sizes WHERE product_id = ANY($1::uuid[]) ORDER BY position`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var s Size
		var pid string
		if err := rows.Scan(&s.ID, &pid, &s.Label, &s.Stock, &s.Position); err != nil {
			return err
		}
		byID[pid].Sizes = append(byID[pid].Sizes, s)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.DB.Query(ctx, `SELECT id, product_id, url, position
	                             FROM product_images WHERE product_id = ANY($1::uuid[]) ORDER BY position`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var img Image
		var pid string
		if err := rows.Scan(&img.ID, &pid, &img.URL, &img.Position); err != nil {
			return err
		}
		byID[pid].Images = append(byID[pid].Images, img)
	}
	return rows.Err()
}

// Create inserts a product with its sizes and images in one transaction.
// A product is created either with size variants or with a flat stock count;
// when sizes are given the flat counter starts at zero and stays non-authoritative.
func (r *Repo) Create(ctx context.Context, in ProductInput) (*Product, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id := uuid.NewString()
	stock := in.Stock
	if len(in.Sizes) > 0 {
		stock = 0
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO products(id, name, description, category_id, sub_category_id,
		                     price_cents, sale_percent, stock)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		id, in.Name, in.Description, in.CategoryID, in.SubCategoryID,
		in.PriceCents, in.SalePercent, stock,
	)
	if err != nil {
		return nil, err
	}
	if err := insertDetails(ctx, tx, id, in); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update rewrites the product row and replaces sizes and images wholesale.
// This path may set stock counters directly; it is the catalog-editing surface,
// not the reservation engine.
func (r *Repo) Update(ctx context.Context, id string, in ProductInput) (*Product, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE products SET name=$2, description=$3, category_id=$4, sub_category_id=$5,
		       price_cents=$6, sale_percent=$7, stock=$8, updated_at=now()
		WHERE id=$1`,
		id, in.Name, in.Description, in.CategoryID, in.SubCategoryID,
		in.PriceCents, in.SalePercent, in.Stock,
	)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM product_sizes WHERE product_id=$1`, id); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM product_images WHERE product_id=$1`, id); err != nil {
		return nil, err
	}
	if err := insertDetails(ctx, tx, id, in); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func insertDetails(ctx context.Context, tx pgx.Tx, productID string, in ProductInput) error {
	for i, s := range in.Sizes {
		_, err := tx.Exec(ctx, `INSERT INTO product_sizes(id, product_id, label, stock, position)
		                        VALUES ($1,$2,$3,$4,$5)`,
			uuid.NewString(), productID, s.Label, s.Stock, i)
		if err != nil {
			return err
		}
	}
	for i, url := range in.Images {
		_, err := tx.Exec(ctx, `INSERT INTO product_images(id, product_id, url, position)
		                        VALUES ($1,$2,$3,$4)`,
			uuid.NewString(), productID, url, i)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
