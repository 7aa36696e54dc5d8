package catalog

import "time"

type Size struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Stock    int    `json:"stock"`
	Position int    `json:"-"`
}

type Image struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Position int    `json:"-"`
}

type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	CategoryID    string    `json:"category_id"`
	SubCategoryID string    `json:"sub_category_id,omitempty"`
	PriceCents    int64     `json:"price_cents"`
	SalePercent   int       `json:"sale_percent"`
	Stock         int       `json:"stock"`
	Sizes         []Size    `json:"sizes,omitempty"`
	Images        []Image   `json:"images,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasSizes reports whether the product is sold in discrete size variants.
// When true the per-size stock counters are authoritative and the flat
// Stock field must not be used for availability.
func (p *Product) HasSizes() bool { return len(p.Sizes) > 0 }

type SizeInput struct {
	Label string `json:"label"`
	Stock int    `json:"stock"`
}

type ProductInput struct {
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	CategoryID    string      `json:"category_id"`
	SubCategoryID string      `json:"sub_category_id"`
	PriceCents    int64       `json:"price_cents"`
	SalePercent   int         `json:"sale_percent"`
	Stock         int         `json:"stock"`
	Sizes         []SizeInput `json:"sizes"`
	Images        []string    `json:"images"`
}
