package catalog

import (
	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type ListParams struct {
	Page          int
	Limit         int
	CategoryID    string // "all" and "sale" are sentinels, not real category ids
	SubCategoryID string
	Search        string
}

func (p *ListParams) normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 12
	}
}

func listFilter(p ListParams) sq.And {
	var conds sq.And
	if p.CategoryID != "" && p.CategoryID != "all" && p.CategoryID != "sale" {
		conds = append(conds, sq.Eq{"category_id": p.CategoryID})
	}
	if p.CategoryID == "sale" {
		conds = append(conds, sq.Gt{"sale_percent": 0})
	}
	if p.SubCategoryID != "" {
		conds = append(conds, sq.Eq{"sub_category_id": p.SubCategoryID})
	}
	if p.Search != "" {
		conds = append(conds, sq.ILike{"name": "%" + p.Search + "%"})
	}
	return conds
}

func listQuery(p ListParams) sq.SelectBuilder {
	b := psql.Select(
		"id", "name", "description", "category_id", "sub_category_id",
		"price_cents", "sale_percent", "stock", "created_at", "updated_at",
	).From("products")
	if conds := listFilter(p); len(conds) > 0 {
		b = b.Where(conds)
	}
	return b.
		OrderBy("created_at DESC").
		Limit(uint64(p.Limit)).
		Offset(uint64((p.Page - 1) * p.Limit))
}

func countQuery(p ListParams) sq.SelectBuilder {
	b := psql.Select("COUNT(*)").From("products")
	if conds := listFilter(p); len(conds) > 0 {
		b = b.Where(conds)
	}
	return b
}
