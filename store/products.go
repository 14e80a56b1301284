package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	models "storefront/model"
)

var productFields = []string{
	"id", "name", "description", "price", "original_price", "category", "image_url",
	"is_new", "is_sale", "rating", "review_count", "stock_quantity", "created_at", "updated_at",
}

func productColumns(alias string) string {
	cols := make([]string, len(productFields))
	for i, f := range productFields {
		if alias != "" {
			f = alias + "." + f
		}
		cols[i] = f
	}
	return strings.Join(cols, ", ")
}

// ProductRow mirrors a products row, nullable columns included.
type ProductRow struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice decimal.NullDecimal
	Category      string
	ImageURL      sql.NullString
	IsNew         bool
	IsSale        bool
	Rating        float64
	ReviewCount   int
	StockQuantity int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// dest returns scan destinations in productFields order.
func (r *ProductRow) dest() []any {
	return []any{
		&r.ID, &r.Name, &r.Description, &r.Price, &r.OriginalPrice, &r.Category, &r.ImageURL,
		&r.IsNew, &r.IsSale, &r.Rating, &r.ReviewCount, &r.StockQuantity, &r.CreatedAt, &r.UpdatedAt,
	}
}

func (r ProductRow) Product() models.Product {
	p := models.Product{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		Category:      r.Category,
		IsNew:         r.IsNew,
		IsSale:        r.IsSale,
		Rating:        r.Rating,
		ReviewCount:   r.ReviewCount,
		StockQuantity: r.StockQuantity,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.OriginalPrice.Valid {
		op := r.OriginalPrice.Decimal
		p.OriginalPrice = &op
	}
	if r.ImageURL.Valid {
		u := r.ImageURL.String
		p.ImageURL = &u
	}
	return p
}

// ListProducts returns the whole catalog, newest first.
func (s *PostgresStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+productColumns("")+` FROM products ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	defer rows.Close()

	out := []models.Product{}
	for rows.Next() {
		var r ProductRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		out = append(out, r.Product())
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate products")
	}
	return out, nil
}

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (models.Product, error) {
	var r ProductRow
	err := s.DB.QueryRowContext(ctx,
		`SELECT `+productColumns("")+` FROM products WHERE id=$1`, id,
	).Scan(r.dest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, errors.Wrapf(ErrNotFound, "product %s", id)
	}
	if err != nil {
		return models.Product{}, errors.Wrapf(err, "get product %s", id)
	}
	return r.Product(), nil
}
