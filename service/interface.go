package service

import (
	"context"

	models "storefront/model"
)

// CatalogService is the product browsing surface used by the HTTP layer.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	ByCategory(ctx context.Context, category string) ([]models.Product, error)
	Home(ctx context.Context) (HomeSections, error)
}

// SessionProvider hands out the per-session aggregates.
type SessionProvider interface {
	Get(ctx context.Context, id string) (*Session, error)
}

var (
	_ CatalogService  = (*Catalog)(nil)
	_ SessionProvider = (*SessionManager)(nil)
)
