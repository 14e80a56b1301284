package store

import (
	"context"

	models "storefront/model"
)

// ProductRepository reads the backend-owned product catalog.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
}

// FavoriteRepository is the remote favorites resource: select by user (joined
// with product), insert, delete by user+product.
type FavoriteRepository interface {
	ListFavorites(ctx context.Context, userID string) ([]models.FavoriteEntry, error)
	InsertFavorite(ctx context.Context, userID, productID string) error
	DeleteFavorite(ctx context.Context, userID, productID string) error
}

type Store interface {
	ProductRepository
	FavoriteRepository

	Migrate(ctx context.Context) error
	Close() error
}
