package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	models "storefront/model"
)

func TestCatalogHome(t *testing.T) {
	var all []models.Product
	for i := 0; i < 12; i++ {
		all = append(all, models.Product{
			ID:          fmt.Sprintf("p%d", i),
			IsNew:       i%2 == 0,
			IsSale:      i < 3,
			Rating:      float64(i % 5),
			ReviewCount: i,
		})
	}
	c := NewCatalog(&fakeRepo{ListProductsFn: func(ctx context.Context) ([]models.Product, error) { return all, nil }})

	h, err := c.Home(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.NewArrivals) != 6 {
		t.Fatalf("expected 6 new arrivals, got %d", len(h.NewArrivals))
	}
	if len(h.OnSale) != 3 {
		t.Fatalf("expected 3 sale products, got %d", len(h.OnSale))
	}
	if len(h.TopRated) != HomeSectionSize {
		t.Fatalf("expected %d top rated, got %d", HomeSectionSize, len(h.TopRated))
	}
	// rating 4 ties broken by review count: p9 (9 reviews) before p4
	if h.TopRated[0].ID != "p9" || h.TopRated[1].ID != "p4" {
		t.Fatalf("unexpected top rated order: %s, %s", h.TopRated[0].ID, h.TopRated[1].ID)
	}
}

func TestCatalogByCategory(t *testing.T) {
	c := NewCatalog(&fakeRepo{ListProductsFn: func(ctx context.Context) ([]models.Product, error) {
		return searchFixture(), nil
	}})
	got, err := c.ByCategory(context.Background(), " LIGHTING ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %+v", got)
	}
}

func TestCatalogStoreErrorPropagates(t *testing.T) {
	c := NewCatalog(&fakeRepo{ListProductsFn: func(ctx context.Context) ([]models.Product, error) {
		return nil, errors.New("db down")
	}})
	if _, err := c.Home(context.Background()); err == nil {
		t.Fatalf("expected store error to propagate")
	}
	if _, err := c.ByCategory(context.Background(), "x"); err == nil {
		t.Fatalf("expected store error to propagate")
	}
}
