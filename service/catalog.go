package service

import (
	"context"
	"sort"
	"strings"

	models "storefront/model"
	"storefront/store"
)

// HomeSectionSize caps each home page section.
const HomeSectionSize = 8

type HomeSections struct {
	NewArrivals []models.Product `json:"new_arrivals"`
	OnSale      []models.Product `json:"on_sale"`
	TopRated    []models.Product `json:"top_rated"`
}

// Catalog serves product browsing straight from the remote store.
type Catalog struct {
	repo store.ProductRepository
}

func NewCatalog(repo store.ProductRepository) *Catalog {
	return &Catalog{repo: repo}
}

func (c *Catalog) ListProducts(ctx context.Context) ([]models.Product, error) {
	return c.repo.ListProducts(ctx)
}

func (c *Catalog) GetProduct(ctx context.Context, id string) (models.Product, error) {
	return c.repo.GetProduct(ctx, id)
}

// ByCategory matches the category case-insensitively.
func (c *Catalog) ByCategory(ctx context.Context, category string) ([]models.Product, error) {
	all, err := c.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Product{}
	for _, p := range all {
		if strings.EqualFold(p.Category, strings.TrimSpace(category)) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Home builds the marketing sections of the landing page.
func (c *Catalog) Home(ctx context.Context) (HomeSections, error) {
	all, err := c.repo.ListProducts(ctx)
	if err != nil {
		return HomeSections{}, err
	}

	h := HomeSections{NewArrivals: []models.Product{}, OnSale: []models.Product{}}
	for _, p := range all {
		if p.IsNew && len(h.NewArrivals) < HomeSectionSize {
			h.NewArrivals = append(h.NewArrivals, p)
		}
		if p.IsSale && len(h.OnSale) < HomeSectionSize {
			h.OnSale = append(h.OnSale, p)
		}
	}

	rated := make([]models.Product, len(all))
	copy(rated, all)
	sort.SliceStable(rated, func(i, j int) bool {
		if rated[i].Rating != rated[j].Rating {
			return rated[i].Rating > rated[j].Rating
		}
		return rated[i].ReviewCount > rated[j].ReviewCount
	})
	if len(rated) > HomeSectionSize {
		rated = rated[:HomeSectionSize]
	}
	h.TopRated = rated
	return h, nil
}
