package service

import (
	"strings"
	"sync"

	models "storefront/model"
)

// FilterProducts returns the products whose name or category contains query,
// ignoring case. A blank query returns products unchanged.
func FilterProducts(products []models.Product, query string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return products
	}
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Category), q) {
			out = append(out, p)
		}
	}
	return out
}

// Search memoizes FilterProducts, recomputing only after the query or the
// source list changes.
type Search struct {
	mu      sync.Mutex
	source  []models.Product
	query   string
	result  []models.Product
	stale   bool
	recalcs int
}

func NewSearch() *Search {
	return &Search{source: []models.Product{}, stale: true}
}

// SetProducts replaces the source list. An identical list (same ids and
// update times, same order) does not invalidate the cached result.
func (s *Search) SetProducts(products []models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sameProducts(s.source, products) {
		return
	}
	s.source = products
	s.stale = true
}

func (s *Search) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if query == s.query {
		return
	}
	s.query = query
	s.stale = true
}

func (s *Search) Results() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale {
		s.result = FilterProducts(s.source, s.query)
		s.stale = false
		s.recalcs++
	}
	out := make([]models.Product, len(s.result))
	copy(out, s.result)
	return out
}

func sameProducts(a, b []models.Product) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || !a[i].UpdatedAt.Equal(b[i].UpdatedAt) {
			return false
		}
	}
	return true
}
