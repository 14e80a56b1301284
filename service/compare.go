package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"storefront/localstore"
	models "storefront/model"
)

const (
	// CompareSlot is the storage slot holding the compared products.
	CompareSlot = "compare-products"
	// MaxCompare is the most products that can be compared at once.
	MaxCompare = 4
)

// Comparison is the bounded product comparison list of one session. It does
// not depend on the signed-in user.
type Comparison struct {
	mu       sync.Mutex
	products []models.Product
	list     *localstore.List[models.Product]
	log      logrus.FieldLogger
}

// LoadComparison rehydrates the list. Malformed stored data is logged and
// ignored; the slot is left as it is. Read failures are returned.
func LoadComparison(ctx context.Context, list *localstore.List[models.Product], log logrus.FieldLogger) (*Comparison, error) {
	c := &Comparison{list: list, log: log.WithField("key", list.Key())}

	products, err := list.Load(ctx)
	if err != nil {
		if !errors.Is(err, localstore.ErrCorrupt) {
			return nil, err
		}
		c.log.WithError(err).Warn("ignoring stored comparison list")
	}
	c.products = make([]models.Product, 0, MaxCompare)
	for _, p := range products {
		if len(c.products) == MaxCompare {
			break
		}
		if p.ID != "" && c.indexOf(p.ID) < 0 {
			c.products = append(c.products, p)
		}
	}
	return c, nil
}

func (c *Comparison) AddToCompare(ctx context.Context, p models.Product) models.CompareResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.products) >= MaxCompare {
		compareRejections.WithLabelValues("capacity").Inc()
		return models.CompareResult{
			Success: false,
			Message: fmt.Sprintf("You can compare up to %d products at a time. Remove one to add another.", MaxCompare),
		}
	}
	if c.indexOf(p.ID) >= 0 {
		compareRejections.WithLabelValues("duplicate").Inc()
		return models.CompareResult{
			Success: false,
			Message: fmt.Sprintf("%s is already in the comparison.", p.Name),
		}
	}

	c.products = append(c.products, p)
	c.persist(ctx)
	return models.CompareResult{Success: true, Message: fmt.Sprintf("%s added to comparison.", p.Name)}
}

func (c *Comparison) RemoveFromCompare(ctx context.Context, productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.products[:0:0]
	for _, p := range c.products {
		if p.ID != productID {
			kept = append(kept, p)
		}
	}
	c.products = kept
	c.persist(ctx)
}

func (c *Comparison) ClearCompare(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = []models.Product{}
	c.persist(ctx)
}

func (c *Comparison) IsInCompare(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexOf(productID) >= 0
}

func (c *Comparison) CanAddMore() bool { return c.Count() < MaxCompare }

func (c *Comparison) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.products)
}

func (c *Comparison) Products() []models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Comparison) indexOf(productID string) int {
	for i := range c.products {
		if c.products[i].ID == productID {
			return i
		}
	}
	return -1
}

// persist must be called with mu held.
func (c *Comparison) persist(ctx context.Context) {
	if err := c.list.Save(ctx, c.products); err != nil {
		persistFailures.WithLabelValues(CompareSlot).Inc()
		c.log.WithError(err).Error("persist comparison list")
	}
}
