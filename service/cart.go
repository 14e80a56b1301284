package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront/localstore"
	models "storefront/model"
)

// CartSlot is the storage slot holding the serialized line items.
const CartSlot = "cart"

// Cart is the line-item aggregate of one session. Every mutation is written
// through to durable storage.
type Cart struct {
	mu     sync.Mutex
	items  []models.CartLineItem
	list   *localstore.List[models.CartLineItem]
	notify Notifier
	log    logrus.FieldLogger
}

// LoadCart rehydrates a cart from list. Malformed stored data is logged and
// discarded, leaving an empty cart. A storage read failure is returned so
// the stored cart is not overwritten by an empty one.
func LoadCart(ctx context.Context, list *localstore.List[models.CartLineItem], n Notifier, log logrus.FieldLogger) (*Cart, error) {
	c := &Cart{list: list, notify: n, log: log.WithField("key", list.Key())}

	items, err := list.Load(ctx)
	if err != nil {
		if !errors.Is(err, localstore.ErrCorrupt) {
			return nil, err
		}
		c.log.WithError(err).Warn("discarding stored cart")
	}
	// Lines that could never have been written are dropped.
	c.items = make([]models.CartLineItem, 0, len(items))
	for _, it := range items {
		if it.ID != "" && it.Quantity > 0 && c.indexOf(it.ID) < 0 {
			c.items = append(c.items, it)
		}
	}
	return c, nil
}

// AddToCart adds one unit of p and returns the resulting quantity.
func (c *Cart) AddToCart(ctx context.Context, p models.Product) int {
	c.mu.Lock()
	qty := 1
	if i := c.indexOf(p.ID); i >= 0 {
		c.items[i].Quantity++
		qty = c.items[i].Quantity
	} else {
		c.items = append(c.items, models.CartLineItem{Product: p, Quantity: 1})
	}
	c.persist(ctx)
	c.mu.Unlock()

	cartOperations.WithLabelValues("add").Inc()
	if qty == 1 {
		c.notify.Notify(info("Added to cart", fmt.Sprintf("%s has been added to your cart.", p.Name)))
	} else {
		c.notify.Notify(info("Cart updated", fmt.Sprintf("%s quantity increased to %d.", p.Name, qty)))
	}
	return qty
}

func (c *Cart) RemoveFromCart(ctx context.Context, productID string) {
	c.mu.Lock()
	i := c.indexOf(productID)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	removed := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.persist(ctx)
	c.mu.Unlock()

	cartOperations.WithLabelValues("remove").Inc()
	c.notify.Notify(info("Removed from cart", fmt.Sprintf("%s has been removed from your cart.", removed.Name)))
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero
// or less removes the line.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveFromCart(ctx, productID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	c.items[i].Quantity = quantity
	c.persist(ctx)
	cartOperations.WithLabelValues("update").Inc()
}

func (c *Cart) ClearCart(ctx context.Context) {
	c.mu.Lock()
	c.items = c.items[:0]
	c.persist(ctx)
	c.mu.Unlock()

	cartOperations.WithLabelValues("clear").Inc()
	c.notify.Notify(info("Cart cleared", "All items have been removed from your cart."))
}

func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}

// TotalPrice sums price * quantity over the snapshotted line prices.
func (c *Cart) TotalPrice() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []models.CartLineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.CartLineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.items {
		if c.items[i].ID == productID {
			return i
		}
	}
	return -1
}

// persist must be called with mu held.
func (c *Cart) persist(ctx context.Context) {
	if err := c.list.Save(ctx, c.items); err != nil {
		persistFailures.WithLabelValues(CartSlot).Inc()
		c.log.WithError(err).Error("persist cart")
	}
}
