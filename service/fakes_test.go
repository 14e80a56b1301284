package service

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"storefront/localstore"
	models "storefront/model"
)

// ---- fakeRepo implementing the store repositories for tests ----
type fakeRepo struct {
	ListFavoritesFn  func(ctx context.Context, userID string) ([]models.FavoriteEntry, error)
	InsertFavoriteFn func(ctx context.Context, userID, productID string) error
	DeleteFavoriteFn func(ctx context.Context, userID, productID string) error
	ListProductsFn   func(ctx context.Context) ([]models.Product, error)
	GetProductFn     func(ctx context.Context, id string) (models.Product, error)

	mu    sync.Mutex
	calls []string
}

func (f *fakeRepo) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeRepo) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRepo) ListFavorites(ctx context.Context, userID string) ([]models.FavoriteEntry, error) {
	f.record("list:" + userID)
	return f.ListFavoritesFn(ctx, userID)
}
func (f *fakeRepo) InsertFavorite(ctx context.Context, userID, productID string) error {
	f.record("insert:" + userID + ":" + productID)
	return f.InsertFavoriteFn(ctx, userID, productID)
}
func (f *fakeRepo) DeleteFavorite(ctx context.Context, userID, productID string) error {
	f.record("delete:" + userID + ":" + productID)
	return f.DeleteFavoriteFn(ctx, userID, productID)
}
func (f *fakeRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	return f.ListProductsFn(ctx)
}
func (f *fakeRepo) GetProduct(ctx context.Context, id string) (models.Product, error) {
	return f.GetProductFn(ctx, id)
}

// recorder collects notifications.
type recorder struct {
	mu  sync.Mutex
	got []models.Notification
}

func (r *recorder) Notify(n models.Notification) {
	r.mu.Lock()
	r.got = append(r.got, n)
	r.mu.Unlock()
}

func (r *recorder) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.got))
	for i, n := range r.got {
		out[i] = n.Title
	}
	return out
}

func (r *recorder) last() models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.got) == 0 {
		return models.Notification{}
	}
	return r.got[len(r.got)-1]
}

func nullLogger() (logrus.FieldLogger, *logtest.Hook) {
	l, hook := logtest.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return l, hook
}

func product(t *testing.T, id, price string) models.Product {
	t.Helper()
	return models.Product{ID: id, Name: "Product " + id, Category: "General", Price: decimal.RequireFromString(price)}
}

// flakySlots fails the next `failures` reads, optionally only for key.
type flakySlots struct {
	localstore.Slots

	mu       sync.Mutex
	failures int
	key      string
}

func (f *flakySlots) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	fail := f.failures > 0 && (f.key == "" || f.key == key)
	if fail {
		f.failures--
	}
	f.mu.Unlock()
	if fail {
		return nil, false, errors.New("connection reset")
	}
	return f.Slots.Get(ctx, key)
}
