package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	models "storefront/model"
	"storefront/store"
)

// Favorites caches the remote favorites of the session's current user.
//
// The lock only guards the local list and is never held across a remote
// call, so overlapping add/remove calls for one product may leave the cache
// out of step with the remote store until the next FetchFavorites.
type Favorites struct {
	mu    sync.Mutex
	items []models.FavoriteEntry

	repo     store.FavoriteRepository
	identity IdentityProvider
	notify   Notifier
	log      logrus.FieldLogger

	now   func() time.Time
	newID func() string
}

func NewFavorites(repo store.FavoriteRepository, identity IdentityProvider, n Notifier, log logrus.FieldLogger) *Favorites {
	return &Favorites{
		items:    []models.FavoriteEntry{},
		repo:     repo,
		identity: identity,
		notify:   n,
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// FetchFavorites replaces the cache with the current user's remote
// favorites. Without a user the cache is cleared. Errors are logged and
// leave the cache untouched.
func (f *Favorites) FetchFavorites(ctx context.Context) {
	user := f.identity.CurrentUser()
	if user == nil {
		f.mu.Lock()
		f.items = []models.FavoriteEntry{}
		f.mu.Unlock()
		return
	}

	entries, err := f.repo.ListFavorites(ctx, user.ID)
	if err != nil {
		favoriteFailures.WithLabelValues("fetch").Inc()
		f.log.WithError(err).WithField("user_id", user.ID).Error("fetch favorites")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	// The user may have signed out or switched while the call was in flight.
	if !f.owns(user) {
		return
	}
	f.items = entries
}

func (f *Favorites) AddToFavorites(ctx context.Context, p models.Product) {
	user := f.RequireUser()
	if user == nil {
		return
	}

	if err := f.repo.InsertFavorite(ctx, user.ID, p.ID); err != nil {
		favoriteFailures.WithLabelValues("add").Inc()
		f.log.WithError(err).WithFields(logrus.Fields{"user_id": user.ID, "product_id": p.ID}).Error("add favorite")
		f.notify.Notify(failure("Error", "Failed to add to favorites. Please try again."))
		return
	}

	product := p
	f.mu.Lock()
	if f.owns(user) && f.indexOf(p.ID) < 0 {
		f.items = append(f.items, models.FavoriteEntry{
			ID:        f.newID(),
			UserID:    user.ID,
			ProductID: p.ID,
			CreatedAt: f.now(),
			Product:   &product,
		})
	}
	f.mu.Unlock()

	f.notify.Notify(info("Added to favorites", fmt.Sprintf("%s has been added to your favorites.", p.Name)))
}

func (f *Favorites) RemoveFromFavorites(ctx context.Context, productID string) {
	user := f.RequireUser()
	if user == nil {
		return
	}

	if err := f.repo.DeleteFavorite(ctx, user.ID, productID); err != nil {
		favoriteFailures.WithLabelValues("remove").Inc()
		f.log.WithError(err).WithFields(logrus.Fields{"user_id": user.ID, "product_id": productID}).Error("remove favorite")
		f.notify.Notify(failure("Error", "Failed to remove from favorites. Please try again."))
		return
	}

	f.mu.Lock()
	kept := f.items[:0:0]
	for _, e := range f.items {
		if e.ProductID != productID {
			kept = append(kept, e)
		}
	}
	f.items = kept
	f.mu.Unlock()

	f.notify.Notify(info("Removed from favorites", "The product has been removed from your favorites."))
}

func (f *Favorites) IsFavorite(productID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.indexOf(productID) >= 0
}

// ToggleFavorite removes p if it is a favorite and adds it otherwise.
func (f *Favorites) ToggleFavorite(ctx context.Context, p models.Product) {
	if f.IsFavorite(p.ID) {
		f.RemoveFromFavorites(ctx, p.ID)
		return
	}
	f.AddToFavorites(ctx, p)
}

// owns reports whether user is still the signed-in user. Must be called
// with mu held.
func (f *Favorites) owns(user *models.User) bool {
	cur := f.identity.CurrentUser()
	return cur != nil && cur.ID == user.ID
}

// reset empties the cache. Called when the signed-in user changes so one
// user's favorites are never shown to another.
func (f *Favorites) reset() {
	f.mu.Lock()
	f.items = []models.FavoriteEntry{}
	f.mu.Unlock()
}

func (f *Favorites) List() []models.FavoriteEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.FavoriteEntry, len(f.items))
	copy(out, f.items)
	return out
}

// RequireUser returns the signed-in user, or emits the sign-in notification
// and returns nil.
func (f *Favorites) RequireUser() *models.User {
	user := f.identity.CurrentUser()
	if user == nil {
		f.notify.Notify(info("Sign in required", "Please sign in to manage your favorites."))
	}
	return user
}

func (f *Favorites) indexOf(productID string) int {
	for i := range f.items {
		if f.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
