package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"storefront/localstore"
	models "storefront/model"
)

func newTestManager(t *testing.T, slots localstore.Slots, repo *fakeRepo) *SessionManager {
	t.Helper()
	log, _ := nullLogger()
	return NewSessionManager(slots, repo, log)
}

func mustSession(t *testing.T, m *SessionManager, id string) *Session {
	t.Helper()
	s, err := m.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get session %s: %v", id, err)
	}
	return s
}

func TestSessionManager_ConcurrentGetBuildsOneSession(t *testing.T) {
	m := newTestManager(t, localstore.NewMemorySlots(), okRepo())

	const N = 50
	var mu sync.Mutex
	seen := map[*Session]struct{}{}

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < N; i++ {
		g.Go(func() error {
			s, err := m.Get(ctx, "shared")
			if err != nil {
				return err
			}
			mu.Lock()
			seen[s] = struct{}{}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent Get failed: %v", err)
	}
	if len(seen) != 1 || m.Len() != 1 {
		t.Fatalf("expected exactly 1 session, got %d (len %d)", len(seen), m.Len())
	}
}

func TestSessionManager_ConcurrentAddToCart(t *testing.T) {
	m := newTestManager(t, localstore.NewMemorySlots(), okRepo())
	ctx := context.Background()
	p := product(t, "p1", "2")

	const N = 100
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < N; i++ {
		g.Go(func() error {
			s, err := m.Get(gctx, "s1")
			if err != nil {
				return err
			}
			s.Cart.AddToCart(gctx, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent add failed: %v", err)
	}

	cart := mustSession(t, m, "s1").Cart
	if cart.TotalItems() != N || len(cart.Items()) != 1 {
		t.Fatalf("expected %d units on one line, got %d on %d", N, cart.TotalItems(), len(cart.Items()))
	}
}

func TestSessionManager_RehydratesFromSlots(t *testing.T) {
	slots := localstore.NewMemorySlots()
	ctx := context.Background()

	first := newTestManager(t, slots, okRepo())
	s := mustSession(t, first, "profile-1")
	s.Cart.AddToCart(ctx, product(t, "p1", "4"))
	s.Comparison.AddToCompare(ctx, product(t, "p2", "5"))

	// a fresh process sharing the same durable storage
	second := newTestManager(t, slots, okRepo())
	s2 := mustSession(t, second, "profile-1")
	if s2.Cart.TotalItems() != 1 || !s2.Comparison.IsInCompare("p2") {
		t.Fatalf("expected rehydrated state, got cart=%d compare=%d", s2.Cart.TotalItems(), s2.Comparison.Count())
	}

	other := mustSession(t, second, "profile-2")
	if other.Cart.TotalItems() != 0 || other.Comparison.Count() != 0 {
		t.Fatalf("sessions must not share state")
	}
}

func TestSession_SetUserRefetchesOnChange(t *testing.T) {
	repo := okRepo()
	repo.ListFavoritesFn = func(ctx context.Context, userID string) ([]models.FavoriteEntry, error) {
		return []models.FavoriteEntry{{ID: "f-" + userID, UserID: userID, ProductID: "p-" + userID}}, nil
	}
	m := newTestManager(t, localstore.NewMemorySlots(), repo)
	ctx := context.Background()
	s := mustSession(t, m, "s1")

	s.SetUser(ctx, &models.User{ID: "u1"})
	s.SetUser(ctx, &models.User{ID: "u1"})
	if !s.Favorites.IsFavorite("p-u1") {
		t.Fatalf("expected u1 favorites")
	}

	s.SetUser(ctx, &models.User{ID: "u2"})
	if s.Favorites.IsFavorite("p-u1") || !s.Favorites.IsFavorite("p-u2") {
		t.Fatalf("expected u2 favorites only, got %+v", s.Favorites.List())
	}

	s.SetUser(ctx, nil)
	if len(s.Favorites.List()) != 0 {
		t.Fatalf("expected cleared favorites after sign out")
	}

	calls := repo.Calls()
	if len(calls) != 2 || calls[0] != "list:u1" || calls[1] != "list:u2" {
		t.Fatalf("expected one fetch per user change, got %v", calls)
	}
}

func TestSession_NotificationsReachInbox(t *testing.T) {
	m := newTestManager(t, localstore.NewMemorySlots(), okRepo())
	ctx := context.Background()
	s := mustSession(t, m, "s1")

	s.Cart.AddToCart(ctx, product(t, "p1", "1"))
	s.Favorites.AddToFavorites(ctx, product(t, "p1", "1"))

	got := s.Inbox.Drain()
	if len(got) != 2 || got[0].Title != "Added to cart" || got[1].Title != "Sign in required" {
		t.Fatalf("unexpected inbox: %+v", got)
	}
	if len(s.Inbox.Drain()) != 0 {
		t.Fatalf("expected inbox empty after drain")
	}
}

func TestSessionManager_Sweep(t *testing.T) {
	m := newTestManager(t, localstore.NewMemorySlots(), okRepo())
	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	mustSession(t, m, "old")
	clock = clock.Add(time.Hour)
	mustSession(t, m, "fresh")

	if n := m.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("expected 1 swept session, got %d", n)
	}
	if m.Len() != 1 || m.lookup("fresh") == nil {
		t.Fatalf("expected only the fresh session to remain")
	}
}

func TestSessionManager_SweepKeepsSessionsInUse(t *testing.T) {
	m := newTestManager(t, localstore.NewMemorySlots(), okRepo())
	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	first := mustSession(t, m, "s1")
	clock = clock.Add(time.Hour)
	again := mustSession(t, m, "s1")

	if first != again {
		t.Fatalf("expected the cached session")
	}
	if n := m.Sweep(30 * time.Minute); n != 0 {
		t.Fatalf("expected no sweep for a session just used, dropped %d", n)
	}
}

func TestSession_UserSwitchWithFailedFetchClearsFavorites(t *testing.T) {
	repo := okRepo()
	repo.ListFavoritesFn = func(ctx context.Context, userID string) ([]models.FavoriteEntry, error) {
		if userID == "u2" {
			return nil, errors.New("timeout")
		}
		return []models.FavoriteEntry{{ID: "f1", UserID: userID, ProductID: "private"}}, nil
	}
	m := newTestManager(t, localstore.NewMemorySlots(), repo)
	ctx := context.Background()
	s := mustSession(t, m, "s1")

	s.SetUser(ctx, &models.User{ID: "u1"})
	if !s.Favorites.IsFavorite("private") {
		t.Fatalf("expected u1 favorites")
	}

	s.SetUser(ctx, &models.User{ID: "u2"})
	if s.Favorites.IsFavorite("private") || len(s.Favorites.List()) != 0 {
		t.Fatalf("u2 must not see u1 favorites, got %+v", s.Favorites.List())
	}

	// a failed refetch for the same user keeps what it had
	repo.ListFavoritesFn = func(ctx context.Context, userID string) ([]models.FavoriteEntry, error) {
		return []models.FavoriteEntry{{ID: "f2", UserID: userID, ProductID: "mine"}}, nil
	}
	s.Favorites.FetchFavorites(ctx)
	repo.ListFavoritesFn = func(ctx context.Context, userID string) ([]models.FavoriteEntry, error) {
		return nil, errors.New("timeout")
	}
	s.Favorites.FetchFavorites(ctx)
	if !s.Favorites.IsFavorite("mine") {
		t.Fatalf("expected same-user cache to survive a failed refetch")
	}
}

func TestSessionManager_ReadErrorIsNotCached(t *testing.T) {
	mem := localstore.NewMemorySlots()
	ctx := context.Background()

	seed := mustSession(t, newTestManager(t, mem, okRepo()), "s1")
	seed.Cart.AddToCart(ctx, product(t, "p1", "1"))
	seed.Cart.AddToCart(ctx, product(t, "p2", "1"))

	slots := &flakySlots{Slots: mem, failures: 1}
	m := newTestManager(t, slots, okRepo())

	if _, err := m.Get(ctx, "s1"); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("a session that failed to load must not be kept")
	}

	s := mustSession(t, m, "s1")
	s.Cart.AddToCart(ctx, product(t, "p3", "1"))
	if len(s.Cart.Items()) != 3 {
		t.Fatalf("expected stored lines to survive, got %+v", s.Cart.Items())
	}

	reloaded := mustSession(t, newTestManager(t, mem, okRepo()), "s1")
	if len(reloaded.Cart.Items()) != 3 {
		t.Fatalf("expected 3 stored lines, got %d", len(reloaded.Cart.Items()))
	}
}

func TestSessionManager_ComparisonReadError(t *testing.T) {
	mem := localstore.NewMemorySlots()
	ctx := context.Background()

	seed := mustSession(t, newTestManager(t, mem, okRepo()), "s1")
	seed.Comparison.AddToCompare(ctx, product(t, "p1", "1"))

	slots := &flakySlots{Slots: mem, failures: 1, key: localstore.Key("s1", CompareSlot)}
	m := newTestManager(t, slots, okRepo())
	if _, err := m.Get(ctx, "s1"); err == nil {
		t.Fatalf("expected comparison read error to fail the load")
	}
	if s := mustSession(t, m, "s1"); !s.Comparison.IsInCompare("p1") {
		t.Fatalf("expected stored comparison list after retry")
	}
}
