package service

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"storefront/localstore"
	models "storefront/model"
	"storefront/store"
)

// Session bundles the aggregates of one browser profile. It is created once
// per session id and handed to callers by reference.
type Session struct {
	ID         string
	Cart       *Cart
	Favorites  *Favorites
	Comparison *Comparison
	Search     *Search
	Identity   *SessionIdentity
	Inbox      *Queue

	mu       sync.Mutex
	lastSeen time.Time
}

// SetUser records the signed-in user (nil when signed out). When the user
// changes, the favorites cache is emptied and refetched.
func (s *Session) SetUser(ctx context.Context, u *models.User) {
	if s.Identity.Set(u) {
		s.Favorites.reset()
		s.Favorites.FetchFavorites(ctx)
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// ErrStorageUnavailable is returned by Get when a session's durable state
// could not be read.
var ErrStorageUnavailable = errors.New("session storage unavailable")

// SessionManager owns every live Session.
type SessionManager struct {
	slots     localstore.Slots
	favorites store.FavoriteRepository
	log       logrus.FieldLogger
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	// per-session mutexes so that concurrent first requests for one id
	// build a single Session. Keys are session id -> *sync.Mutex.
	locks sync.Map
}

func NewSessionManager(slots localstore.Slots, favorites store.FavoriteRepository, log logrus.FieldLogger) *SessionManager {
	return &SessionManager{
		slots:     slots,
		favorites: favorites,
		log:       log,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// Get returns the session for id, building and rehydrating it on first use.
// If durable storage cannot be read the session is not kept, so the next
// call tries again.
func (m *SessionManager) Get(ctx context.Context, id string) (*Session, error) {
	if s := m.lookup(id); s != nil {
		return s, nil
	}

	unlock := m.lockFor(id)
	defer unlock()

	// another request may have built it while we waited
	if s := m.lookup(id); s != nil {
		return s, nil
	}

	s, err := m.build(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(ErrStorageUnavailable, "session %s: %v", id, err)
	}
	s.touch(m.now())
	m.mu.Lock()
	m.sessions[id] = s
	activeSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()
	return s, nil
}

func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than idle and returns how many were
// dropped. Their cart and comparison list stay in durable storage.
func (m *SessionManager) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			m.locks.Delete(id)
			n++
		}
	}
	activeSessions.Set(float64(len(m.sessions)))
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *SessionManager) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(idle); n > 0 {
				m.log.WithField("dropped", n).Debug("swept idle sessions")
			}
		}
	}
}

// lookup returns a live session and marks it seen. The touch happens under
// mu so Sweep cannot drop a session between lookup and use.
func (m *SessionManager) lookup(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.sessions[id]
	if s != nil {
		s.touch(m.now())
	}
	return s
}

func (m *SessionManager) build(ctx context.Context, id string) (*Session, error) {
	log := m.log.WithField("session_id", id)
	inbox := NewQueue(32)
	notifier := Tee{inbox, LogNotifier{Log: log}}
	identity := &SessionIdentity{}

	cartList := localstore.NewList[models.CartLineItem](m.slots, localstore.Key(id, CartSlot),
		localstore.ListOptions{DiscardCorrupt: true})
	compareList := localstore.NewList[models.Product](m.slots, localstore.Key(id, CompareSlot),
		localstore.ListOptions{MaxLen: MaxCompare})

	cart, err := LoadCart(ctx, cartList, notifier, log)
	if err != nil {
		return nil, err
	}
	comparison, err := LoadComparison(ctx, compareList, log)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:         id,
		Cart:       cart,
		Favorites:  NewFavorites(m.favorites, identity, notifier, log),
		Comparison: comparison,
		Search:     NewSearch(),
		Identity:   identity,
		Inbox:      inbox,
	}, nil
}

// lockFor acquires the process-local lock for a session id and returns the
// unlock func.
func (m *SessionManager) lockFor(id string) func() {
	if v, ok := m.locks.Load(id); ok {
		mtx := v.(*sync.Mutex)
		mtx.Lock()
		return mtx.Unlock
	}
	actual, _ := m.locks.LoadOrStore(id, &sync.Mutex{})
	mtx := actual.(*sync.Mutex)
	mtx.Lock()
	return mtx.Unlock
}
