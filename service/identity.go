package service

import (
	"sync"

	models "storefront/model"
)

// IdentityProvider exposes the currently authenticated user, or nil.
type IdentityProvider interface {
	CurrentUser() *models.User
}

// SessionIdentity holds the signed-in user of one session.
type SessionIdentity struct {
	mu   sync.RWMutex
	user *models.User
}

func (s *SessionIdentity) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Set replaces the current user and reports whether the user id changed.
func (s *SessionIdentity) Set(u *models.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := ""
	if s.user != nil {
		prev = s.user.ID
	}
	next := ""
	if u != nil {
		c := *u
		s.user = &c
		next = u.ID
	} else {
		s.user = nil
	}
	return prev != next
}
