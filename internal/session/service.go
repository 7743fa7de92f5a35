// Package session owns "who is logged in" for the gateway process: the
// session service, the login protocol that reconciles the intended role with
// the server-assigned one, and the token refresh procedure. All durable
// state goes through an injected credstore.Store.
package session

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/SchoolPulse/SP-Gateway/internal/credstore"
	"github.com/SchoolPulse/SP-Gateway/internal/roles"
)

// Service is the single source of truth for the current session. Writes go
// through Login, Logout, UpdateProfile, and the refresh procedure's token
// update; everything else is a pure read. Memory and store move in lockstep
// through every mutation.
type Service struct {
	store credstore.Store

	mu      sync.RWMutex
	current *Session
	// seq numbers login attempts; a login result that resolves after a newer
	// attempt or a logout has started is discarded instead of committed.
	seq uint64

	hydrateOnce sync.Once
}

func NewService(store credstore.Store) *Service {
	return &Service{store: store}
}

// Hydrate restores the session from the credential store. It runs once per
// process, never fails, and treats anything absent or malformed as "logged
// out" rather than guessing at an identity.
func (s *Service) Hydrate() {
	s.hydrateOnce.Do(func() {
		raw, err := s.store.Get(credstore.KeySession)
		if err != nil {
			if !errors.Is(err, credstore.ErrNotFound) {
				log.Printf("[session] hydrate: store read failed, starting logged out: %v", err)
			}
			return
		}

		var stored storedSession
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			log.Printf("[session] hydrate: malformed session record, starting logged out: %v", err)
			return
		}
		role, err := roles.Parse(stored.Role)
		if err != nil {
			log.Printf("[session] hydrate: stored record has invalid role, starting logged out: %v", err)
			return
		}

		sess := Session{
			UserID:      stored.UserID,
			DisplayName: stored.DisplayName,
			Email:       stored.Email,
			Username:    stored.Username,
			Role:        role,
			AvatarURL:   stored.AvatarURL,
		}
		if access, err := s.store.Get(credstore.KeyAccessToken); err == nil {
			sess.AccessToken = access
		}
		if refresh, err := s.store.Get(credstore.KeyRefreshToken); err == nil {
			sess.RefreshToken = refresh
		}

		s.mu.Lock()
		s.current = &sess
		s.mu.Unlock()
		log.Printf("[session] hydrated session for %s role=%s", sess.Username, sess.Role)
	})
}

// Login replaces the current session wholesale and persists it. The new
// session is visible to every subsequent read before Login returns.
func (s *Service) Login(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(sess)
}

func (s *Service) commitLocked(sess Session) error {
	if err := s.persist(sess); err != nil {
		return err
	}
	s.current = &sess
	return nil
}

func (s *Service) persist(sess Session) error {
	record, err := json.Marshal(storedSession{
		UserID:      sess.UserID,
		DisplayName: sess.DisplayName,
		Email:       sess.Email,
		Username:    sess.Username,
		Role:        string(sess.Role),
		AvatarURL:   sess.AvatarURL,
	})
	if err != nil {
		return err
	}
	if err := s.store.Set(credstore.KeySession, string(record)); err != nil {
		return err
	}
	if err := s.store.Set(credstore.KeyAccessToken, sess.AccessToken); err != nil {
		return err
	}
	return s.store.Set(credstore.KeyRefreshToken, sess.RefreshToken)
}

// Logout clears the session and deletes every credential key. It also
// invalidates any login attempt still in flight.
func (s *Service) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.current = nil

	var firstErr error
	for _, key := range []string{credstore.KeyAccessToken, credstore.KeyRefreshToken, credstore.KeySession} {
		if err := s.store.Delete(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// HasRole reports whether a session exists and holds exactly the given role.
// There is no hierarchy here: an admin session does not satisfy HasRole(Staff).
func (s *Service) HasRole(r roles.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.Role == r
}

// IsAuthenticated reports whether any session exists.
func (s *Service) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// CurrentRole returns the current session's role, if a session exists.
func (s *Service) CurrentRole() (roles.Role, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return "", false
	}
	return s.current.Role, true
}

// Current returns a copy of the session, if any. Callers get a snapshot;
// mutating it changes nothing.
func (s *Service) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// UpdateProfile changes display fields only. Role and tokens are not
// reachable through this path.
func (s *Service) UpdateProfile(displayName, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return errors.New("no active session")
	}

	updated := *s.current
	if displayName != "" {
		updated.DisplayName = displayName
	}
	if avatarURL != "" {
		updated.AvatarURL = avatarURL
	}
	return s.commitLocked(updated)
}

// updateTokens overwrites the stored token pair and the in-memory token
// fields. Used only by the refresh procedure; profile fields and role are
// untouched, so route guards are unaffected.
func (s *Service) updateTokens(accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(credstore.KeyAccessToken, accessToken); err != nil {
		return err
	}
	if refreshToken != "" {
		if err := s.store.Set(credstore.KeyRefreshToken, refreshToken); err != nil {
			return err
		}
	}

	if s.current != nil {
		sess := *s.current
		sess.AccessToken = accessToken
		if refreshToken != "" {
			sess.RefreshToken = refreshToken
		}
		s.current = &sess
	}
	return nil
}

// beginAttempt hands the login protocol a ticket for one attempt.
func (s *Service) beginAttempt() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// commitAttempt installs the session only if no newer attempt or logout has
// started since the ticket was issued. A stale result is dropped.
func (s *Service) commitAttempt(ticket uint64, sess Session) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.seq {
		return false, nil
	}
	if err := s.commitLocked(sess); err != nil {
		return false, err
	}
	return true, nil
}
