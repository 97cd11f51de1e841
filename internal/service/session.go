package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/dtroode/imagestudio/internal/logger"
	"github.com/dtroode/imagestudio/internal/model"
)

var _ model.SessionManager = (*SessionStore)(nil)

// SessionStore owns the authenticated session and mirrors it into durable
// local storage.
type SessionStore struct {
	backend model.Backend
	storage model.LocalStorage
	logger  *logger.Logger

	mu      sync.RWMutex
	current model.Session
}

func NewSessionStore(
	backend model.Backend,
	storage model.LocalStorage,
	logger *logger.Logger,
) *SessionStore {
	return &SessionStore{
		backend: backend,
		storage: storage,
		logger:  logger,
	}
}

// Restore loads a session persisted by an earlier run. A half-written
// session, one entry without the other, is removed.
func (s *SessionStore) Restore(ctx context.Context) (model.Session, bool, error) {
	entries, err := s.storage.Get(ctx, model.SessionKeys...)
	if err != nil {
		s.logger.Error("Session service: failed to read stored session",
			"error", err.Error())
		return model.Session{}, false, fmt.Errorf("failed to read stored session: %w", err)
	}

	session, ok := model.SessionFromEntries(entries)
	if ok {
		s.set(session)
		s.logger.Info("Session service: session restored",
			"email", session.Email)
		return session, true, nil
	}

	if len(entries) == 0 {
		return model.Session{}, false, nil
	}

	s.logger.Info("Session service: removing partial session",
		"entries", len(entries))

	err = s.storage.Remove(ctx, model.SessionKeys...)
	if err != nil {
		s.logger.Error("Session service: failed to remove partial session",
			"error", err.Error())
		return model.Session{}, false, fmt.Errorf("failed to remove partial session: %w", err)
	}

	return model.Session{}, false, nil
}

// Current returns the active session.
func (s *SessionStore) Current() (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current, s.current.Valid()
}

func (s *SessionStore) Login(ctx context.Context, email, password string) (model.Session, error) {
	s.logger.Debug("Session service: logging in",
		"email", email)

	if email == "" || password == "" {
		return model.Session{}, model.ErrEmptyCredentials
	}

	res, err := s.backend.Login(ctx, model.Credentials{Email: email, Password: password})
	if err != nil {
		s.logger.Error("Session service: login failed",
			"email", email,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to login: %w", err)
	}

	return s.establish(ctx, "login", res)
}

func (s *SessionStore) Register(ctx context.Context, email, password, confirmPassword string) (model.Session, error) {
	s.logger.Debug("Session service: registering",
		"email", email)

	if email == "" || password == "" {
		return model.Session{}, model.ErrEmptyCredentials
	}
	if password != confirmPassword {
		return model.Session{}, model.ErrPasswordMismatch
	}

	res, err := s.backend.Register(ctx, model.Credentials{Email: email, Password: password})
	if err != nil {
		s.logger.Error("Session service: registration failed",
			"email", email,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to register: %w", err)
	}

	return s.establish(ctx, "register", res)
}

// Logout forgets the session. Memory is cleared even when the durable
// entries cannot be removed.
func (s *SessionStore) Logout(ctx context.Context) error {
	previous, _ := s.Current()
	s.set(model.Session{})

	err := s.storage.Remove(ctx, model.SessionKeys...)
	if err != nil {
		s.logger.Error("Session service: failed to remove stored session",
			"email", previous.Email,
			"error", err.Error())
		return fmt.Errorf("failed to remove stored session: %w", err)
	}

	s.logger.Info("Session service: logged out",
		"email", previous.Email)

	return nil
}

// establish persists a session from an auth response and only then
// activates it.
func (s *SessionStore) establish(ctx context.Context, op string, res model.AuthResult) (model.Session, error) {
	session := model.Session{Email: res.Email, UserID: res.UserID}
	if !session.Valid() {
		s.logger.Error("Session service: auth response lacks identity",
			"op", op)
		return model.Session{}, fmt.Errorf("%s response without email or user_id: %w", op, model.ErrMalformedResponse)
	}

	err := s.storage.Set(ctx, session.Entries())
	if err != nil {
		s.logger.Error("Session service: failed to store session",
			"op", op,
			"email", session.Email,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to store session: %w", err)
	}

	s.set(session)

	s.logger.Info("Session service: session established",
		"op", op,
		"email", session.Email,
		"user_id", session.UserID)

	return session, nil
}

func (s *SessionStore) set(session model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = session
}
