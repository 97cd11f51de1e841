package model

import "context"

// Durable storage keys mirroring the session. They are always written and
// removed together.
const (
	StorageKeyEmail  = "userMail"
	StorageKeyUserID = "userId"
)

// SessionKeys lists every durable entry that makes up a session.
var SessionKeys = []string{StorageKeyEmail, StorageKeyUserID}

// Session is the client-held proof of an authenticated user.
type Session struct {
	Email  string
	UserID string
}

// Valid reports whether both identifier fields are present.
func (s Session) Valid() bool {
	return s.Email != "" && s.UserID != ""
}

// Entries returns the durable representation of the session.
func (s Session) Entries() map[string]string {
	return map[string]string{
		StorageKeyEmail:  s.Email,
		StorageKeyUserID: s.UserID,
	}
}

// SessionFromEntries rebuilds a session from durable entries. The second
// value is false unless both entries are present and non-empty.
func SessionFromEntries(entries map[string]string) (Session, bool) {
	s := Session{
		Email:  entries[StorageKeyEmail],
		UserID: entries[StorageKeyUserID],
	}
	return s, s.Valid()
}

// SessionProvider exposes the active session to views and services.
type SessionProvider interface {
	Current() (Session, bool)
}

// SessionManager is the session store used by the shell.
type SessionManager interface {
	SessionProvider
	Login(ctx context.Context, email, password string) (Session, error)
	Register(ctx context.Context, email, password, confirmPassword string) (Session, error)
	Logout(ctx context.Context) error
}
