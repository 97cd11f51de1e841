package ui

import (
	"github.com/dtroode/imagestudio/internal/model"
)

// AuthMode selects what the auth form submits.
type AuthMode int

const (
	AuthModeLogin AuthMode = iota
	AuthModeRegister
)

func (m AuthMode) String() string {
	if m == AuthModeRegister {
		return "register"
	}
	return "login"
}

var authFallback = model.Fallback{
	Rejected:    "Authentication failed",
	Unreachable: model.DefaultUnreachable,
}

// AuthForm holds the state of the login/register dialog.
type AuthForm struct {
	Mode            AuthMode
	Email           string
	Password        string
	ConfirmPassword string
	Busy            bool
	Message         string
}

// Toggle flips between login and register and clears the message.
func (f *AuthForm) Toggle() {
	if f.Mode == AuthModeLogin {
		f.Mode = AuthModeRegister
	} else {
		f.Mode = AuthModeLogin
	}
	f.Message = ""
}

// Validate checks the fields without contacting the server.
func (f *AuthForm) Validate() error {
	if f.Email == "" || f.Password == "" {
		return model.ErrEmptyCredentials
	}
	if f.Mode == AuthModeRegister && f.Password != f.ConfirmPassword {
		return model.ErrPasswordMismatch
	}
	return nil
}

// Begin marks the form as submitting. It fails when a submission is already
// outstanding or the fields are invalid; the message is updated either way.
func (f *AuthForm) Begin() error {
	if f.Busy {
		return model.ErrBusy
	}

	if err := f.Validate(); err != nil {
		f.Message = model.UserMessage(err, authFallback)
		return err
	}

	f.Busy = true
	f.Message = ""

	return nil
}

// Finish records the outcome of a submission. A success clears the form.
func (f *AuthForm) Finish(err error) {
	f.Busy = false

	if err != nil {
		f.Message = model.UserMessage(err, authFallback)
		return
	}

	*f = AuthForm{Mode: f.Mode}
}

// ButtonLabel is what the submit button would read.
func (f *AuthForm) ButtonLabel() string {
	switch {
	case f.Busy:
		return "Processing..."
	case f.Mode == AuthModeRegister:
		return "Register"
	default:
		return "Login"
	}
}
