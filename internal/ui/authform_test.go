package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/imagestudio/internal/model"
)

func TestAuthForm_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		form    AuthForm
		wantErr error
	}{
		{name: "login ok", form: AuthForm{Email: "a@b.c", Password: "pw"}},
		{name: "login empty", form: AuthForm{Email: "a@b.c"}, wantErr: model.ErrEmptyCredentials},
		{name: "register ok", form: AuthForm{Mode: AuthModeRegister, Email: "a@b.c", Password: "pw", ConfirmPassword: "pw"}},
		{name: "register mismatch", form: AuthForm{Mode: AuthModeRegister, Email: "a@b.c", Password: "pw", ConfirmPassword: "wp"}, wantErr: model.ErrPasswordMismatch},
		{name: "login ignores confirm", form: AuthForm{Email: "a@b.c", Password: "pw", ConfirmPassword: "other"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.form.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthForm_Lifecycle(t *testing.T) {
	f := AuthForm{Mode: AuthModeRegister, Email: "a@b.c", Password: "pw", ConfirmPassword: "pw"}
	assert.Equal(t, "Register", f.ButtonLabel())

	require.NoError(t, f.Begin())
	assert.True(t, f.Busy)
	assert.Equal(t, "Processing...", f.ButtonLabel())
	assert.ErrorIs(t, f.Begin(), model.ErrBusy)

	detail := "Email already registered"
	f.Finish(&model.APIError{StatusCode: 400, Detail: &detail})
	assert.False(t, f.Busy)
	assert.Equal(t, detail, f.Message)
	assert.Equal(t, "a@b.c", f.Email)

	require.NoError(t, f.Begin())
	f.Finish(nil)
	assert.Equal(t, AuthForm{Mode: AuthModeRegister}, f)
}

func TestAuthForm_Messages(t *testing.T) {
	f := AuthForm{Mode: AuthModeRegister, Email: "a@b.c", Password: "one", ConfirmPassword: "two"}
	require.Error(t, f.Begin())
	assert.Equal(t, "Passwords do not match.", f.Message)
	assert.False(t, f.Busy)

	f = AuthForm{Email: "a@b.c", Password: "pw"}
	require.NoError(t, f.Begin())
	f.Finish(&model.APIError{StatusCode: 500})
	assert.Equal(t, "Authentication failed", f.Message)

	require.NoError(t, f.Begin())
	f.Finish(&model.ConnectivityError{Op: "login", Err: errors.New("refused")})
	assert.Equal(t, "Failed to connect to the server. Check that it is running.", f.Message)
}

func TestAuthForm_Toggle(t *testing.T) {
	f := AuthForm{Message: "old"}
	f.Toggle()
	assert.Equal(t, AuthModeRegister, f.Mode)
	assert.Empty(t, f.Message)
	assert.Equal(t, "register", f.Mode.String())
	f.Toggle()
	assert.Equal(t, AuthModeLogin, f.Mode)
}
