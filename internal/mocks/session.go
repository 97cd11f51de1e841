package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/imagestudio/internal/model"
)

// SessionProvider is a mock type for the model.SessionProvider type.
type SessionProvider struct {
	mock.Mock
}

func (_m *SessionProvider) Current() (model.Session, bool) {
	ret := _m.Called()
	return ret.Get(0).(model.Session), ret.Bool(1)
}

// NewSessionProvider creates a new instance of SessionProvider. It also
// registers a cleanup function to assert the mocks expectations.
func NewSessionProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *SessionProvider {
	m := &SessionProvider{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
