package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/imagestudio/internal/model"
)

// Backend is a mock type for the model.Backend type.
type Backend struct {
	mock.Mock
}

func (_m *Backend) Register(ctx context.Context, creds model.Credentials) (model.AuthResult, error) {
	ret := _m.Called(ctx, creds)
	return ret.Get(0).(model.AuthResult), ret.Error(1)
}

func (_m *Backend) Login(ctx context.Context, creds model.Credentials) (model.AuthResult, error) {
	ret := _m.Called(ctx, creds)
	return ret.Get(0).(model.AuthResult), ret.Error(1)
}

func (_m *Backend) Generate(ctx context.Context, params model.GenerateParams) (model.GenerateResult, error) {
	ret := _m.Called(ctx, params)
	return ret.Get(0).(model.GenerateResult), ret.Error(1)
}

func (_m *Backend) Describe(ctx context.Context, params model.DescribeParams) (model.DescribeResult, error) {
	ret := _m.Called(ctx, params)
	return ret.Get(0).(model.DescribeResult), ret.Error(1)
}

func (_m *Backend) ListImages(ctx context.Context, userID string) ([]model.ImageRecord, error) {
	ret := _m.Called(ctx, userID)
	var images []model.ImageRecord
	if v := ret.Get(0); v != nil {
		images = v.([]model.ImageRecord)
	}
	return images, ret.Error(1)
}

func (_m *Backend) DeleteImage(ctx context.Context, imageID, userID string) error {
	ret := _m.Called(ctx, imageID, userID)
	return ret.Error(0)
}

// NewBackend creates a new instance of Backend. It also registers a cleanup
// function to assert the mocks expectations.
func NewBackend(t interface {
	mock.TestingT
	Cleanup(func())
}) *Backend {
	m := &Backend{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
