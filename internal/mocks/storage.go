package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// LocalStorage is a mock type for the model.LocalStorage type.
type LocalStorage struct {
	mock.Mock
}

func (_m *LocalStorage) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	ret := _m.Called(ctx, keys)
	var entries map[string]string
	if v := ret.Get(0); v != nil {
		entries = v.(map[string]string)
	}
	return entries, ret.Error(1)
}

func (_m *LocalStorage) Set(ctx context.Context, items map[string]string) error {
	ret := _m.Called(ctx, items)
	return ret.Error(0)
}

func (_m *LocalStorage) Remove(ctx context.Context, keys ...string) error {
	ret := _m.Called(ctx, keys)
	return ret.Error(0)
}

func (_m *LocalStorage) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}

// NewLocalStorage creates a new instance of LocalStorage. It also registers
// a cleanup function to assert the mocks expectations.
func NewLocalStorage(t interface {
	mock.TestingT
	Cleanup(func())
}) *LocalStorage {
	m := &LocalStorage{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// ImageSink is a mock type for the model.ImageSink type.
type ImageSink struct {
	mock.Mock
}

func (_m *ImageSink) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	ret := _m.Called(ctx, name, contentType, data)
	return ret.String(0), ret.Error(1)
}

// NewImageSink creates a new instance of ImageSink. It also registers a
// cleanup function to assert the mocks expectations.
func NewImageSink(t interface {
	mock.TestingT
	Cleanup(func())
}) *ImageSink {
	m := &ImageSink{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
