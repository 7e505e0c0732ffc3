package user

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock type for the Store type
type MockStore struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, profile
func (_m *MockStore) Create(ctx context.Context, profile NewProfile) (Profile, error) {
	ret := _m.Called(ctx, profile)

	return ret.Get(0).(Profile), ret.Error(1)
}

// NewMockStore creates a new instance of MockStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStore {
	m := &MockStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
