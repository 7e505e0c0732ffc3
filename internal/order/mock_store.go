package order

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock type for the Store type
type MockStore struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, order
func (_m *MockStore) Create(ctx context.Context, order NewOrder) (Order, error) {
	ret := _m.Called(ctx, order)

	return ret.Get(0).(Order), ret.Error(1)
}

// List provides a mock function with given fields: ctx, filter
func (_m *MockStore) List(ctx context.Context, filter Filter) ([]Order, error) {
	ret := _m.Called(ctx, filter)

	var r0 []Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Order)
	}

	return r0, ret.Error(1)
}

// Get provides a mock function with given fields: ctx, orderId
func (_m *MockStore) Get(ctx context.Context, orderId string) (Order, error) {
	ret := _m.Called(ctx, orderId)

	return ret.Get(0).(Order), ret.Error(1)
}

// UpdateStatus provides a mock function with given fields: ctx, orderId, status
func (_m *MockStore) UpdateStatus(ctx context.Context, orderId string, status Status) (Order, error) {
	ret := _m.Called(ctx, orderId, status)

	return ret.Get(0).(Order), ret.Error(1)
}

// ConfirmPayment provides a mock function with given fields: ctx, confirmation
func (_m *MockStore) ConfirmPayment(ctx context.Context, confirmation PaymentConfirmation) error {
	ret := _m.Called(ctx, confirmation)

	return ret.Error(0)
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
