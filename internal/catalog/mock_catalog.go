package catalog

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCatalog is a mock type for the Catalog type
type MockCatalog struct {
	mock.Mock
}

// ListShops provides a mock function with given fields: ctx, filter
func (_m *MockCatalog) ListShops(ctx context.Context, filter ShopFilter) ([]Shop, error) {
	ret := _m.Called(ctx, filter)

	var r0 []Shop
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Shop)
	}

	return r0, ret.Error(1)
}

// ShopBySlug provides a mock function with given fields: ctx, slug
func (_m *MockCatalog) ShopBySlug(ctx context.Context, slug string) (Shop, error) {
	ret := _m.Called(ctx, slug)

	return ret.Get(0).(Shop), ret.Error(1)
}

// ProductBySlug provides a mock function with given fields: ctx, slug
func (_m *MockCatalog) ProductBySlug(ctx context.Context, slug string) (Product, error) {
	ret := _m.Called(ctx, slug)

	return ret.Get(0).(Product), ret.Error(1)
}

// ProductsByShop provides a mock function with given fields: ctx, shopSlug
func (_m *MockCatalog) ProductsByShop(ctx context.Context, shopSlug string) ([]Product, error) {
	ret := _m.Called(ctx, shopSlug)

	var r0 []Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Product)
	}

	return r0, ret.Error(1)
}

// NewMockCatalog creates a new instance of MockCatalog. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockCatalog(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCatalog {
	m := &MockCatalog{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
