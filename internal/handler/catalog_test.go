package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/goevery/orderrelay/internal/catalog"
	"github.com/goevery/orderrelay/internal/ierr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogHandler_NearbyShops(t *testing.T) {
	ctx := context.Background()
	lat, lng := 12.9716, 77.5946

	shops := []catalog.Shop{
		{Slug: "far", IsActive: true, Latitude: 13.10, Longitude: 77.5946},
		{Slug: "close", IsActive: true, Latitude: 12.9750, Longitude: 77.5950},
	}

	t.Run("default radius", func(t *testing.T) {
		shopCatalog := catalog.NewMockCatalog(t)
		catalogHandler := NewCatalogHandler(shopCatalog)

		shopCatalog.On("ListShops", ctx, catalog.ShopFilter{ActiveOnly: true}).Return(shops, nil).Once()

		res, err := catalogHandler.NearbyShops(ctx, NearbyShopsRequest{Lat: &lat, Lng: &lng})

		require.NoError(t, err)
		require.Len(t, res.Shops, 1)
		assert.Equal(t, "close", res.Shops[0].Slug)
	})

	t.Run("wider radius", func(t *testing.T) {
		shopCatalog := catalog.NewMockCatalog(t)
		catalogHandler := NewCatalogHandler(shopCatalog)

		shopCatalog.On("ListShops", ctx, catalog.ShopFilter{ActiveOnly: true}).Return(shops, nil).Once()

		radius := 20.0
		res, err := catalogHandler.NearbyShops(ctx, NearbyShopsRequest{Lat: &lat, Lng: &lng, RadiusKm: &radius})

		require.NoError(t, err)
		require.Len(t, res.Shops, 2)
		assert.Equal(t, "close", res.Shops[0].Slug)
		assert.Equal(t, "far", res.Shops[1].Slug)
	})

	t.Run("negative radius", func(t *testing.T) {
		catalogHandler := NewCatalogHandler(catalog.NewMockCatalog(t))

		radius := -1.0
		_, err := catalogHandler.NearbyShops(ctx, NearbyShopsRequest{Lat: &lat, Lng: &lng, RadiusKm: &radius})

		assert.Equal(t, ierr.ErrorCodeInvalidArgument, ierr.CodeOf(err))
	})

	t.Run("missing coordinates", func(t *testing.T) {
		catalogHandler := NewCatalogHandler(catalog.NewMockCatalog(t))

		_, err := catalogHandler.NearbyShops(ctx, NearbyShopsRequest{Lat: &lat})

		assert.Equal(t, ierr.ErrorCodeInvalidArgument, ierr.CodeOf(err))
	})
}

func TestCatalogHandler_Shop(t *testing.T) {
	ctx := context.Background()
	shopCatalog := catalog.NewMockCatalog(t)
	catalogHandler := NewCatalogHandler(shopCatalog)

	shopCatalog.On("ShopBySlug", ctx, "fresh-mart").Return(catalog.Shop{Slug: "fresh-mart", Title: "Fresh Mart"}, nil).Once()
	shopCatalog.On("ShopBySlug", ctx, "gone").
		Return(catalog.Shop{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("shop not found"))).Once()

	res, err := catalogHandler.Shop(ctx, "fresh-mart")
	require.NoError(t, err)
	assert.Equal(t, "Fresh Mart", res.Shop.Title)

	_, err = catalogHandler.Shop(ctx, "gone")
	assert.Equal(t, ierr.ErrorCodeNotFound, ierr.CodeOf(err))
}

func TestCatalogHandler_Shops(t *testing.T) {
	ctx := context.Background()
	shopCatalog := catalog.NewMockCatalog(t)
	catalogHandler := NewCatalogHandler(shopCatalog)

	shopCatalog.On("ListShops", ctx, catalog.ShopFilter{CategorySlug: "grocery"}).
		Return([]catalog.Shop{{Slug: "fresh-mart"}}, nil).Once()

	res, err := catalogHandler.Shops(ctx, "grocery")

	require.NoError(t, err)
	assert.Len(t, res.Shops, 1)
}
