package handler

import (
	"context"
	"errors"

	"github.com/goevery/orderrelay/internal/catalog"
	"github.com/goevery/orderrelay/internal/ierr"
)

const defaultNearbyRadiusKm = 5

type NearbyShopsRequest struct {
	Lat      *float64
	Lng      *float64
	RadiusKm *float64
}

type NearbyShopsResponse struct {
	Shops []catalog.NearbyShop `json:"shops"`
}

type ShopsResponse struct {
	Shops []catalog.Shop `json:"shops"`
}

type ShopResponse struct {
	Shop catalog.Shop `json:"shop"`
}

type ProductResponse struct {
	Product catalog.Product `json:"product"`
}

type ProductsResponse struct {
	Products []catalog.Product `json:"products"`
}

type CatalogHandlerInterface interface {
	Shops(ctx context.Context, categorySlug string) (ShopsResponse, error)
	Shop(ctx context.Context, slug string) (ShopResponse, error)
	ShopProducts(ctx context.Context, shopSlug string) (ProductsResponse, error)
	Product(ctx context.Context, slug string) (ProductResponse, error)
	NearbyShops(ctx context.Context, req NearbyShopsRequest) (NearbyShopsResponse, error)
}

type CatalogHandler struct {
	catalog catalog.Catalog
}

func NewCatalogHandler(shopCatalog catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{
		shopCatalog,
	}
}

func (h *CatalogHandler) Shops(ctx context.Context, categorySlug string) (ShopsResponse, error) {
	shops, err := h.catalog.ListShops(ctx, catalog.ShopFilter{CategorySlug: categorySlug})
	if err != nil {
		return ShopsResponse{}, err
	}

	return ShopsResponse{Shops: shops}, nil
}

func (h *CatalogHandler) Shop(ctx context.Context, slug string) (ShopResponse, error) {
	shop, err := h.catalog.ShopBySlug(ctx, slug)
	if err != nil {
		return ShopResponse{}, err
	}

	return ShopResponse{Shop: shop}, nil
}

func (h *CatalogHandler) ShopProducts(ctx context.Context, shopSlug string) (ProductsResponse, error) {
	products, err := h.catalog.ProductsByShop(ctx, shopSlug)
	if err != nil {
		return ProductsResponse{}, err
	}

	return ProductsResponse{Products: products}, nil
}

func (h *CatalogHandler) Product(ctx context.Context, slug string) (ProductResponse, error) {
	product, err := h.catalog.ProductBySlug(ctx, slug)
	if err != nil {
		return ProductResponse{}, err
	}

	return ProductResponse{Product: product}, nil
}

func (h *CatalogHandler) NearbyShops(ctx context.Context, req NearbyShopsRequest) (NearbyShopsResponse, error) {
	if req.Lat == nil || req.Lng == nil {
		return NearbyShopsResponse{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("Missing latitude or longitude"))
	}

	radiusKm := float64(defaultNearbyRadiusKm)
	if req.RadiusKm != nil {
		if *req.RadiusKm < 0 {
			return NearbyShopsResponse{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("Invalid radius"))
		}
		radiusKm = *req.RadiusKm
	}

	shops, err := h.catalog.ListShops(ctx, catalog.ShopFilter{ActiveOnly: true})
	if err != nil {
		return NearbyShopsResponse{}, err
	}

	return NearbyShopsResponse{
		Shops: catalog.Nearby(shops, *req.Lat, *req.Lng, radiusKm),
	}, nil
}
