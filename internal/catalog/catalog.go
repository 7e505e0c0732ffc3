// Package catalog is the read-only view of shops, products and categories
// published by the content store.
package catalog

import (
	"context"
	"math"
	"sort"
)

type Image struct {
	URL      string `json:"url" bson:"url"`
	ImgixURL string `json:"imgix_url" bson:"imgix_url"`
}

type Category struct {
	Id          string `json:"id" bson:"_id"`
	Slug        string `json:"slug" bson:"slug"`
	Title       string `json:"title" bson:"title"`
	Name        string `json:"category_name" bson:"category_name"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Icon        string `json:"icon,omitempty" bson:"icon,omitempty"`
}

type Shop struct {
	Id             string    `json:"id" bson:"_id"`
	Slug           string    `json:"slug" bson:"slug"`
	Title          string    `json:"title" bson:"title"`
	Name           string    `json:"shop_name" bson:"shop_name"`
	Description    string    `json:"description,omitempty" bson:"description,omitempty"`
	Address        string    `json:"location_address" bson:"location_address"`
	Latitude       float64   `json:"latitude" bson:"latitude"`
	Longitude      float64   `json:"longitude" bson:"longitude"`
	ContactPhone   string    `json:"contact_phone" bson:"contact_phone"`
	OperatingHours string    `json:"operating_hours,omitempty" bson:"operating_hours,omitempty"`
	Category       *Category `json:"shop_category,omitempty" bson:"shop_category,omitempty"`
	FeaturedImage  *Image    `json:"featured_image,omitempty" bson:"featured_image,omitempty"`
	IsActive       bool      `json:"is_active" bson:"is_active"`
}

type Product struct {
	Id            string    `json:"id" bson:"_id"`
	Slug          string    `json:"slug" bson:"slug"`
	Title         string    `json:"title" bson:"title"`
	Name          string    `json:"product_name" bson:"product_name"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty"`
	Price         float64   `json:"price" bson:"price"`
	StockQuantity int       `json:"stock_quantity" bson:"stock_quantity"`
	Category      *Category `json:"category,omitempty" bson:"category,omitempty"`
	ShopSlug      string    `json:"shop_slug" bson:"shop_slug"`
	Image         *Image    `json:"product_image,omitempty" bson:"product_image,omitempty"`
	InStock       bool      `json:"in_stock" bson:"in_stock"`
}

type ShopFilter struct {
	CategorySlug string
	ActiveOnly   bool
}

type Catalog interface {
	ListShops(ctx context.Context, filter ShopFilter) ([]Shop, error)
	ShopBySlug(ctx context.Context, slug string) (Shop, error)
	ProductBySlug(ctx context.Context, slug string) (Product, error)
	ProductsByShop(ctx context.Context, shopSlug string) ([]Product, error)
}

const earthRadiusKm = 6371

// Distance is the great-circle distance in kilometres between two points.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

type NearbyShop struct {
	Shop
	Distance float64 `json:"distance"`
}

// Nearby keeps active shops within radiusKm of the point, closest first.
func Nearby(shops []Shop, lat, lng, radiusKm float64) []NearbyShop {
	nearby := make([]NearbyShop, 0, len(shops))
	for _, shop := range shops {
		if !shop.IsActive {
			continue
		}

		distance := Distance(lat, lng, shop.Latitude, shop.Longitude)
		if distance > radiusKm {
			continue
		}

		nearby = append(nearby, NearbyShop{Shop: shop, Distance: distance})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].Distance < nearby[j].Distance
	})

	return nearby
}
