package mongodb

import (
	"context"
	"errors"

	"github.com/goevery/orderrelay/internal/catalog"
	"github.com/goevery/orderrelay/internal/ierr"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type Catalog struct {
	shops    *mongo.Collection
	products *mongo.Collection
}

func NewCatalog(client *mongo.Client, databaseName string) *Catalog {
	database := client.Database(databaseName)

	return &Catalog{
		shops:    database.Collection("shops"),
		products: database.Collection("products"),
	}
}

func (c *Catalog) Setup(ctx context.Context) error {
	slugIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	shopCategoryIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "shop_category.slug", Value: 1}},
	}

	_, err := c.shops.Indexes().CreateMany(ctx, []mongo.IndexModel{slugIndexModel, shopCategoryIndexModel})
	if err != nil {
		return err
	}

	productShopIndexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "shop_slug", Value: 1},
			{Key: "title", Value: 1},
		},
	}

	_, err = c.products.Indexes().CreateMany(ctx, []mongo.IndexModel{slugIndexModel, productShopIndexModel})

	return err
}

func (c *Catalog) ListShops(ctx context.Context, filter catalog.ShopFilter) ([]catalog.Shop, error) {
	query := bson.M{}
	if filter.CategorySlug != "" {
		query["shop_category.slug"] = filter.CategorySlug
	}
	if filter.ActiveOnly {
		query["is_active"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "title", Value: 1}})

	cursor, err := c.shops.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	shops := []catalog.Shop{}
	if err := cursor.All(ctx, &shops); err != nil {
		return nil, err
	}

	return shops, nil
}

func (c *Catalog) ShopBySlug(ctx context.Context, slug string) (catalog.Shop, error) {
	var shop catalog.Shop

	err := c.shops.FindOne(ctx, bson.M{"slug": slug}).Decode(&shop)
	if err != nil {
		return catalog.Shop{}, notFoundOr(err, "shop not found")
	}

	return shop, nil
}

func (c *Catalog) ProductBySlug(ctx context.Context, slug string) (catalog.Product, error) {
	var product catalog.Product

	err := c.products.FindOne(ctx, bson.M{"slug": slug}).Decode(&product)
	if err != nil {
		return catalog.Product{}, notFoundOr(err, "product not found")
	}

	return product, nil
}

func (c *Catalog) ProductsByShop(ctx context.Context, shopSlug string) ([]catalog.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "title", Value: 1}})

	cursor, err := c.products.Find(ctx, bson.M{"shop_slug": shopSlug}, opts)
	if err != nil {
		return nil, err
	}

	products := []catalog.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	return products, nil
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ierr.New(ierr.ErrorCodeNotFound, errors.New(message))
	}

	return err
}
