package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/feria/app/apperr"
	"github.com/shashiranjanraj/feria/app/models"
	"github.com/shashiranjanraj/feria/pkg/metrics"
	"github.com/shashiranjanraj/feria/pkg/mongodb"
)

// ProductFilter narrows and pages product listings.
type ProductFilter struct {
	Name     string // case-insensitive substring
	Store    *primitive.ObjectID
	Category *primitive.ObjectID
	Active   *bool
	Sort     string
	Page     int
	Limit    int
}

var productSortFields = map[string]bool{
	"createdAt": true,
	"price":     true,
	"name":      true,
	"rating":    true,
	"sold":      true,
}

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{col: mongodb.Collection("products")}
}

// FindByID looks up a product by its id.
func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	defer metrics.ObserveMongoOp("products.find_by_id", time.Now())

	var product models.Product
	err := r.col.FindOne(ctx, byID(id)).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return product, apperr.NotFoundf("product %s not found", id.Hex())
	}
	return product, err
}

// FindByStoreAndName resolves a product from an order line-item snapshot.
func (r *ProductRepository) FindByStoreAndName(ctx context.Context, storeID primitive.ObjectID, name string) (models.Product, error) {
	defer metrics.ObserveMongoOp("products.find_by_store_and_name", time.Now())

	var product models.Product
	err := r.col.FindOne(ctx, bson.M{"store": storeID, "name": name}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return product, apperr.NotFoundf("product %q not found in store %s", name, storeID.Hex())
	}
	return product, err
}

// Insert persists a new product record.
func (r *ProductRepository) Insert(ctx context.Context, product *models.Product) error {
	defer metrics.ObserveMongoOp("products.insert", time.Now())

	now := time.Now()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, product)
	return err
}

// Update replaces an existing product document.
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	defer metrics.ObserveMongoOp("products.update", time.Now())

	product.UpdatedAt = time.Now()
	res, err := r.col.ReplaceOne(ctx, byID(product.ID), product)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("product %s not found", product.ID.Hex())
	}
	return nil
}

// List returns a page of products matching the filter and the total count.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	defer metrics.ObserveMongoOp("products.list", time.Now())

	filter := bson.M{}
	if f.Name != "" {
		filter["name"] = containsRegex(f.Name)
	}
	if f.Store != nil {
		filter["store"] = *f.Store
	}
	if f.Category != nil {
		filter["category"] = *f.Category
	}
	if f.Active != nil {
		filter["active"] = *f.Active
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sort := bson.D{{Key: "createdAt", Value: -1}}
	if f.Sort != "" {
		field, dir := f.Sort, 1
		if field[0] == '-' {
			field, dir = field[1:], -1
		}
		if productSortFields[field] {
			sort = bson.D{{Key: field, Value: dir}}
		}
	}

	skip, lim := pageOpts(f.Page, f.Limit)
	opts := options.Find().SetSort(sort).SetSkip(skip).SetLimit(lim)

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// IncSold atomically bumps the sold counter by the given quantity.
func (r *ProductRepository) IncSold(ctx context.Context, id primitive.ObjectID, qty int64) error {
	defer metrics.ObserveMongoOp("products.inc_sold", time.Now())

	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{"sold": qty},
		"$set": bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("product %s not found", id.Hex())
	}
	return nil
}

// SetReviews replaces the embedded review list and its derived aggregates.
func (r *ProductRepository) SetReviews(ctx context.Context, productID primitive.ObjectID, reviews []models.Review, rating float64, numReviews int) error {
	defer metrics.ObserveMongoOp("products.set_reviews", time.Now())

	res, err := r.col.UpdateByID(ctx, productID, bson.M{
		"$set": bson.M{
			"reviews":    reviews,
			"rating":     rating,
			"numReviews": numReviews,
			"updatedAt":  time.Now(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("product %s not found", productID.Hex())
	}
	return nil
}

// DeleteByStore removes every product belonging to a store.
func (r *ProductRepository) DeleteByStore(ctx context.Context, storeID primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("products.delete_by_store", time.Now())

	_, err := r.col.DeleteMany(ctx, bson.M{"store": storeID})
	return err
}

// Delete removes a product document.
func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("products.delete", time.Now())

	res, err := r.col.DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFoundf("product %s not found", id.Hex())
	}
	return nil
}
