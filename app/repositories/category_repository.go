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

// CategoryRepository handles database operations for Category.
type CategoryRepository struct {
	col *mongo.Collection
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{col: mongodb.Collection("categories")}
}

// FindByID looks up a category by its id.
func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Category, error) {
	defer metrics.ObserveMongoOp("categories.find_by_id", time.Now())

	var category models.Category
	err := r.col.FindOne(ctx, byID(id)).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return category, apperr.NotFoundf("category %s not found", id.Hex())
	}
	return category, err
}

// Insert persists a new category record.
func (r *CategoryRepository) Insert(ctx context.Context, category *models.Category) error {
	defer metrics.ObserveMongoOp("categories.insert", time.Now())

	now := time.Now()
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	category.CreatedAt = now
	category.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, category)
	return err
}

// Update replaces an existing category document.
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	defer metrics.ObserveMongoOp("categories.update", time.Now())

	category.UpdatedAt = time.Now()
	res, err := r.col.ReplaceOne(ctx, byID(category.ID), category)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("category %s not found", category.ID.Hex())
	}
	return nil
}

// All returns every category, optionally scoped to one store.
func (r *CategoryRepository) All(ctx context.Context, storeID *primitive.ObjectID) ([]models.Category, error) {
	defer metrics.ObserveMongoOp("categories.all", time.Now())

	filter := bson.M{}
	if storeID != nil {
		filter["store"] = *storeID
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var categories []models.Category
	if err := cur.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// PushProduct appends a product back-reference to the category.
func (r *CategoryRepository) PushProduct(ctx context.Context, categoryID, productID primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("categories.push_product", time.Now())

	res, err := r.col.UpdateByID(ctx, categoryID, bson.M{
		"$push": bson.M{"product": productID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("category %s not found", categoryID.Hex())
	}
	return nil
}

// PullProduct removes a product back-reference from the category.
func (r *CategoryRepository) PullProduct(ctx context.Context, categoryID, productID primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("categories.pull_product", time.Now())

	_, err := r.col.UpdateByID(ctx, categoryID, bson.M{
		"$pull": bson.M{"product": productID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	return err
}

// DeleteByStore removes every category belonging to a store.
func (r *CategoryRepository) DeleteByStore(ctx context.Context, storeID primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("categories.delete_by_store", time.Now())

	_, err := r.col.DeleteMany(ctx, bson.M{"store": storeID})
	return err
}

// Delete removes a category document.
func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("categories.delete", time.Now())

	res, err := r.col.DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFoundf("category %s not found", id.Hex())
	}
	return nil
}
