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

// StoreFilter narrows and pages store listings.
type StoreFilter struct {
	Name   string // case-insensitive substring
	City   string // case-insensitive substring
	Active *bool
	Page   int
	Limit  int
}

// StoreRepository handles database operations for Store.
type StoreRepository struct {
	col *mongo.Collection
}

func NewStoreRepository() *StoreRepository {
	return &StoreRepository{col: mongodb.Collection("stores")}
}

// FindByID looks up a store by its id.
func (r *StoreRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Store, error) {
	defer metrics.ObserveMongoOp("stores.find_by_id", time.Now())

	var store models.Store
	err := r.col.FindOne(ctx, byID(id)).Decode(&store)
	if err == mongo.ErrNoDocuments {
		return store, apperr.NotFoundf("store %s not found", id.Hex())
	}
	return store, err
}

// Insert persists a new store record.
func (r *StoreRepository) Insert(ctx context.Context, store *models.Store) error {
	defer metrics.ObserveMongoOp("stores.insert", time.Now())

	now := time.Now()
	if store.ID.IsZero() {
		store.ID = primitive.NewObjectID()
	}
	store.CreatedAt = now
	store.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, store)
	return err
}

// Update replaces an existing store document.
func (r *StoreRepository) Update(ctx context.Context, store *models.Store) error {
	defer metrics.ObserveMongoOp("stores.update", time.Now())

	store.UpdatedAt = time.Now()
	res, err := r.col.ReplaceOne(ctx, byID(store.ID), store)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("store %s not found", store.ID.Hex())
	}
	return nil
}

// List returns a page of stores matching the filter and the total count.
func (r *StoreRepository) List(ctx context.Context, f StoreFilter) ([]models.Store, int64, error) {
	defer metrics.ObserveMongoOp("stores.list", time.Now())

	filter := bson.M{}
	if f.Name != "" {
		filter["name"] = containsRegex(f.Name)
	}
	if f.City != "" {
		filter["city"] = containsRegex(f.City)
	}
	if f.Active != nil {
		filter["active"] = *f.Active
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip, lim := pageOpts(f.Page, f.Limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(lim)

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var stores []models.Store
	if err := cur.All(ctx, &stores); err != nil {
		return nil, 0, err
	}
	return stores, total, nil
}

// PushOrder registers an order on the store.
func (r *StoreRepository) PushOrder(ctx context.Context, storeID, orderID primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("stores.push_order", time.Now())

	res, err := r.col.UpdateByID(ctx, storeID, bson.M{
		"$push": bson.M{"orders": orderID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("store %s not found", storeID.Hex())
	}
	return nil
}

// PullOrder removes an order back-reference from the store.
func (r *StoreRepository) PullOrder(ctx context.Context, storeID, orderID primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("stores.pull_order", time.Now())

	_, err := r.col.UpdateByID(ctx, storeID, bson.M{
		"$pull": bson.M{"orders": orderID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	return err
}

// PushCategory appends a category back-reference to the store.
func (r *StoreRepository) PushCategory(ctx context.Context, storeID, categoryID primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("stores.push_category", time.Now())

	res, err := r.col.UpdateByID(ctx, storeID, bson.M{
		"$push": bson.M{"category": categoryID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("store %s not found", storeID.Hex())
	}
	return nil
}

// PullCategory removes a category back-reference from the store.
func (r *StoreRepository) PullCategory(ctx context.Context, storeID, categoryID primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("stores.pull_category", time.Now())

	_, err := r.col.UpdateByID(ctx, storeID, bson.M{
		"$pull": bson.M{"category": categoryID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	return err
}

// SetReviews replaces the embedded review list and its derived aggregates.
func (r *StoreRepository) SetReviews(ctx context.Context, storeID primitive.ObjectID, reviews []models.Review, rating float64, numReviews int) error {
	defer metrics.ObserveMongoOp("stores.set_reviews", time.Now())

	res, err := r.col.UpdateByID(ctx, storeID, bson.M{
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
		return apperr.NotFoundf("store %s not found", storeID.Hex())
	}
	return nil
}

// Delete removes a store document.
func (r *StoreRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("stores.delete", time.Now())

	res, err := r.col.DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFoundf("store %s not found", id.Hex())
	}
	return nil
}
