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

// UserRepository handles database operations for User.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository() *UserRepository {
	return &UserRepository{col: mongodb.Collection("users")}
}

// FindByID looks up a user by their id.
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	defer metrics.ObserveMongoOp("users.find_by_id", time.Now())

	var user models.User
	err := r.col.FindOne(ctx, byID(id)).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return user, apperr.NotFoundf("user %s not found", id.Hex())
	}
	return user, err
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	defer metrics.ObserveMongoOp("users.find_by_email", time.Now())

	var user models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return user, apperr.NotFoundf("user with email %s not found", email)
	}
	return user, err
}

// Insert persists a new user record.
func (r *UserRepository) Insert(ctx context.Context, user *models.User) error {
	defer metrics.ObserveMongoOp("users.insert", time.Now())

	now := time.Now()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, user)
	return err
}

// Update replaces an existing user document.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	defer metrics.ObserveMongoOp("users.update", time.Now())

	user.UpdatedAt = time.Now()
	res, err := r.col.ReplaceOne(ctx, byID(user.ID), user)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("user %s not found", user.ID.Hex())
	}
	return nil
}

// All returns a page of users and the total count.
func (r *UserRepository) All(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	defer metrics.ObserveMongoOp("users.all", time.Now())

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	skip, lim := pageOpts(page, limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(lim)

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// PushOrder registers an order on the user and marks them a client.
func (r *UserRepository) PushOrder(ctx context.Context, userID, orderID primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("users.push_order", time.Now())

	res, err := r.col.UpdateByID(ctx, userID, bson.M{
		"$push": bson.M{"orders": orderID},
		"$set":  bson.M{"client": true, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("user %s not found", userID.Hex())
	}
	return nil
}

// PullOrder removes an order back-reference from the user.
func (r *UserRepository) PullOrder(ctx context.Context, userID, orderID primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("users.pull_order", time.Now())

	_, err := r.col.UpdateByID(ctx, userID, bson.M{
		"$pull": bson.M{"orders": orderID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	return err
}

// SetClient flips the user's client flag.
func (r *UserRepository) SetClient(ctx context.Context, userID primitive.ObjectID, client bool) error {
	defer metrics.ObserveMongoOp("users.set_client", time.Now())

	_, err := r.col.UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"client": client, "updatedAt": time.Now()},
	})
	return err
}

// SetRoles replaces the user's role list.
func (r *UserRepository) SetRoles(ctx context.Context, userID primitive.ObjectID, roles []primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("users.set_roles", time.Now())

	res, err := r.col.UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"roles": roles, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("user %s not found", userID.Hex())
	}
	return nil
}

// SetStore attaches (or with nil detaches) a store to the user.
func (r *UserRepository) SetStore(ctx context.Context, userID primitive.ObjectID, storeID *primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("users.set_store", time.Now())

	var update bson.M
	if storeID == nil {
		update = bson.M{
			"$unset": bson.M{"store": ""},
			"$set":   bson.M{"updatedAt": time.Now()},
		}
	} else {
		update = bson.M{
			"$set": bson.M{"store": *storeID, "updatedAt": time.Now()},
		}
	}
	_, err := r.col.UpdateByID(ctx, userID, update)
	return err
}

// SetSubscribed flips the newsletter flag for the given email.
func (r *UserRepository) SetSubscribed(ctx context.Context, email string, subscribed bool) error {
	defer metrics.ObserveMongoOp("users.set_subscribed", time.Now())

	res, err := r.col.UpdateOne(ctx, bson.M{"email": email}, bson.M{
		"$set": bson.M{"subscribed": subscribed, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("user with email %s not found", email)
	}
	return nil
}

// DetachStore removes the store reference from every owner of the store.
func (r *UserRepository) DetachStore(ctx context.Context, storeID primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("users.detach_store", time.Now())

	_, err := r.col.UpdateMany(ctx, bson.M{"store": storeID}, bson.M{
		"$unset": bson.M{"store": ""},
		"$set":   bson.M{"updatedAt": time.Now()},
	})
	return err
}

// Delete removes a user document.
func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("users.delete", time.Now())

	res, err := r.col.DeleteOne(ctx, byID(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFoundf("user %s not found", id.Hex())
	}
	return nil
}
