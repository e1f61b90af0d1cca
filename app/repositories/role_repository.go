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

// RoleRepository handles database operations for Role.
type RoleRepository struct {
	col *mongo.Collection
}

func NewRoleRepository() *RoleRepository {
	return &RoleRepository{col: mongodb.Collection("roles")}
}

// FindByName looks up a role by its name.
func (r *RoleRepository) FindByName(ctx context.Context, name string) (models.Role, error) {
	defer metrics.ObserveMongoOp("roles.find_by_name", time.Now())

	var role models.Role
	err := r.col.FindOne(ctx, bson.M{"name": name}).Decode(&role)
	if err == mongo.ErrNoDocuments {
		return role, apperr.NotFoundf("role %q not found", name)
	}
	return role, err
}

// FindByIDs returns the roles with the given ids.
func (r *RoleRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Role, error) {
	defer metrics.ObserveMongoOp("roles.find_by_ids", time.Now())

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var roles []models.Role
	if err := cur.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// All returns every role.
func (r *RoleRepository) All(ctx context.Context) ([]models.Role, error) {
	defer metrics.ObserveMongoOp("roles.all", time.Now())

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var roles []models.Role
	if err := cur.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// EnsureDefaults upserts the fixed role vocabulary. Used by the seed
// command and safe to run repeatedly.
func (r *RoleRepository) EnsureDefaults(ctx context.Context) error {
	defer metrics.ObserveMongoOp("roles.ensure_defaults", time.Now())

	for _, name := range models.RoleNames {
		_, err := r.col.UpdateOne(ctx,
			bson.M{"name": name},
			bson.M{"$setOnInsert": bson.M{"name": name}},
			options.Update().SetUpsert(true))
		if err != nil {
			return err
		}
	}
	return nil
}
