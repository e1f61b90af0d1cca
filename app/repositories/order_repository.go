// Package repositories contains the MongoDB persistence layer. Each
// repository owns one collection and translates driver errors into the
// application's sentinel errors.
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

// OrderFilter narrows and pages order listings.
type OrderFilter struct {
	OrderNumber string // exact match on the numeric order number, as text
	Finished    *bool
	Sort        string // whitelisted field name, "-" prefix for descending
	Page        int
	Limit       int
}

// orderSortFields is the whitelist of sortable order fields.
var orderSortFields = map[string]bool{
	"createdAt":   true,
	"orderNumber": true,
	"total":       true,
}

// OrderRepository handles database operations for Order.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{col: mongodb.Collection("orders")}
}

// Insert persists a new order, stamping timestamps.
func (r *OrderRepository) Insert(ctx context.Context, order *models.Order) error {
	defer metrics.ObserveMongoOp("orders.insert", time.Now())

	now := time.Now()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	order.CreatedAt = now
	order.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, order)
	return err
}

// FindByID looks up an order by its id.
func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	defer metrics.ObserveMongoOp("orders.find_by_id", time.Now())

	var order models.Order
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return order, apperr.NotFoundf("order %s not found", id.Hex())
	}
	return order, err
}

// FindByIDs returns the page of orders whose ids are in the given list,
// newest first.
func (r *OrderRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID, page, limit int) ([]models.Order, error) {
	defer metrics.ObserveMongoOp("orders.find_by_ids", time.Now())

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// List returns a page of orders matching the filter and the total count.
func (r *OrderRepository) List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	defer metrics.ObserveMongoOp("orders.list", time.Now())

	filter := bson.M{}
	if f.OrderNumber != "" {
		if n, err := parseInt64(f.OrderNumber); err == nil {
			filter["orderNumber"] = n
		} else {
			// Non-numeric input cannot match any order number.
			return []models.Order{}, 0, nil
		}
	}
	if f.Finished != nil {
		filter["finished"] = *f.Finished
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
		if orderSortFields[field] {
			sort = bson.D{{Key: field, Value: dir}}
		}
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ConfirmState confirms the named state only if it is still unconfirmed.
// Returns the updated order and false when no matching unconfirmed state
// exists, which the caller treats as a conflict.
func (r *OrderRepository) ConfirmState(ctx context.Context, id primitive.ObjectID, name string, at time.Time) (models.Order, bool, error) {
	defer metrics.ObserveMongoOp("orders.confirm_state", time.Now())

	filter := bson.M{
		"_id":    id,
		"states": bson.M{"$elemMatch": bson.M{"name": name, "confirmed": false}},
	}
	update := bson.M{"$set": bson.M{
		"states.$.confirmed":   true,
		"states.$.confirmedAt": at,
		"updatedAt":            at,
	}}

	var order models.Order
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return order, false, nil
	}
	if err != nil {
		return order, false, err
	}
	return order, true, nil
}

// Finish marks an order as closed.
func (r *OrderRepository) Finish(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("orders.finish", time.Now())

	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"finished":  true,
		"updatedAt": time.Now(),
	}})
	return err
}

// Delete removes an order document.
func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveMongoOp("orders.delete", time.Now())

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFoundf("order %s not found", id.Hex())
	}
	return nil
}
