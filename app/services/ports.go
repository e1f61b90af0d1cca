// Package services holds the business logic. Services depend on narrow
// repository interfaces so tests can substitute in-memory doubles; the
// concrete implementations live in app/repositories.
package services

import (
	"context"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/feria/app/models"
	"github.com/shashiranjanraj/feria/app/repositories"
)

// TxRunner executes fn atomically. Production wiring uses
// mongodb.WithTransaction; tests use a pass-through.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// passTx runs fn without any transaction. Used as a test double.
func passTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type orderRepo interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID, page, limit int) ([]models.Order, error)
	List(ctx context.Context, f repositories.OrderFilter) ([]models.Order, int64, error)
	ConfirmState(ctx context.Context, id primitive.ObjectID, name string, at time.Time) (models.Order, bool, error)
	Finish(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type userRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	All(ctx context.Context, page, limit int) ([]models.User, int64, error)
	PushOrder(ctx context.Context, userID, orderID primitive.ObjectID) error
	PullOrder(ctx context.Context, userID, orderID primitive.ObjectID) error
	SetClient(ctx context.Context, userID primitive.ObjectID, client bool) error
	SetRoles(ctx context.Context, userID primitive.ObjectID, roles []primitive.ObjectID) error
	SetStore(ctx context.Context, userID primitive.ObjectID, storeID *primitive.ObjectID) error
	SetSubscribed(ctx context.Context, email string, subscribed bool) error
	DetachStore(ctx context.Context, storeID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type storeRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Store, error)
	Insert(ctx context.Context, store *models.Store) error
	Update(ctx context.Context, store *models.Store) error
	List(ctx context.Context, f repositories.StoreFilter) ([]models.Store, int64, error)
	PushOrder(ctx context.Context, storeID, orderID primitive.ObjectID) error
	PullOrder(ctx context.Context, storeID, orderID primitive.ObjectID) error
	PushCategory(ctx context.Context, storeID, categoryID primitive.ObjectID) error
	PullCategory(ctx context.Context, storeID, categoryID primitive.ObjectID) error
	SetReviews(ctx context.Context, storeID primitive.ObjectID, reviews []models.Review, rating float64, numReviews int) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type productRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	FindByStoreAndName(ctx context.Context, storeID primitive.ObjectID, name string) (models.Product, error)
	Insert(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	List(ctx context.Context, f repositories.ProductFilter) ([]models.Product, int64, error)
	IncSold(ctx context.Context, id primitive.ObjectID, qty int64) error
	SetReviews(ctx context.Context, productID primitive.ObjectID, reviews []models.Review, rating float64, numReviews int) error
	DeleteByStore(ctx context.Context, storeID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type categoryRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Category, error)
	Insert(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	All(ctx context.Context, storeID *primitive.ObjectID) ([]models.Category, error)
	PushProduct(ctx context.Context, categoryID, productID primitive.ObjectID) error
	PullProduct(ctx context.Context, categoryID, productID primitive.ObjectID) error
	DeleteByStore(ctx context.Context, storeID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// imageStore is the slice of pkg/storage the app needs for product and
// store images.
type imageStore interface {
	Put(key string, r io.Reader) error
	Delete(key string) error
	URL(key string) string
}

type roleRepo interface {
	FindByName(ctx context.Context, name string) (models.Role, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Role, error)
	All(ctx context.Context) ([]models.Role, error)
	EnsureDefaults(ctx context.Context) error
}
