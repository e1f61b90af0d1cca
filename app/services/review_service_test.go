package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/feria/app/apperr"
	"github.com/shashiranjanraj/feria/app/models"
)

type reviewFixture struct {
	svc      *ReviewService
	products *fakeProducts
	stores   *fakeStores

	product *models.Product
	store   *models.Store
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{
		products: newFakeProducts(),
		stores:   newFakeStores(),
	}
	f.svc = &ReviewService{products: f.products, stores: f.stores, tx: passTx}
	f.store = f.stores.add(&models.Store{Name: "Bakery", Reviews: []models.Review{}})
	f.product = f.products.add(&models.Product{Name: "Bread", Store: f.store.ID, Reviews: []models.Review{}})
	return f
}

func TestReviewAddRecomputesAggregates(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	require.NoError(t, f.svc.Add(ctx, ReviewInput{
		Target:   ReviewTargetProduct,
		TargetID: f.product.ID.Hex(),
		User:     alice.Hex(),
		Rating:   5,
		Comment:  "great bread",
	}))
	require.NoError(t, f.svc.Add(ctx, ReviewInput{
		Target:   ReviewTargetProduct,
		TargetID: f.product.ID.Hex(),
		User:     bob.Hex(),
		Rating:   2,
	}))

	require.Len(t, f.product.Reviews, 2)
	assert.Equal(t, 3.5, f.product.Rating)
	assert.Equal(t, 2, f.product.NumReviews)
}

func TestReviewAddDuplicateUserConflicts(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	user := primitive.NewObjectID()

	in := ReviewInput{
		Target:   ReviewTargetStore,
		TargetID: f.store.ID.Hex(),
		User:     user.Hex(),
		Rating:   4,
	}
	require.NoError(t, f.svc.Add(ctx, in))

	err := f.svc.Add(ctx, in)
	assert.Equal(t, 409, apperr.Status(err))
	assert.Len(t, f.store.Reviews, 1)
	assert.Equal(t, 4.0, f.store.Rating)
}

func TestReviewUpdate(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	user := primitive.NewObjectID()

	err := f.svc.Update(ctx, ReviewInput{
		Target:   ReviewTargetProduct,
		TargetID: f.product.ID.Hex(),
		User:     user.Hex(),
		Rating:   1,
	})
	assert.Equal(t, 404, apperr.Status(err), "cannot update a review that does not exist")

	require.NoError(t, f.svc.Add(ctx, ReviewInput{
		Target:   ReviewTargetProduct,
		TargetID: f.product.ID.Hex(),
		User:     user.Hex(),
		Rating:   2,
		Comment:  "stale",
	}))
	require.NoError(t, f.svc.Update(ctx, ReviewInput{
		Target:   ReviewTargetProduct,
		TargetID: f.product.ID.Hex(),
		User:     user.Hex(),
		Rating:   5,
		Comment:  "fresh after all",
	}))

	require.Len(t, f.product.Reviews, 1)
	assert.Equal(t, 5.0, f.product.Reviews[0].Rating)
	assert.Equal(t, "fresh after all", f.product.Reviews[0].Comment)
	assert.Equal(t, 5.0, f.product.Rating)
	assert.Equal(t, 1, f.product.NumReviews)
}

func TestReviewDeleteResetsAggregates(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	user := primitive.NewObjectID()

	require.NoError(t, f.svc.Add(ctx, ReviewInput{
		Target:   ReviewTargetStore,
		TargetID: f.store.ID.Hex(),
		User:     user.Hex(),
		Rating:   3,
	}))
	require.NoError(t, f.svc.Delete(ctx, DeleteReviewInput{
		Target:   ReviewTargetStore,
		TargetID: f.store.ID.Hex(),
		User:     user.Hex(),
	}))

	assert.Empty(t, f.store.Reviews)
	assert.Equal(t, 0.0, f.store.Rating)
	assert.Equal(t, 0, f.store.NumReviews)

	err := f.svc.Delete(ctx, DeleteReviewInput{
		Target:   ReviewTargetStore,
		TargetID: f.store.ID.Hex(),
		User:     user.Hex(),
	})
	assert.Equal(t, 404, apperr.Status(err))
}

func TestReviewUnknownTarget(t *testing.T) {
	f := newReviewFixture()

	err := f.svc.Add(context.Background(), ReviewInput{
		Target:   "category",
		TargetID: primitive.NewObjectID().Hex(),
		User:     primitive.NewObjectID().Hex(),
		Rating:   3,
	})
	assert.Equal(t, 400, apperr.Status(err))
}
