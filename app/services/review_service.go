package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/feria/app/apperr"
	"github.com/shashiranjanraj/feria/app/models"
	"github.com/shashiranjanraj/feria/app/repositories"
	"github.com/shashiranjanraj/feria/pkg/mongodb"
)

// Review targets.
const (
	ReviewTargetProduct = "product"
	ReviewTargetStore   = "store"
)

// ReviewInput addresses a review at a product or a store. A user holds at
// most one review per target.
type ReviewInput struct {
	Target   string  `json:"target" validate:"required,in=product,store"`
	TargetID string  `json:"target_id" validate:"required"`
	User     string  `json:"user" validate:"required"`
	Rating   float64 `json:"rating" validate:"required,gte=1,lte=5"`
	Comment  string  `json:"comment" validate:"nullable,max=2000"`
}

// DeleteReviewInput is the request body of DELETE /api/reviews.
type DeleteReviewInput struct {
	Target   string `json:"target" validate:"required,in=product,store"`
	TargetID string `json:"target_id" validate:"required"`
	User     string `json:"user" validate:"required"`
}

// ReviewService manages the reviews embedded in products and stores. Every
// mutation recomputes the owner's rating aggregates.
type ReviewService struct {
	products productRepo
	stores   storeRepo
	tx       TxRunner
}

func NewReviewService() *ReviewService {
	return &ReviewService{
		products: repositories.NewProductRepository(),
		stores:   repositories.NewStoreRepository(),
		tx:       mongodb.WithTransaction,
	}
}

// Add appends a review. A second review from the same user on the same
// target is a conflict.
func (s *ReviewService) Add(ctx context.Context, input ReviewInput) error {
	return s.mutate(ctx, input.Target, input.TargetID, input.User,
		func(reviews []models.Review, userID primitive.ObjectID) ([]models.Review, error) {
			for _, rv := range reviews {
				if rv.User == userID {
					return nil, apperr.Conflictf("user %s already reviewed this %s", input.User, input.Target)
				}
			}
			now := time.Now()
			return append(reviews, models.Review{
				ID:        primitive.NewObjectID(),
				User:      userID,
				Rating:    input.Rating,
				Comment:   input.Comment,
				CreatedAt: now,
				UpdatedAt: now,
			}), nil
		})
}

// Update rewrites the user's existing review.
func (s *ReviewService) Update(ctx context.Context, input ReviewInput) error {
	return s.mutate(ctx, input.Target, input.TargetID, input.User,
		func(reviews []models.Review, userID primitive.ObjectID) ([]models.Review, error) {
			for i := range reviews {
				if reviews[i].User == userID {
					reviews[i].Rating = input.Rating
					reviews[i].Comment = input.Comment
					reviews[i].UpdatedAt = time.Now()
					return reviews, nil
				}
			}
			return nil, apperr.NotFoundf("no review by user %s on this %s", input.User, input.Target)
		})
}

// Delete removes the user's review.
func (s *ReviewService) Delete(ctx context.Context, input DeleteReviewInput) error {
	return s.mutate(ctx, input.Target, input.TargetID, input.User,
		func(reviews []models.Review, userID primitive.ObjectID) ([]models.Review, error) {
			for i := range reviews {
				if reviews[i].User == userID {
					return append(reviews[:i], reviews[i+1:]...), nil
				}
			}
			return nil, apperr.NotFoundf("no review by user %s on this %s", input.User, input.Target)
		})
}

// mutate loads the target's reviews, applies fn and stores the result with
// recomputed aggregates.
func (s *ReviewService) mutate(ctx context.Context, target, targetID, user string,
	fn func([]models.Review, primitive.ObjectID) ([]models.Review, error)) error {

	id, err := parseID(targetID, target)
	if err != nil {
		return err
	}
	userID, err := parseID(user, "user")
	if err != nil {
		return err
	}

	return s.tx(ctx, func(ctx context.Context) error {
		switch target {
		case ReviewTargetProduct:
			product, err := s.products.FindByID(ctx, id)
			if err != nil {
				return err
			}
			reviews, err := fn(product.Reviews, userID)
			if err != nil {
				return err
			}
			rating, count := models.RatingSummary(reviews)
			return s.products.SetReviews(ctx, product.ID, reviews, rating, count)

		case ReviewTargetStore:
			store, err := s.stores.FindByID(ctx, id)
			if err != nil {
				return err
			}
			reviews, err := fn(store.Reviews, userID)
			if err != nil {
				return err
			}
			rating, count := models.RatingSummary(reviews)
			return s.stores.SetReviews(ctx, store.ID, reviews, rating, count)

		default:
			return apperr.Invalidf("unknown review target %q", target)
		}
	})
}
