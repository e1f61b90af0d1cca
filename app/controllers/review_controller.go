package controllers

import (
	"github.com/shashiranjanraj/feria/app/services"
	"github.com/shashiranjanraj/feria/pkg/ctx"
)

// ReviewController exposes product and store reviews.
type ReviewController struct {
	service *services.ReviewService
}

func NewReviewController() *ReviewController {
	return &ReviewController{service: services.NewReviewService()}
}

// Create handles POST /api/reviews.
func (rc *ReviewController) Create(c *ctx.Context) {
	var input services.ReviewInput
	if !c.BindJSON(&input) {
		return
	}
	if err := rc.service.Add(c.Context(), input); err != nil {
		fail(c, err)
		return
	}
	c.Created(map[string]string{"message": "Review added"})
}

// Update handles PUT /api/reviews.
func (rc *ReviewController) Update(c *ctx.Context) {
	var input services.ReviewInput
	if !c.BindJSON(&input) {
		return
	}
	if err := rc.service.Update(c.Context(), input); err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]string{"message": "Review updated"})
}

// Delete handles DELETE /api/reviews.
func (rc *ReviewController) Delete(c *ctx.Context) {
	var input services.DeleteReviewInput
	if !c.BindJSON(&input) {
		return
	}
	if err := rc.service.Delete(c.Context(), input); err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]string{"message": "Review deleted"})
}
