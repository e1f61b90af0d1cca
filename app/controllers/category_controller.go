package controllers

import (
	"github.com/shashiranjanraj/feria/app/services"
	"github.com/shashiranjanraj/feria/pkg/ctx"
)

// CategoryController exposes the category side of the catalog.
type CategoryController struct {
	service *services.CatalogService
}

func NewCategoryController() *CategoryController {
	return &CategoryController{service: services.NewCatalogService()}
}

// List handles GET /api/categories, optionally scoped with ?store=.
func (cc *CategoryController) List(c *ctx.Context) {
	categories, err := cc.service.ListCategories(c.Context(), c.Query("store"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(categories)
}

// Create handles POST /api/categories.
func (cc *CategoryController) Create(c *ctx.Context) {
	var input services.CreateCategoryInput
	if !c.BindJSON(&input) {
		return
	}
	category, err := cc.service.CreateCategory(c.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(category)
}

// Update handles PUT /api/categories/{id}.
func (cc *CategoryController) Update(c *ctx.Context) {
	var input services.UpdateCategoryInput
	if !c.BindJSON(&input) {
		return
	}
	category, err := cc.service.UpdateCategory(c.Context(), c.Param("id"), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(category)
}

// Delete handles DELETE /api/categories/{id}. Returns the removed category.
func (cc *CategoryController) Delete(c *ctx.Context) {
	category, err := cc.service.DeleteCategory(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(category)
}
