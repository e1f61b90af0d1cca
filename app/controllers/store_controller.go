package controllers

import (
	"github.com/shashiranjanraj/feria/app/services"
	"github.com/shashiranjanraj/feria/pkg/ctx"
	"github.com/shashiranjanraj/feria/pkg/response"
)

// StoreController exposes store management.
type StoreController struct {
	service *services.StoreService
}

func NewStoreController() *StoreController {
	return &StoreController{service: services.NewStoreService()}
}

// List handles GET /api/stores.
func (sc *StoreController) List(c *ctx.Context) {
	page, limit := pageParams(c, 6)
	stores, total, err := sc.service.List(c.Context(), services.StoreListQuery{
		Title:  c.Query("title"),
		City:   c.Query("city"),
		Active: activeParam(c),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Paginated(c.W, stores, response.NewPagination(page, limit, total))
}

// Get handles GET /api/stores/{id}.
func (sc *StoreController) Get(c *ctx.Context) {
	store, err := sc.service.Get(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(store)
}

// Create handles POST /api/stores.
func (sc *StoreController) Create(c *ctx.Context) {
	var input services.CreateStoreInput
	if !c.BindJSON(&input) {
		return
	}
	store, err := sc.service.Create(c.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(store)
}

// Update handles PUT /api/stores/{id}.
func (sc *StoreController) Update(c *ctx.Context) {
	var input services.UpdateStoreInput
	if !c.BindJSON(&input) {
		return
	}
	store, err := sc.service.Update(c.Context(), c.Param("id"), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(store)
}

// UploadImage handles POST /api/stores/{id}/image. Expects a multipart
// form with an "image" file.
func (sc *StoreController) UploadImage(c *ctx.Context) {
	file, filename, ok := imageFile(c)
	if !ok {
		return
	}
	defer file.Close()

	store, err := sc.service.AttachImage(c.Context(), c.Param("id"), filename, file)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(store)
}

// Delete handles DELETE /api/stores/{id}. Returns the removed store.
func (sc *StoreController) Delete(c *ctx.Context) {
	store, err := sc.service.Delete(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(store)
}
