package controllers

import (
	"github.com/shashiranjanraj/feria/app/services"
	"github.com/shashiranjanraj/feria/pkg/ctx"
	"github.com/shashiranjanraj/feria/pkg/response"
)

// UserController exposes account management.
type UserController struct {
	service *services.UserService
}

func NewUserController() *UserController {
	return &UserController{service: services.NewUserService()}
}

// List handles GET /api/users.
func (uc *UserController) List(c *ctx.Context) {
	page, limit := pageParams(c, 5)
	users, total, err := uc.service.List(c.Context(), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.Paginated(c.W, users, response.NewPagination(page, limit, total))
}

// Get handles GET /api/users/{id}.
func (uc *UserController) Get(c *ctx.Context) {
	user, err := uc.service.Get(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(user)
}

// Update handles PUT /api/users/{id}: profile updates.
func (uc *UserController) Update(c *ctx.Context) {
	var input services.UpdateProfileInput
	if !c.BindJSON(&input) {
		return
	}
	user, err := uc.service.UpdateProfile(c.Context(), c.Param("id"), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(user)
}

// UpdateRoles handles PUT /api/users/{id}/roles (admin only).
func (uc *UserController) UpdateRoles(c *ctx.Context) {
	var input services.UpdateRolesInput
	if !c.BindJSON(&input) {
		return
	}
	user, err := uc.service.UpdateRoles(c.Context(), c.Param("id"), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(user)
}

// Delete handles DELETE /api/users/{id}. Returns the removed user.
func (uc *UserController) Delete(c *ctx.Context) {
	user, err := uc.service.Delete(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(user)
}
