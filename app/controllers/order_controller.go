package controllers

import (
	"github.com/shashiranjanraj/feria/app/apperr"
	"github.com/shashiranjanraj/feria/app/services"
	"github.com/shashiranjanraj/feria/pkg/ctx"
	"github.com/shashiranjanraj/feria/pkg/response"
)

// OrderController exposes the order lifecycle engine over HTTP.
type OrderController struct {
	service *services.OrderService
}

func NewOrderController() *OrderController {
	return &OrderController{service: services.NewOrderService()}
}

// Create handles POST /api/orders. The body is a batch; orders created
// before a failure survive, so a partial failure still reports them.
func (oc *OrderController) Create(c *ctx.Context) {
	var input services.CreateOrdersInput
	if !c.BindJSON(&input) {
		return
	}

	created, err := oc.service.Create(c.Context(), input)
	if err != nil {
		if len(created) > 0 {
			status := apperr.Status(err)
			c.JSON(status, map[string]any{
				"status":  status,
				"message": errMessage(err),
				"data":    map[string]any{"created": created},
			})
			return
		}
		fail(c, err)
		return
	}
	c.Created(map[string]any{"orders": created})
}

// List handles GET /api/orders.
func (oc *OrderController) List(c *ctx.Context) {
	page, limit := pageParams(c, 5)
	orders, total, err := oc.service.List(c.Context(), services.OrderListQuery{
		OrderID: c.Query("orderID"),
		State:   c.Query("state"),
		Sort:    c.Query("sort"),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Paginated(c.W, orders, response.NewPagination(page, limit, total))
}

// Get handles GET /api/orders/{id}.
func (oc *OrderController) Get(c *ctx.Context) {
	detail, err := oc.service.Get(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(detail)
}

// Advance handles PUT /api/orders/{id}: confirm the next lifecycle state.
func (oc *OrderController) Advance(c *ctx.Context) {
	var input struct {
		State string `json:"state" validate:"required"`
	}
	if !c.BindJSON(&input) {
		return
	}

	order, err := oc.service.AdvanceState(c.Context(), c.Param("id"), input.State)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(order)
}

// Delete handles DELETE /api/orders/{id}. Returns the removed order.
func (oc *OrderController) Delete(c *ctx.Context) {
	order, err := oc.service.Delete(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(order)
}

// ListForUser handles GET /api/orders/user/{userId}.
func (oc *OrderController) ListForUser(c *ctx.Context) {
	page, limit := pageParams(c, 5)
	orders, total, err := oc.service.ListForUser(c.Context(), c.Param("userId"), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.Paginated(c.W, orders, response.NewPagination(page, limit, total))
}
