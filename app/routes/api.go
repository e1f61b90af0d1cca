// Package routes wires the HTTP surface onto the router.
package routes

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/feria/app/controllers"
	"github.com/shashiranjanraj/feria/app/models"
	"github.com/shashiranjanraj/feria/pkg/ctx"
	"github.com/shashiranjanraj/feria/pkg/metrics"
	"github.com/shashiranjanraj/feria/pkg/middleware"
	"github.com/shashiranjanraj/feria/pkg/rbac"
	"github.com/shashiranjanraj/feria/pkg/response"
	"github.com/shashiranjanraj/feria/pkg/router"
	"github.com/shashiranjanraj/feria/pkg/ws"
)

// RegisterAPI mounts every route under /api plus the operational endpoints.
func RegisterAPI(r *router.Router, hub *ws.Hub) {
	authController := controllers.NewAuthController()
	orderController := controllers.NewOrderController()
	productController := controllers.NewProductController()
	categoryController := controllers.NewCategoryController()
	storeController := controllers.NewStoreController()
	userController := controllers.NewUserController()
	reviewController := controllers.NewReviewController()
	graphqlController := controllers.NewGraphQLController()

	r.Get("/healthz", "healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})
	r.Get("/metrics", "metrics", metrics.Handler())

	api := r.Group("/api")

	// Public surface. Credential and contact endpoints are throttled
	// per client IP.
	limited := api.Group("", middleware.RateLimit(20, time.Minute))
	limited.Post("/auth/signup", "auth.signup", ctx.Wrap(authController.Signup))
	limited.Post("/auth/login", "auth.login", ctx.Wrap(authController.Login))
	limited.Post("/newsletter/subscribe", "newsletter.subscribe", ctx.Wrap(authController.Subscribe))
	limited.Post("/contact", "contact", ctx.Wrap(authController.Contact))

	api.Get("/products", "products.index", ctx.Wrap(productController.List))
	api.Get("/products/{id}", "products.show", ctx.Wrap(productController.Get))
	api.Get("/stores", "stores.index", ctx.Wrap(storeController.List))
	api.Get("/stores/{id}", "stores.show", ctx.Wrap(storeController.Get))
	api.Get("/categories", "categories.index", ctx.Wrap(categoryController.List))

	api.Post("/graphql", "graphql", ctx.Wrap(graphqlController.Query))

	api.Get("/ws/orders", "ws.orders", func(w http.ResponseWriter, r *http.Request) {
		ws.Upgrade(w, r, hub)
	})

	// Authenticated surface.
	auth := api.Group("", middleware.AuthMiddleware)

	auth.Get("/auth/session", "auth.session", ctx.Wrap(authController.Session))
	auth.Post("/auth/logout", "auth.logout", ctx.Wrap(authController.Logout))

	auth.Get("/orders", "orders.index", ctx.Wrap(orderController.List))
	auth.Post("/orders", "orders.store", ctx.Wrap(orderController.Create))
	auth.Get("/orders/{id}", "orders.show", ctx.Wrap(orderController.Get))
	auth.Put("/orders/{id}", "orders.advance", ctx.Wrap(orderController.Advance))
	auth.Delete("/orders/{id}", "orders.destroy", ctx.Wrap(orderController.Delete))
	auth.Get("/orders/user/{userId}", "orders.by_user", ctx.Wrap(orderController.ListForUser))

	auth.Post("/reviews", "reviews.store", ctx.Wrap(reviewController.Create))
	auth.Put("/reviews", "reviews.update", ctx.Wrap(reviewController.Update))
	auth.Delete("/reviews", "reviews.destroy", ctx.Wrap(reviewController.Delete))

	auth.Post("/stores", "stores.store", ctx.Wrap(storeController.Create))

	// Store management: moderators and admins.
	manage := api.Group("", middleware.AuthMiddleware,
		rbac.HasRole(models.RoleModerator, models.RoleAdmin))

	manage.Post("/products", "products.store", ctx.Wrap(productController.Create))
	manage.Put("/products/{id}", "products.update", ctx.Wrap(productController.Update))
	manage.Delete("/products/{id}", "products.destroy", ctx.Wrap(productController.Delete))
	manage.Post("/products/{id}/image", "products.image", ctx.Wrap(productController.UploadImage))

	manage.Post("/categories", "categories.store", ctx.Wrap(categoryController.Create))
	manage.Put("/categories/{id}", "categories.update", ctx.Wrap(categoryController.Update))
	manage.Delete("/categories/{id}", "categories.destroy", ctx.Wrap(categoryController.Delete))

	manage.Put("/stores/{id}", "stores.update", ctx.Wrap(storeController.Update))
	manage.Delete("/stores/{id}", "stores.destroy", ctx.Wrap(storeController.Delete))
	manage.Post("/stores/{id}/image", "stores.image", ctx.Wrap(storeController.UploadImage))

	// Account management: admins only, except self-service profile updates.
	auth.Put("/users/{id}", "users.update", ctx.Wrap(userController.Update))

	admin := api.Group("", middleware.AuthMiddleware, rbac.HasRole(models.RoleAdmin))

	admin.Get("/users", "users.index", ctx.Wrap(userController.List))
	admin.Get("/users/{id}", "users.show", ctx.Wrap(userController.Get))
	admin.Put("/users/{id}/roles", "users.roles", ctx.Wrap(userController.UpdateRoles))
	admin.Delete("/users/{id}", "users.destroy", ctx.Wrap(userController.Delete))
}
