package controllers

import (
	"github.com/shashiranjanraj/feria/app/services"
	"github.com/shashiranjanraj/feria/pkg/ctx"
	"github.com/shashiranjanraj/feria/pkg/response"
)

// ProductController exposes the product side of the catalog.
type ProductController struct {
	service *services.CatalogService
}

func NewProductController() *ProductController {
	return &ProductController{service: services.NewCatalogService()}
}

// List handles GET /api/products.
func (pc *ProductController) List(c *ctx.Context) {
	page, limit := pageParams(c, 6)
	products, total, err := pc.service.ListProducts(c.Context(), services.ProductListQuery{
		Title:    c.Query("title"),
		Store:    c.Query("store"),
		Category: c.Query("category"),
		Active:   activeParam(c),
		Sort:     c.Query("sort"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Paginated(c.W, products, response.NewPagination(page, limit, total))
}

// Get handles GET /api/products/{id}.
func (pc *ProductController) Get(c *ctx.Context) {
	product, err := pc.service.GetProduct(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(product)
}

// Create handles POST /api/products.
func (pc *ProductController) Create(c *ctx.Context) {
	var input services.CreateProductInput
	if !c.BindJSON(&input) {
		return
	}
	product, err := pc.service.CreateProduct(c.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(product)
}

// Update handles PUT /api/products/{id}.
func (pc *ProductController) Update(c *ctx.Context) {
	var input services.UpdateProductInput
	if !c.BindJSON(&input) {
		return
	}
	product, err := pc.service.UpdateProduct(c.Context(), c.Param("id"), input)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(product)
}

// UploadImage handles POST /api/products/{id}/image. Expects a multipart
// form with an "image" file.
func (pc *ProductController) UploadImage(c *ctx.Context) {
	file, filename, ok := imageFile(c)
	if !ok {
		return
	}
	defer file.Close()

	product, err := pc.service.AttachProductImage(c.Context(), c.Param("id"), filename, file)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(product)
}

// Delete handles DELETE /api/products/{id}. Returns the removed product.
func (pc *ProductController) Delete(c *ctx.Context) {
	product, err := pc.service.DeleteProduct(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(product)
}
