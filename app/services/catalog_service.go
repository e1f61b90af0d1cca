package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/feria/app/apperr"
	"github.com/shashiranjanraj/feria/app/models"
	"github.com/shashiranjanraj/feria/app/repositories"
	"github.com/shashiranjanraj/feria/pkg/cache"
	"github.com/shashiranjanraj/feria/pkg/logger"
	"github.com/shashiranjanraj/feria/pkg/mongodb"
	"github.com/shashiranjanraj/feria/pkg/storage"
)

const (
	productListCacheKey = "feria:products:list:default"
	catalogCacheTTL     = 5 * time.Minute
)

// ProductListQuery filters GET /api/products.
type ProductListQuery struct {
	Title    string
	Store    string
	Category string
	Active   *bool
	Sort     string
	Page     int
	Limit    int
}

// CreateProductInput is the request body of POST /api/products.
type CreateProductInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=200"`
	Category    string  `json:"category" validate:"required"`
	Store       string  `json:"store" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Size        string  `json:"size" validate:"nullable,max=50"`
	Description string  `json:"description" validate:"nullable,max=2000"`
	Img         string  `json:"img" validate:"nullable,url"`
}

// UpdateProductInput is the request body of PUT /api/products/{id}.
// Zero-valued fields are left unchanged.
type UpdateProductInput struct {
	Name        string   `json:"name" validate:"nullable,min=2,max=200"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price" validate:"nullable,gt=0"`
	Size        string   `json:"size" validate:"nullable,max=50"`
	Description string   `json:"description" validate:"nullable,max=2000"`
	Img         string   `json:"img" validate:"nullable,url"`
	Active      *bool    `json:"active"`
}

// CreateCategoryInput is the request body of POST /api/categories.
type CreateCategoryInput struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Store string `json:"store" validate:"required"`
}

// UpdateCategoryInput is the request body of PUT /api/categories/{id}.
type UpdateCategoryInput struct {
	Name   string `json:"name" validate:"nullable,min=2,max=100"`
	Active *bool  `json:"active"`
}

// productPage is the cached shape of the default product listing.
type productPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

// CatalogService manages products and categories.
type CatalogService struct {
	products   productRepo
	categories categoryRepo
	stores     storeRepo
	images     imageStore
	tx         TxRunner
}

func NewCatalogService() *CatalogService {
	return &CatalogService{
		products:   repositories.NewProductRepository(),
		categories: repositories.NewCategoryRepository(),
		stores:     repositories.NewStoreRepository(),
		images:     storage.Default(),
		tx:         mongodb.WithTransaction,
	}
}

// ListProducts returns a page of products and the total match count. The
// unfiltered first page is served from cache when possible.
func (s *CatalogService) ListProducts(ctx context.Context, q ProductListQuery) ([]models.Product, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 6
	}

	cacheable := q.Title == "" && q.Store == "" && q.Category == "" &&
		q.Active == nil && q.Sort == "" && q.Page == 1 && q.Limit == 6
	if cacheable {
		var page productPage
		if cache.Get(productListCacheKey, &page) {
			return page.Products, page.Total, nil
		}
	}

	f := repositories.ProductFilter{
		Name:   q.Title,
		Active: q.Active,
		Sort:   q.Sort,
		Page:   q.Page,
		Limit:  q.Limit,
	}
	if q.Store != "" {
		id, err := parseID(q.Store, "store")
		if err != nil {
			return nil, 0, err
		}
		f.Store = &id
	}
	if q.Category != "" {
		id, err := parseID(q.Category, "category")
		if err != nil {
			return nil, 0, err
		}
		f.Category = &id
	}

	products, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	if cacheable {
		if err := cache.Set(productListCacheKey, productPage{products, total}, catalogCacheTTL); err != nil {
			logger.Warn("catalog: cache set failed", "error", err)
		}
	}
	return products, total, nil
}

// GetProduct returns a single product by id.
func (s *CatalogService) GetProduct(ctx context.Context, productID string) (models.Product, error) {
	id, err := parseID(productID, "product")
	if err != nil {
		return models.Product{}, err
	}
	return s.products.FindByID(ctx, id)
}

// CreateProduct inserts a product and registers it on its category.
func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (models.Product, error) {
	var product models.Product

	storeID, err := parseID(input.Store, "store")
	if err != nil {
		return product, err
	}
	categoryID, err := parseID(input.Category, "category")
	if err != nil {
		return product, err
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if _, err := s.stores.FindByID(ctx, storeID); err != nil {
			return err
		}
		if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
			return err
		}

		product = models.Product{
			Name:        input.Name,
			Category:    categoryID,
			Store:       storeID,
			Price:       input.Price,
			Size:        input.Size,
			Description: input.Description,
			Img:         input.Img,
			Active:      true,
			Reviews:     []models.Review{},
		}
		if err := s.products.Insert(ctx, &product); err != nil {
			return err
		}
		return s.categories.PushProduct(ctx, categoryID, product.ID)
	})
	if err != nil {
		return models.Product{}, err
	}

	s.invalidateListing()
	return product, nil
}

// UpdateProduct applies a partial update; a category change moves the
// product's back-reference between categories.
func (s *CatalogService) UpdateProduct(ctx context.Context, productID string, input UpdateProductInput) (models.Product, error) {
	id, err := parseID(productID, "product")
	if err != nil {
		return models.Product{}, err
	}

	var product models.Product
	err = s.tx(ctx, func(ctx context.Context) error {
		product, err = s.products.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if input.Name != "" {
			product.Name = input.Name
		}
		if input.Price != nil {
			product.Price = *input.Price
		}
		if input.Size != "" {
			product.Size = input.Size
		}
		if input.Description != "" {
			product.Description = input.Description
		}
		if input.Img != "" {
			product.Img = input.Img
		}
		if input.Active != nil {
			product.Active = *input.Active
		}

		if input.Category != "" {
			newCat, err := parseID(input.Category, "category")
			if err != nil {
				return err
			}
			if newCat != product.Category {
				if _, err := s.categories.FindByID(ctx, newCat); err != nil {
					return err
				}
				if err := s.categories.PullProduct(ctx, product.Category, product.ID); err != nil {
					return err
				}
				if err := s.categories.PushProduct(ctx, newCat, product.ID); err != nil {
					return err
				}
				product.Category = newCat
			}
		}

		return s.products.Update(ctx, &product)
	})
	if err != nil {
		return models.Product{}, err
	}

	s.invalidateListing()
	return product, nil
}

// DeleteProduct removes a product and its category back-reference.
func (s *CatalogService) DeleteProduct(ctx context.Context, productID string) (models.Product, error) {
	id, err := parseID(productID, "product")
	if err != nil {
		return models.Product{}, err
	}

	var product models.Product
	err = s.tx(ctx, func(ctx context.Context) error {
		product, err = s.products.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.categories.PullProduct(ctx, product.Category, product.ID); err != nil {
			return err
		}
		return s.products.Delete(ctx, product.ID)
	})
	if err != nil {
		return models.Product{}, err
	}

	if product.ImgID != "" {
		if err := s.images.Delete(product.ImgID); err != nil {
			logger.Warn("orphaned product image", "key", product.ImgID, "error", err)
		}
	}
	s.invalidateListing()
	return product, nil
}

// AttachProductImage stores the uploaded file and points the product at
// it. The previous image, if any, is removed once the swap is persisted.
func (s *CatalogService) AttachProductImage(ctx context.Context, productID, filename string, r io.Reader) (models.Product, error) {
	id, err := parseID(productID, "product")
	if err != nil {
		return models.Product{}, err
	}
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	key := imageKey("products", id, filename)
	if err := s.images.Put(key, r); err != nil {
		return models.Product{}, fmt.Errorf("store product image: %w", err)
	}

	old := product.ImgID
	product.Img = s.images.URL(key)
	product.ImgID = key
	if err := s.products.Update(ctx, &product); err != nil {
		return models.Product{}, err
	}
	if old != "" && old != key {
		if err := s.images.Delete(old); err != nil {
			logger.Warn("orphaned product image", "key", old, "error", err)
		}
	}

	s.invalidateListing()
	return product, nil
}

// imageKey builds a deterministic object key so re-uploading the same
// filename overwrites in place instead of leaking objects.
func imageKey(kind string, id primitive.ObjectID, filename string) string {
	name := strings.ToLower(path.Base(filename))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
	return kind + "/" + id.Hex() + "/" + name
}

// ListCategories returns every category, optionally scoped to one store.
func (s *CatalogService) ListCategories(ctx context.Context, storeID string) ([]models.Category, error) {
	var scope *primitive.ObjectID
	if storeID != "" {
		id, err := parseID(storeID, "store")
		if err != nil {
			return nil, err
		}
		scope = &id
	}
	return s.categories.All(ctx, scope)
}

// CreateCategory inserts a category and registers it on its store.
func (s *CatalogService) CreateCategory(ctx context.Context, input CreateCategoryInput) (models.Category, error) {
	var category models.Category

	storeID, err := parseID(input.Store, "store")
	if err != nil {
		return category, err
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if _, err := s.stores.FindByID(ctx, storeID); err != nil {
			return err
		}
		category = models.Category{
			Name:    input.Name,
			Store:   storeID,
			Active:  true,
			Product: []primitive.ObjectID{},
		}
		if err := s.categories.Insert(ctx, &category); err != nil {
			return err
		}
		return s.stores.PushCategory(ctx, storeID, category.ID)
	})
	if err != nil {
		return models.Category{}, err
	}
	return category, nil
}

// UpdateCategory applies a partial update to a category.
func (s *CatalogService) UpdateCategory(ctx context.Context, categoryID string, input UpdateCategoryInput) (models.Category, error) {
	id, err := parseID(categoryID, "category")
	if err != nil {
		return models.Category{}, err
	}
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return models.Category{}, err
	}
	if input.Name != "" {
		category.Name = input.Name
	}
	if input.Active != nil {
		category.Active = *input.Active
	}
	if err := s.categories.Update(ctx, &category); err != nil {
		return models.Category{}, err
	}
	return category, nil
}

// DeleteCategory removes an empty category. Categories that still hold
// products cannot be deleted.
func (s *CatalogService) DeleteCategory(ctx context.Context, categoryID string) (models.Category, error) {
	id, err := parseID(categoryID, "category")
	if err != nil {
		return models.Category{}, err
	}

	var category models.Category
	err = s.tx(ctx, func(ctx context.Context) error {
		category, err = s.categories.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if len(category.Product) > 0 {
			return apperr.Conflictf("category %s still has %d products", categoryID, len(category.Product))
		}
		if err := s.stores.PullCategory(ctx, category.Store, category.ID); err != nil {
			return err
		}
		return s.categories.Delete(ctx, category.ID)
	})
	if err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func (s *CatalogService) invalidateListing() {
	if err := cache.Forget(productListCacheKey); err != nil {
		logger.Warn("catalog: cache invalidation failed", "error", err)
	}
}
