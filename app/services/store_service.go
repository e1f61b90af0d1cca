package services

import (
	"context"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/feria/app/models"
	"github.com/shashiranjanraj/feria/app/repositories"
	"github.com/shashiranjanraj/feria/pkg/logger"
	"github.com/shashiranjanraj/feria/pkg/mongodb"
	"github.com/shashiranjanraj/feria/pkg/storage"
)

// StoreListQuery filters GET /api/stores.
type StoreListQuery struct {
	Title  string
	City   string
	Active *bool
	Page   int
	Limit  int
}

// CreateStoreInput is the request body of POST /api/stores.
type CreateStoreInput struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Description string `json:"description" validate:"nullable,max=2000"`
	Address     string `json:"address" validate:"required"`
	City        string `json:"city" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	LicNo       string `json:"lic_no" validate:"required"`
	Owner       string `json:"owner" validate:"required"`
	Img         string `json:"img" validate:"nullable,url"`
}

// UpdateStoreInput is the request body of PUT /api/stores/{id}.
// Zero-valued fields are left unchanged.
type UpdateStoreInput struct {
	Name        string `json:"name" validate:"nullable,min=2,max=200"`
	Description string `json:"description" validate:"nullable,max=2000"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Phone       string `json:"phone"`
	Discount    string `json:"discount"`
	Img         string `json:"img" validate:"nullable,url"`
	Active      *bool  `json:"active"`
}

// StoreService manages stores and their ownership.
type StoreService struct {
	stores     storeRepo
	users      userRepo
	products   productRepo
	categories categoryRepo
	roles      roleRepo
	images     imageStore
	tx         TxRunner
}

func NewStoreService() *StoreService {
	return &StoreService{
		stores:     repositories.NewStoreRepository(),
		users:      repositories.NewUserRepository(),
		products:   repositories.NewProductRepository(),
		categories: repositories.NewCategoryRepository(),
		roles:      repositories.NewRoleRepository(),
		images:     storage.Default(),
		tx:         mongodb.WithTransaction,
	}
}

// List returns a page of stores and the total match count.
func (s *StoreService) List(ctx context.Context, q StoreListQuery) ([]models.Store, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 6
	}
	return s.stores.List(ctx, repositories.StoreFilter{
		Name:   q.Title,
		City:   q.City,
		Active: q.Active,
		Page:   q.Page,
		Limit:  q.Limit,
	})
}

// Get returns a single store by id.
func (s *StoreService) Get(ctx context.Context, storeID string) (models.Store, error) {
	id, err := parseID(storeID, "store")
	if err != nil {
		return models.Store{}, err
	}
	return s.stores.FindByID(ctx, id)
}

// Create inserts a store, attaches it to its owner and promotes the owner
// to moderator.
func (s *StoreService) Create(ctx context.Context, input CreateStoreInput) (models.Store, error) {
	var store models.Store

	ownerID, err := parseID(input.Owner, "user")
	if err != nil {
		return store, err
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		owner, err := s.users.FindByID(ctx, ownerID)
		if err != nil {
			return err
		}

		store = models.Store{
			Name:        input.Name,
			Description: input.Description,
			Address:     input.Address,
			City:        input.City,
			Phone:       input.Phone,
			LicNo:       input.LicNo,
			Img:         input.Img,
			StoreOwner:  []primitive.ObjectID{owner.ID},
			Active:      true,
			Orders:      []primitive.ObjectID{},
			Category:    []primitive.ObjectID{},
			Reviews:     []models.Review{},
		}
		if err := s.stores.Insert(ctx, &store); err != nil {
			return err
		}
		if err := s.users.SetStore(ctx, owner.ID, &store.ID); err != nil {
			return err
		}
		return s.promoteToModerator(ctx, owner)
	})
	if err != nil {
		return models.Store{}, err
	}

	logger.Info("store created", "store_id", store.ID.Hex(), "owner", input.Owner)
	return store, nil
}

// promoteToModerator grants the moderator role unless the user has it.
func (s *StoreService) promoteToModerator(ctx context.Context, user models.User) error {
	role, err := s.roles.FindByName(ctx, models.RoleModerator)
	if err != nil {
		return err
	}
	for _, id := range user.Roles {
		if id == role.ID {
			return nil
		}
	}
	return s.users.SetRoles(ctx, user.ID, append(user.Roles, role.ID))
}

// Update applies a partial update to a store.
func (s *StoreService) Update(ctx context.Context, storeID string, input UpdateStoreInput) (models.Store, error) {
	id, err := parseID(storeID, "store")
	if err != nil {
		return models.Store{}, err
	}
	store, err := s.stores.FindByID(ctx, id)
	if err != nil {
		return models.Store{}, err
	}

	if input.Name != "" {
		store.Name = input.Name
	}
	if input.Description != "" {
		store.Description = input.Description
	}
	if input.Address != "" {
		store.Address = input.Address
	}
	if input.City != "" {
		store.City = input.City
	}
	if input.Phone != "" {
		store.Phone = input.Phone
	}
	if input.Discount != "" {
		store.Discount = input.Discount
	}
	if input.Img != "" {
		store.Img = input.Img
	}
	if input.Active != nil {
		store.Active = *input.Active
	}

	if err := s.stores.Update(ctx, &store); err != nil {
		return models.Store{}, err
	}
	return store, nil
}

// Delete removes a store together with its products and categories, and
// detaches every owner.
func (s *StoreService) Delete(ctx context.Context, storeID string) (models.Store, error) {
	id, err := parseID(storeID, "store")
	if err != nil {
		return models.Store{}, err
	}

	var store models.Store
	err = s.tx(ctx, func(ctx context.Context) error {
		store, err = s.stores.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.users.DetachStore(ctx, store.ID); err != nil {
			return err
		}
		if err := s.products.DeleteByStore(ctx, store.ID); err != nil {
			return err
		}
		if err := s.categories.DeleteByStore(ctx, store.ID); err != nil {
			return err
		}
		return s.stores.Delete(ctx, store.ID)
	})
	if err != nil {
		return models.Store{}, err
	}

	if store.ImgID != "" {
		if err := s.images.Delete(store.ImgID); err != nil {
			logger.Warn("orphaned store image", "key", store.ImgID, "error", err)
		}
	}
	logger.Info("store deleted", "store_id", store.ID.Hex())
	return store, nil
}

// AttachImage stores the uploaded file and points the store at it. The
// previous image, if any, is removed once the swap is persisted.
func (s *StoreService) AttachImage(ctx context.Context, storeID, filename string, r io.Reader) (models.Store, error) {
	id, err := parseID(storeID, "store")
	if err != nil {
		return models.Store{}, err
	}
	store, err := s.stores.FindByID(ctx, id)
	if err != nil {
		return models.Store{}, err
	}

	key := imageKey("stores", id, filename)
	if err := s.images.Put(key, r); err != nil {
		return models.Store{}, fmt.Errorf("store image: %w", err)
	}

	old := store.ImgID
	store.Img = s.images.URL(key)
	store.ImgID = key
	if err := s.stores.Update(ctx, &store); err != nil {
		return models.Store{}, err
	}
	if old != "" && old != key {
		if err := s.images.Delete(old); err != nil {
			logger.Warn("orphaned store image", "key", old, "error", err)
		}
	}
	return store, nil
}
