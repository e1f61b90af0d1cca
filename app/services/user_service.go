package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/feria/app/apperr"
	"github.com/shashiranjanraj/feria/app/models"
	"github.com/shashiranjanraj/feria/app/repositories"
	"github.com/shashiranjanraj/feria/pkg/mongodb"
)

// UpdateProfileInput is the request body of PUT /api/users/{id}.
// Zero-valued fields are left unchanged.
type UpdateProfileInput struct {
	Name           string `json:"name" validate:"nullable,min=2,max=100"`
	Address        string `json:"address" validate:"nullable,max=500"`
	Mobile         string `json:"mobile" validate:"nullable,min=7,max=20"`
	ProfilePicture string `json:"profile_picture" validate:"nullable,url"`
}

// UpdateRolesInput is the request body of PUT /api/users/{id}/roles.
type UpdateRolesInput struct {
	Roles []string `json:"roles" validate:"required"`
}

// UserService manages accounts beyond authentication.
type UserService struct {
	users  userRepo
	stores storeRepo
	roles  roleRepo
	tx     TxRunner
}

func NewUserService() *UserService {
	return &UserService{
		users:  repositories.NewUserRepository(),
		stores: repositories.NewStoreRepository(),
		roles:  repositories.NewRoleRepository(),
		tx:     mongodb.WithTransaction,
	}
}

// List returns a page of users and the total count.
func (s *UserService) List(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 5
	}
	return s.users.All(ctx, page, limit)
}

// Get returns a single user by id.
func (s *UserService) Get(ctx context.Context, userID string) (models.User, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return models.User{}, err
	}
	return s.users.FindByID(ctx, id)
}

// UpdateProfile applies a partial profile update. Once shipping details are
// complete the profile state flips to complete.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (models.User, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return models.User{}, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Address != "" {
		user.Address = input.Address
	}
	if input.Mobile != "" {
		user.Mobile = input.Mobile
	}
	if input.ProfilePicture != "" {
		user.ProfilePicture = input.ProfilePicture
	}
	if user.CompleteProfile() {
		user.ProfileState = models.ProfileComplete
	} else {
		user.ProfileState = models.ProfileIncomplete
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// UpdateRoles replaces the user's roles with the named set. Unknown role
// names are rejected.
func (s *UserService) UpdateRoles(ctx context.Context, userID string, input UpdateRolesInput) (models.User, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return models.User{}, err
	}
	if len(input.Roles) == 0 {
		return models.User{}, apperr.Invalidf("roles must not be empty")
	}

	ids := make([]primitive.ObjectID, 0, len(input.Roles))
	for _, name := range input.Roles {
		role, err := s.roles.FindByName(ctx, name)
		if err != nil {
			return models.User{}, err
		}
		ids = append(ids, role.ID)
	}

	if err := s.users.SetRoles(ctx, id, ids); err != nil {
		return models.User{}, err
	}
	return s.users.FindByID(ctx, id)
}

// Delete removes a user. When the user owns a store the ownership link on
// the store is removed as well.
func (s *UserService) Delete(ctx context.Context, userID string) (models.User, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	err = s.tx(ctx, func(ctx context.Context) error {
		user, err = s.users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if user.Store != nil {
			store, err := s.stores.FindByID(ctx, *user.Store)
			if err == nil {
				owners := store.StoreOwner[:0]
				for _, owner := range store.StoreOwner {
					if owner != user.ID {
						owners = append(owners, owner)
					}
				}
				store.StoreOwner = owners
				if err := s.stores.Update(ctx, &store); err != nil {
					return err
				}
			} else if !errors.Is(err, apperr.ErrNotFound) {
				return err
			}
		}
		return s.users.Delete(ctx, user.ID)
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
