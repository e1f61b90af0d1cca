package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/feria/app/apperr"
	"github.com/shashiranjanraj/feria/app/models"
)

func newUserFixture() (*UserService, *fakeUsers, *fakeStores, *fakeRoles) {
	users := newFakeUsers()
	stores := newFakeStores()
	roles := newFakeRoles()
	svc := &UserService{users: users, stores: stores, roles: roles, tx: passTx}
	return svc, users, stores, roles
}

func TestUpdateProfileFlipsStateWhenComplete(t *testing.T) {
	svc, users, _, _ := newUserFixture()
	user := users.add(&models.User{
		Name:         "Ana",
		Email:        "ana@example.com",
		ProfileState: models.ProfileIncomplete,
	})
	ctx := context.Background()

	updated, err := svc.UpdateProfile(ctx, user.ID.Hex(), UpdateProfileInput{Name: "Ana B"})
	require.NoError(t, err)
	assert.Equal(t, "Ana B", updated.Name)
	assert.Equal(t, models.ProfileIncomplete, updated.ProfileState,
		"still no shipping details")

	updated, err = svc.UpdateProfile(ctx, user.ID.Hex(), UpdateProfileInput{
		Address: "1 Main St",
		Mobile:  "555-0101",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProfileComplete, updated.ProfileState)
	assert.Equal(t, "Ana B", updated.Name, "earlier update persisted")
}

func TestUpdateRoles(t *testing.T) {
	svc, users, _, roles := newUserFixture()
	user := users.add(&models.User{Name: "Ana", Email: "ana@example.com"})
	ctx := context.Background()

	updated, err := svc.UpdateRoles(ctx, user.ID.Hex(), UpdateRolesInput{
		Roles: []string{models.RoleUser, models.RoleModerator},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]primitive.ObjectID{roles.m[models.RoleUser].ID, roles.m[models.RoleModerator].ID},
		updated.Roles)

	_, err = svc.UpdateRoles(ctx, user.ID.Hex(), UpdateRolesInput{Roles: []string{"superuser"}})
	assert.Equal(t, 404, apperr.Status(err), "unknown role name")

	_, err = svc.UpdateRoles(ctx, user.ID.Hex(), UpdateRolesInput{})
	assert.Equal(t, 400, apperr.Status(err))
}

func TestUserDeleteRemovesStoreOwnership(t *testing.T) {
	svc, users, stores, _ := newUserFixture()

	coOwner := primitive.NewObjectID()
	store := stores.add(&models.Store{Name: "Bakery"})
	user := users.add(&models.User{Name: "Ana", Email: "ana@example.com", Store: &store.ID})
	store.StoreOwner = []primitive.ObjectID{user.ID, coOwner}

	removed, err := svc.Delete(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, user.ID, removed.ID)

	assert.Empty(t, users.m)
	assert.Equal(t, []primitive.ObjectID{coOwner}, stores.m[store.ID].StoreOwner,
		"only the deleted owner is removed")
}

func TestUserDeleteUnknown(t *testing.T) {
	svc, _, _, _ := newUserFixture()

	_, err := svc.Delete(context.Background(), primitive.NewObjectID().Hex())
	assert.Equal(t, 404, apperr.Status(err))
}
