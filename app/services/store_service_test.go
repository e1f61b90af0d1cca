package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/feria/app/apperr"
	"github.com/shashiranjanraj/feria/app/models"
)

type storeFixture struct {
	svc        *StoreService
	stores     *fakeStores
	users      *fakeUsers
	products   *fakeProducts
	categories *fakeCategories
	roles      *fakeRoles
	images     *fakeImages

	owner *models.User
}

func newStoreFixture() *storeFixture {
	f := &storeFixture{
		stores:     newFakeStores(),
		users:      newFakeUsers(),
		products:   newFakeProducts(),
		categories: newFakeCategories(),
		roles:      newFakeRoles(),
		images:     newFakeImages(),
	}
	f.svc = &StoreService{
		stores:     f.stores,
		users:      f.users,
		products:   f.products,
		categories: f.categories,
		roles:      f.roles,
		images:     f.images,
		tx:         passTx,
	}
	f.owner = f.users.add(&models.User{Name: "Ana", Email: "ana@example.com"})
	return f
}

func (f *storeFixture) createStore(t *testing.T) models.Store {
	t.Helper()
	store, err := f.svc.Create(context.Background(), CreateStoreInput{
		Name:    "Bakery",
		Address: "1 Main St",
		City:    "Lima",
		Phone:   "555-0101",
		LicNo:   "L-100",
		Owner:   f.owner.ID.Hex(),
	})
	require.NoError(t, err)
	return store
}

func TestStoreCreate(t *testing.T) {
	f := newStoreFixture()

	store := f.createStore(t)

	assert.True(t, store.Active, "new stores start active")
	assert.Equal(t, []primitive.ObjectID{f.owner.ID}, store.StoreOwner)
	require.NotNil(t, f.owner.Store)
	assert.Equal(t, store.ID, *f.owner.Store, "owner account points back at the store")
}

func TestStoreCreatePromotesOwnerToModerator(t *testing.T) {
	f := newStoreFixture()
	userRole := f.roles.m[models.RoleUser]
	modRole := f.roles.m[models.RoleModerator]
	f.owner.Roles = []primitive.ObjectID{userRole.ID}

	f.createStore(t)

	assert.Contains(t, f.owner.Roles, modRole.ID)
	assert.Contains(t, f.owner.Roles, userRole.ID, "existing roles are kept")

	// A second store for the same owner does not double the role.
	f.svc.Create(context.Background(), CreateStoreInput{
		Name:    "Grocer",
		Address: "2 Main St",
		City:    "Lima",
		Phone:   "555-0102",
		LicNo:   "L-101",
		Owner:   f.owner.ID.Hex(),
	})
	count := 0
	for _, id := range f.owner.Roles {
		if id == modRole.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestStoreCreateUnknownOwner(t *testing.T) {
	f := newStoreFixture()

	_, err := f.svc.Create(context.Background(), CreateStoreInput{
		Name:    "Bakery",
		Address: "1 Main St",
		City:    "Lima",
		Phone:   "555-0101",
		LicNo:   "L-100",
		Owner:   primitive.NewObjectID().Hex(),
	})
	assert.Equal(t, 404, apperr.Status(err))
	assert.Empty(t, f.stores.m)
}

func TestStoreUpdatePartial(t *testing.T) {
	f := newStoreFixture()
	store := f.createStore(t)

	inactive := false
	updated, err := f.svc.Update(context.Background(), store.ID.Hex(), UpdateStoreInput{
		City:   "Cusco",
		Active: &inactive,
	})
	require.NoError(t, err)

	assert.Equal(t, "Cusco", updated.City)
	assert.False(t, updated.Active)
	assert.Equal(t, "Bakery", updated.Name, "unset fields stay unchanged")
	assert.Equal(t, "1 Main St", updated.Address)
}

func TestStoreDeleteCascades(t *testing.T) {
	f := newStoreFixture()
	store := f.createStore(t)

	category := f.categories.add(&models.Category{Name: "Breads", Store: store.ID})
	f.products.add(&models.Product{Name: "Bread", Store: store.ID, Category: category.ID})
	f.products.add(&models.Product{Name: "Bun", Store: store.ID, Category: category.ID})
	keeper := f.products.add(&models.Product{Name: "Milk", Store: primitive.NewObjectID()})

	removed, err := f.svc.Delete(context.Background(), store.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, store.ID, removed.ID)

	assert.Empty(t, f.stores.m)
	assert.Empty(t, f.categories.m, "store categories are removed with the store")
	assert.Len(t, f.products.m, 1, "other stores' products survive")
	assert.Contains(t, f.products.m, keeper.ID)
	assert.Nil(t, f.owner.Store, "owner account is detached")
}

func TestStoreAttachImage(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	store := f.createStore(t)

	updated, err := f.svc.AttachImage(ctx, store.ID.Hex(),
		"Storefront.jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)

	wantKey := "stores/" + store.ID.Hex() + "/storefront.jpeg"
	assert.Equal(t, wantKey, updated.ImgID)
	assert.Equal(t, "http://img.test/"+wantKey, updated.Img)
	assert.Equal(t, []byte("jpeg-bytes"), f.images.objects[wantKey])

	_, err = f.svc.AttachImage(ctx, primitive.NewObjectID().Hex(),
		"a.png", strings.NewReader("x"))
	assert.Equal(t, 404, apperr.Status(err))
}

func TestStoreDeleteRemovesImage(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	store := f.createStore(t)

	_, err := f.svc.AttachImage(ctx, store.ID.Hex(), "a.png", strings.NewReader("x"))
	require.NoError(t, err)

	_, err = f.svc.Delete(ctx, store.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, f.images.objects, "stored image goes with the store")
}
