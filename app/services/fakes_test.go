package services

import (
	"context"
	"io"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/feria/app/apperr"
	"github.com/shashiranjanraj/feria/app/models"
	"github.com/shashiranjanraj/feria/app/repositories"
)

// In-memory repository doubles. They mirror the Mongo repositories closely
// enough for service behavior: not-found translation, conditional state
// confirmation, back-reference pushes and pulls.

type fakeOrders struct {
	m map[primitive.ObjectID]*models.Order
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{m: map[primitive.ObjectID]*models.Order{}}
}

func (f *fakeOrders) Insert(_ context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	cp := *order
	f.m[order.ID] = &cp
	return nil
}

func (f *fakeOrders) FindByID(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	o, ok := f.m[id]
	if !ok {
		return models.Order{}, apperr.NotFoundf("order %s not found", id.Hex())
	}
	return *o, nil
}

func (f *fakeOrders) FindByIDs(_ context.Context, ids []primitive.ObjectID, page, limit int) ([]models.Order, error) {
	var out []models.Order
	for _, id := range ids {
		if o, ok := f.m[id]; ok {
			out = append(out, *o)
		}
	}
	start := (page - 1) * limit
	if start >= len(out) {
		return nil, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (f *fakeOrders) List(_ context.Context, fl repositories.OrderFilter) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range f.m {
		if fl.Finished != nil && o.Finished != *fl.Finished {
			continue
		}
		if fl.OrderNumber != "" && fl.OrderNumber != strconv.FormatInt(o.OrderNumber, 10) {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrders) ConfirmState(_ context.Context, id primitive.ObjectID, name string, at time.Time) (models.Order, bool, error) {
	o, ok := f.m[id]
	if !ok {
		return models.Order{}, false, nil
	}
	for i := range o.States {
		if o.States[i].Name == name && !o.States[i].Confirmed {
			o.States[i].Confirmed = true
			o.States[i].ConfirmedAt = &at
			o.UpdatedAt = at
			return *o, true, nil
		}
	}
	return models.Order{}, false, nil
}

func (f *fakeOrders) Finish(_ context.Context, id primitive.ObjectID) error {
	o, ok := f.m[id]
	if !ok {
		return apperr.NotFoundf("order %s not found", id.Hex())
	}
	o.Finished = true
	return nil
}

func (f *fakeOrders) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.m[id]; !ok {
		return apperr.NotFoundf("order %s not found", id.Hex())
	}
	delete(f.m, id)
	return nil
}

type fakeUsers struct {
	m map[primitive.ObjectID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{m: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUsers) add(u *models.User) *models.User {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	f.m[u.ID] = u
	return u
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	u, ok := f.m[id]
	if !ok {
		return models.User{}, apperr.NotFoundf("user %s not found", id.Hex())
	}
	return *u, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range f.m {
		if u.Email == email {
			return *u, nil
		}
	}
	return models.User{}, apperr.NotFoundf("user with email %s not found", email)
}

func (f *fakeUsers) Insert(_ context.Context, user *models.User) error {
	cp := *user
	f.add(&cp)
	user.ID = cp.ID
	return nil
}

func (f *fakeUsers) Update(_ context.Context, user *models.User) error {
	if _, ok := f.m[user.ID]; !ok {
		return apperr.NotFoundf("user %s not found", user.ID.Hex())
	}
	cp := *user
	f.m[user.ID] = &cp
	return nil
}

func (f *fakeUsers) All(_ context.Context, page, limit int) ([]models.User, int64, error) {
	var out []models.User
	for _, u := range f.m {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUsers) PushOrder(_ context.Context, userID, orderID primitive.ObjectID) error {
	u, ok := f.m[userID]
	if !ok {
		return apperr.NotFoundf("user %s not found", userID.Hex())
	}
	u.Orders = append(u.Orders, orderID)
	u.Client = true
	return nil
}

func (f *fakeUsers) PullOrder(_ context.Context, userID, orderID primitive.ObjectID) error {
	u, ok := f.m[userID]
	if !ok {
		return nil
	}
	u.RemoveOrder(orderID)
	return nil
}

func (f *fakeUsers) SetClient(_ context.Context, userID primitive.ObjectID, client bool) error {
	if u, ok := f.m[userID]; ok {
		u.Client = client
	}
	return nil
}

func (f *fakeUsers) SetRoles(_ context.Context, userID primitive.ObjectID, roles []primitive.ObjectID) error {
	u, ok := f.m[userID]
	if !ok {
		return apperr.NotFoundf("user %s not found", userID.Hex())
	}
	u.Roles = roles
	return nil
}

func (f *fakeUsers) SetStore(_ context.Context, userID primitive.ObjectID, storeID *primitive.ObjectID) error {
	if u, ok := f.m[userID]; ok {
		u.Store = storeID
	}
	return nil
}

func (f *fakeUsers) SetSubscribed(_ context.Context, email string, subscribed bool) error {
	for _, u := range f.m {
		if u.Email == email {
			u.Subscribed = subscribed
			return nil
		}
	}
	return apperr.NotFoundf("user with email %s not found", email)
}

func (f *fakeUsers) DetachStore(_ context.Context, storeID primitive.ObjectID) error {
	for _, u := range f.m {
		if u.Store != nil && *u.Store == storeID {
			u.Store = nil
		}
	}
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.m[id]; !ok {
		return apperr.NotFoundf("user %s not found", id.Hex())
	}
	delete(f.m, id)
	return nil
}

type fakeStores struct {
	m map[primitive.ObjectID]*models.Store
}

func newFakeStores() *fakeStores {
	return &fakeStores{m: map[primitive.ObjectID]*models.Store{}}
}

func (f *fakeStores) add(s *models.Store) *models.Store {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	f.m[s.ID] = s
	return s
}

func (f *fakeStores) FindByID(_ context.Context, id primitive.ObjectID) (models.Store, error) {
	s, ok := f.m[id]
	if !ok {
		return models.Store{}, apperr.NotFoundf("store %s not found", id.Hex())
	}
	return *s, nil
}

func (f *fakeStores) Insert(_ context.Context, store *models.Store) error {
	cp := *store
	f.add(&cp)
	store.ID = cp.ID
	return nil
}

func (f *fakeStores) Update(_ context.Context, store *models.Store) error {
	if _, ok := f.m[store.ID]; !ok {
		return apperr.NotFoundf("store %s not found", store.ID.Hex())
	}
	cp := *store
	f.m[store.ID] = &cp
	return nil
}

func (f *fakeStores) List(_ context.Context, fl repositories.StoreFilter) ([]models.Store, int64, error) {
	var out []models.Store
	for _, s := range f.m {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStores) PushOrder(_ context.Context, storeID, orderID primitive.ObjectID) error {
	s, ok := f.m[storeID]
	if !ok {
		return apperr.NotFoundf("store %s not found", storeID.Hex())
	}
	s.AddOrder(orderID)
	return nil
}

func (f *fakeStores) PullOrder(_ context.Context, storeID, orderID primitive.ObjectID) error {
	if s, ok := f.m[storeID]; ok {
		s.RemoveOrder(orderID)
	}
	return nil
}

func (f *fakeStores) PushCategory(_ context.Context, storeID, categoryID primitive.ObjectID) error {
	s, ok := f.m[storeID]
	if !ok {
		return apperr.NotFoundf("store %s not found", storeID.Hex())
	}
	s.AddCategory(categoryID)
	return nil
}

func (f *fakeStores) PullCategory(_ context.Context, storeID, categoryID primitive.ObjectID) error {
	s, ok := f.m[storeID]
	if !ok {
		return nil
	}
	kept := s.Category[:0]
	for _, id := range s.Category {
		if id != categoryID {
			kept = append(kept, id)
		}
	}
	s.Category = kept
	return nil
}

func (f *fakeStores) SetReviews(_ context.Context, storeID primitive.ObjectID, reviews []models.Review, rating float64, numReviews int) error {
	s, ok := f.m[storeID]
	if !ok {
		return apperr.NotFoundf("store %s not found", storeID.Hex())
	}
	s.Reviews = reviews
	s.Rating = rating
	s.NumReviews = numReviews
	return nil
}

func (f *fakeStores) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.m[id]; !ok {
		return apperr.NotFoundf("store %s not found", id.Hex())
	}
	delete(f.m, id)
	return nil
}

type fakeProducts struct {
	m map[primitive.ObjectID]*models.Product
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{m: map[primitive.ObjectID]*models.Product{}}
}

func (f *fakeProducts) add(p *models.Product) *models.Product {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	f.m[p.ID] = p
	return p
}

func (f *fakeProducts) FindByID(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	p, ok := f.m[id]
	if !ok {
		return models.Product{}, apperr.NotFoundf("product %s not found", id.Hex())
	}
	return *p, nil
}

func (f *fakeProducts) FindByStoreAndName(_ context.Context, storeID primitive.ObjectID, name string) (models.Product, error) {
	for _, p := range f.m {
		if p.Store == storeID && p.Name == name {
			return *p, nil
		}
	}
	return models.Product{}, apperr.NotFoundf("product %q not found in store %s", name, storeID.Hex())
}

func (f *fakeProducts) Insert(_ context.Context, product *models.Product) error {
	cp := *product
	f.add(&cp)
	product.ID = cp.ID
	return nil
}

func (f *fakeProducts) Update(_ context.Context, product *models.Product) error {
	if _, ok := f.m[product.ID]; !ok {
		return apperr.NotFoundf("product %s not found", product.ID.Hex())
	}
	cp := *product
	f.m[product.ID] = &cp
	return nil
}

func (f *fakeProducts) List(_ context.Context, fl repositories.ProductFilter) ([]models.Product, int64, error) {
	var out []models.Product
	for _, p := range f.m {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProducts) IncSold(_ context.Context, id primitive.ObjectID, qty int64) error {
	p, ok := f.m[id]
	if !ok {
		return apperr.NotFoundf("product %s not found", id.Hex())
	}
	p.Sold += qty
	return nil
}

func (f *fakeProducts) SetReviews(_ context.Context, productID primitive.ObjectID, reviews []models.Review, rating float64, numReviews int) error {
	p, ok := f.m[productID]
	if !ok {
		return apperr.NotFoundf("product %s not found", productID.Hex())
	}
	p.Reviews = reviews
	p.Rating = rating
	p.NumReviews = numReviews
	return nil
}

func (f *fakeProducts) DeleteByStore(_ context.Context, storeID primitive.ObjectID) error {
	for id, p := range f.m {
		if p.Store == storeID {
			delete(f.m, id)
		}
	}
	return nil
}

func (f *fakeProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.m[id]; !ok {
		return apperr.NotFoundf("product %s not found", id.Hex())
	}
	delete(f.m, id)
	return nil
}

type fakeCategories struct {
	m map[primitive.ObjectID]*models.Category
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{m: map[primitive.ObjectID]*models.Category{}}
}

func (f *fakeCategories) add(c *models.Category) *models.Category {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	f.m[c.ID] = c
	return c
}

func (f *fakeCategories) FindByID(_ context.Context, id primitive.ObjectID) (models.Category, error) {
	c, ok := f.m[id]
	if !ok {
		return models.Category{}, apperr.NotFoundf("category %s not found", id.Hex())
	}
	return *c, nil
}

func (f *fakeCategories) Insert(_ context.Context, category *models.Category) error {
	cp := *category
	f.add(&cp)
	category.ID = cp.ID
	return nil
}

func (f *fakeCategories) Update(_ context.Context, category *models.Category) error {
	if _, ok := f.m[category.ID]; !ok {
		return apperr.NotFoundf("category %s not found", category.ID.Hex())
	}
	cp := *category
	f.m[category.ID] = &cp
	return nil
}

func (f *fakeCategories) All(_ context.Context, storeID *primitive.ObjectID) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.m {
		if storeID != nil && c.Store != *storeID {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCategories) PushProduct(_ context.Context, categoryID, productID primitive.ObjectID) error {
	c, ok := f.m[categoryID]
	if !ok {
		return apperr.NotFoundf("category %s not found", categoryID.Hex())
	}
	c.AddProduct(productID)
	return nil
}

func (f *fakeCategories) PullProduct(_ context.Context, categoryID, productID primitive.ObjectID) error {
	if c, ok := f.m[categoryID]; ok {
		c.RemoveProduct(productID)
	}
	return nil
}

func (f *fakeCategories) DeleteByStore(_ context.Context, storeID primitive.ObjectID) error {
	for id, c := range f.m {
		if c.Store == storeID {
			delete(f.m, id)
		}
	}
	return nil
}

func (f *fakeCategories) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.m[id]; !ok {
		return apperr.NotFoundf("category %s not found", id.Hex())
	}
	delete(f.m, id)
	return nil
}

type fakeRoles struct {
	m map[string]models.Role
}

func newFakeRoles() *fakeRoles {
	f := &fakeRoles{m: map[string]models.Role{}}
	for _, name := range models.RoleNames {
		f.m[name] = models.Role{ID: primitive.NewObjectID(), Name: name}
	}
	return f
}

func (f *fakeRoles) FindByName(_ context.Context, name string) (models.Role, error) {
	role, ok := f.m[name]
	if !ok {
		return models.Role{}, apperr.NotFoundf("role %q not found", name)
	}
	return role, nil
}

func (f *fakeRoles) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Role, error) {
	var out []models.Role
	for _, role := range f.m {
		for _, id := range ids {
			if role.ID == id {
				out = append(out, role)
			}
		}
	}
	return out, nil
}

func (f *fakeRoles) All(_ context.Context) ([]models.Role, error) {
	var out []models.Role
	for _, role := range f.m {
		out = append(out, role)
	}
	return out, nil
}

func (f *fakeRoles) EnsureDefaults(_ context.Context) error { return nil }

// fakeImages is an in-memory object store recording stored keys.
type fakeImages struct {
	objects map[string][]byte
	deleted []string
}

func newFakeImages() *fakeImages {
	return &fakeImages{objects: map[string][]byte{}}
}

func (f *fakeImages) Put(key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeImages) Delete(key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeImages) URL(key string) string { return "http://img.test/" + key }
