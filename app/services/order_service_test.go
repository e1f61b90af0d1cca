package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/feria/app/apperr"
	"github.com/shashiranjanraj/feria/app/models"
	"github.com/shashiranjanraj/feria/pkg/event"
)

type orderFixture struct {
	svc      *OrderService
	orders   *fakeOrders
	users    *fakeUsers
	stores   *fakeStores
	products *fakeProducts

	client *models.User
	storeA *models.Store
	storeB *models.Store
	prodA  *models.Product
	prodB  *models.Product
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:   newFakeOrders(),
		users:    newFakeUsers(),
		stores:   newFakeStores(),
		products: newFakeProducts(),
	}
	f.svc = &OrderService{
		orders:   f.orders,
		users:    f.users,
		stores:   f.stores,
		products: f.products,
		tx:       passTx,
	}

	f.client = f.users.add(&models.User{Name: "Ana", Email: "ana@example.com"})
	f.storeA = f.stores.add(&models.Store{Name: "Bakery", Active: true})
	f.storeB = f.stores.add(&models.Store{Name: "Grocer", Active: true})
	f.prodA = f.products.add(&models.Product{Name: "Bread", Store: f.storeA.ID, Price: 2.5, Active: true})
	f.prodB = f.products.add(&models.Product{Name: "Milk", Store: f.storeB.ID, Price: 1.25, Active: true})
	return f
}

func (f *orderFixture) createOrder(t *testing.T, items ...OrderLineInput) models.Order {
	t.Helper()
	created, err := f.svc.Create(context.Background(), CreateOrdersInput{
		Orders: []OrderInput{{User: f.client.ID.Hex(), Items: items}},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	return created[0]
}

func TestOrderCreateSnapshotsAndTotals(t *testing.T) {
	f := newOrderFixture()

	order := f.createOrder(t,
		OrderLineInput{Product: f.prodA.ID.Hex(), Quantity: 4},
		OrderLineInput{Product: f.prodB.ID.Hex(), Quantity: 2},
	)

	require.Len(t, order.Items, 2)
	assert.Equal(t, "Bread", order.Items[0].Product.Name)
	assert.Equal(t, 2.5, order.Items[0].Product.Price)
	assert.Equal(t, f.storeA.ID, order.Items[0].Product.Store)
	assert.Equal(t, 10.0, order.Items[0].Total)
	assert.Equal(t, 2.5, order.Items[1].Total)
	assert.Equal(t, 12.5, order.Total)
	assert.NotZero(t, order.OrderNumber)
	assert.Equal(t, []primitive.ObjectID{f.client.ID}, order.Client)

	// The snapshot must not track later catalog edits.
	f.prodA.Price = 99
	stored, err := f.orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.5, stored.Items[0].Product.Price)
}

func TestOrderCreateMaterializesTimeline(t *testing.T) {
	f := newOrderFixture()

	order := f.createOrder(t, OrderLineInput{Product: f.prodA.ID.Hex(), Quantity: 1})

	require.Len(t, order.States, 5)
	for i, s := range order.States {
		assert.Equal(t, models.StateNames[i], s.Name)
		assert.Equal(t, s.Name == models.StateShipped, s.Confirmed)
	}
	assert.False(t, order.Finished)
}

func TestOrderCreateBackReferences(t *testing.T) {
	f := newOrderFixture()

	order := f.createOrder(t,
		OrderLineInput{Product: f.prodA.ID.Hex(), Quantity: 1},
		OrderLineInput{Product: f.prodB.ID.Hex(), Quantity: 1},
		OrderLineInput{Product: f.prodA.ID.Hex(), Quantity: 3},
	)

	assert.Equal(t, []primitive.ObjectID{order.ID}, f.client.Orders)
	assert.True(t, f.client.Client)
	assert.Equal(t, []primitive.ObjectID{order.ID}, f.storeA.Orders,
		"a store referenced twice still registers the order once")
	assert.Equal(t, []primitive.ObjectID{order.ID}, f.storeB.Orders)
}

func TestOrderCreateBatchStopsAtFirstFailure(t *testing.T) {
	f := newOrderFixture()

	good := OrderInput{User: f.client.ID.Hex(), Items: []OrderLineInput{
		{Product: f.prodA.ID.Hex(), Quantity: 1},
	}}
	bad := OrderInput{User: f.client.ID.Hex(), Items: []OrderLineInput{
		{Product: primitive.NewObjectID().Hex(), Quantity: 1},
	}}

	created, err := f.svc.Create(context.Background(), CreateOrdersInput{
		Orders: []OrderInput{good, bad, good},
	})
	require.Error(t, err)
	assert.Equal(t, 404, apperr.Status(err))
	require.Len(t, created, 1, "the order placed before the failure is kept")
	assert.Len(t, f.orders.m, 1)
	assert.Len(t, f.client.Orders, 1)
}

func TestOrderCreateBatchAnnouncesKeptOrders(t *testing.T) {
	f := newOrderFixture()
	event.Flush()
	t.Cleanup(event.Flush)
	fired := make(chan OrderCreatedPayload, 1)
	event.Listen(EventOrderCreated, func(payload any) {
		fired <- payload.(OrderCreatedPayload)
	})

	good := OrderInput{User: f.client.ID.Hex(), Items: []OrderLineInput{
		{Product: f.prodA.ID.Hex(), Quantity: 1},
	}}
	bad := OrderInput{User: f.client.ID.Hex(), Items: []OrderLineInput{
		{Product: primitive.NewObjectID().Hex(), Quantity: 1},
	}}

	created, err := f.svc.Create(context.Background(), CreateOrdersInput{
		Orders: []OrderInput{good, bad},
	})
	require.Error(t, err)
	require.Len(t, created, 1)

	// The kept order persists, so it is announced even though the batch
	// failed part-way.
	select {
	case p := <-fired:
		require.Len(t, p.Orders, 1)
		assert.Equal(t, created[0].ID, p.Orders[0].ID)
	case <-time.After(time.Second):
		t.Fatal("no order.created event for the kept order")
	}
}

func TestOrderCreateValidation(t *testing.T) {
	f := newOrderFixture()

	_, err := f.svc.Create(context.Background(), CreateOrdersInput{})
	assert.Equal(t, 400, apperr.Status(err))

	_, err = f.svc.Create(context.Background(), CreateOrdersInput{
		Orders: []OrderInput{{User: f.client.ID.Hex()}},
	})
	assert.Equal(t, 400, apperr.Status(err), "order without items")

	_, err = f.svc.Create(context.Background(), CreateOrdersInput{
		Orders: []OrderInput{{User: f.client.ID.Hex(), Items: []OrderLineInput{
			{Product: f.prodA.ID.Hex(), Quantity: 0},
		}}},
	})
	assert.Equal(t, 400, apperr.Status(err), "zero quantity")

	_, err = f.svc.Create(context.Background(), CreateOrdersInput{
		Orders: []OrderInput{{User: "not-an-id", Items: []OrderLineInput{
			{Product: f.prodA.ID.Hex(), Quantity: 1},
		}}},
	})
	assert.Equal(t, 400, apperr.Status(err), "malformed user id")
}

func TestOrderCreateRequiresResolvableStore(t *testing.T) {
	f := newOrderFixture()
	orphan := f.products.add(&models.Product{Name: "Ghost", Store: primitive.NewObjectID(), Price: 1})

	_, err := f.svc.Create(context.Background(), CreateOrdersInput{
		Orders: []OrderInput{{User: f.client.ID.Hex(), Items: []OrderLineInput{
			{Product: orphan.ID.Hex(), Quantity: 1},
		}}},
	})
	assert.Equal(t, 404, apperr.Status(err), "line item store no longer exists")
}

func TestAdvanceStateStrictOrder(t *testing.T) {
	f := newOrderFixture()
	order := f.createOrder(t, OrderLineInput{Product: f.prodA.ID.Hex(), Quantity: 1})
	ctx := context.Background()

	_, err := f.svc.AdvanceState(ctx, order.ID.Hex(), "returned")
	assert.Equal(t, 400, apperr.Status(err), "unknown state name")

	_, err = f.svc.AdvanceState(ctx, order.ID.Hex(), models.StateShipped)
	assert.Equal(t, 409, apperr.Status(err), "shipped is confirmed at creation")

	_, err = f.svc.AdvanceState(ctx, order.ID.Hex(), models.StateDispatched)
	assert.Equal(t, 409, apperr.Status(err), "dispatched before accepted")

	updated, err := f.svc.AdvanceState(ctx, order.ID.Hex(), models.StateAccepted)
	require.NoError(t, err)
	st := updated.State(models.StateAccepted)
	require.NotNil(t, st)
	assert.True(t, st.Confirmed)
	require.NotNil(t, st.ConfirmedAt)
	assert.False(t, updated.Finished)

	_, err = f.svc.AdvanceState(ctx, order.ID.Hex(), models.StateAccepted)
	assert.Equal(t, 409, apperr.Status(err), "re-confirming a confirmed state")
}

func TestAdvanceStateLiquidation(t *testing.T) {
	f := newOrderFixture()
	order := f.createOrder(t,
		OrderLineInput{Product: f.prodA.ID.Hex(), Quantity: 3},
		OrderLineInput{Product: f.prodB.ID.Hex(), Quantity: 2},
	)
	ctx := context.Background()

	f.client.Client = false // liquidation must set it back

	var updated models.Order
	var err error
	for _, name := range []string{
		models.StateAccepted,
		models.StateDispatched,
		models.StateDelivered,
		models.StateLiquidated,
	} {
		updated, err = f.svc.AdvanceState(ctx, order.ID.Hex(), name)
		require.NoError(t, err)
	}

	assert.True(t, updated.Finished)
	assert.Equal(t, "", updated.NextState())
	assert.True(t, f.client.Client)
	assert.Equal(t, int64(3), f.prodA.Sold)
	assert.Equal(t, int64(2), f.prodB.Sold)

	stored, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Finished)

	// No transition is accepted after liquidation, and the sold counters
	// are bumped exactly once.
	_, err = f.svc.AdvanceState(ctx, order.ID.Hex(), models.StateLiquidated)
	assert.Equal(t, 409, apperr.Status(err))
	assert.Equal(t, int64(3), f.prodA.Sold)
}

func TestAdvanceStateUnknownOrder(t *testing.T) {
	f := newOrderFixture()

	_, err := f.svc.AdvanceState(context.Background(), primitive.NewObjectID().Hex(), models.StateAccepted)
	assert.Equal(t, 404, apperr.Status(err))
}

func TestOrderDeleteGuard(t *testing.T) {
	f := newOrderFixture()
	order := f.createOrder(t, OrderLineInput{Product: f.prodA.ID.Hex(), Quantity: 1})
	ctx := context.Background()

	_, err := f.svc.AdvanceState(ctx, order.ID.Hex(), models.StateAccepted)
	require.NoError(t, err)

	_, err = f.svc.Delete(ctx, order.ID.Hex())
	assert.Equal(t, 409, apperr.Status(err), "accepted orders cannot be deleted")
	assert.Len(t, f.orders.m, 1)
}

func TestOrderDeleteRemovesBackReferences(t *testing.T) {
	f := newOrderFixture()
	order := f.createOrder(t,
		OrderLineInput{Product: f.prodA.ID.Hex(), Quantity: 1},
		OrderLineInput{Product: f.prodB.ID.Hex(), Quantity: 1},
	)

	removed, err := f.svc.Delete(context.Background(), order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, order.ID, removed.ID)

	assert.Empty(t, f.orders.m)
	assert.Empty(t, f.client.Orders)
	assert.Empty(t, f.storeA.Orders)
	assert.Empty(t, f.storeB.Orders)
}

func TestOrderListStateFilter(t *testing.T) {
	f := newOrderFixture()
	open := f.createOrder(t, OrderLineInput{Product: f.prodA.ID.Hex(), Quantity: 1})
	done := f.createOrder(t, OrderLineInput{Product: f.prodB.ID.Hex(), Quantity: 1})
	require.NoError(t, f.orders.Finish(context.Background(), done.ID))
	ctx := context.Background()

	// "finish" and its "finished" alias select the same set.
	for _, state := range []string{"finish", "finished"} {
		orders, total, err := f.svc.List(ctx, OrderListQuery{State: state})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, orders, 1)
		assert.Equal(t, done.ID, orders[0].ID)
	}

	orders, _, err := f.svc.List(ctx, OrderListQuery{State: "unfinished"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, open.ID, orders[0].ID)

	_, _, err = f.svc.List(ctx, OrderListQuery{State: "pending"})
	assert.Equal(t, 400, apperr.Status(err))
}

func TestOrderListByOrderID(t *testing.T) {
	f := newOrderFixture()
	first := f.createOrder(t, OrderLineInput{Product: f.prodA.ID.Hex(), Quantity: 1})
	f.createOrder(t, OrderLineInput{Product: f.prodB.ID.Hex(), Quantity: 1})
	ctx := context.Background()

	orders, total, err := f.svc.List(ctx, OrderListQuery{
		OrderID: strconv.FormatInt(first.OrderNumber, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, first.ID, orders[0].ID)
}

func TestOrderGetPopulatesClient(t *testing.T) {
	f := newOrderFixture()
	order := f.createOrder(t, OrderLineInput{Product: f.prodA.ID.Hex(), Quantity: 1})

	detail, err := f.svc.Get(context.Background(), order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, order.ID, detail.Order.ID)
	assert.Equal(t, f.client.ID, detail.Client.ID)
	assert.Equal(t, "ana@example.com", detail.Client.Email)
}

func TestListForUser(t *testing.T) {
	f := newOrderFixture()
	for i := 0; i < 7; i++ {
		f.createOrder(t, OrderLineInput{Product: f.prodA.ID.Hex(), Quantity: 1})
	}

	orders, total, err := f.svc.ListForUser(context.Background(), f.client.ID.Hex(), 2, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total, "total is the length of the user's order list")
	assert.Len(t, orders, 2)
}
