package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/feria/app/apperr"
	"github.com/shashiranjanraj/feria/app/models"
	"github.com/shashiranjanraj/feria/app/repositories"
	"github.com/shashiranjanraj/feria/pkg/event"
	"github.com/shashiranjanraj/feria/pkg/logger"
	"github.com/shashiranjanraj/feria/pkg/metrics"
	"github.com/shashiranjanraj/feria/pkg/mongodb"
)

// Event names fired by the order lifecycle engine.
const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
)

// OrderCreatedPayload is the payload of EventOrderCreated.
type OrderCreatedPayload struct {
	Orders []models.Order `json:"orders"`
}

// OrderUpdatedPayload is the payload of EventOrderUpdated.
type OrderUpdatedPayload struct {
	ClientID string       `json:"client_id"`
	Order    models.Order `json:"order"`
}

// OrderLineInput is one line of an order request.
type OrderLineInput struct {
	Product  string `json:"product"`
	Quantity int64  `json:"quantity"`
}

// OrderInput is one order of a batch request.
type OrderInput struct {
	User  string           `json:"user"`
	Items []OrderLineInput `json:"items"`
}

// CreateOrdersInput is the request body of POST /api/orders.
type CreateOrdersInput struct {
	Orders []OrderInput `json:"orders" validate:"required"`
}

// OrderListQuery filters GET /api/orders.
type OrderListQuery struct {
	OrderID string // exact match on the order number
	State   string // "", "finish" (alias "finished") or "unfinished"
	Sort    string
	Page    int
	Limit   int
}

// OrderDetail is an order with its client resolved.
type OrderDetail struct {
	Order  models.Order `json:"order"`
	Client models.User  `json:"client"`
}

// OrderService is the order lifecycle engine. An order carries all five
// lifecycle states from creation, each confirmed in turn; confirming the
// terminal state closes the order and applies the sale side effects.
type OrderService struct {
	orders   orderRepo
	users    userRepo
	stores   storeRepo
	products productRepo
	tx       TxRunner
}

func NewOrderService() *OrderService {
	return &OrderService{
		orders:   repositories.NewOrderRepository(),
		users:    repositories.NewUserRepository(),
		stores:   repositories.NewStoreRepository(),
		products: repositories.NewProductRepository(),
		tx:       mongodb.WithTransaction,
	}
}

// Create builds and persists every order of the batch, each in its own
// transaction. The batch stops at the first failing order; orders created
// before the failure are kept and returned alongside the error.
func (s *OrderService) Create(ctx context.Context, input CreateOrdersInput) ([]models.Order, error) {
	if len(input.Orders) == 0 {
		return nil, apperr.Invalidf("orders must not be empty")
	}

	created := make([]models.Order, 0, len(input.Orders))
	for _, in := range input.Orders {
		order, err := s.createOne(ctx, in)
		if err != nil {
			s.fireCreated(created)
			return created, err
		}
		created = append(created, order)
	}

	s.fireCreated(created)
	return created, nil
}

func (s *OrderService) fireCreated(orders []models.Order) {
	if len(orders) == 0 {
		return
	}
	metrics.OrdersCreated.Add(float64(len(orders)))
	event.FireAsync(EventOrderCreated, OrderCreatedPayload{Orders: orders})
}

func (s *OrderService) createOne(ctx context.Context, in OrderInput) (models.Order, error) {
	var order models.Order

	userID, err := parseID(in.User, "user")
	if err != nil {
		return order, err
	}
	if len(in.Items) == 0 {
		return order, apperr.Invalidf("order for user %s has no items", in.User)
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return err
		}

		now := time.Now()
		order = models.Order{
			OrderNumber: models.NewOrderNumber(now),
			Client:      []primitive.ObjectID{user.ID},
		}

		for _, line := range in.Items {
			if line.Quantity < 1 {
				return apperr.Invalidf("quantity must be at least 1")
			}
			productID, err := parseID(line.Product, "product")
			if err != nil {
				return err
			}
			product, err := s.products.FindByID(ctx, productID)
			if err != nil {
				return err
			}
			lineTotal := product.Price * float64(line.Quantity)
			order.Items = append(order.Items, models.LineItem{
				Product:  product.Snapshot(),
				Quantity: line.Quantity,
				Total:    lineTotal,
			})
			order.Total += lineTotal
		}

		order.MaterializeStates(now)

		if err := s.orders.Insert(ctx, &order); err != nil {
			return err
		}
		if err := s.users.PushOrder(ctx, user.ID, order.ID); err != nil {
			return err
		}
		for _, storeID := range order.DistinctStores() {
			if err := s.stores.PushOrder(ctx, storeID, order.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	logger.Info("order created",
		"order_id", order.ID.Hex(),
		"order_number", order.OrderNumber,
		"client", order.ClientID().Hex(),
		"total", order.Total)
	return order, nil
}

// AdvanceState confirms the named lifecycle state. States confirm strictly
// in order; confirming the terminal state closes the order, marks the
// client, and bumps each line item product's sold counter, all exactly once.
func (s *OrderService) AdvanceState(ctx context.Context, orderID, state string) (models.Order, error) {
	var updated models.Order

	id, err := parseID(orderID, "order")
	if err != nil {
		return updated, err
	}
	if !models.ValidState(state) {
		return updated, apperr.Invalidf("unknown order state %q", state)
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return updated, err
	}
	if order.Finished {
		return updated, apperr.Conflictf("order %s is finished", orderID)
	}
	if st := order.State(state); st != nil && st.Confirmed {
		return updated, apperr.Conflictf("state %q is already confirmed", state)
	}
	if next := order.NextState(); next != state {
		return updated, apperr.Conflictf("state %q cannot be confirmed before %q", state, next)
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		now := time.Now()
		o, ok, err := s.orders.ConfirmState(ctx, id, state, now)
		if err != nil {
			return err
		}
		if !ok {
			// Lost a concurrent confirmation race.
			return apperr.Conflictf("state %q is already confirmed", state)
		}
		updated = o

		if state != models.StateLiquidated {
			return nil
		}
		return s.liquidate(ctx, &updated)
	})
	if err != nil {
		return models.Order{}, err
	}

	event.FireAsync(EventOrderUpdated, OrderUpdatedPayload{
		ClientID: updated.ClientID().Hex(),
		Order:    updated,
	})
	return updated, nil
}

// liquidate applies the terminal side effects: close the order, mark the
// client, count the sold units.
func (s *OrderService) liquidate(ctx context.Context, order *models.Order) error {
	if err := s.orders.Finish(ctx, order.ID); err != nil {
		return err
	}
	order.Close()

	if err := s.users.SetClient(ctx, order.ClientID(), true); err != nil {
		return err
	}

	var units int64
	for _, item := range order.Items {
		product, err := s.products.FindByStoreAndName(ctx, item.Product.Store, item.Product.Name)
		if err != nil {
			return err
		}
		if err := s.products.IncSold(ctx, product.ID, item.Quantity); err != nil {
			return err
		}
		units += item.Quantity
	}

	metrics.OrdersFinished.Inc()
	metrics.UnitsSold.Add(float64(units))
	logger.Info("order liquidated", "order_id", order.ID.Hex(), "units", units)
	return nil
}

// Delete removes an order and its back-references. Orders whose accepted
// state is already confirmed cannot be deleted.
func (s *OrderService) Delete(ctx context.Context, orderID string) (models.Order, error) {
	id, err := parseID(orderID, "order")
	if err != nil {
		return models.Order{}, err
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if st := order.State(models.StateAccepted); st != nil && st.Confirmed {
		return models.Order{}, apperr.Conflictf("order %s is already accepted", orderID)
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		for _, storeID := range order.DistinctStores() {
			if err := s.stores.PullOrder(ctx, storeID, order.ID); err != nil {
				return err
			}
		}
		if err := s.users.PullOrder(ctx, order.ClientID(), order.ID); err != nil {
			return err
		}
		return s.orders.Delete(ctx, order.ID)
	})
	if err != nil {
		return models.Order{}, err
	}

	logger.Info("order deleted", "order_id", order.ID.Hex())
	return order, nil
}

// List returns a page of orders and the total match count.
func (s *OrderService) List(ctx context.Context, q OrderListQuery) ([]models.Order, int64, error) {
	f := repositories.OrderFilter{
		OrderNumber: q.OrderID,
		Sort:        q.Sort,
		Page:        q.Page,
		Limit:       q.Limit,
	}
	switch q.State {
	case "":
	case "finish", "finished":
		t := true
		f.Finished = &t
	case "unfinished":
		ff := false
		f.Finished = &ff
	default:
		return nil, 0, apperr.Invalidf("unknown state filter %q", q.State)
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 5
	}
	return s.orders.List(ctx, f)
}

// Get returns an order with its client populated.
func (s *OrderService) Get(ctx context.Context, orderID string) (OrderDetail, error) {
	var detail OrderDetail

	id, err := parseID(orderID, "order")
	if err != nil {
		return detail, err
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return detail, err
	}
	client, err := s.users.FindByID(ctx, order.ClientID())
	if err != nil {
		return detail, err
	}
	return OrderDetail{Order: order, Client: client}, nil
}

// ListForUser returns a page of the user's orders. The total is the length
// of the user's order list, not a collection count.
func (s *OrderService) ListForUser(ctx context.Context, userID string, page, limit int) ([]models.Order, int64, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return nil, 0, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 5
	}
	orders, err := s.orders.FindByIDs(ctx, user.Orders, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return orders, int64(len(user.Orders)), nil
}

// parseID converts a hex id from a request into an ObjectID.
func parseID(hex, entity string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.Invalidf("invalid %s id %q", entity, hex)
	}
	return id, nil
}
