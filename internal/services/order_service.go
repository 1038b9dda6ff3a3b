package services

import (
	"context"
	"errors"
	"time"

	"gadgetstore/internal/apperr"
	"gadgetstore/internal/models"
	"gadgetstore/internal/repositories"

	"go.uber.org/zap"
)

// Placeholders used when an order references a deleted product or user.
const (
	UnknownProductName = "Unknown Product"
	UnknownFirstName   = "Unknown"
	UnknownLastName    = "User"
)

// ProductRef is the catalog data joined into an order line.
type ProductRef struct {
	ID    string  `json:"id,omitempty"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Purchaser is the account data joined into an order for admins.
type Purchaser struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type OrderLineView struct {
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
	Subtotal float64    `json:"subtotal"`
}

// OrderView is an order with its references resolved. User is only set in
// the admin listing.
type OrderView struct {
	ID              string             `json:"id"`
	UserID          string             `json:"userId"`
	User            *Purchaser         `json:"user,omitempty"`
	ProductsOrdered []OrderLineView    `json:"productsOrdered"`
	TotalPrice      float64            `json:"totalPrice"`
	OrderedOn       time.Time          `json:"orderedOn"`
	Status          models.OrderStatus `json:"status"`
}

// OrderService turns carts into orders and serves order history.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	events      EventPublisher
	now         func() time.Time
}

// NewOrderService creates a new OrderService. events may be nil.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	cartRepo repositories.CartRepository,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	events EventPublisher,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		events:      events,
		now:         time.Now,
	}
}

// CreateOrder checks out the caller's cart: the order is stored and the
// cart emptied atomically, then an order.created event is published.
func (s *OrderService) CreateOrder(ctx context.Context, caller Identity) (*models.Order, error) {
	noItems := apperr.NotFound("No Items to Checkout")

	cart, err := s.cartRepo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, noItems
		}
		return nil, apperr.Internal(err, "load cart")
	}
	if len(cart.Items) == 0 {
		return nil, noItems
	}

	order := models.NewOrderFromCart(cart, s.now())
	if err := s.orderRepo.PlaceOrder(ctx, order, cart); err != nil {
		switch {
		case errors.Is(err, repositories.ErrVersionConflict):
			return nil, errCartConflict
		case errors.Is(err, repositories.ErrNotFound):
			return nil, noItems
		}
		return nil, apperr.Internal(err, "place order")
	}

	zap.L().Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Float64("total", order.TotalPrice))
	_ = publishEvent(s.events, EventOrderCreated, OrderCreatedEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		Items:      len(order.ProductsOrdered),
		OrderedOn:  order.OrderedOn,
	})
	return order, nil
}

// GetUserOrders returns the caller's orders with product names and prices.
func (s *OrderService) GetUserOrders(ctx context.Context, caller Identity) ([]OrderView, error) {
	orders, err := s.orderRepo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, apperr.Internal(err, "list user orders")
	}
	if len(orders) == 0 {
		return nil, apperr.NotFound("No orders found for this user.")
	}
	products, err := s.productRefs(ctx, orders)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, newOrderView(o, products))
	}
	return views, nil
}

// GetAllOrders lists every order with product and purchaser data. Admin
// rights are checked against the stored account, not the token.
func (s *OrderService) GetAllOrders(ctx context.Context, caller Identity) ([]OrderView, error) {
	denied := apperr.Forbidden("Access denied. Admins only.")
	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, denied
		}
		return nil, apperr.Internal(err, "load caller")
	}
	if !user.IsAdmin {
		return nil, denied
	}

	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "list orders")
	}
	if len(orders) == 0 {
		return nil, apperr.NotFound("No orders found.")
	}
	products, err := s.productRefs(ctx, orders)
	if err != nil {
		return nil, err
	}
	purchasers, err := s.purchasers(ctx, orders)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		view := newOrderView(o, products)
		p, ok := purchasers[o.UserID]
		if !ok {
			p = Purchaser{FirstName: UnknownFirstName, LastName: UnknownLastName}
		}
		view.User = &p
		views = append(views, view)
	}
	return views, nil
}

func (s *OrderService) productRefs(ctx context.Context, orders []models.Order) (map[string]ProductRef, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, o := range orders {
		for _, line := range o.ProductsOrdered {
			if _, ok := seen[line.ProductID]; !ok {
				seen[line.ProductID] = struct{}{}
				ids = append(ids, line.ProductID)
			}
		}
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err, "resolve order products")
	}
	refs := make(map[string]ProductRef, len(products))
	for _, p := range products {
		refs[p.ID] = ProductRef{ID: p.ID, Name: p.Name, Price: p.Price}
	}
	return refs, nil
}

func (s *OrderService) purchasers(ctx context.Context, orders []models.Order) (map[string]Purchaser, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, o := range orders {
		if _, ok := seen[o.UserID]; !ok {
			seen[o.UserID] = struct{}{}
			ids = append(ids, o.UserID)
		}
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err, "resolve order users")
	}
	out := make(map[string]Purchaser, len(users))
	for _, u := range users {
		out[u.ID] = Purchaser{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
	}
	return out, nil
}

func newOrderView(o models.Order, products map[string]ProductRef) OrderView {
	lines := make([]OrderLineView, 0, len(o.ProductsOrdered))
	for _, line := range o.ProductsOrdered {
		ref, ok := products[line.ProductID]
		if !ok {
			ref = ProductRef{ID: line.ProductID, Name: UnknownProductName}
		}
		lines = append(lines, OrderLineView{Product: ref, Quantity: line.Quantity, Subtotal: line.Subtotal})
	}
	return OrderView{
		ID:              o.ID,
		UserID:          o.UserID,
		ProductsOrdered: lines,
		TotalPrice:      o.TotalPrice,
		OrderedOn:       o.OrderedOn,
		Status:          o.Status,
	}
}
