package services

import (
	"context"
	"errors"

	"gadgetstore/internal/apperr"
	"gadgetstore/internal/models"
	"gadgetstore/internal/repositories"
)

var errCartConflict = apperr.Conflict("Cart was modified by another request, please retry")

// CartItemInput is one requested line of an add-to-cart call.
type CartItemInput struct {
	ProductID string
	Quantity  int
}

// CartService implements the per-user shopping cart. Prices are always
// taken from the catalog, never from the request.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// AddToCart merges items into the caller's cart, creating the cart on first
// use. Unknown product ids are skipped; a line for a product already in the
// cart has its quantity and subtotal increased.
func (s *CartService) AddToCart(ctx context.Context, caller Identity, items []CartItemInput) (*models.Cart, error) {
	if caller.IsAdmin {
		return nil, apperr.Forbidden("Admin is forbidden")
	}
	if len(items) == 0 {
		return nil, apperr.Validation("No products provided")
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return nil, apperr.Validation("Each item needs a productId and a positive quantity")
		}
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err, "resolve cart products")
	}
	if len(products) == 0 {
		return nil, apperr.NotFound("No products found")
	}
	catalog := make(map[string]models.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	cart, err := s.cartRepo.GetByUserID(ctx, caller.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		cart = models.NewCart(caller.UserID)
	} else if err != nil {
		return nil, apperr.Internal(err, "load cart")
	}

	for _, item := range items {
		product, ok := catalog[item.ProductID]
		if !ok {
			continue
		}
		cart.Merge(models.CartItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			Price:       product.Price,
			Subtotal:    models.LineSubtotal(product.Price, item.Quantity),
		})
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateCartQuantity sets the quantity of the line for productID and
// reprices it at the current catalog price.
func (s *CartService) UpdateCartQuantity(ctx context.Context, caller Identity, productID string, quantity int) (*models.Cart, error) {
	if caller.IsAdmin {
		return nil, apperr.Forbidden("Access forbidden for admin users.")
	}
	if productID == "" || quantity <= 0 {
		return nil, apperr.Validation("Valid item ID and positive quantity are required.")
	}

	cart, err := s.load(ctx, caller.UserID, "Cart not found.")
	if err != nil {
		return nil, err
	}
	i := cart.IndexOf(productID)
	if i < 0 {
		return nil, apperr.NotFound("Item not found in cart")
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("Product not found.")
		}
		return nil, apperr.Internal(err, "load product")
	}

	cart.SetQuantity(i, quantity, product.Price)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, caller Identity, productID string) (*models.Cart, error) {
	if caller.IsAdmin {
		return nil, apperr.Forbidden("Access forbidden for admin users.")
	}
	if productID == "" {
		return nil, apperr.Validation("Product ID is required.")
	}

	cart, err := s.load(ctx, caller.UserID, "Cart not found.")
	if err != nil {
		return nil, err
	}
	if !cart.Remove(productID) {
		return nil, apperr.NotFound("Item not found in cart")
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart empties the caller's cart. Clearing an empty cart succeeds.
func (s *CartService) ClearCart(ctx context.Context, caller Identity) (*models.Cart, error) {
	if caller.IsAdmin {
		return nil, apperr.Forbidden("Access forbidden for admin users.")
	}
	cart, err := s.load(ctx, caller.UserID, "Cart not found.")
	if err != nil {
		return nil, err
	}
	cart.Clear()
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// GetCart returns the caller's cart. A user who never added anything has
// no cart, which is reported as NotFound.
func (s *CartService) GetCart(ctx context.Context, caller Identity) (*models.Cart, error) {
	return s.load(ctx, caller.UserID, "Cart is empty")
}

func (s *CartService) load(ctx context.Context, userID, notFoundMsg string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound(notFoundMsg)
		}
		return nil, apperr.Internal(err, "load cart")
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) error {
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		switch {
		case errors.Is(err, repositories.ErrVersionConflict):
			return errCartConflict
		case errors.Is(err, repositories.ErrNotFound):
			return apperr.NotFound("Cart not found.")
		}
		return apperr.Internal(err, "save cart")
	}
	return nil
}
