package handlers

import (
	"gadgetstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the caller's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

func NewCartHandler(service *services.CartService, validate *validator.Validate) *CartHandler {
	return &CartHandler{service: service, validate: validate}
}

// RegisterRoutes registers the cart routes, all behind auth.
func (h *CartHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	cart := router.Group("/cart", auth)
	cart.Get("/get-cart", h.HandleGet)
	cart.Post("/add-to-cart", h.HandleAdd)
	cart.Patch("/update-cart-quantity", h.HandleUpdateQuantity)
	cart.Patch("/:productId/remove-from-cart", h.HandleRemove)
	cart.Put("/clear-cart", h.HandleClear)
}

type CartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type AddToCartRequest struct {
	CartItems []CartItemRequest `json:"cartItems" validate:"dive"`
}

type UpdateQuantityRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

func (h *CartHandler) HandleGet(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	cart, err := h.service.GetCart(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"cart": cart})
}

func (h *CartHandler) HandleAdd(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	var req AddToCartRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	items := make([]services.CartItemInput, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		items = append(items, services.CartItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	cart, err := h.service.AddToCart(c.UserContext(), caller, items)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Items added to cart successfully",
		"cart":    cart,
	})
}

func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	var req UpdateQuantityRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	cart, err := h.service.UpdateCartQuantity(c.UserContext(), caller, req.ItemID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":     "Item quantity updated successfully",
		"updatedCart": cart,
	})
}

func (h *CartHandler) HandleRemove(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	cart, err := h.service.RemoveFromCart(c.UserContext(), caller, c.Params("productId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":     "Item removed from cart successfully",
		"updatedCart": cart,
	})
}

func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	cart, err := h.service.ClearCart(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Cart cleared successfully",
		"cart":    cart,
	})
}
