package handlers

import (
	"gadgetstore/internal/middleware"
	"gadgetstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes, all behind auth.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	orders := router.Group("/orders", auth)
	orders.Post("/checkout", h.HandleCheckout)
	orders.Get("/my-orders", h.HandleMyOrders)
	orders.Get("/all-orders", middleware.AdminRequired(), h.HandleAllOrders)
}

// HandleCheckout turns the caller's cart into an order.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	if _, err := h.service.CreateOrder(c.UserContext(), caller); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Ordered Successfully"})
}

func (h *OrderHandler) HandleMyOrders(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	orders, err := h.service.GetUserOrders(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// HandleAllOrders lists every order. The token's admin flag is checked by
// the route and the stored account again by the service.
func (h *OrderHandler) HandleAllOrders(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	orders, err := h.service.GetAllOrders(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"orders": orders})
}
