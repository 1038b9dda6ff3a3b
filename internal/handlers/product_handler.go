package handlers

import (
	"fmt"
	"net/url"

	"gadgetstore/internal/middleware"
	"gadgetstore/internal/models"
	"gadgetstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	media    *services.MediaService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, media *services.MediaService, validate *validator.Validate) *ProductHandler {
	return &ProductHandler{service: service, media: media, validate: validate}
}

// RegisterRoutes registers the product routes. auth must resolve the caller.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	admin := []fiber.Handler{auth, middleware.AdminRequired()}

	products := router.Group("/products")
	products.Post("/", append(admin, h.HandleCreate)...)
	products.Get("/all", append(admin, h.HandleGetAll)...)
	products.Get("/active", h.HandleGetActive)
	products.Get("/new-arrivals", h.HandleNewArrivals)
	products.Get("/category/:category", h.HandleByCategory)
	products.Post("/search-by-name", h.HandleSearchByName)
	products.Post("/search-by-price", h.HandleSearchByPrice)
	products.Post("/upload-image", append(admin, h.HandleUploadImage)...)
	products.Get("/:productId", h.HandleGet)
	products.Patch("/:productId/update", append(admin, h.HandleUpdate)...)
	products.Patch("/:productId/archive", append(admin, h.HandleArchive)...)
	products.Patch("/:productId/activate", append(admin, h.HandleActivate)...)
}

type CreateProductRequest struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	Price        *float64 `json:"price" validate:"required,gte=0"`
	Category     string   `json:"category" validate:"omitempty,category"`
	ImageURL     string   `json:"imageUrl"`
	IsNewArrival bool     `json:"isNewArrival"`
}

type UpdateProductRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=1"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	Category     *string  `json:"category" validate:"omitempty,category"`
	ImageURL     *string  `json:"imageUrl"`
	IsNewArrival *bool    `json:"isNewArrival"`
}

type SearchByNameRequest struct {
	ProductName string `json:"productName"`
}

type SearchByPriceRequest struct {
	MinPrice *float64 `json:"minPrice"`
	MaxPrice *float64 `json:"maxPrice"`
}

func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateProductRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), services.CreateProductInput{
		Name:         req.Name,
		Description:  req.Description,
		Price:        *req.Price,
		Category:     models.Category(req.Category),
		ImageURL:     req.ImageURL,
		IsNewArrival: req.IsNewArrival,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Product added successfully",
		"result":  product,
	})
}

func (h *ProductHandler) HandleGetAll(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleGetActive(c *fiber.Ctx) error {
	products, err := h.service.GetActiveProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleNewArrivals always answers 200, with an empty list on failure.
func (h *ProductHandler) HandleNewArrivals(c *fiber.Ctx) error {
	return c.JSON(h.service.GetNewArrivals(c.UserContext()))
}

func (h *ProductHandler) HandleByCategory(c *fiber.Ctx) error {
	category, err := url.PathUnescape(c.Params("category"))
	if err != nil {
		category = c.Params("category")
	}
	products, err := h.service.GetByCategory(c.UserContext(), category)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return listEnvelope(c, fiber.StatusNotFound, fmt.Sprintf("No products found in %s category", category), products)
	}
	return listEnvelope(c, fiber.StatusOK, fmt.Sprintf("Found %d products in %s category", len(products), category), products)
}

func (h *ProductHandler) HandleSearchByName(c *fiber.Ctx) error {
	var req SearchByNameRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	products, err := h.service.SearchByName(c.UserContext(), req.ProductName)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return listEnvelope(c, fiber.StatusNotFound, fmt.Sprintf("No products found matching %q", req.ProductName), products)
	}
	return listEnvelope(c, fiber.StatusOK, fmt.Sprintf("Found %d product(s) matching %q", len(products), req.ProductName), products)
}

func (h *ProductHandler) HandleSearchByPrice(c *fiber.Ctx) error {
	var req SearchByPriceRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	products, err := h.service.SearchByPrice(c.UserContext(), req.MinPrice, req.MaxPrice)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleUploadImage(c *fiber.Ctx) error {
	imageURL, err := upload(c, h.media, "productImage", services.MediaProduct, "")
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"imageUrl": imageURL,
		"message":  "Image uploaded successfully",
	})
}

func (h *ProductHandler) HandleGet(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("productId"))
	if err != nil {
		return err
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	var req UpdateProductRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	in := services.UpdateProductInput{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		ImageURL:     req.ImageURL,
		IsNewArrival: req.IsNewArrival,
	}
	if req.Category != nil {
		category := models.Category(*req.Category)
		in.Category = &category
	}
	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("productId"), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product updated successfully",
		"product": product,
	})
}

func (h *ProductHandler) HandleArchive(c *fiber.Ctx) error {
	product, changed, err := h.service.ArchiveProduct(c.UserContext(), c.Params("productId"))
	if err != nil {
		return err
	}
	if !changed {
		return c.JSON(fiber.Map{"message": "Product already archived", "archivedProduct": product})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Product archived successfully"})
}

func (h *ProductHandler) HandleActivate(c *fiber.Ctx) error {
	product, changed, err := h.service.ActivateProduct(c.UserContext(), c.Params("productId"))
	if err != nil {
		return err
	}
	if !changed {
		return c.JSON(fiber.Map{"message": "Product already active", "activateProduct": product})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Product activated successfully"})
}

func listEnvelope(c *fiber.Ctx, status int, message string, products []models.Product) error {
	return c.Status(status).JSON(fiber.Map{
		"success": status == fiber.StatusOK,
		"message": message,
		"data":    products,
		"count":   len(products),
	})
}
