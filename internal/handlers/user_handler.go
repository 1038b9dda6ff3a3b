package handlers

import (
	"gadgetstore/internal/middleware"
	"gadgetstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const forgotPasswordMessage = "If the email exists, a password reset link has been sent"

// UserHandler handles HTTP requests for accounts and authentication.
type UserHandler struct {
	auth     *services.AuthService
	users    *services.UserService
	media    *services.MediaService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(auth *services.AuthService, users *services.UserService, media *services.MediaService, validate *validator.Validate) *UserHandler {
	return &UserHandler{auth: auth, users: users, media: media, validate: validate}
}

// RegisterRoutes registers the user routes. auth must resolve the caller.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	users := router.Group("/users")
	users.Post("/check-email", h.HandleCheckEmail)
	users.Post("/register", h.HandleRegister)
	users.Post("/login", h.HandleLogin)
	users.Get("/details", auth, h.HandleDetails)
	users.Put("/update-password", auth, h.HandleUpdatePassword)
	users.Put("/profile", auth, h.HandleUpdateProfile)
	users.Patch("/:id/set-as-admin", auth, middleware.AdminRequired(), h.HandleSetAsAdmin)
	users.Post("/upload-profile-image", auth, h.HandleUploadProfileImage)
	users.Get("/all", auth, middleware.AdminRequired(), h.HandleGetAll)
	users.Post("/forgot-password", h.HandleForgotPassword)
	users.Post("/reset-password/:token", h.HandleResetPassword)
}

type EmailRequest struct {
	Email string `json:"email"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required"`
	MobileNo  string `json:"mobileNo" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type PasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	MobileNo  *string `json:"mobileNo"`
}

func (h *UserHandler) HandleCheckEmail(c *fiber.Ctx) error {
	var req EmailRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	exists, err := h.users.EmailExists(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Duplicate email found"})
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "No duplicate email found"})
}

// HandleRegister handles new user registration.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	user, err := h.auth.RegisterUser(c.UserContext(), services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		MobileNo:  req.MobileNo,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// HandleLogin handles user login and issues a JWT token.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	token, err := h.auth.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"access":  token,
	})
}

func (h *UserHandler) HandleDetails(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetProfile(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

func (h *UserHandler) HandleUpdatePassword(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	var req PasswordRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	if err := h.users.UpdatePassword(c.UserContext(), caller, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	var req UpdateProfileRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.UserContext(), caller, services.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		MobileNo:  req.MobileNo,
	})
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleSetAsAdmin(c *fiber.Ctx) error {
	user, err := h.users.SetAsAdmin(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"updateUser": user})
}

func (h *UserHandler) HandleUploadProfileImage(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	imageURL, err := upload(c, h.media, "profileImage", services.MediaProfile, caller.UserID)
	if err != nil {
		return err
	}
	user, err := h.users.SetProfileImage(c.UserContext(), caller, imageURL)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"imageUrl": imageURL,
		"user":     user,
		"message":  "Profile image updated successfully",
	})
}

func (h *UserHandler) HandleGetAll(c *fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	users, err := h.users.GetAllUsers(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// HandleForgotPassword answers the same way whether or not the account
// exists. The reset link is only ever delivered by email.
func (h *UserHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var req EmailRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	if err := h.auth.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": forgotPasswordMessage})
}

func (h *UserHandler) HandleResetPassword(c *fiber.Ctx) error {
	var req PasswordRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}
	user, err := h.auth.ResetPassword(c.UserContext(), c.Params("token"), req.NewPassword)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Password reset successfully",
		"email":   user.Email,
	})
}
