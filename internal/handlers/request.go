package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"gadgetstore/internal/apperr"
	"gadgetstore/internal/middleware"
	"gadgetstore/internal/models"
	"gadgetstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// NewValidator returns a validator with the catalog rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	return v
}

// appError aliases apperr.Error so that embedding it does not create a field
// named Error, which would hide the promoted Error() method.
type appError = apperr.Error

// ValidationFailure is a 400 carrying per-field messages.
type ValidationFailure struct {
	*appError
	fields map[string]string
}

func (e *ValidationFailure) Fields() map[string]string { return e.fields }

// bind parses the request body into dst and validates it.
func bind(c *fiber.Ctx, v *validator.Validate, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if err := v.Struct(dst); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperr.Validation("Invalid request body")
		}
		fields := make(map[string]string, len(validationErrors))
		names := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
			names = append(names, e.Field())
		}
		return &ValidationFailure{
			appError: apperr.New(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed: "+strings.Join(names, ", ")),
			fields:   fields,
		}
	}
	return nil
}

// identity returns the caller resolved by the auth middleware.
func identity(c *fiber.Ctx) (services.Identity, error) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return services.Identity{}, apperr.Unauthenticated("Authentication required")
	}
	return id, nil
}

// upload reads the multipart file in field and stores it through media.
func upload(c *fiber.Ctx, media *services.MediaService, field string, purpose services.MediaPurpose, ownerID string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", apperr.Validation("No image file uploaded")
	}
	f, err := fh.Open()
	if err != nil {
		return "", apperr.Internal(err, "open upload")
	}
	defer f.Close()

	return media.SaveImage(c.UserContext(), purpose, ownerID, services.Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Content:  f,
	})
}
