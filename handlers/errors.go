package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/vpoint-tv/vpoint-api/services"
	"github.com/vpoint-tv/vpoint-api/utils"
	"github.com/vpoint-tv/vpoint-api/utils/response"
)

// RespondError maps a service error onto the response envelope
func RespondError(c *fiber.Ctx, err error) error {
	var (
		validationErr *services.ValidationError
		notFoundErr   *services.NotFoundError
		permissionErr *services.PermissionError
	)

	switch {
	case errors.As(err, &validationErr):
		return response.ValidationError(c, validationErr.Field, validationErr.Message)
	case errors.As(err, &notFoundErr):
		return response.NotFound(c, notFoundErr.Error())
	case errors.As(err, &permissionErr):
		return response.Forbidden(c, permissionErr.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return response.Unauthorized(c, "Invalid operator name or password")
	case errors.Is(err, services.ErrOperatorSuspended):
		return response.Forbidden(c, "Operator account is suspended")
	}

	utils.Log.WithError(err).WithFields(map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
	}).Error("request failed")
	return response.InternalServerError(c, "Internal server error")
}

// BadBody reports a request body that could not be decoded
func BadBody(c *fiber.Ctx, err error) error {
	return response.ErrorWithDetails(c, fiber.StatusBadRequest, "Invalid request body", "BAD_REQUEST", err.Error())
}
