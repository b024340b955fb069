package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/queryvault/queryvault/internal/types"
	"github.com/queryvault/queryvault/internal/utils"
)

// parseID extracts the numeric :id path parameter.
func parseID(c *fiber.Ctx) (uint64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// respondServiceError maps the service error taxonomy to HTTP statuses:
// ValidationError -> 400, NotFoundError -> 404, everything else -> 500.
func respondServiceError(c *fiber.Ctx, err error, op string) error {
	var validationErr *types.ValidationError
	if errors.As(err, &validationErr) {
		return utils.ValidationErrorResponse(c, validationErr.Error())
	}

	var notFoundErr *types.NotFoundError
	if errors.As(err, &notFoundErr) {
		return utils.NotFoundResponse(c, notFoundErr.Error())
	}

	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, op)
}
