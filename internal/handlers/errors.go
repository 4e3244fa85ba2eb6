package handlers

import (
	"errors"

	"github.com/food-delivery-platform/backend/internal/domain"
	sharedHTTP "github.com/food-delivery-platform/backend/internal/shared/http"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// errorResponse maps a service error onto the envelope. Anything that is not
// a caller mistake is logged and answered as a 500 without internals.
func errorResponse(c *fiber.Ctx, log logrus.FieldLogger, err error) error {
	var shortage *domain.InsufficientStockError
	switch {
	case errors.As(err, &shortage):
		return sharedHTTP.ConflictResponse(c, "Insufficient stock", map[string]interface{}{
			"item_id":   shortage.ItemID,
			"item_name": shortage.ItemName,
			"requested": shortage.Requested,
			"available": shortage.Available,
			"shortfall": shortage.Shortfall(),
		})
	case errors.Is(err, domain.ErrNotFound):
		return sharedHTTP.NotFoundResponse(c, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		return sharedHTTP.BadRequestResponse(c, err.Error(), map[string]interface{}{"kind": "invalid_argument"})
	case errors.Is(err, domain.ErrInvalidState):
		return sharedHTTP.BadRequestResponse(c, err.Error(), map[string]interface{}{"kind": "invalid_state"})
	case errors.Is(err, domain.ErrBundleKindMismatch):
		return sharedHTTP.BadRequestResponse(c, err.Error(), map[string]interface{}{"kind": "bundle_kind_mismatch"})
	}

	log.WithError(err).WithFields(logrus.Fields{
		"method":     c.Method(),
		"path":       c.Path(),
		"request_id": sharedHTTP.RequestID(c),
	}).Error("Request failed")
	return sharedHTTP.InternalServerErrorResponse(c, "Internal server error", nil)
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(param))
	return id, err == nil
}

func invalidID(c *fiber.Ctx, param string) error {
	return sharedHTTP.BadRequestResponse(c, "Invalid "+param, map[string]interface{}{
		param: c.Params(param),
	})
}

func invalidBody(c *fiber.Ctx, err error) error {
	return sharedHTTP.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
		"parse_error": err.Error(),
	})
}
