package handlers

import (
	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/food-delivery-platform/backend/internal/service"
	sharedHTTP "github.com/food-delivery-platform/backend/internal/shared/http"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	users *service.UserService
	log   logrus.FieldLogger
}

func NewUserHandler(users *service.UserService, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var request RegisterRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c, err)
	}

	user, err := h.users.Register(c.UserContext(), domain.Registration{
		Username:    request.Username,
		Password:    request.Password,
		Type:        domain.UserType(request.UserType),
		Customer:    request.Customer,
		VehicleType: request.VehicleType,
	})
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.CreatedResponse(c, "User registered successfully", mapUser(user))
}

func (h *UserHandler) Authenticate(c *fiber.Ctx) error {
	var request AuthenticateRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c, err)
	}

	user, err := h.users.Authenticate(c.UserContext(), request.Username, request.Password)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Credentials verified", mapUser(user))
}

func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.UserContext(), domain.UserType(c.Query("type")))
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Users retrieved successfully", mapUsers(users))
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	user, err := h.users.GetUser(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "User retrieved successfully", mapUser(user))
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	if err := h.users.DeleteUser(c.UserContext(), id); err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "User deleted successfully", nil)
}

func (h *UserHandler) SetAvailability(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	var request AvailabilityRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c, err)
	}

	user, err := h.users.SetDriverAvailability(c.UserContext(), id, request.Available)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Availability updated", mapUser(user))
}
