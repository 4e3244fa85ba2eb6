package handlers

import (
	"github.com/food-delivery-platform/backend/internal/service"
	sharedHTTP "github.com/food-delivery-platform/backend/internal/shared/http"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	orders    *service.OrderService
	addresses *service.AddressService
	log       logrus.FieldLogger
}

func NewOrderHandler(orders *service.OrderService, addresses *service.AddressService, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{orders: orders, addresses: addresses, log: log}
}

func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var request CreateOrderRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c, err)
	}

	// Basic validation
	if request.CustomerID == uuid.Nil {
		return sharedHTTP.BadRequestResponse(c, "Customer ID is required", nil)
	}

	addressID := request.AddressID
	if request.Address != nil {
		address, err := h.addresses.GetOrCreate(c.UserContext(), request.Address.toDomain())
		if err != nil {
			return errorResponse(c, h.log, err)
		}
		addressID = address.ID
	}
	if addressID == uuid.Nil {
		return sharedHTTP.BadRequestResponse(c, "Address ID or address is required", nil)
	}

	order, err := h.orders.CreateOrder(c.UserContext(), request.CustomerID, addressID)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.CreatedResponse(c, "Order created successfully", mapOrder(order))
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	order, err := h.orders.GetOrderDetails(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Order retrieved successfully", mapOrder(order))
}

func (h *OrderHandler) AddBundle(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	var request AddBundleRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c, err)
	}

	order, err := h.orders.AddBundleToOrder(c.UserContext(), id, request.BundleID, request.Selections)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Bundle added to order", mapOrder(order))
}

func (h *OrderHandler) AddItem(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	var request AddItemRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c, err)
	}

	order, err := h.orders.AddItemToOrder(c.UserContext(), id, request.ItemID)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Item added to order", mapOrder(order))
}

func (h *OrderHandler) ValidateOrder(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	order, err := h.orders.ValidateOrder(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Order validated successfully", mapOrder(order))
}

func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	if err := h.orders.CancelOrder(c.UserContext(), id); err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Order cancelled successfully", nil)
}

func (h *OrderHandler) ListCustomerOrders(c *fiber.Ctx) error {
	customerID, ok := parseID(c, "customer_id")
	if !ok {
		return invalidID(c, "customer_id")
	}

	orders, err := h.orders.ListOrdersForCustomer(c.UserContext(), customerID)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Orders retrieved successfully", mapOrders(orders))
}

func (h *OrderHandler) CreateAddress(c *fiber.Ctx) error {
	var request AddressRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c, err)
	}

	address, err := h.addresses.GetOrCreate(c.UserContext(), request.toDomain())
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Address resolved successfully", address)
}

func (h *OrderHandler) GetAddress(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	address, err := h.addresses.GetAddress(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Address retrieved successfully", address)
}
