package handlers

import (
	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/food-delivery-platform/backend/internal/service"
	sharedHTTP "github.com/food-delivery-platform/backend/internal/shared/http"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type DeliveryHandler struct {
	deliveries *service.DeliveryService
	log        logrus.FieldLogger
}

func NewDeliveryHandler(deliveries *service.DeliveryService, log logrus.FieldLogger) *DeliveryHandler {
	return &DeliveryHandler{deliveries: deliveries, log: log}
}

func (h *DeliveryHandler) AssignDelivery(c *fiber.Ctx) error {
	var request AssignDeliveryRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c, err)
	}

	delivery, err := h.deliveries.CreateAndAssignDelivery(c.UserContext(),
		domain.AssignmentFlow(request.Flow), request.OrderIDs, request.DriverID)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.CreatedResponse(c, "Delivery assigned successfully", delivery)
}

func (h *DeliveryHandler) GetDelivery(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	delivery, err := h.deliveries.GetDeliveryDetails(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Delivery retrieved successfully", delivery)
}

func (h *DeliveryHandler) CompleteDelivery(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	delivery, err := h.deliveries.CompleteDelivery(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Delivery completed successfully", delivery)
}

// ListAssignableOrders defaults to the driver claim flow.
func (h *DeliveryHandler) ListAssignableOrders(c *fiber.Ctx) error {
	flow := domain.AssignmentFlow(c.Query("flow", string(domain.FlowDriverClaim)))

	orders, err := h.deliveries.ListAssignableOrders(c.UserContext(), flow)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Orders retrieved successfully", mapOrders(orders))
}

func (h *DeliveryHandler) GetAssignedDelivery(c *fiber.Ctx) error {
	driverID, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	delivery, err := h.deliveries.GetAssignedDelivery(c.UserContext(), driverID)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	if delivery == nil {
		return sharedHTTP.SuccessResponse(c, "No delivery in progress", nil)
	}
	return sharedHTTP.SuccessResponse(c, "Delivery retrieved successfully", delivery)
}

func (h *DeliveryHandler) ListDriverDeliveries(c *fiber.Ctx) error {
	driverID, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	deliveries, err := h.deliveries.ListDeliveriesForDriver(c.UserContext(), driverID)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Deliveries retrieved successfully", deliveries)
}

func (h *DeliveryHandler) GetItinerary(c *fiber.Ctx) error {
	driverID, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	itinerary, err := h.deliveries.GetItinerary(c.UserContext(), driverID)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	if itinerary == nil {
		return sharedHTTP.SuccessResponse(c, "No delivery in progress", nil)
	}
	return sharedHTTP.SuccessResponse(c, itinerary.Summary(), itinerary)
}
