package handlers

import (
	"github.com/food-delivery-platform/backend/internal/domain"
	"github.com/food-delivery-platform/backend/internal/service"
	sharedHTTP "github.com/food-delivery-platform/backend/internal/shared/http"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type CatalogHandler struct {
	catalog *service.CatalogService
	log     logrus.FieldLogger
}

func NewCatalogHandler(catalog *service.CatalogService, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

func (h *CatalogHandler) ListItems(c *fiber.Ctx) error {
	var itemType domain.ItemType
	if raw := c.Query("type"); raw != "" {
		parsed, err := domain.ParseItemType(raw)
		if err != nil {
			return errorResponse(c, h.log, err)
		}
		itemType = parsed
	}

	items, err := h.catalog.ListItems(c.UserContext(), itemType)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Items retrieved successfully", items)
}

func (h *CatalogHandler) GetItem(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	item, err := h.catalog.GetItem(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Item retrieved successfully", item)
}

func (h *CatalogHandler) CreateItem(c *fiber.Ctx) error {
	var request CreateItemRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c, err)
	}

	itemType, err := domain.ParseItemType(request.ItemType)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	item, err := h.catalog.CreateItem(c.UserContext(), domain.NewItem{
		Name:         request.Name,
		Description:  request.Description,
		Price:        request.Price,
		Stock:        request.Stock,
		Availability: request.Availability,
		Type:         itemType,
	})
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.CreatedResponse(c, "Item created successfully", item)
}

func (h *CatalogHandler) UpdateItem(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	var request UpdateItemRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c, err)
	}

	patch := domain.ItemPatch{
		Name:         request.Name,
		Description:  request.Description,
		Price:        request.Price,
		Stock:        request.Stock,
		Availability: request.Availability,
	}
	if request.ItemType != nil {
		itemType, err := domain.ParseItemType(*request.ItemType)
		if err != nil {
			return errorResponse(c, h.log, err)
		}
		patch.Type = &itemType
	}

	item, err := h.catalog.UpdateItem(c.UserContext(), id, patch)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Item updated successfully", item)
}

func (h *CatalogHandler) DeleteItem(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	if err := h.catalog.DeleteItem(c.UserContext(), id); err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Item deleted successfully", nil)
}

func (h *CatalogHandler) ListBundles(c *fiber.Ctx) error {
	bundles, err := h.catalog.ListBundles(c.UserContext())
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Bundles retrieved successfully", mapBundles(bundles))
}

func (h *CatalogHandler) GetBundle(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	bundle, err := h.catalog.GetBundle(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Bundle retrieved successfully", mapBundle(bundle))
}

func (h *CatalogHandler) CreatePredefinedBundle(c *fiber.Ctx) error {
	var request CreatePredefinedBundleRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c, err)
	}

	bundle, err := h.catalog.CreatePredefinedBundle(c.UserContext(),
		request.Name, request.Description, request.ItemIDs, request.Price)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.CreatedResponse(c, "Bundle created successfully", mapBundle(bundle))
}

func (h *CatalogHandler) CreateDiscountedBundle(c *fiber.Ctx) error {
	var request CreateDiscountedBundleRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c, err)
	}

	bundle, err := h.catalog.CreateDiscountedBundle(c.UserContext(),
		request.Name, request.Description, request.RequiredItemTypes, request.Discount)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.CreatedResponse(c, "Bundle created successfully", mapBundle(bundle))
}

func (h *CatalogHandler) CreateOneItemBundle(c *fiber.Ctx) error {
	var request CreateOneItemBundleRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c, err)
	}

	bundle, err := h.catalog.CreateOneItemBundle(c.UserContext(), request.ItemID)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.CreatedResponse(c, "Bundle created successfully", mapBundle(bundle))
}

func (h *CatalogHandler) UpdatePredefinedBundle(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	var request UpdatePredefinedBundleRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c, err)
	}

	bundle, err := h.catalog.UpdatePredefinedBundle(c.UserContext(), id, domain.PredefinedBundlePatch{
		Name:        request.Name,
		Description: request.Description,
		ItemIDs:     request.ItemIDs,
		Price:       request.Price,
	})
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Bundle updated successfully", mapBundle(bundle))
}

func (h *CatalogHandler) UpdateDiscountedBundle(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	var request UpdateDiscountedBundleRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c, err)
	}

	patch := domain.DiscountedBundlePatch{
		Name:        request.Name,
		Description: request.Description,
		Discount:    request.Discount,
	}
	if request.RequiredItemTypes != nil {
		patch.RequiredItemTypes = make([]domain.ItemType, 0, len(request.RequiredItemTypes))
		for _, raw := range request.RequiredItemTypes {
			itemType, err := domain.ParseItemType(raw)
			if err != nil {
				return errorResponse(c, h.log, err)
			}
			patch.RequiredItemTypes = append(patch.RequiredItemTypes, itemType)
		}
	}

	bundle, err := h.catalog.UpdateDiscountedBundle(c.UserContext(), id, patch)
	if err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Bundle updated successfully", mapBundle(bundle))
}

func (h *CatalogHandler) DeleteBundle(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	if err := h.catalog.DeleteBundle(c.UserContext(), id); err != nil {
		return errorResponse(c, h.log, err)
	}
	return sharedHTTP.SuccessResponse(c, "Bundle deleted successfully", nil)
}
