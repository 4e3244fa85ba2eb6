package handlers

import (
	"errors"

	"github.com/food-delivery-platform/backend/internal/app"
	sharedHTTP "github.com/food-delivery-platform/backend/internal/shared/http"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

// NewApp builds the HTTP surface over the services of a.
func NewApp(a *app.App) *fiber.App {
	log := a.Log.WithField("component", "http")

	server := setupFiberApp(log)
	setupRoutes(server, a, log)
	return server
}

func setupFiberApp(log *logrus.Entry) *fiber.App {
	server := fiber.New(fiber.Config{
		AppName:      "Food Delivery API v1.0",
		ErrorHandler: errorHandler(log),
	})

	// Middlewares
	server.Use(recover.New())
	server.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} - ${latency}\n",
		Output: log.Writer(),
	}))
	server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID",
	}))

	return server
}

func setupRoutes(server *fiber.App, a *app.App, log logrus.FieldLogger) {
	catalogHandler := NewCatalogHandler(a.Catalog, log)
	orderHandler := NewOrderHandler(a.Orders, a.Addresses, log)
	deliveryHandler := NewDeliveryHandler(a.Deliveries, log)
	userHandler := NewUserHandler(a.Users, log)

	// API v1 routes
	api := server.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		if err := a.Store.Ping(c.UserContext()); err != nil {
			log.WithError(err).Warn("Health check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"message": "Storage unreachable",
			})
		}
		return sharedHTTP.SuccessResponse(c, "Food delivery service is healthy", map[string]interface{}{
			"service": "food-delivery",
			"status":  "healthy",
			"storage": a.Config.StorageDriver,
		})
	})

	// Item routes
	items := api.Group("/items")
	items.Get("/", catalogHandler.ListItems) // GET /api/v1/items?type=
	items.Post("/", catalogHandler.CreateItem)
	items.Get("/:id", catalogHandler.GetItem)
	items.Patch("/:id", catalogHandler.UpdateItem)
	items.Delete("/:id", catalogHandler.DeleteItem)

	// Bundle routes
	bundles := api.Group("/bundles")
	bundles.Get("/", catalogHandler.ListBundles)
	bundles.Post("/predefined", catalogHandler.CreatePredefinedBundle)
	bundles.Post("/discounted", catalogHandler.CreateDiscountedBundle)
	bundles.Post("/one-item", catalogHandler.CreateOneItemBundle)
	bundles.Get("/:id", catalogHandler.GetBundle)
	bundles.Patch("/:id/predefined", catalogHandler.UpdatePredefinedBundle)
	bundles.Patch("/:id/discounted", catalogHandler.UpdateDiscountedBundle)
	bundles.Delete("/:id", catalogHandler.DeleteBundle)

	// Order routes
	orders := api.Group("/orders")
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Post("/:id/bundles", orderHandler.AddBundle)
	orders.Post("/:id/items", orderHandler.AddItem)
	orders.Post("/:id/validate", orderHandler.ValidateOrder)
	orders.Delete("/:id", orderHandler.CancelOrder)

	// Customer routes
	customers := api.Group("/customers")
	customers.Get("/:customer_id/orders", orderHandler.ListCustomerOrders) // GET /api/v1/customers/:customer_id/orders

	// Address routes
	addresses := api.Group("/addresses")
	addresses.Post("/", orderHandler.CreateAddress)
	addresses.Get("/:id", orderHandler.GetAddress)

	// Delivery routes
	deliveries := api.Group("/deliveries")
	deliveries.Get("/assignable", deliveryHandler.ListAssignableOrders) // GET /api/v1/deliveries/assignable?flow=
	deliveries.Post("/", deliveryHandler.AssignDelivery)
	deliveries.Get("/:id", deliveryHandler.GetDelivery)
	deliveries.Post("/:id/complete", deliveryHandler.CompleteDelivery)

	// Driver routes
	drivers := api.Group("/drivers")
	drivers.Get("/:id/delivery", deliveryHandler.GetAssignedDelivery)
	drivers.Get("/:id/deliveries", deliveryHandler.ListDriverDeliveries)
	drivers.Get("/:id/itinerary", deliveryHandler.GetItinerary)
	drivers.Put("/:id/availability", userHandler.SetAvailability)

	// User routes
	users := api.Group("/users")
	users.Post("/", userHandler.Register)
	users.Post("/authenticate", userHandler.Authenticate)
	users.Get("/", userHandler.ListUsers) // GET /api/v1/users?type=
	users.Get("/:id", userHandler.GetUser)
	users.Delete("/:id", userHandler.DeleteUser)

	// Route not found
	server.Use("*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Route not found",
		})
	})
}

func errorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		}

		log.WithError(err).WithField("path", c.Path()).Error("Unhandled request error")

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}
