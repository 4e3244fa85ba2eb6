// Package http holds the JSON envelope every endpoint answers with.
package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
}

type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func SuccessResponse(c *fiber.Ctx, message string, data interface{}) error {
	return respond(c, fiber.StatusOK, message, data, nil)
}

func CreatedResponse(c *fiber.Ctx, message string, data interface{}) error {
	return respond(c, fiber.StatusCreated, message, data, nil)
}

func BadRequestResponse(c *fiber.Ctx, message string, details map[string]interface{}) error {
	return respond(c, fiber.StatusBadRequest, message, nil, &APIError{Code: "BAD_REQUEST", Message: message, Details: details})
}

func NotFoundResponse(c *fiber.Ctx, message string) error {
	return respond(c, fiber.StatusNotFound, message, nil, &APIError{Code: "NOT_FOUND", Message: message})
}

func ConflictResponse(c *fiber.Ctx, message string, details map[string]interface{}) error {
	return respond(c, fiber.StatusConflict, message, nil, &APIError{Code: "CONFLICT", Message: message, Details: details})
}

func InternalServerErrorResponse(c *fiber.Ctx, message string, details map[string]interface{}) error {
	return respond(c, fiber.StatusInternalServerError, message, nil,
		&APIError{Code: "INTERNAL_SERVER_ERROR", Message: message, Details: details})
}

func respond(c *fiber.Ctx, status int, message string, data interface{}, apiErr *APIError) error {
	return c.Status(status).JSON(APIResponse{
		Success:   apiErr == nil,
		Message:   message,
		Data:      data,
		Error:     apiErr,
		Timestamp: time.Now(),
		RequestID: RequestID(c),
	})
}

// RequestID returns the caller's request id, minting one when absent.
func RequestID(c *fiber.Ctx) string {
	requestID := c.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
		c.Request().Header.Set(RequestIDHeader, requestID)
	}
	c.Set(RequestIDHeader, requestID)
	return requestID
}
