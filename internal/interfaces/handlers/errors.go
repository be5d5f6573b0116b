// Package handlers holds what the HTTP handler packages share.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"winery-backend/internal/application/gateway"
	"winery-backend/internal/application/wallet"
	"winery-backend/internal/pkg/response"
)

// StatusFor maps an application error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, gateway.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, wallet.ErrUnknownSigner):
		return fiber.StatusForbidden
	case errors.Is(err, gateway.ErrUpload),
		errors.Is(err, gateway.ErrChainCall),
		errors.Is(err, gateway.ErrMetadataUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// Error writes err in the standard error format. The kind goes in details so clients
// can tell an upload failure from a chain failure.
func Error(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	details := map[string]interface{}{}
	if kind := gateway.Kind(err); kind != nil {
		details["kind"] = kind.Error()
	}
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "Internal Server Error"
	}
	return response.Error(c, message, status, details)
}
