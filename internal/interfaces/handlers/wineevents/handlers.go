package wineevents

import (
	"github.com/gofiber/fiber/v2"

	"winery-backend/internal/application/marketplace"
	"winery-backend/internal/pkg/response"
	"winery-backend/internal/pkg/validation"
)

type Handlers struct {
	Service *marketplace.EventService
}

// GetWineEvents GET /api/v1/wine-events/get-wine-events[?wine_id=]
func (h *Handlers) GetWineEvents(c *fiber.Ctx) error {
	var wineID *uint64
	if raw := c.Query("wine_id"); raw != "" {
		id, ok := validation.ParseWineID(raw)
		if !ok {
			return response.BadRequest(c, "Invalid wine_id")
		}
		wineID = &id
	}
	events, err := h.Service.List(c.UserContext(), wineID)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Wine events fetched successfully", events, fiber.Map{"count": len(events)})
}
