package wines

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"winery-backend/internal/application/gateway"
	"winery-backend/internal/application/marketplace"
	"winery-backend/internal/application/wallet"
	"winery-backend/internal/interfaces/handlers"
	"winery-backend/internal/middleware"
	"winery-backend/internal/pkg/response"
	"winery-backend/internal/pkg/validation"
)

type Handlers struct {
	Controller *marketplace.Controller
	Gateway    *gateway.Gateway
	Keyring    *wallet.Keyring
}

// GET /api/v1/wines/get-wines returns the current listing set without touching the chain.
func (h *Handlers) GetWines(c *fiber.Ctx) error {
	st := h.Controller.State()
	return response.Success(c, "Wines fetched successfully", st, fiber.Map{"count": len(st.Listings)})
}

// POST /api/v1/wines/refresh re-reads every wine from the chain.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	if _, err := h.Controller.Refresh(c.UserContext()); err != nil {
		return handlers.Error(c, err)
	}
	st := h.Controller.State()
	return response.Success(c, "Wines refreshed successfully", st, fiber.Map{"count": len(st.Listings)})
}

// GET /api/v1/wines/get-wine/:wine_id reads one wine straight from the chain.
func (h *Handlers) GetWine(c *fiber.Ctx) error {
	id, ok := validation.ParseWineID(c.Params("wine_id"))
	if !ok {
		return response.BadRequest(c, "Invalid wine_id")
	}
	l, err := h.Gateway.Get(c.UserContext(), id)
	if err != nil {
		return handlers.Error(c, err)
	}
	return response.Success(c, "Wine fetched successfully", l, nil)
}

// GET /api/v1/wines/contract-owner
func (h *Handlers) ContractOwner(c *fiber.Ctx) error {
	owner, err := h.Gateway.ContractOwner(c.UserContext())
	if err != nil {
		return handlers.Error(c, err)
	}
	return response.Success(c, "Contract owner fetched successfully", fiber.Map{"owner": owner}, nil)
}

// GET /api/v1/wines/owners
func (h *Handlers) Owners(c *fiber.Ctx) error {
	owners, err := h.Gateway.Owners(c.UserContext())
	if err != nil {
		return handlers.Error(c, err)
	}
	return response.Success(c, "Owners fetched successfully", fiber.Map{"owners": owners}, nil)
}

// POST /api/v1/wines/create-wine returns 201 with { tx_hash, state }
func (h *Handlers) CreateWine(c *fiber.Ctx) error {
	var body gateway.CreateInput
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	signer, err := h.Keyring.Signer(middleware.GetWallet(c))
	if err != nil {
		return handlers.Error(c, err)
	}
	tx, err := h.Controller.Create(c.UserContext(), signer, body)
	if err != nil {
		return handlers.Error(c, err)
	}
	return response.SuccessCreated(c, "Wine created successfully", h.actionResult(tx), nil)
}

type wineAction struct {
	WineID    *uint64 `json:"wine_id"`
	Recipient string  `json:"recipient"`
}

// POST /api/v1/wines/buy-wine { wine_id }
func (h *Handlers) BuyWine(c *fiber.Ctx) error {
	var body wineAction
	if err := json.Unmarshal(c.Body(), &body); err != nil || body.WineID == nil {
		return response.BadRequest(c, "Missing required field: wine_id")
	}
	signer, err := h.Keyring.Signer(middleware.GetWallet(c))
	if err != nil {
		return handlers.Error(c, err)
	}
	tx, err := h.Controller.Buy(c.UserContext(), signer, *body.WineID)
	if err != nil {
		return handlers.Error(c, err)
	}
	return response.Success(c, "Wine purchased successfully", h.actionResult(tx), nil)
}

// POST /api/v1/wines/gift-wine { wine_id, recipient }
// The recipient format is left to the contract binding.
func (h *Handlers) GiftWine(c *fiber.Ctx) error {
	var body wineAction
	if err := json.Unmarshal(c.Body(), &body); err != nil || body.WineID == nil {
		return response.BadRequest(c, "Missing required field: wine_id")
	}
	if strings.TrimSpace(body.Recipient) == "" {
		return response.BadRequest(c, "Missing required field: recipient")
	}
	signer, err := h.Keyring.Signer(middleware.GetWallet(c))
	if err != nil {
		return handlers.Error(c, err)
	}
	tx, err := h.Controller.Gift(c.UserContext(), signer, *body.WineID, strings.TrimSpace(body.Recipient))
	if err != nil {
		return handlers.Error(c, err)
	}
	return response.Success(c, "Wine gifted successfully", h.actionResult(tx), nil)
}

func (h *Handlers) actionResult(tx string) fiber.Map {
	st := h.Controller.State()
	if st.LastError != "" {
		log.Warn().Str("tx", tx).Str("refresh_error", st.LastError).Msg("transaction confirmed but listings are stale")
	}
	return fiber.Map{"tx_hash": tx, "state": st}
}
