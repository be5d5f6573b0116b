package wallet

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"winery-backend/internal/application/marketplace"
	walletsvc "winery-backend/internal/application/wallet"
	"winery-backend/internal/interfaces/handlers"
	"winery-backend/internal/middleware"
	"winery-backend/internal/pkg/response"
	"winery-backend/internal/pkg/validation"
)

// Handlers holds dependencies for wallet session endpoints.
type Handlers struct {
	Keyring    *walletsvc.Keyring
	Controller *marketplace.Controller
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

type ConnectRequest struct {
	Address string `json:"address"`
}

// Connect POST /api/v1/wallet/connect: bind a signing wallet to a fresh session and refresh listings for it.
func (h *Handlers) Connect(c *fiber.Ctx) error {
	var req ConnectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Address is required")
	}
	address := strings.TrimSpace(req.Address)
	if !validation.IsValidAddress(address) {
		return response.BadRequest(c, "Invalid wallet address")
	}
	signer, err := h.Keyring.Signer(address)
	if err != nil {
		return handlers.Error(c, err)
	}

	if old := middleware.GetSessionID(c); old != "" {
		_ = h.Rdb.Del(context.Background(), middleware.SessionRedisPrefix+old).Err()
	}
	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionWallet(c, signer.Address())

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = sessionID
	c.Cookie(&cookie)

	if err := h.Controller.SetIdentity(c.UserContext(), signer.Address()); err != nil {
		log.Warn().Err(err).Str("wallet", signer.Address()).Msg("wallet connected but listing refresh failed")
	}
	return response.Success(c, "Wallet connected", fiber.Map{"wallet": signer.Address()}, nil)
}

// Me GET /api/v1/wallet/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	w := middleware.GetWallet(c)
	if w == "" {
		return response.Error(c, "No wallet connected", fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Wallet connected", fiber.Map{
		"wallet":   w,
		"chain_id": h.Keyring.ChainID().String(),
		// A session can outlive a key removed from SIGNER_PRIVATE_KEYS.
		"can_sign": h.Keyring.Has(w),
	}, nil)
}

// Disconnect DELETE /api/v1/wallet/disconnect: drop the session and clear the cookie.
func (h *Handlers) Disconnect(c *fiber.Ctx) error {
	w := middleware.GetWallet(c)
	if sessionID := middleware.GetSessionID(c); sessionID != "" {
		_ = h.Rdb.Del(context.Background(), middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	if w != "" && strings.EqualFold(h.Controller.State().Identity, w) {
		_ = h.Controller.SetIdentity(c.UserContext(), "")
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Wallet disconnected", nil, nil)
}
