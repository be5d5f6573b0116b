package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionConfig for the Redis-backed wallet session.
type SessionConfig struct {
	Secret            string
	RedisURL          string
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	SessionCookieName  = "winery.sid"
	SessionRedisPrefix = "session:" // exported for wallet disconnect (Del key)
	sessionMaxAge      = 24 * time.Hour

	sessionDataLocal = "session_data"
	sessionIDLocal   = "session_id"
	walletLocal      = "wallet"
	walletKey        = "wallet"
)

// Session returns a Fiber middleware that loads/saves the session from Redis, plus the client it opened.
func Session(cfg SessionConfig) (fiber.Handler, *redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(opt)
	return SessionStore(rdb), rdb, nil
}

// SessionStore is Session on an existing client.
func SessionStore(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookieName)

		var data map[string]interface{}
		if sessionID != "" {
			b, err := rdb.Get(context.Background(), SessionRedisPrefix+sessionID).Bytes()
			if err == nil {
				_ = json.Unmarshal(b, &data)
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}

		c.Locals(sessionDataLocal, data)
		if w, ok := data[walletKey].(string); ok && w != "" {
			c.Locals(walletLocal, w)
		}
		c.Locals(sessionIDLocal, sessionID)

		if err := c.Next(); err != nil {
			return err
		}

		// Persist if we have a session id (e.g. after connect)
		if sid, _ := c.Locals(sessionIDLocal).(string); sid != "" {
			updated, _ := c.Locals(sessionDataLocal).(map[string]interface{})
			if len(updated) > 0 {
				b, _ := json.Marshal(updated)
				rdb.Set(context.Background(), SessionRedisPrefix+sid, b, sessionMaxAge)
			}
		}
		return nil
	}
}

// GetSessionID returns the current session ID from context.
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(sessionIDLocal).(string)
	return sid
}

// SetSessionWallet stores the connected wallet address in the session.
func SetSessionWallet(c *fiber.Ctx, address string) {
	data, _ := c.Locals(sessionDataLocal).(map[string]interface{})
	if data == nil {
		data = make(map[string]interface{})
	}
	data[walletKey] = address
	c.Locals(sessionDataLocal, data)
	c.Locals(walletLocal, address)
}

// GetWallet returns the connected wallet address ("" if none).
func GetWallet(c *fiber.Ctx) string {
	w, _ := c.Locals(walletLocal).(string)
	return w
}

// RegenerateSessionID creates a new session ID and sets it in Locals (cookie set by handler).
func RegenerateSessionID(c *fiber.Ctx) string {
	newID := uuid.New().String()
	c.Locals(sessionIDLocal, newID)
	return newID
}

// DestroySession clears the session from Locals; caller must clear cookie and Redis.
func DestroySession(c *fiber.Ctx) {
	c.Locals(sessionDataLocal, make(map[string]interface{}))
	c.Locals(walletLocal, nil)
}

// SessionCookieConfig returns the cookie options for SetCookie/ClearCookie.
func SessionCookieConfig(cfg SessionConfig) fiber.Cookie {
	sameSite := "Lax"
	if cfg.AllowCrossSiteDev {
		sameSite = "None"
	}
	secure := cfg.IsProduction && cfg.AllowCrossSiteDev
	return fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
}
