package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winery-backend/internal/application/contract/contracttest"
	"winery-backend/internal/application/gateway"
	"winery-backend/internal/application/marketplace"
	walletsvc "winery-backend/internal/application/wallet"
	"winery-backend/internal/domain"
	"winery-backend/internal/middleware"
)

const (
	devKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

type anyDoc struct{}

func (anyDoc) Fetch(context.Context, string) (*domain.MetadataDocument, error) {
	return &domain.MetadataDocument{Name: "wine"}, nil
}

func setupWalletApp(t *testing.T) (*fiber.App, *miniredis.Miniredis, *marketplace.Controller) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	kr, err := walletsvc.NewKeyring(big.NewInt(31337), []string{devKey})
	require.NoError(t, err)
	chain := contracttest.New(contracttest.Wine{
		WineRecord: domain.WineRecord{Name: "Merlot 2020", Price: big.NewInt(5)},
		TokenURI:   "https://merlot.test/",
	})
	ctrl := marketplace.NewController(&gateway.Gateway{Chain: chain, Fetcher: anyDoc{}}, nil, nil)

	h := &Handlers{Keyring: kr, Controller: ctrl, Rdb: rdb}
	app := fiber.New()
	app.Use(middleware.SessionStore(rdb))
	g := app.Group("/api/v1/wallet")
	g.Post("/connect", h.Connect)
	g.Get("/me", h.Me)
	g.Delete("/disconnect", h.Disconnect)
	return app, mr, ctrl
}

func connect(t *testing.T, app *fiber.App, address string) *http.Response {
	t.Helper()
	b, _ := json.Marshal(map[string]string{"address": address})
	req := httptest.NewRequest("POST", "/api/v1/wallet/connect", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c.Value
		}
	}
	return ""
}

func TestConnect_Validation(t *testing.T) {
	app, _, _ := setupWalletApp(t)

	assert.Equal(t, fiber.StatusBadRequest, connect(t, app, "nope").StatusCode)
	assert.Equal(t, fiber.StatusForbidden, connect(t, app, "0x0000000000000000000000000000000000000001").StatusCode)
}

func TestConnect_MeDisconnect(t *testing.T) {
	app, mr, ctrl := setupWalletApp(t)

	resp := connect(t, app, "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	sid := sessionCookie(resp)
	require.NotEmpty(t, sid)
	assert.True(t, mr.Exists(middleware.SessionRedisPrefix+sid))

	st := ctrl.State()
	assert.Equal(t, devAddress, st.Identity)
	assert.Len(t, st.Listings, 1)

	req := httptest.NewRequest("GET", "/api/v1/wallet/me", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"="+sid)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	me := out["data"].(map[string]interface{})
	assert.Equal(t, devAddress, me["wallet"])
	assert.Equal(t, true, me["can_sign"])
	assert.Equal(t, "31337", me["chain_id"])

	req = httptest.NewRequest("DELETE", "/api/v1/wallet/disconnect", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"="+sid)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.False(t, mr.Exists(middleware.SessionRedisPrefix+sid))
	assert.Empty(t, ctrl.State().Identity)

	req = httptest.NewRequest("GET", "/api/v1/wallet/me", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"="+sid)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
