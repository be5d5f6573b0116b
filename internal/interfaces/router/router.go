package router

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"winery-backend/internal/application/contract"
	"winery-backend/internal/application/gateway"
	healthsvc "winery-backend/internal/application/health"
	"winery-backend/internal/application/marketplace"
	"winery-backend/internal/application/metadata"
	"winery-backend/internal/application/wallet"
	"winery-backend/internal/config"
	"winery-backend/internal/infrastructure/artifacts"
	"winery-backend/internal/infrastructure/database"
	healthhandler "winery-backend/internal/interfaces/handlers/health"
	uploadhandler "winery-backend/internal/interfaces/handlers/uploads"
	wallethandler "winery-backend/internal/interfaces/handlers/wallet"
	eventhandler "winery-backend/internal/interfaces/handlers/wineevents"
	winehandler "winery-backend/internal/interfaces/handlers/wines"
	"winery-backend/internal/metrics"
	"winery-backend/internal/middleware"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Services are the application objects the routes are bound to.
type Services struct {
	Gateway    *gateway.Gateway
	Controller *marketplace.Controller
	Keyring    *wallet.Keyring
	Events     *marketplace.EventService // nil without a database
	Health     healthsvc.Deps
}

// CreateApp dials the chain node, binds the deployed contract and builds the Fiber app.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	if cfg.ChainRPCURL == "" {
		return nil, nil, nil, errors.New("CHAIN_RPC_URL is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := ethclient.DialContext(ctx, cfg.ChainRPCURL)
	if err != nil {
		return nil, nil, nil, err
	}
	chainID := big.NewInt(cfg.ChainID)
	if cfg.ChainID == 0 {
		if chainID, err = client.ChainID(ctx); err != nil {
			return nil, nil, nil, err
		}
	}
	dep, err := artifacts.LoadDeployment(cfg.ContractsDir, cfg.ContractName)
	if err != nil {
		return nil, nil, nil, err
	}
	winery := contract.NewBoundWinery(dep.Address, dep.ABI, client)
	log.Info().Str("contract", dep.Address.Hex()).Str("chain_id", chainID.String()).Msg("contract bound")

	keyring, err := wallet.NewKeyring(chainID, cfg.SignerKeys)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(keyring.Addresses()) == 0 {
		log.Warn().Msg("SIGNER_PRIVATE_KEYS is empty: no wallet can connect")
	}

	// The session store owns the Redis client; metadata cache and health reuse it.
	_, rdb, err := middleware.Session(sessionConfig(cfg))
	if err != nil {
		return nil, nil, nil, err
	}

	var db *gorm.DB
	var snapshots marketplace.SnapshotStore
	var events *marketplace.EventService
	health := healthsvc.Deps{Chain: client, StorageURL: cfg.StorageAPIURL}
	if cfg.DatabaseURL != "" {
		if db, err = database.Open(cfg.DatabaseURL); err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
		snapshots = &marketplace.GormSnapshotStore{DB: db}
		events = &marketplace.EventService{DB: db}
		health.DB = &gormDBPinger{db: db}
	}

	gw := &gateway.Gateway{
		Chain: winery,
		Store: &metadata.HTTPClient{
			BaseURL:         cfg.StorageAPIURL,
			Token:           cfg.StorageToken,
			GatewayTemplate: cfg.StorageGatewayTemplate,
		},
		Fetcher:     &metadata.Fetcher{Cache: rdb, TTL: cfg.MetadataCacheTTL},
		Concurrency: cfg.ListConcurrency,
	}
	var recorder marketplace.EventRecorder
	if events != nil {
		recorder = events
	}
	ctrl := marketplace.NewController(gw, snapshots, recorder)
	if err := ctrl.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("listing snapshot not restored")
	}

	app := NewApp(cfg, rdb, Services{
		Gateway:    gw,
		Controller: ctrl,
		Keyring:    keyring,
		Events:     events,
		Health:     health,
	})
	return app, db, rdb, nil
}

// NewApp builds the Fiber app and its routes on already constructed services.
func NewApp(cfg *config.Config, rdb *redis.Client, s Services) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.Metrics())
	app.Use(middleware.SessionStore(rdb))
	app.Use(middleware.HealthMarker(rdb))

	health := s.Health
	if health.Redis == nil {
		health.Redis = rdb
	}
	if health.Marketplace == nil && s.Controller != nil {
		health.Marketplace = func() (int, *time.Time) {
			st := s.Controller.State()
			return len(st.Listings), st.RefreshedAt
		}
	}
	hh := &healthhandler.Handlers{Rdb: rdb, Deps: health, HealthAdminKey: cfg.HealthAdminKey}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// Wallet session
	wh := &wallethandler.Handlers{Keyring: s.Keyring, Controller: s.Controller, Rdb: rdb, Config: sessionConfig(cfg)}
	wg := app.Group("/api/v1/wallet")
	wg.Post("/connect", wh.Connect)
	wg.Get("/me", wh.Me)
	wg.Delete("/disconnect", wh.Disconnect)

	// Wines
	wnh := &winehandler.Handlers{Controller: s.Controller, Gateway: s.Gateway, Keyring: s.Keyring}
	wng := app.Group("/api/v1/wines")
	wng.Get("/get-wines", wnh.GetWines)
	wng.Post("/refresh", wnh.Refresh)
	wng.Get("/get-wine/:wine_id", wnh.GetWine)
	wng.Get("/contract-owner", wnh.ContractOwner)
	wng.Get("/owners", wnh.Owners)
	wng.Post("/create-wine", middleware.RequireWallet(), wnh.CreateWine)
	wng.Post("/buy-wine", middleware.RequireWallet(), wnh.BuyWine)
	wng.Post("/gift-wine", middleware.RequireWallet(), wnh.GiftWine)

	// Uploads
	uph := &uploadhandler.Handlers{Gateway: s.Gateway}
	upg := app.Group("/api/v1/uploads", middleware.RequireWallet())
	upg.Post("/wine-image", uph.UploadWineImage)

	// Wine events
	if s.Events != nil {
		eh := &eventhandler.Handlers{Service: s.Events}
		app.Get("/api/v1/wine-events/get-wine-events", eh.GetWineEvents)
	}

	return app
}

func sessionConfig(cfg *config.Config) middleware.SessionConfig {
	return middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
