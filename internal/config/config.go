package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string

	ChainRPCURL    string   // JSON-RPC endpoint (e.g. https://alfajores-forno.celo-testnet.org)
	ChainID        int64    // 0 = ask the node via eth_chainId
	ContractsDir   string   // where cmd/deploy writes <Name>-address.json and <Name>.json
	ContractName   string   // deployment artifact name, "Winery" by default
	SignerKeys     []string // hex private keys, one signer per connectable wallet
	DeployArtifact string   // compiled artifact consumed by cmd/deploy

	StorageAPIURL          string
	StorageToken           string // WEB3_STORAGE_TOKEN
	StorageGatewayTemplate string // fmt template taking the CID
	MetadataCacheTTL       time.Duration
	ListConcurrency        int
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("CONTRACTS_DIR", "./src/contracts")
	viper.SetDefault("CONTRACT_NAME", "Winery")
	viper.SetDefault("STORAGE_API_URL", "https://api.web3.storage")
	viper.SetDefault("STORAGE_GATEWAY_TEMPLATE", "https://%s.ipfs.w3s.link/")
	viper.SetDefault("LIST_CONCURRENCY", 8)

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	return &Config{
		Env:                 env,
		Port:                port,
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),

		ChainRPCURL:    viper.GetString("CHAIN_RPC_URL"),
		ChainID:        viper.GetInt64("CHAIN_ID"),
		ContractsDir:   viper.GetString("CONTRACTS_DIR"),
		ContractName:   viper.GetString("CONTRACT_NAME"),
		SignerKeys:     splitList(viper.GetString("SIGNER_PRIVATE_KEYS")),
		DeployArtifact: viper.GetString("DEPLOY_ARTIFACT"),

		StorageAPIURL:          viper.GetString("STORAGE_API_URL"),
		StorageToken:           viper.GetString("WEB3_STORAGE_TOKEN"),
		StorageGatewayTemplate: viper.GetString("STORAGE_GATEWAY_TEMPLATE"),
		MetadataCacheTTL:       viper.GetDuration("METADATA_CACHE_TTL"),
		ListConcurrency:        viper.GetInt("LIST_CONCURRENCY"),
	}, nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
