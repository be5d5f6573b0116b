package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("CONTRACT_NAME", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "Winery", cfg.ContractName)
	assert.Equal(t, "https://%s.ipfs.w3s.link/", cfg.StorageGatewayTemplate)
	assert.Equal(t, 8, cfg.ListConcurrency)
}

func TestLoad_ChainSettings(t *testing.T) {
	t.Setenv("CHAIN_RPC_URL", "http://localhost:8545")
	t.Setenv("CHAIN_ID", "44787")
	t.Setenv("SIGNER_PRIVATE_KEYS", " aa , ,bb")
	t.Setenv("METADATA_CACHE_TTL", "90s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", cfg.ChainRPCURL)
	assert.Equal(t, int64(44787), cfg.ChainID)
	assert.Equal(t, []string{"aa", "bb"}, cfg.SignerKeys)
	assert.Equal(t, 90*time.Second, cfg.MetadataCacheTTL)
}

func TestLoad_TestEnvPicksTestDatabase(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL_TEST", "postgres://test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://test", cfg.DatabaseURL)
}
