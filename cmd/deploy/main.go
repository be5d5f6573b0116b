package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"winery-backend/bootstrap"
	"winery-backend/internal/config"
	"winery-backend/internal/infrastructure/artifacts"
)

var (
	deployRPC      string
	deployKey      string
	deployChainID  int64
	deployArtifact string
	deployOut      string
	deployName     string
	deployTimeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the Winery contract",
	Long: "Deploys the compiled Winery contract and writes <name>-address.json and <name>.json " +
		"into the contracts directory the API loads its deployment from.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return deploy(cmd.Context())
	},
}

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	bootstrap.ConfigureLogging(cfg.Env)
	key := ""
	if len(cfg.SignerKeys) > 0 {
		key = cfg.SignerKeys[0]
	}

	f := rootCmd.Flags()
	f.StringVar(&deployRPC, "rpc", cfg.ChainRPCURL, "JSON-RPC endpoint")
	f.StringVar(&deployKey, "key", key, "hex private key of the deployer (defaults to the first SIGNER_PRIVATE_KEYS entry)")
	f.Int64Var(&deployChainID, "chain-id", cfg.ChainID, "chain id (0 asks the node)")
	f.StringVar(&deployArtifact, "artifact", cfg.DeployArtifact, "compiled contract artifact (JSON with abi and bytecode)")
	f.StringVar(&deployOut, "out", cfg.ContractsDir, "directory for the deployment files")
	f.StringVar(&deployName, "name", cfg.ContractName, "contract name used for the deployment files")
	f.DurationVar(&deployTimeout, "timeout", 5*time.Minute, "how long to wait for the deployment to be mined")
}

func deploy(ctx context.Context) error {
	if deployRPC == "" {
		return fmt.Errorf("--rpc is required")
	}
	if deployArtifact == "" {
		return fmt.Errorf("--artifact is required")
	}
	if deployKey == "" {
		return fmt.Errorf("--key is required")
	}
	ctx, cancel := context.WithTimeout(ctx, deployTimeout)
	defer cancel()

	art, err := artifacts.ReadArtifact(deployArtifact)
	if err != nil {
		return err
	}
	parsed, err := art.ParsedABI()
	if err != nil {
		return err
	}
	code, err := art.DeployBytecode()
	if err != nil {
		return err
	}

	client, err := ethclient.DialContext(ctx, deployRPC)
	if err != nil {
		return fmt.Errorf("dial %s: %w", deployRPC, err)
	}
	defer client.Close()

	chainID := big.NewInt(deployChainID)
	if deployChainID == 0 {
		if chainID, err = client.ChainID(ctx); err != nil {
			return fmt.Errorf("chain id: %w", err)
		}
	}

	pk, err := crypto.HexToECDSA(strings.TrimPrefix(deployKey, "0x"))
	if err != nil {
		return fmt.Errorf("invalid deployer key: %w", err)
	}
	opts, err := bind.NewKeyedTransactorWithChainID(pk, chainID)
	if err != nil {
		return err
	}
	opts.Context = ctx

	log.Info().Str("deployer", opts.From.Hex()).Str("chain_id", chainID.String()).Msg("deploying contract")
	addr, tx, _, err := bind.DeployContract(opts, parsed, code, client)
	if err != nil {
		return fmt.Errorf("deploy: %w", err)
	}
	log.Info().Str("tx", tx.Hash().Hex()).Msg("deployment sent, waiting to be mined")

	if _, err := bind.WaitDeployed(ctx, client, tx); err != nil {
		return fmt.Errorf("wait deployed: %w", err)
	}
	if err := artifacts.WriteDeployment(deployOut, deployName, addr, art); err != nil {
		return err
	}
	log.Info().
		Str("address", addr.Hex()).
		Str("address_file", filepath.Clean(artifacts.AddressFile(deployOut, deployName))).
		Str("artifact_file", filepath.Clean(artifacts.ArtifactFile(deployOut, deployName))).
		Msg("contract deployed")
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
