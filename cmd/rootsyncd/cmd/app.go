package cmd

import (
	"context"
	"crypto/ecdsa"
	"os"
	"path/filepath"

	dbm "github.com/cosmos/cosmos-db"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"

	"github.com/wormholelabs-xyz/rootsync/modules/core/ledger"
	"github.com/wormholelabs-xyz/rootsync/relayer"
	"github.com/wormholelabs-xyz/rootsync/relayer/config"
)

const ledgerDBName = "ledger"

// appContext is the state shared by the commands of one invocation.
type appContext struct {
	cfg    config.Config
	logger log.Logger

	db     dbm.DB
	ledger *ledger.Ledger
	client *ethclient.Client
}

func (a *appContext) load(v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errorsmod.Wrapf(relayer.ErrInvalidConfig, "%s: %v", config.LogLevelEnv, err)
	}
	a.logger = log.NewLogger(os.Stderr, log.LevelOption(level))

	a.logger.Info("configuration loaded",
		"network", cfg.Network,
		"mock", cfg.Mock,
		"identity_manager", cfg.IdentityManager,
		"home", cfg.Home,
	)
	return nil
}

// openLedger opens the goleveldb ledger under the home directory.
func (a *appContext) openLedger() (*ledger.Ledger, error) {
	if a.ledger != nil {
		return a.ledger, nil
	}

	dataDir := filepath.Join(a.cfg.Home, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	db, err := dbm.NewDB(ledgerDBName, dbm.GoLevelDBBackend, dataDir)
	if err != nil {
		return nil, err
	}

	a.db = db
	a.ledger = ledger.New(db, a.cfg.Shape(), ledger.SystemClock{}, a.logger)
	return a.ledger, nil
}

// dialSource connects to the source chain rpc node. The client is closed with the ledger.
func (a *appContext) dialSource(ctx context.Context) (*ethclient.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	client, err := ethclient.DialContext(ctx, a.cfg.EthRPCURL)
	if err != nil {
		return nil, errorsmod.Wrapf(relayer.ErrInvalidConfig, "failed to dial %s: %v", config.EthRPCURLEnv, err)
	}
	a.client = client
	return client, nil
}

func (a *appContext) close() error {
	if a.client != nil {
		a.client.Close()
		a.client = nil
	}
	if a.db == nil {
		return nil
	}
	db := a.db
	a.db, a.ledger = nil, nil
	return db.Close()
}

// key loads the submitter key. Localnet without a wallet uses the devnet key.
func (a *appContext) key() (*ecdsa.PrivateKey, error) {
	if err := a.cfg.ValidateSigner(); err != nil {
		return nil, err
	}
	if a.cfg.Wallet == "" {
		return crypto.HexToECDSA(config.DevnetGuardianKey)
	}
	key, err := crypto.LoadECDSA(a.cfg.Wallet)
	if err != nil {
		return nil, errorsmod.Wrapf(relayer.ErrInvalidConfig, "failed to load wallet %s: %v", a.cfg.Wallet, err)
	}
	return key, nil
}

func (a *appContext) signer() (common.Address, error) {
	key, err := a.key()
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}
