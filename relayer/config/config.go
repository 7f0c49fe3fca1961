// Package config resolves the relayer configuration from flags, environment variables
// and an optional YAML file of network profiles.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	errorsmod "cosmossdk.io/errors"

	querytypes "github.com/wormholelabs-xyz/rootsync/modules/query/types"
	"github.com/wormholelabs-xyz/rootsync/relayer"
)

const (
	// environment variables the relayer reads its configuration from
	NetworkEnv     = "NETWORK"
	MockEnv        = "MOCK"
	SleepEnv       = "SLEEP"
	CleanupEnv     = "CLEANUP"
	EthRPCURLEnv   = "ETH_RPC_URL"
	QueryURLEnv    = "QUERY_URL"
	QueryAPIKeyEnv = "QUERY_API_KEY"
	WalletEnv      = "WALLET"
	LogLevelEnv    = "LOG_LEVEL"
	HomeEnv        = "HOME"
	ProfilesEnv    = "PROFILES"

	// DefaultHomeDirName is the directory under the user's home holding the ledger.
	DefaultHomeDirName = ".rootsync"

	// DefaultQueryTimeout bounds every request to the query proxy.
	DefaultQueryTimeout = 30 * time.Second

	// DevnetGuardianKey is the private key of the single guardian of the Wormhole devnet,
	// used by the mock query proxy and as the localnet wallet.
	DevnetGuardianKey = "cfb12303a19cde580bb4dd771639b0d26bc68353645571a8cff516ab2ee113a0"
)

// Network selects a built-in profile.
type Network string

const (
	Localnet Network = "localnet"
	Testnet  Network = "testnet"
	Mainnet  Network = "mainnet"
)

// Profile holds the per network settings. Any field may be overridden from a profiles file.
type Profile struct {
	// ChainID is the Wormhole chain id of the source chain.
	ChainID          uint16   `yaml:"chainId"`
	IdentityManager  string   `yaml:"identityManager"`
	EthRPCURL        string   `yaml:"ethRpcUrl"`
	QueryURL         string   `yaml:"queryUrl"`
	Mock             bool     `yaml:"mock"`
	GuardianSetIndex *uint32  `yaml:"guardianSetIndex"`
	MockGuardianKeys []string `yaml:"mockGuardianKeys"`
}

// DefaultProfiles returns the built-in network profiles.
func DefaultProfiles() map[Network]Profile {
	mockGuardianSetIndex := uint32(5)
	return map[Network]Profile{
		Mainnet: {
			ChainID:         2,
			IdentityManager: "0xf7134CE138832c1456F2a91D64621eE90c2bddEa",
			EthRPCURL:       "https://ethereum-rpc.publicnode.com",
			QueryURL:        "https://query.wormhole.com/v1/query",
		},
		Testnet: {
			ChainID:         10002,
			IdentityManager: "0xb2ead588f14e69266d1b87936b75325181377076",
			EthRPCURL:       "https://ethereum-sepolia-rpc.publicnode.com",
			QueryURL:        "https://testnet.query.wormhole.com/v1/query",
		},
		Localnet: {
			ChainID:          2,
			IdentityManager:  "0xf7134CE138832c1456F2a91D64621eE90c2bddEa",
			EthRPCURL:        "https://ethereum-rpc.publicnode.com",
			QueryURL:         "https://query.wormhole.com/v1/query",
			Mock:             true,
			GuardianSetIndex: &mockGuardianSetIndex,
			MockGuardianKeys: []string{DevnetGuardianKey},
		},
	}
}

// Config is the resolved relayer configuration.
type Config struct {
	Network Network
	Profile

	// Sleep is the sync interval and Cleanup the cleanup interval. Zero runs once.
	Sleep   time.Duration
	Cleanup time.Duration

	QueryAPIKey  string
	QueryTimeout time.Duration
	// Wallet is the path of the submitter's hex encoded secp256k1 key. Empty on localnet
	// selects the devnet key.
	Wallet            string
	LogLevel          string
	Home              string
	AlertAfterRetries int
}

// BindEnv binds the relayer environment variables to v.
func BindEnv(v *viper.Viper) error {
	for key, env := range map[string]string{
		"network":       NetworkEnv,
		"mock":          MockEnv,
		"sleep":         SleepEnv,
		"cleanup":       CleanupEnv,
		"eth-rpc-url":   EthRPCURLEnv,
		"query-url":     QueryURLEnv,
		"query-api-key": QueryAPIKeyEnv,
		"wallet":        WalletEnv,
		"log-level":     LogLevelEnv,
		"profiles":      ProfilesEnv,
	} {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	v.SetDefault("network", string(Mainnet))
	v.SetDefault("log-level", "info")
	v.SetDefault("query-timeout", DefaultQueryTimeout)
	v.SetDefault("alert-after-retries", 5)
	return nil
}

// Load resolves the configuration from v. Unknown networks fall back to mainnet.
func Load(v *viper.Viper) (Config, error) {
	network := Network(strings.ToLower(v.GetString("network")))
	if network != Localnet && network != Testnet {
		network = Mainnet
	}

	profiles := DefaultProfiles()
	if path := v.GetString("profiles"); path != "" {
		if err := loadProfiles(path, profiles); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		Network:           network,
		Profile:           profiles[network],
		QueryAPIKey:       v.GetString("query-api-key"),
		Wallet:            v.GetString("wallet"),
		LogLevel:          v.GetString("log-level"),
		Home:              v.GetString("home"),
		AlertAfterRetries: v.GetInt("alert-after-retries"),
	}

	if v.IsSet("mock") {
		mock, err := cast.ToBoolE(v.Get("mock"))
		if err != nil {
			return Config{}, errorsmod.Wrapf(relayer.ErrInvalidConfig, "%s: %v", MockEnv, err)
		}
		cfg.Mock = cfg.Mock || mock
	}
	if url := v.GetString("eth-rpc-url"); url != "" {
		cfg.EthRPCURL = url
	}
	if url := v.GetString("query-url"); url != "" {
		cfg.QueryURL = url
	}

	var err error
	if cfg.Sleep, err = seconds(v, "sleep"); err != nil {
		return Config{}, errorsmod.Wrapf(relayer.ErrInvalidConfig, "%s: %v", SleepEnv, err)
	}
	if cfg.Cleanup, err = seconds(v, "cleanup"); err != nil {
		return Config{}, errorsmod.Wrapf(relayer.ErrInvalidConfig, "%s: %v", CleanupEnv, err)
	}
	if cfg.QueryTimeout, err = cast.ToDurationE(v.Get("query-timeout")); err != nil {
		return Config{}, errorsmod.Wrapf(relayer.ErrInvalidConfig, "query timeout: %v", err)
	}

	if cfg.Home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return Config{}, errorsmod.Wrapf(relayer.ErrInvalidConfig, "%s: %v", HomeEnv, err)
		}
		cfg.Home = filepath.Join(userHome, DefaultHomeDirName)
	}

	return cfg, nil
}

// seconds reads an integer number of seconds, defaulting to zero.
func seconds(v *viper.Viper, key string) (time.Duration, error) {
	if !v.IsSet(key) || v.GetString(key) == "" {
		return 0, nil
	}
	secs, err := cast.ToInt64E(v.Get(key))
	if err != nil {
		return 0, err
	}
	if secs < 0 {
		return 0, fmt.Errorf("must not be negative, got %d", secs)
	}
	return time.Duration(secs) * time.Second, nil
}

// loadProfiles overlays the non-empty fields of the profiles in the YAML file at path.
func loadProfiles(path string, profiles map[Network]Profile) error {
	bz, err := os.ReadFile(path)
	if err != nil {
		return errorsmod.Wrapf(relayer.ErrInvalidConfig, "failed to read profiles: %v", err)
	}

	var overrides map[Network]Profile
	if err := yaml.Unmarshal(bz, &overrides); err != nil {
		return errorsmod.Wrapf(relayer.ErrInvalidConfig, "failed to parse profiles %s: %v", path, err)
	}

	for network, o := range overrides {
		p := profiles[network]
		if o.ChainID != 0 {
			p.ChainID = o.ChainID
		}
		if o.IdentityManager != "" {
			p.IdentityManager = o.IdentityManager
		}
		if o.EthRPCURL != "" {
			p.EthRPCURL = o.EthRPCURL
		}
		if o.QueryURL != "" {
			p.QueryURL = o.QueryURL
		}
		if o.Mock {
			p.Mock = true
		}
		if o.GuardianSetIndex != nil {
			p.GuardianSetIndex = o.GuardianSetIndex
		}
		if len(o.MockGuardianKeys) > 0 {
			p.MockGuardianKeys = o.MockGuardianKeys
		}
		profiles[network] = p
	}
	return nil
}

// Shape returns the query roots are admitted from.
func (c Config) Shape() querytypes.ExpectedShape {
	return querytypes.NewLatestRootShape(c.ChainID, common.HexToAddress(c.IdentityManager))
}

// Validate validates the configuration for reading the ledger.
func (c Config) Validate() error {
	if c.ChainID == 0 {
		return errorsmod.Wrap(relayer.ErrInvalidConfig, "source chain id cannot be zero")
	}
	if !common.IsHexAddress(c.IdentityManager) {
		return errorsmod.Wrapf(relayer.ErrInvalidConfig, "invalid identity manager address %q", c.IdentityManager)
	}
	if err := c.Shape().Validate(); err != nil {
		return errorsmod.Wrapf(relayer.ErrInvalidConfig, "%v", err)
	}
	if c.Home == "" {
		return errorsmod.Wrap(relayer.ErrInvalidConfig, "home directory cannot be empty")
	}
	return nil
}

// ValidateSigner validates that a submitter key is configured.
func (c Config) ValidateSigner() error {
	if c.Network != Localnet && c.Wallet == "" {
		return errorsmod.Wrapf(relayer.ErrInvalidConfig, "%s is required when %s is not %s", WalletEnv, NetworkEnv, Localnet)
	}
	return nil
}

// ValidateSync additionally validates what the sync loop needs to fetch attestations.
func (c Config) ValidateSync() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.ValidateSigner(); err != nil {
		return err
	}
	if c.EthRPCURL == "" {
		return errorsmod.Wrapf(relayer.ErrInvalidConfig, "%s cannot be empty", EthRPCURLEnv)
	}
	if c.Mock {
		if len(c.MockGuardianKeys) == 0 {
			return errorsmod.Wrap(relayer.ErrInvalidConfig, "mock attestation requires guardian keys")
		}
		return nil
	}
	if c.QueryURL == "" {
		return errorsmod.Wrapf(relayer.ErrInvalidConfig, "%s cannot be empty", QueryURLEnv)
	}
	if c.QueryAPIKey == "" {
		return errorsmod.Wrapf(relayer.ErrInvalidConfig, "%s is required when %s is not set", QueryAPIKeyEnv, MockEnv)
	}
	return nil
}
