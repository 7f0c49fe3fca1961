package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/wormholelabs-xyz/rootsync/relayer"
	"github.com/wormholelabs-xyz/rootsync/relayer/config"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()

	v := viper.New()
	require.NoError(t, config.BindEnv(v))
	v.Set("home", t.TempDir())
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(newViper(t))
	require.NoError(t, err)

	require.Equal(t, config.Mainnet, cfg.Network)
	require.Equal(t, config.DefaultProfiles()[config.Mainnet], cfg.Profile)
	require.Zero(t, cfg.Sleep)
	require.Zero(t, cfg.Cleanup)
	require.Equal(t, config.DefaultQueryTimeout, cfg.QueryTimeout)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 5, cfg.AlertAfterRetries)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(config.NetworkEnv, "Testnet")
	t.Setenv(config.SleepEnv, "30")
	t.Setenv(config.CleanupEnv, "3600")
	t.Setenv(config.EthRPCURLEnv, "http://localhost:8545")
	t.Setenv(config.QueryAPIKeyEnv, "secret")
	t.Setenv(config.WalletEnv, "/keys/wallet")

	cfg, err := config.Load(newViper(t))
	require.NoError(t, err)

	require.Equal(t, config.Testnet, cfg.Network)
	require.Equal(t, uint16(10002), cfg.ChainID)
	require.Equal(t, 30*time.Second, cfg.Sleep)
	require.Equal(t, time.Hour, cfg.Cleanup)
	require.Equal(t, "http://localhost:8545", cfg.EthRPCURL)
	require.Equal(t, config.DefaultProfiles()[config.Testnet].QueryURL, cfg.QueryURL)
	require.NoError(t, cfg.ValidateSync())
}

func TestLoad(t *testing.T) {
	testCases := []struct {
		name     string
		malleate func(v *viper.Viper)
		check    func(cfg config.Config)
		expErr   error
	}{
		{
			"unknown network falls back to mainnet",
			func(v *viper.Viper) { v.Set("network", "devnet") },
			func(cfg config.Config) { require.Equal(t, config.Mainnet, cfg.Network) },
			nil,
		},
		{
			"localnet profile",
			func(v *viper.Viper) { v.Set("network", "localnet") },
			func(cfg config.Config) {
				require.True(t, cfg.Mock)
				require.Equal(t, uint32(5), *cfg.GuardianSetIndex)
				require.Equal(t, []string{config.DevnetGuardianKey}, cfg.MockGuardianKeys)
			},
			nil,
		},
		{
			"mock enabled",
			func(v *viper.Viper) { v.Set("mock", "true") },
			func(cfg config.Config) { require.True(t, cfg.Mock) },
			nil,
		},
		{
			"mock cannot be disabled on localnet",
			func(v *viper.Viper) {
				v.Set("network", "localnet")
				v.Set("mock", "false")
			},
			func(cfg config.Config) { require.True(t, cfg.Mock) },
			nil,
		},
		{
			"query url override",
			func(v *viper.Viper) { v.Set("query-url", "http://localhost:6069/v1/query") },
			func(cfg config.Config) { require.Equal(t, "http://localhost:6069/v1/query", cfg.QueryURL) },
			nil,
		},
		{
			"empty sleep runs once",
			func(v *viper.Viper) { v.Set("sleep", "") },
			func(cfg config.Config) { require.Zero(t, cfg.Sleep) },
			nil,
		},
		{
			"invalid mock",
			func(v *viper.Viper) { v.Set("mock", "maybe") },
			nil,
			relayer.ErrInvalidConfig,
		},
		{
			"invalid sleep",
			func(v *viper.Viper) { v.Set("sleep", "soon") },
			nil,
			relayer.ErrInvalidConfig,
		},
		{
			"negative cleanup",
			func(v *viper.Viper) { v.Set("cleanup", "-1") },
			nil,
			relayer.ErrInvalidConfig,
		},
		{
			"missing profiles file",
			func(v *viper.Viper) { v.Set("profiles", filepath.Join(t.TempDir(), "missing.yaml")) },
			nil,
			relayer.ErrInvalidConfig,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := newViper(t)
			tc.malleate(v)

			cfg, err := config.Load(v)
			if tc.expErr != nil {
				require.ErrorIs(t, err, tc.expErr)
				return
			}
			require.NoError(t, err)
			tc.check(cfg)
		})
	}
}

func TestLoadProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
testnet:
  ethRpcUrl: http://sepolia.internal:8545
  guardianSetIndex: 0
localnet:
  chainId: 10002
  mockGuardianKeys:
    - "0x01"
    - "0x02"
`), 0o600))

	v := newViper(t)
	v.Set("profiles", path)
	v.Set("network", "testnet")

	cfg, err := config.Load(v)
	require.NoError(t, err)

	testnet := config.DefaultProfiles()[config.Testnet]
	require.Equal(t, "http://sepolia.internal:8545", cfg.EthRPCURL)
	require.Equal(t, testnet.IdentityManager, cfg.IdentityManager)
	require.Equal(t, testnet.QueryURL, cfg.QueryURL)
	require.NotNil(t, cfg.GuardianSetIndex)
	require.Zero(t, *cfg.GuardianSetIndex)

	v.Set("network", "localnet")
	cfg, err = config.Load(v)
	require.NoError(t, err)
	require.Equal(t, uint16(10002), cfg.ChainID)
	require.True(t, cfg.Mock)
	require.Equal(t, []string{"0x01", "0x02"}, cfg.MockGuardianKeys)

	require.NoError(t, os.WriteFile(path, []byte("testnet: [1, 2"), 0o600))
	_, err = config.Load(v)
	require.ErrorIs(t, err, relayer.ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	base := func() config.Config {
		return config.Config{
			Network:     config.Testnet,
			Profile:     config.DefaultProfiles()[config.Testnet],
			QueryAPIKey: "secret",
			Wallet:      "/keys/wallet",
			Home:        "/var/lib/rootsync",
		}
	}

	testCases := []struct {
		name     string
		malleate func(cfg *config.Config)
		validate func(cfg config.Config) error
		expPass  bool
	}{
		{"valid", func(*config.Config) {}, config.Config.ValidateSync, true},
		{"zero chain id", func(cfg *config.Config) { cfg.ChainID = 0 }, config.Config.Validate, false},
		{"invalid identity manager", func(cfg *config.Config) { cfg.IdentityManager = "0x1234" }, config.Config.Validate, false},
		{"zero identity manager", func(cfg *config.Config) { cfg.IdentityManager = "0x0000000000000000000000000000000000000000" }, config.Config.Validate, false},
		{"empty home", func(cfg *config.Config) { cfg.Home = "" }, config.Config.Validate, false},
		{"missing wallet", func(cfg *config.Config) { cfg.Wallet = "" }, config.Config.ValidateSigner, false},
		{"localnet without wallet", func(cfg *config.Config) {
			cfg.Network = config.Localnet
			cfg.Wallet = ""
		}, config.Config.ValidateSigner, true},
		{"missing eth rpc url", func(cfg *config.Config) { cfg.EthRPCURL = "" }, config.Config.ValidateSync, false},
		{"missing query url", func(cfg *config.Config) { cfg.QueryURL = "" }, config.Config.ValidateSync, false},
		{"missing api key", func(cfg *config.Config) { cfg.QueryAPIKey = "" }, config.Config.ValidateSync, false},
		{"mock without api key", func(cfg *config.Config) {
			cfg.Mock = true
			cfg.MockGuardianKeys = []string{config.DevnetGuardianKey}
			cfg.QueryAPIKey = ""
		}, config.Config.ValidateSync, true},
		{"mock without guardian keys", func(cfg *config.Config) { cfg.Mock = true }, config.Config.ValidateSync, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.malleate(&cfg)

			err := tc.validate(cfg)
			if tc.expPass {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, relayer.ErrInvalidConfig)
			}
		})
	}
}
