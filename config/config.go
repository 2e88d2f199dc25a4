package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sawtooth-seth/rpc/client"
	"github.com/sawtooth-seth/rpc/filters"
	"github.com/sawtooth-seth/rpc/flags"
	"github.com/sawtooth-seth/rpc/requests"
	"github.com/sawtooth-seth/rpc/rpc"
	"github.com/sawtooth-seth/rpc/version"
	"github.com/spf13/viper"
)

type ValidatorConfig struct {
	// Connect is the ZMQ endpoint of the validator.
	Connect string
	// Timeout bounds a single validator round trip.
	Timeout time.Duration
}

type AccountsConfig struct {
	// Unlock lists the aliases of the key files to load at startup.
	Unlock   []string
	Dir      string
	Password string
}

// Config is everything the node needs to start.
type Config struct {
	Validator  ValidatorConfig
	RPC        rpc.Config
	Accounts   AccountsConfig
	Chain      requests.ChainConfig
	FiltersTTL time.Duration
}

// DefaultKeysDir is where the ledger's tooling writes key files.
func DefaultKeysDir() string {
	return os.ExpandEnv(filepath.Join("$HOME", ".sawtooth", "keys"))
}

// SetDefaults registers the default of every key read by Load.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(flags.Validator_Connect, "tcp://127.0.0.1:4004")
	v.SetDefault(flags.Validator_Timeout, client.DefaultTimeout)
	v.SetDefault(flags.RPC_Addr, rpc.DefaultConfig.ListenAddress)
	v.SetDefault(flags.RPC_Workers, rpc.DefaultConfig.Workers)
	v.SetDefault(flags.RPC_RateLimit, 0)
	v.SetDefault(flags.RPC_RateBurst, 0)
	v.SetDefault(flags.Accounts_Unlock, []string{})
	v.SetDefault(flags.Accounts_Dir, DefaultKeysDir())
	v.SetDefault(flags.Accounts_Password, "")
	v.SetDefault(flags.Chain_ID, 19)
	v.SetDefault(flags.Chain_GasLimit, 90000)
	v.SetDefault(flags.Filters_TTL, filters.DefaultTTL)
	v.SetDefault(flags.Metrics_Enabled, true)
}

// Load assembles a Config from v.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	cfg := &Config{
		Validator: ValidatorConfig{
			Connect: v.GetString(flags.Validator_Connect),
			Timeout: v.GetDuration(flags.Validator_Timeout),
		},
		RPC: rpc.Config{
			ListenAddress: v.GetString(flags.RPC_Addr),
			Workers:       v.GetInt(flags.RPC_Workers),
			RateLimit:     v.GetFloat64(flags.RPC_RateLimit),
			RateBurst:     v.GetInt(flags.RPC_RateBurst),
			Metrics:       v.GetBool(flags.Metrics_Enabled),
			HTTPTimeouts:  rpc.DefaultConfig.HTTPTimeouts,
		},
		Accounts: AccountsConfig{
			Unlock:   v.GetStringSlice(flags.Accounts_Unlock),
			Dir:      v.GetString(flags.Accounts_Dir),
			Password: v.GetString(flags.Accounts_Password),
		},
		Chain: requests.ChainConfig{
			ChainID:       v.GetUint64(flags.Chain_ID),
			GasLimit:      v.GetUint64(flags.Chain_GasLimit),
			ClientVersion: "sethrpc/" + version.Version,
		},
		FiltersTTL: v.GetDuration(flags.Filters_TTL),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	switch {
	case cfg.Validator.Connect == "":
		return errors.New("validator endpoint is required")
	case cfg.Validator.Timeout <= 0:
		return fmt.Errorf("validator timeout must be positive, got %s", cfg.Validator.Timeout)
	case cfg.RPC.Workers <= 0:
		return fmt.Errorf("rpc workers must be positive, got %d", cfg.RPC.Workers)
	case cfg.RPC.RateLimit < 0:
		return fmt.Errorf("rpc rate limit must not be negative, got %v", cfg.RPC.RateLimit)
	case cfg.FiltersTTL <= 0:
		return fmt.Errorf("filter ttl must be positive, got %s", cfg.FiltersTTL)
	}
	return nil
}
