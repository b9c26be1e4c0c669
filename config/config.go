// Package config loads engine configuration from a TOML file and the
// environment. File values override defaults, environment variables
// override the file.
package config

import (
	"os"

	"cosmossdk.io/math"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/fluxdex/fluxdex/x/amm/types"
)

const envPrefix = "FLUXDEX"

// Config is the top-level engine configuration.
type Config struct {
	// Engine parameters stored into the state machine at startup.
	Params types.Params

	// MetricsEnabled controls Prometheus metric registration.
	MetricsEnabled bool

	// LogLevel is the minimum level for engine logs.
	LogLevel string
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Params:         types.DefaultParams(),
		MetricsEnabled: true,
		LogLevel:       "info",
	}
}

// Load reads the configuration file at path, if it exists, and applies
// environment overrides. A missing file is not an error; a malformed one
// is.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing && !os.IsNotExist(underlying(err)) {
			return Config{}, err
		}
	} else {
		if err := applyFile(v, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Params.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func underlying(err error) error {
	if pathErr, ok := err.(*os.PathError); ok {
		return pathErr
	}
	return err
}

func applyFile(v *viper.Viper, cfg *Config) error {
	if v.IsSet("engine.swap_fee") {
		fee, err := math.LegacyNewDecFromStr(v.GetString("engine.swap_fee"))
		if err != nil {
			return types.ErrInvalidParams.Wrapf("engine.swap_fee: %v", err)
		}
		cfg.Params.SwapFee = fee
	}
	if v.IsSet("engine.protocol_fee") {
		fee, err := math.LegacyNewDecFromStr(v.GetString("engine.protocol_fee"))
		if err != nil {
			return types.ErrInvalidParams.Wrapf("engine.protocol_fee: %v", err)
		}
		cfg.Params.ProtocolFee = fee
	}
	if v.IsSet("engine.fee_collector") {
		cfg.Params.FeeCollector = v.GetString("engine.fee_collector")
	}
	if v.IsSet("engine.native_denom") {
		cfg.Params.NativeDenom = v.GetString("engine.native_denom")
	}
	if v.IsSet("metrics.enabled") {
		cfg.MetricsEnabled = v.GetBool("metrics.enabled")
	}
	if v.IsSet("log.level") {
		cfg.LogLevel = v.GetString("log.level")
	}

	if v.IsSet("engine.batch_windows") {
		var windows []types.BatchWindowConfig
		if err := v.UnmarshalKey("engine.batch_windows", &windows); err != nil {
			return types.ErrInvalidParams.Wrapf("engine.batch_windows: %v", err)
		}
		if len(windows) > types.BatchWindowCount {
			return types.ErrInvalidParams.Wrapf(
				"engine.batch_windows has %d entries, maximum is %d", len(windows), types.BatchWindowCount)
		}
		copy(cfg.Params.BatchWindows[:], windows)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if env := os.Getenv(envPrefix + "_SWAP_FEE"); env != "" {
		if fee, err := math.LegacyNewDecFromStr(env); err == nil {
			cfg.Params.SwapFee = fee
		}
	}
	if env := os.Getenv(envPrefix + "_PROTOCOL_FEE"); env != "" {
		if fee, err := math.LegacyNewDecFromStr(env); err == nil {
			cfg.Params.ProtocolFee = fee
		}
	}
	if env := os.Getenv(envPrefix + "_FEE_COLLECTOR"); env != "" {
		cfg.Params.FeeCollector = env
	}
	if env := os.Getenv(envPrefix + "_NATIVE_DENOM"); env != "" {
		cfg.Params.NativeDenom = env
	}
	if env := os.Getenv(envPrefix + "_METRICS_ENABLED"); env != "" {
		cfg.MetricsEnabled = cast.ToBool(env)
	}
	if env := os.Getenv(envPrefix + "_LOG_LEVEL"); env != "" {
		cfg.LogLevel = env
	}
}
