// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Owner          string `mapstructure:"owner"`
	HoldingAddress string `mapstructure:"holding_address"`
	PairAddress    string `mapstructure:"pair_address"`

	InitialSupply    uint64 `mapstructure:"initial_supply"`
	PoolTokenReserve uint64 `mapstructure:"pool_token_reserve"`
	PoolRefReserve   uint64 `mapstructure:"pool_ref_reserve"`
	PoolFeeBps       uint64 `mapstructure:"pool_fee_bps"`

	BurnFeeBps          uint64 `mapstructure:"burn_fee_bps"`
	BuyLiquidityFeeBps  uint64 `mapstructure:"buy_liquidity_fee_bps"`
	SellLiquidityFeeBps uint64 `mapstructure:"sell_liquidity_fee_bps"`
	MaxBuyAmount        uint64 `mapstructure:"max_buy_amount"`
	MaxSellAmount       uint64 `mapstructure:"max_sell_amount"`
	OwnerFeeExempt      bool   `mapstructure:"owner_fee_exempt"`

	MetricsAddr  string `mapstructure:"metrics_addr"`
	PostgresURL  string `mapstructure:"postgres_url"`
	LogFile      string `mapstructure:"log_file"`
	DebugLogging bool   `mapstructure:"debug_logging"`
	EventBuffer  int    `mapstructure:"event_buffer"`
}

const (
	DefaultPoolFeeBps  = 25
	DefaultEventBuffer = 256
	DefaultMetricsAddr = ":9190"
	DefaultLogFile     = "fcod.log"

	maxBps = 10000
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"pool_fee_bps": DefaultPoolFeeBps,
		"event_buffer": DefaultEventBuffer,
		"metrics_addr": DefaultMetricsAddr,
		"log_file":     DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.Owner == "" {
		return errors.New("missing owner address in configuration")
	}
	if cfg.HoldingAddress == "" {
		return errors.New("missing holding_address in configuration")
	}
	if cfg.PairAddress == "" {
		return errors.New("missing pair_address in configuration")
	}
	if cfg.HoldingAddress == cfg.PairAddress {
		return errors.New("holding_address and pair_address must differ")
	}
	if cfg.InitialSupply == 0 {
		return errors.New("initial_supply must be positive")
	}
	return validateFeeParams(cfg)
}

func validateFeeParams(cfg *Config) error {
	if cfg.BurnFeeBps > maxBps {
		return errors.New("burn_fee_bps exceeds 10000")
	}
	if cfg.BuyLiquidityFeeBps > maxBps {
		return errors.New("buy_liquidity_fee_bps exceeds 10000")
	}
	if cfg.SellLiquidityFeeBps > maxBps {
		return errors.New("sell_liquidity_fee_bps exceeds 10000")
	}
	if cfg.PoolFeeBps > maxBps {
		return errors.New("pool_fee_bps exceeds 10000")
	}
	if cfg.EventBuffer < 0 {
		return errors.New("invalid event_buffer")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix("FCO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envURL := v.GetString("POSTGRES_URL"); envURL != "" {
		cfg.PostgresURL = envURL
	}
	if envOwner := v.GetString("OWNER"); envOwner != "" {
		cfg.Owner = envOwner
	}
}
