package config

import (
	"github.com/spf13/pflag"
)

// QuoteConfig holds configuration for the quote command.
type QuoteConfig struct {
	Datum    string
	AmountIn uint64
	TokenIn  bool
	MinOut   uint64
	LogLevel string
}

// LoadQuote merges config file, environment variables, and flags.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return QuoteConfig{}, err
	}

	v.SetDefault("log-level", "info")

	return QuoteConfig{
		Datum:    v.GetString("datum"),
		AmountIn: v.GetUint64("amount-in"),
		TokenIn:  v.GetBool("token-in"),
		MinOut:   v.GetUint64("min-out"),
		LogLevel: v.GetString("log-level"),
	}, nil
}

// LiquidityConfig holds configuration for the liquidity commands.
type LiquidityConfig struct {
	Datum    string
	Ada      uint64
	Token    uint64
	LPAmount uint64
	LogLevel string
}

// LoadLiquidity merges config file, environment variables, and flags.
func LoadLiquidity(cfgFile string, flags *pflag.FlagSet) (LiquidityConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return LiquidityConfig{}, err
	}

	v.SetDefault("log-level", "info")

	return LiquidityConfig{
		Datum:    v.GetString("datum"),
		Ada:      v.GetUint64("ada"),
		Token:    v.GetUint64("token"),
		LPAmount: v.GetUint64("lp-amount"),
		LogLevel: v.GetString("log-level"),
	}, nil
}

// MinAdaConfig holds configuration for the min-ada command.
type MinAdaConfig struct {
	Assets    int
	DatumSize int
	Script    bool
	Entity    string
	Actual    uint64
	LogLevel  string
}

// LoadMinAda merges config file, environment variables, and flags.
func LoadMinAda(cfgFile string, flags *pflag.FlagSet) (MinAdaConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return MinAdaConfig{}, err
	}

	v.SetDefault("entity", "generic")
	v.SetDefault("log-level", "info")

	return MinAdaConfig{
		Assets:    v.GetInt("assets"),
		DatumSize: v.GetInt("datum-size"),
		Script:    v.GetBool("script"),
		Entity:    v.GetString("entity"),
		Actual:    v.GetUint64("actual"),
		LogLevel:  v.GetString("log-level"),
	}, nil
}
