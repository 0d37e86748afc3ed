package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolScope/internal/amm"
	"poolScope/internal/config"
	"poolScope/internal/datum"
	"poolScope/internal/minada"
	"poolScope/internal/model"
)

// loadDatum reads a pool datum JSON file and runs the structure gate before
// any engine math sees it.
func loadDatum(path string) (model.PoolDatum, error) {
	if path == "" {
		return model.PoolDatum{}, fmt.Errorf("datum path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.PoolDatum{}, fmt.Errorf("read datum: %w", err)
	}

	var d model.PoolDatum
	if err := json.Unmarshal(data, &d); err != nil {
		return model.PoolDatum{}, fmt.Errorf("parse datum: %w", err)
	}
	if err := datum.ValidateStructure(d); err != nil {
		return model.PoolDatum{}, err
	}
	return d, nil
}

func printJSON(value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	d, err := loadDatum(cfg.Datum)
	if err != nil {
		return err
	}

	quote, err := amm.Quote(d.PoolState, d.PoolConfig, cfg.AmountIn, cfg.TokenIn)
	if err != nil {
		return err
	}
	if cfg.MinOut > 0 {
		if err := amm.CheckMinOut(quote, cfg.MinOut); err != nil {
			return err
		}
	}

	// The proposed successor datum for the transaction builder.
	newStats := datum.UpdateStats(d.PoolStats,
		volumeAda(quote, cfg.TokenIn),
		volumeToken(quote, cfg.TokenIn),
		quote.Fee+quote.ProtocolFee,
		amm.ScaledPrice(quote.NewState.AdaReserve, quote.NewState.TokenReserve),
		d.PoolState.LastInteractionSlot,
	)
	next := datum.ApplyUpdate(d, datum.Delta{NewState: &quote.NewState, NewStats: &newStats})

	if _, err := minada.ValidatePoolOutput(quote.NewState, 2, datum.EstimateSize(next)); err != nil {
		return err
	}

	logger.Info("quote",
		zap.Uint64("amount_in", quote.AmountIn),
		zap.Uint64("amount_out", quote.AmountOut),
		zap.Uint64("price_impact_bps", quote.PriceImpactBps),
	)

	return printJSON(struct {
		Quote    amm.SwapQuote   `json:"quote"`
		NewDatum model.PoolDatum `json:"new_datum"`
	}{quote, next})
}

func volumeAda(quote amm.SwapQuote, tokenIn bool) uint64 {
	if tokenIn {
		return quote.AmountOut
	}
	return quote.AmountIn
}

func volumeToken(quote amm.SwapQuote, tokenIn bool) uint64 {
	if tokenIn {
		return quote.AmountIn
	}
	return quote.AmountOut
}

func runAddLiquidity(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadLiquidity(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	d, err := loadDatum(cfg.Datum)
	if err != nil {
		return err
	}

	result, err := amm.AddLiquidity(d.PoolState, cfg.Ada, cfg.Token)
	if err != nil {
		return err
	}

	next := datum.ApplyUpdate(d, datum.Delta{NewState: &result.NewState})

	logger.Info("add liquidity",
		zap.Uint64("ada", cfg.Ada),
		zap.Uint64("token", cfg.Token),
		zap.Uint64("lp_minted", result.LPMinted),
	)

	return printJSON(struct {
		Result   amm.AddLiquidityResult `json:"result"`
		NewDatum model.PoolDatum        `json:"new_datum"`
	}{result, next})
}

func runRemoveLiquidity(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadLiquidity(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	d, err := loadDatum(cfg.Datum)
	if err != nil {
		return err
	}

	result, err := amm.RemoveLiquidity(d.PoolState, cfg.LPAmount)
	if err != nil {
		return err
	}

	next := datum.ApplyUpdate(d, datum.Delta{NewState: &result.NewState})

	// A withdrawal must not leave the pool output below its own minimum.
	if _, err := minada.ValidatePoolOutput(result.NewState, 2, datum.EstimateSize(next)); err != nil {
		return err
	}

	logger.Info("remove liquidity",
		zap.Uint64("lp_amount", cfg.LPAmount),
		zap.Uint64("ada_out", result.AdaOut),
		zap.Uint64("token_out", result.TokenOut),
	)

	return printJSON(struct {
		Result   amm.RemoveLiquidityResult `json:"result"`
		NewDatum model.PoolDatum           `json:"new_datum"`
	}{result, next})
}

func runMinAda(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadMinAda(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	kind := minada.EntityKind(cfg.Entity)
	if cfg.Actual > 0 {
		result, err := minada.Validate(cfg.Actual, cfg.Assets, cfg.DatumSize, cfg.Script, kind)
		if err != nil {
			return err
		}
		return printJSON(result)
	}

	required, err := minada.MinAda(cfg.Assets, cfg.DatumSize, cfg.Script, kind)
	if err != nil {
		return err
	}

	logger.Info("min ada",
		zap.Int("assets", cfg.Assets),
		zap.Int("datum_size", cfg.DatumSize),
		zap.Uint64("required", required),
	)

	return printJSON(struct {
		Required uint64 `json:"required"`
	}{required})
}
