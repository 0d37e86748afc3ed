package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "poolscope",
		Short:        "Cardano AMM pool state engine and monitor",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Reconcile pool snapshots into events",
		RunE:  runWatch,
	}

	watchCmd.Flags().String("in", "", "input snapshots JSONL path")
	watchCmd.Flags().String("out", "./data/events.jsonl", "output events JSONL path")
	watchCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	watchCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	watchCmd.Flags().Bool("follow", false, "keep tailing the input for new snapshots")
	watchCmd.Flags().Duration("poll-interval", 500*time.Millisecond, "tail poll interval")
	watchCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for event storage")
	watchCmd.Flags().Int("batch-size", 100, "events per sink flush")
	watchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(watchCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap against a pool datum",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("datum", "", "pool datum JSON path")
	quoteCmd.Flags().Uint64("amount-in", 0, "input amount (lovelace or token units)")
	quoteCmd.Flags().Bool("token-in", false, "swap token for ADA instead of ADA for token")
	quoteCmd.Flags().Uint64("min-out", 0, "minimum acceptable output")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	addCmd := &cobra.Command{
		Use:   "add-liquidity",
		Short: "Compute LP minting for a deposit",
		RunE:  runAddLiquidity,
	}

	addCmd.Flags().String("datum", "", "pool datum JSON path")
	addCmd.Flags().Uint64("ada", 0, "ADA deposit (lovelace)")
	addCmd.Flags().Uint64("token", 0, "token deposit")
	addCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(addCmd)

	removeCmd := &cobra.Command{
		Use:   "remove-liquidity",
		Short: "Compute the withdrawal for an LP burn",
		RunE:  runRemoveLiquidity,
	}

	removeCmd.Flags().String("datum", "", "pool datum JSON path")
	removeCmd.Flags().Uint64("lp-amount", 0, "LP tokens to burn")
	removeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(removeCmd)

	minAdaCmd := &cobra.Command{
		Use:   "min-ada",
		Short: "Compute the minimum lovelace for a UTXO shape",
		RunE:  runMinAda,
	}

	minAdaCmd.Flags().Int("assets", 0, "native asset count excluding ADA")
	minAdaCmd.Flags().Int("datum-size", 0, "inline datum size in bytes")
	minAdaCmd.Flags().Bool("script", false, "script-owned address")
	minAdaCmd.Flags().String("entity", "generic", "entity kind (pool, factory, lp_token, user, generic)")
	minAdaCmd.Flags().Uint64("actual", 0, "actual lovelace to validate (0 skips validation)")
	minAdaCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(minAdaCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
