package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stakeScope/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:          "stakescope",
		Short:        "Stake log reconciliation against a wallet list",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			return config.LoadDotenv(envFile)
		},
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded before config (missing file is ignored)")

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch stake logs once and print the reconciliation report",
		RunE:  runReport,
	}
	addPipelineFlags(reportCmd.Flags())
	reportCmd.Flags().String("json-out", "", "write the structured report to this JSON file")
	reportCmd.Flags().String("events-out", "", "write decoded stake events to this JSONL file")

	root.AddCommand(reportCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report over HTTP with a short-lived cache",
		RunE:  runServe,
	}
	addPipelineFlags(serveCmd.Flags())
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().Duration("cache-ttl", 25*time.Second, "how long a report is served from cache")

	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPipelineFlags(flags *pflag.FlagSet) {
	flags.String("api-url", "https://api.etherscan.io/v2/api", "explorer API endpoint")
	flags.String("api-key", "", "explorer API key")
	flags.Uint64("chain-id", 1, "chain id")
	flags.String("contract", "", "staking contract address")
	flags.String("topic0", "", "event selector hash")
	flags.String("event-signature", "", "event signature hashed into topic0 when --topic0 is empty")
	flags.String("plans", "1=30,2=90,3=180,4=360", "plan catalog (comma-separated id=days)")
	flags.Bool("filter-enabled", true, "apply the wallet filter")
	flags.String("filter-mode", "exclude", "wallet filter mode (include, exclude)")
	flags.String("filter-file", "data_check.txt", "wallet list, one address per line")
	flags.Int("page-size", 1000, "records per explorer page")
	flags.Int("max-pages", 0, "stop after this many pages, 0 means unbounded")
	flags.Duration("request-timeout", 30*time.Second, "per-request timeout")
	flags.Int("max-retries", 0, "retries per page on transport errors")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	flags.String("source", config.SourceExplorer, "log source (explorer, rpc)")
	flags.String("rpc", "", "JSON-RPC URL for the rpc source")
	flags.Uint64("rpc-batch-size", 5000, "blocks per eth_getLogs call for the rpc source")
	flags.Int32("token-decimals", 18, "token decimals used to format amounts")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
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
