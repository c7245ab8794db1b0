package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimready/internal/config"
	"github.com/gyeh/claimready/internal/exitcode"
	"github.com/gyeh/claimready/internal/logging"
)

var (
	cfg        = config.Default()
	configFile string
	jsonOutput bool
)

// fileBackedFlags are the persistent flags a config file may also set.
// Flags given explicitly on the command line win over the file.
var fileBackedFlags = []string{
	"log-format", "log-level", "catalog", "policies",
	"llm-base-url", "llm-model", "retry-attempts", "retry-delay",
}

var rootCmd = &cobra.Command{
	Use:   "claimready",
	Short: "Health-insurance claim readiness checks",
	Long: "Validates pre-authorization requests and discharge paperwork against policy rules, " +
		"procedure reference data and the pre-auth estimate. Results describe documentation readiness; " +
		"the insurer makes the coverage decision.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Path to a YAML config file")
	pf.StringVar(&cfg.DSN, "dsn", "", "Postgres connection string (or set "+config.EnvDSN+")")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: trace, debug, info, warn or error")
	pf.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "Procedure catalog Parquet file")
	pf.StringVar(&cfg.PolicyDir, "policies", cfg.PolicyDir, "Directory of policy YAML files")
	pf.StringVar(&cfg.LLM.BaseURL, "llm-base-url", cfg.LLM.BaseURL, "OpenAI-compatible endpoint for judgments")
	pf.StringVar(&cfg.LLM.Model, "llm-model", cfg.LLM.Model, "Model used for judgments")
	pf.UintVar(&cfg.Retry.Attempts, "retry-attempts", cfg.Retry.Attempts, "Attempts per judgment call")
	pf.DurationVar(&cfg.Retry.Delay, "retry-delay", cfg.Retry.Delay, "Delay between judgment attempts")
	pf.BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		explicit := map[string]string{}
		for _, name := range fileBackedFlags {
			if cmd.Flags().Changed(name) {
				explicit[name] = cmd.Flags().Lookup(name).Value.String()
			}
		}
		if err := cfg.LoadFromFile(configFile); err != nil {
			log := logging.Setup(cfg.LogFormat)
			log.Error().Err(err).Msg("config file")
			os.Exit(exitcode.UsageError)
		}
		for name, v := range explicit {
			if err := cmd.Flags().Set(name, v); err != nil {
				return err
			}
		}
	}
	cfg.ApplyEnv()
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		log := logging.Setup(cfg.LogFormat)
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	return nil
}
