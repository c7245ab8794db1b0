package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimready/internal/exitcode"
	"github.com/gyeh/claimready/internal/logging"
	"github.com/gyeh/claimready/internal/normalize"
	"github.com/gyeh/claimready/internal/refdata"
)

var refdataCmd = &cobra.Command{
	Use:   "refdata",
	Short: "Inspect the procedure catalog and policy files",
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Validate reference data and print what would be loaded (no writes)",
	RunE:  runPlan,
}

func init() {
	refdataCmd.AddCommand(planCmd)
	rootCmd.AddCommand(refdataCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	sha, err := normalize.FileHash(cfg.CatalogPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash catalog")
		os.Exit(exitcode.RefDataError)
	}

	reader, err := refdata.Open(cfg.CatalogPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to open catalog")
		os.Exit(exitcode.RefDataError)
	}
	numRows := reader.NumRows()
	schemaErr := refdata.ValidateSchema(reader.Schema())
	reader.Close()
	if schemaErr != nil {
		log.Error().Err(schemaErr).Msg("catalog schema validation failed")
		os.Exit(exitcode.RefDataError)
	}

	repo, err := refdata.Load(cfg.CatalogPath, cfg.PolicyDir, log)
	if err != nil {
		log.Error().Err(err).Msg("reference data load failed")
		os.Exit(exitcode.RefDataError)
	}

	fmt.Println("=== claimready refdata plan ===")
	fmt.Printf("Catalog:    %s\n", cfg.CatalogPath)
	fmt.Printf("SHA-256:    %s\n", sha)
	fmt.Printf("Rows:       %d\n", numRows)
	fmt.Printf("Policy dir: %s\n", cfg.PolicyDir)
	fmt.Println()

	fmt.Println("Procedures:")
	for _, p := range repo.Procedures() {
		stay := "-"
		if p.TypicalStayMax > 0 {
			stay = fmt.Sprintf("%d-%d days", p.TypicalStayMin, p.TypicalStayMax)
		}
		fmt.Printf("  %-24s %-32s %s to %s, %s\n", p.ID, p.DisplayName,
			normalize.Rupees(p.TypicalCostMin), normalize.Rupees(p.TypicalCostMax), stay)
	}

	fmt.Println()
	fmt.Println("Policies:")
	for _, p := range repo.Policies() {
		fmt.Printf("  %-24s %s / %s: %d waiting rule(s), %d exclusion(s), %d sum-insured tier(s)\n",
			p.ID, p.Insurer, p.Name, len(p.WaitingMonths), len(p.Exclusions), len(p.Tiers))
		for cond, raw := range p.InvalidWaiting {
			log.Warn().Str("policy", p.ID).Str("condition", cond).Str("value", raw).Msg("waiting period is not a whole number of months")
		}
	}
	fmt.Println("\nSchema validation: OK")
	return nil
}
