package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimready/internal/config"
	"github.com/gyeh/claimready/internal/exitcode"
	"github.com/gyeh/claimready/internal/logging"
	"github.com/gyeh/claimready/internal/model"
	"github.com/gyeh/claimready/internal/pipeline"
	"github.com/gyeh/claimready/internal/snapshot"
)

var dischargeFlags struct {
	claimID  string
	expected string
	bill     string
	summary  string
}

var dischargeCmd = &cobra.Command{
	Use:   "discharge",
	Short: "Compare the final bill and discharge summary against the pre-auth estimate",
	RunE:  runDischarge,
}

func init() {
	f := dischargeCmd.Flags()
	f.StringVar(&dischargeFlags.claimID, "claim", "", "Claim reference id from a pre-auth run (CR-YYYYMMDD-NNNNN)")
	f.StringVar(&dischargeFlags.expected, "expected", "", "Expected costs JSON, used when no claim reference is available")
	f.StringVar(&dischargeFlags.bill, "bill", "", "Final bill JSON")
	f.StringVar(&dischargeFlags.summary, "summary", "", "Discharge summary JSON")
	dischargeCmd.MarkFlagsMutuallyExclusive("claim", "expected")
	dischargeCmd.MarkFlagsOneRequired("claim", "expected")
	rootCmd.AddCommand(dischargeCmd)
}

func runDischarge(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	in, err := dischargeInput()
	if err != nil {
		log.Error().Err(err).Msg("discharge documents could not be read")
		os.Exit(exitcode.InputError)
	}
	if in.ReferenceID != "" && !snapshot.ValidReferenceID(in.ReferenceID) {
		log.Error().Str("claim", in.ReferenceID).Msg("claim reference must look like CR-YYYYMMDD-NNNNN")
		os.Exit(exitcode.UsageError)
	}
	if in.ReferenceID != "" && cfg.DSN == "" {
		log.Error().Msg("--dsn or " + config.EnvDSN + " is required to look up a claim reference")
		os.Exit(exitcode.UsageError)
	}

	runner, closeStore := newRunner(ctx, log)
	defer closeStore()

	report, err := runner.Discharge(ctx, in)
	if err != nil {
		closeStore()
		exitForPipeline(log, err, "discharge validation")
	}

	if jsonOutput {
		return printJSON(report)
	}
	printDischarge(report)
	return nil
}

func dischargeInput() (pipeline.DischargeInput, error) {
	in := pipeline.DischargeInput{ReferenceID: dischargeFlags.claimID}

	var expected model.ExpectedCosts
	if ok, err := readJSON(dischargeFlags.expected, &expected); err != nil {
		return in, err
	} else if ok {
		in.Expected = &expected
	}

	var bill model.FinalBill
	if ok, err := readJSON(dischargeFlags.bill, &bill); err != nil {
		return in, err
	} else if ok {
		in.Bill = &bill
	}

	var summary model.DischargeSummary
	if ok, err := readJSON(dischargeFlags.summary, &summary); err != nil {
		return in, err
	} else if ok {
		in.Summary = &summary
	}
	return in, nil
}

func printDischarge(r *pipeline.DischargeReport) {
	res := r.Result
	fmt.Println("=== claimready discharge ===")
	if r.ReferenceID != "" {
		fmt.Printf("Reference:    %s\n", r.ReferenceID)
	}
	fmt.Printf("Score:        %d/100\n", res.Score)
	fmt.Printf("Completeness: %s\n", res.Completeness)
	if len(res.MissingDocuments) > 0 {
		fmt.Printf("Missing:      %v\n", res.MissingDocuments)
	}
	fmt.Println()
	fmt.Println(res.PatientSummary)

	fmt.Println()
	fmt.Print(res.BillComparison)
	fmt.Println()
	fmt.Print(res.VarianceAnalysis)

	fmt.Println()
	fmt.Println("Checklist:")
	for _, item := range res.Checklist {
		mark := " "
		if item.Present {
			mark = "x"
		}
		fmt.Printf("  [%s] %-26s %s\n", mark, item.Document, item.Detail)
	}

	g := res.Guidance
	if len(g.Medications) > 0 || len(g.FollowUps) > 0 || len(g.WarningSigns) > 0 {
		fmt.Println()
		fmt.Println("Recovery guidance:")
		for _, m := range g.Medications {
			fmt.Printf("  - %s\n", m.Instruction)
		}
		for _, f := range g.FollowUps {
			fmt.Printf("  - Follow-up %s: %s\n", f.Timing, f.Purpose)
		}
		for _, w := range g.WarningSigns {
			fmt.Printf("  - Seek care if: %s\n", w)
		}
		if g.RecoveryTimeline != "" {
			fmt.Printf("  Timeline: %s\n", g.RecoveryTimeline)
		}
	}

	fmt.Println()
	fmt.Println("Recommendations:")
	for i, rec := range res.Recommendations {
		fmt.Printf("  %d. %s\n", i+1, rec)
	}
}
