package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimready/internal/exitcode"
	"github.com/gyeh/claimready/internal/logging"
	"github.com/gyeh/claimready/internal/model"
	"github.com/gyeh/claimready/internal/pipeline"
)

var intakePath string

var preauthCmd = &cobra.Command{
	Use:   "preauth",
	Short: "Validate a pre-authorization request and issue a claim reference",
	RunE:  runPreAuth,
}

func init() {
	preauthCmd.Flags().StringVar(&intakePath, "intake", "", "Intake JSON: form fields plus the medical note (required)")
	_ = preauthCmd.MarkFlagRequired("intake")
	rootCmd.AddCommand(preauthCmd)
}

func runPreAuth(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	var rec model.IntakeRecord
	if _, err := readJSON(intakePath, &rec); err != nil {
		log.Error().Err(err).Msg("intake could not be read")
		os.Exit(exitcode.InputError)
	}

	runner, closeStore := newRunner(ctx, log)
	defer closeStore()

	report, err := runner.PreAuth(ctx, rec)
	if err != nil {
		closeStore()
		exitForPipeline(log, err, "pre-auth validation")
	}

	if jsonOutput {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		printPreAuth(report)
	}

	if report.Result.Status == model.StatusFail {
		closeStore()
		os.Exit(exitcode.Blocked)
	}
	return nil
}

func printPreAuth(r *pipeline.PreAuthReport) {
	res := r.Result
	fmt.Println("=== claimready pre-auth ===")
	if r.ReferenceID != "" {
		fmt.Printf("Reference:   %s\n", r.ReferenceID)
	}
	fmt.Printf("Run:         %s\n", r.RunID)
	fmt.Printf("Score:       %d/100\n", res.Score)
	fmt.Printf("Status:      %s\n", res.Status)
	fmt.Printf("Readiness:   %s (advisory)\n", res.ApprovalLikelihood)
	fmt.Println()
	fmt.Println(res.Summary)

	fmt.Println()
	fmt.Println("Checks:")
	for _, a := range []model.AgentResult{
		res.Agents.Completeness, res.Agents.Policy, res.Agents.Medical.AgentResult, res.Agents.FWA.AgentResult,
	} {
		fmt.Printf("  %-16s %-8s %4d  %s\n", a.Agent, a.Status, a.ScoreImpact, a.Summary)
	}

	if len(res.Issues) > 0 {
		fmt.Println()
		fmt.Println("Issues:")
		for _, issue := range res.Issues {
			fmt.Printf("  - %s\n", issue)
		}
	}
	if len(res.Recommendations) > 0 {
		fmt.Println()
		fmt.Println("Recommendations:")
		for i, rec := range res.Recommendations {
			fmt.Printf("  %d. %s\n", i+1, rec)
		}
	}
}
