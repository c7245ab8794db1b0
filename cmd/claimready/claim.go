package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/claimready/internal/exitcode"
	"github.com/gyeh/claimready/internal/logging"
	"github.com/gyeh/claimready/internal/model"
	"github.com/gyeh/claimready/internal/normalize"
	"github.com/gyeh/claimready/internal/snapshot"
)

var listLimit int

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Inspect stored pre-auth claim snapshots",
}

var claimShowCmd = &cobra.Command{
	Use:   "show REFERENCE_ID",
	Short: "Print one stored claim snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runClaimShow,
}

var claimListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent claim snapshots, newest first",
	RunE:  runClaimList,
}

func init() {
	claimListCmd.Flags().IntVar(&listLimit, "limit", snapshot.DefaultListLimit, "Maximum number of claims to list")
	claimCmd.AddCommand(claimShowCmd, claimListCmd)
	rootCmd.AddCommand(claimCmd)
}

func openStore(ctx context.Context, log zerolog.Logger) (*snapshot.Postgres, func()) {
	if err := cfg.RequireDSN(); err != nil {
		log.Error().Err(err).Msg("claim lookup needs a database")
		os.Exit(exitcode.UsageError)
	}
	pool := mustPool(ctx, log)
	return snapshot.NewPostgres(pool, log), pool.Close
}

func runClaimShow(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	id := args[0]
	if !snapshot.ValidReferenceID(id) {
		log.Error().Str("claim", id).Msg("claim reference must look like CR-YYYYMMDD-NNNNN")
		os.Exit(exitcode.UsageError)
	}

	store, closeStore := openStore(ctx, log)
	defer closeStore()

	snap, err := store.Load(ctx, id)
	if err != nil {
		closeStore()
		if errors.Is(err, snapshot.ErrNotFound) {
			log.Error().Str("claim", id).Msg("claim not found")
			os.Exit(exitcode.ClaimNotFound)
		}
		log.Error().Err(err).Msg("claim lookup failed")
		os.Exit(exitcode.StoreError)
	}

	if jsonOutput {
		return printJSON(snap)
	}
	printSnapshot(snap)
	return nil
}

func runClaimList(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	store, closeStore := openStore(ctx, log)
	defer closeStore()

	snaps, err := store.List(ctx, listLimit)
	if err != nil {
		closeStore()
		log.Error().Err(err).Msg("claim listing failed")
		os.Exit(exitcode.StoreError)
	}

	if jsonOutput {
		return printJSON(snaps)
	}
	fmt.Printf("%-18s %-20s %-8s %5s  %-24s %s\n", "REFERENCE", "CREATED", "STATUS", "SCORE", "PROCEDURE", "EXPECTED")
	for _, s := range snaps {
		fmt.Printf("%-18s %-20s %-8s %5s  %-24s %s\n",
			s.ReferenceID, s.CreatedAt.Format("2006-01-02 15:04:05"), s.Status, strconv.Itoa(s.Score),
			s.ProcedureID, normalize.Rupees(s.Expected.Total))
	}
	fmt.Printf("\n%d claim(s)\n", len(snaps))
	return nil
}

func printSnapshot(s model.ClaimSnapshot) {
	fmt.Println("=== claimready claim ===")
	fmt.Printf("Reference:   %s\n", s.ReferenceID)
	fmt.Printf("Run:         %s\n", s.RunID)
	fmt.Printf("Created:     %s\n", s.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Patient:     %s\n", s.PatientName)
	fmt.Printf("Policy:      %s (%s, %s)\n", s.PolicyNumber, s.Insurer, s.PolicyType)
	fmt.Printf("Procedure:   %s\n", s.ProcedureID)
	fmt.Printf("Hospital:    %s (%s)\n", s.HospitalName, s.DoctorName)
	fmt.Printf("Score:       %d/100 (%s)\n", s.Score, s.Status)
	fmt.Printf("Fingerprint: %s\n", s.InputFingerprint)
	fmt.Println()
	fmt.Printf("Expected costs (%d day stay): %s\n", s.Expected.StayDays, normalize.Rupees(s.Expected.Total))
	for _, item := range slices.Sorted(maps.Keys(s.Expected.Items)) {
		fmt.Printf("  %-24s %s\n", item, normalize.Rupees(s.Expected.Items[item]))
	}
	fmt.Println()
	fmt.Println(s.ValidationSummary)
}
