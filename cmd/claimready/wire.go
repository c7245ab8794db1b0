package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/claimready/internal/db"
	"github.com/gyeh/claimready/internal/exitcode"
	"github.com/gyeh/claimready/internal/judge"
	"github.com/gyeh/claimready/internal/llm"
	"github.com/gyeh/claimready/internal/pipeline"
	"github.com/gyeh/claimready/internal/refdata"
	"github.com/gyeh/claimready/internal/snapshot"
)

// newRunner loads reference data, the judgment client and, when a DSN is
// configured, the Postgres snapshot store. The returned func releases the pool.
func newRunner(ctx context.Context, log zerolog.Logger) (*pipeline.Runner, func()) {
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	repo, err := refdata.Load(cfg.CatalogPath, cfg.PolicyDir, log)
	if err != nil {
		log.Error().Err(err).Msg("reference data load failed")
		os.Exit(exitcode.RefDataError)
	}

	panel := judge.NewPanel(newClient(log), judge.Retrier{Attempts: cfg.Retry.Attempts, Delay: cfg.Retry.Delay}, log)

	if cfg.DSN == "" {
		log.Warn().Msg("no database configured; claim snapshots are kept in memory for this run only")
		return pipeline.NewRunner(repo, panel, snapshot.NewMemory(), log), func() {}
	}
	pool := mustPool(ctx, log)
	return pipeline.NewRunner(repo, panel, snapshot.NewPostgres(pool, log), log), pool.Close
}

func newClient(log zerolog.Logger) llm.Client {
	if !cfg.LLMEnabled() {
		log.Warn().Msg("no model API key configured; judgments will fall back to manual review")
		return llm.Disabled{}
	}
	client, err := llm.New(llm.Options{BaseURL: cfg.LLM.BaseURL, APIKey: cfg.LLM.APIKey, Model: cfg.LLM.Model})
	if err != nil {
		log.Warn().Err(err).Msg("model client unavailable; judgments will fall back to manual review")
		return llm.Disabled{}
	}
	return client
}

func mustPool(ctx context.Context, log zerolog.Logger) *pgxpool.Pool {
	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	return pool
}

// readJSON decodes the file at path into v. An empty path leaves v untouched
// and reports false.
func readJSON(path string, v any) (bool, error) {
	if path == "" {
		return false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, errors.Wrapf(err, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.Wrapf(err, "parse %s", path)
	}
	return true, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitForPipeline maps a pipeline error to its exit code.
func exitForPipeline(log zerolog.Logger, err error, what string) {
	var pe *pipeline.Error
	if errors.As(err, &pe) {
		log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg(what + " failed")
		switch {
		case pipeline.IsNotFound(err):
			os.Exit(exitcode.ClaimNotFound)
		case pe.Phase == pipeline.PhaseInput:
			os.Exit(exitcode.InputError)
		default:
			os.Exit(exitcode.StoreError)
		}
	}
	log.Error().Err(err).Msg(what + " failed")
	os.Exit(exitcode.StoreError)
}
