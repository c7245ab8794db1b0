package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/claimready/internal/model"
	embedsql "github.com/gyeh/claimready/internal/sql"
)

// Postgres stores snapshots in claims.snapshots. Reference ids are claimed
// atomically with INSERT ... ON CONFLICT DO NOTHING and regenerated on collision.
type Postgres struct {
	pool   *pgxpool.Pool
	log    zerolog.Logger
	now    func() time.Time
	suffix func() int
}

// NewPostgres returns a store backed by pool. Migrations must already be applied.
func NewPostgres(pool *pgxpool.Pool, log zerolog.Logger) *Postgres {
	return &Postgres{
		pool:   pool,
		log:    log,
		now:    time.Now,
		suffix: RandomSuffix,
	}
}

func (p *Postgres) Save(ctx context.Context, s model.ClaimSnapshot) (string, error) {
	costs, err := json.Marshal(s.Expected)
	if err != nil {
		return "", fmt.Errorf("encode expected costs: %w", err)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = p.now().UTC()
	}

	id, err := retry.DoWithData(
		func() (string, error) {
			id := NewReferenceID(s.CreatedAt, p.suffix())
			tag, err := p.pool.Exec(ctx, embedsql.InsertSnapshot,
				id, s.RunID.String(), s.CreatedAt,
				s.PatientName, s.PolicyNumber, s.Insurer, s.PolicyType, s.ProcedureID,
				s.HospitalName, s.DoctorName,
				costs, s.Score, string(s.Status), s.ValidationSummary, s.InputFingerprint,
			)
			if err != nil {
				return "", fmt.Errorf("insert snapshot: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return "", errIDTaken
			}
			return id, nil
		},
		retry.Context(ctx),
		retry.Attempts(maxIDAttempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return errors.Is(err, errIDTaken) }),
		retry.OnRetry(func(n uint, err error) {
			p.log.Debug().Uint("attempt", n+1).Msg("reference id collision, regenerating")
		}),
	)
	if err != nil {
		return "", err
	}

	p.log.Info().
		Str("reference_id", id).
		Str("run_id", s.RunID.String()).
		Int("score", s.Score).
		Msg("claim snapshot saved")
	return id, nil
}

func (p *Postgres) Load(ctx context.Context, referenceID string) (model.ClaimSnapshot, error) {
	s, err := scanSnapshot(p.pool.QueryRow(ctx, embedsql.GetSnapshot, referenceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ClaimSnapshot{}, errors.Wrapf(ErrNotFound, "reference id %s", referenceID)
	}
	if err != nil {
		return model.ClaimSnapshot{}, fmt.Errorf("load snapshot %s: %w", referenceID, err)
	}
	return s, nil
}

func (p *Postgres) List(ctx context.Context, limit int) ([]model.ClaimSnapshot, error) {
	rows, err := p.pool.Query(ctx, embedsql.ListSnapshots, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []model.ClaimSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

func scanSnapshot(row pgx.Row) (model.ClaimSnapshot, error) {
	var (
		s      model.ClaimSnapshot
		runID  string
		costs  []byte
		status string
	)
	err := row.Scan(
		&s.ReferenceID, &runID, &s.CreatedAt,
		&s.PatientName, &s.PolicyNumber, &s.Insurer, &s.PolicyType, &s.ProcedureID,
		&s.HospitalName, &s.DoctorName,
		&costs, &s.Score, &status, &s.ValidationSummary, &s.InputFingerprint,
	)
	if err != nil {
		return s, err
	}
	if s.RunID, err = uuid.Parse(runID); err != nil {
		return s, fmt.Errorf("parse run id: %w", err)
	}
	if err := json.Unmarshal(costs, &s.Expected); err != nil {
		return s, fmt.Errorf("decode expected costs: %w", err)
	}
	s.Status = model.Status(status)
	return s, nil
}
