package refdata

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/claimready/internal/model"
	"github.com/gyeh/claimready/internal/normalize"
)

// Repository is the read-only, in-memory view of policies and procedures.
// It is built once per process and shared; nothing mutates it after construction.
type Repository struct {
	procedures  []model.ProcedureRecord
	procByID    map[string]int
	procByName  map[string]int
	policies    []model.PolicyRecord
	policyByID  map[string]int
	policyByKey map[string]int
}

// NewRepository indexes the given records. Duplicate ids are rejected.
func NewRepository(procedures []model.ProcedureRecord, policies []model.PolicyRecord) (*Repository, error) {
	r := &Repository{
		procedures:  procedures,
		procByID:    make(map[string]int, len(procedures)),
		procByName:  make(map[string]int),
		policies:    policies,
		policyByID:  make(map[string]int, len(policies)),
		policyByKey: make(map[string]int),
	}

	for i, p := range procedures {
		if p.ID == "" {
			return nil, fmt.Errorf("procedure at row %d has no id", i)
		}
		if _, dup := r.procByID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate procedure id %q", p.ID)
		}
		r.procByID[p.ID] = i
		for _, name := range append([]string{p.DisplayName}, p.Synonyms...) {
			key := normalize.FoldName(name)
			if _, taken := r.procByName[key]; key != "" && !taken {
				r.procByName[key] = i
			}
		}
	}

	for i, p := range policies {
		if _, dup := r.policyByID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate policy id %q", p.ID)
		}
		r.policyByID[p.ID] = i
		for _, name := range append([]string{p.Name}, p.Aliases...) {
			key := policyKey(p.Insurer, name)
			if _, taken := r.policyByKey[key]; !taken {
				r.policyByKey[key] = i
			}
		}
	}
	return r, nil
}

// Load reads the procedure catalog and the policy directory and builds a Repository.
func Load(catalogPath, policyDir string, log zerolog.Logger) (*Repository, error) {
	start := time.Now()

	rows, err := ReadAll(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("load procedures: %w", err)
	}
	procedures := make([]model.ProcedureRecord, len(rows))
	for i := range rows {
		procedures[i] = normalize.ToProcedureRecord(&rows[i])
	}

	policies, err := LoadPolicies(policyDir)
	if err != nil {
		return nil, fmt.Errorf("load policies: %w", err)
	}

	repo, err := NewRepository(procedures, policies)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("procedures", len(procedures)).
		Int("policies", len(policies)).
		Dur("duration", time.Since(start)).
		Msg("reference data loaded")
	return repo, nil
}

// Procedure finds a procedure by id, display name or synonym. Name matching
// ignores case, accents and extra whitespace.
func (r *Repository) Procedure(idOrName string) (model.ProcedureRecord, bool) {
	if i, ok := r.procByID[idOrName]; ok {
		return r.procedures[i], true
	}
	if i, ok := r.procByName[normalize.FoldName(idOrName)]; ok {
		return r.procedures[i], true
	}
	return model.ProcedureRecord{}, false
}

// Policy finds a policy by id.
func (r *Repository) Policy(id string) (model.PolicyRecord, bool) {
	i, ok := r.policyByID[id]
	if !ok {
		return model.PolicyRecord{}, false
	}
	return r.policies[i], true
}

// PolicyFor finds a policy by insurer and product name or alias, falling back to
// treating name as a policy id.
func (r *Repository) PolicyFor(insurer, name string) (model.PolicyRecord, bool) {
	if i, ok := r.policyByKey[policyKey(insurer, name)]; ok {
		return r.policies[i], true
	}
	return r.Policy(name)
}

// Procedures returns a copy of every procedure record.
func (r *Repository) Procedures() []model.ProcedureRecord {
	return append([]model.ProcedureRecord(nil), r.procedures...)
}

// Policies returns a copy of every policy record.
func (r *Repository) Policies() []model.PolicyRecord {
	return append([]model.PolicyRecord(nil), r.policies...)
}

func policyKey(insurer, name string) string {
	return normalize.FoldName(insurer) + "|" + normalize.FoldName(name)
}
