package refdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"

	"github.com/gyeh/claimready/internal/model"
)

func ptr[T any](v T) *T { return &v }

func catalogRows() []model.ProcedureRow {
	return []model.ProcedureRow{
		{
			ProcedureID:      "cataract_surgery",
			DisplayName:      "Cataract Surgery",
			Synonyms:         []string{"Phacoemulsification", "cataract operation"},
			ICD10Codes:       []string{"H25.1", "h26.9"},
			WaitingPeriodKey: ptr("cataract"),
			AlternativeKeys:  []string{"eye_surgery"},
			TypicalCostMin:   ptr(25000.0),
			TypicalCostMax:   ptr(60000.0),
			TypicalStayMin:   ptr(int32(0)),
			TypicalStayMax:   ptr(int32(1)),
		},
		{
			ProcedureID:    "appendectomy",
			DisplayName:    "Appendectomy",
			TypicalCostMax: ptr(150000.0),
			TypicalStayMax: ptr(int32(3)),
		},
	}
}

const listPolicy = `policy_id: star_comprehensive
insurer: Star Health
policy_name: Comprehensive
aliases: [Star Comprehensive]
waiting_periods:
  specific_conditions:
    cataract: 24
    hernia: "two years"
exclusions:
  - cosmetic_surgery
coverage_by_sum_insured:
  "500000":
    room_rent_max_per_day: 5000
  "1000000":
    room_rent_max_per_day: ~
`

const groupedPolicy = `policy_id: care_supreme
insurer: Care Health
policy_name: Supreme
waiting_periods:
  initial_days: 45
  specific_conditions:
    eye_surgery: 12
exclusions:
  permanent:
    - lasik
    - cosmetic_surgery
coverage_by_sum_insured:
  "300000":
    room_rent_max_per_day: "single private room"
`

func writePolicies(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a_star.yaml"), []byte(listPolicy), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b_care.yml"), []byte(groupedPolicy), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestParsePolicy_ListExclusions(t *testing.T) {
	rec, err := ParsePolicy([]byte(listPolicy))
	if err != nil {
		t.Fatalf("ParsePolicy: %v", err)
	}
	if rec.InitialWaitingDays != model.DefaultInitialWaitingDays {
		t.Errorf("expected default initial days, got %d", rec.InitialWaitingDays)
	}
	if rec.WaitingMonths["cataract"] != 24 {
		t.Errorf("cataract months = %d", rec.WaitingMonths["cataract"])
	}
	if _, ok := rec.InvalidWaiting["hernia"]; !ok {
		t.Errorf("expected non-numeric waiting period kept as invalid, got %v", rec.InvalidWaiting)
	}
	if !rec.Excludes("cosmetic_surgery") || rec.Excludes("cataract_surgery") {
		t.Errorf("unexpected exclusions: %v", rec.Exclusions)
	}
	cap5 := rec.Tiers[500000].RoomRentCap
	if !cap5.Set || !cap5.Valid || cap5.PerDay != 5000 {
		t.Errorf("500000 tier cap = %+v", cap5)
	}
	if capNull := rec.Tiers[1000000].RoomRentCap; capNull.Set {
		t.Errorf("null cap should mean no limit, got %+v", capNull)
	}
}

func TestParsePolicy_GroupedExclusions(t *testing.T) {
	rec, err := ParsePolicy([]byte(groupedPolicy))
	if err != nil {
		t.Fatalf("ParsePolicy: %v", err)
	}
	if rec.InitialWaitingDays != 45 {
		t.Errorf("initial days = %d", rec.InitialWaitingDays)
	}
	if len(rec.Exclusions) != 2 || !rec.Excludes("lasik") {
		t.Errorf("exclusions = %v", rec.Exclusions)
	}
	c := rec.Tiers[300000].RoomRentCap
	if !c.Set || c.Valid || c.Raw != "single private room" {
		t.Errorf("malformed cap should be kept as invalid, got %+v", c)
	}
}

func TestParsePolicy_Errors(t *testing.T) {
	cases := map[string]string{
		"missing id":      "insurer: X\n",
		"bad bracket":     "policy_id: p\ncoverage_by_sum_insured:\n  five_lakh:\n    room_rent_max_per_day: 1\n",
		"scalar excluded": "policy_id: p\nexclusions: everything\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParsePolicy([]byte(doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestCatalogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "procedures.parquet")
	if err := WriteCatalog(path, catalogRows()); err != nil {
		t.Fatalf("WriteCatalog: %v", err)
	}

	rows, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ProcedureID != "cataract_surgery" || len(rows[0].Synonyms) != 2 {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].WaitingPeriodKey != nil {
		t.Errorf("expected null waiting key, got %q", *rows[1].WaitingPeriodKey)
	}
}

func TestLoadRepository(t *testing.T) {
	catalog := filepath.Join(t.TempDir(), "procedures.parquet")
	if err := WriteCatalog(catalog, catalogRows()); err != nil {
		t.Fatalf("WriteCatalog: %v", err)
	}

	repo, err := Load(catalog, writePolicies(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(repo.Procedures()) != 2 || len(repo.Policies()) != 2 {
		t.Fatalf("unexpected counts: %d procedures, %d policies", len(repo.Procedures()), len(repo.Policies()))
	}

	for _, q := range []string{"cataract_surgery", "CATARACT surgery", "phacoemulsification"} {
		p, ok := repo.Procedure(q)
		if !ok || p.ID != "cataract_surgery" {
			t.Errorf("Procedure(%q) = %q, %v", q, p.ID, ok)
		}
	}
	if _, ok := repo.Procedure("heart transplant"); ok {
		t.Error("expected unknown procedure to miss")
	}

	if p, ok := repo.PolicyFor("star health", "star comprehensive"); !ok || p.ID != "star_comprehensive" {
		t.Errorf("alias lookup = %q, %v", p.ID, ok)
	}
	if p, ok := repo.PolicyFor("Care Health", "care_supreme"); !ok || p.ID != "care_supreme" {
		t.Errorf("id fallback lookup = %q, %v", p.ID, ok)
	}
	if _, ok := repo.PolicyFor("Nobody", "Nothing"); ok {
		t.Error("expected unknown policy to miss")
	}
}

func TestNewRepository_Duplicates(t *testing.T) {
	procs := []model.ProcedureRecord{{ID: "a"}, {ID: "a"}}
	if _, err := NewRepository(procs, nil); err == nil {
		t.Error("expected duplicate procedure error")
	}
	pols := []model.PolicyRecord{{ID: "p"}, {ID: "p"}}
	if _, err := NewRepository(nil, pols); err == nil {
		t.Error("expected duplicate policy error")
	}
}

func TestValidateSchema(t *testing.T) {
	type bare struct {
		ProcedureID string `parquet:"procedure_id"`
		DisplayName string `parquet:"display_name"`
	}
	if err := ValidateSchema(parquet.SchemaOf(bare{})); err == nil {
		t.Error("expected error when no typical range column is present")
	}

	type noName struct {
		ProcedureID    string  `parquet:"procedure_id"`
		TypicalCostMax float64 `parquet:"typical_cost_max"`
	}
	if err := ValidateSchema(parquet.SchemaOf(noName{})); err == nil {
		t.Error("expected error for missing display_name")
	}

	if err := ValidateSchema(parquet.SchemaOf(model.ProcedureRow{})); err != nil {
		t.Errorf("catalog row schema should validate: %v", err)
	}
}
