// mkrefdata writes a small sample procedure catalog, policy files and example
// claim documents so the claimready commands can be tried end to end.
// Usage: go run ./cmd/mkrefdata --out data --samples
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gyeh/claimready/internal/fixture"
	"github.com/gyeh/claimready/internal/model"
	"github.com/gyeh/claimready/internal/refdata"
)

func main() {
	out := flag.String("out", "data", "output directory")
	samples := flag.Bool("samples", false, "also write example intake and discharge documents")
	checkOnly := flag.Bool("check", false, "only read back the written catalog and print stats")
	flag.Parse()

	catalog := filepath.Join(*out, "procedures.parquet")
	policyDir := filepath.Join(*out, "policies")

	if *checkOnly {
		rows, err := refdata.ReadAll(catalog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read catalog: %v\n", err)
			os.Exit(1)
		}
		policies, err := refdata.LoadPolicies(policyDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read policies: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Procedures: %d, Policies: %d\n", len(rows), len(policies))
		return
	}

	if err := os.MkdirAll(policyDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	rows := procedures()
	if err := refdata.WriteCatalog(catalog, rows); err != nil {
		fmt.Fprintf(os.Stderr, "write catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d procedures to %s\n", len(rows), catalog)

	for name, body := range policies {
		path := filepath.Join(policyDir, name+".yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write policy: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote policy %s\n", path)
	}

	if !*samples {
		return
	}
	intake := fixture.Intake()
	docs := map[string]any{
		"intake.json":            intake,
		"expected.json":          intake.Note.CostBreakdown.Expected(intake.Note.StayDays()),
		"final_bill.json":        fixture.FinalBill(),
		"discharge_summary.json": fixture.DischargeSummary(),
	}
	for name, doc := range docs {
		path := filepath.Join(*out, "samples", name)
		if err := writeJSON(path, doc); err != nil {
			fmt.Fprintf(os.Stderr, "write sample: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote sample %s\n", path)
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func str(s string) *string   { return &s }
func num(f float64) *float64 { return &f }
func days(d int32) *int32    { return &d }

func procedures() []model.ProcedureRow {
	return []model.ProcedureRow{
		{
			ProcedureID:       "cataract_surgery",
			DisplayName:       "Cataract Surgery",
			Synonyms:          []string{"Phacoemulsification", "Cataract Extraction", "IOL Implantation"},
			ICD10Codes:        []string{"H25", "H26", "H28"},
			WaitingPeriodKey:  str("cataract"),
			AlternativeKeys:   []string{"eye_surgery"},
			TypicalCostMin:    num(25000),
			TypicalCostMax:    num(60000),
			TypicalStayMin:    days(0),
			TypicalStayMax:    days(1),
			NecessityCriteria: str("Visual acuity worse than 6/18 or lens opacity affecting daily activities; slit lamp and biometry documented"),
			FWAPatterns:       str("Premium IOL billed without documented indication; unbundled consumables; overnight stay without complication"),
			OvernightGuidance: str("Day-care procedure; overnight stay needs a documented medical reason"),
			CostAnalysis:      str("Surgeon fee and IOL dominate; room charges are minimal for day-care"),
		},
		{
			ProcedureID:       "hernia_repair",
			DisplayName:       "Inguinal Hernia Repair",
			Synonyms:          []string{"Hernioplasty", "Herniorrhaphy", "Laparoscopic Hernia Repair"},
			ICD10Codes:        []string{"K40", "K41"},
			WaitingPeriodKey:  str("hernia"),
			TypicalCostMin:    num(40000),
			TypicalCostMax:    num(120000),
			TypicalStayMin:    days(1),
			TypicalStayMax:    days(3),
			NecessityCriteria: str("Symptomatic or enlarging hernia on examination; ultrasound where diagnosis is unclear"),
			FWAPatterns:       str("Mesh upcharges; bilateral repair billed for unilateral diagnosis"),
			OvernightGuidance: str("One night routine for open repair; laparoscopic often same day"),
		},
		{
			ProcedureID:       "appendectomy",
			DisplayName:       "Appendectomy",
			Synonyms:          []string{"Appendicectomy", "Laparoscopic Appendectomy"},
			ICD10Codes:        []string{"K35", "K36", "K37"},
			TypicalCostMin:    num(50000),
			TypicalCostMax:    num(150000),
			TypicalStayMin:    days(1),
			TypicalStayMax:    days(4),
			NecessityCriteria: str("Clinical signs of appendicitis with supporting ultrasound or CT and raised inflammatory markers"),
			FWAPatterns:       str("Elective appendectomy billed as emergency; ICU days without documented sepsis"),
		},
		{
			ProcedureID:       "knee_replacement",
			DisplayName:       "Total Knee Replacement",
			Synonyms:          []string{"TKR", "Total Knee Arthroplasty", "Knee Arthroplasty"},
			ICD10Codes:        []string{"M17"},
			WaitingPeriodKey:  str("joint_replacement"),
			AlternativeKeys:   []string{"knee_replacement", "arthroplasty"},
			TypicalCostMin:    num(200000),
			TypicalCostMax:    num(450000),
			TypicalStayMin:    days(3),
			TypicalStayMax:    days(6),
			NecessityCriteria: str("Radiographic grade III-IV osteoarthritis with failed conservative management for 6 months"),
			FWAPatterns:       str("Implant brand upgrades without documentation; physiotherapy billed beyond stay"),
			CostAnalysis:      str("Implant cost typically 40-60% of the total"),
		},
	}
}

var policies = map[string]string{
	"star_comprehensive": `policy_id: star_comprehensive
insurer: Star Health
policy_name: Comprehensive
aliases:
  - Star Comprehensive
  - Comprehensive Insurance Policy
waiting_periods:
  initial_days: 30
  specific_conditions:
    cataract: 24
    hernia: 24
    joint_replacement: 48
exclusions:
  permanent:
    - cosmetic_surgery
    - dental_treatment
coverage_by_sum_insured:
  "500000":
    room_rent_max_per_day: 5000
  "1000000":
    room_rent_max_per_day: null
`,
	"care_supreme": `policy_id: care_supreme
insurer: Care Health
policy_name: Care Supreme
aliases:
  - Supreme
waiting_periods:
  initial_days: 30
  specific_conditions:
    cataract: 24
    hernia: 24
    arthroplasty: 36
exclusions:
  - cosmetic_surgery
  - infertility_treatment
coverage_by_sum_insured:
  "500000":
    room_rent_max_per_day: 4000
  "700000":
    room_rent_max_per_day: 7000
`,
}
