package model

// DefaultInitialWaitingDays applies when a policy does not state its initial waiting period.
const DefaultInitialWaitingDays = 30

// PolicyRecord is an insurance product's rules, normalized at load time.
type PolicyRecord struct {
	ID                 string
	Insurer            string
	Name               string
	Aliases            []string
	InitialWaitingDays int
	// WaitingMonths maps a condition key to its waiting period in months.
	WaitingMonths map[string]int
	// InvalidWaiting keeps condition entries whose value was not a whole number of months.
	InvalidWaiting map[string]string
	Exclusions     []string
	// Tiers maps a sum-insured bracket to its coverage limits.
	Tiers map[int64]CoverageTier
}

// CoverageTier holds the limits for one sum-insured bracket.
type CoverageTier struct {
	RoomRentCap RoomRentCap
}

// RoomRentCap is a daily room-rent limit. Raw keeps the source text when it
// could not be read as a number so the rule can report it.
type RoomRentCap struct {
	PerDay float64
	Set    bool
	Raw    string
	Valid  bool
}

// Excludes reports whether procedureID is on the exclusion list.
func (p PolicyRecord) Excludes(procedureID string) bool {
	for _, e := range p.Exclusions {
		if e == procedureID {
			return true
		}
	}
	return false
}

// ProcedureRecord is reference knowledge about one procedure. It is read-only.
type ProcedureRecord struct {
	ID                string
	DisplayName       string
	Synonyms          []string
	ICD10Codes        []string
	WaitingPeriodKey  string
	AlternativeKeys   []string
	TypicalCostMin    float64
	TypicalCostMax    float64
	TypicalStayMin    int
	TypicalStayMax    int
	NecessityCriteria string
	FWAPatterns       string
	OvernightGuidance string
	CostAnalysis      string
}

// WaitingKeys returns the policy lookup keys in priority order.
func (p ProcedureRecord) WaitingKeys() []string {
	var keys []string
	if p.WaitingPeriodKey != "" {
		keys = append(keys, p.WaitingPeriodKey)
	}
	return append(keys, p.AlternativeKeys...)
}

// ProcedureRow mirrors the Parquet schema of the procedure catalog.
type ProcedureRow struct {
	ProcedureID       string   `parquet:"procedure_id"`
	DisplayName       string   `parquet:"display_name"`
	Synonyms          []string `parquet:"synonyms"`
	ICD10Codes        []string `parquet:"icd_10_codes"`
	WaitingPeriodKey  *string  `parquet:"waiting_period_key,optional"`
	AlternativeKeys   []string `parquet:"alternative_keys"`
	TypicalCostMin    *float64 `parquet:"typical_cost_min,optional"`
	TypicalCostMax    *float64 `parquet:"typical_cost_max,optional"`
	TypicalStayMin    *int32   `parquet:"typical_stay_min,optional"`
	TypicalStayMax    *int32   `parquet:"typical_stay_max,optional"`
	NecessityCriteria *string  `parquet:"necessity_criteria,optional"`
	FWAPatterns       *string  `parquet:"fwa_patterns,optional"`
	OvernightGuidance *string  `parquet:"overnight_guidance,optional"`
	CostAnalysis      *string  `parquet:"cost_analysis,optional"`
}
