package normalize

import (
	"strings"

	"github.com/gyeh/claimready/internal/model"
)

// ToProcedureRecord converts a Parquet catalog row into a ProcedureRecord.
// Optional columns collapse to zero values; diagnosis codes are normalized.
func ToProcedureRecord(row *model.ProcedureRow) model.ProcedureRecord {
	rec := model.ProcedureRecord{
		ID:                strings.TrimSpace(row.ProcedureID),
		DisplayName:       strings.TrimSpace(row.DisplayName),
		Synonyms:          compact(row.Synonyms),
		WaitingPeriodKey:  strings.TrimSpace(derefStr(row.WaitingPeriodKey)),
		AlternativeKeys:   compact(row.AlternativeKeys),
		TypicalCostMin:    derefFloat(row.TypicalCostMin),
		TypicalCostMax:    derefFloat(row.TypicalCostMax),
		TypicalStayMin:    int(derefInt(row.TypicalStayMin)),
		TypicalStayMax:    int(derefInt(row.TypicalStayMax)),
		NecessityCriteria: derefStr(row.NecessityCriteria),
		FWAPatterns:       derefStr(row.FWAPatterns),
		OvernightGuidance: derefStr(row.OvernightGuidance),
		CostAnalysis:      derefStr(row.CostAnalysis),
	}
	for _, c := range row.ICD10Codes {
		if code := NormalizeCode(c); code != "" {
			rec.ICD10Codes = append(rec.ICD10Codes, code)
		}
	}
	return rec
}

func compact(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func derefInt(i *int32) int32 {
	if i == nil {
		return 0
	}
	return *i
}
