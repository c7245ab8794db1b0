package completeness

import (
	"strings"
	"testing"

	"github.com/gyeh/claimready/internal/fixture"
	"github.com/gyeh/claimready/internal/model"
)

func TestCheck_CompleteSubmission(t *testing.T) {
	res := Check(fixture.Intake())
	if res.Status != model.StatusPass {
		t.Fatalf("expected pass, got %s with %+v", res.Status, res.Findings)
	}
	if res.ScoreImpact != 0 || len(res.Findings) != 0 {
		t.Errorf("expected no deductions, got %d / %d findings", res.ScoreImpact, len(res.Findings))
	}
	if res.Agent != model.AgentCompleteness {
		t.Errorf("agent = %s", res.Agent)
	}
}

func TestCheck_MissingFormFields(t *testing.T) {
	rec := fixture.Intake()
	delete(rec.Form, "policy_number")
	delete(rec.Form, "sum_insured")
	rec.Form["hospital_name"] = ""

	res := Check(rec)
	if res.Status != model.StatusFail {
		t.Fatalf("expected fail, got %s", res.Status)
	}
	if res.ScoreImpact != -15 {
		t.Errorf("expected -15, got %d", res.ScoreImpact)
	}
	if len(res.Findings) != 3 {
		t.Fatalf("expected 3 findings, got %d: %+v", len(res.Findings), res.Findings)
	}

	want := []string{
		"Missing form field: policy_number",
		"Missing form field: sum_insured",
		"Empty form field: hospital_name",
	}
	for i, w := range want {
		if res.Findings[i].Explanation != w {
			t.Errorf("finding %d = %q, want %q", i, res.Findings[i].Explanation, w)
		}
	}
	if !strings.Contains(res.Summary, "Missing 3 form field(s)") {
		t.Errorf("summary = %q", res.Summary)
	}
}

func TestCheck_FalsyFormValues(t *testing.T) {
	rec := fixture.Intake()
	rec.Form["sum_insured"] = 0.0
	rec.Form["insurer"] = nil
	rec.Form["policy_type"] = "   "

	res := Check(rec)
	if len(res.Findings) != 3 {
		t.Fatalf("expected 3 findings, got %+v", res.Findings)
	}
	for _, f := range res.Findings {
		if !strings.HasPrefix(f.Explanation, "Empty form field") {
			t.Errorf("unexpected finding %q", f.Explanation)
		}
	}
}

func TestCheck_NoteSections(t *testing.T) {
	rec := fixture.Intake()
	rec.Note.DoctorDetails = nil
	rec.Note.ClinicalHistory = &model.ClinicalHistory{}

	res := Check(rec)
	if len(res.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %+v", res.Findings)
	}
	if res.Findings[0].Explanation != "Medical note section incomplete: clinical_history" {
		t.Errorf("first finding = %q", res.Findings[0].Explanation)
	}
	if res.Findings[1].Explanation != "Medical note missing section: doctor_details" {
		t.Errorf("second finding = %q", res.Findings[1].Explanation)
	}
}

func TestCheck_MissingCostBreakdownReportedOnce(t *testing.T) {
	rec := fixture.Intake()
	rec.Note.CostBreakdown = nil

	res := Check(rec)
	if len(res.Findings) != 1 || res.Findings[0].Category != categorySection {
		t.Fatalf("expected only the missing-section finding, got %+v", res.Findings)
	}
}

func TestCheck_CostBreakdown(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cb *model.CostBreakdown)
		want   []string
	}{
		{
			name:   "zero total stops further checks",
			mutate: func(cb *model.CostBreakdown) { cb.TotalEstimatedCost = 0; cb.RoomCharges = -1 },
			want:   []string{"Cost breakdown: Total estimated cost is zero or missing"},
		},
		{
			name: "only total provided",
			mutate: func(cb *model.CostBreakdown) {
				*cb = model.CostBreakdown{TotalEstimatedCost: 52000}
			},
			want: []string{
				"Cost breakdown: All cost components are zero (only total provided)",
				"Cost breakdown: Sum of components (Rs.0) doesn't match total (Rs.52,000)",
			},
		},
		{
			name: "negative component",
			mutate: func(cb *model.CostBreakdown) {
				cb.OtherCharges = -500
				cb.TotalEstimatedCost = 51500
			},
			want: []string{"Cost breakdown: Contains negative values"},
		},
		{
			name:   "just beyond one percent",
			mutate: func(cb *model.CostBreakdown) { cb.TotalEstimatedCost = 51480 },
			want:   []string{"Cost breakdown: Sum of components (Rs.52,000) doesn't match total (Rs.51,480)"},
		},
		{
			name:   "exactly one percent of total",
			mutate: func(cb *model.CostBreakdown) { cb.OtherCharges = 520; cb.TotalEstimatedCost = 52000 },
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := fixture.Intake()
			tt.mutate(rec.Note.CostBreakdown)
			res := Check(rec)

			var got []string
			for _, f := range res.Findings {
				if f.Category == categoryCost {
					got = append(got, f.Explanation)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("finding %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCheck_Idempotent(t *testing.T) {
	rec := fixture.Intake()
	delete(rec.Form, "insurer")
	a, b := Check(rec), Check(rec)
	if a.ScoreImpact != b.ScoreImpact || a.Status != b.Status || len(a.Findings) != len(b.Findings) {
		t.Errorf("repeated checks differ: %+v vs %+v", a, b)
	}
}
