package judge

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/gyeh/claimready/internal/model"
	"github.com/gyeh/claimready/internal/normalize"
)

// Assessment grades returned by the reviewer.
const (
	AssessmentStrong      = "strong"
	AssessmentAcceptable  = "acceptable"
	AssessmentWeak        = "weak"
	AssessmentConcerning  = "concerning"
	AssessmentUnavailable = "unavailable"
)

// ConcernPenalty is deducted per concern on top of the assessment base.
const ConcernPenalty = 5

var assessmentPenalty = map[string]int{
	AssessmentStrong:     0,
	AssessmentAcceptable: -5,
	AssessmentWeak:       -10,
	AssessmentConcerning: -15,
}

const unknownAssessmentPenalty = -5

const medicalInstruction = "You are a medical claim reviewer for health insurance in India. " +
	"You review pre-authorization documentation only. Do not comment on costs."

type concern struct {
	Type        string
	Description string
	Suggestion  string
}

type medicalVerdict struct {
	Assessment string
	Concerns   []concern
}

// ReviewMedical assesses whether the note documents medical necessity for the
// proposed treatment. procedure may be nil.
func (p *Panel) ReviewMedical(ctx context.Context, rec model.IntakeRecord, procedure *model.ProcedureRecord) model.MedicalReview {
	prompt := medicalPrompt(rec.Note, procedure)
	out := call(ctx, p, model.AgentMedical, func(ctx context.Context) (medicalVerdict, error) {
		obj, err := p.completeJSON(ctx, medicalInstruction, prompt)
		if err != nil {
			return medicalVerdict{}, err
		}
		return parseMedical(obj), nil
	})
	if out.Err != nil {
		p.log.Warn().Err(out.Err).Str("agent", string(model.AgentMedical)).Msg("medical review degraded")
		return degradedMedical(out.Err)
	}
	return medicalReview(out.Value)
}

func parseMedical(obj gjson.Result) medicalVerdict {
	v := medicalVerdict{
		Assessment: strings.ToLower(str(obj, "assessment", AssessmentAcceptable)),
	}
	for _, c := range obj.Get("concerns").Array() {
		v.Concerns = append(v.Concerns, concern{
			Type:        str(c, "type", "insufficient_justification"),
			Description: str(c, "description", "No description provided"),
			Suggestion:  str(c, "suggestion", "Review documentation"),
		})
	}
	return v
}

func medicalReview(v medicalVerdict) model.MedicalReview {
	base, ok := assessmentPenalty[v.Assessment]
	if !ok {
		base = unknownAssessmentPenalty
	}
	n := len(v.Concerns)

	findings := make([]model.Finding, 0, n)
	for _, c := range v.Concerns {
		findings = append(findings, concernFinding(c))
	}

	var status model.Status
	switch {
	case v.Assessment == AssessmentConcerning:
		status = model.StatusFail
	case v.Assessment == AssessmentStrong && n <= 2:
		status = model.StatusPass
	default:
		status = model.StatusWarning
	}
	feedback := v.Assessment == AssessmentWeak || v.Assessment == AssessmentConcerning || n > 2

	return model.MedicalReview{
		AgentResult: model.AgentResult{
			Agent:       model.AgentMedical,
			Status:      status,
			Findings:    findings,
			ScoreImpact: base - ConcernPenalty*n,
			Summary:     medicalSummary(status, n, feedback),
		},
		Assessment:             v.Assessment,
		DoctorFeedbackRequired: feedback,
	}
}

func degradedMedical(err error) model.MedicalReview {
	c := concern{
		Type:        "insufficient_justification",
		Description: "Unable to perform LLM review: " + err.Error(),
		Suggestion:  "Manual review recommended",
	}
	return model.MedicalReview{
		AgentResult: model.AgentResult{
			Agent:       model.AgentMedical,
			Status:      model.StatusWarning,
			Findings:    []model.Finding{concernFinding(c)},
			ScoreImpact: -ConcernPenalty,
			Summary:     medicalSummary(model.StatusWarning, 1, true),
		},
		Assessment:             AssessmentUnavailable,
		DoctorFeedbackRequired: true,
	}
}

func concernFinding(c concern) model.Finding {
	return model.Finding{
		Source:      model.AgentMedical,
		Kind:        model.KindMedicalConcern,
		Category:    c.Type,
		Severity:    model.SeverityWarning,
		Explanation: c.Description,
		Suggestion:  c.Suggestion,
		ScoreImpact: -ConcernPenalty,
	}
}

func medicalSummary(status model.Status, concerns int, feedback bool) string {
	if status == model.StatusPass {
		return "Medical necessity well-documented"
	}
	detail := "no specific concerns"
	if concerns > 0 {
		detail = fmt.Sprintf("%d concern(s)", concerns)
	}
	if feedback {
		return "Medical review: " + detail + ". Doctor feedback required."
	}
	return "Medical review: " + detail + "."
}

// medicalPrompt renders the note without personal identifiers.
func medicalPrompt(n model.MedicalNote, procedure *model.ProcedureRecord) string {
	var b strings.Builder
	b.WriteString("COMPLETE MEDICAL NOTE (personal details removed):\n\n")

	d := deref(n.Diagnosis)
	fmt.Fprintf(&b, "=== DIAGNOSIS ===\nPrimary Diagnosis: %s\nICD-10 Code: %s\nSecondary Diagnoses: %s\n\n",
		orDefault(d.PrimaryDiagnosis, "Not specified"), orDefault(d.ICD10Code, "Not specified"),
		orDefault(strings.Join(d.SecondaryDiagnoses, ", "), "None"))

	pi := deref(n.PatientInfo)
	fmt.Fprintf(&b, "=== PATIENT DEMOGRAPHICS ===\nAge: %d years\nGender: %s\n\n", pi.Age, orDefault(pi.Gender, "Not specified"))

	ch := deref(n.ClinicalHistory)
	fmt.Fprintf(&b, "=== CLINICAL HISTORY ===\nChief Complaints: %s\nDuration of Symptoms: %s\nRelevant Medical History: %s\nComorbidities: %s\n\n",
		orDefault(ch.ChiefComplaints, "Not specified"), orDefault(ch.DurationOfSymptoms, "Not specified"),
		orDefault(ch.RelevantMedicalHistory, "Not specified"), orDefault(strings.Join(ch.Comorbidities, ", "), "None"))

	b.WriteString("=== DIAGNOSTIC TESTS/INVESTIGATIONS ===\n")
	if len(n.DiagnosticTests) == 0 {
		b.WriteString("No diagnostic tests documented\n")
	}
	for i, t := range n.DiagnosticTests {
		fmt.Fprintf(&b, "%d. %s", i+1, t.TestName)
		if t.DatePerformed != "" {
			fmt.Fprintf(&b, " (Date: %s)", t.DatePerformed)
		}
		if t.KeyFindings != "" {
			fmt.Fprintf(&b, "\n   Findings: %s", t.KeyFindings)
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	pt := deref(n.ProposedTreatment)
	fmt.Fprintf(&b, "=== PROPOSED TREATMENT ===\nProcedure: %s\nProcedure Code: %s\nAnesthesia Type: %s\nSurgical Approach: %s\n\n",
		orDefault(pt.ProcedureName, "Not specified"), orDefault(pt.ProcedureCode, "Not specified"),
		orDefault(pt.AnesthesiaType, "Not specified"), orDefault(pt.SurgicalApproach, "Not specified"))

	mj := deref(n.MedicalJustification)
	fmt.Fprintf(&b, "=== MEDICAL JUSTIFICATION ===\nWhy Hospitalization Required: %s\nWhy Treatment Necessary: %s\nHow Treatment Addresses Diagnosis: %s\nExpected Outcomes: %s\n\n",
		orDefault(mj.WhyHospitalizationRequired, "Not specified"), orDefault(mj.WhyTreatmentNecessary, "Not specified"),
		orDefault(mj.HowTreatmentAddressesDiagnosis, "Not specified"), orDefault(mj.ExpectedOutcomes, "Not specified"))

	hd := deref(n.HospitalizationDetails)
	icu := "No"
	if hd.ICURequired {
		icu = "Yes"
	}
	fmt.Fprintf(&b, "=== HOSPITALIZATION DETAILS ===\nHospitalization Type: %s\nPlanned Admission Date: %s\nExpected Length of Stay: %d days\nICU Required: %s\nICU Duration: %d days\n\n",
		orDefault(hd.HospitalizationType, "Not specified"), orDefault(hd.PlannedAdmissionDate, "Not specified"),
		hd.ExpectedLengthOfStay, icu, hd.ICUDuration)

	dd := deref(n.DoctorDetails)
	fmt.Fprintf(&b, "=== DOCTOR DETAILS ===\nQualification: %s\nSpecialty: %s\nRegistration Number: %s\n\n",
		orDefault(dd.Qualification, "Not specified"), orDefault(dd.Specialty, "Not specified"),
		orDefault(dd.RegistrationNumber, "Not specified"))

	b.WriteString("CONTEXT FROM PROCEDURE GUIDELINES:\n")
	b.WriteString(procedureGuidelines(procedure))

	b.WriteString(`
ASSESSMENT CRITERIA:
1. Treatment-Diagnosis Alignment: does the treatment follow from the diagnosis?
2. Hospitalization Necessity: a 1-day admission is normal for day surgery. Flag only longer stays or an overnight stay without a medical reason.
3. Documentation Completeness: is the justification specific to this patient rather than template language?
4. Functional Impact: are the affected daily activities named?

This is a documentation review at the pre-authorization stage. Focus on major gaps, not minor imperfections.
Do not comment on costs, implant pricing or hospital details.

Return ONLY a valid JSON object with this structure:
{
  "assessment": "strong" | "acceptable" | "weak" | "concerning",
  "concerns": [
    {
      "type": "treatment_mismatch" | "insufficient_justification" | "missing_evidence" | "template_language",
      "description": "specific issue",
      "suggestion": "what to add or clarify"
    }
  ]
}`)
	return b.String()
}

func procedureGuidelines(p *model.ProcedureRecord) string {
	if p == nil {
		return "No specific guidelines available.\n"
	}
	var b strings.Builder
	if p.OvernightGuidance != "" {
		fmt.Fprintf(&b, "=== OVERNIGHT HOSPITALIZATION GUIDELINES ===\n%s\n\n", p.OvernightGuidance)
	}
	if p.NecessityCriteria != "" {
		fmt.Fprintf(&b, "=== MEDICAL NECESSITY CRITERIA ===\n%s\n\n", p.NecessityCriteria)
	}
	if p.TypicalStayMax > 0 || p.TypicalStayMin > 0 {
		fmt.Fprintf(&b, "=== TYPICAL STAY ===\n%d-%d days\n\n", p.TypicalStayMin, p.TypicalStayMax)
	}
	if len(p.ICD10Codes) > 0 {
		fmt.Fprintf(&b, "=== EXPECTED ICD-10 CODES ===\n%s\n\n", strings.Join(p.ICD10Codes, ", "))
	}
	if b.Len() == 0 {
		return "No specific guidelines available.\n"
	}
	return b.String()
}

// diagnosisMatches reports whether the note's ICD-10 code falls under one of
// the procedure's codes. ok is false when either side is missing.
func diagnosisMatches(n model.MedicalNote, p *model.ProcedureRecord) (match, ok bool) {
	if n.Diagnosis == nil || p == nil || len(p.ICD10Codes) == 0 {
		return false, false
	}
	code := normalize.NormalizeCode(n.Diagnosis.ICD10Code)
	if code == "" {
		return false, false
	}
	return normalize.CodeMatches(code, p.ICD10Codes), true
}
