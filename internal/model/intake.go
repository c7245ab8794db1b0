package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// IntakeRecord is the per-request input: the pre-auth form plus the doctor's note.
type IntakeRecord struct {
	Form FormFields  `json:"form"`
	Note MedicalNote `json:"medical_note"`
}

// FormFields holds the raw form as submitted. Values keep their decoded JSON types.
type FormFields map[string]any

// Has reports whether key is present, regardless of value.
func (f FormFields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Filled reports whether key is present with a truthy value.
func (f FormFields) Filled(key string) bool {
	v, ok := f[key]
	return ok && Truthy(v)
}

// String returns the value at key rendered as a string, or "".
func (f FormFields) String(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Float returns the numeric value at key. Numeric strings are accepted.
func (f FormFields) Float(key string) (float64, error) {
	switch v := f[key].(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if s == "" {
			return 0, nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("field %s: %q is not a number", key, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("field %s: unsupported type %T", key, v)
	}
}

// Truthy reports whether a decoded JSON value counts as filled in.
// nil, false, zero, empty strings and empty collections are not.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case json.Number:
		n, err := t.Float64()
		return err != nil || n != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// Section is a medical note section that can report whether it carries content.
type Section interface {
	HasContent() bool
}

// MedicalNote is the doctor's structured note. Nil sections are absent.
type MedicalNote struct {
	PatientInfo            *PatientInfo            `json:"patient_info,omitempty"`
	Diagnosis              *Diagnosis              `json:"diagnosis,omitempty"`
	ClinicalHistory        *ClinicalHistory        `json:"clinical_history,omitempty"`
	DiagnosticTests        []DiagnosticTest        `json:"diagnostic_tests,omitempty"`
	ProposedTreatment      *ProposedTreatment      `json:"proposed_treatment,omitempty"`
	MedicalJustification   *MedicalJustification   `json:"medical_justification,omitempty"`
	HospitalizationDetails *HospitalizationDetails `json:"hospitalization_details,omitempty"`
	CostBreakdown          *CostBreakdown          `json:"cost_breakdown,omitempty"`
	DoctorDetails          *DoctorDetails          `json:"doctor_details,omitempty"`
	HospitalDetails        *HospitalDetails        `json:"hospital_details,omitempty"`
}

// Section returns the named section, or nil when it is absent or unknown.
func (n MedicalNote) Section(name string) Section {
	switch name {
	case "patient_info":
		if n.PatientInfo != nil {
			return n.PatientInfo
		}
	case "diagnosis":
		if n.Diagnosis != nil {
			return n.Diagnosis
		}
	case "clinical_history":
		if n.ClinicalHistory != nil {
			return n.ClinicalHistory
		}
	case "proposed_treatment":
		if n.ProposedTreatment != nil {
			return n.ProposedTreatment
		}
	case "medical_justification":
		if n.MedicalJustification != nil {
			return n.MedicalJustification
		}
	case "hospitalization_details":
		if n.HospitalizationDetails != nil {
			return n.HospitalizationDetails
		}
	case "cost_breakdown":
		if n.CostBreakdown != nil {
			return n.CostBreakdown
		}
	case "doctor_details":
		if n.DoctorDetails != nil {
			return n.DoctorDetails
		}
	case "hospital_details":
		if n.HospitalDetails != nil {
			return n.HospitalDetails
		}
	}
	return nil
}

// StayDays returns the expected length of stay, or 0 when unknown.
func (n MedicalNote) StayDays() int {
	if n.HospitalizationDetails == nil {
		return 0
	}
	return n.HospitalizationDetails.ExpectedLengthOfStay
}

// TotalCost returns the declared total estimate, or 0 when there is no breakdown.
func (n MedicalNote) TotalCost() float64 {
	if n.CostBreakdown == nil {
		return 0
	}
	return n.CostBreakdown.TotalEstimatedCost
}

type PatientInfo struct {
	Name          string `json:"name"`
	Age           int    `json:"age"`
	Gender        string `json:"gender,omitempty"`
	PatientID     string `json:"patient_id,omitempty"`
	ContactNumber string `json:"contact_number,omitempty"`
}

func (p *PatientInfo) HasContent() bool {
	return anyText(p.Name, p.Gender, p.PatientID, p.ContactNumber) || p.Age != 0
}

type Diagnosis struct {
	PrimaryDiagnosis   string   `json:"primary_diagnosis"`
	ICD10Code          string   `json:"icd_10_code"`
	DiagnosisDate      string   `json:"diagnosis_date,omitempty"`
	SecondaryDiagnoses []string `json:"secondary_diagnoses,omitempty"`
}

func (d *Diagnosis) HasContent() bool {
	return anyText(d.PrimaryDiagnosis, d.ICD10Code, d.DiagnosisDate) || len(d.SecondaryDiagnoses) > 0
}

type ClinicalHistory struct {
	ChiefComplaints        string   `json:"chief_complaints"`
	DurationOfSymptoms     string   `json:"duration_of_symptoms,omitempty"`
	RelevantMedicalHistory string   `json:"relevant_medical_history,omitempty"`
	Comorbidities          []string `json:"comorbidities,omitempty"`
}

func (c *ClinicalHistory) HasContent() bool {
	return anyText(c.ChiefComplaints, c.DurationOfSymptoms, c.RelevantMedicalHistory) || len(c.Comorbidities) > 0
}

type DiagnosticTest struct {
	TestName      string `json:"test_name"`
	DatePerformed string `json:"date_performed,omitempty"`
	KeyFindings   string `json:"key_findings,omitempty"`
}

type ProposedTreatment struct {
	ProcedureName    string `json:"procedure_name"`
	ProcedureCode    string `json:"procedure_code,omitempty"`
	SurgicalApproach string `json:"surgical_approach,omitempty"`
	AnesthesiaType   string `json:"anesthesia_type,omitempty"`
}

func (p *ProposedTreatment) HasContent() bool {
	return anyText(p.ProcedureName, p.ProcedureCode, p.SurgicalApproach, p.AnesthesiaType)
}

type MedicalJustification struct {
	WhyHospitalizationRequired     string `json:"why_hospitalization_required"`
	WhyTreatmentNecessary          string `json:"why_treatment_necessary"`
	HowTreatmentAddressesDiagnosis string `json:"how_treatment_addresses_diagnosis,omitempty"`
	ExpectedOutcomes               string `json:"expected_outcomes,omitempty"`
}

func (m *MedicalJustification) HasContent() bool {
	return anyText(m.WhyHospitalizationRequired, m.WhyTreatmentNecessary, m.HowTreatmentAddressesDiagnosis, m.ExpectedOutcomes)
}

// Text joins the justification fields for keyword scans.
func (m *MedicalJustification) Text() string {
	if m == nil {
		return ""
	}
	return strings.Join([]string{m.WhyHospitalizationRequired, m.WhyTreatmentNecessary,
		m.HowTreatmentAddressesDiagnosis, m.ExpectedOutcomes}, " ")
}

type HospitalizationDetails struct {
	PlannedAdmissionDate string `json:"planned_admission_date"`
	ExpectedLengthOfStay int    `json:"expected_length_of_stay"`
	ICURequired          bool   `json:"icu_required,omitempty"`
	ICUDuration          int    `json:"icu_duration,omitempty"`
	HospitalizationType  string `json:"hospitalization_type,omitempty"`
}

func (h *HospitalizationDetails) HasContent() bool {
	return anyText(h.PlannedAdmissionDate, h.HospitalizationType) ||
		h.ExpectedLengthOfStay != 0 || h.ICURequired || h.ICUDuration != 0
}

// CostBreakdown is the itemized pre-auth estimate.
type CostBreakdown struct {
	RoomCharges          float64 `json:"room_charges"`
	SurgeonFees          float64 `json:"surgeon_fees"`
	AnesthetistFees      float64 `json:"anesthetist_fees"`
	OTCharges            float64 `json:"ot_charges"`
	ICUCharges           float64 `json:"icu_charges,omitempty"`
	Investigations       float64 `json:"investigations"`
	MedicinesConsumables float64 `json:"medicines_consumables"`
	Implants             float64 `json:"implants,omitempty"`
	OtherCharges         float64 `json:"other_charges,omitempty"`
	TotalEstimatedCost   float64 `json:"total_estimated_cost"`
}

func (c *CostBreakdown) HasContent() bool {
	if c.TotalEstimatedCost != 0 {
		return true
	}
	for _, v := range c.Components() {
		if v != 0 {
			return true
		}
	}
	return false
}

// CoreComponents returns the six components every estimate is expected to price.
func (c CostBreakdown) CoreComponents() []float64 {
	return []float64{c.RoomCharges, c.SurgeonFees, c.AnesthetistFees, c.OTCharges,
		c.Investigations, c.MedicinesConsumables}
}

// Components returns all nine priced components.
func (c CostBreakdown) Components() []float64 {
	return append(c.CoreComponents(), c.ICUCharges, c.Implants, c.OtherCharges)
}

// ComponentSum adds up every component.
func (c CostBreakdown) ComponentSum() float64 {
	var sum float64
	for _, v := range c.Components() {
		sum += v
	}
	return sum
}

// Items keys the components by bill category.
func (c CostBreakdown) Items() map[string]float64 {
	return map[string]float64{
		"room_charges":          c.RoomCharges,
		"surgeon_fees":          c.SurgeonFees,
		"anesthetist_fees":      c.AnesthetistFees,
		"ot_charges":            c.OTCharges,
		"icu_charges":           c.ICUCharges,
		"investigations":        c.Investigations,
		"medicines_consumables": c.MedicinesConsumables,
		"implants":              c.Implants,
		"other_charges":         c.OtherCharges,
	}
}

// Expected converts the estimate into the shape compared against a final bill.
func (c CostBreakdown) Expected(stayDays int) ExpectedCosts {
	return ExpectedCosts{Items: c.Items(), Total: c.TotalEstimatedCost, StayDays: stayDays}
}

type DoctorDetails struct {
	Name               string `json:"name"`
	Qualification      string `json:"qualification,omitempty"`
	Specialty          string `json:"specialty,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	Email              string `json:"email,omitempty"`
	Phone              string `json:"phone,omitempty"`
}

func (d *DoctorDetails) HasContent() bool {
	return anyText(d.Name, d.Qualification, d.Specialty, d.RegistrationNumber, d.Email, d.Phone)
}

type HospitalDetails struct {
	Name               string `json:"name"`
	Address            string `json:"address,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	ContactNumber      string `json:"contact_number,omitempty"`
}

func (h *HospitalDetails) HasContent() bool {
	return anyText(h.Name, h.Address, h.RegistrationNumber, h.ContactNumber)
}

func anyText(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
