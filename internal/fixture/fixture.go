// Package fixture builds a consistent cataract-surgery claim used across tests
// and by the sample command. Every call returns fresh values.
package fixture

import "github.com/gyeh/claimready/internal/model"

// Intake returns a complete pre-auth submission that passes every rule check
// against Policy and Procedure.
func Intake() model.IntakeRecord {
	return model.IntakeRecord{
		Form: model.FormFields{
			"policy_number":          "SH-2022-778812",
			"policy_start_date":      "15/01/2022",
			"sum_insured":            500000.0,
			"previous_claims_total":  0.0,
			"planned_admission_date": "2024-03-20",
			"hospital_name":          "City Eye Hospital",
			"insurer":                "Star Health",
			"policy_type":            "Comprehensive",
			"procedure_id":           "cataract_surgery",
		},
		Note: model.MedicalNote{
			PatientInfo: &model.PatientInfo{Name: "Asha Rao", Age: 64, Gender: "F"},
			Diagnosis: &model.Diagnosis{
				PrimaryDiagnosis: "Senile nuclear cataract, right eye",
				ICD10Code:        "H25.1",
			},
			ClinicalHistory: &model.ClinicalHistory{
				ChiefComplaints:    "Progressive blurring of vision in right eye",
				DurationOfSymptoms: "8 months",
			},
			DiagnosticTests: []model.DiagnosticTest{
				{TestName: "Slit lamp examination", KeyFindings: "Grade 3 nuclear sclerosis"},
				{TestName: "Visual acuity", KeyFindings: "6/36 right eye"},
			},
			ProposedTreatment: &model.ProposedTreatment{
				ProcedureName:  "Phacoemulsification with IOL implantation",
				AnesthesiaType: "Local",
			},
			MedicalJustification: &model.MedicalJustification{
				WhyHospitalizationRequired: "Day-care surgery requiring sterile OT and post-op observation",
				WhyTreatmentNecessary:      "Visual acuity impairs daily activities; no medical alternative",
			},
			HospitalizationDetails: &model.HospitalizationDetails{
				PlannedAdmissionDate: "2024-03-20",
				ExpectedLengthOfStay: 1,
				HospitalizationType:  "Planned",
			},
			CostBreakdown: &model.CostBreakdown{
				RoomCharges:          3500,
				SurgeonFees:          25000,
				AnesthetistFees:      5000,
				OTCharges:            8000,
				Investigations:       3000,
				MedicinesConsumables: 7500,
				TotalEstimatedCost:   52000,
			},
			DoctorDetails:   &model.DoctorDetails{Name: "Dr. Meera Iyer", Specialty: "Ophthalmology"},
			HospitalDetails: &model.HospitalDetails{Name: "City Eye Hospital", Address: "Bengaluru"},
		},
	}
}

// Policy returns the product the Intake is written against.
func Policy() model.PolicyRecord {
	return model.PolicyRecord{
		ID:                 "star_comprehensive",
		Insurer:            "Star Health",
		Name:               "Comprehensive",
		InitialWaitingDays: 30,
		WaitingMonths:      map[string]int{"cataract": 24, "hernia": 24},
		InvalidWaiting:     map[string]string{},
		Exclusions:         []string{"cosmetic_surgery"},
		Tiers: map[int64]model.CoverageTier{
			500000:  {RoomRentCap: model.RoomRentCap{PerDay: 5000, Set: true, Raw: "5000", Valid: true}},
			1000000: {},
		},
	}
}

// Procedure returns the reference record for the Intake's procedure.
func Procedure() model.ProcedureRecord {
	return model.ProcedureRecord{
		ID:                "cataract_surgery",
		DisplayName:       "Cataract Surgery",
		Synonyms:          []string{"Phacoemulsification"},
		ICD10Codes:        []string{"H25", "H26"},
		WaitingPeriodKey:  "cataract",
		AlternativeKeys:   []string{"eye_surgery"},
		TypicalCostMin:    25000,
		TypicalCostMax:    60000,
		TypicalStayMin:    0,
		TypicalStayMax:    1,
		NecessityCriteria: "Visual impairment affecting daily living; documented lens opacity",
		FWAPatterns:       "Unbundled IOL charges; premium lens billed without documentation",
		OvernightGuidance: "Day-care; overnight stay needs documented reason",
	}
}

// FinalBill returns a discharge bill for the Intake: 79,500 over 2 days.
func FinalBill() model.FinalBill {
	return model.FinalBill{
		ItemizedCosts: map[string]float64{
			"room_charges":     7000,
			"surgeon_fees":     25000,
			"anesthetist_fees": 5000,
			"ot_charges":       8000,
			"investigations":   4500,
			"medicines":        12000,
			"implants":         18000,
		},
		TotalBillAmount: 79500,
		ActualStayDays:  2,
	}
}

// DischargeSummary returns a summary with all four guidance sections filled.
func DischargeSummary() model.DischargeSummary {
	return model.DischargeSummary{
		DischargeDate:      "2024-03-22",
		DaysStayed:         2,
		DischargeCondition: "Stable",
		ProcedurePerformed: "Phacoemulsification with toric IOL",
		ClinicalNotes:      "Toric IOL used for astigmatism; kept overnight for IOP spike",
		Medications: []model.Medication{
			{Name: "Moxifloxacin eye drops", Dosage: "1 drop 4 times a day", Duration: "2 weeks", Purpose: "Prevent infection"},
			{Name: "Prednisolone eye drops", Dosage: "1 drop 6 times a day", Duration: "4 weeks"},
		},
		FollowUpSchedule: []model.Appointment{
			{Timing: "Day 1", Purpose: "Post-op check"},
			{Timing: "Week 1", Purpose: "Review"},
		},
		ActivityRestrictions: model.ActivityRestrictions{
			Dos:   []string{"Wear protective shield at night"},
			Donts: []string{"Do not rub the eye"},
		},
		WarningSigns: []string{"Sudden vision loss", "Severe eye pain"},
	}
}
