// Package reconcile compares a final hospital bill against the pre-auth estimate.
package reconcile

import (
	"fmt"
	"math"
	"strings"

	"github.com/gyeh/claimready/internal/model"
	"github.com/gyeh/claimready/internal/normalize"
)

// Variance thresholds in percent. A value on the threshold takes the milder grade.
const (
	AcceptablePercent = 10.0
	MinorPercent      = 25.0
)

// NewItemPercent is reported when a category was not in the estimate at all.
const NewItemPercent = 999.9

const (
	significantItemPenalty = 2
	maxPenalizedItems      = 3
	scoreFloor             = -20
)

var basePenalty = map[model.VarianceStatus]int{
	model.VarianceAcceptable:  0,
	model.VarianceMinor:       -5,
	model.VarianceSignificant: -15,
}

// Reconcile compares bill against expected. actualStayDays comes from the bill
// or the discharge summary; zero means unknown and is compared as-is.
func Reconcile(expected model.ExpectedCosts, bill model.FinalBill, actualStayDays int) model.Reconciliation {
	total := totalVariance(expected.Total, bill.TotalBillAmount)
	items := compareLineItems(expected.Items, bill.ItemizedCosts)
	stay := stayVariance(expected.StayDays, actualStayDays)
	status := Classify(total.Percentage)

	return model.Reconciliation{
		Status:      status,
		Total:       total,
		LineItems:   items,
		Stay:        stay,
		ScoreImpact: score(status, items),
		Summary:     summarize(total, stay, status, items),
	}
}

func totalVariance(expected, actual float64) model.TotalVariance {
	diff := actual - expected
	var pct float64
	if expected > 0 {
		pct = normalize.Round2(diff / expected * 100)
	}
	return model.TotalVariance{Expected: expected, Actual: actual, Difference: diff, Percentage: pct}
}

// Classify grades an overall variance percentage. The sign is ignored.
func Classify(percent float64) model.VarianceStatus {
	switch p := math.Abs(percent); {
	case p <= AcceptablePercent:
		return model.VarianceAcceptable
	case p <= MinorPercent:
		return model.VarianceMinor
	default:
		return model.VarianceSignificant
	}
}

func itemSeverity(percent float64) model.Severity {
	switch {
	case percent <= AcceptablePercent:
		return model.SeverityAcceptable
	case percent <= MinorPercent:
		return model.SeverityMinor
	default:
		return model.SeveritySignificant
	}
}

// amount reads a category from one side, falling back to its synonym when the
// primary key is absent or zero.
func amount(side map[string]float64, c model.LineItemCategory) float64 {
	if v := side[c.Key]; v != 0 || c.Synonym == "" {
		return v
	}
	return side[c.Synonym]
}

func compareLineItems(expected, actual map[string]float64) []model.LineItemVariance {
	var out []model.LineItemVariance
	for _, c := range model.LineItemCategories {
		exp := amount(expected, c)
		act := amount(actual, c)
		if exp == 0 && act == 0 {
			continue
		}

		diff := act - exp
		pct := NewItemPercent
		if exp > 0 {
			pct = math.Abs(diff) / exp * 100
		}
		out = append(out, model.LineItemVariance{
			Item:        c.Key,
			DisplayName: model.DisplayName(c.Key),
			Expected:    exp,
			Actual:      act,
			Difference:  diff,
			Percentage:  normalize.Round2(pct),
			Severity:    itemSeverity(pct),
		})
	}
	return out
}

func stayVariance(expected, actual int) model.StayVariance {
	extra := actual - expected
	return model.StayVariance{
		ExpectedDays: expected,
		ActualDays:   actual,
		ExtraDays:    extra,
		IsExtended:   extra > 0,
	}
}

func score(status model.VarianceStatus, items []model.LineItemVariance) int {
	impact := basePenalty[status]
	significant := 0
	for _, it := range items {
		if it.Severity == model.SeveritySignificant {
			significant++
		}
	}
	impact -= significantItemPenalty * min(significant, maxPenalizedItems)
	return max(impact, scoreFloor)
}

func summarize(total model.TotalVariance, stay model.StayVariance, status model.VarianceStatus, items []model.LineItemVariance) string {
	var b strings.Builder
	switch status {
	case model.VarianceAcceptable:
		fmt.Fprintf(&b, "Final bill (%s) is within acceptable range of pre-auth estimate (%s). ",
			normalize.Rupees(total.Actual), normalize.Rupees(total.Expected))
	default:
		grade := "minor"
		if status == model.VarianceSignificant {
			grade = "significant"
		}
		fmt.Fprintf(&b, "Final bill (%s) has %s variance of %s (%.1f%%) from pre-auth estimate (%s). ",
			normalize.Rupees(total.Actual), grade, normalize.Rupees(math.Abs(total.Difference)),
			math.Abs(total.Percentage), normalize.Rupees(total.Expected))
	}

	if stay.IsExtended {
		fmt.Fprintf(&b, "Hospital stay extended by %d day(s) from planned %d day(s). ", stay.ExtraDays, stay.ExpectedDays)
	}

	changed := 0
	for _, it := range items {
		if it.Difference != 0 {
			changed++
		}
	}
	if changed > 0 {
		fmt.Fprintf(&b, "%d line item(s) show cost variance. ", changed)
	}

	b.WriteString("Check discharge summary for medical reasons explaining variances.")
	return b.String()
}

// Findings converts line-item variances into findings for flattened reporting.
func Findings(r model.Reconciliation) []model.Finding {
	var out []model.Finding
	for _, it := range r.LineItems {
		if it.Severity == model.SeverityAcceptable {
			continue
		}
		out = append(out, model.Finding{
			Source:   model.AgentBill,
			Kind:     model.KindLineItemVariance,
			Category: it.Item,
			Severity: it.Severity,
			Explanation: fmt.Sprintf("%s: billed %s against %s estimated (%.1f%%)",
				it.DisplayName, normalize.Rupees(it.Actual), normalize.Rupees(it.Expected), it.Percentage),
			Evidence: fmt.Sprintf("difference %s", normalize.Rupees(it.Difference)),
		})
	}
	return out
}
