// Package analysis is the lab classification engine: a pure mapping from
// (parameter, status) to recommendation text and from parameter to its
// reference range. It performs no I/O and holds no state, so identical inputs
// always produce identical outputs.
package analysis

import (
	"fmt"

	"github.com/medisage/medisage-client/internal/core/domain"
)

// DefaultRecommendation is returned for any parameter or status outside the
// reference policy.
const DefaultRecommendation = "No specific recommendation available. Consult your healthcare provider."

// Summary flags for a report as a whole.
const (
	FlagAttentionRequired = "Attention Required"
	FlagAllNormal         = "All Values Normal"
)

var recommendations = map[string]map[domain.ResultStatus]string{
	"WBC": {
		domain.StatusHigh:   "High WBC count may indicate infection or inflammation. Consult your doctor.",
		domain.StatusLow:    "Low WBC count may indicate weakened immunity. Avoid crowded places and maintain hygiene.",
		domain.StatusNormal: "Your WBC count is normal. Continue maintaining good health practices.",
	},
	"RBC": {
		domain.StatusHigh:   "High RBC count may indicate dehydration or lung disease. Stay hydrated.",
		domain.StatusLow:    "Low RBC count may indicate anemia. Include iron-rich foods in your diet.",
		domain.StatusNormal: "Your RBC count is normal. Keep up the good work!",
	},
	"HbA1c": {
		domain.StatusHigh:   "High HbA1c indicates poor blood sugar control. Follow diabetic diet and exercise.",
		domain.StatusLow:    "Your HbA1c is in excellent range. Continue your current lifestyle.",
		domain.StatusNormal: "Your HbA1c is normal. Maintain current diet and exercise habits.",
	},
	"SGPT": {
		domain.StatusHigh:   "High SGPT may indicate liver stress. Avoid alcohol and fatty foods.",
		domain.StatusLow:    "Low SGPT is generally not concerning.",
		domain.StatusNormal: "Your liver function appears normal.",
	},
}

// referenceRange mirrors the ranges the extraction service classifies against.
type referenceRange struct {
	Low  float64
	High float64
	Unit string
}

var referenceRanges = map[string]referenceRange{
	"WBC":   {Low: 4000, High: 11000, Unit: "/cmm"},
	"RBC":   {Low: 4.2, High: 5.9, Unit: "mill/cmm"},
	"HbA1c": {Low: 4.0, High: 5.6, Unit: "%"},
	"SGPT":  {Low: 7, High: 56, Unit: "U/L"},
}

// Recommendation returns the display text for a classified lab value. Any
// pair outside the reference policy yields DefaultRecommendation.
func Recommendation(parameter string, status domain.ResultStatus) string {
	byStatus, ok := recommendations[parameter]
	if !ok {
		return DefaultRecommendation
	}
	text, ok := byStatus[status]
	if !ok {
		return DefaultRecommendation
	}
	return text
}

// ReferenceRange returns the display string of the normal range for a
// parameter, e.g. "4000-11000 /cmm". The second return value is false when
// the parameter is not part of the reference policy.
func ReferenceRange(parameter string) (string, bool) {
	rr, ok := referenceRanges[parameter]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%g-%g %s", rr.Low, rr.High, rr.Unit), true
}

// SummaryFlag classifies a report for list display: FlagAttentionRequired
// when any value deviates from Normal, FlagAllNormal otherwise (including
// reports where extraction found nothing).
func SummaryFlag(r *domain.Report) string {
	if r.HasAbnormalValues() {
		return FlagAttentionRequired
	}
	return FlagAllNormal
}
