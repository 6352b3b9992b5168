package analysis

import (
	"testing"

	"github.com/medisage/medisage-client/internal/core/domain"
)

func TestRecommendation_KnownPairs(t *testing.T) {
	cases := []struct {
		param  string
		status domain.ResultStatus
		want   string
	}{
		{"WBC", domain.StatusHigh, "High WBC count may indicate infection or inflammation. Consult your doctor."},
		{"WBC", domain.StatusNormal, "Your WBC count is normal. Continue maintaining good health practices."},
		{"RBC", domain.StatusLow, "Low RBC count may indicate anemia. Include iron-rich foods in your diet."},
		{"HbA1c", domain.StatusHigh, "High HbA1c indicates poor blood sugar control. Follow diabetic diet and exercise."},
		{"SGPT", domain.StatusLow, "Low SGPT is generally not concerning."},
	}
	for _, tc := range cases {
		if got := Recommendation(tc.param, tc.status); got != tc.want {
			t.Errorf("Recommendation(%s, %s) = %q, want %q", tc.param, tc.status, got, tc.want)
		}
	}
}

func TestRecommendation_FallbackTotality(t *testing.T) {
	unknownParams := []string{"", "Hemoglobin", "wbc", "Platelets", "CRP"}
	statuses := []domain.ResultStatus{domain.StatusNormal, domain.StatusHigh, domain.StatusLow, "Unknown", ""}

	for _, p := range unknownParams {
		for _, st := range statuses {
			if got := Recommendation(p, st); got != DefaultRecommendation {
				t.Errorf("Recommendation(%q, %q) = %q, want default", p, st, got)
			}
		}
	}

	// Known parameter with a status outside the policy also falls back.
	if got := Recommendation("WBC", "Borderline"); got != DefaultRecommendation {
		t.Errorf("Recommendation(WBC, Borderline) = %q, want default", got)
	}
}

func TestRecommendation_Pure(t *testing.T) {
	first := Recommendation("RBC", domain.StatusHigh)
	second := Recommendation("RBC", domain.StatusHigh)
	if first != second {
		t.Fatalf("identical inputs produced different outputs: %q vs %q", first, second)
	}
}

func TestReferenceRange(t *testing.T) {
	cases := []struct {
		param string
		want  string
	}{
		{"WBC", "4000-11000 /cmm"},
		{"RBC", "4.2-5.9 mill/cmm"},
		{"HbA1c", "4-5.6 %"},
		{"SGPT", "7-56 U/L"},
	}
	for _, tc := range cases {
		got, ok := ReferenceRange(tc.param)
		if !ok {
			t.Fatalf("ReferenceRange(%s) reported unknown parameter", tc.param)
		}
		if got != tc.want {
			t.Errorf("ReferenceRange(%s) = %q, want %q", tc.param, got, tc.want)
		}
	}

	if _, ok := ReferenceRange("Hemoglobin"); ok {
		t.Error("expected Hemoglobin to be outside the reference policy")
	}
}

func TestSummaryFlag(t *testing.T) {
	normal := &domain.Report{LabResults: map[string]domain.LabResult{
		"WBC": {Value: 7000, Unit: "/cmm", Status: domain.StatusNormal},
		"RBC": {Value: 4.8, Unit: "mill/cmm", Status: domain.StatusNormal},
	}}
	if got := SummaryFlag(normal); got != FlagAllNormal {
		t.Errorf("all-normal report flagged %q", got)
	}

	abnormal := &domain.Report{LabResults: map[string]domain.LabResult{
		"WBC":   {Value: 12000, Unit: "/cmm", Status: domain.StatusHigh},
		"HbA1c": {Value: 5.0, Unit: "%", Status: domain.StatusNormal},
	}}
	if got := SummaryFlag(abnormal); got != FlagAttentionRequired {
		t.Errorf("abnormal report flagged %q", got)
	}
	if !abnormal.HasAbnormalValues() {
		t.Error("HasAbnormalValues should be true with one High result")
	}

	empty := &domain.Report{LabResults: map[string]domain.LabResult{}}
	if empty.HasAbnormalValues() {
		t.Error("HasAbnormalValues should be false for an empty result set")
	}
	if got := SummaryFlag(empty); got != FlagAllNormal {
		t.Errorf("empty report flagged %q", got)
	}
}
