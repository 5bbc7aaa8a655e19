package domain

import "testing"

func TestRiskLevelForBirads(t *testing.T) {
	cases := map[string]RiskLevel{
		"0": RiskNeedsAssessment,
		"1": RiskLow,
		"2": RiskLow,
		"3": RiskMedium,
		"4": RiskHigh,
		"5": RiskHigh,
		"6": RiskHigh,
		"":  RiskNeedsAssessment,
	}
	for birads, want := range cases {
		if got := RiskLevelForBirads(birads); got != want {
			t.Fatalf("RiskLevelForBirads(%q) = %s, want %s", birads, got, want)
		}
	}
}

func TestParseReviewStatus(t *testing.T) {
	for _, valid := range []string{"New", "Under Review", "Follow-up Initiated", "Review Complete"} {
		if _, err := ParseReviewStatus(valid); err != nil {
			t.Fatalf("ParseReviewStatus(%q) error = %v", valid, err)
		}
	}
	if _, err := ParseReviewStatus("done"); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestStructuredReportNormalizeFillsUnknown(t *testing.T) {
	r := StructuredReport{BiradsScore: "4", FindingsSummary: "mass upper quadrant"}
	r.Normalize()
	if r.BiradsScore != "4" {
		t.Fatalf("existing value overwritten: %q", r.BiradsScore)
	}
	if r.Indication != "unknown" || r.Children != "unknown" {
		t.Fatalf("empty fields not normalized: %+v", r)
	}
}
