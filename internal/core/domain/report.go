package domain

// StructuredReport is the typed extraction of a mammogram report. Every
// field is free text; absent information stays "unknown" so downstream
// classification always sees a complete record.
type StructuredReport struct {
	Indication                   string `json:"indication"`
	FamilyHistoryBreastPathology string `json:"family_history_breast_pathology"`
	ClinicalExamResult           string `json:"clinical_exam_result"`
	SkinAbnormalities            string `json:"skin_abnormalities"`
	NippleAbnormalities          string `json:"nipple_abnormalities"`
	GlandDensity                 string `json:"gland_density"`
	CalcificationsPresent        string `json:"calcifications_present"`
	ArchitecturalDistortion      string `json:"architectural_distortion"`
	RetractedAreas               string `json:"retracted_areas"`
	SuspiciousLymphNodes         string `json:"suspicious_lymph_nodes"`
	EvaluationPossible           string `json:"evaluation_possible"`
	FindingsSummary              string `json:"findings_summary"`
	ACRDensityType               string `json:"acr_density_type"`
	BiradsScore                  string `json:"birads_score"`
	FollowupRecommended          string `json:"followup_recommended"`
	RecommendationText           string `json:"recommendation_text"`
	LMP                          string `json:"lmp"`
	HormonalTherapy              string `json:"hormonal_therapy"`
	Age                          string `json:"age"`
	Children                     string `json:"children"`
}

const unknownValue = "unknown"

func NewStructuredReport() StructuredReport {
	var r StructuredReport
	r.Normalize()
	return r
}

// Normalize fills every empty field with "unknown".
func (r *StructuredReport) Normalize() {
	for _, f := range []*string{
		&r.Indication, &r.FamilyHistoryBreastPathology, &r.ClinicalExamResult,
		&r.SkinAbnormalities, &r.NippleAbnormalities, &r.GlandDensity,
		&r.CalcificationsPresent, &r.ArchitecturalDistortion, &r.RetractedAreas,
		&r.SuspiciousLymphNodes, &r.EvaluationPossible, &r.FindingsSummary,
		&r.ACRDensityType, &r.BiradsScore, &r.FollowupRecommended,
		&r.RecommendationText, &r.LMP, &r.HormonalTherapy, &r.Age, &r.Children,
	} {
		if *f == "" {
			*f = unknownValue
		}
	}
}

// ModelInput renders the report as the flat clinical summary the risk
// classifier was fine-tuned on.
func (r StructuredReport) ModelInput() string {
	return "indication: " + r.Indication +
		"; family history of breast pathology: " + r.FamilyHistoryBreastPathology +
		"; clinical exam: " + r.ClinicalExamResult +
		"; skin abnormalities: " + r.SkinAbnormalities +
		"; nipple abnormalities: " + r.NippleAbnormalities +
		"; gland density: " + r.GlandDensity +
		"; calcifications: " + r.CalcificationsPresent +
		"; architectural distortion: " + r.ArchitecturalDistortion +
		"; retracted areas: " + r.RetractedAreas +
		"; suspicious lymph nodes: " + r.SuspiciousLymphNodes +
		"; evaluation possible: " + r.EvaluationPossible +
		"; findings: " + r.FindingsSummary +
		"; ACR density type: " + r.ACRDensityType +
		"; BI-RADS: " + r.BiradsScore +
		"; follow-up recommended: " + r.FollowupRecommended +
		"; recommendation: " + r.RecommendationText
}
