package gemini

func buildStructuringPrompt(text string) string {
	const maxSnippet = 12000
	snippet := text
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet]
	}

	return `You are a medical data extraction assistant for mammogram screening reports.
Return a strict JSON object with exactly these keys, all string values:
indication, family_history_breast_pathology, clinical_exam_result,
skin_abnormalities, nipple_abnormalities, gland_density,
calcifications_present, architectural_distortion, retracted_areas,
suspicious_lymph_nodes, evaluation_possible, findings_summary,
acr_density_type, birads_score, followup_recommended, recommendation_text,
lmp, hormonal_therapy, age, children.
Use "unknown" for any information not present in the report.
birads_score must be a single digit 0-6 when stated.
No markdown, no extra keys, no commentary.

Report:
` + snippet
}
