package assessment

// completenessWarnings checks a fixed list of fields that matter more
// than the raw fill ratio suggests and returns a human-readable warning
// for each one that is missing. Hand-maintained on purpose; it is not
// derived from the confidence score.
func completenessWarnings(d *AssessmentData) []string {
	warnings := []string{}

	if d.WithdrawalEpisode.Duration == "" {
		warnings = append(warnings, "ひきこもりの継続期間が記録されていません")
	}
	if d.WithdrawalEpisode.Trigger == "" && d.WithdrawalEpisode.Circumstances == "" {
		warnings = append(warnings, "ひきこもりのきっかけ・経緯が記録されていません")
	}
	if d.SupportNeeds.SubjectWishes == "" && d.SupportNeeds.FamilyWishes == "" {
		warnings = append(warnings, "本人または家族の希望が記録されていません")
	}
	if d.CurrentLifeStatus.SleepSchedule == "" {
		warnings = append(warnings, "睡眠状況が記録されていません")
	}
	if d.ConsultationHistory.Route == "" {
		warnings = append(warnings, "相談経路が記録されていません")
	}
	if d.BasicInfo.FamilyStructure == "" {
		warnings = append(warnings, "家族構成が記録されていません")
	}

	return warnings
}
