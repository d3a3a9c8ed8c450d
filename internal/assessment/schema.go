package assessment

// extractionSchema is the JSON-Schema the completion backend's response
// must satisfy. Every field is optional; the schema constrains shape and
// types only. Unknown extra fields are tolerated so a chatty model does
// not turn a usable record into a hard failure.
func extractionSchema() map[string]any {
	str := map[string]any{"type": "string"}
	strList := map[string]any{"type": "array", "items": str}

	section := func(props map[string]any) map[string]any {
		return map[string]any{
			"type":       "object",
			"properties": props,
		}
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"basicInfo": section(map[string]any{
				"age":             str,
				"gender":          str,
				"familyStructure": str,
				"livingSituation": str,
				"economicStatus":  str,
			}),
			"consultationHistory": section(map[string]any{
				"route":           str,
				"firstContact":    str,
				"previousSupport": str,
				"medicalHistory":  str,
				"currentServices": strList,
			}),
			"withdrawalEpisode": section(map[string]any{
				"startAge":      str,
				"duration":      str,
				"trigger":       str,
				"circumstances": str,
				"currentState":  str,
				"pastEpisodes":  strList,
			}),
			"developmentalHistory": section(map[string]any{
				"childhoodNotes":   str,
				"schoolAdjustment": str,
				"diagnoses":        strList,
				"traits":           str,
			}),
			"educationEmployment": section(map[string]any{
				"finalEducation":   str,
				"schoolExperience": str,
				"employmentHistory": map[string]any{
					"type": "array",
					"items": section(map[string]any{
						"age":     str,
						"period":  str,
						"content": str,
					}),
				},
				"currentOccupation": str,
			}),
			"currentLifeStatus": section(map[string]any{
				"dailyRoutine":    str,
				"sleepSchedule":   str,
				"mealStatus":      str,
				"hygiene":         str,
				"outingFrequency": str,
				"internetUsage":   str,
			}),
			"behavioralPsychological": section(map[string]any{
				"communicationStyle": str,
				"emotionalState":     str,
				"interests":          strList,
				"strengths":          strList,
				"familyRelationship": str,
				"violenceOrSelfHarm": map[string]any{"type": "boolean"},
			}),
			"supportNeeds": section(map[string]any{
				"subjectWishes":     str,
				"familyWishes":      str,
				"urgentIssues":      strList,
				"supportPriorities": strList,
			}),
			"supplementaryNotes": str,
		},
	}
}
