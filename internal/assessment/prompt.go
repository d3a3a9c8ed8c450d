package assessment

import "strings"

// buildExtractionInstruction returns the fixed system instruction for the
// extraction request. The instruction enumerates the output schema field
// by field and carries the privacy boundary: the model is the only
// component that sees the raw narrative, so the prohibition on
// identifying fields lives in the instruction itself.
func buildExtractionInstruction() string {
	parts := []string{
		"あなたはひきこもり支援の相談記録から情報を抽出するアシスタントです。",
		"入力の相談記録テキストから、以下のJSONスキーマに従って情報を抽出してください。",
		"JSONのみを返してください。説明文は不要です。",
		"",
		"出力フィールド:",
		"- basicInfo: age(年齢層), gender(性別), familyStructure(家族構成), livingSituation(居住状況), economicStatus(経済状況)",
		"- consultationHistory: route(相談経路), firstContact(初回接触), previousSupport(過去の支援歴), medicalHistory(医療歴), currentServices(利用中サービスの配列)",
		"- withdrawalEpisode: startAge(ひきこもり開始年齢), duration(継続期間), trigger(きっかけ), circumstances(経緯・状況), currentState(現在の状態), pastEpisodes(過去のエピソードの配列)",
		"- developmentalHistory: childhoodNotes(幼少期の様子), schoolAdjustment(学校適応), diagnoses(診断名の配列), traits(特性)",
		"- educationEmployment: finalEducation(最終学歴), schoolExperience(学校での経験), employmentHistory(就労歴の配列: age, period, content), currentOccupation(現在の就労状況)",
		"- currentLifeStatus: dailyRoutine(生活リズム), sleepSchedule(睡眠状況), mealStatus(食事状況), hygiene(衛生状態), outingFrequency(外出頻度), internetUsage(ネット利用状況)",
		"- behavioralPsychological: communicationStyle(コミュニケーションの様子), emotionalState(情緒状態), interests(興味関心の配列), strengths(強みの配列), familyRelationship(家族との関係), violenceOrSelfHarm(暴力・自傷の有無, boolean)",
		"- supportNeeds: subjectWishes(本人の希望), familyWishes(家族の希望), urgentIssues(緊急課題の配列), supportPriorities(支援の優先事項の配列)",
		"- supplementaryNotes: その他特記事項",
		"",
		"ルール:",
		"- テキストに記載のない項目は省略するか空文字にしてください。推測で埋めないでください。",
		"- 次の個人特定情報は絶対に出力に含めないでください: 氏名、生年月日、住所、電話番号。",
		"- 人名が本文中に現れても、いかなるフィールドにも転記しないでください。",
	}
	return strings.Join(parts, "\n")
}
