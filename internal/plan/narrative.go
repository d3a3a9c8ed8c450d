package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/assessment"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/llm"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/errors"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/types"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/signals"
)

// narrativeResponse is the JSON shape the synthesis prompt asks for
type narrativeResponse struct {
	AssessmentSummary string             `json:"assessmentSummary"`
	RiskLevel         string             `json:"riskLevel"`
	CurrentStatus     string             `json:"currentStatus"`
	Strengths         []string           `json:"strengths"`
	Challenges        []string           `json:"challenges"`
	Goals             []SupportGoal      `json:"goals"`
	Methods           []SupportMethod    `json:"methods"`
	RoleAssignments   []RoleAssignment   `json:"roleAssignments"`
	EvaluationMetrics []EvaluationMetric `json:"evaluationMetrics"`
	SimilarCases      []SimilarCase      `json:"similarCases"`
	Risks             []RiskEntry        `json:"risks"`
}

// generateNarrative delegates plan synthesis to the completion backend.
// Every failure returns an error; the caller decides on fallback.
func (g *Generator) generateNarrative(ctx context.Context, subjectCode types.SubjectID, a *assessment.Assessment, sigs []*signals.Signal, planDate time.Time) (*SupportPlan, error) {
	if g.completer == nil || !g.completer.Configured() {
		return nil, errors.ErrServiceUnavailable
	}

	response, err := g.completer.Complete(ctx,
		buildNarrativeInstruction(),
		buildNarrativeContent(a, sigs),
		llm.CompletionOptions{},
	)
	if err != nil {
		return nil, fmt.Errorf("narrative completion: %w", err)
	}

	block, ok := extractFencedJSON(response)
	if !ok {
		return nil, fmt.Errorf("%w: no fenced json block in response", errors.ErrUnparsableNarrative)
	}

	var parsed narrativeResponse
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrUnparsableNarrative, err)
	}

	plan := &SupportPlan{
		ID:                 newPlanID(planDate),
		SubjectCode:        subjectCode,
		AssessmentSummary:  parsed.AssessmentSummary,
		RiskLevel:          normalizeRiskLevel(parsed.RiskLevel),
		CurrentStatus:      parsed.CurrentStatus,
		Strengths:          orEmpty(parsed.Strengths),
		Challenges:         orEmpty(parsed.Challenges),
		Goals:              parsed.Goals,
		Methods:            parsed.Methods,
		RoleAssignments:    parsed.RoleAssignments,
		EvaluationMetrics:  parsed.EvaluationMetrics,
		SimilarCases:       parsed.SimilarCases,
		Risks:              parsed.Risks,
		PlanDate:           planDate,
		NextEvaluationDate: addMonthsClamped(planDate, nextEvaluationMonths),
		GeneratedBy:        "narrative",
		CreatedAt:          planDate,
	}
	if a != nil {
		plan.AssessmentID = a.ID
	}

	// System-owned defaults the model may omit
	if len(plan.RoleAssignments) == 0 {
		plan.RoleAssignments = defaultRoleAssignments()
	}
	if plan.Goals == nil {
		plan.Goals = []SupportGoal{}
	}
	if plan.Methods == nil {
		plan.Methods = []SupportMethod{}
	}
	if plan.EvaluationMetrics == nil {
		plan.EvaluationMetrics = []EvaluationMetric{}
	}
	if plan.SimilarCases == nil {
		plan.SimilarCases = []SimilarCase{}
	}
	if plan.Risks == nil {
		plan.Risks = []RiskEntry{}
	}

	return plan, nil
}

func normalizeRiskLevel(s string) RiskLevel {
	switch RiskLevel(strings.ToLower(strings.TrimSpace(s))) {
	case RiskLow:
		return RiskLow
	case RiskHigh:
		return RiskHigh
	default:
		return RiskMedium
	}
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// extractFencedJSON pulls the first ```json fenced block out of a
// completion response. A bare ``` fence is accepted too.
func extractFencedJSON(response string) (string, bool) {
	start := strings.Index(response, "```json")
	offset := len("```json")
	if start == -1 {
		start = strings.Index(response, "```")
		offset = len("```")
	}
	if start == -1 {
		return "", false
	}

	rest := response[start+offset:]
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}

	block := strings.TrimSpace(rest[:end])
	if block == "" {
		return "", false
	}
	return block, true
}

// buildNarrativeInstruction is the fixed system instruction for plan
// synthesis
func buildNarrativeInstruction() string {
	parts := []string{
		"あなたはひきこもり支援の支援計画を作成する専門職アシスタントです。",
		"与えられたアセスメント要約と行動記録から、個別支援計画を作成してください。",
		"回答には必ず ```json で始まるコードブロックを1つ含め、その中に以下の構造のJSONを出力してください。",
		"",
		"{",
		`  "assessmentSummary": "アセスメントの要約と解釈",`,
		`  "riskLevel": "low | medium | high",`,
		`  "currentStatus": "現在の状態の短い表現",`,
		`  "strengths": ["強み"],`,
		`  "challenges": ["課題"],`,
		`  "goals": [{"term": "short|mid|long", "targetPeriod": "目標期間", "goal": "目標", "actions": ["行動"], "successCriteria": ["達成基準"]}],`,
		`  "methods": [{"category": "分類", "approach": "方法", "cadence": "頻度", "expectedOutcome": "期待効果"}],`,
		`  "roleAssignments": [{"role": "役割", "responsibility": "責務"}],`,
		`  "evaluationMetrics": [{"name": "指標", "target": "目標値", "method": "測定方法"}],`,
		`  "risks": [{"risk": "リスク", "preventive": "予防策"}]`,
		"}",
		"",
		"ルール:",
		"- 目標は短期・中期・長期を各1つ以上含めてください。",
		"- 個人名や住所などの個人特定情報は出力しないでください。",
		"- 本人のペースを尊重し、過度な目標設定を避けてください。",
	}
	return strings.Join(parts, "\n")
}

// buildNarrativeContent embeds the assessment summary and behavioral
// summaries as the user content
func buildNarrativeContent(a *assessment.Assessment, sigs []*signals.Signal) string {
	var b strings.Builder

	b.WriteString("## アセスメント要約\n")
	b.WriteString(summarizeAssessment(a))
	b.WriteString("\n")

	if a != nil {
		d := a.Data
		if d.BehavioralPsychological.CommunicationStyle != "" {
			b.WriteString("コミュニケーション: " + d.BehavioralPsychological.CommunicationStyle + "\n")
		}
		if len(d.BehavioralPsychological.Interests) > 0 {
			b.WriteString("興味関心: " + strings.Join(d.BehavioralPsychological.Interests, "、") + "\n")
		}
		if len(d.SupportNeeds.SupportPriorities) > 0 {
			b.WriteString("支援の優先事項: " + strings.Join(d.SupportNeeds.SupportPriorities, "、") + "\n")
		}
	}

	b.WriteString("\n## 最近の行動記録\n")
	if len(sigs) == 0 {
		b.WriteString("行動記録なし\n")
	}
	for i, s := range sigs {
		if i >= 14 {
			break
		}
		fmt.Fprintf(&b, "- %s: 感情=%s ストレス=%d 睡眠=%d 活動=%d 会話=%d %s\n",
			s.RecordedOn.Format("2006-01-02"), s.Emotion, s.StressLevel,
			s.SleepQuality, s.ActivityLevel, s.ConversationCount, s.Summary)
	}

	return b.String()
}
