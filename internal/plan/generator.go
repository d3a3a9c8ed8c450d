package plan

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/assessment"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/llm"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/metrics"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/types"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/signals"
)

// Generator assembles support plans. The deterministic path never
// fails, so GeneratePlan always returns a usable plan regardless of the
// completion backend's state.
type Generator struct {
	completer llm.Completer
	rng       *rand.Rand
	log       *slog.Logger
	now       func() time.Time
}

// NewGenerator creates a plan generator. rng drives the similar-case
// jitter; tests pass a seeded generator or nil for repeatable output.
func NewGenerator(completer llm.Completer, rng *rand.Rand, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		completer: completer,
		rng:       rng,
		log:       logger,
		now:       time.Now,
	}
}

// GeneratePlan builds a plan from the assessment and behavioral
// signals. With useNarrative set, narrative synthesis is attempted
// first and any failure silently falls back to deterministic assembly;
// the Result side channel reports when that happened.
func (g *Generator) GeneratePlan(ctx context.Context, subjectCode types.SubjectID, a *assessment.Assessment, sigs []*signals.Signal, useNarrative bool) *Result {
	planDate := g.now().UTC()

	if useNarrative {
		plan, err := g.generateNarrative(ctx, subjectCode, a, sigs, planDate)
		if err == nil {
			metrics.RecordPlanGenerated("narrative")
			return &Result{Plan: plan}
		}

		metrics.RecordPlanFallback()
		g.log.Warn("narrative synthesis failed, using deterministic assembly",
			"subject", subjectCode,
			"error", err,
		)
		plan = g.generateDeterministic(subjectCode, a, sigs, planDate)
		metrics.RecordPlanGenerated("deterministic")
		return &Result{
			Plan:           plan,
			UsedFallback:   true,
			FallbackReason: err.Error(),
		}
	}

	plan := g.generateDeterministic(subjectCode, a, sigs, planDate)
	metrics.RecordPlanGenerated("deterministic")
	return &Result{Plan: plan}
}

// generateDeterministic is the rule-based assembly path
func (g *Generator) generateDeterministic(subjectCode types.SubjectID, a *assessment.Assessment, sigs []*signals.Signal, planDate time.Time) *SupportPlan {
	var latest *signals.Signal
	if len(sigs) > 0 {
		latest = sigs[0]
	}

	riskLevel, currentStatus := classify(latest)
	strengths, challenges := deriveStrengthsChallenges(latest)

	profile := matchProfile{
		Risk:              riskLevel,
		CommunicationPoor: latest != nil && latest.ConversationCount == 0,
		SleepPoor:         latest != nil && latest.SleepQuality > 0 && latest.SleepQuality <= 2,
		EmotionPositive:   latest != nil && latest.Emotion == signals.EmotionPositive,
	}

	plan := &SupportPlan{
		ID:                 newPlanID(planDate),
		SubjectCode:        subjectCode,
		AssessmentSummary:  summarizeAssessment(a),
		RiskLevel:          riskLevel,
		CurrentStatus:      currentStatus,
		Strengths:          strengths,
		Challenges:         challenges,
		Goals:              goalTemplate(profile.SleepPoor),
		Methods:            defaultMethods(),
		RoleAssignments:    defaultRoleAssignments(),
		EvaluationMetrics:  defaultEvaluationMetrics(),
		SimilarCases:       matchSimilarCases(profile, g.rng),
		Risks:              assembleRisks(riskLevel, profile.SleepPoor),
		PlanDate:           planDate,
		NextEvaluationDate: addMonthsClamped(planDate, nextEvaluationMonths),
		GeneratedBy:        "deterministic",
		CreatedAt:          planDate,
	}
	if a != nil {
		plan.AssessmentID = a.ID
	}
	return plan
}

// classify maps the latest signal's emotion to risk and status via a
// fixed decision table
func classify(latest *signals.Signal) (RiskLevel, string) {
	if latest == nil {
		return RiskMedium, "支援導入期"
	}
	switch latest.Emotion {
	case signals.EmotionPositive:
		return RiskLow, "改善傾向"
	case signals.EmotionAnxious, signals.EmotionNegative:
		return RiskHigh, "要安定化"
	default:
		return RiskMedium, "支援導入期"
	}
}

// deriveStrengthsChallenges checks fixed thresholds against the latest
// signal's fields
func deriveStrengthsChallenges(latest *signals.Signal) (strengths, challenges []string) {
	strengths = []string{}
	challenges = []string{}
	if latest == nil {
		challenges = append(challenges, "行動記録が不足しており状態把握が困難")
		return strengths, challenges
	}

	if latest.SleepQuality >= 4 {
		strengths = append(strengths, "睡眠リズムが安定している")
	} else if latest.SleepQuality > 0 && latest.SleepQuality <= 2 {
		challenges = append(challenges, "睡眠の質が低い")
	}

	if latest.ActivityLevel >= 4 {
		strengths = append(strengths, "日中の活動性が保たれている")
	} else if latest.ActivityLevel > 0 && latest.ActivityLevel <= 2 {
		challenges = append(challenges, "活動量が少ない")
	}

	switch latest.Emotion {
	case signals.EmotionPositive:
		strengths = append(strengths, "前向きな情緒が見られる")
	case signals.EmotionAnxious, signals.EmotionNegative:
		challenges = append(challenges, "情緒面の不安定さがある")
	}

	if latest.ConversationCount >= 3 {
		strengths = append(strengths, "会話の機会が保たれている")
	} else if latest.ConversationCount == 0 {
		challenges = append(challenges, "コミュニケーション機会が不足している")
	}

	return strengths, challenges
}

// goalTemplate returns the fixed short/mid/long goal set, inserting the
// sleep-focused goal only when poor sleep triggered it
func goalTemplate(sleepPoor bool) []SupportGoal {
	goals := []SupportGoal{
		{
			Term:         TermShort,
			TargetPeriod: "1〜3ヶ月",
			Goal:         "支援者との定期的な接点を作る",
			Actions: []string{
				"週1回の面談または訪問を設定する",
				"本人が負担に感じない連絡手段を決める",
			},
			SuccessCriteria: []string{
				"月3回以上の接点が継続している",
			},
		},
	}

	if sleepPoor {
		goals = append(goals, SupportGoal{
			Term:         TermShort,
			TargetPeriod: "1〜3ヶ月",
			Goal:         "生活リズムを整える",
			Actions: []string{
				"起床・就寝時間を記録する",
				"午前中に短い活動を一つ設定する",
			},
			SuccessCriteria: []string{
				"起床時間のばらつきが2時間以内に収まる",
			},
		})
	}

	goals = append(goals,
		SupportGoal{
			Term:         TermMid,
			TargetPeriod: "3〜6ヶ月",
			Goal:         "家庭外での居場所を見つける",
			Actions: []string{
				"居場所・サロンの見学を提案する",
				"興味関心に合う活動を一緒に探す",
			},
			SuccessCriteria: []string{
				"月1回以上の外出機会がある",
			},
		},
		SupportGoal{
			Term:         TermLong,
			TargetPeriod: "6〜12ヶ月",
			Goal:         "本人の希望に沿った社会参加の形を具体化する",
			Actions: []string{
				"就労・就学・ボランティア等の選択肢を整理する",
				"必要に応じて専門機関へつなぐ",
			},
			SuccessCriteria: []string{
				"本人が次の一歩を自分の言葉で語れる",
			},
		},
	)

	return goals
}

func defaultMethods() []SupportMethod {
	return []SupportMethod{
		{
			Category:        "訪問支援",
			Approach:        "本人のペースを尊重した定期訪問",
			Cadence:         "週1回",
			ExpectedOutcome: "支援者との信頼関係の形成",
		},
		{
			Category:        "家族支援",
			Approach:        "家族面談による対応方法の助言",
			Cadence:         "月1回",
			ExpectedOutcome: "家庭内の緊張緩和",
		},
		{
			Category:        "関係機関連携",
			Approach:        "保健・医療・就労機関との情報共有",
			Cadence:         "必要時",
			ExpectedOutcome: "切れ目のない支援体制の維持",
		},
	}
}

func defaultRoleAssignments() []RoleAssignment {
	return []RoleAssignment{
		{Role: "主担当支援員", Responsibility: "本人との面談・訪問、計画の進行管理"},
		{Role: "家族担当", Responsibility: "家族面談と家庭環境の調整"},
		{Role: "スーパーバイザー", Responsibility: "計画の妥当性確認とリスク評価"},
	}
}

func defaultEvaluationMetrics() []EvaluationMetric {
	return []EvaluationMetric{
		{Name: "接点継続率", Target: "月3回以上", Method: "面談・訪問記録の集計"},
		{Name: "外出頻度", Target: "月1回以上", Method: "行動記録の確認"},
		{Name: "本人の主観的変化", Target: "前向きな発言の増加", Method: "面談記録の振り返り"},
	}
}

// assembleRisks returns the fixed risk list plus condition-triggered
// entries
func assembleRisks(risk RiskLevel, sleepPoor bool) []RiskEntry {
	risks := []RiskEntry{
		{
			Risk:       "支援の中断",
			Preventive: "本人が負担を感じた場合は頻度を下げて接点を維持する",
		},
		{
			Risk:       "家族の疲弊",
			Preventive: "家族面談で負担感を確認し、レスパイトにつなぐ",
		},
	}

	if risk == RiskHigh {
		risks = append(risks, RiskEntry{
			Risk:       "状態の急激な悪化",
			Preventive: "危機時の連絡先と対応手順を本人・家族と共有する",
		})
	}
	if sleepPoor {
		risks = append(risks, RiskEntry{
			Risk:       "昼夜逆転の固定化",
			Preventive: "生活記録を併用し、無理のない起床目標を設定する",
		})
	}

	return risks
}

// summarizeAssessment restates key assessment fields as a short summary
func summarizeAssessment(a *assessment.Assessment) string {
	if a == nil {
		return "アセスメント未実施。行動記録と面談により状態把握を進める。"
	}

	var parts []string
	d := a.Data
	if d.BasicInfo.Age != "" {
		parts = append(parts, d.BasicInfo.Age+"の対象者")
	}
	if d.WithdrawalEpisode.Duration != "" {
		parts = append(parts, "ひきこもり期間は"+d.WithdrawalEpisode.Duration)
	}
	if d.WithdrawalEpisode.Trigger != "" {
		parts = append(parts, "きっかけは"+d.WithdrawalEpisode.Trigger)
	}
	if d.CurrentLifeStatus.SleepSchedule != "" {
		parts = append(parts, "睡眠状況: "+d.CurrentLifeStatus.SleepSchedule)
	}
	if d.SupportNeeds.SubjectWishes != "" {
		parts = append(parts, "本人の希望: "+d.SupportNeeds.SubjectWishes)
	}
	if len(parts) == 0 {
		return "アセスメント記録はあるが要約可能な情報が少ない。"
	}
	return strings.Join(parts, "。") + "。"
}

// newPlanID builds an opaque plan ID
func newPlanID(now time.Time) string {
	return fmt.Sprintf("plan-%s-%s", now.Format("20060102"), uuid.New().String()[:8])
}
