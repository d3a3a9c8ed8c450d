package plan

import (
	"math/rand"
	"sort"
)

// caseCard is one entry in the fixed reference set of anonymized past
// cases used for similar-case suggestions
type caseCard struct {
	ID      string
	Title   string
	Tags    []string
	Summary string
}

var referenceCases = []caseCard{
	{
		ID:      "case-001",
		Title:   "長期ひきこもりからの段階的外出支援",
		Tags:    []string{"長期化", "訪問支援", "段階的外出"},
		Summary: "10年近いひきこもり状態から、定期訪問と居場所利用を経て週1回の外出が定着した事例。",
	},
	{
		ID:      "case-002",
		Title:   "関係構築を重視した訪問支援",
		Tags:    []string{"関係構築", "訪問支援", "家族支援"},
		Summary: "本人との面会を急がず、家族面談と手紙のやり取りから信頼関係を作った事例。",
	},
	{
		ID:      "case-003",
		Title:   "生活リズム改善からの再出発",
		Tags:    []string{"生活リズム", "睡眠", "居場所"},
		Summary: "昼夜逆転の改善を最初の目標に置き、生活記録表を併用して日中活動へつなげた事例。",
	},
	{
		ID:      "case-004",
		Title:   "就労体験を通じた社会参加",
		Tags:    []string{"就労支援", "職場体験", "段階的外出"},
		Summary: "状態の安定後、短時間の就労体験から開始して継続就労に至った事例。",
	},
	{
		ID:      "case-005",
		Title:   "オンライン交流を入口にした支援",
		Tags:    []string{"関係構築", "オンライン", "趣味活用"},
		Summary: "ゲームの話題を接点にオンライン面談から開始し、対面支援へ移行した事例。",
	},
	{
		ID:      "case-006",
		Title:   "家族心理教育と並行した本人支援",
		Tags:    []string{"家族支援", "長期化", "心理教育"},
		Summary: "家族の対応変化が本人の緊張緩和につながり、来所相談が実現した事例。",
	},
}

// matchProfile carries the boolean facts the matching rules check
type matchProfile struct {
	Risk              RiskLevel
	CommunicationPoor bool
	SleepPoor         bool
	EmotionPositive   bool
}

const (
	similarityFloor = 30
	maxSimilarCases = 3
	jitterRange     = 10
)

// matchSimilarCases scores every reference case against the profile,
// adds bounded random jitter for presentation variety, and keeps the top
// scorers. Tests pin the jitter by passing a seeded generator; pass nil
// to disable jitter entirely.
func matchSimilarCases(profile matchProfile, rng *rand.Rand) []SimilarCase {
	matches := []SimilarCase{}

	for _, c := range referenceCases {
		score := 0

		if profile.Risk == RiskHigh && hasTag(c, "長期化") {
			score += 20
		}
		if profile.CommunicationPoor && (hasTag(c, "関係構築") || hasTag(c, "訪問支援")) {
			score += 15
		}
		if profile.SleepPoor && hasTag(c, "生活リズム") {
			score += 15
		}
		if profile.EmotionPositive && hasTag(c, "就労支援") {
			score += 15
		}
		if profile.Risk == RiskLow && hasTag(c, "段階的外出") {
			score += 10
		}
		if profile.Risk != RiskLow && hasTag(c, "家族支援") {
			score += 10
		}

		if rng != nil {
			score += rng.Intn(2*jitterRange+1) - jitterRange
		}

		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}

		if score > similarityFloor {
			matches = append(matches, SimilarCase{
				CaseID:     c.ID,
				Title:      c.Title,
				Tags:       c.Tags,
				Similarity: score,
				Summary:    c.Summary,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > maxSimilarCases {
		matches = matches[:maxSimilarCases]
	}
	return matches
}

func hasTag(c caseCard, tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
