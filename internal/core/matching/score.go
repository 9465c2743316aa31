package matching

import (
	"sort"

	"github.com/google/uuid"
)

// MatchCandidate はスコア算出済みの候補1件を表す。
// Document は rerank の文書本文として使う統合テキスト。
type MatchCandidate struct {
	TargetID  uuid.UUID
	Title     string
	Document  string
	Breakdown ScoreBreakdown

	// rationaleContext は最終候補の理由文生成に必要な文脈を遅延構築する
	rationaleContext func(ScoreBreakdown) RationaleContext
}

// Combine は基準別スコアを重み付き合成する。
// 各サブスコアはそれぞれの上限（5.0 / 3.0 / 1.0）のままで再正規化せず、
// 重みがスケール圧縮を兼ねる。
func (c MatchingConfig) Combine(b ScoreBreakdown) float64 {
	return b.Similarity*c.SimilarityWeight +
		b.Proficiency*c.ProficiencyWeight +
		b.Time*c.TimeWeight +
		b.Location*c.LocationWeight
}

// SortByCombined は候補を合成スコアの降順に並べ替える（同値は元順を保持）
func SortByCombined(candidates []MatchCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Breakdown.Combined > candidates[j].Breakdown.Combined
	})
}
