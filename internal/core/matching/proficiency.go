package matching

import (
	"math"
)

const (
	// maxLevelDiffPenalty は要求等級に届かない場合の等級差1あたりの減点
	maxLevelDiffPenalty = 0.5
	// minLevelMatchScore は技能名が一致した場合に保証される最低得点
	minLevelMatchScore = 1.0
	// missingSkillPenalty は要求技能を欠く場合の減点係数（要求重みに乗算）
	missingSkillPenalty = 0.75
)

// ScoreProficiency は技能名と熟練度に基づく一致度スコアを計算する。
// 戻り値は [0, SkillOverallWeight] に正規化される。要求技能が1つもない
// 場合は満点とする。
//
// 要求技能を欠くと生スコアは負になり得るが、正規化時に0でクランプされる。
// このため重要技能を1つ欠く場合と全て欠く場合の正規化後スコアが一致する
// ことがある。
func (c MatchingConfig) ScoreProficiency(personSkills, requiredSkills any) float64 {
	personEntries := NormalizeSkillList(personSkills)
	requiredEntries := NormalizeSkillList(requiredSkills)

	// 本人の技能名 → 熟練度重み のマップ（名前は大文字小文字を区別する完全一致）
	personWeights := make(map[string]float64, len(personEntries))
	for _, entry := range personEntries {
		if skill, ok := NormalizeSkillEntry(entry).Get(); ok {
			personWeights[skill.Name] = skill.Level.Weight()
		}
	}

	var rawScore, totalPossible float64
	for _, entry := range requiredEntries {
		required, ok := NormalizeSkillEntry(entry).Get()
		if !ok || required.Name == "" {
			continue
		}

		requiredWeight := required.Level.Weight()
		totalPossible += requiredWeight

		personWeight, has := personWeights[required.Name]
		if !has {
			rawScore -= requiredWeight * missingSkillPenalty
			continue
		}

		diff := requiredWeight - personWeight
		if diff <= 0 {
			// 要求水準を満たす（または上回る）場合は満点
			rawScore += requiredWeight
		} else {
			// 要求水準に届かない場合は等級差に応じた部分点（下限あり）
			rawScore += math.Max(minLevelMatchScore, personWeight-diff*maxLevelDiffPenalty)
		}
	}

	normalized := 1.0
	if totalPossible > 0 {
		normalized = math.Max(0.0, rawScore/totalPossible)
	}

	return normalized * c.SkillOverallWeight
}
