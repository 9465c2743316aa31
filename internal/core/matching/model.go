package matching

import (
	"time"

	"github.com/google/uuid"
)

// SkillLevel は技能の熟練度を表す4段階の等級。
// 元データは中国語の等級名をそのまま使用している。
type SkillLevel string

const (
	// SkillLevelNovice は初級（初窥门径）
	SkillLevelNovice SkillLevel = "初窥门径"
	// SkillLevelCompetent は中級（登堂入室）
	SkillLevelCompetent SkillLevel = "登堂入室"
	// SkillLevelProficient は上級（融会贯通）
	SkillLevelProficient SkillLevel = "融会贯通"
	// SkillLevelMastery は熟達（炉火纯青）
	SkillLevelMastery SkillLevel = "炉火纯青"
)

// Weight は熟練度等級を数値重みに変換する。未知の等級は0を返す。
func (l SkillLevel) Weight() float64 {
	switch l {
	case SkillLevelNovice:
		return 1.0
	case SkillLevelCompetent:
		return 2.0
	case SkillLevelProficient:
		return 3.0
	case SkillLevelMastery:
		return 4.0
	default:
		return 0.0
	}
}

// ParseSkillLevel は任意の文字列を有効な熟練度等級に正規化する。
// 4等級のいずれにも該当しない入力は初級に落とす。
func ParseSkillLevel(s string) SkillLevel {
	switch SkillLevel(s) {
	case SkillLevelCompetent, SkillLevelProficient, SkillLevelMastery:
		return SkillLevel(s)
	default:
		return SkillLevelNovice
	}
}

// Skill は正規化済みの技能エントリを表す
type Skill struct {
	Name  string     `json:"name"`
	Level SkillLevel `json:"level"`
}

// ScoreBreakdown はマッチングの基準別スコア内訳を表す。
// Combined は重み付き合成値で、各サブスコアはそれぞれの上限
// （類似度1.0 / 技能5.0 / 時間3.0 / 位置1.0）に収まる。
type ScoreBreakdown struct {
	Similarity  float64 `json:"similarity"`
	Proficiency float64 `json:"proficiency"`
	Time        float64 `json:"time"`
	Location    float64 `json:"location"`
	Combined    float64 `json:"combined"`
}

// MatchResult はマッチング結果の1件を表す。
// Relevance は rerank 成功時はクロスエンコーダの関連度、フォールバック時は
// Breakdown.Combined と同値になる。両者はスケールが異なるため、リクエストを
// またいだ Relevance の比較は保証されない。
type MatchResult struct {
	TargetID  uuid.UUID      `json:"targetID"`
	Title     string         `json:"title"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Relevance float64        `json:"relevanceScore"`
	Rationale string         `json:"matchRationale,omitempty"`
}

// Student は学生エンティティの読み取りビュー。
// Skills と Embedding は上流の生データをそのまま保持する
// （構造化レコード・JSON文字列・ネスト配列のいずれもあり得る）。
type Student struct {
	ID           uuid.UUID
	Name         string
	Major        string
	Bio          string
	Interests    string
	Availability string
	Location     string
	Skills       any
	Embedding    any
	CombinedText string
}

// Project はプロジェクト（機会）エンティティの読み取りビュー
type Project struct {
	ID                   uuid.UUID
	Title                string
	Description          string
	RequiredSkills       any
	Location             string
	StartDate            *time.Time
	EndDate              *time.Time
	EstimatedWeeklyHours int
	Embedding            any
	CombinedText         string
}

// Course はコース（機会）エンティティの読み取りビュー
type Course struct {
	ID             uuid.UUID
	Title          string
	Description    string
	Instructor     string
	Category       string
	CoverImageURL  string
	RequiredSkills any
	Embedding      any
	CombinedText   string
}
