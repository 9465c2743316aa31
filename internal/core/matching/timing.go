package matching

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/mo"
)

var (
	hourRangePattern = regexp.MustCompile(`(\d+)-(\d+)(?:小时)?`)
	hourAbovePattern = regexp.MustCompile(`>(\d+)(?:小时)?`)
	hourPlusPattern  = regexp.MustCompile(`(\d+)\+(?:小时)?`)
	hourBarePattern  = regexp.MustCompile(`(\d+)(?:小时)?`)
)

// ParseWeeklyHours は可用時間テキストから週あたりの時間数を抽出する。
// 「15-20小时」のような範囲は中央値（切り捨て）、「>30小时」「30+小时」は
// N+5、「20小时」は N、「全职」「full-time」は40を返す。
func ParseWeeklyHours(availability string) mo.Option[int] {
	if strings.TrimSpace(availability) == "" {
		return mo.None[int]()
	}

	normalized := strings.ReplaceAll(strings.ToLower(availability), " ", "")

	if m := hourRangePattern.FindStringSubmatch(normalized); m != nil {
		low, _ := strconv.Atoi(m[1])
		high, _ := strconv.Atoi(m[2])
		return mo.Some((low + high) / 2)
	}

	if m := hourAbovePattern.FindStringSubmatch(normalized); m != nil {
		n, _ := strconv.Atoi(m[1])
		return mo.Some(n + 5)
	}

	if m := hourPlusPattern.FindStringSubmatch(normalized); m != nil {
		n, _ := strconv.Atoi(m[1])
		return mo.Some(n + 5)
	}

	if m := hourBarePattern.FindStringSubmatch(normalized); m != nil {
		n, _ := strconv.Atoi(m[1])
		return mo.Some(n)
	}

	if strings.Contains(normalized, "全职") || strings.Contains(normalized, "full-time") {
		return mo.Some(40)
	}

	return mo.None[int]()
}

// temporalKeywords は可用時間テキストから時期キーワードを抽出する
func temporalKeywords(availability string) map[string]bool {
	keywords := make(map[string]bool)
	if availability == "" {
		return keywords
	}

	lower := strings.ToLower(availability)
	if strings.Contains(lower, "暑假") || strings.Contains(lower, "夏季") {
		keywords["summer"] = true
	}
	if strings.Contains(lower, "寒假") || strings.Contains(lower, "冬季") {
		keywords["winter"] = true
	}
	if strings.Contains(lower, "学期内") {
		keywords["semester"] = true
	}
	if strings.Contains(lower, "长期") || strings.Contains(lower, "long-term") {
		keywords["long_term"] = true
	}
	if strings.Contains(lower, "短期") || strings.Contains(lower, "short-term") {
		keywords["short_term"] = true
	}

	return keywords
}

// ScoreTime は本人と機会の時間・投入度の適合スコアを計算する。
// 戻り値は [0, TimeOverallWeight]。プロジェクトは週時間（重み0.6）と
// 時期・期間（重み0.4）の合成、コースは固定0.9、それ以外は0.5とする。
func (c MatchingConfig) ScoreTime(student *Student, opportunity any) float64 {
	var timeScore float64

	switch item := opportunity.(type) {
	case *Project:
		timeScore = projectTimeScore(student, item)
	case *Course:
		timeScore = 0.9 // コースは時間的制約が緩いため高めの既定値
	default:
		timeScore = 0.5
	}

	return timeScore * c.TimeOverallWeight
}

func projectTimeScore(student *Student, project *Project) float64 {
	// 1. 週あたり時間数の適合（重み0.6）
	var hoursScore float64
	studentHours := ParseWeeklyHours(student.Availability)

	if project.EstimatedWeeklyHours > 0 {
		if hours, ok := studentHours.Get(); ok {
			if hours >= project.EstimatedWeeklyHours {
				hoursScore = 1.0
			} else {
				hoursScore = math.Max(0.2, float64(hours)/float64(project.EstimatedWeeklyHours))
			}
		} else {
			hoursScore = 0.3
		}
	} else {
		if studentHours.IsPresent() {
			hoursScore = 0.8
		} else {
			hoursScore = 0.5
		}
	}

	// 2. 時期・期間の適合（重み0.4）
	keywords := temporalKeywords(student.Availability)
	hasDates := project.StartDate != nil && project.EndDate != nil && project.EndDate.After(*project.StartDate)

	var datesScore float64
	if hasDates {
		durationMonths := project.EndDate.Sub(*project.StartDate).Hours() / 24 / 30
		startMonth := int(project.StartDate.Month())

		matched := false
		switch {
		case keywords["summer"] && startMonth >= 6 && startMonth <= 8:
			matched = true
		case keywords["winter"] && (startMonth == 1 || startMonth == 12):
			matched = true
		case keywords["semester"] && !(startMonth >= 6 && startMonth <= 8 || startMonth == 1 || startMonth == 12):
			matched = true
		}

		if keywords["long_term"] && durationMonths >= 6 {
			matched = true
		} else if keywords["short_term"] && durationMonths < 3 {
			matched = true
		}

		switch {
		case matched:
			datesScore = 1.0
		case len(keywords) > 0:
			datesScore = 0.5
		default:
			datesScore = 0.2
		}
	} else {
		if len(keywords) > 0 {
			datesScore = 0.7
		} else {
			datesScore = 0.5
		}
	}

	return hoursScore*0.6 + datesScore*0.4
}
