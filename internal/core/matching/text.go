package matching

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BuildStudentCombinedText は学生プロフィールから埋め込み・rerank用の
// 統合テキストを構築する。空のフィールドは飛ばし、全て空の場合は
// 名前だけの既定文を返す。
func BuildStudentCombinedText(s *Student) string {
	combined := joinTextParts(
		s.Name,
		s.Major,
		skillNamesText(s.Skills),
		s.Interests,
		s.Bio,
		s.Availability,
		s.Location,
	)
	if combined == "" {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			name = "用户"
		}
		combined = fmt.Sprintf("%s 的简介。", name)
	}
	return combined
}

// BuildProjectCombinedText はプロジェクトから統合テキストを構築する
func BuildProjectCombinedText(p *Project) string {
	var hours string
	if p.EstimatedWeeklyHours > 0 {
		hours = strconv.Itoa(p.EstimatedWeeklyHours)
	}
	return joinTextParts(
		p.Title,
		p.Description,
		skillNamesText(p.RequiredSkills),
		formatDatePart(p.StartDate),
		formatDatePart(p.EndDate),
		hours,
		p.Location,
	)
}

// BuildCourseCombinedText はコースから統合テキストを構築する
func BuildCourseCombinedText(c *Course) string {
	return joinTextParts(
		c.Title,
		c.Description,
		c.Instructor,
		c.Category,
		skillNamesText(c.RequiredSkills),
	)
}

// skillNamesText は正規化済みの技能名を ", " で連結する
func skillNamesText(raw any) string {
	names := make([]string, 0)
	for _, entry := range NormalizeSkillList(raw) {
		skill, ok := NormalizeSkillEntry(entry).Get()
		if !ok {
			continue
		}
		names = append(names, skill.Name)
	}
	return strings.Join(names, ", ")
}

func joinTextParts(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kept = append(kept, part)
	}
	return strings.TrimSpace(strings.Join(kept, ". "))
}

func formatDatePart(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
