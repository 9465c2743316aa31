package matching

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RationaleContext は理由文生成プロンプトに埋め込む文脈情報
type RationaleContext struct {
	StudentName         string
	StudentMajor        string
	StudentSkills       any
	StudentInterests    string
	StudentAvailability string
	StudentLocation     string
	TargetTitle         string
	TargetDescription   string
	Breakdown           ScoreBreakdown
}

const rationaleSystemPrompt = "你是一个智能匹配推荐系统的AI助手，需要为用户提供简洁、有说服力的匹配理由。\n" +
	"请根据提供的学生和目标信息，以及各项匹配得分，总结为什么他们是匹配的。\n" +
	"回复应简洁精炼，重点突出，不超过250字。"

// BuildRationaleMessages は理由文生成用のチャットメッセージを構築する
func BuildRationaleMessages(rc RationaleContext) []Message {
	var sb strings.Builder

	sb.WriteString("学生信息:\n")
	sb.WriteString(fmt.Sprintf("姓名: %s, 专业: %s\n", rc.StudentName, rc.StudentMajor))
	sb.WriteString(fmt.Sprintf("技能: %s\n", formatSkillsJSON(rc.StudentSkills)))
	sb.WriteString(fmt.Sprintf("兴趣: %s\n", valueOrDefault(rc.StudentInterests, "无")))
	sb.WriteString(fmt.Sprintf("可用时间: %s\n", valueOrDefault(rc.StudentAvailability, "未指定")))
	sb.WriteString(fmt.Sprintf("地理位置: %s\n\n", valueOrDefault(rc.StudentLocation, "未指定")))

	sb.WriteString("目标信息:\n")
	sb.WriteString(fmt.Sprintf("标题: %s\n", rc.TargetTitle))
	sb.WriteString(fmt.Sprintf("描述: %s\n\n", rc.TargetDescription))

	sb.WriteString("匹配得分:\n")
	sb.WriteString(fmt.Sprintf("内容相关性: %.2f\n", rc.Breakdown.Similarity))
	sb.WriteString(fmt.Sprintf("技能匹配: %.2f\n", rc.Breakdown.Proficiency))
	sb.WriteString(fmt.Sprintf("时间匹配: %.2f\n", rc.Breakdown.Time))
	sb.WriteString(fmt.Sprintf("地理位置匹配: %.2f\n\n", rc.Breakdown.Location))

	sb.WriteString("请为此匹配提供简洁的理由。")

	return []Message{
		{Role: RoleSystem, Content: rationaleSystemPrompt},
		{Role: RoleUser, Content: sb.String()},
	}
}

// formatSkillsJSON は生の技能データをプロンプト向けのJSON文字列にする。
// シリアライズできない値は文字列表現に退避する。
func formatSkillsJSON(skills any) string {
	if skills == nil {
		return "[]"
	}
	data, err := json.Marshal(skills)
	if err != nil {
		return fmt.Sprintf("%v", skills)
	}
	return string(data)
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
