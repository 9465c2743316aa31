package matching

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompletionClient struct {
	response string
	err      error

	called       bool
	lastMessages []Message
}

func (c *stubCompletionClient) Complete(ctx context.Context, messages []Message) (string, error) {
	c.called = true
	c.lastMessages = messages
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func TestFallbackRationale(t *testing.T) {
	b := ScoreBreakdown{Similarity: 0.85, Proficiency: 3.5, Time: 2.4, Location: 0.6}

	got := FallbackRationale(b)
	assert.Equal(t, "基于AI分析，匹配得分 - 相关性：0.85，技能：3.50，时间：2.40，位置：0.60", got)
}

func TestRationaleGenerator_UsesLLMResponse(t *testing.T) {
	client := &stubCompletionClient{response: "该学生的Python技能与项目需求高度匹配。"}
	generator := NewRationaleGenerator(client, WithRationaleLogger(discardLogger()))

	rc := RationaleContext{
		StudentName: "李明",
		TargetTitle: "智能校园项目",
		Breakdown:   ScoreBreakdown{Similarity: 0.8},
	}
	got := generator.Generate(context.Background(), rc)

	assert.Equal(t, "该学生的Python技能与项目需求高度匹配。", got)
	require.True(t, client.called)
	require.Len(t, client.lastMessages, 2)
	assert.Equal(t, RoleSystem, client.lastMessages[0].Role)
	assert.Equal(t, RoleUser, client.lastMessages[1].Role)
}

func TestRationaleGenerator_Fallbacks(t *testing.T) {
	breakdown := ScoreBreakdown{Similarity: 0.5, Proficiency: 2.5, Time: 1.5, Location: 0.3}
	want := FallbackRationale(breakdown)

	tests := []struct {
		name   string
		client CompletionClient
	}{
		{name: "クライアント未設定", client: nil},
		{name: "エラー応答", client: &stubCompletionClient{err: errors.New("api down")}},
		{name: "空応答", client: &stubCompletionClient{response: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := NewRationaleGenerator(tt.client, WithRationaleLogger(discardLogger()))
			got := generator.Generate(context.Background(), RationaleContext{Breakdown: breakdown})
			assert.Equal(t, want, got)
		})
	}
}

func TestBuildRationaleMessages(t *testing.T) {
	rc := RationaleContext{
		StudentName:         "李明",
		StudentMajor:        "计算机科学",
		StudentSkills:       []any{map[string]any{"name": "Python", "level": "登堂入室"}},
		StudentInterests:    "机器学习",
		StudentAvailability: "每周15-20小时",
		StudentLocation:     "深圳",
		TargetTitle:         "智能推荐系统",
		TargetDescription:   "构建校园项目推荐引擎",
		Breakdown:           ScoreBreakdown{Similarity: 0.82, Proficiency: 4.0, Time: 2.4, Location: 1.0},
	}

	messages := BuildRationaleMessages(rc)

	require.Len(t, messages, 2)
	assert.Contains(t, messages[0].Content, "智能匹配推荐系统")
	assert.Contains(t, messages[0].Content, "不超过250字")

	user := messages[1].Content
	assert.Contains(t, user, "姓名: 李明, 专业: 计算机科学")
	assert.Contains(t, user, "Python")
	assert.Contains(t, user, "标题: 智能推荐系统")
	assert.Contains(t, user, "内容相关性: 0.82")
	assert.Contains(t, user, "技能匹配: 4.00")
	assert.Contains(t, user, "时间匹配: 2.40")
	assert.Contains(t, user, "地理位置匹配: 1.00")
}

func TestBuildRationaleMessages_EmptyFieldsUseDefaults(t *testing.T) {
	messages := BuildRationaleMessages(RationaleContext{StudentName: "王芳"})

	user := messages[1].Content
	assert.Contains(t, user, "兴趣: 无")
	assert.Contains(t, user, "可用时间: 未指定")
	assert.True(t, strings.Contains(user, "地理位置: 未指定"))
}
