package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSkillList(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want int
	}{
		{
			name: "構造化済みのリストはそのまま返す",
			raw:  []any{map[string]any{"name": "Python", "level": "登堂入室"}},
			want: 1,
		},
		{
			name: "JSON文字列",
			raw:  `[{"name": "Python", "level": "登堂入室"}, {"name": "Go", "level": "融会贯通"}]`,
			want: 2,
		},
		{
			name: "Pythonリテラル文字列",
			raw:  `[{'name': 'Python', 'level': '登堂入室'}]`,
			want: 1,
		},
		{
			name: "引用符に包まれたリテラル",
			raw:  `"[{'name': 'Python', 'level': '登堂入室'}]"`,
			want: 1,
		},
		{
			name: "パース不能な文字列は空",
			raw:  "garbage {{{",
			want: 0,
		},
		{
			name: "文字列・リスト以外は空",
			raw:  42,
			want: 0,
		},
		{
			name: "nil は空",
			raw:  nil,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSkillList(tt.raw)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestNormalizeSkillList_Idempotent(t *testing.T) {
	raw := `[{"name": "Python", "level": "登堂入室"}]`

	once := NormalizeSkillList(raw)
	twice := NormalizeSkillList(any(once))
	assert.Equal(t, once, twice)
}

func TestNormalizeSkillEntry(t *testing.T) {
	tests := []struct {
		name      string
		raw       any
		wantName  string
		wantLevel SkillLevel
		wantNone  bool
	}{
		{
			name:      "構造化レコード",
			raw:       map[string]any{"name": "Go", "level": "融会贯通"},
			wantName:  "Go",
			wantLevel: SkillLevelProficient,
		},
		{
			name:      "不明な熟練度は最低等級",
			raw:       map[string]any{"name": "Go", "level": "大师"},
			wantName:  "Go",
			wantLevel: SkillLevelNovice,
		},
		{
			name:      "JSONレコード文字列",
			raw:       `{"name": "Python", "level": "登堂入室"}`,
			wantName:  "Python",
			wantLevel: SkillLevelCompetent,
		},
		{
			name:      "エスケープ済み引用符に包まれたレコード",
			raw:       `"{\"name\": \"Python\", \"level\": \"登堂入室\"}"`,
			wantName:  "Python",
			wantLevel: SkillLevelCompetent,
		},
		{
			name:      "リテラル形式のレコード文字列",
			raw:       `{'name': 'C++', 'level': '炉火纯青'}`,
			wantName:  "C++",
			wantLevel: SkillLevelMastery,
		},
		{
			name:      "配列に包まれたレコード文字列",
			raw:       `[{'name': 'Rust', 'level': '登堂入室'}]`,
			wantName:  "Rust",
			wantLevel: SkillLevelCompetent,
		},
		{
			name:      "ネストした配列",
			raw:       []any{[]any{map[string]any{"name": "SQL", "level": "登堂入室"}}},
			wantName:  "SQL",
			wantLevel: SkillLevelCompetent,
		},
		{
			name:      "パース不能な文字列は全体が技能名",
			raw:       "机器学习",
			wantName:  "机器学习",
			wantLevel: SkillLevelNovice,
		},
		{
			name:     "空文字列は None",
			raw:      "   ",
			wantNone: true,
		},
		{
			name:     "名前のないレコードは None",
			raw:      map[string]any{"level": "登堂入室"},
			wantNone: true,
		},
		{
			name:     "非対応の型は None",
			raw:      3.14,
			wantNone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSkillEntry(tt.raw)
			if tt.wantNone {
				assert.False(t, got.IsPresent())
				return
			}

			skill, ok := got.Get()
			require.True(t, ok)
			assert.Equal(t, tt.wantName, skill.Name)
			assert.Equal(t, tt.wantLevel, skill.Level)
		})
	}
}

func TestNormalizeSkillEntry_DepthLimit(t *testing.T) {
	// 深度上限を超えるネストは救済せず None を返す（無限再帰の防止）
	deeplyNested := any(map[string]any{"name": "Go", "level": "登堂入室"})
	for i := 0; i < 4; i++ {
		deeplyNested = []any{deeplyNested}
	}

	assert.False(t, NormalizeSkillEntry(deeplyNested).IsPresent())
}

func TestNormalizeSkillEntry_NeverPanics(t *testing.T) {
	inputs := []any{
		nil,
		"",
		"'''",
		`"\"`,
		"[[[[",
		"{'name':",
		[]any{nil, 1, true},
		map[string]any{"name": 123},
		[]any{[]any{[]any{[]any{[]any{"deep"}}}}},
	}

	for _, input := range inputs {
		assert.NotPanics(t, func() {
			NormalizeSkillEntry(input)
			NormalizeSkillList(input)
		})
	}
}

func TestParseSkillLevel(t *testing.T) {
	assert.Equal(t, SkillLevelNovice, ParseSkillLevel("初窥门径"))
	assert.Equal(t, SkillLevelCompetent, ParseSkillLevel("登堂入室"))
	assert.Equal(t, SkillLevelProficient, ParseSkillLevel("融会贯通"))
	assert.Equal(t, SkillLevelMastery, ParseSkillLevel("炉火纯青"))
	assert.Equal(t, SkillLevelNovice, ParseSkillLevel("unknown"))
	assert.Equal(t, SkillLevelNovice, ParseSkillLevel(""))
}

func TestSkillLevelWeight(t *testing.T) {
	assert.Equal(t, 1.0, SkillLevelNovice.Weight())
	assert.Equal(t, 2.0, SkillLevelCompetent.Weight())
	assert.Equal(t, 3.0, SkillLevelProficient.Weight())
	assert.Equal(t, 4.0, SkillLevelMastery.Weight())
	assert.Equal(t, 0.0, SkillLevel("无效").Weight())
}
