package matching

import (
	"encoding/json"
	"strings"

	"github.com/samber/mo"
)

// maxSkillParseDepth はネストした技能データの再帰パース深度の上限。
// 元データのネストは高々2段だが、停止保証のため明示的に打ち切る。
const maxSkillParseDepth = 4

// NormalizeSkillList は生の技能リストデータを反復可能なスライスに正規化する。
// 既にスライスならそのまま返す（正規化済み入力は不動点）。文字列なら
// 引用符の层を最大2枚剥がしてエスケープを戻した上で、JSONパース・
// リテラル式パースの順に試み、スライスが得られなければ空を返す。
func NormalizeSkillList(raw any) []any {
	switch v := raw.(type) {
	case []any:
		return v
	case string:
		unwrapped := unescapeQuotes(stripQuoteLayers(strings.TrimSpace(v)))
		if parsed, ok := parseJSONValue(unwrapped); ok {
			if list, ok := parsed.([]any); ok {
				return list
			}
		}
		if parsed, ok := parseLiteral(unwrapped); ok {
			if list, ok := parsed.([]any); ok {
				return list
			}
		}
		return []any{}
	default:
		return []any{}
	}
}

// NormalizeSkillEntry は形状不明の技能エントリを Skill に正規化する。
// レコード・文字列・ネスト配列のいずれも受け付け、どう解釈しても技能名が
// 得られない場合のみ None を返す。panic も error も発生させない。
func NormalizeSkillEntry(raw any) mo.Option[Skill] {
	return normalizeSkillEntry(raw, maxSkillParseDepth)
}

func normalizeSkillEntry(raw any, depth int) mo.Option[Skill] {
	if depth <= 0 {
		return mo.None[Skill]()
	}

	switch v := raw.(type) {
	case map[string]any:
		return skillFromRecord(v)
	case string:
		return skillFromText(v, depth)
	case []any:
		for _, item := range v {
			if skill, ok := normalizeSkillEntry(item, depth-1).Get(); ok && skill.Name != "" {
				return mo.Some(skill)
			}
		}
		return mo.None[Skill]()
	default:
		return mo.None[Skill]()
	}
}

// skillFromRecord は {"name": ..., "level": ...} 形式のレコードから Skill を抽出する
func skillFromRecord(record map[string]any) mo.Option[Skill] {
	name, _ := record["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return mo.None[Skill]()
	}

	level := ""
	if lv, ok := record["level"].(string); ok {
		level = lv
	}

	return mo.Some(Skill{Name: name, Level: ParseSkillLevel(level)})
}

// skillFromText はシリアライズ済みテキストから Skill を復元する。
// 二重引用符・エスケープ済み引用符・配列に包まれたレコードといった
// 崩れた形式を段階的に救済し、どのパースも通らなければテキスト全体を
// 技能名とみなす。
func skillFromText(raw string, depth int) mo.Option[Skill] {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return mo.None[Skill]()
	}

	unwrapped := unescapeQuotes(stripQuoteLayers(trimmed))

	for _, parse := range []func(string) (any, bool){parseJSONValue, parseLiteral} {
		parsed, ok := parse(unwrapped)
		if !ok {
			continue
		}

		switch v := parsed.(type) {
		case map[string]any:
			if _, has := v["name"]; has {
				if skill, ok := skillFromRecord(v).Get(); ok {
					return mo.Some(skill)
				}
			}
		case []any:
			for _, item := range v {
				if skill, ok := normalizeSkillEntry(item, depth-1).Get(); ok {
					return mo.Some(skill)
				}
			}
		}
	}

	// パース不能だが空でないテキストは、それ自体を技能名とみなす
	return mo.Some(Skill{Name: trimmed, Level: SkillLevelNovice})
}

// stripQuoteLayers は先頭末尾を囲う引用符を最大2枚剥がす
func stripQuoteLayers(s string) string {
	for i := 0; i < 2; i++ {
		if len(s) > 1 && isQuoteByte(s[0]) && isQuoteByte(s[len(s)-1]) {
			s = s[1 : len(s)-1]
		}
	}
	return s
}

func isQuoteByte(b byte) bool {
	return b == '\'' || b == '"'
}

// unescapeQuotes はエスケープ済み引用符を元に戻す
func unescapeQuotes(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	return strings.ReplaceAll(s, `\'`, `'`)
}

func parseJSONValue(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}
