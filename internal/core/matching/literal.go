package matching

import (
	"strconv"
	"strings"
)

// maxLiteralDepth はリテラル式パースのネスト上限
const maxLiteralDepth = 16

// parseLiteral は Python のリテラル式（ast.literal_eval 相当のサブセット）を
// パースする。単一引用符の文字列・リスト・辞書・タプル・数値・True/False/None
// を受け付け、JSONとしては不正な `[{'name': 'Python'}]` のようなデータを救済する。
// 値は JSON パースと同じ表現（map[string]any / []any / float64 / string / bool / nil）
// に写像する。
func parseLiteral(s string) (any, bool) {
	p := &literalParser{input: s}
	p.skipSpaces()
	value, ok := p.parseValue(maxLiteralDepth)
	if !ok {
		return nil, false
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return nil, false
	}
	return value, true
}

type literalParser struct {
	input string
	pos   int
}

func (p *literalParser) parseValue(depth int) (any, bool) {
	if depth <= 0 || p.pos >= len(p.input) {
		return nil, false
	}

	switch c := p.input[p.pos]; {
	case c == '\'' || c == '"':
		return p.parseString()
	case c == '[':
		return p.parseSequence(']', depth)
	case c == '(':
		return p.parseSequence(')', depth)
	case c == '{':
		return p.parseDict(depth)
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return p.parseKeyword()
	}
}

func (p *literalParser) parseString() (any, bool) {
	quote := p.input[p.pos]
	p.pos++

	var sb strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case quote:
			p.pos++
			return sb.String(), true
		case '\\':
			if p.pos+1 >= len(p.input) {
				return nil, false
			}
			p.pos++
			switch esc := p.input[p.pos]; esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(esc)
			}
			p.pos++
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return nil, false
}

func (p *literalParser) parseSequence(closing byte, depth int) (any, bool) {
	p.pos++ // '[' または '('
	items := []any{}

	p.skipSpaces()
	if p.pos < len(p.input) && p.input[p.pos] == closing {
		p.pos++
		return items, true
	}

	for {
		p.skipSpaces()
		value, ok := p.parseValue(depth - 1)
		if !ok {
			return nil, false
		}
		items = append(items, value)

		p.skipSpaces()
		if p.pos >= len(p.input) {
			return nil, false
		}
		switch p.input[p.pos] {
		case ',':
			p.pos++
			// 末尾カンマを許容する
			p.skipSpaces()
			if p.pos < len(p.input) && p.input[p.pos] == closing {
				p.pos++
				return items, true
			}
		case closing:
			p.pos++
			return items, true
		default:
			return nil, false
		}
	}
}

func (p *literalParser) parseDict(depth int) (any, bool) {
	p.pos++ // '{'
	dict := map[string]any{}

	p.skipSpaces()
	if p.pos < len(p.input) && p.input[p.pos] == '}' {
		p.pos++
		return dict, true
	}

	for {
		p.skipSpaces()
		key, ok := p.parseValue(depth - 1)
		if !ok {
			return nil, false
		}
		keyStr, ok := key.(string)
		if !ok {
			// 文字列以外のキーはこのドメインに現れないため不正とみなす
			return nil, false
		}

		p.skipSpaces()
		if p.pos >= len(p.input) || p.input[p.pos] != ':' {
			return nil, false
		}
		p.pos++

		p.skipSpaces()
		value, ok := p.parseValue(depth - 1)
		if !ok {
			return nil, false
		}
		dict[keyStr] = value

		p.skipSpaces()
		if p.pos >= len(p.input) {
			return nil, false
		}
		switch p.input[p.pos] {
		case ',':
			p.pos++
			p.skipSpaces()
			if p.pos < len(p.input) && p.input[p.pos] == '}' {
				p.pos++
				return dict, true
			}
		case '}':
			p.pos++
			return dict, true
		default:
			return nil, false
		}
	}
}

func (p *literalParser) parseNumber() (any, bool) {
	start := p.pos
	if p.input[p.pos] == '-' || p.input[p.pos] == '+' {
		p.pos++
	}
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' {
			p.pos++
			continue
		}
		if (c == '-' || c == '+') && (p.input[p.pos-1] == 'e' || p.input[p.pos-1] == 'E') {
			p.pos++
			continue
		}
		break
	}

	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return nil, false
	}
	return value, true
}

func (p *literalParser) parseKeyword() (any, bool) {
	for _, kw := range []struct {
		text  string
		value any
	}{
		{"True", true},
		{"False", false},
		{"None", nil},
	} {
		if strings.HasPrefix(p.input[p.pos:], kw.text) {
			p.pos += len(kw.text)
			return kw.value, true
		}
	}
	return nil, false
}

func (p *literalParser) skipSpaces() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}
