package postgres

import (
	"encoding/json"

	pgvector "github.com/pgvector/pgvector-go"
)

// rawJSON は jsonb カラムの生バイト列をドメイン層へ渡す値に変換する。
// 有効なJSONはデコード結果を、壊れたJSONは文字列のまま返す
// （下流の技能正規化が文字列入力も受け付けるため、ここでは落とさない）。
func rawJSON(data []byte) any {
	if len(data) == 0 {
		return nil
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return string(data)
	}
	return value
}

// rawEmbedding は nullable な vector カラムをドメイン層へ渡す値に変換する
func rawEmbedding(v *pgvector.Vector) any {
	if v == nil {
		return nil
	}
	return v.Slice()
}
