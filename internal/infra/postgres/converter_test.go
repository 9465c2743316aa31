package postgres

import (
	"testing"

	pgvector "github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
)

func TestRawJSON(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want any
	}{
		{
			name: "nil は nil のまま",
			data: nil,
			want: nil,
		},
		{
			name: "空バイト列も nil",
			data: []byte{},
			want: nil,
		},
		{
			name: "有効なJSON配列はデコードされる",
			data: []byte(`[{"name": "Python", "level": "登堂入室"}]`),
			want: []any{map[string]any{"name": "Python", "level": "登堂入室"}},
		},
		{
			name: "有効なJSON文字列",
			data: []byte(`"[{'name': 'Go'}]"`),
			want: "[{'name': 'Go'}]",
		},
		{
			name: "壊れたJSONは文字列のまま通す",
			data: []byte(`{broken`),
			want: "{broken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rawJSON(tt.data))
		})
	}
}

func TestRawEmbedding(t *testing.T) {
	assert.Nil(t, rawEmbedding(nil))

	v := pgvector.NewVector([]float32{1, 2, 3})
	assert.Equal(t, []float32{1, 2, 3}, rawEmbedding(&v))
}
