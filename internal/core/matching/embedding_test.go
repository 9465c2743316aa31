package matching

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{AddSource: false}))
}

type stubEmbeddingProvider struct {
	vectors [][]float32
	err     error

	called    bool
	lastTexts []string
}

func (p *stubEmbeddingProvider) Embed(ctx context.Context, texts []string) ([]Vector, error) {
	p.called = true
	p.lastTexts = texts
	if p.err != nil {
		return nil, p.err
	}
	result := make([]Vector, len(p.vectors))
	for i, v := range p.vectors {
		result[i] = Vector(v)
	}
	return result, nil
}

func TestVectorValid(t *testing.T) {
	assert.True(t, Vector{1, 0, 0}.Valid(3))
	assert.False(t, Vector{1, 0}.Valid(3), "次元不一致")
	assert.False(t, Vector{0, 0, 0}.Valid(3), "プレースホルダ")
	assert.False(t, Vector{1, float32(math.NaN()), 0}.Valid(3), "NaN")
	assert.False(t, Vector{1, float32(math.Inf(1)), 0}.Valid(3), "Inf")
	assert.False(t, Vector(nil).Valid(3))
}

func TestCoerceVector(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Vector
	}{
		{name: "Vector", raw: Vector{1, 2, 3}, want: Vector{1, 2, 3}},
		{name: "float32スライス", raw: []float32{1, 2, 3}, want: Vector{1, 2, 3}},
		{name: "float64スライス", raw: []float64{1, 2, 3}, want: Vector{1, 2, 3}},
		{name: "anyスライス", raw: []any{1.0, 2.0, 3.0}, want: Vector{1, 2, 3}},
		{name: "JSON文字列", raw: "[1, 2, 3]", want: Vector{1, 2, 3}},
		{name: "JSONバイト列", raw: []byte("[1, 2, 3]"), want: Vector{1, 2, 3}},
		{name: "数値以外を含むanyスライス", raw: []any{1.0, "x"}, want: nil},
		{name: "壊れたJSON", raw: "[1, 2,", want: nil},
		{name: "非対応の型", raw: 42, want: nil},
		{name: "nil", raw: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceVector(tt.raw))
		})
	}
}

func TestEmbeddingResolver_StoredVectorIsUsed(t *testing.T) {
	provider := &stubEmbeddingProvider{}
	resolver := NewEmbeddingResolver(provider, 3, WithResolverLogger(discardLogger()))

	vector, regenerated := resolver.Resolve(context.Background(), "student", uuid.New(), []float64{1, 2, 3}, "text")

	assert.Equal(t, Vector{1, 2, 3}, vector)
	assert.False(t, regenerated)
	assert.False(t, provider.called, "有効な保存値があればプロバイダは呼ばない")
}

func TestEmbeddingResolver_RegeneratesInvalidVector(t *testing.T) {
	provider := &stubEmbeddingProvider{vectors: [][]float32{{0.5, 0.5, 0.5}}}
	resolver := NewEmbeddingResolver(provider, 3, WithResolverLogger(discardLogger()))

	vector, regenerated := resolver.Resolve(context.Background(), "project", uuid.New(), []float64{0, 0, 0}, "統合テキスト")

	require.True(t, provider.called)
	assert.Equal(t, []string{"統合テキスト"}, provider.lastTexts)
	assert.Equal(t, Vector{0.5, 0.5, 0.5}, vector)
	assert.True(t, regenerated)
}

func TestEmbeddingResolver_FallsBackToPlaceholder(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubEmbeddingProvider
	}{
		{name: "プロバイダのエラー", provider: &stubEmbeddingProvider{err: errors.New("api down")}},
		{name: "空の応答", provider: &stubEmbeddingProvider{vectors: [][]float32{}}},
		{name: "次元不正の応答", provider: &stubEmbeddingProvider{vectors: [][]float32{{1, 2}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewEmbeddingResolver(tt.provider, 3, WithResolverLogger(discardLogger()))

			vector, regenerated := resolver.Resolve(context.Background(), "course", uuid.New(), nil, "text")

			assert.Equal(t, Vector{0, 0, 0}, vector)
			assert.False(t, regenerated)
		})
	}
}

func TestEmbeddingResolver_NilProvider(t *testing.T) {
	resolver := NewEmbeddingResolver(nil, 3, WithResolverLogger(discardLogger()))

	vector, regenerated := resolver.Resolve(context.Background(), "student", uuid.New(), "broken", "text")

	assert.True(t, vector.IsZero())
	assert.False(t, regenerated)
}
