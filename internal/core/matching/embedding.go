package matching

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"

	"github.com/google/uuid"
)

// Vector は固定長の埋め込みベクトル。全要素ゼロのベクトルは
// 「未計算」を表すプレースホルダとして扱う。
type Vector []float32

// IsZero は全要素がゼロ（または空）かどうかを返す
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Valid はベクトルが指定次元・有限値・非プレースホルダであることを検証する
func (v Vector) Valid(dimension int) bool {
	if len(v) != dimension {
		return false
	}
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return !v.IsZero()
}

// coerceVector は保存されている生の埋め込み値を Vector に変換する。
// 数値スライス・JSONエンコード済みテキスト・生のシーケンスを受け付け、
// 変換できない場合は nil を返す。
func coerceVector(raw any) Vector {
	switch v := raw.(type) {
	case Vector:
		return v
	case []float32:
		return Vector(v)
	case []float64:
		vector := make(Vector, len(v))
		for i, x := range v {
			vector[i] = float32(x)
		}
		return vector
	case []any:
		vector := make(Vector, len(v))
		for i, item := range v {
			f, ok := item.(float64)
			if !ok {
				return nil
			}
			vector[i] = float32(f)
		}
		return vector
	case string:
		return coerceVectorJSON([]byte(v))
	case []byte:
		return coerceVectorJSON(v)
	default:
		return nil
	}
}

func coerceVectorJSON(data []byte) Vector {
	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return nil
	}
	vector := make(Vector, len(values))
	for i, x := range values {
		vector[i] = float32(x)
	}
	return vector
}

// EmbeddingResolver は保存済み埋め込みの検証と再生成を担う。
// 保存値が欠損・次元不正・NaN/Inf・全ゼロのいずれかであれば、プロバイダが
// 利用可能な場合に限り統合テキストから再生成を試みる。全ての失敗経路は
// プレースホルダに退避し、error を返さない。
type EmbeddingResolver struct {
	provider  EmbeddingProvider // nil の場合は再生成しない
	dimension int
	logger    *slog.Logger
}

// EmbeddingResolverOption は EmbeddingResolver のオプション設定
type EmbeddingResolverOption func(*EmbeddingResolver)

// WithResolverLogger は EmbeddingResolver にロガーを設定する
func WithResolverLogger(logger *slog.Logger) EmbeddingResolverOption {
	return func(r *EmbeddingResolver) {
		r.logger = logger
	}
}

// NewEmbeddingResolver は新しい EmbeddingResolver を作成する
func NewEmbeddingResolver(provider EmbeddingProvider, dimension int, opts ...EmbeddingResolverOption) *EmbeddingResolver {
	r := &EmbeddingResolver{
		provider:  provider,
		dimension: dimension,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Placeholder は「埋め込み未計算」を表す全ゼロベクトルを返す
func (r *EmbeddingResolver) Placeholder() Vector {
	return make(Vector, r.dimension)
}

// Resolve は保存値を検証し、必要なら再生成した埋め込みを返す。
// 2つ目の戻り値は再生成が行われたことを示し、呼び出し側が永続化を
// 判断するために使う（本関数は永続化しない）。
func (r *EmbeddingResolver) Resolve(ctx context.Context, kind string, id uuid.UUID, raw any, combinedText string) (Vector, bool) {
	if vector := coerceVector(raw); vector.Valid(r.dimension) {
		return vector, false
	}

	if r.provider == nil {
		r.logger.Warn("stored embedding is invalid and no provider is configured",
			"kind", kind, "id", id.String())
		return r.Placeholder(), false
	}

	r.logger.Warn("stored embedding is invalid, regenerating",
		"kind", kind, "id", id.String())

	vectors, err := r.provider.Embed(ctx, []string{combinedText})
	if err != nil {
		r.logger.Warn("embedding regeneration failed",
			"kind", kind, "id", id.String(), "error", err)
		return r.Placeholder(), false
	}
	if len(vectors) == 0 {
		r.logger.Warn("embedding provider returned empty response",
			"kind", kind, "id", id.String())
		return r.Placeholder(), false
	}

	if vector := vectors[0]; vector.Valid(r.dimension) {
		return vector, true
	}

	r.logger.Warn("regenerated embedding is invalid",
		"kind", kind, "id", id.String())
	return r.Placeholder(), false
}
