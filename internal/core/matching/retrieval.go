package matching

import (
	"math"
	"sort"
)

// CosineSimilarity は2つのベクトルのコサイン類似度を返す。
// 次元不一致またはゼロノルムの場合は0を返す。
func CosineSimilarity(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denominator := math.Sqrt(float64(normA)) * math.Sqrt(float64(normB))
	if denominator == 0 {
		return 0
	}

	return float64(dot) / denominator
}

// RetrievedCandidate は一次検索で取得した候補（プール内位置と類似度）
type RetrievedCandidate struct {
	Index      int
	Similarity float64
}

// TopKBySimilarity はクエリベクトルとの類似度上位k件を降順で返す。
// 無効（次元不正・NaN/Inf・プレースホルダ）なベクトルの候補は除外する。
// 同値の場合はプール内の出現順を保つ。
func TopKBySimilarity(query Vector, vectors []Vector, k, dimension int) []RetrievedCandidate {
	results := make([]RetrievedCandidate, 0, len(vectors))
	for i, v := range vectors {
		if !v.Valid(dimension) {
			continue
		}
		results = append(results, RetrievedCandidate{
			Index:      i,
			Similarity: CosineSimilarity(query, v),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}
