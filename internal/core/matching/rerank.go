package matching

import (
	"context"
	"log/slog"
)

// RankedMatch は再順位付け後の最終候補1件
type RankedMatch struct {
	Candidate MatchCandidate
	Relevance float64
}

// Reranker はクロスエンコーダによる二次順位付けを担う。
// プロバイダ未設定・呼び出し失敗・結果不正のいずれの場合も、
// ルールベースの合成スコア順にフォールバックして必ず結果を返す。
type Reranker struct {
	provider RerankProvider // nil の場合は常にフォールバック
	logger   *slog.Logger
}

// RerankerOption は Reranker のオプション設定
type RerankerOption func(*Reranker)

// WithRerankerLogger は Reranker にロガーを設定する
func WithRerankerLogger(logger *slog.Logger) RerankerOption {
	return func(r *Reranker) {
		r.logger = logger
	}
}

// NewReranker は新しい Reranker を作成する
func NewReranker(provider RerankProvider, opts ...RerankerOption) *Reranker {
	r := &Reranker{
		provider: provider,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Rank は合成スコア降順の候補列から最終 finalK 件を選ぶ。
// 候補の先頭 finalK*2 件をショートリストとして rerank にかけ、
// 関連度降順に最大 finalK 件を返す。フォールバック時は候補の
// 先頭 finalK 件を関連度=合成スコアとして返す。
func (r *Reranker) Rank(ctx context.Context, query string, candidates []MatchCandidate, finalK int) []RankedMatch {
	if len(candidates) == 0 || finalK <= 0 {
		return nil
	}

	shortlist := candidates
	if limit := finalK * 2; len(shortlist) > limit {
		shortlist = shortlist[:limit]
	}

	if r.provider == nil || query == "" {
		return fallbackRanking(candidates, finalK)
	}

	documents := make([]string, 0, len(shortlist))
	for _, c := range shortlist {
		documents = append(documents, c.Document)
	}

	results, err := r.provider.Rerank(ctx, query, documents)
	if err != nil {
		r.logger.Warn("rerank failed, falling back to combined score order", "error", err)
		return fallbackRanking(candidates, finalK)
	}

	ranked := make([]RankedMatch, 0, finalK)
	for _, result := range results {
		if result.Index < 0 || result.Index >= len(shortlist) {
			r.logger.Warn("rerank returned out-of-range index, skipping",
				"index", result.Index, "shortlist", len(shortlist))
			continue
		}
		ranked = append(ranked, RankedMatch{
			Candidate: shortlist[result.Index],
			Relevance: result.RelevanceScore,
		})
		if len(ranked) == finalK {
			break
		}
	}

	if len(ranked) == 0 {
		r.logger.Warn("rerank returned no usable results, falling back to combined score order")
		return fallbackRanking(candidates, finalK)
	}
	return ranked
}

func fallbackRanking(candidates []MatchCandidate, finalK int) []RankedMatch {
	if len(candidates) > finalK {
		candidates = candidates[:finalK]
	}
	ranked := make([]RankedMatch, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, RankedMatch{
			Candidate: c,
			Relevance: c.Breakdown.Combined,
		})
	}
	return ranked
}
