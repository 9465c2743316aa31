package siliconflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jinford/campus-match/internal/core/matching"
)

// Reranker は SiliconFlow の rerank API を呼び出す。
// rerank エンドポイントは OpenAI 互換仕様に含まれないため、
// SDKを介さず直接HTTPで叩く。
type Reranker struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewReranker は新しい Reranker を作成する
func NewReranker(cfg Config) (*Reranker, error) {
	cfg = cfg.withDefaults()
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	return &Reranker{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.RerankModel,
	}, nil
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Rerank はクエリと文書列の関連度をクロスエンコーダで採点する。
// 返す結果は関連度の降順で、Index は documents 内の位置を指す。
func (r *Reranker) Rerank(ctx context.Context, query string, documents []string) ([]matching.RerankResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if len(documents) == 0 {
		return nil, fmt.Errorf("no documents provided")
	}

	body, err := json.Marshal(rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: documents,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank API call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("rerank API returned status %d: %s", resp.StatusCode, string(detail))
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode rerank response: %w", err)
	}

	results := make([]matching.RerankResult, 0, len(parsed.Results))
	for _, result := range parsed.Results {
		results = append(results, matching.RerankResult{
			Index:          result.Index,
			RelevanceScore: result.RelevanceScore,
		})
	}

	return results, nil
}

// ModelName はモデル名を返す
func (r *Reranker) ModelName() string {
	return r.model
}

// インターフェース実装の確認
var _ matching.RerankProvider = (*Reranker)(nil)
