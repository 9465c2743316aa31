package siliconflow

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/pkoukk/tiktoken-go"

	"github.com/jinford/campus-match/internal/core/matching"
)

const (
	// maxBatchSize は1リクエストで送れる最大テキスト数
	maxBatchSize = 100

	// maxInputTokens は埋め込みモデルの入力上限（bge-m3 は 8192 トークン）
	maxInputTokens = 8192
)

// Embedder は SiliconFlow の OpenAI 互換 API でテキストをベクトルに変換する
type Embedder struct {
	client    openai.Client
	model     string
	dimension int
	encoding  *tiktoken.Tiktoken
}

// NewEmbedder は新しい Embedder を作成する
func NewEmbedder(cfg Config) (*Embedder, error) {
	cfg = cfg.withDefaults()
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	// 入力上限を超えるテキストの切り詰めに使う。bge-m3 固有の
	// トークナイザではないが、上限判定の近似としては十分保守的。
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding: %w", err)
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(cfg.Timeout),
	)

	return &Embedder{
		client:    client,
		model:     cfg.EmbeddingModel,
		dimension: cfg.EmbeddingDimension,
		encoding:  encoding,
	}, nil
}

// Embed はテキスト列の埋め込みをバッチ生成する。
// 返すベクトルは入力と同数・同順で、件数が合わない応答はエラーにする。
func (e *Embedder) Embed(ctx context.Context, texts []string) ([]matching.Vector, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided")
	}

	vectors := make([]matching.Vector, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

func (e *Embedder) embedBatch(ctx context.Context, texts []string) ([]matching.Vector, error) {
	input := make([]string, len(texts))
	for i, text := range texts {
		input[i] = e.truncate(text)
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: input,
		},
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response size mismatch: got %d, want %d", len(resp.Data), len(texts))
	}

	vectors := make([]matching.Vector, len(resp.Data))
	for _, data := range resp.Data {
		vector := make(matching.Vector, len(data.Embedding))
		for i, v := range data.Embedding {
			vector[i] = float32(v)
		}
		vectors[data.Index] = vector
	}

	return vectors, nil
}

// truncate はトークン数が上限を超えるテキストを切り詰める
func (e *Embedder) truncate(text string) string {
	tokens := e.encoding.Encode(text, nil, nil)
	if len(tokens) <= maxInputTokens {
		return text
	}
	return e.encoding.Decode(tokens[:maxInputTokens])
}

// ModelName はモデル名を返す
func (e *Embedder) ModelName() string {
	return e.model
}

// Dimension はベクトル次元数を返す
func (e *Embedder) Dimension() int {
	return e.dimension
}

// インターフェース実装の確認
var _ matching.EmbeddingProvider = (*Embedder)(nil)
