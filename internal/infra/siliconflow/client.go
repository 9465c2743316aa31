package siliconflow

import (
	"errors"
	"time"
)

const (
	// DefaultBaseURL は SiliconFlow API のデフォルトエンドポイント
	DefaultBaseURL = "https://api.siliconflow.cn/v1"

	// DefaultEmbeddingModel はデフォルトの埋め込みモデル
	DefaultEmbeddingModel = "BAAI/bge-m3"

	// DefaultEmbeddingDimension は bge-m3 の出力次元
	DefaultEmbeddingDimension = 1024

	// DefaultRerankModel はデフォルトの rerank モデル
	DefaultRerankModel = "BAAI/bge-reranker-v2-m3"

	// DefaultChatModel はデフォルトのテキスト生成モデル
	DefaultChatModel = "deepseek-ai/DeepSeek-V3"

	// DefaultTimeout はAPI呼び出しのデフォルトタイムアウト
	DefaultTimeout = 30 * time.Second
)

// ErrAPIKeyNotSet はAPIキーが設定されていない場合のエラー
var ErrAPIKeyNotSet = errors.New("SiliconFlow API key not set")

// Config は SiliconFlow クライアント群の共通設定
type Config struct {
	APIKey             string
	BaseURL            string
	EmbeddingModel     string
	EmbeddingDimension int
	RerankModel        string
	ChatModel          string
	Timeout            time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = DefaultEmbeddingModel
	}
	if c.EmbeddingDimension <= 0 {
		c.EmbeddingDimension = DefaultEmbeddingDimension
	}
	if c.RerankModel == "" {
		c.RerankModel = DefaultRerankModel
	}
	if c.ChatModel == "" {
		c.ChatModel = DefaultChatModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
