package matching

import "context"

// EmbeddingProvider はテキスト列から埋め込みベクトルを生成する外部協力者。
// 入力と同数・同順のベクトルを返す。部分的な成功は失敗として扱う。
type EmbeddingProvider interface {
	Embed(ctx context.Context, texts []string) ([]Vector, error)
}

// RerankResult は rerank プロバイダが返す1件の結果。
// Index は渡した documents 内の位置を指す。
type RerankResult struct {
	Index          int
	RelevanceScore float64
}

// RerankProvider はクロスエンコーダ型の再順位付けを行う外部協力者
type RerankProvider interface {
	Rerank(ctx context.Context, query string, documents []string) ([]RerankResult, error)
}

// Message はテキスト生成プロバイダへのチャットメッセージ
type Message struct {
	Role    string
	Content string
}

const (
	// RoleSystem はシステムプロンプトのロール
	RoleSystem = "system"
	// RoleUser はユーザープロンプトのロール
	RoleUser = "user"
)

// CompletionClient はテキスト生成を行う外部協力者
type CompletionClient interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
