package matching

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// FallbackRationale は得点内訳を埋め込んだ定型の理由文を返す。
// LLMが利用できない・失敗した場合でも、理由フィールドは常に
// この定型文で埋まる。
func FallbackRationale(b ScoreBreakdown) string {
	return fmt.Sprintf("基于AI分析，匹配得分 - 相关性：%.2f，技能：%.2f，时间：%.2f，位置：%.2f",
		b.Similarity, b.Proficiency, b.Time, b.Location)
}

// RationaleGenerator は最終候補ごとの匹配理由文をLLMで生成する。
// クライアント未設定・呼び出し失敗・空応答のいずれの場合も
// 定型文にフォールバックし、error を返さない。
type RationaleGenerator struct {
	client CompletionClient // nil の場合は常に定型文
	logger *slog.Logger
}

// RationaleGeneratorOption は RationaleGenerator のオプション設定
type RationaleGeneratorOption func(*RationaleGenerator)

// WithRationaleLogger は RationaleGenerator にロガーを設定する
func WithRationaleLogger(logger *slog.Logger) RationaleGeneratorOption {
	return func(g *RationaleGenerator) {
		g.logger = logger
	}
}

// NewRationaleGenerator は新しい RationaleGenerator を作成する
func NewRationaleGenerator(client CompletionClient, opts ...RationaleGeneratorOption) *RationaleGenerator {
	g := &RationaleGenerator{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Generate は文脈情報から理由文を生成する
func (g *RationaleGenerator) Generate(ctx context.Context, rc RationaleContext) string {
	if g.client == nil {
		return FallbackRationale(rc.Breakdown)
	}

	response, err := g.client.Complete(ctx, BuildRationaleMessages(rc))
	if err != nil {
		g.logger.Warn("rationale generation failed, using fallback",
			"target", rc.TargetTitle, "error", err)
		return FallbackRationale(rc.Breakdown)
	}
	if strings.TrimSpace(response) == "" {
		g.logger.Warn("rationale generation returned empty response, using fallback",
			"target", rc.TargetTitle)
		return FallbackRationale(rc.Breakdown)
	}
	return response
}
