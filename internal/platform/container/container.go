package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jinford/campus-match/internal/core/matching"
	"github.com/jinford/campus-match/internal/infra/postgres"
	"github.com/jinford/campus-match/internal/infra/siliconflow"
	"github.com/jinford/campus-match/internal/platform/config"
	"github.com/jinford/campus-match/internal/platform/database"
)

// ServiceContainer はアプリケーションの依存関係を保持する。
// SiliconFlow のAPIキーが未設定の場合、AIプロバイダは nil のまま組み立てられ、
// MatchService はルールベースのスコアリングのみで動作する。
type ServiceContainer struct {
	MatchService *matching.MatchService
	Repository   matching.Repository

	logger   *slog.Logger
	database *database.DB
}

type containerOptions struct {
	logger           *slog.Logger
	repository       matching.Repository
	embedder         matching.EmbeddingProvider
	rerankProvider   matching.RerankProvider
	completionClient matching.CompletionClient
}

// ContainerOption は ServiceContainer 構築時のオプション
type ContainerOption func(*containerOptions)

// WithContainerLogger はロガーを差し替える
func WithContainerLogger(logger *slog.Logger) ContainerOption {
	return func(opts *containerOptions) {
		opts.logger = logger
	}
}

// WithContainerRepository はリポジトリを差し替える（テスト用）
func WithContainerRepository(repo matching.Repository) ContainerOption {
	return func(opts *containerOptions) {
		opts.repository = repo
	}
}

// WithContainerEmbedder は埋め込みプロバイダを差し替える
func WithContainerEmbedder(embedder matching.EmbeddingProvider) ContainerOption {
	return func(opts *containerOptions) {
		opts.embedder = embedder
	}
}

// WithContainerReranker は rerank プロバイダを差し替える
func WithContainerReranker(provider matching.RerankProvider) ContainerOption {
	return func(opts *containerOptions) {
		opts.rerankProvider = provider
	}
}

// WithContainerCompletionClient はテキスト生成クライアントを差し替える
func WithContainerCompletionClient(client matching.CompletionClient) ContainerOption {
	return func(opts *containerOptions) {
		opts.completionClient = client
	}
}

// NewContainer は設定からコンテナを生成する
func NewContainer(ctx context.Context, cfg *config.Config, opts ...ContainerOption) (*ServiceContainer, error) {
	options := containerOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	var db *database.DB
	repo := options.repository
	if repo == nil {
		var err error
		db, err = database.New(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repo = postgres.NewMatchRepository(db.Pool)
	}

	embedder := options.embedder
	rerankProvider := options.rerankProvider
	completionClient := options.completionClient

	if cfg.SiliconFlow.Enabled() {
		sfConfig := siliconflow.Config{
			APIKey:             cfg.SiliconFlow.APIKey,
			BaseURL:            cfg.SiliconFlow.BaseURL,
			EmbeddingModel:     cfg.SiliconFlow.EmbeddingModel,
			EmbeddingDimension: cfg.SiliconFlow.EmbeddingDimension,
			RerankModel:        cfg.SiliconFlow.RerankModel,
			ChatModel:          cfg.SiliconFlow.ChatModel,
			Timeout:            cfg.SiliconFlow.Timeout,
		}

		if embedder == nil {
			sfEmbedder, err := siliconflow.NewEmbedder(sfConfig)
			if err != nil {
				closeDB(db)
				return nil, fmt.Errorf("failed to create embedder: %w", err)
			}
			embedder = sfEmbedder
		}
		if rerankProvider == nil {
			sfReranker, err := siliconflow.NewReranker(sfConfig)
			if err != nil {
				closeDB(db)
				return nil, fmt.Errorf("failed to create reranker: %w", err)
			}
			rerankProvider = sfReranker
		}
		if completionClient == nil {
			sfCompletion, err := siliconflow.NewCompletionClient(sfConfig)
			if err != nil {
				closeDB(db)
				return nil, fmt.Errorf("failed to create completion client: %w", err)
			}
			completionClient = sfCompletion
		}
	} else {
		options.logger.Warn("SiliconFlow API key not set, AI features are disabled")
	}

	matchingConfig := matching.DefaultMatchingConfig()
	matchingConfig.Dimension = cfg.SiliconFlow.EmbeddingDimension
	if cfg.Matching.InitialK > 0 {
		matchingConfig.InitialK = cfg.Matching.InitialK
	}
	if cfg.Matching.FinalK > 0 {
		matchingConfig.FinalK = cfg.Matching.FinalK
	}
	if cfg.Matching.EmbedWorkers > 0 {
		matchingConfig.EmbedWorkers = cfg.Matching.EmbedWorkers
	}

	matchService := matching.NewMatchService(
		repo,
		embedder,
		rerankProvider,
		completionClient,
		matchingConfig,
		matching.WithMatchLogger(options.logger),
	)

	return &ServiceContainer{
		MatchService: matchService,
		Repository:   repo,
		logger:       options.logger,
		database:     db,
	}, nil
}

// Close はコンテナが保持するリソースを解放する
func (c *ServiceContainer) Close() {
	closeDB(c.database)
}

func closeDB(db *database.DB) {
	if db != nil {
		db.Close()
	}
}
