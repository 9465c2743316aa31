package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// Database設定
	Database DatabaseConfig

	// SiliconFlow API設定（埋め込み・rerank・テキスト生成）
	SiliconFlow SiliconFlowConfig

	// マッチングパラメータ
	Matching MatchingConfig

	// ログ設定
	Log LogConfig
}

// DatabaseConfig はデータベース接続設定
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// SiliconFlowConfig はSiliconFlow API設定。
// APIKeyが空の場合、AI連携（埋め込み再生成・rerank・理由文生成）は
// 無効化され、ルールベースのマッチングのみで動作する。
type SiliconFlowConfig struct {
	APIKey             string
	BaseURL            string
	EmbeddingModel     string
	EmbeddingDimension int
	RerankModel        string
	ChatModel          string
	Timeout            time.Duration
}

// Enabled はAI連携が有効かどうかを返します
func (c SiliconFlowConfig) Enabled() bool {
	return c.APIKey != ""
}

// MatchingConfig はマッチングパラメータの上書き設定
type MatchingConfig struct {
	InitialK     int
	FinalK       int
	EmbedWorkers int
}

// LogConfig はログ出力設定
type LogConfig struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json" or "text"
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "campusmatch"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "campusmatch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		SiliconFlow: SiliconFlowConfig{
			APIKey:             getEnv("SILICONFLOW_API_KEY", ""),
			BaseURL:            getEnv("SILICONFLOW_BASE_URL", "https://api.siliconflow.cn/v1"),
			EmbeddingModel:     getEnv("SILICONFLOW_EMBEDDING_MODEL", "BAAI/bge-m3"),
			EmbeddingDimension: getEnvAsInt("SILICONFLOW_EMBEDDING_DIMENSION", 1024),
			RerankModel:        getEnv("SILICONFLOW_RERANK_MODEL", "BAAI/bge-reranker-v2-m3"),
			ChatModel:          getEnv("SILICONFLOW_CHAT_MODEL", "deepseek-ai/DeepSeek-V3"),
			Timeout:            time.Duration(getEnvAsInt("SILICONFLOW_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Matching: MatchingConfig{
			InitialK:     getEnvAsInt("MATCHING_INITIAL_K", 50),
			FinalK:       getEnvAsInt("MATCHING_FINAL_K", 3),
			EmbedWorkers: getEnvAsInt("MATCHING_EMBED_WORKERS", 4),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
