package siliconflow

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/jinford/campus-match/internal/core/matching"
)

// CompletionClient は SiliconFlow の OpenAI 互換 API でテキストを生成する
type CompletionClient struct {
	client openai.Client
	model  string
}

// NewCompletionClient は新しい CompletionClient を作成する
func NewCompletionClient(cfg Config) (*CompletionClient, error) {
	cfg = cfg.withDefaults()
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(cfg.Timeout),
	)

	return &CompletionClient{
		client: client,
		model:  cfg.ChatModel,
	}, nil
}

// Complete はチャットメッセージ列からテキストを生成する
func (c *CompletionClient) Complete(ctx context.Context, messages []matching.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
	}
	for _, message := range messages {
		switch message.Role {
		case matching.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(message.Content))
		case matching.RoleUser:
			params.Messages = append(params.Messages, openai.UserMessage(message.Content))
		default:
			return "", fmt.Errorf("unsupported message role: %s", message.Role)
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("SiliconFlow API call failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return completion.Choices[0].Message.Content, nil
}

// ModelName はモデル名を返す
func (c *CompletionClient) ModelName() string {
	return c.model
}

// インターフェース実装の確認
var _ matching.CompletionClient = (*CompletionClient)(nil)
