package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/model"
	"github.com/NikDoesSEO/chatgpt-visiblity-tracker/internal/util"
)

// OpenAIClient implements Client against the OpenAI Chat Completions API
type OpenAIClient struct {
	client *openai.Client
	config model.OpenAIConfig
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config model.OpenAIConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	httpClient, err := util.NewHTTPClient(config.Timeout, config.HTTPProxy, config.SOCKSProxy)
	if err != nil {
		return nil, fmt.Errorf("build http client: %w", err)
	}
	clientConfig.HTTPClient = httpClient

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// IsAvailable checks if the client is properly configured by listing models
func (c *OpenAIClient) IsAvailable(ctx context.Context) bool {
	_, err := c.client.ListModels(ctx)
	return err == nil
}

// Complete submits the query's prompt and returns the raw text response.
// Failures come back as *APIError so the batch runner can record them
// per-row without aborting.
func (c *OpenAIClient) Complete(ctx context.Context, query model.Query) (*model.Response, error) {
	chatModel := query.Model
	if chatModel == "" {
		chatModel = c.config.Model
	}

	maxTokens := c.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 800
	}

	timeout := c.config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: query.Prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: c.config.Temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctxWithTimeout, req)
	if err != nil {
		return nil, classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &APIError{Kind: KindMalformed, Err: fmt.Errorf("response contained no choices")}
	}

	return &model.Response{
		Query:      query,
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
		ReceivedAt: time.Now().UTC(),
	}, nil
}
