package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikey/sms-spam-pilot/internal/adapters/llm"
	"github.com/mikey/sms-spam-pilot/internal/core"
	"github.com/mikey/sms-spam-pilot/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client scores messages with an OpenAI chat model
type Client struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	threshold     float64
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClient creates a new OpenAI scorer
func NewClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	threshold float64,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Client {
	return &Client{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		threshold:     threshold,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Name identifies the backend in logs
func (c *Client) Name() string {
	return "openai"
}

// Analyze asks the model for a structured spam assessment of body
func (c *Client) Analyze(ctx context.Context, body string) (*llm.Response, error) {
	prompt := llm.Prompt(c.textProcessor.ProcessText(body, c.maxBodySize))

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: llm.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty response from OpenAI")
	}

	return llm.ParseResponse(resp.Choices[0].Message.Content)
}

// Score classifies body; any failure leaves the message unknown
func (c *Client) Score(ctx context.Context, body string) core.Verdict {
	result, err := c.Analyze(ctx, body)
	if err != nil {
		c.logger.Error("OpenAI scoring failed", zap.Error(err))
		return core.VerdictUnknown
	}

	c.logger.Debug("OpenAI analysis complete",
		zap.Boolp("is_spam", result.IsSpam),
		zap.Float64p("score", result.Score),
		zap.Float64("confidence", result.Confidence),
		zap.String("explanation", result.Explanation))

	return result.Verdict(c.threshold)
}
