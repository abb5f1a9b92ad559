package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/sms-spam-pilot/internal/adapters/llm"
	"github.com/mikey/sms-spam-pilot/internal/core"
	"github.com/mikey/sms-spam-pilot/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Client scores messages with a Google Gemini model
type Client struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	maxBodySize   int
	threshold     float64
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClient creates a new Gemini scorer
func NewClient(
	ctx context.Context,
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	threshold float64,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	opts ...option.ClientOption,
) (*Client, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(llm.SystemPrompt))

	return &Client{
		client:        client,
		model:         model,
		maxBodySize:   maxBodySize,
		threshold:     threshold,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Name identifies the backend in logs
func (c *Client) Name() string {
	return "gemini"
}

// Analyze asks the model for a structured spam assessment of body
func (c *Client) Analyze(ctx context.Context, body string) (*llm.Response, error) {
	prompt := llm.Prompt(c.textProcessor.ProcessText(body, c.maxBodySize))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("empty response from Gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return nil, errors.New("empty response from Gemini")
	}

	return llm.ParseResponse(text.String())
}

// Score classifies body; any failure leaves the message unknown
func (c *Client) Score(ctx context.Context, body string) core.Verdict {
	result, err := c.Analyze(ctx, body)
	if err != nil {
		c.logger.Error("Gemini scoring failed", zap.Error(err))
		return core.VerdictUnknown
	}

	c.logger.Debug("Gemini analysis complete",
		zap.Boolp("is_spam", result.IsSpam),
		zap.Float64p("score", result.Score),
		zap.Float64("confidence", result.Confidence))

	return result.Verdict(c.threshold)
}

// Close releases the underlying client
func (c *Client) Close() error {
	return c.client.Close()
}
