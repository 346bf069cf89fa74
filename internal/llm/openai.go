package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/roadtales/roadtales/internal/model"
)

// Client implements fact generation and both verification strategies on the
// OpenAI chat completions API.
type Client struct {
	api *openai.Client
	cfg Config
}

// NewClient creates a new backend client. Returns ErrNotConfigured when no
// API key is present so callers can degrade instead of crashing.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("create client: %w", ErrNotConfigured)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 12 * time.Second
	}

	return &Client{
		api: openai.NewClientWithConfig(clientConfig),
		cfg: cfg,
	}, nil
}

// Generate asks the model for one candidate fact about the place.
func (c *Client) Generate(ctx context.Context, req model.FactRequest) (string, error) {
	angle := "a place the traveler is passing through"
	if req.IsDestination {
		angle = "the destination of the trip"
	}

	prompt := fmt.Sprintf(
		"Share one interesting, true fun fact about %s (%s). "+
			"Answer with the fact itself in one or two sentences, no preamble.",
		req.PlaceName, angle)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a road-trip companion who shares concise, verifiable fun facts about places.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   200,
		Temperature: 0.8,
	})
	if err != nil {
		return "", fmt.Errorf("generate fact: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generate fact: empty response")
	}

	fact := strings.TrimSpace(resp.Choices[0].Message.Content)
	if fact == "" {
		return "", fmt.Errorf("generate fact: blank candidate")
	}
	return fact, nil
}

// complete runs one verification prompt and returns the raw model output.
func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: 300,
		// Low temperature: scoring should be stable, not creative.
		Temperature: 0.1,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
