package llm

import (
	"context"
	"fmt"
	"net/http"

	"OpportunityValidator/internal/config"
	"OpportunityValidator/internal/ports"
)

const anthropicVersion = "2023-06-01"

// AnthropicClient implements ports.Agent on top of the Messages API.
type AnthropicClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	maxTokens    int
	httpClient   *http.Client
}

var _ ports.Agent = (*AnthropicClient)(nil)

// NewAnthropicClient builds a client from configuration.
func NewAnthropicClient(cfg config.AgentConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" || cfg.Endpoint == "" || cfg.Model == "" {
		return nil, fmt.Errorf("anthropic client misconfigured")
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicClient{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		maxTokens:    maxTokens,
		httpClient:   newHTTPClient(cfg.Timeout),
	}, nil
}

// Name identifies the provider inside the registry.
func (c *AnthropicClient) Name() string {
	return config.ProviderAnthropic
}

type messagesResponse struct {
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Run sends the task as a single user turn.
func (c *AnthropicClient) Run(ctx context.Context, task string) (ports.AgentResponse, error) {
	payload := map[string]any{
		"model":      c.model,
		"max_tokens": c.maxTokens,
		"system":     safePrompt(c.systemPrompt),
		"messages": []map[string]string{
			{"role": "user", "content": task},
		},
	}

	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var resp messagesResponse
	if err := postJSON(ctx, c.httpClient, c.endpoint, headers, payload, &resp); err != nil {
		return ports.AgentResponse{}, fmt.Errorf("anthropic: %w", err)
	}

	out := ports.AgentResponse{}
	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		out.Messages = append(out.Messages, ports.AgentMessage{
			Type:    ports.MessageTypeAI,
			Content: block.Text,
		})
	}
	return out, nil
}
