package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"OpportunityValidator/internal/config"
	"OpportunityValidator/internal/ports"
)

// ChatGPTClient implements ports.Agent backed by OpenAI-compatible APIs.
type ChatGPTClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	maxTokens    int
	httpClient   *http.Client
}

var _ ports.Agent = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration.
func NewChatGPTClient(cfg config.AgentConfig) (*ChatGPTClient, error) {
	if cfg.APIKey == "" || cfg.Endpoint == "" || cfg.Model == "" {
		return nil, fmt.Errorf("chatgpt client misconfigured")
	}
	return &ChatGPTClient{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		maxTokens:    cfg.MaxTokens,
		httpClient:   newHTTPClient(cfg.Timeout),
	}, nil
}

// Name identifies the provider inside the registry.
func (c *ChatGPTClient) Name() string {
	return config.ProviderChatGPT
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Run posts the task as a user message and returns the assistant replies.
func (c *ChatGPTClient) Run(ctx context.Context, task string) (ports.AgentResponse, error) {
	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(c.systemPrompt)},
			{"role": "user", "content": task},
		},
	}
	if c.maxTokens > 0 {
		payload["max_completion_tokens"] = c.maxTokens
	}

	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var resp chatCompletionResponse
	if err := postJSON(ctx, c.httpClient, c.endpoint, headers, payload, &resp); err != nil {
		return ports.AgentResponse{}, fmt.Errorf("chatgpt: %w", err)
	}

	out := ports.AgentResponse{}
	for _, choice := range resp.Choices {
		if !strings.EqualFold(choice.Message.Role, "assistant") && choice.Message.Role != "" {
			continue
		}
		out.Messages = append(out.Messages, ports.AgentMessage{
			Type:    ports.MessageTypeAI,
			Content: choice.Message.Content,
		})
	}
	return out, nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You are a research assistant that validates business opportunities and answers in JSON."
	}
	return prompt
}
