package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/baikalhq/groupware/internal/ports"
)

// Config carries provider settings for the chat completion adapter
type Config struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Model     string
	TimeoutMs int
}

// NewChatCompletionService builds the configured provider. Ollama serves an
// OpenAI-compatible API under /v1, so both real providers share one adapter.
func NewChatCompletionService(config Config) (ports.ChatCompletionService, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		if config.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		if config.BaseURL == "" {
			config.BaseURL = "https://api.openai.com/v1"
		}
		if config.Model == "" {
			config.Model = "gpt-4o-mini"
		}
		return newOpenAIAdapter(config), nil
	case "ollama":
		if config.BaseURL == "" {
			config.BaseURL = "http://localhost:11434"
		}
		config.BaseURL = strings.TrimSuffix(config.BaseURL, "/") + "/v1"
		if config.Model == "" {
			config.Model = "llama3.1"
		}
		return newOpenAIAdapter(config), nil
	case "mock", "":
		return NewMockAdapter(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %q", config.Provider)
	}
}

// OpenAIAdapter implements ChatCompletionService against an OpenAI-compatible
// chat completions endpoint
type OpenAIAdapter struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func newOpenAIAdapter(config Config) *OpenAIAdapter {
	if config.TimeoutMs <= 0 {
		config.TimeoutMs = 60000
	}
	return &OpenAIAdapter{
		apiKey:  config.APIKey,
		baseURL: config.BaseURL,
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutMs) * time.Millisecond,
		},
	}
}

type wireFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

// Complete sends one chat completion request with the tool surface attached
func (a *OpenAIAdapter) Complete(ctx context.Context, messages []ports.ChatMessage, tools []ports.ToolSpec) (*ports.ChatCompletion, error) {
	wireMessages := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		wm := wireMessage{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID}
		for _, tc := range m.ToolCalls {
			var wtc wireToolCall
			wtc.ID = tc.ID
			wtc.Type = "function"
			wtc.Function.Name = tc.Name
			wtc.Function.Arguments = string(tc.Arguments)
			wm.ToolCalls = append(wm.ToolCalls, wtc)
		}
		wireMessages = append(wireMessages, wm)
	}

	requestBody := map[string]interface{}{
		"model":       a.model,
		"messages":    wireMessages,
		"temperature": 0.2,
	}
	if len(tools) > 0 {
		wireTools := make([]wireTool, 0, len(tools))
		for _, t := range tools {
			wireTools = append(wireTools, wireTool{
				Type: "function",
				Function: wireFunction{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			})
		}
		requestBody["tools"] = wireTools
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call chat completions API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("chat completions API error: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content   string         `json:"content"`
				ToolCalls []wireToolCall `json:"tool_calls"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	message := response.Choices[0].Message
	completion := &ports.ChatCompletion{Content: message.Content}
	for _, tc := range message.ToolCalls {
		completion.ToolCalls = append(completion.ToolCalls, ports.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	return completion, nil
}

// IsHealthy checks endpoint connectivity
func (a *OpenAIAdapter) IsHealthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", a.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chat completions health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chat completions API returned status: %d", resp.StatusCode)
	}
	return nil
}
