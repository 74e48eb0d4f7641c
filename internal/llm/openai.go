package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"firerisk/pkg/types"

	"github.com/go-resty/resty/v2"
)

// OpenAIClient calls any OpenAI-compatible /chat/completions endpoint.
// No timeout or retry is configured here; callers own cancellation through ctx.
type OpenAIClient struct {
	http  *resty.Client
	model string
}

// NewOpenAIClient builds a client. baseURL should include the /v1 prefix.
func NewOpenAIClient(baseURL, apiKey, model string) *OpenAIClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(baseURL), "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if key := strings.TrimSpace(apiKey); key != "" {
		client.SetAuthToken(key)
	}

	return &OpenAIClient{
		http:  client,
		model: strings.TrimSpace(model),
	}
}

type chatRequest struct {
	Model          string          `json:"model,omitempty"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	body := chatRequest{
		Model:    c.model,
		Messages: req.Messages,
	}
	if req.Schema != nil {
		body.ResponseFormat = &responseFormat{Type: "json_schema", JSONSchema: req.Schema}
	}

	var (
		result  chatResponse
		failure errorResponse
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&failure).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("%w: openai-compat request: %w", types.ErrExternalService, err)
	}

	if resp.IsError() {
		if failure.Error.Message != "" {
			return nil, fmt.Errorf("%w: openai-compat api error: %s", types.ErrExternalService, failure.Error.Message)
		}
		return nil, fmt.Errorf("%w: openai-compat api error: %s", types.ErrExternalService, resp.Status())
	}

	if len(result.Choices) == 0 {
		return &Response{}, nil
	}

	// Some providers send structured content parts instead of a string; only
	// plain string content is usable.
	var content string
	if err := json.Unmarshal(result.Choices[0].Message.Content, &content); err != nil {
		return &Response{}, nil
	}

	return &Response{Content: content}, nil
}
