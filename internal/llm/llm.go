// Package llm is the outbound contract to a chat-completion provider: ordered
// role/content turns in, the first choice's text out.
package llm

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// JSONSchema constrains the reply to a strict JSON document.
type JSONSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type Request struct {
	Messages []Message
	Schema   *JSONSchema
}

// Response holds the first choice's message content. Content is empty when
// the provider answered without usable text.
type Response struct {
	Content string
}

type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}
