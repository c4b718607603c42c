// Package provider sends chat-completion requests to a hosted
// OpenAI-compatible endpoint and classifies the ways that can fail.
package provider

import (
	"context"
	"encoding/json"
)

// Role identifies the sender of a message in the chat conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the chat conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the payload of one chat-completion call. Messages are
// kept in conversation order.
type CompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// JSON returns the compact wire form of the request.
func (r CompletionRequest) JSON() ([]byte, error) {
	return json.Marshal(r)
}

// Usage holds token counts reported by the remote service.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Response holds the message of the first choice and token usage.
type Response struct {
	Message Message
	Usage   Usage
}

// Provider is the interface for chat-completion backends. Implementations must
// be safe for concurrent use.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*Response, error)
}
