// Package llm abstracts the generative backend behind a small Provider
// interface so the dialogue engine never talks to a vendor SDK directly.
package llm

import "context"

// Provider is the abstraction over the text-generation backend.
type Provider interface {
	// Generate sends a prompt with conversation history and returns the
	// generated text. A single attempt; callers degrade on error.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes one generation call.
type Request struct {
	// System is the system instruction framing the model's role.
	System string

	// Messages is the recent conversation window, oldest first.
	Messages []Message

	// MaxTokens caps the response length. Zero means provider default.
	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0.
	Temperature float64
}

// Message is a single turn of conversation context.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response holds the generated output.
type Response struct {
	// Text is the generated reply, trimmed.
	Text string

	// Usage reports token consumption when the backend provides it.
	Usage Usage

	// Model is the model that served the request.
	Model string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
