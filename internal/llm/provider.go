// Package llm talks to the language models that write question banks.
// Providers return JSON checked against the request's schema; decorators
// add retries and request logging.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured output for one prompt.
type Provider interface {
	// Generate sends req and returns the model output. With req.Schema set
	// the output has already been checked against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name is the provider name, e.g. "anthropic".
	Name() string

	// ModelID is the model requests are sent to.
	ModelID() string
}

// Request is a single-turn generation request.
type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

// Message is one turn of the prompt.
type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StopReason is why the model stopped generating.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is the model output of a successful request.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason StopReason
}

// Usage is the token count of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total is the sum of input and output tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

type purposeKey struct{}

// Purpose labels what a request is for in the request log.
type Purpose string

const (
	PurposeBankGen Purpose = "bank-gen"
	PurposeUnknown Purpose = "unknown"
)

// WithPurpose tags ctx with p.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the purpose tagged on ctx, or PurposeUnknown.
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok {
		return p
	}
	return PurposeUnknown
}

// complete turns raw provider output into a Response. Truncated output and
// output that fails the schema become errors.
func complete(provider string, req Request, content json.RawMessage, stop StopReason, usage Usage, model string) (*Response, error) {
	if stop == StopMaxTokens {
		return nil, &Error{Provider: provider, Kind: ErrTruncated, Content: content}
	}
	if req.Schema != nil {
		if err := req.Schema.Check(content); err != nil {
			return nil, &Error{Provider: provider, Kind: ErrBadOutput, Content: content, Err: err}
		}
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}
