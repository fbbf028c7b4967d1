// Package backend defines the Generation Backend interface (spec §6.2): the
// single text-generation surface consumed by the router, workers, and the
// guardrail pipeline.
package backend

import "context"

// GenerateRequest is the single operation's input.
type GenerateRequest struct {
	Prompt      string
	ModelHint   string
	MaxTokens   int
	Temperature float64
	Stop        []string
}

// FinishReason describes why generation stopped.
type FinishReason string

const (
	FinishStop   FinishReason = "stop"
	FinishLength FinishReason = "length"
	FinishError  FinishReason = "error"
)

// Usage reports token accounting, when the provider supplies it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// GenerateResponse is the single operation's output.
type GenerateResponse struct {
	Content      string
	FinishReason FinishReason
	Usage        *Usage
}

// Backend is the uniform generation surface. Implementations classify their
// own failures: network/rate-limit/deadline errors must be wrapped as
// writecrewerr transient kinds, invalid_request/permission_denied as
// permanent, per §6.2.
type Backend interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}
