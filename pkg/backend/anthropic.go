package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/writecrewerr"
)

// AnthropicBackend is a reference Backend implementation over
// anthropic-sdk-go. It is one pluggable adapter among others a caller may
// provide; the spec prescribes no particular model.
type AnthropicBackend struct {
	client  anthropic.Client
	model   anthropic.Model
	timeout time.Duration
}

// NewAnthropicBackend builds an adapter for the given API key, model, and
// per-call timeout (spec §6.2's `timeout` field).
func NewAnthropicBackend(apiKey, model string, timeout time.Duration) *AnthropicBackend {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AnthropicBackend{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   anthropic.Model(model),
		timeout: timeout,
	}
}

// Generate implements Backend.
func (b *AnthropicBackend) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	if req.Prompt == "" {
		return GenerateResponse{}, writecrewerr.New("backend.anthropic", "Generate", writecrewerr.KindInvalidRequest,
			errors.New("prompt must not be empty"))
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	model := b.model
	if req.ModelHint != "" {
		model = anthropic.Model(req.ModelHint)
	}

	msg, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return GenerateResponse{}, classifyAnthropicErr(err)
	}

	var content string
	for _, block := range msg.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	finish := FinishStop
	if string(msg.StopReason) == "max_tokens" {
		finish = FinishLength
	}

	return GenerateResponse{
		Content:      content,
		FinishReason: finish,
		Usage: &Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}

// classifyAnthropicErr maps SDK errors onto the caller-side transient/
// permanent taxonomy required by §6.2.
func classifyAnthropicErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return writecrewerr.New("backend.anthropic", "Generate", writecrewerr.KindDeadlineExceeded, err)
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429:
			return writecrewerr.New("backend.anthropic", "Generate", writecrewerr.KindRateLimit, err)
		case 400, 401, 403:
			return writecrewerr.New("backend.anthropic", "Generate", writecrewerr.KindInvalidRequest, err)
		}
	}
	return writecrewerr.New("backend.anthropic", "Generate", writecrewerr.KindBackendFailure, fmt.Errorf("anthropic: %w", err))
}
