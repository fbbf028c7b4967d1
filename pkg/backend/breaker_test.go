package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/writecrewerr"
)

func TestBreakerBackendPassesThroughSuccess(t *testing.T) {
	mock := NewMockBackend("hello")
	b := NewBreakerBackend(mock, BreakerSettings{Name: "test", MinRequests: 2, FailureRatio: 0.5})

	resp, err := b.Generate(context.Background(), GenerateRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)
}

func TestBreakerBackendTripsOnRepeatedFailure(t *testing.T) {
	mock := &MockBackend{Responder: func(GenerateRequest) (GenerateResponse, error) {
		return GenerateResponse{}, errors.New("boom")
	}}
	b := NewBreakerBackend(mock, BreakerSettings{Name: "test-trip", MinRequests: 2, FailureRatio: 0.5})

	for i := 0; i < 5; i++ {
		_, _ = b.Generate(context.Background(), GenerateRequest{Prompt: "hi"})
	}

	_, err := b.Generate(context.Background(), GenerateRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.True(t, writecrewerr.IsKind(err, writecrewerr.KindRateLimit), "breaker should eventually reject with a rate_limit-classified error: %v", err)
}
