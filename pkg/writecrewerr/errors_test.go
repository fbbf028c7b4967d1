package writecrewerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, Transient, Classify(KindWorkerUnavailable))
	assert.Equal(t, Transient, Classify(KindRateLimit))
	assert.Equal(t, Transient, Classify(KindBackendFailure))
	assert.Equal(t, Transient, Classify(KindDeadlineExceeded))
	assert.Equal(t, Permanent, Classify(KindInvalidRequest))
	assert.Equal(t, Permanent, Classify(KindCyclicDependency))
	assert.Equal(t, Permanent, Classify(KindGuardrailBlocked))
	assert.Equal(t, Permanent, Classify(Kind("unknown_kind")))
}

func TestErrorWrapsCause(t *testing.T) {
	cause := errors.New("upstream boom")
	err := New("router", "route", KindInvalidRequest, cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "router")
	assert.Contains(t, err.Error(), "route")
	assert.Contains(t, err.Error(), "invalid_request")
	assert.Contains(t, err.Error(), "upstream boom")
}

func TestIsKindAndKindOf(t *testing.T) {
	err := New("scheduler", "dispatch", KindCyclicDependency, nil)
	wrapped := fmt.Errorf("dispatching workflow: %w", err)

	assert.True(t, IsKind(wrapped, KindCyclicDependency))
	assert.False(t, IsKind(wrapped, KindRateLimit))

	k, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindCyclicDependency, k)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(New("backend", "generate", KindBackendFailure, nil)))
	assert.False(t, IsTransient(New("router", "route", KindInvalidRequest, nil)))
	assert.False(t, IsTransient(errors.New("untyped error")))
}
