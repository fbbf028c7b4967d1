package main

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimhons/ai-writing-platform-sub000/internal/config"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/backend"
)

func TestLogrusLevelDefaultsToInfoWhenUnset(t *testing.T) {
	level, err := logrusLevel("")
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, level)
}

func TestLogrusLevelParsesRecognizedNames(t *testing.T) {
	level, err := logrusLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, level)
}

func TestLogrusLevelRejectsUnknownNames(t *testing.T) {
	_, err := logrusLevel("nonsense")
	assert.Error(t, err)
}

func TestBuildBackendFallsBackToMockForUnrecognizedProvider(t *testing.T) {
	gen := buildBackend(config.BackendConfig{Provider: "carrier-pigeon"}, logrus.NewEntry(logrus.New()))
	_, ok := gen.(*backend.MockBackend)
	assert.True(t, ok)
}

func TestBuildBackendUsesMockDirectlyWithNoBreaker(t *testing.T) {
	gen := buildBackend(config.BackendConfig{Provider: "mock"}, logrus.NewEntry(logrus.New()))
	_, ok := gen.(*backend.MockBackend)
	assert.True(t, ok)
}

func TestBuildBackendWrapsAnthropicInBreaker(t *testing.T) {
	gen := buildBackend(config.BackendConfig{Provider: "anthropic", APIKey: "test-key", Model: "claude-sonnet-4-5"}, logrus.NewEntry(logrus.New()))
	_, ok := gen.(*backend.BreakerBackend)
	assert.True(t, ok)
}
