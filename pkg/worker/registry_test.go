package worker

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWorker struct {
	id ID
}

func (s stubWorker) Metadata() Metadata     { return Metadata{ID: s.id, Delegable: true} }
func (s stubWorker) Capabilities() Capabilities { return Capabilities{} }
func (s stubWorker) Execute(context.Context, TaskInput) (TaskResult, error) {
	return TaskResult{Status: StatusCompleted, Confidence: 1}, nil
}
func (s stubWorker) Health() Health { return Health{Healthy: true, RecentSuccessRate: 1} }

func TestRegistryRegisterGetCount(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Count())

	require.NoError(t, r.Register(stubWorker{id: IDContentWriter}))
	assert.Equal(t, 1, r.Count())
	assert.True(t, r.IsRegistered(IDContentWriter))

	w, ok := r.Get(IDContentWriter)
	require.True(t, ok)
	assert.Equal(t, IDContentWriter, w.Metadata().ID)

	_, ok = r.Get(IDStyleEditor)
	assert.False(t, ok)
}

func TestRegistryUnregisterIsNoOpWhenMissing(t *testing.T) {
	r := NewRegistry()
	r.Unregister(IDGeneralist) // must not panic
	assert.Equal(t, 0, r.Count())
}

func TestRegistryRejectsNilAndEmptyID(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(stubWorker{id: ""}))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	ids := []ID{IDContentWriter, IDStyleEditor, IDGrammarChecker, IDResearchAssistant}

	for _, id := range ids {
		wg.Add(1)
		go func(id ID) {
			defer wg.Done()
			_ = r.Register(stubWorker{id: id})
		}(id)
	}
	wg.Wait()

	assert.Equal(t, len(ids), r.Count())
	assert.Len(t, r.All(), len(ids))
}
