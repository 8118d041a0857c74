// Package storetest holds behaviour tests shared by every core.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory opens a store rooted at dir. Calling it twice with the same dir
// must reopen the same data.
type Factory func(t *testing.T, dir string) core.Store

func Run(t *testing.T, open Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, open Factory)
	}{
		{"Empty", testEmpty},
		{"AppendAssignsSequentialIDs", testAppendAssignsSequentialIDs},
		{"UpdatePersistsRecallFieldsOnly", testUpdatePersistsRecallFieldsOnly},
		{"UpdateMissing", testUpdateMissing},
		{"UpdateMutationError", testUpdateMutationError},
		{"ConcurrentUpdates", testConcurrentUpdates},
		{"ChatHistoryWindow", testChatHistoryWindow},
		{"Reopen", testReopen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, open)
		})
	}
}

func openTemp(t *testing.T, open Factory) core.Store {
	s := open(t, t.TempDir())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testEmpty(t *testing.T, open Factory) {
	ctx := context.Background()
	s := openTemp(t, open)

	memories, err := s.LoadMemories(ctx)
	require.NoError(t, err)
	assert.Empty(t, memories)

	history, err := s.LoadChatHistory(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func testAppendAssignsSequentialIDs(t *testing.T, open Factory) {
	ctx := context.Background()
	s := openTemp(t, open)

	inputs := []core.Memory{
		core.NewMemory("first", []float64{0.1, 0.2, 0.3}, 1700000000.25),
		core.NewMemory("second", []float64{-1, 0, 1e-9}, 1700000001.5),
		core.NewMemory("third", []float64{3.14159, 2.71828, 1.41421}, 1700000002.75),
	}

	for i, in := range inputs {
		stored, err := s.AppendMemory(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, int64(i), stored.ID)
	}

	memories, err := s.LoadMemories(ctx)
	require.NoError(t, err)
	require.Len(t, memories, 3)
	for i, m := range memories {
		want := inputs[i]
		want.ID = int64(i)
		assert.Equal(t, want, m)
	}
}

func testUpdatePersistsRecallFieldsOnly(t *testing.T, open Factory) {
	ctx := context.Background()
	s := openTemp(t, open)

	stored, err := s.AppendMemory(ctx, core.NewMemory("hello", []float64{1, 0}, 100))
	require.NoError(t, err)

	updated, err := s.UpdateMemory(ctx, stored.ID, func(m *core.Memory) error {
		m.RecallCount++
		m.LastRecalled = 160
		m.ConsolidationFactor = 1.9
		m.Content = "rewritten"
		m.Vector = []float64{0, 1}
		m.CreatedAt = 1
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.RecallCount)

	memories, err := s.LoadMemories(ctx)
	require.NoError(t, err)
	require.Len(t, memories, 1)
	assert.Equal(t, core.Memory{
		ID:                  0,
		Content:             "hello",
		Vector:              []float64{1, 0},
		CreatedAt:           100,
		LastRecalled:        160,
		RecallCount:         1,
		ConsolidationFactor: 1.9,
	}, memories[0])
}

func testUpdateMissing(t *testing.T, open Factory) {
	s := openTemp(t, open)

	_, err := s.UpdateMemory(context.Background(), 42, func(*core.Memory) error { return nil })
	assert.ErrorIs(t, err, core.ErrMemoryNotFound)
}

func testUpdateMutationError(t *testing.T, open Factory) {
	ctx := context.Background()
	s := openTemp(t, open)

	stored, err := s.AppendMemory(ctx, core.NewMemory("hello", []float64{1, 0}, 100))
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = s.UpdateMemory(ctx, stored.ID, func(m *core.Memory) error {
		m.RecallCount = 99
		return boom
	})
	assert.ErrorIs(t, err, boom)

	memories, err := s.LoadMemories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, memories[0].RecallCount)
}

func testConcurrentUpdates(t *testing.T, open Factory) {
	ctx := context.Background()
	s := openTemp(t, open)

	stored, err := s.AppendMemory(ctx, core.NewMemory("hello", []float64{1, 0}, 100))
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdateMemory(ctx, stored.ID, func(m *core.Memory) error {
				m.RecallCount++
				m.ConsolidationFactor += 0.5
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	memories, err := s.LoadMemories(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers, memories[0].RecallCount)
	assert.Equal(t, 1+0.5*workers, memories[0].ConsolidationFactor)
}

func testChatHistoryWindow(t *testing.T, open Factory) {
	ctx := context.Background()
	s := openTemp(t, open)

	entries := []core.ChatEntry{
		{Role: core.RoleUser, Content: "one", Timestamp: 1},
		{Role: core.RoleAssistant, Content: "two", Timestamp: 1, MemoriesUsed: []int64{0, 3}},
		{Role: core.RoleUser, Content: "three", Timestamp: 2},
		{Role: core.RoleAssistant, Content: "four", Timestamp: 2},
		{Role: core.RoleUser, Content: "five", Timestamp: 3},
	}
	for _, e := range entries {
		require.NoError(t, s.AppendChatMessage(ctx, e))
	}

	last, err := s.LoadChatHistory(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, entries[2:], last)

	all, err := s.LoadChatHistory(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, entries, all)

	more, err := s.LoadChatHistory(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, entries, more)
}

func testReopen(t *testing.T, open Factory) {
	ctx := context.Background()
	dir := t.TempDir()

	s := open(t, dir)
	_, err := s.AppendMemory(ctx, core.NewMemory("kept", []float64{0.5, 0.5}, 10))
	require.NoError(t, err)
	require.NoError(t, s.AppendChatMessage(ctx, core.ChatEntry{Role: core.RoleUser, Content: "kept", Timestamp: 10}))
	require.NoError(t, s.Close())

	s = open(t, dir)
	defer s.Close()

	memories, err := s.LoadMemories(ctx)
	require.NoError(t, err)
	require.Len(t, memories, 1)
	assert.Equal(t, "kept", memories[0].Content)

	next, err := s.AppendMemory(ctx, core.NewMemory("next", []float64{1, 1}, 11))
	require.NoError(t, err)
	assert.Equal(t, int64(1), next.ID)

	history, err := s.LoadChatHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
}
