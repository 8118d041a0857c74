// Package jsonfile keeps memories and chat history in two JSON documents,
// rewritten in full on every change.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/pkg/log"
)

// record holds either a decoded value or, when decoding failed, the original
// bytes, which are written back untouched on every save.
type record[T any] struct {
	val T
	raw json.RawMessage
}

func (r record[T]) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}
	return json.Marshal(r.val)
}

type Store struct {
	memoriesPath string
	historyPath  string

	mu       sync.Mutex
	memories []record[core.Memory]
	history  []record[core.ChatEntry]
	nextID   int64
}

// Open loads both files. Missing files start empty; a record that cannot be
// decoded is hidden from readers but kept on disk, and its id stays taken.
func Open(ctx context.Context, memoriesPath, historyPath string) (*Store, error) {
	s := &Store{memoriesPath: memoriesPath, historyPath: historyPath}

	for _, p := range []string{memoriesPath, historyPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	if err := s.loadMemories(ctx); err != nil {
		return nil, err
	}
	if err := s.loadHistory(ctx); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().
		Int("memories", len(s.memories)).
		Int("chat_entries", len(s.history)).
		Msg("json store loaded")
	return s, nil
}

func (s *Store) loadMemories(ctx context.Context) error {
	raw, err := readArray(s.memoriesPath)
	if err != nil {
		return err
	}

	for i, r := range raw {
		var m core.Memory
		if err := json.Unmarshal(r, &m); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Int("index", i).Msg("keeping unreadable memory record as is")
			s.memories = append(s.memories, record[core.Memory]{raw: r})
			s.reserveID(r)
			continue
		}
		s.memories = append(s.memories, record[core.Memory]{val: m})
		if m.ID >= s.nextID {
			s.nextID = m.ID + 1
		}
	}
	return nil
}

// reserveID keeps the id of an unreadable record, when one can be read, out
// of circulation.
func (s *Store) reserveID(r json.RawMessage) {
	var head struct {
		ID *int64 `json:"id"`
	}
	if err := json.Unmarshal(r, &head); err != nil || head.ID == nil {
		return
	}
	if *head.ID >= s.nextID {
		s.nextID = *head.ID + 1
	}
}

func (s *Store) loadHistory(ctx context.Context) error {
	raw, err := readArray(s.historyPath)
	if err != nil {
		return err
	}

	for i, r := range raw {
		var e core.ChatEntry
		if err := json.Unmarshal(r, &e); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Int("index", i).Msg("keeping unreadable chat entry as is")
			s.history = append(s.history, record[core.ChatEntry]{raw: r})
			continue
		}
		s.history = append(s.history, record[core.ChatEntry]{val: e})
	}
	return nil
}

func readArray(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return raw, nil
}

// writeFile replaces path atomically so a crash never leaves half a document.
func writeFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *Store) LoadMemories(ctx context.Context) ([]core.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Memory, 0, len(s.memories))
	for _, r := range s.memories {
		if r.raw == nil {
			out = append(out, r.val.Clone())
		}
	}
	return out, nil
}

func (s *Store) AppendMemory(ctx context.Context, mem core.Memory) (core.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mem = mem.Clone()
	mem.ID = s.nextID

	next := append(slices.Clip(s.memories), record[core.Memory]{val: mem})
	if err := writeFile(s.memoriesPath, next); err != nil {
		return core.Memory{}, err
	}

	s.memories = next
	s.nextID++
	return mem.Clone(), nil
}

func (s *Store) UpdateMemory(ctx context.Context, id int64, fn core.MemoryMutation) (core.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.memories, func(r record[core.Memory]) bool {
		return r.raw == nil && r.val.ID == id
	})
	if idx < 0 {
		return core.Memory{}, fmt.Errorf("%w: id %d", core.ErrMemoryNotFound, id)
	}

	current := s.memories[idx].val
	scratch := current.Clone()
	if err := fn(&scratch); err != nil {
		return core.Memory{}, err
	}

	updated := current
	updated.RecallCount = scratch.RecallCount
	updated.LastRecalled = scratch.LastRecalled
	updated.ConsolidationFactor = scratch.ConsolidationFactor

	next := slices.Clone(s.memories)
	next[idx] = record[core.Memory]{val: updated}
	if err := writeFile(s.memoriesPath, next); err != nil {
		return core.Memory{}, err
	}

	s.memories = next
	return updated.Clone(), nil
}

func (s *Store) AppendChatMessage(ctx context.Context, entry core.ChatEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.MemoriesUsed = slices.Clone(entry.MemoriesUsed)
	next := append(slices.Clip(s.history), record[core.ChatEntry]{val: entry})
	if err := writeFile(s.historyPath, next); err != nil {
		return err
	}
	s.history = next
	return nil
}

func (s *Store) LoadChatHistory(ctx context.Context, limit int) ([]core.ChatEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.ChatEntry, 0, len(s.history))
	for _, r := range s.history {
		if r.raw != nil {
			continue
		}
		e := r.val
		e.MemoriesUsed = slices.Clone(e.MemoriesUsed)
		out = append(out, e)
	}

	if limit > 0 && limit < len(out) {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *Store) Close() error {
	return nil
}
