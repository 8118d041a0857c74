package core

import "context"

type MemoryRepository interface {
	// LoadMemories returns every memory in insertion order.
	LoadMemories(ctx context.Context) ([]Memory, error)
	// AppendMemory assigns the next id and stores mem.
	AppendMemory(ctx context.Context, mem Memory) (Memory, error)
	// UpdateMemory reads the record, runs fn on it and persists the recall
	// fields as one atomic step. Concurrent updates are serialised.
	UpdateMemory(ctx context.Context, id int64, fn MemoryMutation) (Memory, error)
}

type ChatRepository interface {
	// LoadChatHistory returns the last limit entries, oldest first. A
	// non-positive limit returns the whole history.
	LoadChatHistory(ctx context.Context, limit int) ([]ChatEntry, error)
	AppendChatMessage(ctx context.Context, entry ChatEntry) error
}

type Store interface {
	MemoryRepository
	ChatRepository
	Close() error
}
