package core

import (
	"slices"
	"time"
)

const (
	AppName    = "mnemo"
	AppVersion = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Memory is a single remembered user message. Only RecallCount, LastRecalled
// and ConsolidationFactor change after creation.
type Memory struct {
	ID                  int64     `json:"id"`
	Content             string    `json:"content"`
	Vector              []float64 `json:"vector"`
	CreatedAt           float64   `json:"created_at"`
	LastRecalled        float64   `json:"last_recalled"`
	RecallCount         int       `json:"recall_count"`
	ConsolidationFactor float64   `json:"consolidation_factor"`
}

// NewMemory builds a fresh record. The ID is assigned by the repository.
func NewMemory(content string, vector []float64, at float64) Memory {
	return Memory{
		Content:             content,
		Vector:              vector,
		CreatedAt:           at,
		LastRecalled:        at,
		RecallCount:         0,
		ConsolidationFactor: 1.0,
	}
}

// Clone returns a copy that shares no backing arrays with m.
func (m Memory) Clone() Memory {
	m.Vector = slices.Clone(m.Vector)
	return m
}

// ScoredMemory is a memory enriched with the scores that got it recalled.
type ScoredMemory struct {
	Memory
	Relevance         float64 `json:"relevance"`
	RecallProbability float64 `json:"recall_probability"`
}

// RecallUpdate carries the fields a recall event is allowed to change.
type RecallUpdate struct {
	RecallCount         int     `json:"recall_count"`
	LastRecalled        float64 `json:"last_recalled"`
	ConsolidationFactor float64 `json:"consolidation_factor"`
}

func (u RecallUpdate) Apply(m *Memory) {
	m.RecallCount = u.RecallCount
	m.LastRecalled = u.LastRecalled
	m.ConsolidationFactor = u.ConsolidationFactor
}

// MemoryMutation is run by a repository inside its read-modify-write scope.
type MemoryMutation func(m *Memory) error

type ChatEntry struct {
	Role         string  `json:"role"`
	Content      string  `json:"content"`
	Timestamp    float64 `json:"timestamp"`
	MemoriesUsed []int64 `json:"memories_used,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Timestamp converts t to float unix seconds, the unit every stored time uses.
func Timestamp(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
