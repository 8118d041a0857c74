package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/pkg/log"
)

type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (h *HistoryRepo) AppendChatMessage(ctx context.Context, entry core.ChatEntry) error {
	var used string
	if len(entry.MemoriesUsed) > 0 {
		b, err := json.Marshal(entry.MemoriesUsed)
		if err != nil {
			return fmt.Errorf("failed to marshal memories used: %w", err)
		}
		used = string(b)
	}

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO chat_history (role, content, timestamp, memories_used) VALUES (?, ?, ?, ?)`,
		entry.Role, entry.Content, entry.Timestamp, used,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

// LoadChatHistory returns the last limit entries oldest first, or all of
// them when limit <= 0.
func (h *HistoryRepo) LoadChatHistory(ctx context.Context, limit int) ([]core.ChatEntry, error) {
	if limit <= 0 {
		limit = -1 // no LIMIT in sqlite
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT role, content, timestamp, memories_used FROM chat_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer rows.Close()

	var entries []core.ChatEntry
	for rows.Next() {
		var e core.ChatEntry
		var used sql.NullString
		if err := rows.Scan(&e.Role, &e.Content, &e.Timestamp, &used); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		if used.Valid && used.String != "" {
			if err := json.Unmarshal([]byte(used.String), &e.MemoriesUsed); err != nil {
				return nil, fmt.Errorf("failed to unmarshal memories used: %w", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// newest first from the query, callers want chronological order
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(entries)).Msg("loaded chat history")
	return entries, nil
}
