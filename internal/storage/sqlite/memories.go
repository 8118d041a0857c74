package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/pkg/log"
)

const memoryColumns = `id, content, vector, created_at, last_recalled, recall_count, consolidation_factor`

type MemoryRepo struct {
	db *sql.DB
}

func NewMemoryRepo(db *sql.DB) *MemoryRepo {
	return &MemoryRepo{db: db}
}

// LoadMemories returns every memory in id order. A record whose vector cannot
// be decoded comes back with a nil vector so scoring can skip it.
func (r *MemoryRepo) LoadMemories(ctx context.Context) ([]core.Memory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+memoryColumns+` FROM memories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query memories: %w", err)
	}
	defer rows.Close()

	var memories []core.Memory
	for rows.Next() {
		m, err := scanMemory(ctx, rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Int("count", len(memories)).Msg("loaded memories")
	return memories, nil
}

// AppendMemory stores mem under the next free id, counting from 0.
func (r *MemoryRepo) AppendMemory(ctx context.Context, mem core.Memory) (core.Memory, error) {
	vecBlob, err := serializeVector(mem.Vector)
	if err != nil {
		return core.Memory{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Memory{}, err
	}
	defer tx.Rollback()

	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id) + 1, 0) FROM memories`).Scan(&id); err != nil {
		return core.Memory{}, fmt.Errorf("failed to allocate memory id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO memories (`+memoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, mem.Content, vecBlob, mem.CreatedAt, mem.LastRecalled, mem.RecallCount, mem.ConsolidationFactor,
	)
	if err != nil {
		return core.Memory{}, fmt.Errorf("failed to insert memory: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Memory{}, err
	}

	mem.ID = id
	return mem, nil
}

// UpdateMemory runs fn on the stored record inside one write transaction and
// persists the recall fields it changed. Content, vector and creation time
// are never written back.
func (r *MemoryRepo) UpdateMemory(ctx context.Context, id int64, fn core.MemoryMutation) (core.Memory, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Memory{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+memoryColumns+` FROM memories WHERE id = ?`, id)
	m, err := scanMemory(ctx, row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Memory{}, fmt.Errorf("%w: id %d", core.ErrMemoryNotFound, id)
	}
	if err != nil {
		return core.Memory{}, err
	}

	if err := fn(&m); err != nil {
		return core.Memory{}, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE memories SET recall_count = ?, last_recalled = ?, consolidation_factor = ? WHERE id = ?`,
		m.RecallCount, m.LastRecalled, m.ConsolidationFactor, id,
	)
	if err != nil {
		return core.Memory{}, fmt.Errorf("failed to update memory %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return core.Memory{}, err
	}
	return m, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMemory(ctx context.Context, s scanner) (core.Memory, error) {
	var m core.Memory
	var blob []byte
	err := s.Scan(&m.ID, &m.Content, &blob, &m.CreatedAt, &m.LastRecalled, &m.RecallCount, &m.ConsolidationFactor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return m, err
		}
		return m, fmt.Errorf("failed to scan memory: %w", err)
	}

	m.Vector, err = deserializeVector(blob)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Int64("id", m.ID).Msg("unreadable memory vector")
		m.Vector = nil
	}
	return m, nil
}
