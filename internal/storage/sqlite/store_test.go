package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/storage/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T, dir string) core.Store {
		s, err := NewStore(context.Background(), filepath.Join(dir, "mnemo.db"))
		require.NoError(t, err)
		return s
	})
}

func TestVectorRoundTrip(t *testing.T) {
	vec := []float64{0, -0.5, 1e-300, 123456.789}
	blob, err := serializeVector(vec)
	require.NoError(t, err)
	assert.Len(t, blob, 32)

	got, err := deserializeVector(blob)
	require.NoError(t, err)
	assert.Equal(t, vec, got)

	_, err = deserializeVector(blob[:7])
	assert.Error(t, err)
}

func TestLoadMemories_CorruptVector(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(ctx, filepath.Join(t.TempDir(), "mnemo.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.AppendMemory(ctx, core.NewMemory("ok", []float64{1, 2}, 1))
	require.NoError(t, err)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO memories (id, content, vector, created_at, last_recalled) VALUES (1, 'bad', x'0102', 1, 1)`)
	require.NoError(t, err)

	memories, err := s.LoadMemories(ctx)
	require.NoError(t, err)
	require.Len(t, memories, 2)
	assert.Equal(t, []float64{1, 2}, memories[0].Vector)
	assert.Nil(t, memories[1].Vector)
}
