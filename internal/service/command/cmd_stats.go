package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/service/embedding"
)

type MemorySource interface {
	Memories(ctx context.Context) ([]core.Memory, error)
}

type CacheStatser interface {
	Stats() embedding.Stats
}

type StatsCommand struct {
	memories  MemorySource
	cache     CacheStatser
	formatter *ResponseFormatter
}

func NewStatsCommand(memories MemorySource, cache CacheStatser) *StatsCommand {
	return &StatsCommand{
		memories:  memories,
		cache:     cache,
		formatter: NewResponseFormatter(),
	}
}

func (c *StatsCommand) Name() string {
	return "stats"
}

func (c *StatsCommand) Description() string {
	return "Show memory and embedding cache statistics"
}

func (c *StatsCommand) Execute(ctx context.Context, args []string) (string, error) {
	memories, err := c.memories.Memories(ctx)
	if err != nil {
		return "", err
	}

	var recalled int
	var sum, maxFactor float64
	for _, m := range memories {
		if m.RecallCount > 0 {
			recalled++
		}
		sum += m.ConsolidationFactor
		maxFactor = max(maxFactor, m.ConsolidationFactor)
	}
	mean := 0.0
	if len(memories) > 0 {
		mean = sum / float64(len(memories))
	}

	sections := []string{
		c.formatter.Info("Memory"),
		c.formatter.Label("Memories", fmt.Sprintf("%d", len(memories))) +
			c.formatter.Label("Recalled at least once", fmt.Sprintf("%d", recalled)) +
			c.formatter.Label("Mean consolidation", fmt.Sprintf("%.3f", mean)) +
			c.formatter.Label("Max consolidation", fmt.Sprintf("%.3f", maxFactor)),
	}

	if c.cache != nil {
		st := c.cache.Stats()
		sections = append(sections,
			c.formatter.Info("Embedding cache"),
			c.formatter.Label("Entries", fmt.Sprintf("%d / %d", st.Size, st.Capacity))+
				c.formatter.Label("Hits", fmt.Sprintf("%d", st.Hits))+
				c.formatter.Label("Misses", fmt.Sprintf("%d", st.Misses))+
				c.formatter.Label("Fallbacks", fmt.Sprintf("%d", st.Fallbacks)),
		)
	}

	return c.formatter.Combine(sections...), nil
}
