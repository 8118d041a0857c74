package recall

import (
	"fmt"
	"math"
	"sort"

	"github.com/sandevgo/mnemo/internal/core"
)

const (
	DefaultThreshold  = 0.86
	DefaultMaxResults = 5
)

// ElapsedMode selects which time span feeds the decay term.
type ElapsedMode string

const (
	// ElapsedSinceCreation uses last_recalled - created_at.
	ElapsedSinceCreation ElapsedMode = "creation"
	// ElapsedSinceRecall uses Options.Now - last_recalled.
	ElapsedSinceRecall ElapsedMode = "recall"
)

type Options struct {
	SimilarityThreshold  float64
	ProbabilityThreshold float64
	MaxResults           int
	Elapsed              ElapsedMode
	// Now is read only in ElapsedSinceRecall mode, in unix seconds.
	Now float64
}

func DefaultOptions() Options {
	return Options{
		SimilarityThreshold:  DefaultThreshold,
		ProbabilityThreshold: DefaultThreshold,
		MaxResults:           DefaultMaxResults,
		Elapsed:              ElapsedSinceCreation,
	}
}

// Skipped records a memory that could not be scored.
type Skipped struct {
	ID  int64
	Err error
}

type Outcome struct {
	Results []core.ScoredMemory
	Skipped []Skipped
	// Degenerate counts records excluded for a zero-magnitude vector. A zero
	// query makes every record degenerate.
	Degenerate int
}

// FindRelevant ranks memories against query. It is a pure function: the same
// input gives the same output and memories is left untouched.
func FindRelevant(query []float64, memories []core.Memory, opts Options) Outcome {
	var out Outcome
	if opts.MaxResults <= 0 {
		return out
	}

	queryDegenerate := zeroMagnitude(query)

	for _, m := range memories {
		if err := validate(m, len(query)); err != nil {
			out.Skipped = append(out.Skipped, Skipped{ID: m.ID, Err: err})
			continue
		}

		if queryDegenerate || zeroMagnitude(m.Vector) {
			out.Degenerate++
			continue
		}

		s := CosineSimilarity(query, m.Vector)
		if s < opts.SimilarityThreshold {
			continue
		}

		p := RecallProbability(s, elapsed(m, opts), m.ConsolidationFactor)
		if p < opts.ProbabilityThreshold {
			continue
		}

		out.Results = append(out.Results, core.ScoredMemory{
			Memory:            m.Clone(),
			Relevance:         s,
			RecallProbability: p,
		})
	}

	sort.SliceStable(out.Results, func(i, j int) bool {
		return out.Results[i].Relevance > out.Results[j].Relevance
	})

	if len(out.Results) > opts.MaxResults {
		out.Results = out.Results[:opts.MaxResults]
	}
	return out
}

func elapsed(m core.Memory, opts Options) float64 {
	if opts.Elapsed == ElapsedSinceRecall {
		return math.Max(opts.Now-m.LastRecalled, 0)
	}
	return m.LastRecalled - m.CreatedAt
}

func validate(m core.Memory, dims int) error {
	switch {
	case m.ID < 0:
		return fmt.Errorf("%w: negative id %d", core.ErrMalformedMemory, m.ID)
	case len(m.Vector) == 0:
		return fmt.Errorf("%w: missing vector", core.ErrMalformedMemory)
	case len(m.Vector) != dims:
		return fmt.Errorf("%w: vector dimension %d, want %d", core.ErrMalformedMemory, len(m.Vector), dims)
	case m.RecallCount < 0:
		return fmt.Errorf("%w: negative recall count", core.ErrMalformedMemory)
	case !finite(m.CreatedAt) || !finite(m.LastRecalled) || !finite(m.ConsolidationFactor):
		return fmt.Errorf("%w: non-finite timestamps or consolidation factor", core.ErrMalformedMemory)
	}
	for i, x := range m.Vector {
		if !finite(x) {
			return fmt.Errorf("%w: non-finite vector component at %d", core.ErrMalformedMemory, i)
		}
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
