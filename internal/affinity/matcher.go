package affinity

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/futureproofai/futureproof/internal/dataset"
	"github.com/futureproofai/futureproof/internal/engine"
)

// Result is one affinity decision: the best-matching reference domain and
// its cosine similarity to the user's skill embedding.
type Result struct {
	Domain string
	Score  float64
}

// Matcher compares a user skill set against the reference domain profiles
// using embedding cosine similarity. Profile embeddings are computed once,
// on first use, and reused for the process lifetime.
type Matcher struct {
	eng      engine.Engine
	model    string
	profiles []dataset.DomainProfile

	indexOnce sync.Once
	indexErr  error
	vectors   [][]float32
}

// NewMatcher creates a Matcher over the given reference dataset.
func NewMatcher(eng engine.Engine, model string, ds *dataset.Dataset) *Matcher {
	return &Matcher{eng: eng, model: model, profiles: ds.Profiles}
}

// WarmUp forces the profile index to be built now instead of on the first
// request. Optional; Match builds it lazily either way.
func (m *Matcher) WarmUp(ctx context.Context) error {
	return m.buildIndex(ctx)
}

// buildIndex embeds every domain profile concurrently, bounded to avoid
// hammering the embedding endpoint.
func (m *Matcher) buildIndex(ctx context.Context) error {
	m.indexOnce.Do(func() {
		vectors := make([][]float32, len(m.profiles))
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(4)

		for i, p := range m.profiles {
			g.Go(func() error {
				vec, err := m.eng.Embed(gCtx, m.model, p.Skills)
				if err != nil {
					return fmt.Errorf("embedding profile %q: %w", p.Domain, err)
				}
				vectors[i] = vec
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			m.indexErr = err
			return
		}
		m.vectors = vectors
	})
	return m.indexErr
}

// Match embeds the concatenated user skills and returns the domain with the
// highest cosine similarity. Ties break to the first domain in dataset
// order, so results are deterministic for a fixed dataset. An empty skill
// set is defined behavior: the zero-information embedding scores 0 against
// everything and the first domain is returned at lowest confidence.
func (m *Matcher) Match(ctx context.Context, skillSet []string) (Result, error) {
	if err := m.buildIndex(ctx); err != nil {
		return Result{}, err
	}
	if len(m.profiles) == 0 {
		return Result{}, fmt.Errorf("no domain profiles loaded")
	}

	var userVec []float32
	if len(skillSet) > 0 {
		vec, err := m.eng.Embed(ctx, m.model, strings.Join(skillSet, " "))
		if err != nil {
			return Result{}, fmt.Errorf("embedding user skills: %w", err)
		}
		userVec = vec
	}

	best := Result{Domain: m.profiles[0].Domain, Score: cosine(userVec, m.vectors[0])}
	for i := 1; i < len(m.profiles); i++ {
		// Strict > keeps the first maximum on ties.
		if s := cosine(userVec, m.vectors[i]); s > best.Score {
			best = Result{Domain: m.profiles[i].Domain, Score: s}
		}
	}
	return best, nil
}

// cosine computes cosine similarity between two vectors. Mismatched or
// zero-norm vectors score 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, aNormSq, bNormSq float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		aNormSq += float64(a[i]) * float64(a[i])
		bNormSq += float64(b[i]) * float64(b[i])
	}
	if aNormSq == 0 || bNormSq == 0 {
		return 0
	}
	return dot / (math.Sqrt(aNormSq) * math.Sqrt(bNormSq))
}
