package affinity

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/futureproofai/futureproof/internal/dataset"
	"github.com/futureproofai/futureproof/internal/engine"
)

// mockEngine maps text to fixed vectors and counts Embed calls.
type mockEngine struct {
	vectors    map[string][]float32
	embedCalls atomic.Int32
}

func (m *mockEngine) Generate(ctx context.Context, model string, prompt engine.Prompt) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func (m *mockEngine) Embed(ctx context.Context, model, text string) ([]float32, error) {
	m.embedCalls.Add(1)
	if vec, ok := m.vectors[text]; ok {
		return vec, nil
	}
	return nil, fmt.Errorf("no vector for %q", text)
}

func testDataset() *dataset.Dataset {
	return &dataset.Dataset{Profiles: []dataset.DomainProfile{
		{Domain: "data analytics", Skills: "python,sql,excel"},
		{Domain: "cloud engineering", Skills: "go,docker,kubernetes"},
	}}
}

func TestMatchPicksHighestSimilarity(t *testing.T) {
	eng := &mockEngine{vectors: map[string][]float32{
		"python,sql,excel":    {1, 0},
		"go,docker,kubernetes": {0, 1},
		"python sql":          {0.9, 0.1},
	}}
	m := NewMatcher(eng, "embed-model", testDataset())

	res, err := m.Match(context.Background(), []string{"python", "sql"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Domain != "data analytics" {
		t.Errorf("Domain = %q, want %q", res.Domain, "data analytics")
	}
	if res.Score <= 0.9 {
		t.Errorf("Score = %g, want > 0.9", res.Score)
	}
}

func TestMatchDeterministic(t *testing.T) {
	eng := &mockEngine{vectors: map[string][]float32{
		"python,sql,excel":    {1, 0},
		"go,docker,kubernetes": {0, 1},
		"python sql":          {0.9, 0.1},
	}}
	m := NewMatcher(eng, "embed-model", testDataset())

	first, err := m.Match(context.Background(), []string{"python", "sql"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	for i := 0; i < 5; i++ {
		res, err := m.Match(context.Background(), []string{"python", "sql"})
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		if res != first {
			t.Fatalf("Match result changed across calls: %+v vs %+v", res, first)
		}
	}
}

func TestMatchTieBreaksToFirstDomain(t *testing.T) {
	// Both profiles identical: every score ties, first domain must win.
	eng := &mockEngine{vectors: map[string][]float32{
		"python,sql,excel":    {1, 1},
		"go,docker,kubernetes": {1, 1},
		"anything":            {1, 1},
	}}
	m := NewMatcher(eng, "embed-model", testDataset())

	res, err := m.Match(context.Background(), []string{"anything"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Domain != "data analytics" {
		t.Errorf("tie broke to %q, want first domain %q", res.Domain, "data analytics")
	}
}

func TestMatchEmptySkillSet(t *testing.T) {
	eng := &mockEngine{vectors: map[string][]float32{
		"python,sql,excel":    {1, 0},
		"go,docker,kubernetes": {0, 1},
	}}
	m := NewMatcher(eng, "embed-model", testDataset())

	res, err := m.Match(context.Background(), nil)
	if err != nil {
		t.Fatalf("Match on empty set: %v", err)
	}
	if res.Score != 0 {
		t.Errorf("Score = %g, want 0 for empty skill set", res.Score)
	}
	if res.Domain != "data analytics" {
		t.Errorf("Domain = %q, want first domain for empty skill set", res.Domain)
	}
}

func TestProfileIndexBuiltOnce(t *testing.T) {
	eng := &mockEngine{vectors: map[string][]float32{
		"python,sql,excel":    {1, 0},
		"go,docker,kubernetes": {0, 1},
		"python sql":          {0.9, 0.1},
	}}
	m := NewMatcher(eng, "embed-model", testDataset())

	for i := 0; i < 3; i++ {
		if _, err := m.Match(context.Background(), []string{"python", "sql"}); err != nil {
			t.Fatalf("Match: %v", err)
		}
	}

	// 2 profile embeddings once + 3 user embeddings.
	if got := eng.embedCalls.Load(); got != 5 {
		t.Errorf("embed calls = %d, want 5 (profiles embedded once)", got)
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2}, []float32{1, 2}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
		{"nil", nil, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosine(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosine = %g, want %g", got, tt.want)
			}
		})
	}
}
