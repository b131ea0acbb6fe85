// Package assessment generates multiple-choice skill assessments and scores
// submitted answers against the generated key.
package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/futureproofai/futureproof/internal/engine"
	"github.com/futureproofai/futureproof/internal/inference"
)

// ErrGenerationFailed means the model produced no usable question set. An
// assessment is all-or-nothing: a partial quiz is never returned.
var ErrGenerationFailed = errors.New("assessment: generation failed")

// ErrSessionNotFound means no live assessment matches the submitted id.
var ErrSessionNotFound = errors.New("assessment: session not found")

// ErrAnswerCountMismatch means the submission does not answer every question.
var ErrAnswerCountMismatch = errors.New("assessment: answer count mismatch")

const optionsPerItem = 4

// Item is one multiple-choice question. Answer holds the correct option
// verbatim; it is stripped before the quiz leaves the service.
type Item struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Quiz is a generated assessment awaiting answers.
type Quiz struct {
	ID         string
	Skills     []string
	Difficulty string
	Items      []Item
	CreatedAt  time.Time
}

// Score is the outcome of one graded submission.
type Score struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

const quizPromptTmpl = `Create a %s-difficulty skill assessment of exactly %d multiple-choice questions covering these skills: %s.
Return strict JSON only: an array of objects shaped exactly like
{"question":"...","options":["...","...","...","..."],"answer":"..."}
Each question has exactly %d options and "answer" repeats the correct option verbatim.`

const quizSystemRole = "You are an examiner. Produce rigorous, unambiguous multiple-choice questions in the requested JSON shape with no extra commentary."

// Generator produces quizzes and keeps live sessions in memory until they
// are scored.
type Generator struct {
	gen   *inference.Generator
	model string
	count int

	mu       sync.Mutex
	sessions map[string]*Quiz
}

// NewGenerator wires an assessment Generator; count is the fixed number of
// questions per quiz.
func NewGenerator(gen *inference.Generator, model string, count int) *Generator {
	return &Generator{
		gen:      gen,
		model:    model,
		count:    count,
		sessions: make(map[string]*Quiz),
	}
}

// Generate builds a quiz for the given skills and registers it as a live
// session. The model must deliver the exact question count or the whole
// generation fails.
func (g *Generator) Generate(ctx context.Context, skillSet []string, difficulty string) (*Quiz, error) {
	if len(skillSet) == 0 {
		return nil, fmt.Errorf("%w: no skills given", ErrGenerationFailed)
	}
	difficulty = normalizeDifficulty(difficulty)

	prompt := engine.Prompt{
		System:      quizSystemRole,
		User:        fmt.Sprintf(quizPromptTmpl, difficulty, g.count, strings.Join(skillSet, ", "), optionsPerItem),
		Temperature: 0.4,
	}
	text, err := g.gen.Generate(ctx, g.model, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	items, err := ParseItems(text, g.count)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	quiz := &Quiz{
		ID:         uuid.NewString(),
		Skills:     skillSet,
		Difficulty: difficulty,
		Items:      items,
		CreatedAt:  time.Now(),
	}

	g.mu.Lock()
	g.sessions[quiz.ID] = quiz
	g.mu.Unlock()
	return quiz, nil
}

// Submit grades the answers for a live session, positionally against the
// answer key, and retires the session.
func (g *Generator) Submit(id string, answers []string) (*Quiz, Score, error) {
	g.mu.Lock()
	quiz, ok := g.sessions[id]
	if ok {
		delete(g.sessions, id)
	}
	g.mu.Unlock()

	if !ok {
		return nil, Score{}, ErrSessionNotFound
	}
	if len(answers) != len(quiz.Items) {
		return nil, Score{}, fmt.Errorf("%w: got %d answers for %d questions",
			ErrAnswerCountMismatch, len(answers), len(quiz.Items))
	}
	return quiz, Grade(quiz.Items, answers), nil
}

// Grade counts positional, case-sensitive exact matches against the key.
func Grade(items []Item, answers []string) Score {
	correct := 0
	for i, item := range items {
		if answers[i] == item.Answer {
			correct++
		}
	}
	s := Score{Correct: correct, Total: len(items)}
	if s.Total > 0 {
		s.Percentage = 100 * float64(correct) / float64(s.Total)
	}
	return s
}

// ParseItems decodes model output into exactly count well-formed items.
// Every item must carry a question, exactly four options, and a non-empty
// answer. The answer is not checked for membership in the options; a stray
// answer simply never matches and scores as incorrect.
func ParseItems(raw string, count int) ([]Item, error) {
	s := inference.ExtractJSONArray(raw)
	if s == "" {
		return nil, errors.New("no JSON array in model output")
	}

	var items []Item
	dec := json.NewDecoder(strings.NewReader(s))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}

	if len(items) != count {
		return nil, fmt.Errorf("got %d items, want %d", len(items), count)
	}
	for i, item := range items {
		if strings.TrimSpace(item.Question) == "" {
			return nil, fmt.Errorf("item %d: empty question", i)
		}
		if len(item.Options) != optionsPerItem {
			return nil, fmt.Errorf("item %d: %d options, want %d", i, len(item.Options), optionsPerItem)
		}
		if strings.TrimSpace(item.Answer) == "" {
			return nil, fmt.Errorf("item %d: empty answer", i)
		}
	}
	return items, nil
}

func normalizeDifficulty(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "easy":
		return "easy"
	case "hard":
		return "hard"
	default:
		return "medium"
	}
}
