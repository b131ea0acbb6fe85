package inference

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/futureproofai/futureproof/internal/engine"
)

// ErrNoResult is the defined "no result" signal: the generative service
// failed every attempt and the caller must substitute its fallback value.
// Nothing else escapes the Generator boundary.
var ErrNoResult = errors.New("inference: no result")

const (
	outcomeOK     = "ok"
	outcomeFailed = "failed"
)

// Journal receives one record per generation attempt, success or failure.
// The storage package provides the durable implementation; tests inject
// counters.
type Journal interface {
	RecordUsage(ts time.Time, model, outcome string)
}

// NopJournal discards usage events.
type NopJournal struct{}

func (NopJournal) RecordUsage(time.Time, string, string) {}

// RetryPolicy is a fixed-attempt, fixed-backoff retry schedule. Sleep is a
// seam for tests; nil means time.Sleep.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
	Sleep    func(time.Duration)
}

func (p RetryPolicy) attempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

func (p RetryPolicy) sleep(d time.Duration) {
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}

// Generator is the single hardened boundary in front of the generative
// service. It retries transient failures on the configured schedule,
// journals every attempt, bounds each attempt with a timeout, and converts
// every failure mode into ErrNoResult so callers always receive a value or
// the defined sentinel.
type Generator struct {
	eng         engine.Engine
	retry       RetryPolicy
	journal     Journal
	callTimeout time.Duration
	now         func() time.Time
}

// NewGenerator wires a Generator. journal may be nil; callTimeout <= 0
// disables the per-attempt timeout.
func NewGenerator(eng engine.Engine, retry RetryPolicy, journal Journal, callTimeout time.Duration) *Generator {
	if journal == nil {
		journal = NopJournal{}
	}
	return &Generator{
		eng:         eng,
		retry:       retry,
		journal:     journal,
		callTimeout: callTimeout,
		now:         time.Now,
	}
}

// Generate runs the prompt against the given model. The returned text is
// trimmed and never empty; on exhaustion the error is ErrNoResult.
func (g *Generator) Generate(ctx context.Context, model string, prompt engine.Prompt) (string, error) {
	attempts := g.retry.attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := g.generateOnce(ctx, model, prompt)
		if err == nil && text != "" {
			g.journal.RecordUsage(g.now(), model, outcomeOK)
			return text, nil
		}

		g.journal.RecordUsage(g.now(), model, outcomeFailed)
		slog.Warn("generation attempt failed",
			"model", model, "attempt", attempt, "of", attempts, "error", err)

		if attempt < attempts {
			g.retry.sleep(g.retry.Backoff)
		}
	}
	return "", ErrNoResult
}

func (g *Generator) generateOnce(ctx context.Context, model string, prompt engine.Prompt) (text string, err error) {
	if g.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.callTimeout)
		defer cancel()
	}

	// The engine is an external SDK; a panic there must not cross this
	// boundary either.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", errors.New("engine panic recovered")
			slog.Error("engine panicked during generation", "model", model, "panic", r)
		}
	}()

	text, err = g.eng.Generate(ctx, model, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
