package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/futureproofai/futureproof/internal/affinity"
	"github.com/futureproofai/futureproof/internal/engine"
	"github.com/futureproofai/futureproof/internal/skills"
)

// ErrMissingInput rejects a report request before any external call is
// made. It is the only error that stops report processing entirely.
var ErrMissingInput = errors.New("inference: name and skills are required")

// Fallback labels substituted when the generative service returns no result.
const (
	FallbackDomain = "General Domain"
	FallbackRole   = "Business Transformation Specialist"
)

// Insight sources reported alongside the resolved domain.
const (
	SourceDataset    = "peer-dataset"
	SourceGenerative = "market-ai"
)

// DomainMatcher is the slice of the affinity matcher the orchestrator needs.
type DomainMatcher interface {
	Match(ctx context.Context, skillSet []string) (affinity.Result, error)
}

// Request is one report request as it arrives from the boundary.
type Request struct {
	Name        string
	RawSkills   string
	WeeklyHours int
}

// Report is the assembled career intelligence result. Every section has a
// defined default, so a report is always complete even when individual
// generative calls failed.
type Report struct {
	Name           string            `json:"name"`
	Skills         []string          `json:"skills"`
	Domain         string            `json:"domain"`
	Role           string            `json:"role"`
	Source         string            `json:"source"`
	Confidence     float64           `json:"confidence"`
	GrowthSkills   []string          `json:"growth_skills"`
	Certifications []string          `json:"certifications"`
	Platforms      PlatformDirectory `json:"platforms"`
	MarketSummary  string            `json:"market_summary"`
	ConfidenceNote string            `json:"confidence_note"`
	EstimatedWeeks int               `json:"estimated_weeks"`
}

// Options are the orchestrator tunables, mirrored from config.
type Options struct {
	FlashModel        string
	DatasetThreshold  float64
	MaxGrowthSkills   int
	MaxCertifications int
}

// Orchestrator resolves (domain, role) once per request, then fans the five
// dependent generative calls out concurrently. The matcher is optional:
// without a reference dataset every request takes the generative path.
type Orchestrator struct {
	gen     *Generator
	matcher DomainMatcher
	cache   *Cache
	opts    Options
}

// NewOrchestrator wires an Orchestrator. matcher may be nil; cache must not.
func NewOrchestrator(gen *Generator, matcher DomainMatcher, cache *Cache, opts Options) *Orchestrator {
	return &Orchestrator{gen: gen, matcher: matcher, cache: cache, opts: opts}
}

// domainResolution is what the domain cache stores: label, source, and the
// affinity confidence (0 on the generative path).
type domainResolution struct {
	Domain     string  `json:"domain"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}

// BuildReport runs one full inference cycle. The only failure it can return
// is ErrMissingInput; everything downstream degrades to section defaults.
func (o *Orchestrator) BuildReport(ctx context.Context, req Request) (*Report, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.RawSkills) == "" {
		return nil, ErrMissingInput
	}

	skillSet := skills.Normalize(req.RawSkills)

	// Domain and role are resolved exactly once and shared by every
	// dependent call below.
	res := o.resolveDomain(ctx, skillSet)
	role := o.resolveRole(ctx, res.Domain, skillSet)

	report := &Report{
		Name:       strings.TrimSpace(req.Name),
		Skills:     skillSet,
		Domain:     res.Domain,
		Role:       role,
		Source:     res.Source,
		Confidence: res.Confidence,
		Platforms:  EmptyPlatformDirectory(),
	}

	// The five dependent calls are mutually independent given
	// (domain, role, skills): dispatch concurrently, join all. Each closure
	// degrades to its section default on failure and returns nil, so one
	// bad section never aborts the report.
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		report.GrowthSkills = o.inferGrowthSkills(gCtx, role, skillSet)
		return nil
	})
	g.Go(func() error {
		report.Certifications = o.inferCertifications(gCtx, role)
		return nil
	})
	g.Go(func() error {
		report.Platforms = o.inferPlatforms(gCtx, role)
		return nil
	})
	g.Go(func() error {
		report.MarketSummary = o.inferMarketSummary(gCtx, role, res.Domain)
		return nil
	})
	g.Go(func() error {
		report.ConfidenceNote = o.inferConfidenceNote(gCtx, role, skillSet)
		return nil
	})

	_ = g.Wait()

	report.EstimatedWeeks = EstimateWeeks(len(report.GrowthSkills), req.WeeklyHours)
	return report, nil
}

// resolveDomain picks the dataset path when the affinity score clears the
// threshold (inclusive), the generative path otherwise. Exactly one path
// executes; the result is cached by skill-set key.
func (o *Orchestrator) resolveDomain(ctx context.Context, skillSet []string) domainResolution {
	key := "domain|" + skills.Key(skillSet)
	if raw, ok := o.cache.Get(key); ok {
		var res domainResolution
		if err := json.Unmarshal([]byte(raw), &res); err == nil {
			return res
		}
	}

	res, ok := o.resolveDomainUncached(ctx, skillSet)
	if !ok {
		// Fallbacks are not cached: the next request should retry.
		return res
	}
	if raw, err := json.Marshal(res); err == nil {
		o.cache.Set(key, string(raw))
	}
	return res
}

// resolveDomainUncached reports ok=false when the resolution is the
// generative-failure fallback rather than a real classification.
func (o *Orchestrator) resolveDomainUncached(ctx context.Context, skillSet []string) (domainResolution, bool) {
	if o.matcher != nil {
		match, err := o.matcher.Match(ctx, skillSet)
		if err != nil {
			slog.Warn("affinity match failed, using generative path", "error", err)
		} else if match.Score >= o.opts.DatasetThreshold {
			return domainResolution{
				Domain:     skills.Title(match.Domain),
				Source:     SourceDataset,
				Confidence: match.Score,
			}, true
		}
	}

	prompt := engine.Prompt{
		System:      systemRole,
		User:        fmt.Sprintf(domainPromptTmpl, strings.Join(skillSet, ", ")),
		Temperature: 0.2,
	}
	text, err := o.gen.Generate(ctx, o.opts.FlashModel, prompt)
	if err != nil {
		return domainResolution{Domain: FallbackDomain, Source: SourceGenerative}, false
	}
	return domainResolution{Domain: firstLine(text), Source: SourceGenerative}, true
}

// resolveRole asks for one role for the resolved domain + skills, cached by
// (domain, skill set).
func (o *Orchestrator) resolveRole(ctx context.Context, domain string, skillSet []string) string {
	key := "role|" + domain + "|" + skills.Key(skillSet)
	if role, ok := o.cache.Get(key); ok {
		return role
	}

	prompt := engine.Prompt{
		System:      systemRole,
		User:        fmt.Sprintf(rolePromptTmpl, domain, strings.Join(skillSet, ", ")),
		Temperature: 0.4,
	}
	text, err := o.gen.Generate(ctx, o.opts.FlashModel, prompt)
	if err != nil {
		// Fallbacks are not cached: the next request should retry.
		return FallbackRole
	}

	role := firstLine(text)
	o.cache.Set(key, role)
	return role
}

func (o *Orchestrator) inferGrowthSkills(ctx context.Context, role string, skillSet []string) []string {
	prompt := engine.Prompt{
		System:      systemRole,
		User:        fmt.Sprintf(growthPromptTmpl, role, o.opts.MaxGrowthSkills),
		Temperature: 0.4,
	}
	text, err := o.gen.Generate(ctx, o.opts.FlashModel, prompt)
	if err != nil {
		return []string{}
	}

	// Drop suggestions the user already has, then cap.
	have := make(map[string]struct{}, len(skillSet))
	for _, s := range skillSet {
		have[s] = struct{}{}
	}
	var out []string
	for _, s := range SplitSkillList(text, 0) {
		if _, ok := have[strings.ToLower(s)]; ok {
			continue
		}
		out = append(out, s)
		if len(out) == o.opts.MaxGrowthSkills {
			break
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func (o *Orchestrator) inferCertifications(ctx context.Context, role string) []string {
	prompt := engine.Prompt{
		System:      systemRole,
		User:        fmt.Sprintf(certPromptTmpl, o.opts.MaxCertifications, role),
		Temperature: 0.4,
	}
	text, err := o.gen.Generate(ctx, o.opts.FlashModel, prompt)
	if err != nil {
		return []string{}
	}
	certs := SplitCertList(text, o.opts.MaxCertifications)
	if certs == nil {
		certs = []string{}
	}
	return certs
}

func (o *Orchestrator) inferPlatforms(ctx context.Context, role string) PlatformDirectory {
	prompt := engine.Prompt{
		System:      systemRole,
		User:        fmt.Sprintf(platformPromptTmpl, role),
		Temperature: 0.2,
	}
	text, err := o.gen.Generate(ctx, o.opts.FlashModel, prompt)
	if err != nil {
		return EmptyPlatformDirectory()
	}
	return ParsePlatformDirectory(text)
}

func (o *Orchestrator) inferMarketSummary(ctx context.Context, role, domain string) string {
	prompt := engine.Prompt{
		System:      systemRole,
		User:        fmt.Sprintf(marketPromptTmpl, role, domain),
		Temperature: 0.6,
	}
	text, err := o.gen.Generate(ctx, o.opts.FlashModel, prompt)
	if err != nil {
		return ""
	}
	return text
}

func (o *Orchestrator) inferConfidenceNote(ctx context.Context, role string, skillSet []string) string {
	prompt := engine.Prompt{
		System:      systemRole,
		User:        fmt.Sprintf(confidencePromptTmpl, role, strings.Join(skillSet, ", ")),
		Temperature: 0.6,
	}
	text, err := o.gen.Generate(ctx, o.opts.FlashModel, prompt)
	if err != nil {
		return ""
	}
	return text
}

// EstimateWeeks derives the upskilling duration: each growth skill is
// budgeted at 40 learning hours. Zero or missing weekly hours is a defined
// result of 0, not a division error.
func EstimateWeeks(growthSkillCount, weeklyHours int) int {
	if weeklyHours <= 0 {
		return 0
	}
	return int(math.Round(float64(growthSkillCount*40) / float64(weeklyHours)))
}

// firstLine trims a model response down to its first non-empty line, which
// is all the single-name prompts should produce anyway.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return strings.TrimSpace(s)
}
