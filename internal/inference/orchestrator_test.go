package inference

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futureproofai/futureproof/internal/affinity"
	"github.com/futureproofai/futureproof/internal/engine"
)

type mockMatcher struct {
	result affinity.Result
	err    error
	calls  atomic.Int32
}

func (m *mockMatcher) Match(context.Context, []string) (affinity.Result, error) {
	m.calls.Add(1)
	return m.result, m.err
}

// scriptedEngine answers by prompt keyword so one mock serves the whole
// fan-out. generateCalls counts external calls for cache assertions.
type scriptedEngine struct {
	generateCalls atomic.Int32
	responses     map[string]string
	failAll       bool
}

func (e *scriptedEngine) Generate(_ context.Context, _ string, prompt engine.Prompt) (string, error) {
	e.generateCalls.Add(1)
	if e.failAll {
		return "", errors.New("service down")
	}
	for keyword, resp := range e.responses {
		if strings.Contains(prompt.User, keyword) {
			return resp, nil
		}
	}
	return "generic answer", nil
}

func (e *scriptedEngine) Embed(context.Context, string, string) ([]float32, error) {
	return nil, errors.New("not implemented")
}

func defaultResponses() map[string]string {
	return map[string]string{
		"career domain":      "Data Analytics",
		"career role":        "Analytics Engineer",
		"growth skills":      "dbt, airflow, python",
		"certifications":     "AWS Certified Data Engineer, dbt Analytics Engineering",
		"learning platforms": `{"free":[{"name":"Coursera","url":"https://coursera.org"}],"paid":[{"name":"DataCamp","url":"https://datacamp.com"}]}`,
		"market outlook":     "Demand is strong.",
		"confidence":         "High confidence.",
	}
}

func newTestOrchestrator(eng *scriptedEngine, matcher DomainMatcher, ttl time.Duration) *Orchestrator {
	gen := NewGenerator(eng, RetryPolicy{Attempts: 1}, nil, 0)
	return NewOrchestrator(gen, matcher, NewCache(ttl), Options{
		FlashModel:        "flash",
		DatasetThreshold:  0.55,
		MaxGrowthSkills:   6,
		MaxCertifications: 5,
	})
}

func TestBuildReportMissingInput(t *testing.T) {
	o := newTestOrchestrator(&scriptedEngine{responses: defaultResponses()}, nil, time.Hour)

	for _, req := range []Request{
		{Name: "", RawSkills: "python"},
		{Name: "Ada", RawSkills: "   "},
	} {
		if _, err := o.BuildReport(context.Background(), req); !errors.Is(err, ErrMissingInput) {
			t.Errorf("BuildReport(%+v) err = %v, want ErrMissingInput", req, err)
		}
	}
}

func TestBuildReportDatasetPathAtThreshold(t *testing.T) {
	// Score exactly at the threshold takes the dataset path.
	matcher := &mockMatcher{result: affinity.Result{Domain: "data analytics", Score: 0.55}}
	eng := &scriptedEngine{responses: defaultResponses()}
	o := newTestOrchestrator(eng, matcher, time.Hour)

	report, err := o.BuildReport(context.Background(), Request{Name: "Ada", RawSkills: "python, sql", WeeklyHours: 10})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	if report.Domain != "Data Analytics" {
		t.Errorf("Domain = %q, want title-cased dataset domain", report.Domain)
	}
	if report.Source != SourceDataset {
		t.Errorf("Source = %q, want %q", report.Source, SourceDataset)
	}
	if report.Confidence != 0.55 {
		t.Errorf("Confidence = %v, want 0.55", report.Confidence)
	}
}

func TestBuildReportBelowThresholdUsesGenerativePath(t *testing.T) {
	matcher := &mockMatcher{result: affinity.Result{Domain: "data analytics", Score: 0.549}}
	eng := &scriptedEngine{responses: defaultResponses()}
	o := newTestOrchestrator(eng, matcher, time.Hour)

	report, err := o.BuildReport(context.Background(), Request{Name: "Ada", RawSkills: "python, sql"})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	if report.Source != SourceGenerative {
		t.Errorf("Source = %q, want %q", report.Source, SourceGenerative)
	}
	if report.Domain != "Data Analytics" {
		t.Errorf("Domain = %q, want generative classification", report.Domain)
	}
	if report.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0 on the generative path", report.Confidence)
	}
}

func TestBuildReportMatcherErrorFallsBackToGenerative(t *testing.T) {
	matcher := &mockMatcher{err: errors.New("index build failed")}
	eng := &scriptedEngine{responses: defaultResponses()}
	o := newTestOrchestrator(eng, matcher, time.Hour)

	report, err := o.BuildReport(context.Background(), Request{Name: "Ada", RawSkills: "python"})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	if report.Source != SourceGenerative {
		t.Errorf("Source = %q, want %q", report.Source, SourceGenerative)
	}
}

func TestBuildReportCompleteSections(t *testing.T) {
	eng := &scriptedEngine{responses: defaultResponses()}
	o := newTestOrchestrator(eng, nil, time.Hour)

	report, err := o.BuildReport(context.Background(), Request{Name: "Ada", RawSkills: "sql, Python", WeeklyHours: 10})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}

	if report.Role != "Analytics Engineer" {
		t.Errorf("Role = %q", report.Role)
	}
	if !reflect.DeepEqual(report.Skills, []string{"python", "sql"}) {
		t.Errorf("Skills = %v, want normalized sorted set", report.Skills)
	}
	// "python" is already in the user's set and must be dropped.
	if !reflect.DeepEqual(report.GrowthSkills, []string{"Dbt", "Airflow"}) {
		t.Errorf("GrowthSkills = %v, want [Dbt Airflow]", report.GrowthSkills)
	}
	if len(report.Certifications) != 2 || report.Certifications[0] != "AWS Certified Data Engineer" {
		t.Errorf("Certifications = %v", report.Certifications)
	}
	if len(report.Platforms.Free) != 1 || len(report.Platforms.Paid) != 1 {
		t.Errorf("Platforms = %+v", report.Platforms)
	}
	if report.MarketSummary == "" || report.ConfidenceNote == "" {
		t.Error("narrative sections empty")
	}
	// 2 growth skills * 40h / 10h per week = 8 weeks.
	if report.EstimatedWeeks != 8 {
		t.Errorf("EstimatedWeeks = %d, want 8", report.EstimatedWeeks)
	}
}

func TestBuildReportAllGenerativeFailuresDegrade(t *testing.T) {
	eng := &scriptedEngine{failAll: true}
	o := newTestOrchestrator(eng, nil, time.Hour)

	report, err := o.BuildReport(context.Background(), Request{Name: "Ada", RawSkills: "python", WeeklyHours: 10})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	if report.Domain != FallbackDomain {
		t.Errorf("Domain = %q, want %q", report.Domain, FallbackDomain)
	}
	if report.Role != FallbackRole {
		t.Errorf("Role = %q, want %q", report.Role, FallbackRole)
	}
	if report.GrowthSkills == nil || len(report.GrowthSkills) != 0 {
		t.Errorf("GrowthSkills = %v, want empty non-nil", report.GrowthSkills)
	}
	if report.Certifications == nil || len(report.Certifications) != 0 {
		t.Errorf("Certifications = %v, want empty non-nil", report.Certifications)
	}
	if report.Platforms.Free == nil || report.Platforms.Paid == nil {
		t.Error("Platforms has nil groups")
	}
	if report.EstimatedWeeks != 0 {
		t.Errorf("EstimatedWeeks = %d, want 0 with no growth skills", report.EstimatedWeeks)
	}
}

func TestBuildReportCachesDomainAndRole(t *testing.T) {
	matcher := &mockMatcher{result: affinity.Result{Domain: "data analytics", Score: 0.9}}
	eng := &scriptedEngine{responses: defaultResponses()}
	o := newTestOrchestrator(eng, matcher, time.Hour)

	if _, err := o.BuildReport(context.Background(), Request{Name: "Ada", RawSkills: "python, sql"}); err != nil {
		t.Fatalf("first BuildReport: %v", err)
	}
	firstCalls := eng.generateCalls.Load()

	// Same skill set, different spelling and order: resolution must come
	// from cache, so only the five fan-out calls hit the engine.
	if _, err := o.BuildReport(context.Background(), Request{Name: "Bob", RawSkills: "SQL , python"}); err != nil {
		t.Fatalf("second BuildReport: %v", err)
	}
	if got := matcher.calls.Load(); got != 1 {
		t.Errorf("matcher calls = %d, want 1", got)
	}
	secondCalls := eng.generateCalls.Load() - firstCalls
	if secondCalls != 5 {
		t.Errorf("engine calls on cached request = %d, want 5", secondCalls)
	}
}

func TestBuildReportFallbacksNotCached(t *testing.T) {
	eng := &scriptedEngine{failAll: true}
	o := newTestOrchestrator(eng, nil, time.Hour)

	first, err := o.BuildReport(context.Background(), Request{Name: "Ada", RawSkills: "python"})
	if err != nil {
		t.Fatalf("first BuildReport: %v", err)
	}
	if first.Domain != FallbackDomain || first.Role != FallbackRole {
		t.Fatalf("degraded report = %q/%q, want fallbacks", first.Domain, first.Role)
	}

	// Service recovers: both domain and role must be re-resolved, not
	// served from a cached fallback.
	eng.failAll = false
	eng.responses = defaultResponses()
	report, err := o.BuildReport(context.Background(), Request{Name: "Ada", RawSkills: "python"})
	if err != nil {
		t.Fatalf("second BuildReport: %v", err)
	}
	if report.Domain != "Data Analytics" {
		t.Errorf("Domain = %q after recovery, want fresh resolution", report.Domain)
	}
	if report.Role != "Analytics Engineer" {
		t.Errorf("Role = %q after recovery, want fresh resolution", report.Role)
	}
}

func TestEstimateWeeks(t *testing.T) {
	tests := []struct {
		skills, hours, want int
	}{
		{6, 10, 24},
		{5, 40, 5},
		{3, 7, 17}, // 120/7 = 17.14 rounds to 17
		{4, 0, 0},
		{4, -3, 0},
		{0, 10, 0},
	}
	for _, tt := range tests {
		if got := EstimateWeeks(tt.skills, tt.hours); got != tt.want {
			t.Errorf("EstimateWeeks(%d, %d) = %d, want %d", tt.skills, tt.hours, got, tt.want)
		}
	}
}
