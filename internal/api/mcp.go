package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/futureproofai/futureproof/internal/inference"
	"github.com/futureproofai/futureproof/internal/skills"
	"github.com/futureproofai/futureproof/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Orchestrator *inference.Orchestrator
	Assessments  AssessmentService
	Store        *storage.Store
}

// NewMCPServer creates an MCP server exposing career reports and skill
// assessments as tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"futureproof",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("futureproof — career domain, role, and upskilling intelligence from a skill inventory."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("career_report",
			mcp.WithDescription("Build a full career report: inferred domain, recommended role, growth skills, certifications, learning platforms, market outlook, and an upskilling timeline."),
			mcp.WithString("name", mcp.Description("The person's name"), mcp.Required()),
			mcp.WithString("skills", mcp.Description("Comma-separated current skills"), mcp.Required()),
			mcp.WithNumber("weekly_hours", mcp.Description("Weekly learning hours available (default 0, omits the timeline)")),
		),
		mcpCareerReport(deps),
	)

	s.AddTool(
		mcp.NewTool("skill_assessment",
			mcp.WithDescription("Generate a multiple-choice skill assessment for a skill set. Returns a quiz id and the questions without answers."),
			mcp.WithString("skills", mcp.Description("Comma-separated skills to assess"), mcp.Required()),
			mcp.WithString("difficulty", mcp.Description("easy, medium, or hard (default medium)")),
		),
		mcpSkillAssessment(deps),
	)

	s.AddTool(
		mcp.NewTool("score_assessment",
			mcp.WithDescription("Score a previously generated assessment. Answers are matched positionally against the quiz."),
			mcp.WithString("id", mcp.Description("Quiz id from skill_assessment"), mcp.Required()),
			mcp.WithArray("answers", mcp.Description("One answer per question, in order"), mcp.Required()),
		),
		mcpScoreAssessment(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"futureproof://usage",
			"Model Usage",
			mcp.WithResourceDescription("Generative model usage journal, aggregated per model and outcome"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceUsage(deps),
	)

	return s
}

func mcpCareerReport(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcpError("name is required"), nil
		}
		rawSkills, err := req.RequireString("skills")
		if err != nil {
			return mcpError("skills is required"), nil
		}
		hours := req.GetInt("weekly_hours", 0)

		report, err := deps.Orchestrator.BuildReport(ctx, inference.Request{
			Name:        name,
			RawSkills:   rawSkills,
			WeeklyHours: hours,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("report failed: %v", err)), nil
		}

		b, err := json.Marshal(report)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal report: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSkillAssessment(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawSkills, err := req.RequireString("skills")
		if err != nil {
			return mcpError("skills is required"), nil
		}
		difficulty := req.GetString("difficulty", "")

		skillSet := skills.Normalize(rawSkills)
		if len(skillSet) == 0 {
			return mcpError("skills is required"), nil
		}

		quiz, err := deps.Assessments.Generate(ctx, skillSet, difficulty)
		if err != nil {
			return mcpError(fmt.Sprintf("assessment generation failed: %v", err)), nil
		}

		questions := make([]AssessmentQuestion, len(quiz.Items))
		for i, item := range quiz.Items {
			questions[i] = AssessmentQuestion{Question: item.Question, Options: item.Options}
		}

		b, err := json.Marshal(map[string]any{
			"id":         quiz.ID,
			"difficulty": quiz.Difficulty,
			"questions":  questions,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal assessment: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpScoreAssessment(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}
		answers := req.GetStringSlice("answers", nil)
		if answers == nil {
			return mcpError("answers is required"), nil
		}

		_, score, err := deps.Assessments.Submit(id, answers)
		if err != nil {
			return mcpError(fmt.Sprintf("scoring failed: %v", err)), nil
		}

		b, err := json.Marshal(map[string]any{
			"id": id, "correct": score.Correct, "total": score.Total, "percentage": score.Percentage,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal score: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceUsage(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		summaries, err := deps.Store.UsageSummaries()
		if err != nil {
			return nil, fmt.Errorf("failed to read usage journal: %w", err)
		}

		type row struct {
			Model   string `json:"model"`
			Outcome string `json:"outcome"`
			Count   int    `json:"count"`
		}
		rows := make([]row, len(summaries))
		for i, s := range summaries {
			rows[i] = row{Model: s.Model, Outcome: s.Outcome, Count: s.Count}
		}

		b, err := json.Marshal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal usage: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
