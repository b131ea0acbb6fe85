package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/futureproofai/futureproof/internal/config"
	"github.com/futureproofai/futureproof/internal/inference"
	"github.com/futureproofai/futureproof/internal/skills"
)

// --- report ---

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build a career report from a skill inventory",
	Long: `Build a career report from a skill inventory.

Examples:
  futureproof report --name "Ada" --skills "python, sql, excel" --hours 10
  futureproof report --name "Ada" --resume ./resume.pdf --hours 6`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		skillsStr, _ := cmd.Flags().GetString("skills")
		resume, _ := cmd.Flags().GetString("resume")
		hours, _ := cmd.Flags().GetInt("hours")

		if name == "" {
			return fmt.Errorf("--name is required")
		}
		if skillsStr == "" && resume == "" {
			return fmt.Errorf("one of --skills or --resume is required")
		}

		if resume != "" {
			text, err := skills.ExtractResumeText(resume)
			if err != nil {
				return fmt.Errorf("reading resume: %w", err)
			}
			if skillsStr != "" {
				skillsStr += ", "
			}
			skillsStr += text
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/report", map[string]any{
			"name":         name,
			"skills":       skillsStr,
			"weekly_hours": hours,
		})
		if err != nil {
			return err
		}

		var report inference.Report
		if err := decodeJSON(resp, &report); err != nil {
			return err
		}

		printReport(&report)
		return nil
	},
}

func printReport(r *inference.Report) {
	printSection("Career Report for " + r.Name)
	printField("Domain", "%s (%s)", r.Domain, r.Source)
	if r.Confidence > 0 {
		printField("Confidence", "%.2f", r.Confidence)
	}
	printField("Role", "%s", r.Role)

	if len(r.GrowthSkills) > 0 {
		printSection("Growth Skills")
		for _, s := range r.GrowthSkills {
			fmt.Printf("  - %s\n", s)
		}
	}
	if len(r.Certifications) > 0 {
		printSection("Certifications")
		for _, c := range r.Certifications {
			fmt.Printf("  - %s\n", c)
		}
	}
	if len(r.Platforms.Free) > 0 || len(r.Platforms.Paid) > 0 {
		printSection("Learning Platforms")
		for _, p := range r.Platforms.Free {
			fmt.Printf("  - %s (free) %s\n", p.Name, p.URL)
		}
		for _, p := range r.Platforms.Paid {
			fmt.Printf("  - %s (paid) %s\n", p.Name, p.URL)
		}
	}
	if r.MarketSummary != "" {
		printSection("Market Outlook")
		fmt.Printf("  %s\n", r.MarketSummary)
	}
	if r.ConfidenceNote != "" {
		printSection("Confidence")
		fmt.Printf("  %s\n", r.ConfidenceNote)
	}
	if r.EstimatedWeeks > 0 {
		printField("Estimated timeline", "%d weeks", r.EstimatedWeeks)
	}
	if len(r.GrowthSkills) == 0 && r.MarketSummary == "" {
		printWarning("some sections came back empty; the inference service may be degraded, try again later")
	}
}

func init() {
	reportCmd.Flags().String("name", "", "your name")
	reportCmd.Flags().String("skills", "", "comma-separated current skills")
	reportCmd.Flags().String("resume", "", "path to a PDF resume to extract skills from")
	reportCmd.Flags().Int("hours", 0, "weekly learning hours for the upskilling timeline")
}

// --- assess ---

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Generate and score skill assessments",
}

var assessNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a multiple-choice assessment",
	RunE: func(cmd *cobra.Command, args []string) error {
		skillsStr, _ := cmd.Flags().GetString("skills")
		difficulty, _ := cmd.Flags().GetString("difficulty")

		if skillsStr == "" {
			return fmt.Errorf("--skills is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/assessments", map[string]any{
			"skills":     skillsStr,
			"difficulty": difficulty,
		})
		if err != nil {
			return err
		}

		var quiz struct {
			ID        string `json:"id"`
			Questions []struct {
				Question string   `json:"question"`
				Options  []string `json:"options"`
			} `json:"questions"`
		}
		if err := decodeJSON(resp, &quiz); err != nil {
			return err
		}

		printSection("Assessment " + quiz.ID)
		for i, q := range quiz.Questions {
			fmt.Printf("\n%d. %s\n", i+1, q.Question)
			for j, opt := range q.Options {
				fmt.Printf("   %c) %s\n", 'a'+j, opt)
			}
		}
		fmt.Println()
		printSuccess("Submit with: futureproof assess submit %s --answers \"...\"", quiz.ID)
		return nil
	},
}

var assessSubmitCmd = &cobra.Command{
	Use:   "submit <id>",
	Short: "Submit answers for a generated assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		answersStr, _ := cmd.Flags().GetString("answers")
		name, _ := cmd.Flags().GetString("name")

		if answersStr == "" {
			return fmt.Errorf("--answers is required")
		}

		answers := strings.Split(answersStr, ",")
		for i := range answers {
			answers[i] = strings.TrimSpace(answers[i])
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/assessments/"+args[0]+"/answers", map[string]any{
			"name":    name,
			"answers": answers,
		})
		if err != nil {
			return err
		}

		var result struct {
			Correct    int     `json:"correct"`
			Total      int     `json:"total"`
			Percentage float64 `json:"percentage"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Score: %d/%d (%.0f%%)", result.Correct, result.Total, result.Percentage)
		return nil
	},
}

func init() {
	assessNewCmd.Flags().String("skills", "", "comma-separated skills to assess")
	assessNewCmd.Flags().String("difficulty", "medium", "easy, medium, or hard")
	assessSubmitCmd.Flags().String("answers", "", "comma-separated answers, one per question, matching the option text")
	assessSubmitCmd.Flags().String("name", "", "name to record with the result")
	assessCmd.AddCommand(assessNewCmd)
	assessCmd.AddCommand(assessSubmitCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, kv := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, kv.Key), kv.Value)
		}
		return nil
	},
}

// --- usage ---

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show the generative model usage journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/usage")
		if err != nil {
			return err
		}

		var rows []struct {
			Model   string `json:"model"`
			Outcome string `json:"outcome"`
			Count   int    `json:"count"`
		}
		if err := decodeJSON(resp, &rows); err != nil {
			return err
		}

		if len(rows) == 0 {
			fmt.Println("no usage recorded")
			return nil
		}
		for _, r := range rows {
			fmt.Printf("  %-30s %-8s %d\n", r.Model, r.Outcome, r.Count)
		}
		return nil
	},
}
