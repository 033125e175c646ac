package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trading-coach/internal/engine"
	"trading-coach/internal/models"
	"trading-coach/pkg/utils"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <user-id> [user-id...]",
		Short: "Run a full psychology analysis pass for a user",
		Long: `Aggregate the user's recent trades, coaching sessions, and
conversations, run the behavioral pattern analyzers, reconcile the findings
against the stored pattern set, and print the coaching insights.`,
		Example: `  coach analyze user-42
  coach analyze user-42 --window 60 --min-frequency 3
  coach analyze user-42 --types EMOTIONAL_TRIGGER,RISK_MANAGEMENT --json
  coach analyze user-1 user-2 user-3 --workers 4`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			window, _ := cmd.Flags().GetInt("window")
			minFreq, _ := cmd.Flags().GetInt("min-frequency")
			noCoaching, _ := cmd.Flags().GetBool("no-coaching-feedback")
			typeList, _ := cmd.Flags().GetString("types")
			workers, _ := cmd.Flags().GetInt("workers")

			if app.Engine == nil {
				output.Error("Data store unavailable")
				return fmt.Errorf("store not initialized")
			}

			opts := engine.Options{
				AnalysisWindowDays: window,
				MinFrequency:       minFreq,
			}
			if noCoaching {
				include := false
				opts.IncludeCoachingFeedback = &include
			}
			if typeList != "" {
				for _, raw := range strings.Split(typeList, ",") {
					pt, err := models.ParsePatternType(strings.TrimSpace(raw))
					if err != nil {
						output.Error("%v", err)
						return err
					}
					opts.ForcedPatternTypes = append(opts.ForcedPatternTypes, pt)
				}
			}

			if len(args) > 1 {
				report := app.Engine.AnalyzeUsers(context.Background(), args, opts, workers)
				return printBatchReport(output, args, report)
			}

			result, err := app.Engine.AnalyzeAndUpdatePatterns(context.Background(), args[0], opts)
			if err != nil {
				output.Error("Analysis failed: %v", err)
				return err
			}

			if output.JSONMode() {
				return output.JSON(result)
			}

			printResult(output, result)
			return nil
		},
	}

	cmd.Flags().Int("window", 0, "Analysis window in days (default from config)")
	cmd.Flags().Int("min-frequency", 0, "Minimum occurrences before a pattern is flagged")
	cmd.Flags().Bool("no-coaching-feedback", false, "Skip the coaching-response analyzer")
	cmd.Flags().String("types", "", "Comma-separated pattern-type allow-list")
	cmd.Flags().Int("workers", 0, "Concurrent passes when analyzing several users (default NumCPU)")

	return cmd
}

func printBatchReport(output *Output, args []string, report *engine.BatchReport) error {
	if output.JSONMode() {
		errs := make(map[string]string, len(report.Errors))
		for userID, err := range report.Errors {
			errs[userID] = err.Error()
		}
		return output.JSON(map[string]interface{}{
			"results": report.Results,
			"errors":  errs,
		})
	}

	for _, userID := range args {
		if result, ok := report.Results[userID]; ok {
			printResult(output, result)
			output.Printf("\n")
		}
	}
	for _, userID := range args {
		if err, ok := report.Errors[userID]; ok {
			output.Error("%s: %v", userID, err)
		}
	}
	output.Info("Analyzed %d users, %d failed", report.Succeeded(), report.Failed())
	if report.Failed() > 0 {
		return fmt.Errorf("%d of %d passes failed", report.Failed(), report.Succeeded()+report.Failed())
	}
	return nil
}

func printResult(output *Output, result *engine.Result) {
	if result.InsufficientData {
		output.Warning("%s", result.Message)
		return
	}

	output.Header(fmt.Sprintf("Analysis for %s", result.UserID))
	output.Printf("Patterns: %d identified, %d new, %d updated, %d deactivated\n\n",
		len(result.PatternsIdentified), result.NewPatterns, result.PatternsUpdated, result.PatternsDeactivated)

	for i, c := range result.PatternsIdentified {
		output.Printf("%2d. [%s] %s (%s)\n", i+1, SeverityString(c.Severity), c.PatternName, c.PatternType)
		output.Printf("    %s\n", c.Description)
		output.Printf("    evidence %.2f, impact %s\n", c.EvidenceStrength, utils.FormatCurrency(c.ImpactOnPerformance))
	}

	if result.CoachingInsights == nil {
		return
	}
	insights := result.CoachingInsights

	output.Printf("\n")
	output.Header("Coaching Insights")
	output.Info("%s", insights.Summary)

	if len(insights.FocusRecommendations) > 0 {
		output.Printf("\nFocus areas:\n")
		for _, rec := range insights.FocusRecommendations {
			output.Printf("  - %s\n", rec)
		}
	}

	if len(insights.TypeRollup) > 0 {
		output.Printf("\nBy pattern type:\n")
		for _, r := range insights.TypeRollup {
			output.Printf("  %-22s %2d patterns, %s total impact\n",
				r.PatternType, r.Count, utils.FormatCurrency(r.TotalImpact))
		}
	}
}
