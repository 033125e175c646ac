package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"trading-coach/internal/store"
	"trading-coach/pkg/utils"
)

func newPatternsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns <user-id>",
		Short: "List stored psychology patterns for a user",
		Example: `  coach patterns user-42
  coach patterns user-42 --all
  coach patterns user-42 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			userID := args[0]
			includeInactive, _ := cmd.Flags().GetBool("all")
			limit, _ := cmd.Flags().GetInt("limit")

			if app.Store == nil {
				output.Error("Data store unavailable")
				return fmt.Errorf("store not initialized")
			}

			patterns, err := app.Store.GetPatterns(context.Background(), store.PatternFilter{
				UserID:     userID,
				ActiveOnly: !includeInactive,
				Limit:      limit,
			})
			if err != nil {
				output.Error("Failed to load patterns: %v", err)
				return err
			}

			if output.JSONMode() {
				return output.JSON(patterns)
			}

			if len(patterns) == 0 {
				output.Info("No patterns stored for %s", userID)
				return nil
			}

			output.Header(fmt.Sprintf("Patterns for %s", userID))
			for _, p := range patterns {
				status := "active"
				if !p.IsActive {
					status = "inactive"
				}
				output.Printf("[%s] %s (%s, %s)\n", SeverityString(p.Severity), p.PatternName, p.PatternType, status)
				output.Printf("    %s\n", p.Description)
				output.Printf("    seen %dx, impact %s, first %s, last %s, %d interventions\n",
					p.Frequency, utils.FormatCurrency(p.ImpactOnPerformance),
					p.FirstObserved.Format(app.Config.UI.DateFormat),
					p.LastObserved.Format(app.Config.UI.DateFormat),
					len(p.CoachingInterventions))
			}
			return nil
		},
	}

	cmd.Flags().Bool("all", false, "Include deactivated patterns")
	cmd.Flags().Int("limit", 0, "Maximum patterns to list")

	return cmd
}
