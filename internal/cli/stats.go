package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"trading-coach/internal/aggregate"
	"trading-coach/internal/errors"
	"trading-coach/internal/models"
	"trading-coach/pkg/utils"
)

func newStatsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <user-id>",
		Short: "Show aggregated trading statistics for a user",
		Example: `  coach stats user-42
  coach stats user-42 --window 90`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			userID := args[0]
			window, _ := cmd.Flags().GetInt("window")
			if window <= 0 {
				window = app.Config.Analysis.WindowDays
			}

			if app.Store == nil {
				output.Error("Data store unavailable")
				return fmt.Errorf("store not initialized")
			}

			builder := aggregate.NewBuilder(app.Store, app.Logger)
			ac, err := builder.Build(context.Background(), userID, aggregate.Options{
				WindowDays:       window,
				MaxTrades:        app.Config.Analysis.MaxTrades,
				MaxSessions:      app.Config.Analysis.MaxSessions,
				MaxConversations: app.Config.Analysis.MaxConversations,
				MinTradeSample:   app.Config.Analysis.MinTradeSample,
			})
			if err != nil {
				if errors.Is(err, errors.ErrInsufficientData) {
					output.Warning("Not enough closed trades in the last %d days", window)
					return nil
				}
				output.Error("Failed to aggregate: %v", err)
				return err
			}

			if output.JSONMode() {
				return output.JSON(ac)
			}

			printStats(output, ac)
			return nil
		},
	}

	cmd.Flags().Int("window", 0, "Window in days (default from config)")

	return cmd
}

func printStats(output *Output, ac *aggregate.Context) {
	output.Header(fmt.Sprintf("Stats for %s (%s to %s)", ac.UserID,
		ac.Window.From.Format("2006-01-02"), ac.Window.To.Format("2006-01-02")))

	printSummary(output, "Overall", ac.Overall)
	for _, tt := range []models.TradeType{models.TradeTypeReal, models.TradeTypeTraining} {
		if s, ok := ac.ByType[tt]; ok {
			printSummary(output, string(tt), s)
		}
	}

	output.Printf("\nStreaks: longest win %d, longest loss %d, current %+d\n",
		ac.Streaks.LongestWin, ac.Streaks.LongestLoss, ac.Streaks.Current)
	output.Printf("Max drawdown: %s (peak %s, trough %s)\n",
		utils.FormatCurrency(ac.Drawdown.MaxDrawdown),
		utils.FormatCurrency(ac.Drawdown.Peak),
		utils.FormatCurrency(ac.Drawdown.Trough))

	if ac.PlanAdherence.Samples > 0 {
		output.Printf("Plan adherence: %s average over %d trades (min %s, max %s)\n",
			utils.FormatPercent(ac.PlanAdherence.Average), ac.PlanAdherence.Samples,
			utils.FormatPercent(ac.PlanAdherence.Min), utils.FormatPercent(ac.PlanAdherence.Max))
	}

	if len(ac.EmotionalStates) > 0 {
		output.Printf("\nBy emotional state:\n")
		states := make([]string, 0, len(ac.EmotionalStates))
		for state := range ac.EmotionalStates {
			states = append(states, state)
		}
		sort.Strings(states)
		for _, state := range states {
			s := ac.EmotionalStates[state]
			output.Printf("  %-12s %2d trades, %s win rate, %s avg P&L\n",
				state, s.Count, utils.FormatPercent(s.WinRate), utils.FormatCurrency(s.AvgPnL))
		}
	}
}

func printSummary(output *Output, label string, s aggregate.TypeSummary) {
	if s.Count == 0 {
		return
	}
	output.Printf("%-10s %3d trades, %s win rate, %s total P&L, %s avg, best %s, worst %s\n",
		label, s.Count, utils.FormatPercent(s.WinRate),
		utils.FormatCurrency(s.TotalPnL), utils.FormatCurrency(s.AvgPnL),
		utils.FormatCurrency(s.BestTrade), utils.FormatCurrency(s.WorstTrade))
}
