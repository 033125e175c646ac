package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trading-coach/internal/models"
	"trading-coach/pkg/id"
	"trading-coach/pkg/utils"
)

// seedFile is the on-disk JSON layout accepted by the import command.
type seedFile struct {
	Trades        []models.Trade           `json:"trades"`
	Sessions      []models.CoachingSession `json:"sessions"`
	Conversations []models.Conversation    `json:"conversations"`
	Plans         []models.TradePlan       `json:"plans"`
}

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import trades, sessions and plans from a JSON export",
		Example: `  coach import backup.json
  coach import backup.json --user user-42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path := args[0]
			userOverride, _ := cmd.Flags().GetString("user")

			if app.Store == nil {
				output.Error("Data store unavailable")
				return fmt.Errorf("store not initialized")
			}

			data, err := os.ReadFile(path)
			if err != nil {
				output.Error("Cannot read %s: %v", path, err)
				return err
			}

			var seed seedFile
			if err := json.Unmarshal(data, &seed); err != nil {
				output.Error("Invalid JSON in %s: %v", path, err)
				return err
			}

			ctx := context.Background()
			retryCfg := utils.DefaultRetryConfig()
			var counts struct {
				trades, sessions, conversations, plans int
			}

			for i := range seed.Trades {
				t := &seed.Trades[i]
				if t.ID == "" {
					t.ID = id.New()
				}
				if userOverride != "" {
					t.UserID = userOverride
				}
				if err := t.Validate(); err != nil {
					output.Error("Trade %d: %v", i, err)
					return err
				}
				if err := utils.Retry(ctx, retryCfg, func() error {
					return app.Store.SaveTrade(ctx, t)
				}); err != nil {
					output.Error("Failed to save trade %s: %v", t.ID, err)
					return err
				}
				counts.trades++
			}

			for i := range seed.Sessions {
				s := &seed.Sessions[i]
				if s.ID == "" {
					s.ID = id.New()
				}
				if userOverride != "" {
					s.UserID = userOverride
				}
				if err := s.Validate(); err != nil {
					output.Error("Session %d: %v", i, err)
					return err
				}
				if err := utils.Retry(ctx, retryCfg, func() error {
					return app.Store.SaveSession(ctx, s)
				}); err != nil {
					output.Error("Failed to save session %s: %v", s.ID, err)
					return err
				}
				counts.sessions++
			}

			for i := range seed.Conversations {
				c := &seed.Conversations[i]
				if c.ID == "" {
					c.ID = id.New()
				}
				if userOverride != "" {
					c.UserID = userOverride
				}
				if err := utils.Retry(ctx, retryCfg, func() error {
					return app.Store.SaveConversation(ctx, c)
				}); err != nil {
					output.Error("Failed to save conversation %s: %v", c.ID, err)
					return err
				}
				counts.conversations++
			}

			for i := range seed.Plans {
				p := &seed.Plans[i]
				if p.ID == "" {
					p.ID = id.New()
				}
				if userOverride != "" {
					p.UserID = userOverride
				}
				if err := utils.Retry(ctx, retryCfg, func() error {
					return app.Store.SavePlan(ctx, p)
				}); err != nil {
					output.Error("Failed to save plan %s: %v", p.ID, err)
					return err
				}
				counts.plans++
			}

			if output.JSONMode() {
				return output.JSON(map[string]int{
					"trades":        counts.trades,
					"sessions":      counts.sessions,
					"conversations": counts.conversations,
					"plans":         counts.plans,
				})
			}
			output.Success("Imported %d trades, %d sessions, %d conversations, %d plans from %s",
				counts.trades, counts.sessions, counts.conversations, counts.plans, path)
			return nil
		},
	}

	cmd.Flags().String("user", "", "Override the user id on every imported record")

	return cmd
}
